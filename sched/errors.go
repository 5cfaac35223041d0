package sched

import (
	"errors"
	"fmt"
)

// Scheduling failures. They are recoverable: ProcessPending logs them and
// retries on a later timeslot.
var (
	ErrNoRoute        = errors.New("no route between endpoints")
	ErrProbeExhausted = errors.New("no free timeslot within probe bound")
)

// ErrConfiguration matches any *ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports a caller mistake in slice setup or slice
// assignment. It is the only error that crosses from the engine into caller code.
type ConfigurationError struct {
	Op  string
	Msg string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErrorf(op, format string, args ...any) error {
	return &ConfigurationError{Op: op, Msg: fmt.Sprintf(format, args...)}
}
