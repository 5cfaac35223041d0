package sched

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// staticOracle answers routes from a fixed table keyed by "src->dst".
type staticOracle map[string]Path

func (o staticOracle) ShortestValidRoute(src, dst int) (Path, bool) {
	p, ok := o[routeKey(src, dst)]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func routeKey(src, dst int) string { return fmt.Sprintf("%d->%d", src, dst) }

// scriptedExecutor succeeds unless the request ID has a scripted outcome.
type scriptedExecutor struct {
	failures map[string]string // request ID → reason ("" = default reason)
	errs     map[string]error
	calls    []executorCall
}

type executorCall struct {
	RequestID string
	Path      Path
}

func (e *scriptedExecutor) Execute(req *Request, path Path) (bool, string, error) {
	e.calls = append(e.calls, executorCall{RequestID: req.ID, Path: path.Clone()})
	if err, ok := e.errs[req.ID]; ok {
		return false, "", err
	}
	if reason, ok := e.failures[req.ID]; ok {
		return false, reason, nil
	}
	return true, "", nil
}

func (e *scriptedExecutor) calledIDs() []string {
	ids := make([]string, len(e.calls))
	for i, c := range e.calls {
		ids[i] = c.RequestID
	}
	return ids
}

type countingPool struct{ resets int }

func (p *countingPool) ResetBetweenTimeslots() { p.resets++ }

func newTestController(oracle staticOracle, exec *scriptedExecutor) *Controller {
	if exec == nil {
		exec = &scriptedExecutor{}
	}
	return NewController(ControllerConfig{Oracle: oracle, Executor: exec})
}

func intPtr(v int) *int { return &v }

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
