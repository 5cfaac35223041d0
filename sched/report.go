package sched

import (
	"fmt"
	"io"
)

// FailureDetail describes one failed request in a Report.
type FailureDetail struct {
	RequestID   string `json:"request_id"`
	Source      int    `json:"source"`
	Destination int    `json:"destination"`
	Demand      int    `json:"demand"`
	Depth       int    `json:"depth"`
	Route       string `json:"route"`
	Reason      string `json:"reason"`
}

// Report summarizes the ledgers of a Controller.
type Report struct {
	Success            int             `json:"success"`
	Failed             int             `json:"failed"`
	Scheduled          int             `json:"scheduled"` // admitted, not yet executed
	ScheduledTimeslots int             `json:"scheduled_timeslots"`
	Pending            int             `json:"pending"`
	FailedDetails      []FailureDetail `json:"failed_details"`
}

// Report reads the ledgers without mutating them.
func (c *Controller) Report() Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := Report{
		Success:            len(c.executed),
		Failed:             len(c.failed),
		ScheduledTimeslots: len(c.scheduled),
		Pending:            c.pending.Len(),
		FailedDetails:      make([]FailureDetail, 0, len(c.failed)),
	}
	for _, reqs := range c.scheduled {
		r.Scheduled += len(reqs)
	}
	for _, f := range c.failed {
		r.FailedDetails = append(r.FailedDetails, FailureDetail{
			RequestID:   f.Request.ID,
			Source:      f.Request.Source,
			Destination: f.Request.Destination,
			Demand:      f.Request.Demand,
			Depth:       f.Request.Depth,
			Route:       f.Route,
			Reason:      f.Reason,
		})
	}
	return r
}

// Print writes a human-readable summary of the report.
func (r Report) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Request Report ===")
	fmt.Fprintf(w, "Executed             : %d\n", r.Success)
	fmt.Fprintf(w, "Failed               : %d\n", r.Failed)
	fmt.Fprintf(w, "Scheduled (not run)  : %d in %d timeslots\n", r.Scheduled, r.ScheduledTimeslots)
	fmt.Fprintf(w, "Pending              : %d\n", r.Pending)
	if len(r.FailedDetails) > 0 {
		fmt.Fprintln(w, "\nFailed requests:")
		for _, f := range r.FailedDetails {
			fmt.Fprintf(w, "- %s: %d -> %d, demand %d, depth %d, route %s, reason: %s\n",
				f.RequestID, f.Source, f.Destination, f.Demand, f.Depth, f.Route, f.Reason)
		}
	}
}
