// Package trace provides decision-trace recording for scheduler analysis.
// It has no dependencies on sched/ and stores pure data types only.
package trace

// AdmissionRecord captures a single admission attempt.
type AdmissionRecord struct {
	RequestID string
	Attempted int // timeslot the attempt started from
	Timeslot  int // timeslot the request landed in; 0 when not admitted
	Admitted  bool
	Shared    bool // admitted by sharing an already populated timeslot
	Route     []int
	Reason    string
}

// ExecutionRecord captures the outcome of running one admitted request.
type ExecutionRecord struct {
	RequestID string
	Timeslot  int
	Success   bool
	Reason    string
}

// PlacementRecord captures a static slice placement.
type PlacementRecord struct {
	RequestID string
	SliceID   string
	Timeslot  int
}
