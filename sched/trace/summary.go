package trace

// TraceSummary aggregates statistics from a DecisionTrace.
type TraceSummary struct {
	AdmissionAttempts int            `json:"admission_attempts"`
	AdmittedCount     int            `json:"admitted"`
	SharedCount       int            `json:"shared"`
	RejectedCount     int            `json:"rejected"`
	ExecutedCount     int            `json:"executed"`
	FailedCount       int            `json:"failed"`
	MeanRouteLength   float64        `json:"mean_route_length"` // nodes per admitted route
	TimeslotLoad      map[int]int    `json:"timeslot_load"`     // timeslot → admitted requests
	FailureReasons    map[string]int `json:"failure_reasons"`   // reason → count, admissions and executions
}

// Summarize computes aggregate statistics from a DecisionTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(dt *DecisionTrace) *TraceSummary {
	summary := &TraceSummary{
		TimeslotLoad:   make(map[int]int),
		FailureReasons: make(map[string]int),
	}
	if dt == nil {
		return summary
	}

	summary.AdmissionAttempts = len(dt.Admissions)
	totalNodes := 0
	for _, a := range dt.Admissions {
		if !a.Admitted {
			summary.RejectedCount++
			summary.FailureReasons[a.Reason]++
			continue
		}
		summary.AdmittedCount++
		if a.Shared {
			summary.SharedCount++
		}
		summary.TimeslotLoad[a.Timeslot]++
		totalNodes += len(a.Route)
	}
	if summary.AdmittedCount > 0 {
		summary.MeanRouteLength = float64(totalNodes) / float64(summary.AdmittedCount)
	}

	for _, e := range dt.Executions {
		if e.Success {
			summary.ExecutedCount++
		} else {
			summary.FailedCount++
			summary.FailureReasons[e.Reason]++
		}
	}
	return summary
}
