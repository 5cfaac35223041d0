package trace

import "testing"

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.AdmissionAttempts != 0 || summary.ExecutedCount != 0 {
		t.Error("expected zero counts for nil trace")
	}
	if summary.TimeslotLoad == nil || summary.FailureReasons == nil {
		t.Error("expected initialized maps")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN admissions (two admitted, one shared, one rejected) and executions
	dt := NewDecisionTrace(TraceLevelDecisions)
	dt.RecordAdmission(AdmissionRecord{RequestID: "r1", Attempted: 1, Timeslot: 1, Admitted: true, Route: []int{0, 1}})
	dt.RecordAdmission(AdmissionRecord{RequestID: "r2", Attempted: 1, Timeslot: 1, Admitted: true, Shared: true, Route: []int{2, 3, 4, 5}})
	dt.RecordAdmission(AdmissionRecord{RequestID: "r3", Attempted: 1, Reason: "no route"})
	dt.RecordExecution(ExecutionRecord{RequestID: "r1", Timeslot: 1, Success: true})
	dt.RecordExecution(ExecutionRecord{RequestID: "r2", Timeslot: 1, Reason: "no route"})

	// WHEN summarized
	summary := Summarize(dt)

	// THEN counts match
	if summary.AdmissionAttempts != 3 {
		t.Errorf("AdmissionAttempts: got %d, want 3", summary.AdmissionAttempts)
	}
	if summary.AdmittedCount != 2 || summary.SharedCount != 1 || summary.RejectedCount != 1 {
		t.Errorf("admitted/shared/rejected: got %d/%d/%d, want 2/1/1",
			summary.AdmittedCount, summary.SharedCount, summary.RejectedCount)
	}
	if summary.ExecutedCount != 1 || summary.FailedCount != 1 {
		t.Errorf("executed/failed: got %d/%d, want 1/1", summary.ExecutedCount, summary.FailedCount)
	}
	if summary.MeanRouteLength != 3.0 {
		t.Errorf("MeanRouteLength: got %f, want 3.0", summary.MeanRouteLength)
	}
	if summary.TimeslotLoad[1] != 2 {
		t.Errorf("TimeslotLoad[1]: got %d, want 2", summary.TimeslotLoad[1])
	}
	if summary.FailureReasons["no route"] != 2 {
		t.Errorf("FailureReasons[no route]: got %d, want 2", summary.FailureReasons["no route"])
	}
}
