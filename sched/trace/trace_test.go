package trace

import "testing"

func TestDecisionTrace_Enabled(t *testing.T) {
	var nilTrace *DecisionTrace
	if nilTrace.Enabled() {
		t.Error("nil trace must report disabled")
	}
	if NewDecisionTrace(TraceLevelNone).Enabled() {
		t.Error("level none must report disabled")
	}
	if !NewDecisionTrace(TraceLevelDecisions).Enabled() {
		t.Error("level decisions must report enabled")
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	for _, level := range []string{"", "none", "decisions"} {
		if !IsValidTraceLevel(level) {
			t.Errorf("expected %q to be valid", level)
		}
	}
	if IsValidTraceLevel("verbose") {
		t.Error("expected verbose to be invalid")
	}
}

func TestDecisionTrace_RecordPlacement(t *testing.T) {
	dt := NewDecisionTrace(TraceLevelDecisions)
	dt.RecordPlacement(PlacementRecord{RequestID: "r1", SliceID: "slice_1", Timeslot: 2})
	if len(dt.Placements) != 1 || dt.Placements[0].Timeslot != 2 {
		t.Errorf("unexpected placements: %+v", dt.Placements)
	}
}
