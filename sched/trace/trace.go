package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures admission, execution and placement decisions.
	TraceLevelDecisions TraceLevel = "decisions"
)

var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// DecisionTrace collects decision records during a simulation run.
type DecisionTrace struct {
	Level      TraceLevel
	Admissions []AdmissionRecord
	Executions []ExecutionRecord
	Placements []PlacementRecord
}

// NewDecisionTrace creates a DecisionTrace ready for recording.
func NewDecisionTrace(level TraceLevel) *DecisionTrace {
	return &DecisionTrace{
		Level:      level,
		Admissions: make([]AdmissionRecord, 0),
		Executions: make([]ExecutionRecord, 0),
		Placements: make([]PlacementRecord, 0),
	}
}

// Enabled reports whether records should be collected. Safe on nil.
func (dt *DecisionTrace) Enabled() bool {
	return dt != nil && dt.Level == TraceLevelDecisions
}

// RecordAdmission appends an admission record.
func (dt *DecisionTrace) RecordAdmission(record AdmissionRecord) {
	dt.Admissions = append(dt.Admissions, record)
}

// RecordExecution appends an execution record.
func (dt *DecisionTrace) RecordExecution(record ExecutionRecord) {
	dt.Executions = append(dt.Executions, record)
}

// RecordPlacement appends a slice placement record.
func (dt *DecisionTrace) RecordPlacement(record PlacementRecord) {
	dt.Placements = append(dt.Placements, record)
}
