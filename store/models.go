package store

import "time"

// Run is one persisted simulation run and its summary counters.
type Run struct {
	ID              string         `json:"id" gorm:"primaryKey;size:36"`
	Mode            string         `json:"mode" gorm:"not null;size:20"`
	Seed            int64          `json:"seed"`
	Success         int            `json:"success"`
	Failed          int            `json:"failed"`
	Scheduled       int            `json:"scheduled"`
	Pending         int            `json:"pending"`
	Timeslot        int            `json:"timeslot"`
	EPRsUsed        int            `json:"eprs_used"`
	QubitsUsed      int            `json:"qubits_used"`
	MeanFidelity    float64        `json:"mean_fidelity"`
	MeanRouteLength float64        `json:"mean_route_length"`
	CreatedAt       time.Time      `json:"created_at" gorm:"autoCreateTime"`
	Executions      []ExecutionRow `json:"executions,omitempty" gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// ExecutionRow is the outcome of one request within a Run.
type ExecutionRow struct {
	ID          uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	RunID       string `json:"run_id" gorm:"not null;size:36;index"`
	RequestID   string `json:"request_id" gorm:"not null;size:64"`
	Source      int    `json:"source"`
	Destination int    `json:"destination"`
	Demand      int    `json:"demand"`
	Protocol    string `json:"protocol" gorm:"size:20"`
	Scenario    int    `json:"scenario"`
	SliceID     string `json:"slice_id,omitempty" gorm:"size:32"`
	Timeslot    int    `json:"timeslot"`
	Status      string `json:"status" gorm:"not null;size:20"`
	Route       string `json:"route"`
	Reason      string `json:"reason,omitempty" gorm:"type:text"`
}
