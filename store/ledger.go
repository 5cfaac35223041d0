package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/polysamo/quantumnet/network"
	"github.com/polysamo/quantumnet/sched"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// LedgerStore persists run summaries and per-request outcomes in SQLite.
type LedgerStore struct {
	db *gorm.DB
}

// Open connects to the SQLite database at dsn and migrates the schema.
// Use ":memory:" or "file::memory:" for a throwaway store.
func Open(dsn string) (*LedgerStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}
	if err := db.AutoMigrate(&Run{}, &ExecutionRow{}); err != nil {
		return nil, fmt.Errorf("migrating ledger database: %w", err)
	}
	return &LedgerStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *LedgerStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RunInput is everything SaveRun records about a finished run.
type RunInput struct {
	Mode    string
	Seed    int64
	Report  sched.Report
	Rows    []ExecutionRow
	Network *network.Metrics // nil when no simulated network was attached
}

// SaveRun stores a run and its rows in one transaction and returns the new run ID.
func (s *LedgerStore) SaveRun(in RunInput) (string, error) {
	run := Run{
		ID:        uuid.NewString(),
		Mode:      in.Mode,
		Seed:      in.Seed,
		Success:   in.Report.Success,
		Failed:    in.Report.Failed,
		Scheduled: in.Report.Scheduled,
		Pending:   in.Report.Pending,
	}
	if m := in.Network; m != nil {
		run.Timeslot = m.Timeslot
		run.EPRsUsed = m.EPRsUsed
		run.QubitsUsed = m.QubitsUsed
		run.MeanFidelity = m.MeanFidelity
		run.MeanRouteLength = m.MeanRouteLength
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		if len(in.Rows) == 0 {
			return nil
		}
		rows := make([]ExecutionRow, len(in.Rows))
		for i, r := range in.Rows {
			r.ID = 0
			r.RunID = run.ID
			rows[i] = r
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return "", fmt.Errorf("saving run: %w", err)
	}
	logrus.Infof("run %s saved: %d executed, %d failed, %d rows", run.ID, run.Success, run.Failed, len(in.Rows))
	return run.ID, nil
}

// GetRun loads a run with its execution rows ordered by timeslot.
func (s *LedgerStore) GetRun(id string) (*Run, error) {
	var run Run
	err := s.db.Preload("Executions", func(db *gorm.DB) *gorm.DB {
		return db.Order("timeslot ASC, id ASC")
	}).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs first, without their rows.
// limit <= 0 returns every run.
func (s *LedgerStore) ListRuns(limit int) ([]Run, error) {
	var runs []Run
	query := s.db.Model(&Run{}).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// FailedRows returns the failed rows of a run.
func (s *LedgerStore) FailedRows(runID string) ([]ExecutionRow, error) {
	var rows []ExecutionRow
	err := s.db.Where("run_id = ? AND status = ?", runID, string(sched.StatusFailed)).
		Order("timeslot ASC, id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RowsFromLedgers converts a controller's ledgers into execution rows.
func RowsFromLedgers(executed []sched.ExecutedEntry, failed []sched.FailedEntry) []ExecutionRow {
	rows := make([]ExecutionRow, 0, len(executed)+len(failed))
	for _, e := range executed {
		row := rowFromRequest(e.Request, e.Timeslot)
		row.Status = string(sched.StatusExecuted)
		row.Route = e.Path.String()
		rows = append(rows, row)
	}
	for _, f := range failed {
		req := f.Request
		row := rowFromRequest(&req, f.Timeslot)
		row.Status = string(sched.StatusFailed)
		row.Route = f.Route
		row.Reason = f.Reason
		rows = append(rows, row)
	}
	return rows
}

// RowsFromSchedule converts an executed slice schedule into execution rows.
func RowsFromSchedule(schedule sched.Schedule) []ExecutionRow {
	var rows []ExecutionRow
	for _, t := range schedule.Timeslots() {
		for _, req := range schedule[t] {
			row := rowFromRequest(req, t)
			row.Status = string(req.Status)
			row.Reason = req.Reason
			rows = append(rows, row)
		}
	}
	return rows
}

func rowFromRequest(req *sched.Request, timeslot int) ExecutionRow {
	row := ExecutionRow{
		RequestID:   req.ID,
		Source:      req.Source,
		Destination: req.Destination,
		Demand:      req.Demand,
		Protocol:    req.Protocol,
		Scenario:    req.Scenario,
		SliceID:     req.SliceID,
		Timeslot:    timeslot,
	}
	if req.HasSlicePath() {
		row.Route = req.SlicePath.String()
	}
	return row
}
