package store

import (
	"database/sql"
	"fmt"
	"time"
)

// RunLogEntry is the audit record for one pipeline execution.
type RunLogEntry struct {
	RunID              string
	StartedAt          time.Time
	FinishedAt         time.Time
	RawRows            int
	NewRows            int
	CleanWritten       int
	RejectedWritten    int
	ExceptionWritten   int
	Malformed          int
	ExceptionsApproved int
	InterviewAdded     int
	InterviewTotal     int
	InterviewBelow     int
	Errors             string
	Status             string
}

// AppendRunLog stores the audit entry for a finished run.
func (s *Store) AppendRunLog(e RunLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO run_log (run_id, started_at, finished_at, raw_rows, new_rows,
			clean_written, rejected_written, exception_written, malformed,
			exceptions_approved, interview_added, interview_total, interview_below,
			errors, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.RunID, e.StartedAt, e.FinishedAt, e.RawRows, e.NewRows,
		e.CleanWritten, e.RejectedWritten, e.ExceptionWritten, e.Malformed,
		e.ExceptionsApproved, e.InterviewAdded, e.InterviewTotal, e.InterviewBelow,
		e.Errors, e.Status)
	if err != nil {
		return fmt.Errorf("failed to append run log: %w", err)
	}
	return nil
}

// LastRun returns the most recent run log entry, or nil when no run has
// been recorded yet.
func (s *Store) LastRun() (*RunLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e RunLogEntry
	err := s.db.QueryRow(`
		SELECT run_id, started_at, finished_at, raw_rows, new_rows,
			clean_written, rejected_written, exception_written, malformed,
			exceptions_approved, interview_added, interview_total, interview_below,
			errors, status
		FROM run_log ORDER BY started_at DESC LIMIT 1
	`).Scan(&e.RunID, &e.StartedAt, &e.FinishedAt, &e.RawRows, &e.NewRows,
		&e.CleanWritten, &e.RejectedWritten, &e.ExceptionWritten, &e.Malformed,
		&e.ExceptionsApproved, &e.InterviewAdded, &e.InterviewTotal, &e.InterviewBelow,
		&e.Errors, &e.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
