package store

import (
	"errors"
	"fmt"
	"time"

	"admitguard/internal/screening"
)

// Review errors.
var (
	ErrNoSuchCandidate = errors.New("no such candidate")
	ErrNotReviewable   = errors.New("candidate is not a pending exception")
)

// Decide records a reviewer decision on a pending exception. This is the
// only mutation path for the reviewer status, and the only allowed
// transitions are Pending -> Approved and Pending -> Rejected.
func (s *Store) Decide(email string, decision screening.Status, remark string) error {
	if decision != screening.StatusApproved && decision != screening.StatusRejected {
		return fmt.Errorf("decision must be %s or %s, got %q",
			screening.StatusApproved, screening.StatusRejected, decision)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var bucket, status string
	err := s.db.QueryRow(`SELECT bucket, status FROM candidates WHERE email=?`, email).
		Scan(&bucket, &status)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNoSuchCandidate, email)
	}
	if bucket != "exception" || screening.Status(status) != screening.StatusPending {
		return fmt.Errorf("%w: %s is %s/%s", ErrNotReviewable, email, bucket, status)
	}

	_, err = s.db.Exec(`UPDATE candidates SET status=?, reviewer_remark=? WHERE email=?`,
		string(decision), remark, email)
	if err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}
	return nil
}

// ApprovedExceptions returns exception records the reviewer approved since
// the last run, ready for promotion into clean data.
func (s *Store) ApprovedExceptions() ([]screening.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT `+candidateColumns+`
		FROM candidates
		WHERE bucket='exception' AND status='Approved'
		ORDER BY created_at, email
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved exceptions: %w", err)
	}
	defer rows.Close()

	return scanCandidates(rows)
}

// PromoteToClean moves a reviewer-approved exception into the accepted
// bucket, stamping it processed.
func (s *Store) PromoteToClean(id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE candidates
		SET bucket='accepted', pipeline_status=?, processed_at=?
		WHERE id=? AND bucket='exception' AND status='Approved'
	`, PipelineStatusApproved, now, id)
	if err != nil {
		return fmt.Errorf("failed to promote candidate %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotReviewable, id)
	}
	return nil
}

// PendingExceptions returns exception records still awaiting a reviewer
// decision, oldest first.
func (s *Store) PendingExceptions() ([]screening.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT ` + candidateColumns + `
		FROM candidates
		WHERE bucket='exception' AND status='Pending'
		ORDER BY flagged_at, email
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending exceptions: %w", err)
	}
	defer rows.Close()

	return scanCandidates(rows)
}

// PendingReviewCount returns how many exceptions still await a decision.
func (s *Store) PendingReviewCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM candidates WHERE bucket='exception' AND status='Pending'`).Scan(&n)
	return n, err
}

// ReviewerRejectedCount returns how many exceptions the reviewer declined.
func (s *Store) ReviewerRejectedCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM candidates WHERE bucket='exception' AND status='Rejected'`).Scan(&n)
	return n, err
}
