package store

import (
	"database/sql"
	"fmt"
	"time"
)

// ScoreRow is one raw test score submission.
type ScoreRow struct {
	Email       string
	Score       float64
	SubmittedAt time.Time
}

// InterviewRow is one shortlist entry.
type InterviewRow struct {
	Email       string
	Name        string
	TestScore   float64
	Rank        int
	Status      string
	Date        string
	Interviewer string
}

// AddTestScore appends a raw score submission. Validation (range, repeats)
// happens at merge time in the pipeline, mirroring how the score sheet
// accumulated rows as-is.
func (s *Store) AddTestScore(email string, score float64, submittedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO test_scores (email, score, submitted_at) VALUES (?, ?, ?)`,
		email, score, submittedAt)
	if err != nil {
		return fmt.Errorf("failed to add test score: %w", err)
	}
	return nil
}

// TestScores returns every raw score submission, oldest first.
func (s *Store) TestScores() ([]ScoreRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT email, score, submitted_at FROM test_scores ORDER BY submitted_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScoreRow
	for rows.Next() {
		var r ScoreRow
		if err := rows.Scan(&r.Email, &r.Score, &r.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AttachScore writes the merged test score onto an accepted candidate.
func (s *Store) AttachScore(email string, score float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`UPDATE candidates SET test_score=? WHERE email=? AND bucket='accepted'`,
		score, email)
	if err != nil {
		return false, fmt.Errorf("failed to attach score: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ScoredClean returns accepted candidates that have a merged test score,
// as (email, name, score) triples.
func (s *Store) ScoredClean() ([]InterviewRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT email, first_name || ' ' || last_name, test_score
		FROM candidates
		WHERE bucket='accepted' AND test_score IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InterviewRow
	for rows.Next() {
		var r InterviewRow
		if err := rows.Scan(&r.Email, &r.Name, &r.TestScore); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ShortlistedEmails returns the set of emails already on the shortlist.
func (s *Store) ShortlistedEmails() (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT email FROM interview`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := make(map[string]struct{})
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails[email] = struct{}{}
	}
	return emails, rows.Err()
}

// AddToShortlist inserts new interview rows and reassigns ranks over the
// combined list by score descending, so the shortlist stays a single
// consistent ranking after every run. Panel fields on existing rows
// (status, date, interviewer) are preserved.
func (s *Store) AddToShortlist(rows []InterviewRow, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range rows {
		if _, err := tx.Exec(`
			INSERT INTO interview (email, name, test_score, added_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(email) DO UPDATE SET test_score=excluded.test_score
		`, r.Email, r.Name, r.TestScore, now); err != nil {
			return fmt.Errorf("failed to shortlist %s: %w", r.Email, err)
		}
	}

	if err := reassignRanks(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// reassignRanks rewrites rank 1..N ordered by score descending.
func reassignRanks(tx *sql.Tx) error {
	rows, err := tx.Query(`SELECT email FROM interview ORDER BY test_score DESC, email`)
	if err != nil {
		return err
	}
	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			rows.Close()
			return err
		}
		emails = append(emails, email)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for i, email := range emails {
		if _, err := tx.Exec(`UPDATE interview SET rank=? WHERE email=?`, i+1, email); err != nil {
			return err
		}
	}
	return nil
}

// Shortlist returns the interview list ordered by rank.
func (s *Store) Shortlist() ([]InterviewRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT email, name, test_score, rank, interview_status, interview_date, interviewer
		FROM interview ORDER BY rank
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InterviewRow
	for rows.Next() {
		var r InterviewRow
		if err := rows.Scan(&r.Email, &r.Name, &r.TestScore, &r.Rank,
			&r.Status, &r.Date, &r.Interviewer); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
