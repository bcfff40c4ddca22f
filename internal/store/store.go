// Package store persists AdmitGuard state in SQLite: raw candidates with
// their bucket and pipeline status, test scores, the interview shortlist,
// and the run log. It implements the collaborator interfaces the pipeline
// reads from and writes to.
package store

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"admitguard/internal/screening"
)

// Pipeline status values written back to the raw candidate row. A non-empty
// value marks the row as processed; later runs skip it.
const (
	PipelineStatusClean     = "Processed - Clean"
	PipelineStatusRejected  = "Processed - Rejected"
	PipelineStatusException = "Processed - Exception"
	PipelineStatusMalformed = "Needs Correction"
	PipelineStatusApproved  = "Approved - Clean"
)

// Store manages the AdmitGuard database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewStore creates or opens the AdmitGuard store at the given path.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// initSchema creates the database schema.
func (s *Store) initSchema() error {
	schema := `
	-- Raw intake plus routing state
	CREATE TABLE IF NOT EXISTS candidates (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		percentage REAL,
		cgpa REAL,
		graduation_year INTEGER NOT NULL DEFAULT 0,
		experience REAL,
		bucket TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Pending',
		reasons TEXT NOT NULL DEFAULT '',
		reviewer_remark TEXT NOT NULL DEFAULT '',
		pipeline_status TEXT NOT NULL DEFAULT '',
		test_score REAL,
		flagged_at DATETIME,
		processed_at DATETIME,
		rejected_at DATETIME,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_candidates_bucket ON candidates(bucket);
	CREATE INDEX IF NOT EXISTS idx_candidates_pipeline ON candidates(pipeline_status);
	CREATE INDEX IF NOT EXISTS idx_candidates_status ON candidates(status);

	-- Raw test score submissions (may contain repeats per email)
	CREATE TABLE IF NOT EXISTS test_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL,
		score REAL NOT NULL,
		submitted_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_test_scores_email ON test_scores(email);

	-- Interview shortlist, ranked by test score
	CREATE TABLE IF NOT EXISTS interview (
		email TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		test_score REAL NOT NULL,
		rank INTEGER NOT NULL DEFAULT 0,
		interview_status TEXT NOT NULL DEFAULT 'Pending',
		interview_date TEXT NOT NULL DEFAULT '',
		interviewer TEXT NOT NULL DEFAULT '',
		added_at DATETIME NOT NULL
	);

	-- One row per pipeline execution
	CREATE TABLE IF NOT EXISTS run_log (
		run_id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		raw_rows INTEGER NOT NULL,
		new_rows INTEGER NOT NULL,
		clean_written INTEGER NOT NULL,
		rejected_written INTEGER NOT NULL,
		exception_written INTEGER NOT NULL,
		malformed INTEGER NOT NULL,
		exceptions_approved INTEGER NOT NULL,
		interview_added INTEGER NOT NULL,
		interview_total INTEGER NOT NULL,
		interview_below INTEGER NOT NULL,
		errors TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// nullMetric converts a NaN-marked missing metric to SQL NULL.
func nullMetric(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

// metricValue converts a scanned nullable column back to the NaN sentinel.
func metricValue(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// InsertCandidate stores a new raw intake record. A fresh id is assigned
// when the record has none. Returns false when a record with the same email
// already exists (the row is left untouched).
func (s *Store) InsertCandidate(c screening.Candidate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = screening.StatusPending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	res, err := s.db.Exec(`
		INSERT INTO candidates (id, first_name, last_name, email, phone,
			percentage, cgpa, graduation_year, experience, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO NOTHING
	`, c.ID, c.FirstName, c.LastName, c.Email, c.Phone,
		nullMetric(c.Percentage), nullMetric(c.CGPA), c.GraduationYear,
		nullMetric(c.Experience), string(c.Status), c.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert candidate: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// scanCandidates maps query rows to screening candidates.
func scanCandidates(rows *sql.Rows) ([]screening.Candidate, error) {
	var out []screening.Candidate
	for rows.Next() {
		var (
			c          screening.Candidate
			pct, cgpa  sql.NullFloat64
			experience sql.NullFloat64
			status     string
		)
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
			&pct, &cgpa, &c.GraduationYear, &experience, &status, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Percentage = metricValue(pct)
		c.CGPA = metricValue(cgpa)
		c.Experience = metricValue(experience)
		c.Status = screening.Status(status)
		out = append(out, c)
	}
	return out, rows.Err()
}

const candidateColumns = `id, first_name, last_name, email, phone,
	percentage, cgpa, graduation_year, experience, status, created_at`

// PendingCandidates returns raw records no previous run has processed,
// oldest first.
func (s *Store) PendingCandidates() ([]screening.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT `+candidateColumns+`
		FROM candidates
		WHERE pipeline_status = ''
		ORDER BY created_at, email
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending candidates: %w", err)
	}
	defer rows.Close()

	return scanCandidates(rows)
}

// RawCount returns the total number of intake rows ever stored.
func (s *Store) RawCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM candidates`).Scan(&n)
	return n, err
}

// Route writes the classification result for one candidate: bucket,
// reasons, the bucket-specific timestamp, and the pipeline status that
// marks the row processed. Exception rows keep status Pending for review.
func (s *Store) Route(id string, out screening.Outcome, pipelineStatus string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reasons := strings.Join(out.Reasons, "; ")

	var query string
	switch out.Classification {
	case screening.Accepted:
		query = `UPDATE candidates SET bucket='accepted', reasons=?, pipeline_status=?, processed_at=? WHERE id=?`
	case screening.Rejected:
		query = `UPDATE candidates SET bucket='rejected', reasons=?, pipeline_status=?, rejected_at=? WHERE id=?`
	case screening.Exception:
		query = `UPDATE candidates SET bucket='exception', status='Pending', reasons=?, pipeline_status=?, flagged_at=? WHERE id=?`
	default:
		return fmt.Errorf("unknown classification %v", out.Classification)
	}

	res, err := s.db.Exec(query, reasons, pipelineStatus, now, id)
	if err != nil {
		return fmt.Errorf("failed to route candidate %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no candidate with id %s", id)
	}
	return nil
}

// BucketCounts returns the number of candidates per bucket.
func (s *Store) BucketCounts() (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT bucket, COUNT(*) FROM candidates GROUP BY bucket`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var bucket string
		var n int
		if err := rows.Scan(&bucket, &n); err != nil {
			return nil, err
		}
		if bucket == "" {
			bucket = "unprocessed"
		}
		counts[bucket] = n
	}
	return counts, rows.Err()
}

// CleanEmails returns the set of emails currently in the accepted bucket.
func (s *Store) CleanEmails() (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT email FROM candidates WHERE bucket='accepted'`)
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
