package pipeline

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"admitguard/internal/config"
	"admitguard/internal/screening"
	"admitguard/internal/store"
)

func newTestRunner(t *testing.T) (*Runner, *store.Store) {
	t.Helper()

	st, err := store.NewStore(filepath.Join(t.TempDir(), "admitguard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := config.DefaultConfig()
	return New(st, cfg, zap.NewNop()), st
}

func intake(t *testing.T, st *store.Store, email string, pct, cgpa float64) {
	t.Helper()
	c := screening.Candidate{
		FirstName:      "Test",
		LastName:       "Candidate",
		Email:          email,
		Phone:          "9876543210",
		Percentage:     pct,
		CGPA:           cgpa,
		GraduationYear: 2022,
		Experience:     math.NaN(),
	}
	inserted, err := st.InsertCandidate(c)
	require.NoError(t, err)
	require.True(t, inserted)
}

func TestRunClassifiesAndRoutes(t *testing.T) {
	r, st := newTestRunner(t)

	intake(t, st, "clean@example.com", 72.0, 8.0)
	intake(t, st, "borderline@example.com", 59.5, 7.0)
	intake(t, st, "reject@example.com", 45.0, 7.0)
	intake(t, st, "broken@example.com", math.NaN(), 7.0)

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, report.RawRows)
	assert.Equal(t, 4, report.NewRows)
	assert.Equal(t, 1, report.CleanWritten)
	assert.Equal(t, 1, report.RejectedWritten)
	assert.Equal(t, 1, report.ExceptionWritten)
	assert.Equal(t, 1, report.Malformed)
	assert.Equal(t, "Success", report.Status)

	counts, err := st.BucketCounts()
	require.NoError(t, err)
	// The malformed record is parked in the exception bucket too.
	want := map[string]int{"accepted": 1, "rejected": 1, "exception": 2}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("bucket counts mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSkipsProcessedRows(t *testing.T) {
	r, st := newTestRunner(t)

	intake(t, st, "clean@example.com", 72.0, 8.0)

	first, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.NewRows)

	second, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.NewRows, "second run must not reprocess routed rows")
	assert.Equal(t, 1, second.RawRows)
}

func TestRunPromotesApprovedExceptions(t *testing.T) {
	r, st := newTestRunner(t)

	intake(t, st, "borderline@example.com", 59.5, 7.0)

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	require.NoError(t, st.Decide("borderline@example.com", screening.StatusApproved, "panel ok"))

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.ExceptionsApproved)

	clean, err := st.CleanEmails()
	require.NoError(t, err)
	assert.Contains(t, clean, "borderline@example.com")

	// A third run finds nothing left to promote.
	report, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.ExceptionsApproved)
}

func TestRunReviewerRejectedStaysOut(t *testing.T) {
	r, st := newTestRunner(t)

	intake(t, st, "borderline@example.com", 59.5, 7.0)
	_, err := r.Run(context.Background())
	require.NoError(t, err)

	require.NoError(t, st.Decide("borderline@example.com", screening.StatusRejected, "not a fit"))

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.ExceptionsApproved)
	assert.Equal(t, 1, report.ReviewerRejected)

	clean, err := st.CleanEmails()
	require.NoError(t, err)
	assert.NotContains(t, clean, "borderline@example.com")
}

func TestRunMergesScoresAndShortlists(t *testing.T) {
	r, st := newTestRunner(t)

	intake(t, st, "high@example.com", 80.0, 8.5)
	intake(t, st, "low@example.com", 75.0, 8.0)
	intake(t, st, "mid@example.com", 70.0, 7.5)

	now := time.Now()
	// Repeats: the highest score per email wins.
	require.NoError(t, st.AddTestScore("high@example.com", 62, now))
	require.NoError(t, st.AddTestScore("high@example.com", 88, now))
	// Below the interview threshold (default 40).
	require.NoError(t, st.AddTestScore("low@example.com", 35, now))
	require.NoError(t, st.AddTestScore("mid@example.com", 70, now))
	// Orphan: no such candidate in clean data.
	require.NoError(t, st.AddTestScore("ghost@example.com", 90, now))
	// Out of range: dropped before the merge.
	require.NoError(t, st.AddTestScore("mid@example.com", 140, now))

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.InvalidScores)
	assert.Equal(t, 1, report.OrphanScores)
	assert.Equal(t, 2, report.InterviewAdded)
	assert.Equal(t, 2, report.InterviewTotal)
	assert.Equal(t, 1, report.InterviewBelow)
	assert.Equal(t, "Partial", report.Status, "dropped scores are reported as run errors")

	list, err := st.Shortlist()
	require.NoError(t, err)
	var emails []string
	for _, row := range list {
		emails = append(emails, row.Email)
	}
	want := []string{"high@example.com", "mid@example.com"}
	if diff := cmp.Diff(want, emails); diff != "" {
		t.Errorf("shortlist order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, list[0].Rank)
	assert.Equal(t, 2, list[1].Rank)
}

func TestRunShortlistDoesNotDuplicate(t *testing.T) {
	r, st := newTestRunner(t)

	intake(t, st, "high@example.com", 80.0, 8.5)
	require.NoError(t, st.AddTestScore("high@example.com", 88, time.Now()))

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.InterviewAdded)
	assert.Equal(t, 1, report.InterviewTotal)
}

func TestRunAbortsOnInvalidRules(t *testing.T) {
	r, st := newTestRunner(t)

	intake(t, st, "clean@example.com", 72.0, 8.0)
	r.cfg.Rules.ExceptionBufferPct = -1.0

	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, screening.ErrInvalidRules)

	// Nothing was classified against the bad snapshot.
	pending, err := st.PendingCandidates()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
