package pipeline

import (
	"fmt"
	"strings"
	"time"

	"admitguard/internal/store"
)

// Report summarises one screening pass, mirroring the run-log schema plus
// a few transient diagnostics.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	RawRows            int
	NewRows            int
	CleanWritten       int
	RejectedWritten    int
	ExceptionWritten   int
	Malformed          int
	ExceptionsApproved int
	ReviewerRejected   int
	InvalidScores      int
	OrphanScores       int
	InterviewAdded     int
	InterviewTotal     int
	InterviewBelow     int

	Errors []string
	Status string
}

func (r *Report) addError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// computeStatus mirrors the original run tracker: Failed when errors
// occurred and nothing was processed, Partial when errors occurred but
// rows went through, Success otherwise.
func (r *Report) computeStatus() string {
	switch {
	case len(r.Errors) > 0 && r.NewRows == 0:
		return "Failed"
	case len(r.Errors) > 0:
		return "Partial"
	default:
		return "Success"
	}
}

func (r *Report) logEntry() store.RunLogEntry {
	return store.RunLogEntry{
		RunID:              r.RunID,
		StartedAt:          r.StartedAt,
		FinishedAt:         r.FinishedAt,
		RawRows:            r.RawRows,
		NewRows:            r.NewRows,
		CleanWritten:       r.CleanWritten,
		RejectedWritten:    r.RejectedWritten,
		ExceptionWritten:   r.ExceptionWritten,
		Malformed:          r.Malformed,
		ExceptionsApproved: r.ExceptionsApproved,
		InterviewAdded:     r.InterviewAdded,
		InterviewTotal:     r.InterviewTotal,
		InterviewBelow:     r.InterviewBelow,
		Errors:             strings.Join(r.Errors, "; "),
		Status:             r.Status,
	}
}

// Summary renders the human-readable end-of-run block printed by the CLI.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s: %s\n", r.RunID, r.Status)
	fmt.Fprintf(&b, "  raw rows:            %d\n", r.RawRows)
	fmt.Fprintf(&b, "  new this run:        %d\n", r.NewRows)
	fmt.Fprintf(&b, "  clean:               %d\n", r.CleanWritten)
	fmt.Fprintf(&b, "  rejected:            %d\n", r.RejectedWritten)
	fmt.Fprintf(&b, "  exception:           %d\n", r.ExceptionWritten)
	fmt.Fprintf(&b, "  needs correction:    %d\n", r.Malformed)
	fmt.Fprintf(&b, "  approvals promoted:  %d\n", r.ExceptionsApproved)
	fmt.Fprintf(&b, "  interview added:     %d\n", r.InterviewAdded)
	fmt.Fprintf(&b, "  interview total:     %d\n", r.InterviewTotal)
	fmt.Fprintf(&b, "  below test cutoff:   %d\n", r.InterviewBelow)
	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "  errors: %s\n", strings.Join(r.Errors, "; "))
	}
	return b.String()
}
