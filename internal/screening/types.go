// Package screening implements the AdmitGuard eligibility core: a pure
// three-bucket classifier driven by configurable thresholds with tolerance
// buffers, plus the intake validation and normalization that feed it.
package screening

import (
	"math"
	"time"
)

// Classification is the final disposition of a candidate for one run.
type Classification int

const (
	// Accepted means every metric met its hard cutoff.
	Accepted Classification = iota
	// Rejected means at least one metric fell below cutoff minus buffer,
	// or a hard validation check failed.
	Rejected
	// Exception means no metric failed hard but at least one landed inside
	// its tolerance buffer; the record needs manual review.
	Exception
)

func (c Classification) String() string {
	switch c {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Exception:
		return "exception"
	default:
		return "unknown"
	}
}

// Status is the reviewer-controlled state of an exception record.
// Transitions are Pending -> Approved or Pending -> Rejected, made only by
// an external reviewer, never by the classifier.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Candidate is one intake record. Identity fields are opaque strings; the
// classifier only reads the numeric metrics and the reviewer status.
// Percentage, CGPA and Experience use NaN to mark a missing value.
type Candidate struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Percentage     float64
	CGPA           float64
	GraduationYear int
	Experience     float64
	Status         Status

	CreatedAt time.Time
}

// Name returns the display name used in reports and the interview list.
func (c Candidate) Name() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// HasPercentage reports whether the percentage metric was supplied.
func (c Candidate) HasPercentage() bool { return !math.IsNaN(c.Percentage) }

// HasCGPA reports whether the CGPA metric was supplied.
func (c Candidate) HasCGPA() bool { return !math.IsNaN(c.CGPA) }

// HasExperience reports whether the optional experience metric was supplied.
func (c Candidate) HasExperience() bool { return !math.IsNaN(c.Experience) }

// Outcome is the pipeline-facing result of screening one candidate:
// the bucket plus the human-readable reasons that put it there.
type Outcome struct {
	Classification Classification
	// Reasons holds hard-failure text for Rejected and borderline text for
	// Exception. Empty for Accepted.
	Reasons []string
}
