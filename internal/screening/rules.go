package screening

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRules is returned when a rules snapshot fails validation.
// The pipeline must abort before classifying anything against it.
var ErrInvalidRules = errors.New("invalid screening rules")

// Rules is the immutable threshold snapshot for one screening run.
// Operators edit these values in the config file; each run loads them once
// and shares the snapshot read-only across concurrent classifications.
type Rules struct {
	MinPercentage       float64
	MinCGPA             float64
	ExceptionBufferPct  float64
	ExceptionBufferCGPA float64

	// Supplemental bounds applied by intake validation and the shortlist
	// step, not by the core classifier.
	MinTestScore      float64
	GraduationYearMin int
	GraduationYearMax int
	MaxExperience     float64
}

// DefaultRules returns the stock thresholds.
func DefaultRules() Rules {
	return Rules{
		MinPercentage:       60.0,
		MinCGPA:             6.0,
		ExceptionBufferPct:  1.0,
		ExceptionBufferCGPA: 0.1,
		MinTestScore:        40.0,
		GraduationYearMin:   2010,
		GraduationYearMax:   2025,
		MaxExperience:       40.0,
	}
}

// Validate checks the snapshot before any record is classified.
func (r Rules) Validate() error {
	if math.IsNaN(r.MinPercentage) || r.MinPercentage <= 0 {
		return fmt.Errorf("%w: min percentage must be positive, got %v", ErrInvalidRules, r.MinPercentage)
	}
	if math.IsNaN(r.MinCGPA) || r.MinCGPA <= 0 {
		return fmt.Errorf("%w: min CGPA must be positive, got %v", ErrInvalidRules, r.MinCGPA)
	}
	if math.IsNaN(r.ExceptionBufferPct) || r.ExceptionBufferPct < 0 {
		return fmt.Errorf("%w: percentage buffer must be non-negative, got %v", ErrInvalidRules, r.ExceptionBufferPct)
	}
	if math.IsNaN(r.ExceptionBufferCGPA) || r.ExceptionBufferCGPA < 0 {
		return fmt.Errorf("%w: CGPA buffer must be non-negative, got %v", ErrInvalidRules, r.ExceptionBufferCGPA)
	}
	if r.MinTestScore < 0 || r.MinTestScore > 100 {
		return fmt.Errorf("%w: min test score must be within 0-100, got %v", ErrInvalidRules, r.MinTestScore)
	}
	if r.GraduationYearMin > r.GraduationYearMax {
		return fmt.Errorf("%w: graduation year range %d-%d is inverted", ErrInvalidRules, r.GraduationYearMin, r.GraduationYearMax)
	}
	if r.MaxExperience < 0 {
		return fmt.Errorf("%w: max experience must be non-negative, got %v", ErrInvalidRules, r.MaxExperience)
	}
	return nil
}
