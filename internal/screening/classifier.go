package screening

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is returned when a metric the classifier needs is
// missing or was non-numeric at intake. Such a record must never be
// defaulted into a bucket; the caller routes it to the exception sink
// pending manual correction.
var ErrMalformedRecord = errors.New("malformed record")

// metricBand is the per-field outcome of a threshold comparison.
type metricBand int

const (
	bandPass metricBand = iota
	bandBorderline
	bandFail
)

// band places a value relative to a cutoff and its tolerance buffer.
// Comparisons are inclusive at both edges: a value exactly at the cutoff
// passes, a value exactly at cutoff-buffer is borderline, not failed.
func band(v, cutoff, buffer float64) metricBand {
	switch {
	case v >= cutoff:
		return bandPass
	case v >= cutoff-buffer:
		return bandBorderline
	default:
		return bandFail
	}
}

// Classify evaluates the two eligibility metrics of a candidate against a
// rules snapshot and returns exactly one classification.
//
// It is a pure function of (candidate, rules): no side effects, no shared
// state, safe to call concurrently across records with a shared snapshot.
//
// Records already carrying a reviewer decision bypass the metric rules:
// Approved is treated as Accepted and Rejected stays Rejected. Pending
// records are (re-)classified.
func Classify(c Candidate, r Rules) (Classification, error) {
	switch c.Status {
	case StatusApproved:
		return Accepted, nil
	case StatusRejected:
		return Rejected, nil
	}

	if !c.HasPercentage() {
		return Rejected, fmt.Errorf("%w: percentage is missing or non-numeric", ErrMalformedRecord)
	}
	if !c.HasCGPA() {
		return Rejected, fmt.Errorf("%w: CGPA is missing or non-numeric", ErrMalformedRecord)
	}

	pct := band(c.Percentage, r.MinPercentage, r.ExceptionBufferPct)
	cgpa := band(c.CGPA, r.MinCGPA, r.ExceptionBufferCGPA)

	if pct == bandFail || cgpa == bandFail {
		return Rejected, nil
	}
	if pct == bandBorderline || cgpa == bandBorderline {
		return Exception, nil
	}
	return Accepted, nil
}

// Screen runs the full intake decision for one candidate: hard validation
// checks first, then the metric classifier, producing the bucket together
// with the reasons that will be written to the sink.
//
// Like Classify it is pure and safe for concurrent use. A malformed record
// (missing metric) is surfaced as ErrMalformedRecord, never bucketed.
func Screen(c Candidate, r Rules) (Outcome, error) {
	if c.Status == StatusApproved {
		return Outcome{Classification: Accepted}, nil
	}
	if c.Status == StatusRejected {
		return Outcome{Classification: Rejected, Reasons: []string{"rejected by reviewer"}}, nil
	}

	if !c.HasPercentage() {
		return Outcome{}, fmt.Errorf("%w: percentage is missing or non-numeric", ErrMalformedRecord)
	}
	if !c.HasCGPA() {
		return Outcome{}, fmt.Errorf("%w: CGPA is missing or non-numeric", ErrMalformedRecord)
	}

	hard := hardFailures(c, r)

	var soft []string
	switch band(c.Percentage, r.MinPercentage, r.ExceptionBufferPct) {
	case bandFail:
		hard = append(hard, fmt.Sprintf("percentage %.2f%% is below minimum %.2f%%", c.Percentage, r.MinPercentage))
	case bandBorderline:
		soft = append(soft, fmt.Sprintf("percentage %.2f%% is slightly below minimum %.2f%% (within %.2f%% buffer)",
			c.Percentage, r.MinPercentage, r.ExceptionBufferPct))
	}
	switch band(c.CGPA, r.MinCGPA, r.ExceptionBufferCGPA) {
	case bandFail:
		hard = append(hard, fmt.Sprintf("CGPA %.2f is below minimum %.2f", c.CGPA, r.MinCGPA))
	case bandBorderline:
		soft = append(soft, fmt.Sprintf("CGPA %.2f is slightly below minimum %.2f (within %.2f buffer)",
			c.CGPA, r.MinCGPA, r.ExceptionBufferCGPA))
	}

	if len(hard) > 0 {
		return Outcome{Classification: Rejected, Reasons: hard}, nil
	}
	if len(soft) > 0 {
		return Outcome{Classification: Exception, Reasons: soft}, nil
	}
	return Outcome{Classification: Accepted}, nil
}
