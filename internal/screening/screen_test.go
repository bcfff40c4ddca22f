package screening

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenAcceptedHasNoReasons(t *testing.T) {
	out, err := Screen(defaultCandidate(72.0, 8.1), DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, Accepted, out.Classification)
	assert.Empty(t, out.Reasons)
}

func TestScreenBorderlineCarriesReasons(t *testing.T) {
	out, err := Screen(defaultCandidate(59.5, 5.95), DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, Exception, out.Classification)
	require.Len(t, out.Reasons, 2)
	assert.Contains(t, out.Reasons[0], "slightly below")
	assert.Contains(t, out.Reasons[1], "slightly below")
}

func TestScreenHardFailureDominatesBorderline(t *testing.T) {
	// Percentage is borderline but the missing phone is a hard failure,
	// so the record is rejected, not routed to review.
	c := defaultCandidate(59.5, 7.0)
	c.Phone = ""
	out, err := Screen(c, DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, Rejected, out.Classification)
	assert.Contains(t, out.Reasons, "'phone' is missing")
}

func TestScreenRangeChecks(t *testing.T) {
	rules := DefaultRules()

	c := defaultCandidate(140.0, 7.0)
	out, err := Screen(c, rules)
	require.NoError(t, err)
	assert.Equal(t, Rejected, out.Classification)
	assert.Contains(t, out.Reasons[0], "out of range")

	c = defaultCandidate(72.0, 7.0)
	c.GraduationYear = 1999
	out, err = Screen(c, rules)
	require.NoError(t, err)
	assert.Equal(t, Rejected, out.Classification)

	c = defaultCandidate(72.0, 7.0)
	c.Experience = 55
	out, err = Screen(c, rules)
	require.NoError(t, err)
	assert.Equal(t, Rejected, out.Classification)
}

func TestScreenMissingMetricIsMalformed(t *testing.T) {
	c := defaultCandidate(72.0, math.NaN())
	_, err := Screen(c, DefaultRules())
	require.ErrorIs(t, err, ErrMalformedRecord)
	assert.Contains(t, err.Error(), "CGPA")
}

func TestScreenReviewerDecisionsBypassValidation(t *testing.T) {
	// Approved records were already validated when they first entered the
	// exception bucket; a later run must not re-reject them.
	c := defaultCandidate(59.5, 7.0)
	c.Status = StatusApproved
	c.Phone = ""
	out, err := Screen(c, DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, Accepted, out.Classification)
}

func TestNormalize(t *testing.T) {
	c := Candidate{
		FirstName: "  asha ",
		LastName:  "VERMA",
		Email:     " Asha.Verma@Example.COM ",
		Phone:     "+91 98765-43210",
	}
	Normalize(&c)
	assert.Equal(t, "Asha", c.FirstName)
	assert.Equal(t, "Verma", c.LastName)
	assert.Equal(t, "asha.verma@example.com", c.Email)
	assert.Equal(t, "9876543210", c.Phone)
}

func TestNormalizePhoneVariants(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+919876543210", "9876543210"},
		{"919876543210", "9876543210"},
		{"09876543210", "9876543210"},
		{"9876543210", "9876543210"},
		{"(987) 654-3210", "9876543210"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePhone(tt.in), "input %q", tt.in)
	}
}
