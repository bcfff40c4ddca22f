package screening

import "fmt"

// hardFailures applies the intake checks that reject a record outright:
// missing mandatory identity fields and out-of-range metrics. A present but
// out-of-range metric is a hard failure; a missing metric is handled
// separately as a malformed record.
func hardFailures(c Candidate, r Rules) []string {
	var reasons []string

	mandatory := []struct {
		name  string
		value string
	}{
		{"first name", c.FirstName},
		{"last name", c.LastName},
		{"email", c.Email},
		{"phone", c.Phone},
	}
	for _, f := range mandatory {
		if f.value == "" {
			reasons = append(reasons, fmt.Sprintf("'%s' is missing", f.name))
		}
	}

	if c.HasPercentage() && (c.Percentage < 0 || c.Percentage > 100) {
		reasons = append(reasons, fmt.Sprintf("percentage %.2f out of range (0-100)", c.Percentage))
	}
	if c.HasCGPA() && (c.CGPA < 0 || c.CGPA > 10) {
		reasons = append(reasons, fmt.Sprintf("CGPA %.2f out of range (0-10)", c.CGPA))
	}
	if c.GraduationYear == 0 {
		reasons = append(reasons, "'graduation year' is missing")
	} else if c.GraduationYear < r.GraduationYearMin || c.GraduationYear > r.GraduationYearMax {
		reasons = append(reasons, fmt.Sprintf("graduation year %d out of range (%d-%d)",
			c.GraduationYear, r.GraduationYearMin, r.GraduationYearMax))
	}
	if c.HasExperience() && (c.Experience < 0 || c.Experience > r.MaxExperience) {
		reasons = append(reasons, fmt.Sprintf("experience %.1f yrs out of range (0-%.0f)",
			c.Experience, r.MaxExperience))
	}

	return reasons
}
