package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"admitguard/internal/screening"
)

// importCmd loads candidate intake records from CSV
var importCmd = &cobra.Command{
	Use:   "import [file.csv]",
	Short: "Import candidate intake records from a CSV export",
	Long: `Imports candidate records from a CSV export of the intake form.

The header row is matched case-insensitively against the form's column
names ("First Name", "Email Address", "Total Percentage", "CGPA",
"Graduation Year", "Total Experience", ...). Records are normalised on
the way in; blank or non-numeric metrics are kept as missing so the
screening pass can park them for correction instead of guessing.
Records whose email already exists are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: importCandidates,
}

// scoresCmd loads test score submissions from CSV
var scoresCmd = &cobra.Command{
	Use:   "scores [file.csv]",
	Short: "Import test score submissions from a CSV export",
	Long: `Imports raw test score rows ("Email ID", "Test Score" columns).
Scores are stored as submitted; validation, de-duplication (highest
per candidate) and merging into clean data happen during the next run.`,
	Args: cobra.ExactArgs(1),
	RunE: importScores,
}

// intakeColumns maps normalised CSV header names to candidate fields.
var intakeColumns = map[string]string{
	"first name":       "first",
	"last name":        "last",
	"email address":    "email",
	"email":            "email",
	"phone number":     "phone",
	"phone":            "phone",
	"total percentage": "percentage",
	"percentage":       "percentage",
	"cgpa":             "cgpa",
	"graduation year":  "gradyear",
	"total experience": "experience",
	"experience":       "experience",
}

func importCandidates(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open intake file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse intake file: %w", err)
	}
	if len(rows) < 2 {
		return fmt.Errorf("intake file has no data rows")
	}

	fields := make(map[string]int)
	for i, h := range rows[0] {
		if name, ok := intakeColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			fields[name] = i
		}
	}
	for _, required := range []string{"email", "percentage", "cgpa"} {
		if _, ok := fields[required]; !ok {
			return fmt.Errorf("intake file is missing a %q column", required)
		}
	}

	var imported, skipped int
	for _, row := range rows[1:] {
		cell := func(name string) string {
			i, ok := fields[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		c := screening.Candidate{
			FirstName:      cell("first"),
			LastName:       cell("last"),
			Email:          cell("email"),
			Phone:          cell("phone"),
			Percentage:     parseMetric(cell("percentage")),
			CGPA:           parseMetric(cell("cgpa")),
			Experience:     parseMetric(cell("experience")),
			GraduationYear: parseYear(cell("gradyear")),
			Status:         screening.StatusPending,
		}
		screening.Normalize(&c)
		if c.Email == "" {
			skipped++
			logger.Warn("skipping row without an email address")
			continue
		}

		inserted, err := s.InsertCandidate(c)
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", c.Email, err)
		}
		if inserted {
			imported++
		} else {
			skipped++
			logger.Debug("duplicate email skipped", zap.String("email", c.Email))
		}
	}

	logger.Info("intake import finished",
		zap.Int("imported", imported), zap.Int("skipped", skipped))
	fmt.Printf("Imported %d candidate(s), skipped %d.\n", imported, skipped)
	return nil
}

func importScores(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open scores file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse scores file: %w", err)
	}
	if len(rows) < 2 {
		return fmt.Errorf("scores file has no data rows")
	}

	emailIdx, scoreIdx := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "email id", "email address", "email":
			emailIdx = i
		case "test score", "score":
			scoreIdx = i
		}
	}
	if emailIdx < 0 || scoreIdx < 0 {
		return fmt.Errorf("scores file needs \"Email ID\" and \"Test Score\" columns")
	}

	now := time.Now()
	var added int
	for _, row := range rows[1:] {
		if emailIdx >= len(row) || scoreIdx >= len(row) {
			continue
		}
		email := screening.NormalizeEmail(row[emailIdx])
		if email == "" {
			continue
		}
		score := parseMetric(row[scoreIdx])
		if math.IsNaN(score) {
			// Stored out-of-range so the run reports it as invalid rather
			// than dropping it silently here.
			score = -1
		}
		if err := s.AddTestScore(email, score, now); err != nil {
			return fmt.Errorf("failed to store score for %s: %w", email, err)
		}
		added++
	}

	logger.Info("score import finished", zap.Int("added", added))
	fmt.Printf("Stored %d score submission(s).\n", added)
	return nil
}

// parseMetric parses a numeric cell, returning NaN for blank or
// non-numeric values so missing metrics stay distinguishable from zero.
func parseMetric(raw string) float64 {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if raw == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseYear parses a graduation year cell, returning 0 when absent.
func parseYear(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	y, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return y
}
