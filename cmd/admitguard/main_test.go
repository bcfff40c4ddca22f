package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"admitguard/internal/store"
)

func TestParseMetric(t *testing.T) {
	assert.Equal(t, 72.5, parseMetric("72.5"))
	assert.Equal(t, 72.5, parseMetric(" 72.5% "))
	assert.True(t, math.IsNaN(parseMetric("")))
	assert.True(t, math.IsNaN(parseMetric("N/A")))
}

func TestParseYear(t *testing.T) {
	assert.Equal(t, 2021, parseYear("2021"))
	assert.Zero(t, parseYear(""))
	assert.Zero(t, parseYear("unknown"))
}

func TestImportCandidatesFromCSV(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "intake.csv")
	data := "First Name,Last Name,Email Address,Phone Number,Total Percentage,CGPA,Graduation Year,Total Experience\n" +
		"ravi,kumar,Ravi.Kumar@Example.COM,+91 98765 43210,72,7.5,2021,2\n" +
		"anita,rao,anita@example.com,9123456780,,8.0,2022,\n" +
		"ravi,kumar,ravi.kumar@example.com,9876543210,72,7.5,2021,2\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(data), 0644))

	configPath = filepath.Join(dir, "no-such-config.yaml")
	dbPath = filepath.Join(dir, "admitguard.db")
	logger = zap.NewNop()
	t.Cleanup(func() { configPath, dbPath = "", "" })

	require.NoError(t, importCandidates(importCmd, []string{csvPath}))

	s, err := store.NewStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	pending, err := s.PendingCandidates()
	require.NoError(t, err)
	require.Len(t, pending, 2, "duplicate email must be skipped")

	byEmail := make(map[string]int)
	for i, c := range pending {
		byEmail[c.Email] = i
	}

	ravi := pending[byEmail["ravi.kumar@example.com"]]
	assert.Equal(t, "Ravi Kumar", ravi.Name())
	assert.Equal(t, "9876543210", ravi.Phone, "country code must be stripped")
	assert.Equal(t, 72.0, ravi.Percentage)

	anita := pending[byEmail["anita@example.com"]]
	assert.True(t, math.IsNaN(anita.Percentage), "blank metric must import as missing")
	assert.Equal(t, 8.0, anita.CGPA)
}

func TestImportScoresFromCSV(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "scores.csv")
	data := "Email ID,Test Score\n" +
		"Ravi.Kumar@Example.com,88\n" +
		"anita@example.com,not-a-number\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(data), 0644))

	configPath = filepath.Join(dir, "no-such-config.yaml")
	dbPath = filepath.Join(dir, "admitguard.db")
	logger = zap.NewNop()
	t.Cleanup(func() { configPath, dbPath = "", "" })

	require.NoError(t, importScores(scoresCmd, []string{csvPath}))

	s, err := store.NewStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	rows, err := s.TestScores()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	scores := make(map[string]float64)
	for _, row := range rows {
		scores[row.Email] = row.Score
	}
	assert.Equal(t, 88.0, scores["ravi.kumar@example.com"])
	assert.Equal(t, -1.0, scores["anita@example.com"], "unparseable score is stored out of range")
}
