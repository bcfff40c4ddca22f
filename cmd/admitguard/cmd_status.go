package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd reports the current pipeline state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show bucket counts, pending reviews and the last run",
	RunE:  showStatus,
}

var statusShortlist bool

func init() {
	statusCmd.Flags().BoolVar(&statusShortlist, "shortlist", false, "Also print the interview shortlist")
}

func showStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	counts, err := s.BucketCounts()
	if err != nil {
		return err
	}
	fmt.Println("Buckets:")
	buckets := make([]string, 0, len(counts))
	for b := range counts {
		buckets = append(buckets, b)
	}
	sort.Strings(buckets)
	for _, b := range buckets {
		fmt.Printf("  %-12s %d\n", b, counts[b])
	}

	pending, err := s.PendingReviewCount()
	if err != nil {
		return err
	}
	fmt.Printf("Awaiting review: %d\n", pending)

	last, err := s.LastRun()
	if err != nil {
		return err
	}
	if last == nil {
		fmt.Println("No runs recorded yet.")
	} else {
		fmt.Printf("Last run %s at %s: %s (%d new, %d clean, %d rejected, %d exception)\n",
			last.RunID, last.StartedAt.Format(time.RFC3339), last.Status,
			last.NewRows, last.CleanWritten, last.RejectedWritten, last.ExceptionWritten)
		if last.Errors != "" {
			fmt.Printf("  errors: %s\n", last.Errors)
		}
	}

	if statusShortlist {
		list, err := s.Shortlist()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("Interview shortlist is empty.")
			return nil
		}
		fmt.Println("Interview shortlist:")
		for _, row := range list {
			fmt.Printf("  %2d. %-32s %-24s %.0f\n", row.Rank, row.Email, row.Name, row.TestScore)
		}
	}
	return nil
}
