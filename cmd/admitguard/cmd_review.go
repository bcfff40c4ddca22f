package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"admitguard/internal/screening"
)

var (
	reviewApprove bool
	reviewReject  bool
	reviewRemark  string
)

// reviewCmd manages reviewer decisions on exception records
var reviewCmd = &cobra.Command{
	Use:   "review [email]",
	Short: "List pending exceptions or record a decision on one",
	Long: `Without arguments, lists exception records awaiting review.

With an email and --approve or --reject, records the decision. Approved
candidates are promoted into clean data on the next run; rejected ones
stay out. A decision can only be made once per candidate.`,
	Args: cobra.MaximumNArgs(1),
	RunE: reviewExceptions,
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewApprove, "approve", false, "Approve the exception")
	reviewCmd.Flags().BoolVar(&reviewReject, "reject", false, "Reject the exception")
	reviewCmd.Flags().StringVar(&reviewRemark, "remark", "", "Reviewer remark stored with the decision")
	reviewCmd.MarkFlagsMutuallyExclusive("approve", "reject")
}

func reviewExceptions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if len(args) == 0 {
		if reviewApprove || reviewReject {
			return fmt.Errorf("an email is required to record a decision")
		}
		pending, err := s.PendingExceptions()
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Println("No exceptions awaiting review.")
			return nil
		}
		fmt.Printf("%d exception(s) awaiting review:\n", len(pending))
		for _, c := range pending {
			fmt.Printf("  %-32s %-24s pct=%s cgpa=%s\n",
				c.Email, c.Name(), formatMetric(c.Percentage), formatMetric(c.CGPA))
		}
		return nil
	}

	if !reviewApprove && !reviewReject {
		return fmt.Errorf("pass --approve or --reject to record a decision")
	}

	decision := screening.StatusApproved
	if reviewReject {
		decision = screening.StatusRejected
	}

	email := screening.NormalizeEmail(args[0])
	if err := s.Decide(email, decision, reviewRemark); err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", email, decision)
	if decision == screening.StatusApproved {
		fmt.Println("The candidate will be promoted into clean data on the next run.")
	}
	return nil
}

// formatMetric renders a possibly-missing metric for display.
func formatMetric(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
