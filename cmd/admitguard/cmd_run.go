package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"admitguard/internal/config"
	"admitguard/internal/pipeline"
)

var (
	watchMode    bool
	watchEvery   time.Duration
	printSummary bool
)

// runCmd executes screening passes
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a screening pass over unprocessed intake records",
	Long: `Runs one full screening pass:

  1. Classify every unprocessed record against the current thresholds
  2. Route each record to its bucket (malformed records are parked
     in the exception bucket as "Needs Correction")
  3. Promote reviewer-approved exceptions into clean data
  4. Merge submitted test scores (highest per candidate wins)
  5. Rebuild the ranked interview shortlist
  6. Append a run-log entry

With --watch the process stays resident, re-running on an interval and
picking up config edits without a restart.`,
	RunE: runScreening,
}

func init() {
	runCmd.Flags().BoolVar(&watchMode, "watch", false, "Stay resident and re-run on an interval")
	runCmd.Flags().DurationVar(&watchEvery, "every", 5*time.Minute, "Re-run interval in watch mode")
	runCmd.Flags().BoolVar(&printSummary, "summary", true, "Print the end-of-run summary")
}

func runScreening(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	if !watchMode {
		report, err := pipeline.New(s, cfg, logger).Run(ctx)
		if err != nil {
			return err
		}
		if printSummary {
			fmt.Print(report.Summary())
		}
		return nil
	}

	// Watch mode: hot-reload thresholds on config edits between passes.
	// Each pass works from whichever snapshot was current when it started.
	var current atomic.Pointer[config.Config]
	current.Store(cfg)

	path := configPath
	if path == "" {
		path = os.Getenv("ADMITGUARD_CONFIG")
	}
	if path == "" {
		path = config.DefaultFileName
	}
	watcher, err := config.NewWatcher(path, logger, func(next *config.Config) {
		if dbPath != "" {
			next.Database.Path = dbPath
		}
		current.Store(next)
	})
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start config watcher: %w", err)
	}
	defer watcher.Stop()

	ticker := time.NewTicker(watchEvery)
	defer ticker.Stop()

	for {
		report, err := pipeline.New(s, current.Load(), logger).Run(ctx)
		if err != nil {
			logger.Error("screening pass failed", zap.Error(err))
		} else if printSummary {
			fmt.Print(report.Summary())
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
