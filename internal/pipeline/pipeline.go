// Package pipeline executes one AdmitGuard screening pass: read unprocessed
// intake records, classify them against the current rules snapshot, route
// them to the bucketed sinks, promote reviewer-approved exceptions, merge
// test scores, build the interview shortlist, and record a run-log entry.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"admitguard/internal/config"
	"admitguard/internal/screening"
	"admitguard/internal/store"
)

// Storage is the collaborator surface the runner needs. *store.Store
// implements all of it; tests may substitute pieces.
type Storage interface {
	RawCount() (int, error)
	PendingCandidates() ([]screening.Candidate, error)
	Route(id string, out screening.Outcome, pipelineStatus string, now time.Time) error

	ApprovedExceptions() ([]screening.Candidate, error)
	PromoteToClean(id string, now time.Time) error
	CleanEmails() (map[string]struct{}, error)
	ReviewerRejectedCount() (int, error)

	TestScores() ([]store.ScoreRow, error)
	AttachScore(email string, score float64) (bool, error)
	ScoredClean() ([]store.InterviewRow, error)
	ShortlistedEmails() (map[string]struct{}, error)
	AddToShortlist(rows []store.InterviewRow, now time.Time) error
	Shortlist() ([]store.InterviewRow, error)

	AppendRunLog(e store.RunLogEntry) error
}

// Runner drives one screening pass at a time.
type Runner struct {
	storage Storage
	cfg     *config.Config
	log     *zap.Logger
}

// New creates a runner.
func New(storage Storage, cfg *config.Config, log *zap.Logger) *Runner {
	return &Runner{storage: storage, cfg: cfg, log: log}
}

// Run executes one pass. The rules snapshot is validated up front; an
// invalid snapshot aborts before any record is classified. Failures in the
// post-classification steps (promotion, score merge, shortlist) are
// recorded on the report and do not abort the remaining steps.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.GetRunTimeout())
	defer cancel()

	rules := r.cfg.Screening()
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     time.Now().Format("20060102-150405"),
		StartedAt: time.Now(),
	}
	r.log.Info("screening run started", zap.String("run_id", report.RunID))

	rawRows, err := r.storage.RawCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count raw rows: %w", err)
	}
	report.RawRows = rawRows

	if err := r.classifyPending(ctx, rules, report); err != nil {
		return nil, err
	}

	// The remaining steps degrade gracefully.
	if err := r.promoteApprovals(report); err != nil {
		report.addError(fmt.Sprintf("promotion: %v", err))
		r.log.Error("promotion step failed", zap.Error(err))
	}
	if err := r.mergeScores(report); err != nil {
		report.addError(fmt.Sprintf("score merge: %v", err))
		r.log.Error("score merge step failed", zap.Error(err))
	}
	if err := r.shortlist(rules, report); err != nil {
		report.addError(fmt.Sprintf("shortlist: %v", err))
		r.log.Error("shortlist step failed", zap.Error(err))
	}

	report.FinishedAt = time.Now()
	report.Status = report.computeStatus()

	if err := r.storage.AppendRunLog(report.logEntry()); err != nil {
		r.log.Error("failed to write run log", zap.Error(err))
	}

	r.log.Info("screening run finished",
		zap.String("run_id", report.RunID),
		zap.String("status", report.Status),
		zap.Int("clean", report.CleanWritten),
		zap.Int("rejected", report.RejectedWritten),
		zap.Int("exception", report.ExceptionWritten),
		zap.Int("malformed", report.Malformed))

	return report, nil
}

// outcomeOrMalformed is the per-record classification result collected by
// the worker pool before serial routing.
type outcomeOrMalformed struct {
	outcome   screening.Outcome
	malformed error
}

// classifyPending classifies every unprocessed record and routes it.
// Classification is pure, so records run through a bounded concurrent pool
// with a shared read-only rules snapshot; routing stays serial.
func (r *Runner) classifyPending(ctx context.Context, rules screening.Rules, report *Report) error {
	pending, err := r.storage.PendingCandidates()
	if err != nil {
		return fmt.Errorf("failed to read pending candidates: %w", err)
	}
	report.NewRows = len(pending)
	if len(pending) == 0 {
		r.log.Info("no unprocessed records")
		return nil
	}

	results := make([]outcomeOrMalformed, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Pipeline.Workers)
	for i := range pending {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := pending[i]
			screening.Normalize(&c)
			pending[i] = c

			out, err := screening.Screen(c, rules)
			switch {
			case errors.Is(err, screening.ErrMalformedRecord):
				results[i] = outcomeOrMalformed{malformed: err}
			case err != nil:
				return err
			default:
				results[i] = outcomeOrMalformed{outcome: out}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	now := time.Now()
	for i, c := range pending {
		res := results[i]

		if res.malformed != nil {
			// Never defaulted into a bucket: parked in the exception sink
			// pending manual correction of the record.
			out := screening.Outcome{
				Classification: screening.Exception,
				Reasons:        []string{"needs correction: " + res.malformed.Error()},
			}
			if err := r.storage.Route(c.ID, out, store.PipelineStatusMalformed, now); err != nil {
				report.addError(fmt.Sprintf("route %s: %v", c.Email, err))
				continue
			}
			report.Malformed++
			r.log.Warn("malformed record parked for correction",
				zap.String("email", c.Email), zap.String("reason", res.malformed.Error()))
			continue
		}

		var pipelineStatus string
		switch res.outcome.Classification {
		case screening.Accepted:
			pipelineStatus = store.PipelineStatusClean
		case screening.Rejected:
			pipelineStatus = store.PipelineStatusRejected
		case screening.Exception:
			pipelineStatus = store.PipelineStatusException
		}
		if err := r.storage.Route(c.ID, res.outcome, pipelineStatus, now); err != nil {
			report.addError(fmt.Sprintf("route %s: %v", c.Email, err))
			continue
		}

		switch res.outcome.Classification {
		case screening.Accepted:
			report.CleanWritten++
		case screening.Rejected:
			report.RejectedWritten++
			r.log.Info("candidate rejected",
				zap.String("email", c.Email), zap.Strings("reasons", res.outcome.Reasons))
		case screening.Exception:
			report.ExceptionWritten++
			r.log.Info("candidate flagged for review",
				zap.String("email", c.Email), zap.Strings("reasons", res.outcome.Reasons))
		}
	}

	return nil
}

// promoteApprovals moves exceptions the reviewer approved since the last
// run into clean data, skipping any email already present there.
func (r *Runner) promoteApprovals(report *Report) error {
	approved, err := r.storage.ApprovedExceptions()
	if err != nil {
		return err
	}
	if rejected, err := r.storage.ReviewerRejectedCount(); err == nil {
		report.ReviewerRejected = rejected
	}
	if len(approved) == 0 {
		return nil
	}

	clean, err := r.storage.CleanEmails()
	if err != nil {
		return err
	}

	now := time.Now()
	for _, c := range approved {
		if _, exists := clean[c.Email]; exists {
			r.log.Warn("approved exception already in clean data, skipping",
				zap.String("email", c.Email))
			continue
		}
		if err := r.storage.PromoteToClean(c.ID, now); err != nil {
			report.addError(fmt.Sprintf("promote %s: %v", c.Email, err))
			continue
		}
		report.ExceptionsApproved++
		r.log.Info("approved exception promoted", zap.String("email", c.Email))
	}
	return nil
}

// mergeScores folds raw test score submissions into clean data. Scores
// outside 0-100 are dropped and reported; the highest score per email
// wins; orphan scores (no matching clean candidate) are reported but never
// create candidates.
func (r *Runner) mergeScores(report *Report) error {
	rows, err := r.storage.TestScores()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	best := make(map[string]float64)
	for _, row := range rows {
		if row.Score < 0 || row.Score > 100 {
			report.InvalidScores++
			r.log.Warn("invalid test score dropped",
				zap.String("email", row.Email), zap.Float64("score", row.Score))
			continue
		}
		email := screening.NormalizeEmail(row.Email)
		if cur, ok := best[email]; !ok || row.Score > cur {
			best[email] = row.Score
		}
	}
	if report.InvalidScores > 0 {
		report.addError(fmt.Sprintf("%d invalid test score(s) dropped", report.InvalidScores))
	}

	for email, score := range best {
		attached, err := r.storage.AttachScore(email, score)
		if err != nil {
			report.addError(fmt.Sprintf("attach score %s: %v", email, err))
			continue
		}
		if !attached {
			report.OrphanScores++
			r.log.Warn("test score has no matching clean candidate",
				zap.String("email", email), zap.Float64("score", score))
		}
	}
	return nil
}

// shortlist moves scored clean candidates at or above the test score
// threshold onto the interview list, re-ranking the combined list by score
// descending. Already-shortlisted candidates are not duplicated.
func (r *Runner) shortlist(rules screening.Rules, report *Report) error {
	scored, err := r.storage.ScoredClean()
	if err != nil {
		return err
	}
	if len(scored) == 0 {
		return nil
	}

	already, err := r.storage.ShortlistedEmails()
	if err != nil {
		return err
	}

	var additions []store.InterviewRow
	for _, c := range scored {
		if c.TestScore < rules.MinTestScore {
			report.InterviewBelow++
			continue
		}
		if _, ok := already[c.Email]; ok {
			continue
		}
		additions = append(additions, c)
	}

	if len(additions) > 0 {
		if err := r.storage.AddToShortlist(additions, time.Now()); err != nil {
			return err
		}
	}
	report.InterviewAdded = len(additions)

	list, err := r.storage.Shortlist()
	if err != nil {
		return err
	}
	report.InterviewTotal = len(list)
	return nil
}
