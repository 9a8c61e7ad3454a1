package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"sourcing-agent/internal/profile"
	"sourcing-agent/internal/retry"
	"sourcing-agent/internal/scoring"
	"sourcing-agent/internal/search"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency  = 3
	defaultStageTimeout = 15 * time.Second
)

// LookupClient resolves a candidate name to a raw public profile. A nil
// result with a nil error means the candidate was not found, which is a
// normal outcome.
type LookupClient interface {
	Lookup(ctx context.Context, name, jobTitle string) (*search.Result, error)
}

// Scorer computes the fit of a found candidate; it never fails, degrading to
// a heuristic internally.
type Scorer interface {
	Score(ctx context.Context, candidate profile.Candidate, jobDescription string) scoring.ScoredCandidate
}

// Messenger produces the outreach text; it never returns empty text.
type Messenger interface {
	Generate(ctx context.Context, scored scoring.ScoredCandidate, jobDescription string) string
}

// Config tunes the orchestrator. Zero values pick the defaults.
type Config struct {
	// Concurrency bounds the candidate worker pool.
	Concurrency int
	// StageTimeout caps each external call (lookup, scoring, messaging).
	StageTimeout time.Duration
	// RunDeadline, when positive, bounds the whole run. Candidates not yet
	// started at the deadline are skipped; in-flight candidates finish their
	// current stage only.
	RunDeadline time.Duration
}

// Orchestrator drives the lookup -> normalize -> score -> message sequence
// over a candidate batch and assembles the final report.
type Orchestrator struct {
	lookup      LookupClient
	scorer      Scorer
	messenger   Messenger
	extractor   *profile.Extractor
	lookupRetry *retry.Policy
	logger      *zap.Logger
	cfg         Config
}

// Deps carries the capabilities injected into the orchestrator.
type Deps struct {
	Lookup      LookupClient
	Scorer      Scorer
	Messenger   Messenger
	Extractor   *profile.Extractor
	LookupRetry *retry.Policy
}

func New(deps Deps, cfg Config, log *zap.Logger) *Orchestrator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = defaultStageTimeout
	}

	extractor := deps.Extractor
	if extractor == nil {
		extractor = profile.DefaultExtractor()
	}

	lookupRetry := deps.LookupRetry
	if lookupRetry == nil {
		lookupRetry = retry.Default()
	}

	return &Orchestrator{
		lookup:      deps.Lookup,
		scorer:      deps.Scorer,
		messenger:   deps.Messenger,
		extractor:   extractor,
		lookupRetry: lookupRetry,
		logger:      log,
		cfg:         cfg,
	}
}

// Run executes the full pipeline for the request. It fails fast with an
// InputError on a malformed request; after that point it always returns a
// well-formed report, absorbing external failures into skips and fallbacks.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	jobTitle := req.JobTitle()

	runCtx := ctx
	cancel := func() {}
	if o.cfg.RunDeadline > 0 {
		runCtx, cancel = context.WithTimeout(ctx, o.cfg.RunDeadline)
	}
	defer cancel()

	o.logger.Info("starting sourcing pipeline",
		zap.Int("candidates", len(req.CandidateNames)),
		zap.String("job_title", jobTitle),
		zap.Int("concurrency", o.cfg.Concurrency),
	)

	results := make([]*scoring.ScoredCandidate, len(req.CandidateNames))
	var skippedByDeadline atomic.Int64

	var g errgroup.Group
	g.SetLimit(o.cfg.Concurrency)

	for i, name := range req.CandidateNames {
		g.Go(func() error {
			if runCtx.Err() != nil {
				skippedByDeadline.Add(1)
				o.logger.Warn("run deadline reached, skipping candidate",
					zap.String("candidate", name),
				)
				return nil
			}

			results[i] = o.processCandidate(runCtx, name, jobTitle, req.JobDescription)
			return nil
		})
	}

	// Workers absorb their own failures; the error is always nil.
	_ = g.Wait()

	scored := make([]scoring.ScoredCandidate, 0, len(results))
	for _, result := range results {
		if result != nil {
			scored = append(scored, *result)
		}
	}

	report := aggregate(scored, req, time.Since(start), skippedByDeadline.Load() > 0)

	o.logger.Info("pipeline completed",
		zap.String("job_id", report.JobID),
		zap.String("status", report.Status),
		zap.Int("candidates_found", report.CandidatesFound),
		zap.Float64("execution_time", report.ExecutionTime),
	)

	return report, nil
}

// processCandidate runs the per-candidate state machine. A nil return means
// the candidate is excluded from the report (not found or lookup failed).
func (o *Orchestrator) processCandidate(runCtx context.Context, name, jobTitle, jobDescription string) *scoring.ScoredCandidate {
	raw, err := o.lookupWithRetry(runCtx, name, jobTitle)
	if err != nil {
		o.logger.Warn("profile lookup failed, skipping candidate",
			zap.String("candidate", name),
			zap.Error(err),
		)
		return nil
	}

	candidate := profile.Normalize(raw, name, o.extractor)
	if !candidate.Found {
		o.logger.Info("no public profile found, skipping candidate",
			zap.String("candidate", name),
		)
		return nil
	}

	o.logger.Info("profile found",
		zap.String("candidate", candidate.Name),
		zap.String("company", candidate.Company),
	)

	scoreCtx := runCtx
	cancelScore := context.CancelFunc(func() {})
	if runCtx.Err() == nil {
		scoreCtx, cancelScore = o.stageContext(runCtx)
	}
	scored := o.scorer.Score(scoreCtx, candidate, jobDescription)
	cancelScore()

	// A new stage starts only while the run deadline holds. Passing the
	// expired run context instead forces the local fallback path, so a
	// scored candidate still always carries a message.
	messageCtx := runCtx
	cancelMessage := context.CancelFunc(func() {})
	if runCtx.Err() == nil {
		messageCtx, cancelMessage = o.stageContext(runCtx)
	}
	scored.OutreachMessage = o.messenger.Generate(messageCtx, scored, jobDescription)
	cancelMessage()

	return &scored
}

func (o *Orchestrator) lookupWithRetry(runCtx context.Context, name, jobTitle string) (*search.Result, error) {
	var raw *search.Result

	lookupCtx, cancel := o.stageContext(runCtx)
	defer cancel()

	err := o.lookupRetry.Do(lookupCtx, func(ctx context.Context) error {
		var lookupErr error
		raw, lookupErr = o.lookup.Lookup(ctx, name, jobTitle)
		return lookupErr
	})

	return raw, err
}

// stageContext gives a stage its own timeout, detached from the run deadline
// so an in-flight stage can finish after the deadline fires. Whether a new
// stage starts at all is checked against runCtx before each stage.
func (o *Orchestrator) stageContext(runCtx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(runCtx), o.cfg.StageTimeout)
}
