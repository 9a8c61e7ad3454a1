package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"sourcing-agent/internal/profile"
	"sourcing-agent/internal/retry"
	"sourcing-agent/internal/scoring"
	"sourcing-agent/internal/search"

	"go.uber.org/zap"
)

type fakeLookup struct {
	results map[string]*search.Result
	errs    map[string]error
	delay   time.Duration
	calls   atomic.Int64
}

func (f *fakeLookup) Lookup(ctx context.Context, name, _ string) (*search.Result, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	return f.results[name], nil
}

type fakeScorer struct {
	scores map[string]float64
}

func (f *fakeScorer) Score(_ context.Context, candidate profile.Candidate, _ string) scoring.ScoredCandidate {
	score := f.scores[candidate.Name]
	return scoring.ScoredCandidate{
		Profile:  candidate,
		Score:    score,
		FitLevel: scoring.FitLevelFor(score),
	}
}

type fakeMessenger struct{}

func (fakeMessenger) Generate(_ context.Context, scored scoring.ScoredCandidate, _ string) string {
	return "Hi " + scored.Profile.Name
}

func found(name string) *search.Result {
	return &search.Result{
		Title:   name + " - Engineer - LinkedIn",
		Link:    "https://linkedin.com/in/" + name,
		Snippet: "Engineer at Acme Corp.",
	}
}

func newTestOrchestrator(lookup LookupClient, scores map[string]float64, cfg Config) *Orchestrator {
	return New(Deps{
		Lookup:      lookup,
		Scorer:      &fakeScorer{scores: scores},
		Messenger:   fakeMessenger{},
		LookupRetry: &retry.Policy{Attempts: 1},
	}, cfg, zap.NewNop())
}

func TestRunValidatesInput(t *testing.T) {
	o := newTestOrchestrator(&fakeLookup{}, nil, Config{})

	cases := []Request{
		{JobDescription: "", CandidateNames: []string{"A"}},
		{JobDescription: "Engineer", CandidateNames: nil},
		{JobDescription: "Engineer", CandidateNames: []string{"A", "  "}},
	}

	for _, req := range cases {
		_, err := o.Run(context.Background(), req)

		var inputErr *InputError
		if !errors.As(err, &inputErr) {
			t.Fatalf("expected an InputError for %+v, got %v", req, err)
		}
	}
}

func TestRunScoresAndRanksCandidates(t *testing.T) {
	lookup := &fakeLookup{results: map[string]*search.Result{
		"Alice": found("Alice"),
		"Bob":   found("Bob"),
	}}

	o := newTestOrchestrator(lookup, map[string]float64{"Alice": 64.0, "Bob": 81.0}, Config{})

	report, err := o.Run(context.Background(), Request{
		JobDescription: "Backend Engineer",
		CandidateNames: []string{"Alice", "Bob"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Status != StatusSuccess {
		t.Fatalf("unexpected status: %s", report.Status)
	}
	if report.CandidatesFound != 2 {
		t.Fatalf("unexpected candidates_found: %d", report.CandidatesFound)
	}
	if report.TopCandidates[0].Name != "Bob" {
		t.Fatalf("expected Bob first, got %s", report.TopCandidates[0].Name)
	}
	for _, c := range report.TopCandidates {
		if c.OutreachMessage == "" {
			t.Fatalf("candidate %s has no outreach message", c.Name)
		}
	}
}

func TestRunSkipsNotFoundCandidates(t *testing.T) {
	lookup := &fakeLookup{results: map[string]*search.Result{}}

	o := newTestOrchestrator(lookup, nil, Config{})

	report, err := o.Run(context.Background(), Request{
		JobDescription: "Backend Engineer",
		CandidateNames: []string{"Nobody", "Missing"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Status != StatusNoCandidates {
		t.Fatalf("expected %s, got %s", StatusNoCandidates, report.Status)
	}
	if report.CandidatesFound != 0 || len(report.TopCandidates) != 0 {
		t.Fatalf("expected an empty report, got %+v", report)
	}

	total := 0
	for _, count := range report.PipelineSummary {
		total += count
	}
	if total != 0 {
		t.Fatalf("summary must be zero-filled, got %v", report.PipelineSummary)
	}
}

func TestRunContinuesPastLookupFailures(t *testing.T) {
	lookup := &fakeLookup{
		results: map[string]*search.Result{"Alice": found("Alice")},
		errs:    map[string]error{"Broken": errors.New("quota exceeded")},
	}

	o := newTestOrchestrator(lookup, map[string]float64{"Alice": 70.0}, Config{})

	report, err := o.Run(context.Background(), Request{
		JobDescription: "Backend Engineer",
		CandidateNames: []string{"Broken", "Alice"},
	})
	if err != nil {
		t.Fatalf("a failed lookup must not fail the run: %v", err)
	}

	if report.CandidatesFound != 1 {
		t.Fatalf("expected 1 candidate, got %d", report.CandidatesFound)
	}
	if report.Status != StatusSuccess {
		t.Fatalf("unexpected status: %s", report.Status)
	}
	if report.TopCandidates[0].Name != "Alice" {
		t.Fatalf("unexpected candidate: %s", report.TopCandidates[0].Name)
	}
}

func TestRunTieKeepsInputOrder(t *testing.T) {
	lookup := &fakeLookup{results: map[string]*search.Result{
		"Alice": found("Alice"),
		"Bob":   found("Bob"),
	}}

	o := newTestOrchestrator(lookup, map[string]float64{"Alice": 75.0, "Bob": 75.0}, Config{Concurrency: 1})

	report, err := o.Run(context.Background(), Request{
		JobDescription: "Backend Engineer",
		CandidateNames: []string{"Alice", "Bob"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TopCandidates[0].Name != "Alice" || report.TopCandidates[1].Name != "Bob" {
		t.Fatalf("equal scores must keep input order, got %s then %s",
			report.TopCandidates[0].Name, report.TopCandidates[1].Name)
	}
}

func TestRunDeadlineSkipsPendingCandidates(t *testing.T) {
	lookup := &fakeLookup{
		results: map[string]*search.Result{
			"Alice": found("Alice"),
			"Bob":   found("Bob"),
			"Carol": found("Carol"),
		},
		delay: 80 * time.Millisecond,
	}

	o := newTestOrchestrator(lookup, map[string]float64{"Alice": 70.0}, Config{
		Concurrency: 1,
		RunDeadline: 40 * time.Millisecond,
	})

	report, err := o.Run(context.Background(), Request{
		JobDescription: "Backend Engineer",
		CandidateNames: []string{"Alice", "Bob", "Carol"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Status != StatusPartial && report.Status != StatusNoCandidates {
		t.Fatalf("expected a cut-short run, got %s", report.Status)
	}
	if lookup.calls.Load() >= 3 {
		t.Fatalf("expected pending candidates to be skipped, got %d lookups", lookup.calls.Load())
	}
}
