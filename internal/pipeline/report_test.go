package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sourcing-agent/internal/profile"
	"sourcing-agent/internal/scoring"
)

func TestJobID(t *testing.T) {
	description := "Software Engineer, ML Research - Windsurf\nLocation: Mountain View, CA"

	id := JobID(description)

	if !strings.HasPrefix(id, "software-engineer-ml-research-") {
		t.Fatalf("unexpected job id: %s", id)
	}
	if got := id[strings.LastIndex(id, "-")+1:]; len(got) != 6 {
		t.Fatalf("expected a 6-char digest suffix, got %q", got)
	}

	if JobID(description) != id {
		t.Fatal("job id must be deterministic")
	}
	if JobID(description+" ") == id {
		t.Fatal("different descriptions must produce different ids")
	}
}

func TestJobIDFallbackSlug(t *testing.T) {
	id := JobID("!!! ???")
	if !strings.HasPrefix(id, "job-") {
		t.Fatalf("expected the fallback slug, got %s", id)
	}
}

func TestAggregateSortsAndSummarizes(t *testing.T) {
	req := Request{
		JobDescription: "Backend Engineer",
		CandidateNames: []string{"A", "B", "C"},
	}

	scored := []scoring.ScoredCandidate{
		candidateScored("A", 75.0),
		candidateScored("B", 82.0),
		candidateScored("C", 41.0),
	}

	report := aggregate(scored, req, 2*time.Second, false)

	if report.Status != StatusSuccess {
		t.Fatalf("unexpected status: %s", report.Status)
	}
	if report.CandidatesFound != 3 {
		t.Fatalf("unexpected candidates_found: %d", report.CandidatesFound)
	}
	if report.ExecutionTime != 2.0 {
		t.Fatalf("unexpected execution_time: %v", report.ExecutionTime)
	}

	order := make([]string, 0, 3)
	for _, c := range report.TopCandidates {
		order = append(order, c.Name)
	}
	if order[0] != "B" || order[1] != "A" || order[2] != "C" {
		t.Fatalf("unexpected order: %v", order)
	}

	if len(report.PipelineSummary) != 5 {
		t.Fatalf("summary must always carry all five levels: %v", report.PipelineSummary)
	}
	if report.PipelineSummary["Excellent"] != 1 || report.PipelineSummary["Strong"] != 1 || report.PipelineSummary["Fair"] != 1 {
		t.Fatalf("unexpected summary: %v", report.PipelineSummary)
	}
	if report.PipelineSummary["Good"] != 0 || report.PipelineSummary["Poor"] != 0 {
		t.Fatalf("empty levels must be zero, not missing: %v", report.PipelineSummary)
	}

	total := 0
	for _, count := range report.PipelineSummary {
		total += count
	}
	if total != report.CandidatesFound {
		t.Fatalf("summary counts %d do not add up to %d", total, report.CandidatesFound)
	}
}

func TestAggregateTieKeepsInputOrder(t *testing.T) {
	req := Request{JobDescription: "Backend Engineer", CandidateNames: []string{"A", "B"}}

	report := aggregate([]scoring.ScoredCandidate{
		candidateScored("A", 75.0),
		candidateScored("B", 75.0),
	}, req, time.Second, false)

	if report.TopCandidates[0].Name != "A" || report.TopCandidates[1].Name != "B" {
		t.Fatalf("equal scores must keep input order, got %s then %s",
			report.TopCandidates[0].Name, report.TopCandidates[1].Name)
	}
}

func TestAggregateStatuses(t *testing.T) {
	req := Request{JobDescription: "Backend Engineer", CandidateNames: []string{"A"}}

	empty := aggregate(nil, req, time.Second, false)
	if empty.Status != StatusNoCandidates {
		t.Fatalf("expected %s, got %s", StatusNoCandidates, empty.Status)
	}
	if empty.CandidatesFound != 0 || len(empty.TopCandidates) != 0 {
		t.Fatalf("empty report must carry no candidates: %+v", empty)
	}

	// Deadline skips beat success even when some candidates made it through.
	partial := aggregate([]scoring.ScoredCandidate{candidateScored("A", 75.0)}, req, time.Second, true)
	if partial.Status != StatusPartial {
		t.Fatalf("expected %s, got %s", StatusPartial, partial.Status)
	}

	// An empty run is reported as no candidates even when it was cut short.
	emptyPartial := aggregate(nil, req, time.Second, true)
	if emptyPartial.Status != StatusNoCandidates {
		t.Fatalf("expected %s, got %s", StatusNoCandidates, emptyPartial.Status)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	req := Request{JobDescription: "Backend Engineer", CandidateNames: []string{"A"}}
	report := aggregate([]scoring.ScoredCandidate{candidateScored("A", 75.0)}, req, time.Second, false)

	path, err := report.WriteFile(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Base(path) != "sourcing_"+report.JobID+".json" {
		t.Fatalf("unexpected file name: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading the export: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not valid json: %v", err)
	}
	if decoded.JobID != report.JobID || decoded.CandidatesFound != 1 {
		t.Fatalf("roundtrip mismatch: %+v", decoded)
	}
}

func candidateScored(name string, score float64) scoring.ScoredCandidate {
	return scoring.ScoredCandidate{
		Profile: profile.Candidate{
			Name:     name,
			Company:  "Acme",
			Location: "Remote",
			Found:    true,
		},
		Score:           score,
		FitLevel:        scoring.FitLevelFor(score),
		OutreachMessage: "Hi " + name,
	}
}
