package pipeline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"sourcing-agent/internal/scoring"
)

const (
	StatusSuccess      = "success"
	StatusNoCandidates = "no_candidates_found"
	StatusPartial      = "partial"
)

const jobIDSlugMaxRunes = 40

// Report is the aggregate outcome of one sourcing run. It is constructed once
// by the aggregator and never mutated afterwards.
type Report struct {
	JobID           string            `json:"job_id"`
	Status          string            `json:"status"`
	Timestamp       time.Time         `json:"timestamp"`
	JobDescription  string            `json:"job_description"`
	CandidatesFound int               `json:"candidates_found"`
	ExecutionTime   float64           `json:"execution_time"`
	PipelineSummary map[string]int    `json:"pipeline_summary"`
	TopCandidates   []ReportCandidate `json:"top_candidates"`
}

// ReportCandidate is the export shape of one scored candidate.
type ReportCandidate struct {
	Name               string            `json:"name"`
	Score              float64           `json:"score"`
	FitLevel           scoring.FitLevel  `json:"fit_level"`
	Company            string            `json:"company"`
	Location           string            `json:"location"`
	LinkedinURL        string            `json:"linkedin_url"`
	Education          string            `json:"education"`
	CurrentRole        string            `json:"current_role"`
	OutreachMessage    string            `json:"outreach_message"`
	KeyHighlights      []string          `json:"key_highlights,omitempty"`
	ScoringExplanation scoring.Breakdown `json:"scoring_explanation"`
}

// aggregate builds the final report from scored candidates in input order.
// Sorting is stable: equal scores keep their original candidate order.
func aggregate(scored []scoring.ScoredCandidate, req Request, executionTime time.Duration, partial bool) *Report {
	candidates := make([]ReportCandidate, 0, len(scored))
	for _, s := range scored {
		candidates = append(candidates, ReportCandidate{
			Name:               s.Profile.Name,
			Score:              s.Score,
			FitLevel:           s.FitLevel,
			Company:            s.Profile.Company,
			Location:           s.Profile.Location,
			LinkedinURL:        s.Profile.LinkedinURL,
			Education:          s.Profile.Education,
			CurrentRole:        s.Profile.CurrentRole,
			OutreachMessage:    s.OutreachMessage,
			KeyHighlights:      s.Highlights,
			ScoringExplanation: s.Breakdown,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	summary := make(map[string]int, len(scoring.Levels))
	for _, level := range scoring.Levels {
		summary[string(level)] = 0
	}
	for _, c := range candidates {
		summary[string(c.FitLevel)]++
	}

	status := StatusSuccess
	switch {
	case len(candidates) == 0:
		status = StatusNoCandidates
	case partial:
		status = StatusPartial
	}

	return &Report{
		JobID:           JobID(req.JobDescription),
		Status:          status,
		Timestamp:       time.Now().UTC(),
		JobDescription:  req.JobDescription,
		CandidatesFound: len(candidates),
		ExecutionTime:   executionTime.Seconds(),
		PipelineSummary: summary,
		TopCandidates:   candidates,
	}
}

// JobID derives a deterministic identifier from the job description: a slug
// of the title line plus six hex characters of the description digest, so
// exports of the same job text land on the same file name.
func JobID(jobDescription string) string {
	req := Request{JobDescription: jobDescription}

	slug := slugify(req.JobTitle())
	if slug == "" {
		slug = "job"
	}

	digest := sha256.Sum256([]byte(jobDescription))
	return fmt.Sprintf("%s-%x", slug, digest[:3])
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	runes := []rune(slug)
	if len(runes) > jobIDSlugMaxRunes {
		slug = strings.Trim(string(runes[:jobIDSlugMaxRunes]), "-")
	}
	return slug
}

// WriteFile exports the report as indented JSON under dir and returns the
// full path. Key order follows the struct definition, so exports are diffable.
func (r *Report) WriteFile(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("sourcing_%s.json", r.JobID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}
