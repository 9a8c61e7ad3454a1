package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"sourcing-agent/internal/ai"
	"sourcing-agent/internal/logger"
	"sourcing-agent/internal/profile"
	"sourcing-agent/internal/retry"

	"go.uber.org/zap"
)

//go:embed score_prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Engine computes a fit score for a candidate against a job description. The
// generative path is tried first; any transport error or structurally invalid
// response falls back to the deterministic heuristic, so scoring never fails.
type Engine struct {
	generator ai.StructuredGenerator
	retry     *retry.Policy
	logger    *zap.Logger
	maxLogLen int
}

func NewEngine(generator ai.StructuredGenerator, policy *retry.Policy, log *zap.Logger, maxLogLength int) *Engine {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if policy == nil {
		policy = retry.Default()
	}

	return &Engine{
		generator: generator,
		retry:     policy,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Score evaluates a found candidate. Callers filter out not-found profiles
// beforehand.
func (e *Engine) Score(ctx context.Context, candidate profile.Candidate, jobDescription string) ScoredCandidate {
	breakdown, err := e.generativeBreakdown(ctx, candidate, jobDescription)
	if err != nil {
		e.logger.Warn("generative scoring failed, using heuristic fallback",
			zap.String("candidate", candidate.Name),
			zap.Error(err),
		)
		breakdown = heuristicBreakdown(candidate, jobDescription)
	}

	score := Overall(breakdown)

	e.logger.Info("candidate scored",
		zap.String("candidate", candidate.Name),
		zap.Float64("score", score),
		zap.String("fit_level", string(FitLevelFor(score))),
	)

	return ScoredCandidate{
		Profile:    candidate,
		Score:      score,
		FitLevel:   FitLevelFor(score),
		Breakdown:  breakdown,
		Highlights: KeyHighlights(candidate, score),
	}
}

func (e *Engine) generativeBreakdown(ctx context.Context, candidate profile.Candidate, jobDescription string) (Breakdown, error) {
	if e.generator == nil {
		return Breakdown{}, fmt.Errorf("no generator configured")
	}

	prompt, err := buildPrompt(candidate, jobDescription)
	if err != nil {
		return Breakdown{}, err
	}

	e.logger.Debug("structured scoring request",
		zap.String("candidate", candidate.Name),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, e.maxLogLen)),
	)

	var raw string
	err = e.retry.Do(ctx, func(ctx context.Context) error {
		var genErr error
		raw, genErr = e.generator.GenerateStructured(ctx, prompt)
		// Generator failures are transport-level from our point of view.
		return retry.Transient(genErr)
	})
	if err != nil {
		return Breakdown{}, err
	}

	e.logger.Debug("structured scoring response",
		zap.String("candidate", candidate.Name),
		zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
	)

	// Validation failures are structural, never retried.
	return parseBreakdown(raw)
}

func buildPrompt(candidate profile.Candidate, jobDescription string) (string, error) {
	payload := map[string]string{
		"name":         candidate.Name,
		"headline":     candidate.Headline,
		"current_role": candidate.CurrentRole,
		"company":      candidate.Company,
		"location":     candidate.Location,
		"education":    candidate.Education,
		"snippet":      candidate.Snippet,
	}

	candidateJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidate payload: %w", err)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{CANDIDATE_JSON}}", string(candidateJSON))
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", jobDescription)
	return prompt, nil
}

var breakdownFields = []string{
	"technical_skills",
	"experience_level",
	"education_background",
	"company_prestige",
	"location_fit",
}

// parseBreakdown validates the model output before any field is trusted: all
// five sub-scores present, numeric and in [0,100], reasoning non-empty.
func parseBreakdown(raw string) (Breakdown, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return Breakdown{}, fmt.Errorf("parse scoring response: %w", err)
	}

	scores := make(map[string]int, len(breakdownFields))
	for _, field := range breakdownFields {
		value, ok := data[field]
		if !ok {
			return Breakdown{}, fmt.Errorf("scoring response is missing %q", field)
		}

		number, ok := value.(float64)
		if !ok {
			return Breakdown{}, fmt.Errorf("scoring response field %q is not numeric", field)
		}

		if number < 0 || number > 100 {
			return Breakdown{}, fmt.Errorf("scoring response field %q is out of range: %v", field, number)
		}

		scores[field] = int(number)
	}

	reasoning, _ := data["reasoning"].(string)
	reasoning = strings.TrimSpace(reasoning)
	if reasoning == "" {
		return Breakdown{}, fmt.Errorf("scoring response has empty reasoning")
	}

	return Breakdown{
		TechnicalSkills:     scores["technical_skills"],
		ExperienceLevel:     scores["experience_level"],
		EducationBackground: scores["education_background"],
		CompanyPrestige:     scores["company_prestige"],
		LocationFit:         scores["location_fit"],
		Reasoning:           reasoning,
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
