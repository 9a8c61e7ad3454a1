package outreach

import (
	"context"
	"fmt"
	"strings"

	_ "embed"

	"sourcing-agent/internal/ai"
	"sourcing-agent/internal/profile"
	"sourcing-agent/internal/retry"
	"sourcing-agent/internal/scoring"

	"go.uber.org/zap"
)

//go:embed message_prompt.md
var promptTemplate string

// Excerpt length of the job description used in the fallback template.
const descriptionExcerptRunes = 160

// Generator produces a personalized outreach message for a scored candidate.
// Any failure of the generative call degrades to a deterministic template, so
// the returned message is never empty.
type Generator struct {
	generator ai.Generator
	retry     *retry.Policy
	logger    *zap.Logger
}

func NewGenerator(generator ai.Generator, policy *retry.Policy, log *zap.Logger) *Generator {
	if policy == nil {
		policy = retry.Default()
	}

	return &Generator{
		generator: generator,
		retry:     policy,
		logger:    log,
	}
}

func (g *Generator) Generate(ctx context.Context, scored scoring.ScoredCandidate, jobDescription string) string {
	candidate := scored.Profile

	// A run deadline that expired before this stage started means no more
	// external calls; the template still guarantees a message.
	if g.generator == nil || ctx.Err() != nil {
		return FallbackMessage(candidate, jobDescription)
	}

	prompt := buildPrompt(scored, jobDescription)

	var message string
	err := g.retry.Do(ctx, func(ctx context.Context) error {
		var genErr error
		message, genErr = g.generator.GenerateContent(ctx, prompt)
		return retry.Transient(genErr)
	})
	if err != nil || strings.TrimSpace(message) == "" {
		g.logger.Warn("message generation failed, using template fallback",
			zap.String("candidate", candidate.Name),
			zap.Error(err),
		)
		return FallbackMessage(candidate, jobDescription)
	}

	return strings.TrimSpace(message)
}

func buildPrompt(scored scoring.ScoredCandidate, jobDescription string) string {
	candidate := scored.Profile

	role := candidate.CurrentRole
	if role == "" {
		role = "a professional"
	}

	replacements := []struct{ placeholder, value string }{
		{"{{NAME}}", candidate.Name},
		{"{{ROLE}}", role},
		{"{{COMPANY}}", candidate.Company},
		{"{{SNIPPET}}", candidate.Snippet},
		{"{{JOB_DESCRIPTION}}", jobDescription},
		{"{{REASONING}}", scored.Breakdown.Reasoning},
	}

	prompt := promptTemplate
	for _, r := range replacements {
		prompt = strings.ReplaceAll(prompt, r.placeholder, r.value)
	}
	return prompt
}

// FallbackMessage interpolates name, company and a description excerpt into a
// fixed template. It always produces non-empty text.
func FallbackMessage(candidate profile.Candidate, jobDescription string) string {
	excerpt := descriptionExcerpt(jobDescription)

	if candidate.Company != "" && candidate.Company != profile.UnknownValue {
		return fmt.Sprintf(
			"Hi %s, I came across your profile and your experience at %s stood out. We are hiring for the following role and I think you could be a great fit: %s Would you be open to a short chat?",
			candidate.Name, candidate.Company, excerpt,
		)
	}

	return fmt.Sprintf(
		"Hi %s, I came across your profile and your background stood out. We are hiring for the following role and I think you could be a great fit: %s Would you be open to a short chat?",
		candidate.Name, excerpt,
	)
}

func descriptionExcerpt(jobDescription string) string {
	excerpt := strings.Join(strings.Fields(jobDescription), " ")
	runes := []rune(excerpt)
	if len(runes) > descriptionExcerptRunes {
		excerpt = string(runes[:descriptionExcerptRunes]) + "..."
	}
	if !strings.HasSuffix(excerpt, ".") && !strings.HasSuffix(excerpt, "...") {
		excerpt += "."
	}
	return excerpt
}
