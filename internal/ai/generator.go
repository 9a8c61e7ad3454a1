package ai

import "context"

// Generator produces free-form text from a prompt. Implementations may fail
// with transport errors; callers decide on retries and fallbacks.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// StructuredGenerator produces machine-parseable (JSON-shaped) text from a
// prompt. The output is untrusted until validated by the caller.
type StructuredGenerator interface {
	GenerateStructured(ctx context.Context, prompt string) (string, error)
	Model() string
}
