package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sourcing-agent/internal/ai"
	"sourcing-agent/internal/ai/gemini"
	"sourcing-agent/internal/outreach"
	"sourcing-agent/internal/pipeline"
	"sourcing-agent/internal/retry"
	"sourcing-agent/internal/scoring"
	"sourcing-agent/internal/search"
	"sourcing-agent/internal/secrets"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// buildOrchestrator wires the pipeline from the configuration: the search
// lookup client, the Gemini generator for scoring and messaging, and the
// orchestrator itself. When the AI section is disabled the pipeline still
// works on the deterministic fallbacks alone.
func buildOrchestrator(ctx context.Context, config *Config, logger *zap.Logger) (*pipeline.Orchestrator, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.Search == nil {
		return nil, errors.New("search configuration is required")
	}

	searchKey, err := secrets.Resolve("serpapi key", "",
		firstNonEmpty(config.Search.APIKeyFile, viper.GetString("search.api-key-file")))
	if err != nil {
		return nil, fmt.Errorf("%w (set search.api-key-file or SERPAPI_KEY_FILE)", err)
	}

	lookup := search.New(logger, searchKey)
	if config.Search.RequestsPerSecond > 0 {
		lookup.SetRate(config.Search.RequestsPerSecond, 1)
	}

	generator, policy, err := buildGenerator(ctx, config.AI, logger)
	if err != nil {
		return nil, err
	}

	maxLogLength := 0
	if config.AI != nil && config.AI.Gemini != nil {
		maxLogLength = config.AI.Gemini.MaxLogLength
	}

	var structured ai.StructuredGenerator
	var freeform ai.Generator
	if generator != nil {
		structured = generator
		freeform = generator
	}

	deps := pipeline.Deps{
		Lookup:      lookup,
		Scorer:      scoring.NewEngine(structured, policy, logger, maxLogLength),
		Messenger:   outreach.NewGenerator(freeform, policy, logger),
		LookupRetry: policy,
	}

	return pipeline.New(deps, pipelineConfig(config.Pipeline), logger), nil
}

func buildGenerator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (*gemini.Generator, *retry.Policy, error) {
	policy := retry.Default()

	if cfg == nil || !cfg.Enabled {
		logger.Warn("generative scoring disabled, falling back to heuristics only")
		return nil, policy, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, nil, errors.New("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Resolve("gemini api key", "",
		firstNonEmpty(cfg.Gemini.APIKeyFile, viper.GetString("ai.gemini.api-key-file")))
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Gemini.MaxRetries > 0 {
		policy = &retry.Policy{
			Attempts: cfg.Gemini.MaxRetries + 1,
			Backoff:  retry.Default().Backoff,
		}
	}

	return generator, policy, nil
}

func pipelineConfig(cfg *PipelineConfig) pipeline.Config {
	if cfg == nil {
		return pipeline.Config{}
	}

	return pipeline.Config{
		Concurrency:  cfg.Concurrency,
		StageTimeout: time.Duration(cfg.StageTimeoutSeconds) * time.Second,
		RunDeadline:  time.Duration(cfg.RunDeadlineSeconds) * time.Second,
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
