package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"sourcing-agent/internal/logger"
	"sourcing-agent/internal/pipeline"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptExport        = "Export report to file"
	PromptTopCandidates = "Print top candidates"
	PromptSummary       = "Print fit summary"
	PromptExit          = "Exit"

	topCandidatesToPrint = 5
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptExport, PromptTopCandidates, PromptSummary, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sourcing pipeline for the configured job and candidates",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "export the report without asking for confirmation")
	runCmd.Flags().StringP("description-file", "f", "", "file with the job description. Overrides job.description-file.")
	runCmd.Flags().StringSliceP("candidate", "c", nil, "candidate name to source. Repeatable. Overrides job.candidates.")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the sourcing-agent", zap.String("version", version))

	if config == nil {
		logger.Fatal("config is required")
	}

	req, err := buildRequest(cmd, config)
	if err != nil {
		logger.Fatal("building the job request", zap.Error(err))
	}

	orchestrator, err := buildOrchestrator(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	report, err := orchestrator.Run(ctx, req)
	if err != nil {
		var inputErr *pipeline.InputError
		if errors.As(err, &inputErr) {
			logger.Fatal("invalid job request", zap.Error(inputErr))
		}
		logger.Fatal("pipeline failed", zap.Error(err))
	}

	if report.CandidatesFound == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates found"))
		return
	}

	if cmd.Flag("auto-approve").Value.String() == "true" {
		if err := exportReport(report, config, logger); err != nil {
			logger.Fatal("exporting the report", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, report, config, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, report *pipeline.Report, config *Config, logger *zap.Logger) error {
	switch action {
	case PromptExport:
		return exportReport(report, config, logger)
	case PromptTopCandidates:
		top := report.TopCandidates
		if len(top) > topCandidatesToPrint {
			top = top[:topCandidatesToPrint]
		}
		pretty, _ := json.MarshalIndent(top, "", "  ")
		logger.Info(string(pretty), zap.Int("candidates_found", report.CandidatesFound))
		return nil
	case PromptSummary:
		pretty, _ := json.MarshalIndent(report.PipelineSummary, "", "  ")
		logger.Info(string(pretty), zap.String("status", report.Status))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func exportReport(report *pipeline.Report, config *Config, logger *zap.Logger) error {
	dir := ""
	if config.Export != nil {
		dir = config.Export.Dir
	}

	path, err := report.WriteFile(dir)
	if err != nil {
		return err
	}

	logger.Info("report exported", zap.String("path", path))
	return nil
}

// buildRequest assembles the job request from flags and config, flags winning.
func buildRequest(cmd *cobra.Command, config *Config) (pipeline.Request, error) {
	var req pipeline.Request

	descriptionFile := cmd.Flag("description-file").Value.String()
	if descriptionFile == "" && config.Job != nil {
		descriptionFile = config.Job.DescriptionFile
	}
	if descriptionFile == "" {
		return req, errors.New("job description file is required (set job.description-file or --description-file)")
	}

	description, err := os.ReadFile(descriptionFile)
	if err != nil {
		return req, fmt.Errorf("reading job description: %w", err)
	}
	req.JobDescription = strings.TrimSpace(string(description))

	names, err := cmd.Flags().GetStringSlice("candidate")
	if err != nil {
		return req, err
	}
	if len(names) == 0 && config.Job != nil {
		names = config.Job.Candidates
	}
	req.CandidateNames = names

	return req, nil
}
