package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sourcing-agent/internal/api"
	"sourcing-agent/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultListenAddress = ":8000"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sourcing pipeline over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address. Overrides server.address.")
}

func serve(cmd *cobra.Command) {
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

	orchestrator, err := buildOrchestrator(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	address := cmd.Flag("address").Value.String()
	if address == "" && config.Server != nil {
		address = config.Server.Address
	}
	if address == "" {
		address = defaultListenAddress
	}

	server := api.NewServer(orchestrator, logger)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-shutdown
		logger.Info("shutting down", zap.String("signal", sig.String()))
		if err := server.Shutdown(); err != nil {
			logger.Error("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("address", address))

	if err := server.Listen(address); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
}
