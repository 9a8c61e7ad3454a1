package cmd

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "sourcing-agent"
)

type Config struct {
	Job      *JobConfig      `mapstructure:"job"`
	Search   *SearchConfig   `mapstructure:"search"`
	AI       *AIConfig       `mapstructure:"ai"`
	Pipeline *PipelineConfig `mapstructure:"pipeline"`
	Export   *ExportConfig   `mapstructure:"export"`
	Server   *ServerConfig   `mapstructure:"server"`
}

type JobConfig struct {
	DescriptionFile string   `mapstructure:"description-file"`
	Candidates      []string `mapstructure:"candidates"`
}

type SearchConfig struct {
	APIKeyFile        string  `mapstructure:"api-key-file"`
	RequestsPerSecond float64 `mapstructure:"requests-per-second"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type PipelineConfig struct {
	Concurrency         int `mapstructure:"concurrency"`
	StageTimeoutSeconds int `mapstructure:"stage-timeout-seconds"`
	RunDeadlineSeconds  int `mapstructure:"run-deadline-seconds"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "sourcing-agent resolves candidate names to public profiles, scores them against a job description and drafts outreach messages",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("search.api-key-file", "SERPAPI_KEY_FILE"); err != nil {
		log.Fatalf("binding SERPAPI_KEY_FILE environment variable: %v", err)
	}

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is sourcing-agent.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for the run and serve commands.
	if runCmd.CalledAs() == "" && serveCmd.CalledAs() == "" {
		return
	}

	// A local .env may carry the key file locations.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
