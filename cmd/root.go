package cmd

import (
	"log/slog"
	"os"

	"github.com/nikogura/portfolio-assistant/pkg/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var portfolioPath string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "portfolio-assistant",
	Short: "Serve an interactive portfolio backed by a conversational persona",
	Long: `portfolio-assistant loads a personal portfolio document and serves it over HTTP,
together with a streaming chat endpoint where a language model answers questions
in the first person as the portfolio's subject.

The model can call tools that return structured portfolio sections (projects,
skills, contact, resume) which the UI renders as cards.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "settings file (default is $HOME/.portfolio-assistant/settings.json)")
	rootCmd.PersistentFlags().StringVar(&portfolioPath, "portfolio", "", "portfolio document path or URL (default from settings)")
}

// getVerbose returns the verbose flag value.
func getVerbose() (result bool) {
	result = verbose
	return result
}

// getConfigFile returns the config file path.
func getConfigFile() (result string) {
	result = configFile
	return result
}

// newLogger returns a text logger on stderr, at debug level when verbose.
func newLogger() (logger *slog.Logger) {
	level := slog.LevelInfo
	if getVerbose() {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return logger
}

// loadSettings loads settings and applies the --portfolio override.
func loadSettings() (cfg config.Config, err error) {
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load settings")
		return cfg, err
	}

	if portfolioPath != "" {
		cfg.PortfolioPath = portfolioPath
	}

	return cfg, err
}
