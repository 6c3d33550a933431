package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leonmuri/Progol-aleatorio2/internal/config"
	"github.com/leonmuri/Progol-aleatorio2/internal/logger"
	"github.com/leonmuri/Progol-aleatorio2/internal/pipeline"
	"github.com/leonmuri/Progol-aleatorio2/internal/scraper"
	"github.com/leonmuri/Progol-aleatorio2/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// app carries what every subcommand needs once the config is loaded.
type app struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "progol",
		Short: "Fetch the current Progol draw and fill in tickets",
		Long: `A CLI tool for Mexico's Progol football pool.
Reads the current matches and draw from the official page (falling back to
text patterns and a built-in ticket when the page is unusable), generates
tickets, and keeps a history of saved ones.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newMatchesCmd(a),
		newDrawCmd(a),
		newTicketCmd(a),
		newHistoryCmd(a),
		newPublishCmd(a),
		newServeCmd(a),
	)

	return cmd
}

// load reads the config and points the default logger at stderr.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))
	return nil
}

func (a *app) fetcherOptions() []scraper.Option {
	var opts []scraper.Option
	if a.cfg.Fetch.URL != "" {
		opts = append(opts, scraper.WithURL(a.cfg.Fetch.URL))
	}
	if a.cfg.Fetch.Timeout > 0 {
		opts = append(opts, scraper.WithTimeout(a.cfg.Fetch.Timeout))
	}
	return opts
}

// newPipeline builds a pipeline reading the configured page. The CLI runs
// one resolution per invocation, so each command owns one pipeline.
func (a *app) newPipeline() *pipeline.Pipeline {
	return pipeline.New(pipeline.WithSource(scraper.NewFetcher(a.fetcherOptions()...)))
}

func (a *app) openStore(ctx context.Context) (storage.Store, error) {
	store, err := storage.Open(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
