package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mentalhealthdb/mhdb/internal/config"
)

// globalOptions holds the persistent flags shared by every subcommand
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "mhdb",
		Short: "mhdb - mental health knowledge graph builder",
		Long: `mhdb converts the mental health spreadsheets into a single RDF
knowledge graph serialized as Turtle.

It supports:
- Loading workbooks from .xlsx files or directories of .csv files
- Ingestion passes for states, disorders, sensors, resources, projects and assessments
- Validating the generated document before it is written
- N-Triples, JSON-LD and SQLite exports
- Downloading the source spreadsheets from Google Sheets`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path (optional, uses built-in defaults)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format (json, console) (default: json)")

	root.AddCommand(newBuildCommand(opts))
	root.AddCommand(newFetchCommand(opts))
	root.AddCommand(newValidateCommand())
	root.AddCommand(newExportCommand(opts))
	root.AddCommand(newPassesCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the root command. It is called by main.main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// load reads and validates the configuration, applies the logging flags
// and builds the logger
func (o *globalOptions) load() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, config.NewLogger(cfg.Logging), nil
}
