package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sharktrack/sharktrack-backend-go/internal/config"
	"github.com/sharktrack/sharktrack-backend-go/internal/database"
	"github.com/sharktrack/sharktrack-backend-go/internal/logging"
	"github.com/sharktrack/sharktrack-backend-go/internal/repository"
	"github.com/sharktrack/sharktrack-backend-go/internal/source"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// rootOptions holds global CLI flags
type rootOptions struct {
	ConfigPath string
	LogLevel   string
}

// app carries the loaded configuration through the command tree
type app struct {
	opts     rootOptions
	cfg      *config.Config
	pipeline *config.Pipeline
	logger   *zap.Logger
}

// NewRootCommand creates the root command with every subcommand registered
func NewRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:     "sharktrack",
		Short:   "Foraging hotspot visualization backend",
		Long:    "sharktrack turns foraging probability point collections into histograms,\nconfidence summaries, heat fields and clustered hotspot markers.",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.opts.ConfigPath, "config", "c", "", "config file path")
	pf.StringVar(&a.opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCommand(a),
		newAnalyzeCommand(a),
		newImportCommand(a),
		newTokenCommand(a),
	)
	return cmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) init() error {
	cfg, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		return err
	}
	if a.opts.LogLevel != "" {
		cfg.Log.Level = a.opts.LogLevel
	}

	pipeline, err := cfg.Validate()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.pipeline = pipeline
	a.logger = logger
	return nil
}

// openRepository opens the database and returns the feature repository with a close func
func (a *app) openRepository(ctx context.Context) (*repository.FeatureRepository, func(), error) {
	db, err := database.Open(ctx, database.Config{Path: a.cfg.DBPath}, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewFeatureRepository(db), func() { db.Close() }, nil
}

// newSource builds the configured source
func (a *app) newSource(repo *repository.FeatureRepository) (source.Source, error) {
	switch a.cfg.Source.Kind {
	case config.SourceFile:
		return source.NewFileSource(a.cfg.Source.Path), nil
	case config.SourceHTTP:
		return source.NewHTTPSource(source.HTTPConfig{
			URL:      a.cfg.Source.URL,
			Timeout:  a.cfg.Source.Timeout,
			CacheTTL: a.cfg.Source.CacheTTL,
			MaxBytes: a.cfg.Source.MaxBytes,
		}, nil), nil
	case config.SourceSQLite:
		if repo == nil {
			return nil, errors.New("sqlite source requires a database")
		}
		return source.NewSQLiteSource(repo, a.cfg.Source.Dataset), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", a.cfg.Source.Kind)
	}
}
