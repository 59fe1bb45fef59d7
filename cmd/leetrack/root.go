package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leetrack/leetrack-common/pkg/cache"
	"github.com/leetrack/leetrack-common/pkg/config"
	"github.com/leetrack/leetrack-common/pkg/repository"
	"github.com/leetrack/leetrack-common/pkg/resolver"
	"github.com/leetrack/leetrack-common/pkg/selection"
	"github.com/leetrack/leetrack-common/pkg/service"
)

type rootOptions struct {
	configPath string
	backend    string
	verbose    bool
}

// app holds what every command needs once config is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	repo   repository.ProblemRepository
	svc    *service.PracticeService
	close  func() error
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "leetrack",
		Short: "Track LeetCode practice in your problem table",
		Long: `leetrack keeps a local snapshot of your problem table and picks what to
practice next: the weakest problems, a topic drill, or something from the icebox.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPreferencesPath(), "preferences file")
	rootCmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "override the configured backend (airtable, postgres, sqlite, memory)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newAddCmd(opts))
	rootCmd.AddCommand(newRateCmd(opts))
	rootCmd.AddCommand(newIceboxCmd(opts))
	rootCmd.AddCommand(newPickCmd(opts))
	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}

func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (o *rootOptions) loadConfig(logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.NewLoader(o.configPath, logger).LoadUnvalidated()
	if err != nil {
		return nil, err
	}
	if o.backend != "" {
		cfg.Backend = config.Backend(o.backend)
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// setup loads config, opens the backend and builds the practice service.
// Callers must call app.close when done.
func (o *rootOptions) setup(ctx context.Context, cmd *cobra.Command) (*app, error) {
	logger := newLogger(cmd, o.verbose)

	cfg, err := o.loadConfig(logger)
	if err != nil {
		return nil, err
	}

	repo, closeFn, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	groups := resolver.NewInMemoryGroupResolver(repo, logger)
	problemCache := cache.NewMaterializedProblemCache(
		cfg.Credentials(),
		repo,
		groups,
		cache.Options{Staleness: cfg.Staleness},
		logger,
	)
	selector := selection.NewSelector(selection.WithDrillDays(cfg.DrillDays))

	return &app{
		cfg:    cfg,
		logger: logger,
		repo:   repo,
		svc:    service.NewPracticeService(problemCache, selector, logger),
		close:  closeFn,
	}, nil
}

// withApp runs fn with a ready app and closes it afterwards.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := o.setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning: failed to close backend:", err)
		}
	}()

	return fn(ctx, a)
}
