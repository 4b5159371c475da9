package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/xraph/resque"
	"github.com/xraph/resque/engine"
	"github.com/xraph/resque/store/pebble"
	"github.com/xraph/resque/store/redis"
)

// app carries the global flags and the engine opened for one command.
type app struct {
	configPath string
	redisURL   string
	dataDir    string
	prefix     string
	logLevel   string
	jsonOut    bool

	// openStore builds the backing store for cfg.
	openStore func(cfg resque.Config, logger *slog.Logger) (resque.Storer, error)

	eng *engine.Engine
}

func newApp() *app {
	return &app{openStore: defaultStore}
}

// defaultStore opens Pebble when a data directory is configured and Redis
// otherwise.
func defaultStore(cfg resque.Config, logger *slog.Logger) (resque.Storer, error) {
	if cfg.DataDir != "" {
		return pebble.Open(pebble.Options{DataDir: cfg.DataDir})
	}
	return redis.Open(cfg.RedisURL, redis.WithLogger(logger))
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "resque",
		Short:         "Inspect and operate a resque job queue",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.eng == nil {
				return nil
			}
			err := a.eng.Close(cmd.Context())
			a.eng = nil
			return err
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "Path to a JSON or YAML config file")
	f.StringVar(&a.redisURL, "redis-url", "", "Redis URL (overrides config)")
	f.StringVar(&a.dataDir, "data-dir", "", "Use an embedded Pebble store in this directory")
	f.StringVar(&a.prefix, "prefix", "", "Key prefix (overrides config)")
	f.StringVar(&a.logLevel, "log-level", "warn", "Log level: debug|info|warn|error")
	f.BoolVar(&a.jsonOut, "json", false, "JSON output")

	root.AddCommand(
		newEnqueueCommand(a),
		newPopCommand(a),
		newPeekCommand(a),
		newQueuesCommand(a),
		newSizeCommand(a),
		newClearCommand(a),
		newRemoveQueueCommand(a),
		newStatusCommand(a),
		newFailedCommand(a),
		newStatsCommand(a),
		newWorkersCommand(a),
		newPIDsCommand(a),
		newReconcileCommand(a),
		newInfoCommand(a),
	)
	return root
}

// open resolves configuration (file, then RESQUE_* env, then flags) and
// builds the engine.
func (a *app) open(cmd *cobra.Command) error {
	cfg, err := resque.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if err := resque.ConfigFromEnv(&cfg); err != nil {
		return err
	}
	if a.redisURL != "" {
		cfg.RedisURL = a.redisURL
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	if a.prefix != "" {
		cfg.KeyPrefix = a.prefix
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", a.logLevel)
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	s, err := a.openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	r, err := resque.New(
		resque.WithConfig(cfg),
		resque.WithStore(s),
		resque.WithLogger(logger),
	)
	if err != nil {
		_ = s.Close()
		return err
	}
	if err := r.Connect(cmd.Context()); err != nil {
		_ = s.Close()
		return fmt.Errorf("connect: %w", err)
	}
	eng, err := engine.Build(r)
	if err != nil {
		_ = s.Close()
		return err
	}
	a.eng = eng
	return nil
}

// print writes v as indented JSON with --json, otherwise calls text.
func (a *app) print(w io.Writer, v any, text func(w io.Writer)) error {
	if a.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
