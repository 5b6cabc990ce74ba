package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/rcscout/internal/config"
	"github.com/abhisek/rcscout/internal/logging"
	"github.com/abhisek/rcscout/internal/store"
)

var (
	cfg       config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "rcscout",
	Short: "Annotate Q&A answers for root causes and evaluate classifiers",
	Long: "rcscout walks operators through Stack Exchange questions, records whether the\n" +
		"accepted answer explains the root cause, and trains and scores classifiers\n" +
		"on the collected labels.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return setup(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

// Execute runs the command line.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", "", "Path to YAML config file (overrides RCSCOUT_CONFIG env var)")
	f.String("db", "", "Path to SQLite event database (overrides RCSCOUT_DB env var)")
	f.String("items", "", "Path to the annotated items file")
	f.String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(evalsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration, applies flag overrides and starts logging.
func setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded

	if p, _ := cmd.Flags().GetString("items"); p != "" {
		cfg.ItemsPath = p
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	logCloser, err = logging.Init(logging.Options{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Dir:    cfg.LogDir,
		Name:   "rcscout-" + cmd.Name(),
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	return nil
}

// resolveDBPath returns the database path using --db or db_path (highest
// priority), then RCSCOUT_DB, then the default XDG path.
func resolveDBPath() (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

func openStore() (*store.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
