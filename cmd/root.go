package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/coacha/internal/config"
	"github.com/abhisek/coacha/internal/logging"
	"github.com/abhisek/coacha/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "coacha",
	Short: "Persona-adaptive coding coach",
	Long:  "Coacha is an AI coding coach that explains programming through the learner's own world.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
	SilenceUsage: true,
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default $XDG_CONFIG_HOME/coacha/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides store.path and COACHA_DB)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(allowCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads and validates configuration, applying --db.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.Path = p
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db / store.path
// (highest priority), then COACHA_DB, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}

// openStore opens the database and seeds the allowlist from auth.allow.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	for _, email := range cfg.Auth.Allow {
		if err := st.Allow(ctx, email); err != nil {
			st.Close()
			return nil, fmt.Errorf("seed allowlist: %w", err)
		}
	}
	return st, nil
}

// newLogger builds the process logger. console forces a stderr stream.
func newLogger(cfg *config.Config, console bool) (*zap.Logger, error) {
	lc := cfg.Log
	if lc.File == "" {
		lc.File = logging.DefaultLogPath()
	}
	if console {
		lc.Console = true
	}
	return logging.New(lc)
}
