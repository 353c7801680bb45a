package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/coacha/internal/app"
	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/config"
	"github.com/abhisek/coacha/internal/identity"
	"github.com/abhisek/coacha/internal/llm"
	"github.com/abhisek/coacha/internal/prompt"
	"github.com/abhisek/coacha/internal/session"
	"github.com/abhisek/coacha/internal/store"
	"github.com/abhisek/coacha/internal/tutor"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the terminal coach",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

// runPlay opens the store, builds dependencies, and launches the TUI.
func runPlay(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Auth.Email == "" {
		return errors.New("set auth.email (or COACHA_AUTH_EMAIL) to the learner's address")
	}

	logger, err := newLogger(cfg, false)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	cat, err := catalog.New()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	provider := buildProvider(cmd, cfg, st, logger)

	ident := identity.NewLocalProvider(identity.LocalConfig{
		Email:      cfg.Auth.Email,
		Name:       cfg.Auth.Name,
		AdminEmail: cfg.Auth.AdminEmail,
	})
	machine := session.New(session.Config{
		Catalog:  cat,
		Store:    st,
		Identity: ident,
		Logger:   logger.Named("session"),
	})

	return app.Run(ctx, app.Deps{
		Catalog:   cat,
		Machine:   machine,
		Identity:  ident,
		Tutor:     tutor.NewService(provider, prompt.NewComposer(cat), tutorConfig(cfg)),
		Analytics: st,
		Logger:    logger,
	})
}

// buildProvider returns the configured provider, or llm.Unconfigured when
// no credential is set. The app still runs; tutor calls report the
// missing key.
func buildProvider(cmd *cobra.Command, cfg *config.Config, st *store.Store, logger *zap.Logger) llm.Provider {
	provider, err := llm.NewProvider(cmd.Context(), cfg.LLM, llm.Options{Recorder: st, Logger: logger.Named("llm")})
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "The coach will not be able to explain or review steps.")
		logger.Warn("llm provider unavailable", zap.Error(err))
		return llm.Unconfigured{}
	}
	return provider
}

func tutorConfig(cfg *config.Config) tutor.Config {
	return tutor.Config{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.CallTimeout(),
	}
}
