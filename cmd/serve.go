package cmd

import (
	"crypto/rand"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/identity"
	"github.com/abhisek/coacha/internal/llm"
	"github.com/abhisek/coacha/internal/metrics"
	"github.com/abhisek/coacha/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		gin.SetMode(cfg.Server.Mode)

		logger, err := newLogger(cfg, true)
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

		m := metrics.New(true)

		var provider llm.Provider
		p, err := llm.NewProvider(ctx, cfg.LLM, llm.Options{Recorder: st, Logger: logger.Named("llm"), Metrics: m})
		if err != nil {
			logger.Warn("llm provider unavailable, /api/generate will report it", zap.Error(err))
		} else {
			provider = p
		}

		secret := []byte(cfg.Auth.JWTSecret)
		if len(secret) == 0 {
			secret = make([]byte, 32)
			if _, err := rand.Read(secret); err != nil {
				return fmt.Errorf("generate token secret: %w", err)
			}
			logger.Warn("auth.jwt_secret not set; tokens will not survive a restart")
		}
		tokens, err := identity.NewTokenIssuer(secret, cfg.Auth.TokenTTL, cfg.Auth.AdminEmail)
		if err != nil {
			return fmt.Errorf("token issuer: %w", err)
		}

		srv := server.New(server.Deps{
			Config:     cfg.Server,
			Catalog:    cat,
			Store:      st,
			Provider:   provider,
			Tutor:      tutorConfig(cfg),
			Tokens:     tokens,
			AdminEmail: cfg.Auth.AdminEmail,
			Logger:     logger.Named("server"),
			Metrics:    m,
		})
		logger.Info("listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("provider", cfg.LLM.Provider),
			zap.Bool("llm_configured", provider != nil),
		)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
