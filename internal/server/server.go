// Package server is the HTTP face of coacha: the text-generation proxy
// used by remote terminal clients, and a JSON API over per-learner
// progression machines.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/config"
	"github.com/abhisek/coacha/internal/grading"
	"github.com/abhisek/coacha/internal/identity"
	"github.com/abhisek/coacha/internal/llm"
	"github.com/abhisek/coacha/internal/metrics"
	"github.com/abhisek/coacha/internal/prompt"
	"github.com/abhisek/coacha/internal/store"
	"github.com/abhisek/coacha/internal/tutor"
)

// Deps are the collaborators a Server needs. Catalog, Store and Tokens
// are required. A nil Provider means no model credential is configured.
type Deps struct {
	Config     config.ServerConfig
	Catalog    *catalog.Catalog
	Store      *store.Store
	Provider   llm.Provider
	Tutor      tutor.Config
	Tokens     *identity.TokenIssuer
	AdminEmail string
	Classifier grading.Classifier
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Server serves the HTTP API.
type Server struct {
	cfg         config.ServerConfig
	cat         *catalog.Catalog
	store       *store.Store
	provider    llm.Provider
	configured  bool
	callTimeout time.Duration
	tutor       *tutor.Service
	tokens      *identity.TokenIssuer
	adminEmail  string
	logger      *zap.Logger
	metrics     *metrics.Metrics

	learners *learners
	engine   *gin.Engine
}

// New builds the server and its routes.
func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.AdminEmail == "" {
		d.AdminEmail = identity.DefaultAdminEmail
	}
	if d.Tutor == (tutor.Config{}) {
		d.Tutor = tutor.DefaultConfig()
	}

	s := &Server{
		cfg:         d.Config,
		cat:         d.Catalog,
		store:       d.Store,
		provider:    d.Provider,
		configured:  d.Provider != nil,
		callTimeout: d.Tutor.Timeout,
		tokens:      d.Tokens,
		adminEmail:  d.AdminEmail,
		logger:      d.Logger,
		metrics:     d.Metrics,
	}
	if !s.configured {
		s.provider = llm.Unconfigured{}
	}
	s.tutor = tutor.NewService(s.provider, prompt.NewComposer(d.Catalog), d.Tutor)
	s.learners = newLearners(learnerDeps{
		catalog:    d.Catalog,
		store:      d.Store,
		adminEmail: d.AdminEmail,
		classifier: d.Classifier,
		logger:     d.Logger,
		metrics:    d.Metrics,
	})
	s.engine = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		s.recovery(),
		requestID(),
		accessLog(s.logger),
	)
	if s.metrics != nil {
		r.Use(instrument(s.metrics))
	}
	if h := corsMiddleware(s.cfg.AllowedOrigins); h != nil {
		r.Use(h)
	}
	r.Use(secureHeaders())

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, llm.ErrorBody{Error: "Method Not Allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, llm.ErrorBody{Error: "Not Found"})
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil && s.cfg.Metrics {
		h := s.metrics.Handler()
		r.GET("/metrics", gin.WrapH(h))
	}

	api := r.Group("/api")
	if s.cfg.RateLimit > 0 {
		api.Use(newRateLimiter(s.cfg.RateLimit, s.cfg.RateBurst).middleware())
	}
	api.POST("/generate", s.generate)
	api.GET("/catalog", s.catalogIndex)
	api.POST("/auth/signin", s.signIn)

	authed := api.Group("/")
	authed.Use(s.requireAuth())
	{
		authed.GET("/me", s.me)
		authed.POST("/logout", s.logout)

		l := authed.Group("/learner")
		l.GET("/state", s.state)
		l.GET("/outline", s.outline)
		l.POST("/onboarding", s.onboarding)
		l.POST("/start", s.start)
		l.POST("/next", s.next)
		l.POST("/previous", s.previous)
		l.POST("/goto/:index", s.gotoStep)
		l.POST("/explain", s.explain)
		l.POST("/submit", s.submit)
		l.PUT("/settings", s.settings)
		l.POST("/reset", s.reset)
		l.POST("/home", s.home)

		admin := authed.Group("/admin")
		admin.Use(requireAdmin())
		admin.GET("/analytics", s.analytics)
		admin.GET("/llm/usage", s.llmUsage)
	}
	return r
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts
// down gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.logger.Info("http server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
