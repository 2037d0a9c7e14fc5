// Package server exposes the report service as a read-only JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tallybooks/tally/internal/config"
	"github.com/tallybooks/tally/internal/report"
)

const shutdownTimeout = 10 * time.Second

// Server serves the report API.
type Server struct {
	addr            string
	reports         *report.Service
	log             *zap.Logger
	health          func(context.Context) error
	retainedOpening decimal.Decimal
	router          *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithHealthCheck makes /health report the result of check.
func WithHealthCheck(check func(context.Context) error) Option {
	return func(s *Server) { s.health = check }
}

// WithRetainedOpening sets the retained earnings opening used when a
// request does not pass retainedOpening.
func WithRetainedOpening(d decimal.Decimal) Option {
	return func(s *Server) { s.retainedOpening = d }
}

// New builds the router.
func New(reports *report.Service, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{addr: cfg.Addr, reports: reports, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("http")

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/health", s.healthCheck)
	api := r.Group("/api")
	api.GET("/accounts", s.getAccounts)
	api.GET("/report", s.getReport)
	api.GET("/balances", s.getBalances)
	api.GET("/trial-balance", s.getTrialBalance)
	api.GET("/income-statement", s.getIncomeStatement)
	api.GET("/balance-sheet", s.getBalanceSheet)
	api.GET("/retained-earnings", s.getRetainedEarnings)
	api.GET("/ratios", s.getRatios)
	api.GET("/ledger/:accountID", s.getLedger)

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving %s: %w", s.addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
