package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/thisisjab/signup-go/internal/data"
	"github.com/thisisjab/signup-go/internal/notify"
)

type APIServer struct {
	config   *Config
	models   *data.Models
	notifier notify.Notifier
	logger   *slog.Logger
	limiter  *clientLimiter
	wg       sync.WaitGroup
}

type Config struct {
	Cors struct {
		AllowedHeaders string
		AllowedMethods string
		TrustedOrigins []string
	}
	Environment string
	Port        int
	RateLimiter struct {
		Rps     float64
		Burst   int
		Enabled bool
	}
	// SweepInterval is how often idle forms are purged.
	SweepInterval time.Duration
	Version       string
}

// NewServer wires the HTTP surface. notifier may be nil, in which case
// submission outcomes are only returned to the client.
func NewServer(cfg *Config, models *data.Models, notifier notify.Notifier, logger *slog.Logger) *APIServer {
	return &APIServer{
		config:   cfg,
		models:   models,
		notifier: notifier,
		logger:   logger,
		limiter:  newClientLimiter(cfg.RateLimiter.Rps, cfg.RateLimiter.Burst),
	}
}

func (s *APIServer) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	stopJanitor := make(chan struct{})
	s.runJanitor(stopJanitor)

	shutdownErr := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

		sig := <-quit

		s.logger.Info("shutting down server", "signal", sig.String())
		close(stopJanitor)

		shutdownErr <- s.shutdown(srv.Shutdown)
	}()

	s.logger.Info("starting server", "addr", srv.Addr, "env", s.config.Environment)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownErr
	if err != nil {
		return err
	}

	s.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

// shutdown stops the listener with stopServer, then waits for background
// tasks. Background tasks are not awaited if the listener fails to stop.
func (s *APIServer) shutdown(stopServer func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := stopServer(ctx); err != nil {
		return err
	}

	s.logger.Info("completing background tasks")
	s.wg.Wait()

	return nil
}

// runJanitor periodically drops idle forms and stale rate limiter entries
// until stop is closed.
func (s *APIServer) runJanitor(stop <-chan struct{}) {
	interval := s.config.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}

	s.background(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if n := s.models.Form.DeleteIdle(); n > 0 {
					s.logger.Debug("removed idle forms", "count", n)
				}
				s.limiter.prune(3 * time.Minute)
			}
		}
	})
}

// background runs a function in a goroutine and logs any errors.
func (s *APIServer) background(fn func()) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		defer func() {
			if err := recover(); err != nil {
				s.logger.Error(fmt.Sprintf("error while running background task: %v", err))
			}
		}()

		fn()
	}()
}
