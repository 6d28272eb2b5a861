package app

import (
	"context"
	"errors"
	"time"

	"session-auth/internal/auth"
	"session-auth/internal/config"
	httpserver "session-auth/internal/http"
	"session-auth/internal/repository/postgres"
	"session-auth/internal/session"
	"session-auth/pkg/logger"
)

// Service owns the long-lived resources of the auth daemon.
type Service struct {
	config     *config.Config
	db         *postgres.DB
	redisStore *session.RedisStore
	engine     *auth.Engine
	server     *httpserver.Server
	logger     *logger.Sanitized

	sweepCtx    context.Context
	stopSweeper context.CancelFunc
}

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = 15 * time.Minute
)

func (s *Service) Engine() *auth.Engine {
	return s.engine
}

// Start blocks serving HTTP until the server is shut down.
func (s *Service) Start() error {
	go s.sweepRateLimiters(s.sweepCtx)

	addr := ":" + s.config.Server.Port
	s.logger.Infof("starting session-auth on %s", addr)
	return s.server.Start(addr)
}

// sweepRateLimiters periodically forgets idle per-client rate-limit buckets.
func (s *Service) sweepRateLimiters(ctx context.Context) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.server.SweepRateLimiters(limiterIdleTTL); n > 0 {
				s.logger.Debugf("rate limiter: dropped %d idle buckets", n)
			}
		}
	}
}

// Shutdown stops the HTTP server, then releases the database pool and the
// Redis client.
func (s *Service) Shutdown(ctx context.Context) error {
	start := time.Now()
	s.stopSweeper()
	err := s.server.Shutdown(ctx)

	if s.redisStore != nil {
		if cerr := s.redisStore.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	s.db.Close()

	s.logger.Infof("shutdown finished in %s", time.Since(start))
	return err
}
