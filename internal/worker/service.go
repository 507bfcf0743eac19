package worker

import (
	"context"
	"errors"
	"time"

	"github.com/carenation/backend/internal/config"
	"github.com/carenation/backend/internal/logger"
	"github.com/carenation/backend/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	khaltiReconcileInterval  = 5 * time.Minute
	khaltiReconcileBatchSize = 50
	grantPurgeInterval       = time.Hour
)

// Service asynq consumer plus the periodic sweeps: stale gateway sessions
// are re-verified and expired impersonation grants are purged.
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService creates the background worker
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name service name
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the consumer and the periodic sweeps
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.KhaltiService != nil {
		go s.runKhaltiReconcileLoop(ctx)
	}
	if s.consumer != nil && s.consumer.ImpersonationService != nil {
		go s.runGrantPurgeLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop shuts the consumer down
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runKhaltiReconcileLoop(ctx context.Context) {
	runOnce := func() {
		settled, err := s.consumer.KhaltiService.ReconcileStale(ctx, khaltiReconcileBatchSize)
		if err != nil {
			logger.Warnw("worker_khalti_reconcile_sweep_failed", "error", err)
			return
		}
		_ = settled
	}
	runOnce()

	ticker := time.NewTicker(khaltiReconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func (s *Service) runGrantPurgeLoop(ctx context.Context) {
	runOnce := func() {
		purged, err := s.consumer.ImpersonationService.PurgeExpired()
		if err != nil {
			logger.Warnw("worker_grant_purge_failed", "error", err)
			return
		}
		if purged > 0 {
			logger.Infow("worker_grant_purge_done", "purged", purged)
		}
	}
	runOnce()

	ticker := time.NewTicker(grantPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
