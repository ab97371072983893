package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/reversi-online/backend/internal/metrics"
)

// Sweeper is the part of the session registry the worker needs.
type Sweeper interface {
	CleanupIdleSessions(maxIdle time.Duration) []int64
}

type Worker struct {
	SessionManager Sweeper
	interval       time.Duration
	idleTimeout    time.Duration
	logger         *zap.Logger
}

func NewWorker(sm Sweeper, interval, idleTimeout time.Duration, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		SessionManager: sm,
		interval:       interval,
		idleTimeout:    idleTimeout,
		logger:         logger,
	}
}

// Start runs the sweep every interval until ctx is cancelled. It blocks, so
// callers usually start it in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	if w.interval <= 0 || w.idleTimeout <= 0 {
		w.logger.Info("idle session cleanup disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.logger.Info("cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle_timeout", w.idleTimeout))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce performs a single sweep and returns how many sessions it evicted.
func (w *Worker) RunOnce() int {
	evicted := w.SessionManager.CleanupIdleSessions(w.idleTimeout)
	if len(evicted) > 0 {
		metrics.SessionsEvicted.Add(float64(len(evicted)))
		w.logger.Info("evicted idle sessions",
			zap.Int("count", len(evicted)),
			zap.Int64s("user_ids", evicted))
	}
	return len(evicted)
}
