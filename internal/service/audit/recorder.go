package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/reversi-online/backend/internal/domain"
	"github.com/iamasit07/reversi-online/backend/internal/metrics"
)

var ErrRecorderClosed = errors.New("audit recorder closed")

type jobKind string

const (
	jobStart jobKind = "start"
	jobTurn  jobKind = "turn"
)

type job struct {
	kind   jobKind
	ref    *GameRef
	userID int64
	turn   Turn
}

// Recorder forwards game events to a Log without blocking the caller.
// A single worker drains the queue so a game's start always lands before
// its turns.
type Recorder struct {
	log     Log
	jobs    chan job
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewRecorder(log Log, queueSize int, timeout time.Duration, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{
		log:     log,
		jobs:    make(chan job, queueSize),
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start launches the worker. Call Close to drain and stop it.
func (r *Recorder) Start() {
	go r.run()
	r.logger.Info("audit recorder started", zap.Int("queue_size", cap(r.jobs)))
}

// Close stops accepting jobs and waits for the queue to drain.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.jobs)
	r.mu.Unlock()
	<-r.done
}

// StartGame queues the creation of a game row and returns the reference that
// later turns are attached to.
func (r *Recorder) StartGame(userID int64, at time.Time) *GameRef {
	ref := &GameRef{}
	r.enqueue(job{kind: jobStart, ref: ref, userID: userID, turn: Turn{At: at}})
	return ref
}

// RecordTurn queues a turn for the game behind ref.
func (r *Recorder) RecordTurn(ref *GameRef, moveNumber, scoreBlack, scoreWhite int, status domain.GameStatus, at time.Time) {
	if ref == nil {
		return
	}
	r.enqueue(job{kind: jobTurn, ref: ref, turn: Turn{
		MoveNumber: moveNumber,
		ScoreBlack: scoreBlack,
		ScoreWhite: scoreWhite,
		Status:     status,
		At:         at,
	}})
}

// Reset records a reset synchronously because the caller needs the count.
func (r *Recorder) Reset(ctx context.Context, userID int64, at time.Time) (int64, error) {
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return 0, ErrRecorderClosed
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	count, err := r.log.RecordReset(ctx, userID, at)
	if err != nil {
		metrics.AuditJobs.WithLabelValues("reset", "error").Inc()
		return 0, fmt.Errorf("failed to record reset: %w", err)
	}
	metrics.AuditJobs.WithLabelValues("reset", "ok").Inc()
	return count, nil
}

func (r *Recorder) enqueue(j job) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.logger.Warn("audit job after close", zap.String("kind", string(j.kind)))
		metrics.AuditJobs.WithLabelValues(string(j.kind), "dropped").Inc()
		return
	}

	select {
	case r.jobs <- j:
	default:
		r.logger.Warn("audit queue full, dropping job", zap.String("kind", string(j.kind)))
		metrics.AuditJobs.WithLabelValues(string(j.kind), "dropped").Inc()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for j := range r.jobs {
		r.process(j)
	}
}

func (r *Recorder) process(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	switch j.kind {
	case jobStart:
		id, err := r.log.StartGame(ctx, j.userID, j.turn.At)
		if err != nil {
			r.logger.Error("failed to start game", zap.Int64("user_id", j.userID), zap.Error(err))
			metrics.AuditJobs.WithLabelValues(string(j.kind), "error").Inc()
			return
		}
		j.ref.set(id)
		r.logger.Debug("game started", zap.Int64("user_id", j.userID), zap.Int64("game_id", id))

	case jobTurn:
		gameID := j.ref.ID()
		if gameID == 0 {
			r.logger.Warn("turn for unknown game skipped", zap.Int("move", j.turn.MoveNumber))
			metrics.AuditJobs.WithLabelValues(string(j.kind), "skipped").Inc()
			return
		}
		j.turn.GameID = gameID
		if err := r.log.RecordTurn(ctx, j.turn); err != nil {
			r.logger.Error("failed to record turn",
				zap.Int64("game_id", gameID),
				zap.Int("move", j.turn.MoveNumber),
				zap.Error(err))
			metrics.AuditJobs.WithLabelValues(string(j.kind), "error").Inc()
			return
		}
	}
	metrics.AuditJobs.WithLabelValues(string(j.kind), "ok").Inc()
}
