package audit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/iamasit07/reversi-online/backend/internal/domain"
)

// Log is the persistence hook for game history. Implementations live under
// internal/repository.
type Log interface {
	StartGame(ctx context.Context, userID int64, at time.Time) (int64, error)
	RecordTurn(ctx context.Context, turn Turn) error
	RecordReset(ctx context.Context, userID int64, at time.Time) (int64, error)
}

// Turn is one audited PLAY request, recorded after any automatic reply.
type Turn struct {
	GameID     int64
	MoveNumber int
	ScoreBlack int
	ScoreWhite int
	Status     domain.GameStatus
	At         time.Time
}

// GameRef is filled in once the game row exists. Zero means unknown yet, or
// that the start failed.
type GameRef struct {
	id atomic.Int64
}

func (r *GameRef) ID() int64 {
	if r == nil {
		return 0
	}
	return r.id.Load()
}

func (r *GameRef) set(id int64) {
	r.id.Store(id)
}
