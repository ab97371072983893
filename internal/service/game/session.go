package game

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/reversi-online/backend/internal/domain"
	"github.com/iamasit07/reversi-online/backend/internal/metrics"
	"github.com/iamasit07/reversi-online/backend/internal/service/audit"
	"github.com/iamasit07/reversi-online/backend/internal/service/bot"
)

// GameSession is the authoritative game of one connected user.
type GameSession struct {
	UserID    int64
	Username  string
	CreatedAt time.Time

	mu         sync.Mutex
	game       *domain.Game
	mode       bot.Mode
	ref        *audit.GameRef
	moveCount  int
	lastActive time.Time

	recorder AuditRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// Play applies a move or a surrender and returns the resulting snapshot.
// Illegal moves leave the session untouched.
func (gs *GameSession) Play(req domain.MoveRequest) (domain.Snapshot, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if req.IsSurrender {
		gs.game.Surrender()
		gs.logger.Info("player surrendered", zap.Int64("user_id", gs.UserID))
	} else {
		auto, err := gs.game.Play(req.Position())
		if err != nil {
			return domain.Snapshot{}, err
		}
		metrics.MovesPlayed.WithLabelValues("human").Inc()
		if auto != nil {
			metrics.MovesPlayed.WithLabelValues(string(gs.mode)).Inc()
			gs.logger.Debug("automatic reply",
				zap.Int64("user_id", gs.UserID),
				zap.Int("row", auto.Row),
				zap.Int("col", auto.Col))
		}
	}

	gs.moveCount++
	gs.touch()
	snap := gs.game.Snapshot()
	gs.recorder.RecordTurn(gs.ref, gs.moveCount, snap.Score[0], snap.Score[1], snap.Status, gs.lastActive)
	return snap, nil
}

func (gs *GameSession) Undo() domain.Snapshot {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	gs.game.Undo()
	gs.touch()
	return gs.game.Snapshot()
}

func (gs *GameSession) Redo() domain.Snapshot {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	gs.game.Redo()
	gs.touch()
	return gs.game.Snapshot()
}

func (gs *GameSession) Snapshot() domain.Snapshot {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.game.Snapshot()
}

// Mode reports which strategy plays white.
func (gs *GameSession) Mode() bot.Mode {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.mode
}

// GameRef is the audit reference of the current game.
func (gs *GameSession) GameRef() *audit.GameRef {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.ref
}

func (gs *GameSession) LastActive() time.Time {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.lastActive
}

// reset installs a fresh game in place of the current one.
func (gs *GameSession) reset(g *domain.Game, mode bot.Mode) domain.Snapshot {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	gs.game = g
	gs.mode = mode
	gs.moveCount = 0
	gs.touch()
	gs.ref = gs.recorder.StartGame(gs.UserID, gs.lastActive)
	return gs.game.Snapshot()
}

func (gs *GameSession) touch() {
	gs.lastActive = gs.now()
}
