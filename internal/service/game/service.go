package game

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/reversi-online/backend/internal/domain"
	"github.com/iamasit07/reversi-online/backend/internal/metrics"
	"github.com/iamasit07/reversi-online/backend/internal/service/audit"
	"github.com/iamasit07/reversi-online/backend/internal/service/bot"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrNotAuthenticated = errors.New("profile required before playing")
)

// AuditRecorder is the non-blocking side of the persistence hook.
type AuditRecorder interface {
	StartGame(userID int64, at time.Time) *audit.GameRef
	RecordTurn(ref *audit.GameRef, moveNumber, scoreBlack, scoreWhite int, status domain.GameStatus, at time.Time)
}

// StrategyFactory builds the automatic player for a mode.
type StrategyFactory func(mode bot.Mode) domain.Strategy

// SessionManager holds one game session per user.
type SessionManager struct {
	sessions map[int64]*GameSession // userID → GameSession
	mu       sync.RWMutex

	recorder    AuditRecorder
	newStrategy StrategyFactory
	logger      *zap.Logger
	now         func() time.Time
}

func NewSessionManager(recorder AuditRecorder, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		sessions: make(map[int64]*GameSession),
		recorder: recorder,
		newStrategy: func(mode bot.Mode) domain.Strategy {
			return bot.NewStrategy(mode, nil)
		},
		logger: logger,
		now:    time.Now,
	}
}

// WithStrategyFactory swaps how strategies are built, mostly for seeded tests.
func (sm *SessionManager) WithStrategyFactory(f StrategyFactory) *SessionManager {
	sm.newStrategy = f
	return sm
}

// Init starts a new game for the user. An existing session is reused and its
// game replaced, so a user never holds two sessions.
func (sm *SessionManager) Init(userID int64, username string, cfg domain.GameConfig) (*GameSession, domain.Snapshot, error) {
	mode := bot.ModeFor(cfg.AutoMode, cfg.AutoSmart)
	g, err := domain.NewGame(cfg.BoardSize, sm.newStrategy(mode))
	if err != nil {
		return nil, domain.Snapshot{}, err
	}

	var snap domain.Snapshot
	sm.mu.Lock()
	session, exists := sm.sessions[userID]
	if !exists {
		session = &GameSession{
			UserID:    userID,
			Username:  username,
			CreatedAt: sm.now(),
			recorder:  sm.recorder,
			logger:    sm.logger,
			now:       sm.now,
		}
		// the game must be in place before other goroutines can see the session
		snap = session.reset(g, mode)
		sm.sessions[userID] = session
		metrics.ActiveSessions.Set(float64(len(sm.sessions)))
	}
	sm.mu.Unlock()

	if exists {
		snap = session.reset(g, mode)
	}
	sm.logger.Info("game initialised",
		zap.Int64("user_id", userID),
		zap.Int("board_size", cfg.BoardSize),
		zap.String("strategy", bot.Name(g.Strategy())),
		zap.Bool("reused_session", exists))
	return session, snap, nil
}

func (sm *SessionManager) Get(userID int64) (*GameSession, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[userID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Remove drops the user's session. It reports whether one existed.
func (sm *SessionManager) Remove(userID int64) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.removeLocked(userID)
}

// removeLocked removes session from the map without acquiring lock (caller must hold it)
func (sm *SessionManager) removeLocked(userID int64) bool {
	if _, exists := sm.sessions[userID]; !exists {
		return false
	}
	delete(sm.sessions, userID)
	metrics.ActiveSessions.Set(float64(len(sm.sessions)))
	sm.logger.Info("session removed", zap.Int64("user_id", userID))
	return true
}

func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// CleanupIdleSessions removes sessions untouched for longer than maxIdle and
// returns the affected user ids.
func (sm *SessionManager) CleanupIdleSessions(maxIdle time.Duration) []int64 {
	cutoff := sm.now().Add(-maxIdle)

	sm.mu.RLock()
	var stale []int64
	for userID, session := range sm.sessions {
		if session.LastActive().Before(cutoff) {
			stale = append(stale, userID)
		}
	}
	sm.mu.RUnlock()

	if len(stale) == 0 {
		return nil
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	removed := stale[:0]
	for _, userID := range stale {
		// re-check, the user may have played since the scan
		if session, ok := sm.sessions[userID]; ok && session.LastActive().Before(cutoff) {
			sm.removeLocked(userID)
			removed = append(removed, userID)
		}
	}
	return removed
}
