package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iamasit07/reversi-online/backend/internal/service/audit"
)

type game struct {
	userID    int64
	startedAt time.Time
	turns     []audit.Turn
}

// Store keeps users and audit history in process memory. It backs the server
// when neither Postgres nor Redis is configured, and the tests.
type Store struct {
	mu      sync.RWMutex
	users   map[string]int64
	names   map[int64]string
	nextUID int64
	games   map[int64]*game
	nextGID int64
	resets  map[int64][]time.Time
}

func NewStore() *Store {
	return &Store{
		users:  make(map[string]int64),
		names:  make(map[int64]string),
		games:  make(map[int64]*game),
		resets: make(map[int64][]time.Time),
	}
}

func (s *Store) FindOrCreate(_ context.Context, name string) (int64, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.users[key]; ok {
		return id, nil
	}
	s.nextUID++
	s.users[key] = s.nextUID
	s.names[s.nextUID] = name
	return s.nextUID, nil
}

func (s *Store) StartGame(_ context.Context, userID int64, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGID++
	s.games[s.nextGID] = &game{userID: userID, startedAt: at}
	return s.nextGID, nil
}

func (s *Store) RecordTurn(_ context.Context, turn audit.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[turn.GameID]
	if !ok {
		return ErrGameNotFound
	}
	g.turns = append(g.turns, turn)
	return nil
}

func (s *Store) RecordReset(_ context.Context, userID int64, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets[userID] = append(s.resets[userID], at)
	return int64(len(s.resets[userID])), nil
}

// Turns returns a copy of the turns recorded for gameID.
func (s *Store) Turns(gameID int64) []audit.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[gameID]
	if !ok {
		return nil
	}
	out := make([]audit.Turn, len(g.turns))
	copy(out, g.turns)
	return out
}

// GamesFor lists the game ids started by userID in creation order.
func (s *Store) GamesFor(userID int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []int64
	for id := int64(1); id <= s.nextGID; id++ {
		if g, ok := s.games[id]; ok && g.userID == userID {
			ids = append(ids, id)
		}
	}
	return ids
}
