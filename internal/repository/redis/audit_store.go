package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iamasit07/reversi-online/backend/internal/domain"
	"github.com/iamasit07/reversi-online/backend/internal/service/audit"
)

const (
	userSeqKey    = "reversi:user:seq"
	userNameKey   = "reversi:user:name:"
	gameSeqKey    = "reversi:game:seq"
	gameKeyPrefix = "reversi:game:"
	resetKey      = "reversi:resets:"
)

// Store keeps players and audit history in Redis.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

type turnRecord struct {
	MoveNumber int    `json:"move"`
	ScoreBlack int    `json:"black"`
	ScoreWhite int    `json:"white"`
	Status     string `json:"status"`
	At         int64  `json:"at"`
}

func (s *Store) FindOrCreate(ctx context.Context, name string) (int64, error) {
	key := userNameKey + strings.ToLower(strings.TrimSpace(name))

	id, err := s.client.Get(ctx, key).Int64()
	if err == nil {
		return id, nil
	}
	if err != redis.Nil {
		return 0, fmt.Errorf("failed to look up player: %w", err)
	}

	next, err := s.client.Incr(ctx, userSeqKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate player id: %w", err)
	}
	ok, err := s.client.SetNX(ctx, key, next, 0).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to store player: %w", err)
	}
	if ok {
		return next, nil
	}

	// lost the race to another connection with the same name
	id, err = s.client.Get(ctx, key).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to look up player: %w", err)
	}
	return id, nil
}

func (s *Store) StartGame(ctx context.Context, userID int64, at time.Time) (int64, error) {
	id, err := s.client.Incr(ctx, gameSeqKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate game id: %w", err)
	}
	err = s.client.HSet(ctx, gameKey(id),
		"player_id", userID,
		"started_at", at.UnixMilli(),
	).Err()
	if err != nil {
		return 0, fmt.Errorf("failed to store game: %w", err)
	}
	return id, nil
}

func (s *Store) RecordTurn(ctx context.Context, turn audit.Turn) error {
	data, err := json.Marshal(turnRecord{
		MoveNumber: turn.MoveNumber,
		ScoreBlack: turn.ScoreBlack,
		ScoreWhite: turn.ScoreWhite,
		Status:     string(turn.Status),
		At:         turn.At.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}
	if err := s.client.RPush(ctx, gameKey(turn.GameID)+":turns", data).Err(); err != nil {
		return fmt.Errorf("failed to store turn: %w", err)
	}
	return nil
}

// RecordReset appends the reset and returns the length of the player's list.
func (s *Store) RecordReset(ctx context.Context, userID int64, at time.Time) (int64, error) {
	n, err := s.client.RPush(ctx, resetKey+strconv.FormatInt(userID, 10), at.UnixMilli()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to store reset: %w", err)
	}
	return n, nil
}

// Turns reads back the turns of a game in the order they were recorded.
func (s *Store) Turns(ctx context.Context, gameID int64) ([]audit.Turn, error) {
	raw, err := s.client.LRange(ctx, gameKey(gameID)+":turns", 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read turns: %w", err)
	}
	turns := make([]audit.Turn, 0, len(raw))
	for _, item := range raw {
		var rec turnRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode turn: %w", err)
		}
		turns = append(turns, audit.Turn{
			GameID:     gameID,
			MoveNumber: rec.MoveNumber,
			ScoreBlack: rec.ScoreBlack,
			ScoreWhite: rec.ScoreWhite,
			Status:     domain.GameStatus(rec.Status),
			At:         time.UnixMilli(rec.At),
		})
	}
	return turns, nil
}

func gameKey(id int64) string {
	return gameKeyPrefix + strconv.FormatInt(id, 10)
}
