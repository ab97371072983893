package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iamasit07/reversi-online/backend/internal/service/audit"
)

type AuditRepo struct {
	DB *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{DB: db}
}

func (r *AuditRepo) StartGame(ctx context.Context, userID int64, at time.Time) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO games (player_id, started_at) VALUES ($1, $2) RETURNING id`,
		userID, at,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert game: %w", err)
	}
	return id, nil
}

func (r *AuditRepo) RecordTurn(ctx context.Context, turn audit.Turn) error {
	query := `
	INSERT INTO turns (game_id, move_number, score_black, score_white, status, played_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (game_id, move_number) DO UPDATE SET
		score_black = EXCLUDED.score_black,
		score_white = EXCLUDED.score_white,
		status = EXCLUDED.status,
		played_at = EXCLUDED.played_at;
	`
	_, err := r.DB.ExecContext(ctx, query,
		turn.GameID, turn.MoveNumber, turn.ScoreBlack, turn.ScoreWhite, string(turn.Status), turn.At)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

// RecordReset inserts the reset and returns how many the player has made so
// far, both in one transaction.
func (r *AuditRepo) RecordReset(ctx context.Context, userID int64, at time.Time) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO resets (player_id, reset_at) VALUES ($1, $2)`, userID, at); err != nil {
		return 0, fmt.Errorf("failed to insert reset: %w", err)
	}

	var count int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resets WHERE player_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count resets: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return count, nil
}
