package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type UserRepo struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// FindOrCreate returns the id of the player with this name, creating the row
// on first sight. Names compare case-insensitively.
func (r *UserRepo) FindOrCreate(ctx context.Context, name string) (int64, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	query := `
	INSERT INTO players (name, name_key) VALUES ($1, $2)
	ON CONFLICT (name_key) DO UPDATE SET name_key = EXCLUDED.name_key
	RETURNING id;
	`
	var id int64
	if err := r.DB.QueryRowContext(ctx, query, name, key).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to find or create player: %w", err)
	}
	return id, nil
}
