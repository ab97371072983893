package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/reversi-online/backend/internal/domain"
	"github.com/iamasit07/reversi-online/backend/internal/service/audit"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn", 1, 1, 1)
	assert.Error(t, err)
}

// Runs against a real database only when TEST_DATABASE_URL is set.
func TestAuditRoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	db, err := Open(ctx, "pgx", dsn, 2, 2, 1)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, RunMigrations(ctx, db))

	users := NewUserRepo(db)
	name := fmt.Sprintf("tester-%d", time.Now().UnixNano())
	id, err := users.FindOrCreate(ctx, name)
	require.NoError(t, err)
	again, err := users.FindOrCreate(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	repo := NewAuditRepo(db)
	gameID, err := repo.StartGame(ctx, id, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.RecordTurn(ctx, audit.Turn{
		GameID: gameID, MoveNumber: 1, ScoreBlack: 4, ScoreWhite: 1,
		Status: domain.StatusRunning, At: time.Now(),
	}))

	first, err := repo.RecordReset(ctx, id, time.Now())
	require.NoError(t, err)
	second, err := repo.RecordReset(ctx, id, time.Now())
	require.NoError(t, err)
	assert.Equal(t, first+1, second)
}
