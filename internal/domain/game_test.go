package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firstLegal always answers with the first legal move.
type firstLegal struct{}

func (firstLegal) Name() string { return "first" }

func (firstLegal) Choose(_ *Board, _ Color, legal []Position) Position { return legal[0] }

func newGame(t *testing.T, size int, s Strategy) *Game {
	t.Helper()
	g, err := NewGame(size, s)
	require.NoError(t, err)
	return g
}

func TestOpeningScenario(t *testing.T) {
	g := newGame(t, 8, nil)

	auto, err := g.Play(Position{2, 3})
	require.NoError(t, err)
	assert.Nil(t, auto)

	snap := g.Snapshot()
	assert.Equal(t, [2]int{4, 1}, snap.Score)
	assert.Equal(t, White, snap.NextColor)
	assert.Equal(t, StatusRunning, snap.Status)
	assert.NotEmpty(t, snap.LegalMoves)
}

func TestPlayRejectsIllegalAndKeepsState(t *testing.T) {
	g := newGame(t, 8, nil)
	before := g.Snapshot()

	_, err := g.Play(Position{0, 0})
	assert.ErrorIs(t, err, ErrIllegalMove)
	assert.Equal(t, before, g.Snapshot())
	assert.False(t, g.CanUndo())
}

func TestUndoRedoRoundTrip(t *testing.T) {
	g := newGame(t, 8, nil)

	_, err := g.Play(Position{2, 3})
	require.NoError(t, err)
	afterFirst := g.Snapshot()

	_, err = g.Play(Position{2, 2})
	require.NoError(t, err)
	afterSecond := g.Snapshot()

	require.True(t, g.Undo())
	assert.Equal(t, afterFirst, g.Snapshot())

	require.True(t, g.Redo())
	assert.Equal(t, afterSecond, g.Snapshot())
}

func TestUndoFloorIsNoop(t *testing.T) {
	g := newGame(t, 8, nil)
	initial := g.Snapshot()

	assert.False(t, g.Undo())
	assert.Equal(t, initial, g.Snapshot())
	assert.False(t, g.CanRedo())

	_, err := g.Play(Position{2, 3})
	require.NoError(t, err)
	require.True(t, g.Undo())
	assert.False(t, g.Undo())
	assert.Equal(t, initial, g.Snapshot())
	assert.True(t, g.CanRedo())
}

func TestRedoEmptyIsNoop(t *testing.T) {
	g := newGame(t, 8, nil)
	assert.False(t, g.Redo())
}

func TestNewMoveClearsRedo(t *testing.T) {
	g := newGame(t, 8, nil)

	_, err := g.Play(Position{2, 3})
	require.NoError(t, err)
	require.True(t, g.Undo())
	require.True(t, g.CanRedo())

	_, err = g.Play(Position{3, 2})
	require.NoError(t, err)
	assert.False(t, g.CanRedo())
}

func TestEndgameBlocksPlayUntilUndo(t *testing.T) {
	b, err := ParseBoard(
		"BW.",
		"...",
		"...",
	)
	require.NoError(t, err)
	g := ResumeGame(b, Black, nil)
	require.Equal(t, StatusRunning, g.Status())

	_, err = g.Play(Position{0, 2})
	require.NoError(t, err)

	snap := g.Snapshot()
	assert.Equal(t, StatusEndgame, snap.Status)
	assert.Empty(t, snap.LegalMoves)
	assert.Equal(t, [2]int{3, 0}, snap.Score)

	_, err = g.Play(Position{1, 1})
	assert.ErrorIs(t, err, ErrIllegalMove)

	require.True(t, g.Undo())
	assert.Equal(t, StatusRunning, g.Status())
	assert.Equal(t, []Position{{0, 2}}, g.LegalMoves())
}

func TestSurrenderLeavesBoardAlone(t *testing.T) {
	g := newGame(t, 8, nil)
	_, err := g.Play(Position{2, 3})
	require.NoError(t, err)
	cells := g.Board().Cells()

	g.Surrender()

	snap := g.Snapshot()
	assert.Equal(t, StatusSurrender, snap.Status)
	assert.Empty(t, snap.LegalMoves)
	assert.Equal(t, cells, g.Board().Cells())

	_, err = g.Play(Position{2, 2})
	assert.ErrorIs(t, err, ErrIllegalMove)

	// surrender itself is not on the undo stack
	require.True(t, g.Undo())
	assert.Equal(t, StatusRunning, g.Status())
	assert.Equal(t, Black, g.Active())
	assert.False(t, g.CanUndo())
}

func TestAutomaticReplyAndPairedUndo(t *testing.T) {
	g := newGame(t, 8, firstLegal{})
	initial := g.Snapshot()

	auto, err := g.Play(Position{2, 3})
	require.NoError(t, err)
	require.NotNil(t, auto)
	assert.Equal(t, Position{2, 2}, *auto)
	assert.Equal(t, Black, g.Active())
	afterPair := g.Snapshot()

	require.True(t, g.Undo())
	assert.Equal(t, initial, g.Snapshot())
	assert.False(t, g.CanUndo())

	require.True(t, g.Redo())
	assert.Equal(t, afterPair, g.Snapshot())
	assert.False(t, g.CanRedo())
}

func TestNoAutomaticReplyAfterEndgame(t *testing.T) {
	b, err := ParseBoard(
		"BW.",
		"...",
		"...",
	)
	require.NoError(t, err)
	g := ResumeGame(b, Black, firstLegal{})

	auto, err := g.Play(Position{0, 2})
	require.NoError(t, err)
	assert.Nil(t, auto)
	assert.Equal(t, StatusEndgame, g.Status())
}

func TestGameInfoWireForm(t *testing.T) {
	g := newGame(t, 8, nil)
	info := g.Snapshot().GameInfo()

	assert.Equal(t, "BLACK", info.NextColor)
	assert.Equal(t, StatusRunning, info.Status)
	assert.Equal(t, [2]int{2, 2}, info.Score)
	assert.Len(t, info.LegalMoves, 4)
}
