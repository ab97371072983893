package bot

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/reversi-online/backend/internal/domain"
)

func TestModeFor(t *testing.T) {
	assert.Equal(t, ModeNone, ModeFor(false, false))
	assert.Equal(t, ModeNone, ModeFor(false, true))
	assert.Equal(t, ModeRandom, ModeFor(true, false))
	assert.Equal(t, ModeGreedy, ModeFor(true, true))
}

func TestNewStrategy(t *testing.T) {
	assert.Nil(t, NewStrategy(ModeNone, nil))
	assert.Equal(t, "none", Name(NewStrategy(ModeNone, nil)))
	assert.Equal(t, "random", Name(NewStrategy(ModeRandom, nil)))
	assert.Equal(t, "greedy", Name(NewStrategy(ModeGreedy, nil)))
}

func TestGreedyPrefersMoreFlips(t *testing.T) {
	b, err := domain.ParseBoard(
		".....",
		".....",
		"BWWW.",
		".....",
		"BW...",
	)
	require.NoError(t, err)

	legal := b.LegalMoves(domain.Black)
	require.Equal(t, []domain.Position{{Row: 2, Col: 4}, {Row: 4, Col: 2}}, legal)

	assert.Equal(t, domain.Position{Row: 2, Col: 4}, Greedy{}.Choose(b, domain.Black, legal))
}

func TestGreedyTieKeepsFirstRowMajor(t *testing.T) {
	b, err := domain.NewBoard(8)
	require.NoError(t, err)

	legal := b.LegalMoves(domain.Black)
	assert.Equal(t, legal[0], Greedy{}.Choose(b, domain.Black, legal))
}

func TestRandomIsDeterministicWithSeed(t *testing.T) {
	b, err := domain.NewBoard(8)
	require.NoError(t, err)
	legal := b.LegalMoves(domain.Black)

	first := NewRandom(rand.New(rand.NewSource(42)))
	second := NewRandom(rand.New(rand.NewSource(42)))
	for i := 0; i < 10; i++ {
		pick := first.Choose(b, domain.Black, legal)
		assert.Equal(t, pick, second.Choose(b, domain.Black, legal))
		assert.Contains(t, legal, pick)
	}
}

func TestRandomCoversAllMoves(t *testing.T) {
	b, err := domain.NewBoard(8)
	require.NoError(t, err)
	legal := b.LegalMoves(domain.Black)

	r := NewRandom(rand.New(rand.NewSource(7)))
	seen := map[domain.Position]bool{}
	for i := 0; i < 200; i++ {
		seen[r.Choose(b, domain.Black, legal)] = true
	}
	assert.Len(t, seen, len(legal))
}

func TestStrategyDrivesGameAsWhite(t *testing.T) {
	g, err := domain.NewGame(8, Greedy{})
	require.NoError(t, err)

	auto, err := g.Play(domain.Position{Row: 2, Col: 3})
	require.NoError(t, err)
	require.NotNil(t, auto)
	assert.Equal(t, domain.Black, g.Active())

	snap := g.Snapshot()
	assert.Equal(t, 6, snap.Score[0]+snap.Score[1])
}
