package bot

import (
	"math/rand"
	"sync"

	"github.com/iamasit07/reversi-online/backend/internal/domain"
)

// Random picks uniformly among the legal moves.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (r *Random) Name() string { return string(ModeRandom) }

func (r *Random) Choose(_ *domain.Board, _ domain.Color, legal []domain.Position) domain.Position {
	r.mu.Lock()
	defer r.mu.Unlock()
	return legal[r.rng.Intn(len(legal))]
}
