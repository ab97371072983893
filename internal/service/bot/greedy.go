package bot

import (
	"github.com/iamasit07/reversi-online/backend/internal/domain"
)

// Greedy plays the move that flips the most discs right now. Ties keep the
// earliest candidate, which with row-major input is the top-left one.
type Greedy struct{}

func (Greedy) Name() string { return string(ModeGreedy) }

func (Greedy) Choose(board *domain.Board, color domain.Color, legal []domain.Position) domain.Position {
	best := legal[0]
	bestFlips := -1
	for _, pos := range legal {
		if n := len(board.FlipsFor(pos, color)); n > bestFlips {
			best, bestFlips = pos, n
		}
	}
	return best
}
