package bot

import (
	"math/rand"
	"time"

	"github.com/iamasit07/reversi-online/backend/internal/domain"
)

type Mode string

const (
	ModeNone   Mode = "none"
	ModeRandom Mode = "random"
	ModeGreedy Mode = "greedy"
)

// ModeFor maps the INIT flags onto a strategy mode.
func ModeFor(autoMode, autoSmart bool) Mode {
	switch {
	case !autoMode:
		return ModeNone
	case autoSmart:
		return ModeGreedy
	default:
		return ModeRandom
	}
}

// NewStrategy returns nil for ModeNone so the game runs with two humans.
// rng is only used by the random strategy and may be nil.
func NewStrategy(mode Mode, rng *rand.Rand) domain.Strategy {
	switch mode {
	case ModeRandom:
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		return &Random{rng: rng}
	case ModeGreedy:
		return Greedy{}
	default:
		return nil
	}
}

// Name of the strategy for logs and metrics, "none" when nil.
func Name(s domain.Strategy) string {
	if s == nil {
		return string(ModeNone)
	}
	return s.Name()
}
