package domain

// Strategy picks a move for the automatic player. legal is never empty.
type Strategy interface {
	Name() string
	Choose(board *Board, color Color, legal []Position) Position
}

// Game is the turn controller for a single reversi match.
type Game struct {
	board    *Board
	active   Color
	legal    []Position
	status   GameStatus
	history  History
	strategy Strategy

	// color controlled by strategy, Empty when both sides are human
	autoColor Color
}

// NewGame starts a match with black to move. A nil strategy means two humans.
func NewGame(size int, strategy Strategy) (*Game, error) {
	board, err := NewBoard(size)
	if err != nil {
		return nil, err
	}

	g := &Game{
		board:    board,
		active:   Black,
		strategy: strategy,
	}
	if strategy != nil {
		g.autoColor = White
	}
	g.refresh()
	return g, nil
}

func (g *Game) Board() *Board { return g.board }

func (g *Game) Active() Color { return g.active }

func (g *Game) Status() GameStatus { return g.status }

func (g *Game) Strategy() Strategy { return g.strategy }

func (g *Game) AutoColor() Color { return g.autoColor }

func (g *Game) CanUndo() bool { return g.history.CanUndo() }

func (g *Game) CanRedo() bool { return g.history.CanRedo() }

func (g *Game) LegalMoves() []Position {
	out := make([]Position, len(g.legal))
	copy(out, g.legal)
	return out
}

func (g *Game) IsFinished() bool {
	return g.status != StatusRunning
}

// Play applies a move for the active color. When the next color belongs to
// the strategy and the game is still running, exactly one automatic reply
// follows. The reply position is returned, or nil when none was played.
func (g *Game) Play(pos Position) (*Position, error) {
	if g.status != StatusRunning || !g.isCachedLegal(pos) {
		return nil, ErrIllegalMove
	}
	if err := g.step(pos); err != nil {
		return nil, err
	}

	if g.strategy == nil || g.status != StatusRunning || g.active != g.autoColor {
		return nil, nil
	}
	reply := g.strategy.Choose(g.board, g.active, g.LegalMoves())
	if err := g.step(reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// Surrender ends the game without touching the board or the history.
func (g *Game) Surrender() {
	g.status = StatusSurrender
	g.legal = []Position{}
}

// Undo reverts the last move. With a strategy attached, a human move and the
// automatic reply are undone together. Returns false when nothing was undone.
func (g *Game) Undo() bool {
	prev, ok := g.history.Undo(g.frame())
	if !ok {
		return false
	}
	g.restore(prev)

	if g.pairedWithAuto() {
		if prev, ok := g.history.Undo(g.frame()); ok {
			g.restore(prev)
		}
	}
	return true
}

// Redo replays the last undone move, mirroring Undo's pairing.
func (g *Game) Redo() bool {
	next, ok := g.history.Redo(g.frame())
	if !ok {
		return false
	}
	g.restore(next)

	if g.pairedWithAuto() {
		if next, ok := g.history.Redo(g.frame()); ok {
			g.restore(next)
		}
	}
	return true
}

func (g *Game) Snapshot() Snapshot {
	black, white := g.board.Score()
	legal := []Position{}
	if g.status == StatusRunning {
		legal = g.LegalMoves()
	}
	return Snapshot{
		BlackPositions: g.board.Positions(Black),
		WhitePositions: g.board.Positions(White),
		LegalMoves:     legal,
		Score:          [2]int{black, white},
		NextColor:      g.active,
		Status:         g.status,
	}
}

func (g *Game) step(pos Position) error {
	before := g.frame()
	if _, err := g.board.Apply(pos, g.active); err != nil {
		return err
	}
	g.history.Record(before)
	g.active = g.active.Opponent()
	g.refresh()
	return nil
}

// refresh recomputes the legal set for the color to move and derives status.
func (g *Game) refresh() {
	g.legal = g.board.LegalMoves(g.active)
	if len(g.legal) == 0 {
		g.status = StatusEndgame
	} else {
		g.status = StatusRunning
	}
}

func (g *Game) pairedWithAuto() bool {
	return g.strategy != nil && g.status == StatusRunning && g.active == g.autoColor
}

func (g *Game) frame() Frame {
	return Frame{Cells: g.board.Cells(), Active: g.active, Status: g.status}
}

func (g *Game) restore(f Frame) {
	g.board.Restore(f.Cells)
	g.active = f.Active
	g.status = f.Status
	if g.status == StatusRunning {
		g.legal = g.board.LegalMoves(g.active)
	} else {
		g.legal = []Position{}
	}
}

func (g *Game) isCachedLegal(pos Position) bool {
	for _, p := range g.legal {
		if p == pos {
			return true
		}
	}
	return false
}

// ResumeGame wraps an existing position. The history starts empty.
func ResumeGame(board *Board, active Color, strategy Strategy) *Game {
	g := &Game{board: board, active: active, strategy: strategy}
	if strategy != nil {
		g.autoColor = White
	}
	g.refresh()
	return g
}
