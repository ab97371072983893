package domain

// Frame is everything needed to put a game back to an earlier turn.
type Frame struct {
	Cells  []Color
	Active Color
	Status GameStatus
}

// History keeps the undo and redo stacks. The state before the first move is
// never on the redo side, so it acts as a floor for undo.
type History struct {
	undo []Frame
	redo []Frame
}

// Record pushes a frame taken before a move and drops any redo branch.
func (h *History) Record(f Frame) {
	h.undo = append(h.undo, f)
	h.redo = h.redo[:0]
}

// Undo swaps current onto the redo stack and returns the previous frame.
func (h *History) Undo(current Frame) (Frame, bool) {
	if len(h.undo) == 0 {
		return Frame{}, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	return prev, true
}

// Redo swaps current onto the undo stack and returns the next frame.
func (h *History) Redo(current Frame) (Frame, bool) {
	if len(h.redo) == 0 {
		return Frame{}, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	return next, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }

func (h *History) CanRedo() bool { return len(h.redo) > 0 }

func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
