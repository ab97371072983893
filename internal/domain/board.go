package domain

// Board is a square reversi grid stored row-major.
type Board struct {
	size  int
	cells []Color
}

// NewBoard returns a board of the given side with the four centre discs placed.
func NewBoard(size int) (*Board, error) {
	if size < MinBoardSize || size > MaxBoardSize {
		return nil, ErrInvalidBoardSize
	}

	b := &Board{size: size, cells: make([]Color, size*size)}
	mid := size / 2
	b.set(mid-1, mid-1, White)
	b.set(mid, mid, White)
	b.set(mid-1, mid, Black)
	b.set(mid, mid-1, Black)
	return b, nil
}

func (b *Board) Size() int {
	return b.size
}

func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.size && col >= 0 && col < b.size
}

// At returns Empty for out-of-range coordinates.
func (b *Board) At(row, col int) Color {
	if !b.InBounds(row, col) {
		return Empty
	}
	return b.cells[row*b.size+col]
}

func (b *Board) set(row, col int, c Color) {
	b.cells[row*b.size+col] = c
}

// LegalMoves lists every legal position for color in row-major order.
func (b *Board) LegalMoves(color Color) []Position {
	moves := []Position{}
	for row := 0; row < b.size; row++ {
		for col := 0; col < b.size; col++ {
			if b.IsLegal(Position{Row: row, Col: col}, color) {
				moves = append(moves, Position{Row: row, Col: col})
			}
		}
	}
	return moves
}

func (b *Board) IsLegal(pos Position, color Color) bool {
	if !b.InBounds(pos.Row, pos.Col) || b.At(pos.Row, pos.Col) != Empty {
		return false
	}
	for _, d := range directions {
		if b.runLength(pos, d, color) > 0 {
			return true
		}
	}
	return false
}

// FlipsFor returns the discs that placing color at pos would flip.
// An empty result means the move is not legal.
func (b *Board) FlipsFor(pos Position, color Color) []Position {
	if !b.InBounds(pos.Row, pos.Col) || b.At(pos.Row, pos.Col) != Empty {
		return nil
	}
	var flips []Position
	for _, d := range directions {
		n := b.runLength(pos, d, color)
		for i := 1; i <= n; i++ {
			flips = append(flips, Position{Row: pos.Row + d.dRow*i, Col: pos.Col + d.dCol*i})
		}
	}
	return flips
}

// Apply places color at pos and flips every bracketed run.
// The board is untouched when the move is illegal.
func (b *Board) Apply(pos Position, color Color) ([]Position, error) {
	if color != Black && color != White {
		return nil, ErrIllegalMove
	}
	flips := b.FlipsFor(pos, color)
	if len(flips) == 0 {
		return nil, ErrIllegalMove
	}

	for _, f := range flips {
		b.set(f.Row, f.Col, color)
	}
	b.set(pos.Row, pos.Col, color)
	return flips, nil
}

// Score returns the disc counts for black and white.
func (b *Board) Score() (black, white int) {
	for _, c := range b.cells {
		switch c {
		case Black:
			black++
		case White:
			white++
		}
	}
	return black, white
}

// Positions lists the cells occupied by color in row-major order.
func (b *Board) Positions(color Color) []Position {
	out := []Position{}
	for i, c := range b.cells {
		if c == color {
			out = append(out, Position{Row: i / b.size, Col: i % b.size})
		}
	}
	return out
}

// Cells returns a copy of the raw grid.
func (b *Board) Cells() []Color {
	out := make([]Color, len(b.cells))
	copy(out, b.cells)
	return out
}

// Restore overwrites the grid with a copy previously taken by Cells.
func (b *Board) Restore(cells []Color) {
	copy(b.cells, cells)
}

// this creates a deep copy of the board
func (b *Board) Clone() *Board {
	return &Board{size: b.size, cells: b.Cells()}
}

// ParseBoard builds a board from rows of 'B', 'W' and '.' characters.
func ParseBoard(rows ...string) (*Board, error) {
	size := len(rows)
	if size < MinBoardSize || size > MaxBoardSize {
		return nil, ErrInvalidBoardSize
	}

	b := &Board{size: size, cells: make([]Color, size*size)}
	for r, line := range rows {
		if len(line) != size {
			return nil, ErrInvalidBoardSize
		}
		for c, ch := range line {
			switch ch {
			case 'B', 'b':
				b.set(r, c, Black)
			case 'W', 'w':
				b.set(r, c, White)
			}
		}
	}
	return b, nil
}
