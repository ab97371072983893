package domain

type direction struct {
	dRow, dCol int
}

var directions = [8]direction{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// runLength counts the opponent discs walking from pos along d that are
// closed off by a disc of color. Zero when the run is open-ended or empty.
func (b *Board) runLength(pos Position, d direction, color Color) int {
	opponent := color.Opponent()
	count := 0
	r, c := pos.Row+d.dRow, pos.Col+d.dCol
	for b.InBounds(r, c) && b.At(r, c) == opponent {
		count++
		r += d.dRow
		c += d.dCol
	}
	if count == 0 || !b.InBounds(r, c) || b.At(r, c) != color {
		return 0
	}
	return count
}
