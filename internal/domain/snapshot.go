package domain

// Snapshot is a read-only view of a game, rebuilt after every change.
type Snapshot struct {
	BlackPositions []Position
	WhitePositions []Position
	LegalMoves     []Position
	Score          [2]int
	NextColor      Color
	Status         GameStatus
}

// GameInfo converts the snapshot into its wire form.
func (s Snapshot) GameInfo() GameInfo {
	return GameInfo{
		BlackPositions: s.BlackPositions,
		WhitePositions: s.WhitePositions,
		LegalMoves:     s.LegalMoves,
		Score:          s.Score,
		NextColor:      s.NextColor.String(),
		Status:         s.Status,
	}
}
