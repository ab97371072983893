package domain

// Color is the content of a board cell and doubles as a player slot.
type Color int

const (
	Empty Color = 0
	Black Color = 1
	White Color = 2
)

func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

func (c Color) String() string {
	switch c {
	case Black:
		return "BLACK"
	case White:
		return "WHITE"
	}
	return "EMPTY"
}

const (
	MinBoardSize     = 3
	MaxBoardSize     = 15
	DefaultBoardSize = 8
)

// to represent the game status
type GameStatus string

const (
	StatusRunning   GameStatus = "RUNNING"
	StatusEndgame   GameStatus = "ENDGAME"
	StatusSurrender GameStatus = "SURRENDER"
)

// Position is a 0-based (row, col) board coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrIllegalMove      Error = "illegal move"
	ErrInvalidBoardSize Error = "board size must be between 3 and 15"
	ErrUnknownMessage   Error = "unknown message type"
	ErrMalformedPayload Error = "malformed message payload"
)
