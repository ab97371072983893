package domain

import "encoding/json"

type MessageType string

const (
	MsgProfile  MessageType = "PROFILE"
	MsgMembers  MessageType = "MEMBERS"
	MsgInit     MessageType = "INIT"
	MsgPlay     MessageType = "PLAY"
	MsgUndo     MessageType = "UNDO"
	MsgRedo     MessageType = "REDO"
	MsgQuit     MessageType = "QUIT"
	MsgGameInfo MessageType = "GAMEINFO"
	MsgReset    MessageType = "RESET"
	MsgError    MessageType = "ERROR"
)

// User identifies a participant on the wire.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Type      MessageType     `json:"type"`
	Author    *User           `json:"author,omitempty"`
	Recipient *User           `json:"recipient,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
}

// NewEnvelope encodes content into a server envelope.
func NewEnvelope(t MessageType, recipient *User, content any) (Envelope, error) {
	env := Envelope{Type: t, Recipient: recipient}
	if content == nil {
		return env, nil
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return Envelope{}, err
	}
	env.Content = raw
	return env, nil
}

// Decode unmarshals the content into v. An empty content is an error.
func (e Envelope) Decode(v any) error {
	if len(e.Content) == 0 {
		return ErrMalformedPayload
	}
	if err := json.Unmarshal(e.Content, v); err != nil {
		return ErrMalformedPayload
	}
	return nil
}

type ProfileRequest struct {
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

type Members struct {
	Members []User `json:"members"`
}

type GameConfig struct {
	BoardSize int  `json:"boardSize"`
	AutoMode  bool `json:"autoMode"`
	AutoSmart bool `json:"autoSmart"`
}

// MoveRequest is a PLAY payload.
type MoveRequest struct {
	Row         int  `json:"row"`
	Col         int  `json:"col"`
	IsSurrender bool `json:"isSurrender"`
}

func (m MoveRequest) Position() Position {
	return Position{Row: m.Row, Col: m.Col}
}

type GameInfo struct {
	BlackPositions []Position `json:"blackPositions"`
	WhitePositions []Position `json:"whitePositions"`
	LegalMoves     []Position `json:"legalMoves"`
	Score          [2]int     `json:"score"`
	NextColor      string     `json:"nextColor"`
	Status         GameStatus `json:"status"`
}

type ResetAck struct {
	Count int64 `json:"count"`
}

type ErrorCode string

const (
	CodeProtocol        ErrorCode = "PROTOCOL"
	CodeIllegalMove     ErrorCode = "ILLEGAL_MOVE"
	CodeInvalidConfig   ErrorCode = "INVALID_CONFIG"
	CodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	CodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
	CodeInternal        ErrorCode = "INTERNAL"
)

type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}
