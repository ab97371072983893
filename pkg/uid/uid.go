package uid

import (
	"github.com/google/uuid"
)

// NewSessionID returns a random id for a login session.
func NewSessionID() string {
	return uuid.NewString()
}

// NewConnectionID tags a single websocket connection in logs.
func NewConnectionID() string {
	return uuid.New().String()[:8]
}
