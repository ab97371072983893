package memory

import "errors"

var ErrGameNotFound = errors.New("game not found")
