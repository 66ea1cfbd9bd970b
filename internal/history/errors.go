package history

import "errors"

var (
	ErrNotFound     = errors.New("history entry not found")
	ErrConflict     = errors.New("history entry already exists")
	ErrInvalidInput = errors.New("invalid history entry")
)
