package pedagogy

import "errors"

var (
	ErrEmpty        = errors.New("pedagogy has no entries")
	ErrInvalidEntry = errors.New("invalid pedagogy entry")
)
