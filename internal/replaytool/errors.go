package replaytool

import "errors"

var (
	ErrBadStatus     = errors.New("unexpected status")
	ErrInvalidConfig = errors.New("invalid replay tool config")
)
