package telemetry

import "errors"

// ErrEmptyReplay is returned when a replay is built from zero frames.
var ErrEmptyReplay = errors.New("replay has no frames")
