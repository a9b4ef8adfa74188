package ingest

import "errors"

var (
	// ErrNoFrames means the table had no usable rows.
	ErrNoFrames = errors.New("no telemetry frames in input")
	// ErrRead wraps failures reading or tokenizing the input.
	ErrRead = errors.New("read telemetry table")
	// ErrNoHeader means the input was empty.
	ErrNoHeader = errors.New("missing header row")
)
