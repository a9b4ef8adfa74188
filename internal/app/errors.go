package service

import "errors"

// Sentinel error kinds for the session engine.
var (
	ErrAlreadyRunning = errors.New("session already running")
	ErrNotRunning     = errors.New("no session running")
	ErrNotStarted     = errors.New("service not started")
	ErrStopped        = errors.New("service stopped")
	ErrIngest         = errors.New("replay ingestion failed")
)
