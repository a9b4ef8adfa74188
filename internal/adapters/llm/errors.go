package llm

import "errors"

// ErrNoCredential is returned by New when no API key is configured.
var ErrNoCredential = errors.New("gemini api key is empty")
