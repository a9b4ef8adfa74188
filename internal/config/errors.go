package config

import "errors"

var (
	// ErrInvalidConfig marks a value the session engine cannot run with.
	ErrInvalidConfig = errors.New("invalid pitwall config")
	// ErrLoadConfig marks a failure reading the YAML file, .env file or environment.
	ErrLoadConfig = errors.New("load pitwall config")
)
