package replaytool

import "time"

// Defaults shared by the CLI flags.
const (
	DefaultBaseURL      = "http://localhost:9080"
	DefaultSeconds      = 90
	DefaultHz           = 20
	DefaultDuration     = 20 * time.Second
	DefaultPollInterval = time.Second
	DefaultTimeout      = 90 * time.Second
)

const (
	formFileField       = "file"
	directoryPermission = 0o750
)
