package replaytool

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/pitwall/internal/adapters/ingest"
	"github.com/okian/pitwall/internal/domain/telemetry"
	"github.com/okian/pitwall/pkg/logger"
)

// Generate samples the synthetic source at hz for the given number of
// seconds starting at start. Equal inputs produce equal frames.
func Generate(seed int64, seconds, hz int, start time.Time) ([]telemetry.Frame, error) {
	if seconds <= 0 || hz <= 0 {
		return nil, fmt.Errorf("%w: seconds and hz must be positive", ErrInvalidConfig)
	}
	src := telemetry.NewSynthetic(rand.New(rand.NewSource(seed))) //nolint:gosec // test data
	step := time.Second / time.Duration(hz)

	frames := make([]telemetry.Frame, 0, seconds*hz)
	for i := 0; i < seconds*hz; i++ {
		frames = append(frames, src.Frame(start.Add(time.Duration(i)*step)))
	}
	return frames, nil
}

// WriteFile generates a capture per config and writes it as CSV to
// config.Output, creating parent directories. It returns the frame count.
func WriteFile(ctx context.Context, config *Config) (int, error) {
	frames, err := Generate(config.Seed, config.Seconds, config.Hz, time.Now())
	if err != nil {
		return 0, err
	}

	filename := config.Output
	if filename == "" {
		filename = "telemetry_" + time.Now().Format("20060102_150405") + ".csv"
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return 0, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close file", logger.Error(err))
		}
	}()

	if err := ingest.WriteCSV(file, frames); err != nil {
		return 0, fmt.Errorf("failed to write csv: %w", err)
	}

	logger.Get().Info(ctx, "telemetry written",
		logger.String("filename", filename),
		logger.Int("frames", len(frames)),
		logger.Int("hz", config.Hz))
	return len(frames), nil
}
