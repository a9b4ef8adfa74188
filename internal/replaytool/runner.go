package replaytool

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/pitwall/pkg/logger"
)

// Drive uploads config.File, runs a session for config.Duration while
// polling the snapshot, then stops it and collects the debrief.
func Drive(ctx context.Context, config *Config) (*Stats, error) {
	if config.Duration <= 0 || config.PollInterval <= 0 {
		return nil, fmt.Errorf("%w: duration and poll interval must be positive", ErrInvalidConfig)
	}
	stats := &Stats{StartTime: time.Now(), Agents: map[string]int{}}
	client := NewHTTPClient(config.BaseURL, config.Timeout)

	logger.Get().Info(ctx, "starting replay drive",
		logger.String("baseURL", config.BaseURL),
		logger.String("file", config.File),
		logger.Duration("duration", config.Duration))

	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	if config.File != "" {
		n, err := client.Upload(ctx, config.File)
		if err != nil {
			return nil, fmt.Errorf("upload failed: %w", err)
		}
		stats.FramesUploaded = n
		logger.Get().Info(ctx, "replay uploaded", logger.Int("frames", n))
	}

	snap, err := client.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("session start failed: %w", err)
	}
	stats.SessionID = snap.SessionID

	if err := poll(ctx, client, config, stats); err != nil {
		// best effort so the service is not left running
		_, _ = client.Stop(context.Background())
		return nil, err
	}

	report, err := client.Stop(ctx)
	if err != nil {
		return nil, fmt.Errorf("session stop failed: %w", err)
	}
	stats.Debrief = report

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

func poll(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(config.Duration)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return nil
		case <-ticker.C:
			snap, err := client.Session(ctx)
			if err != nil {
				return fmt.Errorf("snapshot failed: %w", err)
			}
			observe(stats, snap)
		}
	}
}

func observe(stats *Stats, snap *Snapshot) {
	stats.Polls++
	if snap.ReplayIndex > stats.MaxReplayIndex {
		stats.MaxReplayIndex = snap.ReplayIndex
	}
	stats.LogEntries = len(snap.Log)
	clear(stats.Agents)
	for _, e := range snap.Log {
		stats.Agents[e.Agent]++
	}
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	fields := []logger.Field{
		logger.String("sessionId", stats.SessionID),
		logger.Int("framesUploaded", stats.FramesUploaded),
		logger.Int("polls", stats.Polls),
		logger.Int("maxReplayIndex", stats.MaxReplayIndex),
		logger.Int("logEntries", stats.LogEntries),
		logger.Any("agents", stats.Agents),
		logger.Duration("duration", stats.Duration),
	}
	if stats.Debrief != nil {
		fields = append(fields,
			logger.Int("score", stats.Debrief.Score),
			logger.String("verdict", stats.Debrief.Verdict),
			logger.String("primaryIssue", stats.Debrief.PrimaryIssue))
	}
	logger.Get().Info(ctx, "drive finished", fields...)
}
