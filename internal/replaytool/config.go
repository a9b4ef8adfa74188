// Package replaytool generates telemetry CSV files and drives a running
// pitwall service through a replay session over HTTP.
package replaytool

import "time"

// Config holds configuration for the replay tool.
type Config struct {
	BaseURL      string        // Base URL of the service
	File         string        // CSV file to upload
	Output       string        // Destination for generated CSV
	Seconds      int           // Length of a generated capture
	Hz           int           // Sample rate of a generated capture
	Seed         int64         // Seed for the synthetic generator
	Duration     time.Duration // How long a driven session runs before stopping
	PollInterval time.Duration // Snapshot polling period while driving
	Timeout      time.Duration // HTTP request timeout
}

// Snapshot is the subset of GET /session the tool reads.
type Snapshot struct {
	SessionID    string     `json:"session_id"`
	Running      bool       `json:"running"`
	Mode         string     `json:"mode"`
	ReplayFrames int        `json:"replay_frames"`
	ReplayIndex  int        `json:"replay_index"`
	Log          []LogEntry `json:"log"`
}

// LogEntry is one advisory log line.
type LogEntry struct {
	Agent   string `json:"agent"`
	Message string `json:"message"`
}

// Report mirrors the debrief payload.
type Report struct {
	Score        int      `json:"score"`
	Verdict      string   `json:"verdict"`
	PrimaryIssue string   `json:"primary_issue"`
	CoachingTip  string   `json:"coaching_tip,omitempty"`
	ActionPlan   []string `json:"action_plan,omitempty"`
}

// Stats holds drive statistics.
type Stats struct {
	FramesUploaded int
	SessionID      string
	Polls          int
	MaxReplayIndex int
	LogEntries     int
	Agents         map[string]int
	Debrief        *Report
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
