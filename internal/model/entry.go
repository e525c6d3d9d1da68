package model

import (
	"encoding/json"
	"time"
)

// LogEntry is one notification-worthy record from a client log file.
type LogEntry struct {
	MachineName string          `json:"MachineName"`
	Message     string          `json:"Message"`
	TimeCreated json.RawMessage `json:"TimeCreated"` // passed through verbatim
}

// LogFile is a candidate file found in the log directory.
type LogFile struct {
	Path string // full path on disk
	Name string // base name, carries the embedded timestamp

	// Timestamp is only meaningful when HasTimestamp is true.
	Timestamp    time.Time
	HasTimestamp bool
}

// FileFailure records a file whose notification step was skipped.
type FileFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// RunSummary is the outcome of one scan of the log directory.
type RunSummary struct {
	LastRun    time.Time     `json:"last_run"`
	StartedAt  time.Time     `json:"started_at"`
	Candidates int           `json:"candidates"`
	Skipped    int           `json:"skipped"`  // no timestamp in the name
	New        int           `json:"new"`      // newer than the watermark
	Notified   int           `json:"notified"` // every entry delivered
	Messages   int           `json:"messages"` // webhook posts made
	Purged     int           `json:"purged"`
	Failures   []FileFailure `json:"failures,omitempty"`
	Error      string        `json:"error,omitempty"` // why the run stopped early
}
