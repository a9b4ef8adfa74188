package advisory

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the number of entries a Log keeps.
const DefaultCapacity = 10

// LogEntry is an advisory captured in the session log.
type LogEntry struct {
	ID string `json:"id"`
	Advisory
	Style Style  `json:"style"`
	Time  string `json:"time"`
}

// Timestamp renders t as HH:MM:SS.mmm in UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format("15:04:05.000")
}

// Log is a bounded, newest-first sequence of entries. It is not safe for
// concurrent use; the session loop owns it.
type Log struct {
	capacity int
	entries  []LogEntry
}

// NewLog returns an empty log holding at most capacity entries.
func NewLog(capacity int) *Log {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity, entries: make([]LogEntry, 0, capacity)}
}

// Append prepends a styled entry for a and evicts the oldest beyond capacity.
func (l *Log) Append(a Advisory, now time.Time) LogEntry {
	return l.insert(a, StyleFor(a), now)
}

// Reset clears the log and seeds it with seed rendered in style.
func (l *Log) Reset(seed Advisory, style Style, now time.Time) LogEntry {
	l.entries = l.entries[:0]
	return l.insert(seed, style, now)
}

func (l *Log) insert(a Advisory, style Style, now time.Time) LogEntry {
	e := LogEntry{ID: uuid.NewString(), Advisory: a, Style: style, Time: Timestamp(now)}
	if len(l.entries) < l.capacity {
		l.entries = append(l.entries, LogEntry{})
	}
	copy(l.entries[1:], l.entries[:len(l.entries)-1])
	l.entries[0] = e
	return e
}

// Entries returns a copy, newest first.
func (l *Log) Entries() []LogEntry {
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int { return len(l.entries) }
