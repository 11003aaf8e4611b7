/*
Package game
File: journal.go
Description:
    The ship's log: a bounded, newest-first list of severity-tagged entries.
*/

package game

import "time"

// Severity grades a log entry (and the event carrying it).
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// JournalCap is the number of entries kept before the oldest are dropped.
const JournalCap = 50

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// LogEntry is one line of the ship's log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
}

// Journal holds log entries, most recent first.
type Journal struct {
	clk     Clock
	entries []LogEntry
}

// NewJournal returns an empty journal stamped by clk.
func NewJournal(clk Clock) *Journal {
	if clk == nil {
		clk = RealClock{}
	}
	return &Journal{clk: clk}
}

// Add prepends an entry, trims to JournalCap and returns the entry.
func (j *Journal) Add(message string, sev Severity) LogEntry {
	entry := LogEntry{Timestamp: j.clk.Now(), Message: message, Severity: sev}
	j.entries = append([]LogEntry{entry}, j.entries...)
	if len(j.entries) > JournalCap {
		j.entries = j.entries[:JournalCap]
	}
	return entry
}

// Entries returns a copy of the log, newest first.
func (j *Journal) Entries() []LogEntry {
	out := make([]LogEntry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Len reports the number of entries held.
func (j *Journal) Len() int { return len(j.entries) }

// Clear drops every entry.
func (j *Journal) Clear() { j.entries = nil }
