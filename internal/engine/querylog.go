package engine

import "time"

// LogEntry records one served query for auditing
type LogEntry struct {
	Timestamp         time.Time `json:"timestamp"`
	Query             string    `json:"query"`
	CategoriesMatched []string  `json:"categoriesMatched"`
	ConfidenceScore   float64   `json:"confidenceScore"`
}

// queryLog is a fixed-size ring of recent entries. Callers synchronize.
type queryLog struct {
	entries []LogEntry
	next    int
	full    bool
}

func newQueryLog(size int) *queryLog {
	if size < 0 {
		size = 0
	}
	return &queryLog{entries: make([]LogEntry, size)}
}

func (l *queryLog) add(e LogEntry) {
	if len(l.entries) == 0 {
		return
	}
	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
}

func (l *queryLog) len() int {
	if l.full {
		return len(l.entries)
	}
	return l.next
}

// recent returns up to n entries, newest first. n <= 0 means all.
func (l *queryLog) recent(n int) []LogEntry {
	count := l.len()
	if n <= 0 || n > count {
		n = count
	}
	out := make([]LogEntry, n)
	for i := 0; i < n; i++ {
		pos := (l.next - 1 - i + len(l.entries)) % len(l.entries)
		out[i] = l.entries[pos]
	}
	return out
}
