// Package logbook persists the build trace and CLI activity as levelled,
// timestamped lines in a plain text file.
package logbook

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Entry is one parsed logbook line.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

// String renders the entry the way it is stored.
func (e Entry) String() string {
	return fmt.Sprintf("%s %-5s %s", e.Time.UTC().Format(time.RFC3339), string(e.Level), e.Message)
}

// ParseEntry reads a stored line back. Lines written by other tools are
// returned as INFO entries with a zero time.
func ParseEntry(line string) Entry {
	fields := strings.Fields(line)
	if len(fields) >= 2 {
		if ts, err := time.Parse(time.RFC3339, fields[0]); err == nil {
			level := Level(fields[1])
			switch level {
			case LevelInfo, LevelWarn, LevelError:
				rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
				rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[1]))
				return Entry{Time: ts, Level: level, Message: rest}
			}
		}
	}
	return Entry{Level: LevelInfo, Message: strings.TrimSpace(line)}
}

// Logbook appends entries to a file. Each write opens the file, so several
// processes may share one logbook.
type Logbook struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// New creates a logbook that writes to path, creating its directory.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logbook: ensure dir: %w", err)
	}
	return &Logbook{path: path, now: time.Now}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a single entry. Multi-line messages are split so every
// stored line parses on its own.
func (l *Logbook) Append(level Level, message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := l.now()
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimSpace(message), "\n") {
		b.WriteString(Entry{Time: ts, Level: level, Message: strings.TrimSpace(part)}.String())
		b.WriteByte('\n')
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = file.WriteString(b.String())
}

// Tail returns up to maxLines of the most recent entries plus the total
// number of entries in the file.
func (l *Logbook) Tail(maxLines int) ([]Entry, int) {
	if l == nil || maxLines <= 0 {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.Open(l.path)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		lines = append(lines, scanner.Text())
	}
	total := len(lines)
	if total == 0 {
		return nil, 0
	}
	if total > maxLines {
		lines = lines[total-maxLines:]
	}
	entries := make([]Entry, len(lines))
	for i, line := range lines {
		entries[i] = ParseEntry(line)
	}
	return entries, total
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...))
}
