// Package activity keeps an append-only plain-text trail of member actions,
// separate from the structured application log so it survives log rotation
// and can be shown to members as-is.
package activity

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"
)

// Logger appends one line per action to a flat file. Safe for concurrent use.
type Logger struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewLogger(path string) *Logger {
	return &Logger{path: path, now: time.Now}
}

// Record appends "[timestamp] actor action entityType#id: details".
func (l *Logger) Record(actor, action, entityType string, entityID uint, details string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s %s %s#%d", l.now().Format("2006-01-02 15:04:05"), actor, action, entityType, entityID)
	if details != "" {
		line += ": " + details
	}
	_, err = fmt.Fprintln(f, line)
	return err
}

// Recent returns up to limit most recent lines, newest first.
func (l *Logger) Recent(limit int) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	// reverse so the newest line comes first
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}
	return lines, nil
}

// Clear truncates the trail. Admin-gated at the handler.
func (l *Logger) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := os.Truncate(l.path, 0)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
