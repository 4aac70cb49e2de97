// Package droplog writes the persisted append log: a short header followed
// by one line per failed probe, flushed before Record returns.
package droplog

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hamed0406/pingmonitor/internal/domain"
)

const TimeLayout = "2006-01-02 15:04:05"

type Header struct {
	StartedAt time.Time
	Target    string
	System    string
}

type Writer struct {
	mu    sync.Mutex
	f     *os.File
	lines int64
}

// Create truncates path and writes the header.
func Create(path string, h Header) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("droplog: open %s: %w", path, err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Ping Monitor Started - %s\n", h.StartedAt.Format(TimeLayout))
	fmt.Fprintf(&b, "Target: %s\n", h.Target)
	fmt.Fprintf(&b, "System: %s\n", h.System)
	b.WriteString(strings.Repeat("-", 50) + "\n")
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return nil, fmt.Errorf("droplog: header: %w", err)
	}
	return &Writer{f: f}, nil
}

// Line formats one outage event.
func Line(ev domain.OutageEvent) string {
	return fmt.Sprintf("%s - Packet drop detected (consecutive: %d)\n",
		ev.StartTimestamp.Format(TimeLayout), ev.ConsecutiveIndex)
}

// Record appends ev and syncs the file.
func (w *Writer) Record(ev domain.OutageEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return os.ErrClosed
	}
	if _, err := w.f.WriteString(Line(ev)); err != nil {
		return err
	}
	w.lines++
	return w.f.Sync()
}

// Lines is the number of drop lines written so far.
func (w *Writer) Lines() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}
