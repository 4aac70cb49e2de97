package droplog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hamed0406/pingmonitor/internal/domain"
)

func TestWriter_HeaderAndLines(t *testing.T) {
	p := filepath.Join(t.TempDir(), "drops.log")
	start := time.Date(2025, 8, 18, 9, 30, 0, 0, time.UTC)

	w, err := Create(p, Header{StartedAt: start, Target: "8.8.8.8", System: "linux amd64"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := int64(1); i <= 3; i++ {
		ev := domain.OutageEvent{StartTimestamp: start.Add(time.Duration(i) * time.Second), ConsecutiveIndex: i}
		if err := w.Record(ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if w.Lines() != 3 {
		t.Fatalf("want 3 lines, got %d", w.Lines())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, _ := os.ReadFile(p)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("want 4 header + 3 drop lines, got %d:\n%s", len(lines), b)
	}
	if lines[0] != "Ping Monitor Started - 2025-08-18 09:30:00" || lines[1] != "Target: 8.8.8.8" {
		t.Fatalf("bad header: %q", lines[:2])
	}
	if lines[3] != strings.Repeat("-", 50) {
		t.Fatalf("bad rule: %q", lines[3])
	}
	if lines[6] != "2025-08-18 09:30:03 - Packet drop detected (consecutive: 3)" {
		t.Fatalf("bad drop line: %q", lines[6])
	}
}

func TestWriter_CreateTruncates(t *testing.T) {
	p := filepath.Join(t.TempDir(), "drops.log")
	if err := os.WriteFile(p, []byte("old junk\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := Create(p, Header{StartedAt: time.Now(), Target: "x"})
	if err != nil {
		t.Fatal(err)
	}
	_ = w.Close()
	b, _ := os.ReadFile(p)
	if strings.Contains(string(b), "old junk") {
		t.Fatalf("previous log should be cleared")
	}
}

func TestWriter_RecordAfterClose(t *testing.T) {
	w, err := Create(filepath.Join(t.TempDir(), "d.log"), Header{StartedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	_ = w.Close()
	if err := w.Record(domain.OutageEvent{ConsecutiveIndex: 1}); err == nil {
		t.Fatalf("want error after close")
	}
}
