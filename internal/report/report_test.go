package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hamed0406/pingmonitor/internal/domain"
	"github.com/hamed0406/pingmonitor/internal/outage"
)

var (
	t0   = time.Date(2025, 8, 18, 9, 58, 0, 0, time.UTC)
	meta = Meta{Hostname: "box", OS: "linux", Arch: "amd64", GoVersion: "go1.23", GeneratedAt: t0.Add(time.Hour)}
)

func snapshotFrom(seq []bool) domain.Snapshot {
	tr := outage.NewTracker(t0)
	for i, ok := range seq {
		tr.Record(domain.ProbeOutcome{Timestamp: t0.Add(time.Duration(i) * time.Minute), Success: ok})
	}
	return domain.Snapshot{
		Target:   "8.8.8.8",
		Stats:    tr.Stats(),
		Outages:  tr.Events(),
		Elapsed:  time.Duration(len(seq)) * time.Minute,
		Interval: time.Minute,
		State:    domain.StateStoppingByCancellation,
		Final:    true,
	}
}

func TestNewView_WithDrops(t *testing.T) {
	v := NewView(snapshotFrom([]bool{true, true, false, false, false, true, false}), meta)

	if v.Total != "7" || v.Dropped != "4" || v.MaxConsecutive != 3 {
		t.Fatalf("bad counters: %+v", v)
	}
	if v.SuccessRate != "42.86%" || v.LossRate != "57.143%" {
		t.Fatalf("bad rates: %s %s", v.SuccessRate, v.LossRate)
	}
	if v.Status != string(domain.ReasonStopped) {
		t.Fatalf("bad status %q", v.Status)
	}
	if len(v.Drops) != 4 || v.Drops[0].Note != "Start of outage" || v.Drops[1].Note != "Ongoing outage" {
		t.Fatalf("bad drop rows: %+v", v.Drops)
	}
	// drops at 10:00, 10:01, 10:02, 10:04
	if len(v.Hours) != 1 || v.Hours[0].Hour != "2025-08-18 10" || v.Hours[0].Drops != 4 {
		t.Fatalf("bad hours: %+v", v.Hours)
	}
	if len(v.Episodes) != 2 {
		t.Fatalf("bad episodes: %+v", v.Episodes)
	}
	if !strings.HasPrefix(v.Impact, "Significant") {
		t.Fatalf("bad impact %q", v.Impact)
	}
}

func TestNewView_NoData(t *testing.T) {
	v := NewView(domain.Snapshot{Target: "8.8.8.8", Final: true, State: domain.StateStoppingByDuration}, meta)
	if v.HasData || v.SuccessRate != noData || v.LossRate != noData {
		t.Fatalf("zero probes should render no data: %+v", v)
	}

	var buf bytes.Buffer
	if err := Text(&buf, domain.Snapshot{Target: "8.8.8.8"}, meta); err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(buf.String(), "no data to report") {
		t.Fatalf("text report missing no-data note:\n%s", buf.String())
	}
}

func TestNewView_MinorImpact(t *testing.T) {
	seq := make([]bool, 200)
	for i := range seq {
		seq[i] = i != 50
	}
	v := NewView(snapshotFrom(seq), meta)
	if v.SuccessRate != "99.50%" || !strings.HasPrefix(v.Impact, "Minor") {
		t.Fatalf("want minor impact at 99.5%%, got %s %q", v.SuccessRate, v.Impact)
	}
}

func TestHTML_EscapesAndRenders(t *testing.T) {
	snap := snapshotFrom([]bool{false, true})
	snap.Target = "<script>x</script>"
	var buf bytes.Buffer
	if err := HTML(&buf, snap, meta); err != nil {
		t.Fatalf("HTML: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>x</script>") {
		t.Fatalf("target must be escaped")
	}
	for _, want := range []string{"Issue Detected", "Start of outage", "Hourly Drop Analysis", "Report Summary for ISP"} {
		if !strings.Contains(out, want) {
			t.Fatalf("html missing %q", want)
		}
	}
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	h := filepath.Join(dir, "r.html")
	x := filepath.Join(dir, "r.txt")
	if err := WriteFiles(h, x, snapshotFrom([]bool{true}), meta); err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	for _, p := range []string{h, x} {
		if b, err := os.ReadFile(p); err != nil || len(b) == 0 {
			t.Fatalf("%s not written: %v", p, err)
		}
	}
	if err := WriteFiles(filepath.Join(dir, "missing", "r.html"), "", snapshotFrom(nil), meta); err == nil {
		t.Fatalf("want error for unwritable path")
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                                      "0:00:00",
		90*time.Minute + 1500*time.Millisecond: "1:30:01",
		25 * time.Hour:                         "1 day, 1:00:00",
		49*time.Hour + 5*time.Second:           "2 days, 1:00:05",
	}
	for in, want := range cases {
		if got := FormatDuration(in); got != want {
			t.Fatalf("FormatDuration(%v)=%q want %q", in, got, want)
		}
	}
}

func TestThousands(t *testing.T) {
	cases := map[int64]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4200: "-4,200"}
	for in, want := range cases {
		if got := Thousands(in); got != want {
			t.Fatalf("Thousands(%d)=%q want %q", in, got, want)
		}
	}
}
