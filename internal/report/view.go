// Package report renders a final or mid-run snapshot as plain text or HTML.
// Rendering is a pure function of the snapshot and the host metadata.
package report

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/hamed0406/pingmonitor/internal/domain"
	"github.com/hamed0406/pingmonitor/internal/outage"
)

const (
	timeLayout = "2006-01-02 15:04:05"
	noData     = "no data"
)

// Meta describes the machine the session ran on.
type Meta struct {
	Hostname    string
	OS          string
	Arch        string
	GoVersion   string
	GeneratedAt time.Time
}

// HostMeta fills Meta from the running process.
func HostMeta(now time.Time) Meta {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return Meta{
		Hostname:    host,
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		GoVersion:   runtime.Version(),
		GeneratedAt: now,
	}
}

type DropRow struct {
	Time        string
	Consecutive int64
	Note        string
}

type HourRow struct {
	Hour  string
	Drops int64
}

type EpisodeRow struct {
	Start string
	Last  string
	Drops int64
}

// View is the template model. Every value is preformatted.
type View struct {
	Target         string
	Generated      string
	System         string
	Hostname       string
	GoVersion      string
	Status         string
	Interval       string
	Duration       string
	Total          string
	Dropped        string
	SuccessRate    string
	LossRate       string
	MaxConsecutive int64
	HasData        bool
	HasDrops       bool
	Impact         string
	Drops          []DropRow
	Hours          []HourRow
	Episodes       []EpisodeRow
}

func NewView(snap domain.Snapshot, meta Meta) View {
	s := snap.Stats
	v := View{
		Target:         snap.Target,
		Generated:      meta.GeneratedAt.Format(timeLayout),
		System:         strings.TrimSpace(meta.OS + " " + meta.Arch),
		Hostname:       meta.Hostname,
		GoVersion:      meta.GoVersion,
		Status:         status(snap),
		Interval:       snap.Interval.String(),
		Duration:       FormatDuration(snap.Elapsed),
		Total:          Thousands(s.TotalProbes),
		Dropped:        Thousands(s.FailedProbes),
		SuccessRate:    noData,
		LossRate:       noData,
		MaxConsecutive: s.MaxConsecutiveFailures,
		HasDrops:       len(snap.Outages) > 0,
	}

	rate, ok := s.SuccessRate()
	v.HasData = ok
	switch {
	case !ok:
		v.Impact = "No data collected."
	case s.FailedProbes == 0:
		v.Impact = "No connectivity issues detected."
	case rate*100 < 99:
		v.Impact = "Significant connectivity issues affecting internet usage."
	default:
		v.Impact = "Minor but noticeable connectivity issues."
	}
	if ok {
		loss, _ := s.LossRate()
		v.SuccessRate = fmt.Sprintf("%.2f%%", rate*100)
		v.LossRate = fmt.Sprintf("%.3f%%", loss*100)
	}

	v.Drops = make([]DropRow, 0, len(snap.Outages))
	for _, ev := range snap.Outages {
		note := "Ongoing outage"
		if ev.RunStart() {
			note = "Start of outage"
		}
		v.Drops = append(v.Drops, DropRow{
			Time:        ev.StartTimestamp.Format(timeLayout),
			Consecutive: ev.ConsecutiveIndex,
			Note:        note,
		})
	}
	for _, h := range outage.Hourly(snap.Outages) {
		v.Hours = append(v.Hours, HourRow{Hour: h.Key, Drops: h.Drops})
	}
	for _, e := range outage.Episodes(snap.Outages) {
		v.Episodes = append(v.Episodes, EpisodeRow{
			Start: e.Start.Format(timeLayout),
			Last:  e.Last.Format(timeLayout),
			Drops: e.Drops,
		})
	}
	return v
}

func status(snap domain.Snapshot) string {
	if r := snap.StopReason(); r != domain.ReasonNone {
		return string(r)
	}
	return "Running"
}

// FormatDuration prints whole seconds as H:MM:SS, prefixed with days when
// the span exceeds 24h.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	days := secs / 86400
	secs %= 86400
	clock := fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
	switch days {
	case 0:
		return clock
	case 1:
		return "1 day, " + clock
	}
	return fmt.Sprintf("%d days, %s", days, clock)
}

// Thousands formats n with comma separators.
func Thousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
