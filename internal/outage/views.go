package outage

import (
	"sort"
	"time"

	"github.com/hamed0406/pingmonitor/internal/domain"
)

const hourKeyLayout = "2006-01-02 15"

// HourBucket counts drops that fell inside one wall-clock hour.
type HourBucket struct {
	Hour  time.Time `json:"hour"`
	Key   string    `json:"key"`
	Drops int64     `json:"drops"`
}

// Hourly groups events by the date and hour of their timestamp, in each
// timestamp's own location, sorted by hour.
func Hourly(events []domain.OutageEvent) []HourBucket {
	idx := make(map[string]int, 8)
	out := make([]HourBucket, 0, 8)
	for _, ev := range events {
		ts := ev.StartTimestamp
		key := ts.Format(hourKeyLayout)
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, HourBucket{
				Hour: time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), 0, 0, 0, ts.Location()),
				Key:  key,
			})
		}
		out[i].Drops++
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Key < out[b].Key })
	return out
}

// Episode is one contiguous failure run.
type Episode struct {
	Start time.Time `json:"start"`
	Last  time.Time `json:"last"`
	Drops int64     `json:"drops"`
}

// Episodes folds the per-probe log into runs using the run-start markers.
func Episodes(events []domain.OutageEvent) []Episode {
	var out []Episode
	for _, ev := range events {
		if ev.RunStart() || len(out) == 0 {
			out = append(out, Episode{Start: ev.StartTimestamp, Last: ev.StartTimestamp, Drops: 1})
			continue
		}
		cur := &out[len(out)-1]
		cur.Last = ev.StartTimestamp
		cur.Drops++
	}
	return out
}
