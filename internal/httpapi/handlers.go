package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/pingmonitor/internal/domain"
	apimw "github.com/hamed0406/pingmonitor/internal/httpapi/middleware"
	"github.com/hamed0406/pingmonitor/internal/outage"
	"github.com/hamed0406/pingmonitor/internal/report"
)

type statusResponse struct {
	Target                     string    `json:"target"`
	State                      string    `json:"state"`
	StopReason                 string    `json:"stop_reason,omitempty"`
	Final                      bool      `json:"final"`
	StartedAt                  time.Time `json:"started_at"`
	TakenAt                    time.Time `json:"taken_at"`
	Elapsed                    string    `json:"elapsed"`
	ElapsedSeconds             float64   `json:"elapsed_seconds"`
	Interval                   string    `json:"interval"`
	Limit                      string    `json:"limit"`
	Remaining                  string    `json:"remaining,omitempty"`
	RemainingSeconds           *float64  `json:"remaining_seconds,omitempty"`
	Version                    int64     `json:"version,omitempty"`
	TotalProbes                int64     `json:"total_probes"`
	FailedProbes               int64     `json:"failed_probes"`
	CurrentConsecutiveFailures int64     `json:"current_consecutive_failures"`
	MaxConsecutiveFailures     int64     `json:"max_consecutive_failures"`
	SuccessRate                *float64  `json:"success_rate"`
	LossRate                   *float64  `json:"loss_rate"`
	Episodes                   int       `json:"episodes"`
}

func newStatus(snap *domain.Snapshot) statusResponse {
	st := snap.Stats
	out := statusResponse{
		Target:                     snap.Target,
		State:                      string(snap.State),
		StopReason:                 string(snap.StopReason()),
		Final:                      snap.Final,
		StartedAt:                  st.StartedAt,
		TakenAt:                    snap.TakenAt,
		Elapsed:                    report.FormatDuration(snap.Elapsed),
		ElapsedSeconds:             snap.Elapsed.Seconds(),
		Interval:                   snap.Interval.String(),
		Limit:                      "unbounded",
		TotalProbes:                st.TotalProbes,
		FailedProbes:               st.FailedProbes,
		CurrentConsecutiveFailures: st.CurrentConsecutiveFailures,
		MaxConsecutiveFailures:     st.MaxConsecutiveFailures,
		Episodes:                   len(outage.Episodes(snap.Outages)),
	}
	if snap.Limit > 0 {
		out.Limit = snap.Limit.String()
		out.Remaining = report.FormatDuration(snap.Remaining)
		secs := snap.Remaining.Seconds()
		out.RemainingSeconds = &secs
	}
	if rate, ok := st.SuccessRate(); ok {
		loss, _ := st.LossRate()
		out.SuccessRate, out.LossRate = &rate, &loss
	}
	return out
}

// latest loads the current snapshot or answers 503 when the monitor has not
// published one yet.
func (s *Server) latest(w http.ResponseWriter, r *http.Request) (*domain.Snapshot, bool) {
	snap, err := s.Snapshots.Latest(r.Context())
	if err != nil {
		s.Logger.Error("snapshot_load_failed", zap.Error(err))
		apimw.WriteError(w, http.StatusInternalServerError, "snapshot unavailable")
		return nil, false
	}
	if snap == nil {
		apimw.WriteError(w, http.StatusServiceUnavailable, "no snapshot yet")
		return nil, false
	}
	return snap, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// versioned stores count publishes so pollers can skip unchanged snapshots.
type versioned interface {
	Versions() int64
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latest(w, r)
	if !ok {
		return
	}
	out := newStatus(snap)
	if v, ok := s.Snapshots.(versioned); ok {
		out.Version = v.Versions()
	}
	writeJSON(w, out)
}

// handleOutages returns the per-probe outage log and its episodes.
// ?limit=N keeps only the newest N events.
func (s *Server) handleOutages(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latest(w, r)
	if !ok {
		return
	}
	events := snap.Outages
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			apimw.WriteError(w, http.StatusBadRequest, "bad limit")
			return
		}
		if n < len(events) {
			events = events[len(events)-n:]
		}
	}
	if events == nil {
		events = []domain.OutageEvent{}
	}
	episodes := outage.Episodes(snap.Outages)
	if episodes == nil {
		episodes = []outage.Episode{}
	}
	writeJSON(w, map[string]any{
		"total":    len(snap.Outages),
		"events":   events,
		"episodes": episodes,
	})
}

func (s *Server) handleHourly(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latest(w, r)
	if !ok {
		return
	}
	writeJSON(w, outage.Hourly(snap.Outages))
}

func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "text/html; charset=utf-8", report.HTML)
}

func (s *Server) handleReportText(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "text/plain; charset=utf-8", report.Text)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, contentType string,
	fn func(io.Writer, domain.Snapshot, report.Meta) error) {
	snap, ok := s.latest(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := fn(&buf, *snap, s.Meta(time.Now())); err != nil {
		s.Logger.Error("report_render_failed", zap.Error(err))
		apimw.WriteError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if s.Stop == nil {
		apimw.WriteError(w, http.StatusNotImplemented, "stop disabled")
		return
	}
	s.Logger.Info("stop_requested", zap.String("remote", r.RemoteAddr))
	s.Stop()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`{"stopping":true}`))
}
