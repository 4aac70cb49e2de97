package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/pingmonitor/internal/httpapi/middleware"
	"github.com/hamed0406/pingmonitor/internal/repo"
	"github.com/hamed0406/pingmonitor/internal/report"
)

// Server exposes the latest published snapshot. It never touches the
// monitor's state directly.
type Server struct {
	Logger    *zap.Logger
	Snapshots repo.SnapshotStore
	// Stop requests cooperative cancellation of the monitor. Nil disables
	// POST /api/stop.
	Stop func()
	// Meta describes the host in rendered reports.
	Meta func(now time.Time) report.Meta
}

func NewServer(l *zap.Logger, snaps repo.SnapshotStore, stop func()) *Server {
	return &Server{Logger: l, Snapshots: snaps, Stop: stop, Meta: report.HostMeta}
}

func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, pubRPM, pubBurst, admRPM, admBurst int) http.Handler {
	r := chi.NewRouter()
	// Without an explicit origin list browsers may only read.
	corsOpts := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
		AllowedHeaders: []string{"Authorization", "X-API-Key"},
		MaxAge:         300,
	}
	if len(allowedOrigins) > 0 {
		corsOpts.AllowedOrigins = allowedOrigins
		corsOpts.AllowedMethods = []string{http.MethodGet, http.MethodHead, http.MethodPost}
		corsOpts.AllowedHeaders = append(corsOpts.AllowedHeaders, "Content-Type")
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAny(keys), apimw.RateLimit(pubRPM, pubBurst))
		r.Get("/api/status", s.handleStatus)
		r.Get("/api/outages", s.handleOutages)
		r.Get("/api/outages/hourly", s.handleHourly)
		r.Get("/api/report", s.handleReportHTML)
		r.Get("/api/report.txt", s.handleReportText)
	})

	// Stop fails closed: RequireAdmin refuses everything without admin keys.
	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAdmin(keys), apimw.RateLimit(admRPM, admBurst))
		r.Post("/api/stop", s.handleStop)
	})

	return r
}
