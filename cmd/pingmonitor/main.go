package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/pingmonitor/internal/config"
	"github.com/hamed0406/pingmonitor/internal/domain"
	"github.com/hamed0406/pingmonitor/internal/droplog"
	"github.com/hamed0406/pingmonitor/internal/httpapi"
	apimw "github.com/hamed0406/pingmonitor/internal/httpapi/middleware"
	"github.com/hamed0406/pingmonitor/internal/logging"
	"github.com/hamed0406/pingmonitor/internal/notify"
	"github.com/hamed0406/pingmonitor/internal/probe"
	"github.com/hamed0406/pingmonitor/internal/repo/memory"
	"github.com/hamed0406/pingmonitor/internal/report"
	"github.com/hamed0406/pingmonitor/internal/scheduler"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := newFlags(stderr)
	if err := flags.parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitConfig
	}
	cfg, err := flags.loadConfig()
	if err != nil {
		fmt.Fprintln(stderr, "configuration error:", err)
		return exitConfig
	}

	dns := probe.CheckDNS(context.Background(), cfg.Target)
	if dns.Fatal() {
		fmt.Fprintf(stderr, "configuration error: target %q does not resolve (%s)\n", dns.Domain, dns.Class)
		return exitConfig
	}

	logger, err := logging.NewLogger(logging.Options{
		Dir:     cfg.LogDir,
		Level:   cfg.LogLevel,
		Console: cfg.Console,
		Stderr:  stderr,
	})
	if err != nil {
		fmt.Fprintln(stderr, "logger:", err)
		return exitFailed
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("dns_check",
		zap.String("domain", dns.Domain),
		zap.String("class", dns.Class),
		zap.Bool("has_a_or_aaaa", dns.HasAOrAAAA),
		zap.String("cname", dns.CNAME),
		zap.String("resolver_error", dns.ResolverError),
	)
	if dns.Class == probe.DNSServFail {
		logger.Warn("dns_unavailable", zap.String("domain", dns.Domain), zap.String("error", dns.ResolverError))
	}

	checker, err := probe.Build(probe.Options{
		Kind:          cfg.Probe,
		Privileged:    cfg.Privileged,
		Timeout:       cfg.Timeout,
		RetryAttempts: cfg.RetryAttempts,
		RetryBackoff:  cfg.RetryBackoff,
	})
	if err != nil {
		fmt.Fprintln(stderr, "configuration error:", err)
		return exitConfig
	}

	started := time.Now()
	drops, err := droplog.Create(cfg.DropLog, droplog.Header{
		StartedAt: started,
		Target:    cfg.Target,
		System:    runtime.GOOS + " " + runtime.GOARCH,
	})
	if err != nil {
		logger.Error("droplog_open_failed", zap.Error(err))
		return exitFailed
	}
	defer drops.Close()

	store := memory.New()
	monitor, err := scheduler.NewMonitor(logger, checker, scheduler.Config{
		Target:      cfg.Target,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		Duration:    cfg.Duration,
		StatusEvery: cfg.StatusEvery,
	}, scheduler.WithSnapshots(store), scheduler.WithDropRecorder(drops))
	if err != nil {
		fmt.Fprintln(stderr, "configuration error:", err)
		return exitConfig
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	runCtx, stop := context.WithCancel(sigCtx)
	defer stop()

	auxCtx, stopAux := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(auxCtx)
	if cfg.StatusAddr != "" {
		serveStatus(gctx, g, logger, cfg, store, stop)
	}
	notifiers := notify.Multi{notify.Log{Logger: logger}}
	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		notifiers = append(notifiers, slack)
	}
	alerter := scheduler.NewAlerter(logger, store, store, notifiers, scheduler.AlerterConfig{
		AlertOnRecovery: cfg.AlertOnRecovery,
		Cooldown:        cfg.AlertCooldown,
		PollInterval:    cfg.AlertPoll,
	})
	g.Go(func() error {
		if err := alerter.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	snap := monitor.Run(runCtx)
	// Shutdown below can block on slow I/O; a second Ctrl-C kills the process.
	stopSignals()

	stopAux()
	if err := g.Wait(); err != nil {
		logger.Warn("background_task_failed", zap.Error(err))
	}
	if err := drops.Close(); err != nil {
		logger.Warn("droplog_close_failed", zap.Error(err))
	}
	logger.Info("drop_log_closed", zap.String("path", cfg.DropLog), zap.Int64("lines", drops.Lines()))

	code := exitOK
	if err := report.WriteFiles(cfg.HTMLReport, cfg.TextReport, snap, report.HostMeta(time.Now())); err != nil {
		logger.Error("report_write_failed", zap.Error(err))
		code = exitFailed
	}
	printSummary(stdout, snap, cfg)
	return code
}

// serveStatus runs the status API until gctx is done.
func serveStatus(gctx context.Context, g *errgroup.Group, logger *zap.Logger, cfg config.Config, store *memory.Store, stop func()) {
	api := httpapi.NewServer(logger, store, stop)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.StatusAddr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if !keys.Enabled() {
		logger.Warn("api_keys_missing", zap.String("detail", "read routes are open to anyone who can reach them"))
	}
	if len(keys.Admin) == 0 {
		logger.Warn("api_stop_disabled", zap.String("detail", "set ADMIN_API_KEYS to allow POST /api/stop"))
	}

	g.Go(func() error {
		logger.Info("api_listen", zap.String("addr", cfg.StatusAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("status api: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
}

func printSummary(w io.Writer, snap domain.Snapshot, cfg config.Config) {
	s := snap.Stats
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Monitoring %s: %s\n", snap.Target, snap.StopReason())
	fmt.Fprintf(w, "Duration:          %s\n", report.FormatDuration(snap.Elapsed))
	fmt.Fprintf(w, "Total pings:       %s\n", report.Thousands(s.TotalProbes))
	fmt.Fprintf(w, "Dropped packets:   %s\n", report.Thousands(s.FailedProbes))
	if rate, ok := s.SuccessRate(); ok {
		fmt.Fprintf(w, "Success rate:      %.2f%%\n", rate*100)
	} else {
		fmt.Fprintln(w, "Success rate:      no data")
	}
	fmt.Fprintf(w, "Max consecutive:   %d\n", s.MaxConsecutiveFailures)
	fmt.Fprintf(w, "Reports:           %s, %s\n", cfg.HTMLReport, cfg.TextReport)
	fmt.Fprintf(w, "Drop log:          %s\n", cfg.DropLog)
}
