package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farmsentry/farmsentry/internal/config"
	"github.com/farmsentry/farmsentry/internal/handlers"
	"github.com/farmsentry/farmsentry/internal/keepalive"
	"github.com/farmsentry/farmsentry/internal/metrics"
	"github.com/farmsentry/farmsentry/internal/notify"
	"github.com/farmsentry/farmsentry/internal/stats"
	"github.com/farmsentry/farmsentry/internal/tailer"
	"github.com/farmsentry/farmsentry/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("farmsentry starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"log_path", cfg.Monitor.LogPath,
		"webhooks", len(cfg.Notify.Webhooks),
		"keepalive", cfg.Keepalive.Enabled,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	collector, err := metrics.NewCollector()
	if err != nil {
		slog.Error("failed to build metrics collector", "err", err)
		os.Exit(1)
	}

	hub := ws.New()
	go hub.Run(ctx)

	manager := notify.NewManager(cfg.Notify)

	// deliver is the single path every user-facing event takes, whether it
	// came from a log handler, the keepalive monitor, or the stats loop.
	deliver := func(ev notify.Event) {
		collector.RecordEvent(ev)
		manager.Deliver(ev)
		hub.Broadcast(ev)
	}

	var monitor *keepalive.Monitor
	if cfg.Keepalive.Enabled {
		monitor = keepalive.New(cfg.Keepalive.Threshold, deliver)
		go monitor.Run(ctx)
	}

	observers := []handlers.ActivityObserver{collector}
	if cfg.Stats.Enabled {
		acc := stats.New(cfg.Stats.Interval, deliver)
		observers = append(observers, acc)
		go acc.Run(ctx)
	}

	// Adjacent subsystem handlers plug in here alongside the harvester.
	handlerSet := []handlers.LogHandler{
		handlers.NewHarvesterActivityHandler(observers...),
	}

	// Watch config file for hot-reload (logs only; a restart applies changes).
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			slog.Info("config hot-reloaded, restart to apply", "log_path", updated.Monitor.LogPath)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	startHTTP(ctx, cfg.Server.HTTPPort, collector, hub)

	process := func(batch string) {
		for _, h := range handlerSet {
			for _, ev := range h.Handle(batch) {
				if ev.Kind == notify.KindKeepalive {
					collector.RecordEvent(ev)
					if monitor != nil {
						monitor.Signal(ev.Service)
					}
					continue
				}
				deliver(ev)
			}
		}
	}

	if err := tailer.New(cfg.Monitor).Run(ctx, process); err != nil {
		slog.Error("tailer stopped", "err", err)
		os.Exit(1)
	}

	slog.Info("farmsentry shutting down")
}

// startHTTP serves /metrics, /healthz and the /ws event feed in the
// background, shutting down cleanly when ctx is cancelled.
func startHTTP(ctx context.Context, port int, collector *metrics.Collector, hub *ws.Hub) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	mux.Handle("/ws", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	go func() {
		slog.Info("http: listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http: server stopped", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
