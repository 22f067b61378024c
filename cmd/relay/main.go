package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AryanXCode646/Karyakshetra/internal/api"
	"github.com/AryanXCode646/Karyakshetra/internal/api/handlers"
	"github.com/AryanXCode646/Karyakshetra/internal/config"
	"github.com/AryanXCode646/Karyakshetra/internal/journal"
	"github.com/AryanXCode646/Karyakshetra/internal/logger"
	"github.com/AryanXCode646/Karyakshetra/internal/relay"
	"github.com/AryanXCode646/Karyakshetra/internal/websocket"
	"github.com/docopt/docopt-go"
	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

const usage = `Karyakshetra collaboration relay.

Relays edits, cursor positions, saves and presence between editor instances.
Unset options fall back to the environment (PORT, RELAY_ADDR,
RELAY_ALLOWED_ORIGINS, RELAY_JOURNAL_PATH, RELAY_LOG_LEVEL, DEBUG).

Usage:
    relay [--addr=<addr>] [--origins=<origins>] [--journal=<path>]
        [--log-level=<level>] [--debug]
    relay -h | --help
    relay --version

Options:
    -h --help              Show this screen.
    --version              Show version.
    --addr=<addr>          Listen address [env default: :8080].
    --origins=<origins>    Comma separated web origins allowed to connect.
    --journal=<path>       SQLite file recording accepted saves.
    --log-level=<level>    One of trace, debug, info, warn, error.
    --debug                Verbose logging and gin debug mode.
`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		logger.Errorf("Failed to parse arguments: %v", err)
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load(overridesFrom(opts))
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	// Set Gin mode
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		logger.Errorf("Relay stopped: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	var (
		recorder relay.SaveRecorder
		saves    handlers.SaveLister
	)
	if cfg.JournalPath != "" {
		logger.Infof("Opening save journal: %s", cfg.JournalPath)
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer j.Close()
		recorder, saves = j, j
	}

	hub := relay.NewHub(relay.NewRegistry(nil), relay.NewDocumentStore(), relay.Options{
		QueueSize: cfg.QueueSize,
		Recorder:  recorder,
	})
	if err := hub.Init(); err != nil {
		return err
	}
	defer hub.Shutdown()

	sockets := websocket.NewServer(hub, websocket.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		SendQueueSize:   cfg.SendQueueSize,
		MaxMessageBytes: cfg.MaxMessageBytes,
		PingInterval:    cfg.PingInterval,
	})

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: api.NewRouter(api.Deps{
			Hub:            hub,
			Sockets:        sockets,
			Saves:          saves,
			AllowedOrigins: cfg.AllowedOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Collaboration relay listening on %s", cfg.Addr)
		logger.Infof("Allowed origins: %v", cfg.AllowedOrigins)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Infof("Shutting down relay...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("HTTP shutdown: %v", err)
	}
	return nil
}

func overridesFrom(opts docopt.Opts) config.Overrides {
	var o config.Overrides
	if v, ok := opts["--addr"].(string); ok {
		o.Addr = &v
	}
	if v, ok := opts["--origins"].(string); ok {
		origins := config.SplitList(v)
		o.AllowedOrigins = &origins
	}
	if v, ok := opts["--journal"].(string); ok {
		o.JournalPath = &v
	}
	if v, ok := opts["--log-level"].(string); ok {
		o.LogLevel = &v
	}
	if debug, _ := opts.Bool("--debug"); debug {
		o.Debug = &debug
	}
	return o
}
