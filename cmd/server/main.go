package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gridrealm.ai/internal/config"
	"gridrealm.ai/internal/logging"
	persistlog "gridrealm.ai/internal/persistence/log"
	"gridrealm.ai/internal/persistence/save"
	"gridrealm.ai/internal/protocol"
	"gridrealm.ai/internal/sim/world"
	"gridrealm.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		slot       = flag.String("slot", "default", "save slot")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		pgDSN      = flag.String("pg_dsn", "", "postgres dsn for the save store (or set GR_PG_DSN; default: file store)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite index (journal events + save metadata)")
		fresh      = flag.Bool("fresh", false, "ignore an existing save and start a new session")
	)
	flag.Parse()

	bundle, err := config.Load(*configDir, *tuningPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(bundle.Tuning.LogLevel, bundle.Tuning.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(runConfig{
		Addr:      *addr,
		Slot:      *slot,
		DataDir:   *dataDir,
		PGDSN:     envString("GR_PG_DSN", *pgDSN),
		DisableDB: *disableDB,
		Fresh:     *fresh,
	}, bundle, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

type runConfig struct {
	Addr      string
	Slot      string
	DataDir   string
	PGDSN     string
	DisableDB bool
	Fresh     bool
}

func run(cfg runConfig, bundle config.Bundle, logger *zap.Logger) error {
	sessionDir := filepath.Join(cfg.DataDir, "sessions", cfg.Slot)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return err
	}

	backend, err := openBackend(backendConfig{
		SessionDir: sessionDir,
		PGDSN:      cfg.PGDSN,
		DisableDB:  cfg.DisableDB,
	}, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	if backend.Index != nil {
		if err := backend.Index.UpsertCatalogs(bundle.Dir, bundle.Catalogs, bundle.Tuning); err != nil {
			logger.Warn("index: upsert catalogs", zap.Error(err))
		}
	}

	journal := persistlog.NewEventLogger(sessionDir)
	defer journal.Close()

	wcfg := world.Config{
		Tuning:   bundle.Tuning,
		Zones:    bundle.Zones,
		Catalogs: bundle.Catalogs,
		Logger:   logger.Named("world"),
		Sink:     world.EventSinks{journal, backend.Index},
	}
	w, err := loadOrCreate(cfg, wcfg, backend.Store, logger)
	if err != nil {
		return err
	}

	var wsSrv *ws.Server
	runner := world.NewRunner(w, world.RunnerConfig{
		Store:   backend.Store,
		Slot:    cfg.Slot,
		OnFrame: func(f protocol.FrameMsg) { wsSrv.Broadcast(f) },
		Logger:  logger.Named("save"),
	})
	wsSrv = ws.NewServer(runner, logger.Named("ws"))

	ctx, cancel := signalContext()
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- runner.Run(ctx) }()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", metricsHandler(runner, wsSrv, backend.Index))
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	if envBool("GR_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP()) {
		registerAdmin(mux, runner, backend.Index)
	} else {
		logger.Info("admin endpoints disabled (GR_ENABLE_ADMIN_HTTP=false)")
	}
	if envBool("GR_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("slot", cfg.Slot))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
		<-runDone
		return err
	}
	return <-runDone
}

// loadOrCreate resumes the slot when a save exists and starts a new session otherwise.
func loadOrCreate(cfg runConfig, wcfg world.Config, store save.Store, logger *zap.Logger) (*world.World, error) {
	if !cfg.Fresh {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := store.Load(ctx, cfg.Slot)
		switch {
		case err == nil:
			w, err := world.NewFromSave(wcfg, s)
			if err != nil {
				return nil, fmt.Errorf("import save %s: %w", cfg.Slot, err)
			}
			logger.Info("resumed", zap.String("slot", cfg.Slot), zap.Uint64("tick", w.Tick()))
			return w, nil
		case errors.Is(err, save.ErrNotFound):
		default:
			return nil, fmt.Errorf("load save %s: %w", cfg.Slot, err)
		}
	}
	w, err := world.New(wcfg)
	if err != nil {
		return nil, err
	}
	logger.Info("new session", zap.String("slot", cfg.Slot), zap.Int64("seed", wcfg.Tuning.Seed))
	return w, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
