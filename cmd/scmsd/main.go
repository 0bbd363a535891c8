// Command scmsd runs the credit insurance simulation as a daemon: the
// period loop advances in wall-clock time, history lands in SQLite, and
// the dashboard API serves live state.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/zainabsawakni-art/SCMS-Simulator/internal/api"
	"github.com/zainabsawakni-art/SCMS-Simulator/internal/config"
	"github.com/zainabsawakni-art/SCMS-Simulator/internal/engine"
	"github.com/zainabsawakni-art/SCMS-Simulator/internal/persistence"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0755)
	db, err := persistence.Open(cfg.Database.SQLitePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Database.SQLitePath)

	// ── World ─────────────────────────────────────────────────────────
	world, err := engine.NewWorld(cfg.Simulation)
	if err != nil {
		slog.Error("failed to initialize world", "error", err)
		os.Exit(1)
	}

	runID := uuid.NewString()
	if err := db.CreateRun(runID, world.Seed, world.Params); err != nil {
		slog.Error("failed to register run", "error", err)
		os.Exit(1)
	}

	// ── Runner + API ──────────────────────────────────────────────────
	runner := engine.NewRunner(world)

	apiServer := &api.Server{
		Runner:   runner,
		DB:       db,
		Port:     cfg.Server.Port,
		AdminKey: cfg.Server.AdminKey,
	}
	apiServer.SetRunID(runID)

	runner.OnPeriod = func(w *engine.World) {
		id := apiServer.RunID()
		if err := db.SavePeriod(id, w.Snapshot()); err != nil {
			slog.Error("period save failed", "error", err, "month", w.Month)
		}
		if err := db.SaveDiagnostics(id, w.DrainDiagnostics()); err != nil {
			slog.Error("diagnostics save failed", "error", err, "month", w.Month)
		}
	}

	if cfg.Server.AdminKey == "" {
		slog.Warn("no admin key set, control endpoints will be disabled")
	}
	apiServer.Start()

	// ── Maintenance schedule ──────────────────────────────────────────
	maint := cron.New()
	_, err = maint.AddFunc(cfg.Maintenance.Cron, func() {
		if err := db.Checkpoint(); err != nil {
			slog.Error("wal checkpoint failed", "error", err)
		}
		pruned, err := db.PruneDiagnostics(apiServer.RunID(), cfg.Maintenance.DiagnosticsKeep)
		if err != nil {
			slog.Error("diagnostics prune failed", "error", err)
			return
		}
		slog.Info("maintenance complete", "diagnostics_pruned", pruned)
	})
	if err != nil {
		slog.Error("invalid maintenance cron expression", "error", err, "cron", cfg.Maintenance.Cron)
		os.Exit(1)
	}
	maint.Start()
	defer maint.Stop()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		runner.Stop()
	}()

	fmt.Printf("SCMS daemon up: %d customers on a %dx%d grid, run %s (seed %d)\n",
		len(world.Customers), world.Grid.Side, world.Grid.Side, runID, world.Seed)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Server.Port)

	runner.SetSpeed(1)
	runner.Run()

	slog.Info("daemon stopped", "run_id", apiServer.RunID())
}
