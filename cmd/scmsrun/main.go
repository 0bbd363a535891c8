// Command scmsrun executes one simulation run to its horizon and prints a
// summary. History is persisted to SQLite for later inspection unless
// disabled with -db "".
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/zainabsawakni-art/SCMS-Simulator/internal/config"
	"github.com/zainabsawakni-art/SCMS-Simulator/internal/engine"
	"github.com/zainabsawakni-art/SCMS-Simulator/internal/persistence"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration")
	seed := flag.Int64("seed", 0, "fix the random seed (0 = draw one and report it)")
	periods := flag.Int("periods", 0, "override the horizon (0 = use configuration)")
	dbPath := flag.String("db", "", "SQLite history path (empty = configuration value, \"-\" = disabled)")
	every := flag.Int("report-every", 10, "log a period report every N periods")
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
	if *seed != 0 {
		cfg.Simulation.FixSeed = true
		cfg.Simulation.Seed = *seed
	}
	if *periods > 0 {
		cfg.Simulation.Periods = *periods
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var db *persistence.DB
	path := cfg.Database.SQLitePath
	if *dbPath != "" {
		path = *dbPath
	}
	if path != "-" {
		os.MkdirAll(filepath.Dir(path), 0755)
		db, err = persistence.Open(path)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	world, err := engine.NewWorld(cfg.Simulation)
	if err != nil {
		slog.Error("failed to initialize world", "error", err)
		os.Exit(1)
	}

	runID := uuid.NewString()
	if db != nil {
		if err := db.CreateRun(runID, world.Seed, world.Params); err != nil {
			slog.Error("failed to register run", "error", err)
			os.Exit(1)
		}
	}
	slog.Info("run starting", "run_id", runID, "seed", world.Seed, "customers", len(world.Customers))

	for !world.Terminated() {
		world.Step()

		snap := world.Snapshot()
		if db != nil {
			if err := db.SavePeriod(runID, snap); err != nil {
				slog.Error("period save failed", "error", err, "month", snap.Month)
			}
			if err := db.SaveDiagnostics(runID, world.DrainDiagnostics()); err != nil {
				slog.Error("diagnostics save failed", "error", err, "month", snap.Month)
			}
		}

		if *every > 0 && snap.Month%*every == 0 {
			slog.Info("period report",
				"month", snap.Month,
				"active", snap.Customers.Active,
				"expelled", snap.Customers.Expelled,
				"insolvent", snap.Customers.Insolvent,
				"deficit", fmt.Sprintf("%.2f", snap.Totals.Deficit),
				"compensation", fmt.Sprintf("%.2f", snap.Totals.Compensation),
				"fund_net", fmt.Sprintf("%.2f", snap.Fund.NetAssets),
				"bank_cash", fmt.Sprintf("%.2f", snap.Bank.Cash),
			)
		}
	}

	final := world.Snapshot()
	fmt.Println()
	fmt.Printf("Run %s finished after %d periods (seed %d)\n", runID, final.Month, final.Seed)
	fmt.Printf("  customers:        %d active / %d total, %d expelled\n",
		final.Customers.Active, final.Customers.Total, final.Customers.Expelled)
	fmt.Printf("  ratings:          A %d / B %d / C %d\n",
		final.Customers.ARated, final.Customers.BRated, final.Customers.CRated)
	fmt.Printf("  paid installments: %s\n", money(final.Totals.CumPaidInstallment))
	fmt.Printf("  unresolved deficit: %s (all-time %s)\n",
		money(final.Metrics.NonPerformingDebt), money(final.Totals.CumDeficit))
	fmt.Printf("  fund:             gross %s, net %s, paid out %s\n",
		money(final.Fund.GrossAssets), money(final.Fund.NetAssets), money(final.Fund.CumCompensation))
	fmt.Printf("  bank:             cash %s, receivables %s, assets %s\n",
		money(final.Bank.Cash), money(final.Bank.Receivables), money(final.Bank.Assets))
	fmt.Printf("  zero-risk period: %d\n", final.Metrics.ZeroRiskPeriod)
}

func money(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}
