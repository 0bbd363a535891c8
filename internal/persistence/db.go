// Package persistence stores run history in SQLite: one row per run, one
// row per simulated period, and the diagnostics stream. Hosts use it for
// the history API and post-run analysis; the core engine never touches it.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/zainabsawakni-art/SCMS-Simulator/internal/engine"
)

// DB wraps a SQLite connection for run history storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		params_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS periods (
		run_id TEXT NOT NULL,
		month INTEGER NOT NULL,
		active INTEGER NOT NULL,
		expelled INTEGER NOT NULL,
		a_rated INTEGER NOT NULL,
		b_rated INTEGER NOT NULL,
		c_rated INTEGER NOT NULL,
		insolvent INTEGER NOT NULL,
		contribution REAL NOT NULL,
		deficit REAL NOT NULL,
		compensation REAL NOT NULL,
		paid_installment REAL NOT NULL,
		new_debt REAL NOT NULL,
		bank_cash REAL NOT NULL,
		bank_receivables REAL NOT NULL,
		bank_assets REAL NOT NULL,
		fund_gross REAL NOT NULL,
		fund_net REAL NOT NULL,
		performing_debt REAL NOT NULL,
		non_performing_debt REAL NOT NULL,
		zero_risk_period INTEGER NOT NULL,
		PRIMARY KEY (run_id, month)
	);

	CREATE TABLE IF NOT EXISTS diagnostics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		month INTEGER NOT NULL,
		category TEXT NOT NULL,
		message TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_periods_run ON periods(run_id);
	CREATE INDEX IF NOT EXISTS idx_diagnostics_run ON diagnostics(run_id, month);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// CreateRun registers a new run with its seed and full parameter set.
func (db *DB) CreateRun(runID string, seed int64, params engine.Params) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	_, err = db.conn.Exec(
		"INSERT INTO runs (id, seed, created_at, params_json) VALUES (?, ?, ?, ?)",
		runID, seed, time.Now().UTC().Format(time.RFC3339), string(paramsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// SavePeriod writes one period's aggregate snapshot.
func (db *DB) SavePeriod(runID string, s engine.Snapshot) error {
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO periods
		(run_id, month, active, expelled, a_rated, b_rated, c_rated, insolvent,
		 contribution, deficit, compensation, paid_installment, new_debt,
		 bank_cash, bank_receivables, bank_assets, fund_gross, fund_net,
		 performing_debt, non_performing_debt, zero_risk_period)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, s.Month, s.Customers.Active, s.Customers.Expelled,
		s.Customers.ARated, s.Customers.BRated, s.Customers.CRated, s.Customers.Insolvent,
		s.Totals.Contribution, s.Totals.Deficit, s.Totals.Compensation,
		s.Totals.PaidInstallment, s.Totals.NewDebt,
		s.Bank.Cash, s.Bank.Receivables, s.Bank.Assets,
		s.Fund.GrossAssets, s.Fund.NetAssets,
		s.Metrics.PerformingDebt, s.Metrics.NonPerformingDebt, s.Metrics.ZeroRiskPeriod,
	)
	if err != nil {
		return fmt.Errorf("insert period %d: %w", s.Month, err)
	}
	return nil
}

// SaveDiagnostics appends a batch of diagnostics for a run.
func (db *DB) SaveDiagnostics(runID string, diags []engine.Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range diags {
		_, err := tx.Exec(
			"INSERT INTO diagnostics (run_id, month, category, message) VALUES (?, ?, ?, ?)",
			runID, d.Month, d.Category, d.Message,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// PeriodRow is one persisted period, shaped for the history API.
type PeriodRow struct {
	Month             int     `db:"month" json:"month"`
	Active            int     `db:"active" json:"active"`
	Expelled          int     `db:"expelled" json:"expelled"`
	ARated            int     `db:"a_rated" json:"a_rated"`
	BRated            int     `db:"b_rated" json:"b_rated"`
	CRated            int     `db:"c_rated" json:"c_rated"`
	Insolvent         int     `db:"insolvent" json:"insolvent"`
	Contribution      float64 `db:"contribution" json:"contribution"`
	Deficit           float64 `db:"deficit" json:"deficit"`
	Compensation      float64 `db:"compensation" json:"compensation"`
	PaidInstallment   float64 `db:"paid_installment" json:"paid_installment"`
	NewDebt           float64 `db:"new_debt" json:"new_debt"`
	BankCash          float64 `db:"bank_cash" json:"bank_cash"`
	BankReceivables   float64 `db:"bank_receivables" json:"bank_receivables"`
	BankAssets        float64 `db:"bank_assets" json:"bank_assets"`
	FundGross         float64 `db:"fund_gross" json:"fund_gross"`
	FundNet           float64 `db:"fund_net" json:"fund_net"`
	PerformingDebt    float64 `db:"performing_debt" json:"performing_debt"`
	NonPerformingDebt float64 `db:"non_performing_debt" json:"non_performing_debt"`
	ZeroRiskPeriod    int     `db:"zero_risk_period" json:"zero_risk_period"`
}

// LoadPeriods returns a run's period history in month order.
func (db *DB) LoadPeriods(runID string, fromMonth, toMonth, limit int) ([]PeriodRow, error) {
	var rows []PeriodRow
	err := db.conn.Select(&rows, `SELECT
		month, active, expelled, a_rated, b_rated, c_rated, insolvent,
		contribution, deficit, compensation, paid_installment, new_debt,
		bank_cash, bank_receivables, bank_assets, fund_gross, fund_net,
		performing_debt, non_performing_debt, zero_risk_period
		FROM periods
		WHERE run_id = ? AND month >= ? AND month <= ?
		ORDER BY month LIMIT ?`,
		runID, fromMonth, toMonth, limit,
	)
	return rows, err
}

// DiagnosticRow is one persisted diagnostic.
type DiagnosticRow struct {
	Month    int    `db:"month" json:"month"`
	Category string `db:"category" json:"category"`
	Message  string `db:"message" json:"message"`
}

// LoadDiagnostics returns the most recent diagnostics for a run.
func (db *DB) LoadDiagnostics(runID string, limit int) ([]DiagnosticRow, error) {
	var rows []DiagnosticRow
	err := db.conn.Select(&rows,
		"SELECT month, category, message FROM diagnostics WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		runID, limit,
	)
	return rows, err
}

// PruneDiagnostics keeps only the newest keep rows per run, bounding table
// growth on long daemon runs.
func (db *DB) PruneDiagnostics(runID string, keep int) (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM diagnostics
		WHERE run_id = ? AND id NOT IN (
			SELECT id FROM diagnostics WHERE run_id = ? ORDER BY id DESC LIMIT ?
		)`, runID, runID, keep)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Checkpoint forces a WAL checkpoint, used by the maintenance schedule.
func (db *DB) Checkpoint() error {
	_, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}
