package results

import (
	"context"
	"database/sql"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLStore persists run records in MySQL.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore opens a MySQL-backed store and ensures the schema exists.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("mysql DSN must not be empty")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening mysql: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging mysql: %w", err)
	}

	store := &MySQLStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *MySQLStore) initSchema() error {
	const schema = `CREATE TABLE IF NOT EXISTS run_records (
        id VARCHAR(64) PRIMARY KEY,
        scenario VARCHAR(255) NOT NULL DEFAULT '',
        seed BIGINT NOT NULL,
        horizon_ticks BIGINT NOT NULL,
        started_at BIGINT NOT NULL,
        elapsed_ms BIGINT NOT NULL DEFAULT 0,
        total_cost DOUBLE NOT NULL DEFAULT 0,
        fill_rate DOUBLE NOT NULL DEFAULT 0,
        bullwhip_ratio DOUBLE NOT NULL DEFAULT 0,
        summary_json MEDIUMTEXT,
        INDEX idx_run_scenario (scenario),
        INDEX idx_run_started (started_at)
)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating run_records table: %w", err)
	}
	return nil
}

// Save inserts a new run record. Headline numbers land in their own
// columns so history can be queried without unpacking the summary JSON.
func (s *MySQLStore) Save(ctx context.Context, rec *RunRecord) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("run record needs an ID")
	}

	summaryJSON, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	var totalCost, fillRate, bullwhip float64
	if rec.Summary != nil {
		totalCost = rec.Summary.TotalCost
		fillRate = rec.Summary.FillRate
		bullwhip = rec.Summary.BullwhipRatio
	}

	const stmt = `INSERT INTO run_records
        (id, scenario, seed, horizon_ticks, started_at, elapsed_ms, total_cost, fill_rate, bullwhip_ratio, summary_json)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, stmt,
		rec.ID,
		rec.Scenario,
		rec.Seed,
		rec.HorizonTicks,
		rec.StartedAt,
		rec.ElapsedMS,
		totalCost,
		fillRate,
		bullwhip,
		string(summaryJSON),
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if stdErrors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrConflict
		}
		return fmt.Errorf("inserting run record: %w", err)
	}
	return nil
}

// Get returns the record with the given ID.
func (s *MySQLStore) Get(ctx context.Context, id string) (*RunRecord, error) {
	const stmt = `SELECT id, scenario, seed, horizon_ticks, started_at, elapsed_ms, summary_json
        FROM run_records WHERE id = ?`

	row := s.db.QueryRowContext(ctx, stmt, id)

	rec, err := scanRunRecord(row.Scan)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying run record: %w", err)
	}
	return rec, nil
}

// List returns up to limit records, newest first.
func (s *MySQLStore) List(ctx context.Context, limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	const stmt = `SELECT id, scenario, seed, horizon_ticks, started_at, elapsed_ms, summary_json
        FROM run_records ORDER BY started_at DESC, id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, stmt, limit)
	if err != nil {
		return nil, fmt.Errorf("querying run records: %w", err)
	}
	defer rows.Close()

	recs := make([]*RunRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRunRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning run record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run records: %w", err)
	}
	return recs, nil
}

// Close closes the underlying database handle.
func (s *MySQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func scanRunRecord(scan func(dest ...any) error) (*RunRecord, error) {
	var rec RunRecord
	var summaryJSON sql.NullString
	if err := scan(
		&rec.ID,
		&rec.Scenario,
		&rec.Seed,
		&rec.HorizonTicks,
		&rec.StartedAt,
		&rec.ElapsedMS,
		&summaryJSON,
	); err != nil {
		return nil, err
	}
	if summaryJSON.Valid && strings.TrimSpace(summaryJSON.String) != "" {
		if err := json.Unmarshal([]byte(summaryJSON.String), &rec.Summary); err != nil {
			return nil, fmt.Errorf("decoding summary: %w", err)
		}
	}
	return &rec, nil
}

var _ Store = (*MySQLStore)(nil)
