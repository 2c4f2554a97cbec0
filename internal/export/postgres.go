package export

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark"
)

const samplesTable = "lmdb_write_samples"

// Postgres stores samples in a PostgreSQL table shared by many runs.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects and verifies the connection.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{db: db}, nil
}

// EnsureSchema creates the samples table if it does not exist.
func (p *Postgres) EnsureSchema() error {
	_, err := p.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			run_id TEXT NOT NULL,
			label TEXT NOT NULL,
			kind TEXT NOT NULL,
			batch BIGINT NOT NULL,
			elapsed_s DOUBLE PRECISION NOT NULL,
			records BIGINT NOT NULL,
			mib BIGINT NOT NULL,
			mib_s DOUBLE PRECISION NOT NULL,
			uss_bytes BIGINT,
			record_size INTEGER NOT NULL,
			batch_size INTEGER NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)
	`, samplesTable))
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// WriteRun inserts every sample of the run in one transaction.
func (p *Postgres) WriteRun(run Run, result *benchmark.RunResult) error {
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO %s (id, run_id, label, kind, batch, elapsed_s, records, mib, mib_s,
			uss_bytes, record_size, batch_size, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, samplesTable))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range rows(result) {
		var uss sql.NullInt64
		if s.USS >= 0 {
			uss = sql.NullInt64{Int64: s.USS, Valid: true}
		}
		_, err := stmt.Exec(
			uuid.New(), run.ID.String(), run.Label, string(s.Kind), int64(s.Batch),
			s.Elapsed, int64(s.Records), int64(s.MiB), s.MiBPerSec,
			uss, run.Config.RecordSize, run.Config.BatchSize, run.Started,
		)
		if err != nil {
			return fmt.Errorf("insert %s sample at batch %d: %w", s.Kind, s.Batch, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CountRun returns how many samples are stored for a run.
func (p *Postgres) CountRun(run Run) (int, error) {
	var n int
	err := p.db.QueryRow(
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE run_id = $1", samplesTable),
		run.ID.String(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return n, nil
}

// Close closes the database connection
func (p *Postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}
