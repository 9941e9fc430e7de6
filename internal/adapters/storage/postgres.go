package storage

// postgres.go: historial compartido en PostgreSQL.
//
// Mismo modelo que SQLite (runs + region_results), pensado para varios
// operadores escribiendo al mismo historial.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alejandrodnm/oilfield/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id              TEXT PRIMARY KEY,
    started_at      TIMESTAMPTZ      NOT NULL,
    finished_at     TIMESTAMPTZ      NOT NULL,
    seed            BIGINT           NOT NULL,
    budget          DOUBLE PRECISION NOT NULL,
    price_per_unit  DOUBLE PRECISION NOT NULL,
    points_selected INTEGER          NOT NULL,
    resample_size   INTEGER          NOT NULL,
    resamples       INTEGER          NOT NULL,
    loss_threshold  DOUBLE PRECISION NOT NULL,
    confidence      DOUBLE PRECISION NOT NULL,
    valid_split     DOUBLE PRECISION NOT NULL,
    selected        TEXT             NOT NULL DEFAULT '',
    decision_ok     BOOLEAN          NOT NULL DEFAULT FALSE,
    reason          TEXT             NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS region_results (
    run_id            TEXT             NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    position          INTEGER          NOT NULL,
    region            TEXT             NOT NULL,
    train_size        INTEGER          NOT NULL DEFAULT 0,
    valid_size        INTEGER          NOT NULL DEFAULT 0,
    duplicates        INTEGER          NOT NULL DEFAULT 0,
    rmse              DOUBLE PRECISION NOT NULL DEFAULT 0,
    mean_product      DOUBLE PRECISION NOT NULL DEFAULT 0,
    mean_predicted    DOUBLE PRECISION NOT NULL DEFAULT 0,
    break_even_volume DOUBLE PRECISION NOT NULL DEFAULT 0,
    break_even_share  DOUBLE PRECISION NOT NULL DEFAULT 0,
    profit            DOUBLE PRECISION NOT NULL DEFAULT 0,
    mean_profit       DOUBLE PRECISION NOT NULL DEFAULT 0,
    loss_probability  DOUBLE PRECISION NOT NULL DEFAULT 0,
    ci_lower          DOUBLE PRECISION NOT NULL DEFAULT 0,
    ci_upper          DOUBLE PRECISION NOT NULL DEFAULT 0,
    samples           INTEGER          NOT NULL DEFAULT 0,
    error             TEXT             NOT NULL DEFAULT '',
    PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
`

const (
	insertRunQuery = `
		INSERT INTO runs
			(id, started_at, finished_at, seed, budget, price_per_unit, points_selected,
			 resample_size, resamples, loss_threshold, confidence, valid_split,
			 selected, decision_ok, reason)
		VALUES
			(:id, :started_at, :finished_at, :seed, :budget, :price_per_unit, :points_selected,
			 :resample_size, :resamples, :loss_threshold, :confidence, :valid_split,
			 :selected, :decision_ok, :reason)`

	insertResultsQuery = `
		INSERT INTO region_results
			(run_id, position, region, train_size, valid_size, duplicates, rmse,
			 mean_product, mean_predicted, break_even_volume, break_even_share,
			 profit, mean_profit, loss_probability, ci_lower, ci_upper, samples, error)
		VALUES
			(:run_id, :position, :region, :train_size, :valid_size, :duplicates, :rmse,
			 :mean_product, :mean_predicted, :break_even_volume, :break_even_share,
			 :profit, :mean_profit, :loss_probability, :ci_lower, :ci_upper, :samples, :error)`

	pgUniqueViolation = "23505"
)

// DefaultQueryTimeout acota cada operación contra Postgres.
const DefaultQueryTimeout = 10 * time.Second

// PostgresStorage implementa ports.Storage sobre PostgreSQL.
type PostgresStorage struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPostgresStorage conecta con el DSN dado y aplica el schema.
func NewPostgresStorage(dsn string, timeout time.Duration) (*PostgresStorage, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.NewPostgresStorage: connect: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewPostgresStorage: apply schema: %w", err)
	}
	return NewPostgresStorageFromDB(db, timeout), nil
}

// NewPostgresStorageFromDB envuelve una conexión existente sin tocar el schema.
func NewPostgresStorageFromDB(db *sqlx.DB, timeout time.Duration) *PostgresStorage {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &PostgresStorage{db: db, timeout: timeout}
}

// SaveRun persiste la ejecución y sus resultados en una sola transacción.
func (s *PostgresStorage) SaveRun(ctx context.Context, run domain.Run) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertRunQuery, toRunRow(run)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return fmt.Errorf("storage.SaveRun: duplicate run %s: %w", run.ID, err)
		}
		return fmt.Errorf("storage.SaveRun: insert run %s: %w", run.ID, err)
	}

	// Insert en lote: sqlx expande VALUES para cada fila.
	if rows := toResultRows(run); len(rows) > 0 {
		if _, err := tx.NamedExecContext(ctx, insertResultsQuery, rows); err != nil {
			return fmt.Errorf("storage.SaveRun: insert results %s: %w", run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// ListRuns devuelve las últimas ejecuciones, la más reciente primero.
func (s *PostgresStorage) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var runRows []runRow
	if err := s.db.SelectContext(ctx, &runRows, `
		SELECT id, started_at, finished_at, seed, budget, price_per_unit, points_selected,
		       resample_size, resamples, loss_threshold, confidence, valid_split,
		       selected, decision_ok, reason
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1`, normalizeLimit(limit)); err != nil {
		return nil, fmt.Errorf("storage.ListRuns: query runs: %w", err)
	}
	if len(runRows) == 0 {
		return nil, nil
	}

	ids := make([]string, len(runRows))
	for i, r := range runRows {
		ids[i] = r.ID
	}

	var resultRows []resultRow
	if err := s.db.SelectContext(ctx, &resultRows, `
		SELECT run_id, position, region, train_size, valid_size, duplicates, rmse,
		       mean_product, mean_predicted, break_even_volume, break_even_share,
		       profit, mean_profit, loss_probability, ci_lower, ci_upper, samples, error
		FROM region_results
		WHERE run_id = ANY($1)
		ORDER BY run_id, position`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("storage.ListRuns: query results: %w", err)
	}

	byRun := make(map[string][]domain.RegionResult, len(runRows))
	for _, r := range resultRows {
		byRun[r.RunID] = append(byRun[r.RunID], r.toDomain())
	}

	runs := make([]domain.Run, len(runRows))
	for i, r := range runRows {
		runs[i] = r.toDomain()
		runs[i].Results = byRun[r.ID]
	}
	return runs, nil
}

// Close cierra el pool de conexiones.
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
