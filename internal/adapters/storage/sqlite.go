package storage

// sqlite.go: historial de evaluaciones en SQLite.
//
// Estrategia:
//   - `runs`: una fila por ejecución con los parámetros usados y la decisión.
//   - `region_results`: una fila por región y ejecución, en orden de configuración.
//   - Prune automático al arrancar: ejecuciones de más de 180 días.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/oilfield/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id              TEXT PRIMARY KEY,
    started_at      TEXT    NOT NULL,
    finished_at     TEXT    NOT NULL,
    seed            INTEGER NOT NULL,
    budget          REAL    NOT NULL,
    price_per_unit  REAL    NOT NULL,
    points_selected INTEGER NOT NULL,
    resample_size   INTEGER NOT NULL,
    resamples       INTEGER NOT NULL,
    loss_threshold  REAL    NOT NULL,
    confidence      REAL    NOT NULL,
    valid_split     REAL    NOT NULL,
    selected        TEXT    NOT NULL DEFAULT '',
    decision_ok     INTEGER NOT NULL DEFAULT 0,
    reason          TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS region_results (
    run_id            TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    position          INTEGER NOT NULL,
    region            TEXT    NOT NULL,
    train_size        INTEGER NOT NULL DEFAULT 0,
    valid_size        INTEGER NOT NULL DEFAULT 0,
    duplicates        INTEGER NOT NULL DEFAULT 0,
    rmse              REAL    NOT NULL DEFAULT 0,
    mean_product      REAL    NOT NULL DEFAULT 0,
    mean_predicted    REAL    NOT NULL DEFAULT 0,
    break_even_volume REAL    NOT NULL DEFAULT 0,
    break_even_share  REAL    NOT NULL DEFAULT 0,
    profit            REAL    NOT NULL DEFAULT 0,
    mean_profit       REAL    NOT NULL DEFAULT 0,
    loss_probability  REAL    NOT NULL DEFAULT 0,
    ci_lower          REAL    NOT NULL DEFAULT 0,
    ci_upper          REAL    NOT NULL DEFAULT 0,
    samples           INTEGER NOT NULL DEFAULT 0,
    error             TEXT    NOT NULL DEFAULT '',
    PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
`

const retentionRuns = 180 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia ejecuciones antiguas.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRun persiste la ejecución y sus resultados en una sola transacción.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run domain.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	r := toRunRow(run)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs
			(id, started_at, finished_at, seed, budget, price_per_unit, points_selected,
			 resample_size, resamples, loss_threshold, confidence, valid_split,
			 selected, decision_ok, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, formatTime(r.StartedAt), formatTime(r.FinishedAt), r.Seed, r.Budget, r.PricePerUnit,
		r.PointsSelected, r.ResampleSize, r.Resamples, r.LossThreshold, r.Confidence, r.ValidSplit,
		r.Selected, boolToInt(r.DecisionOK), r.Reason,
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO region_results
			(run_id, position, region, train_size, valid_size, duplicates, rmse,
			 mean_product, mean_predicted, break_even_volume, break_even_share,
			 profit, mean_profit, loss_probability, ci_lower, ci_upper, samples, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare: %w", err)
	}
	defer stmt.Close()

	for _, row := range toResultRows(run) {
		if _, err := stmt.ExecContext(ctx,
			row.RunID, row.Position, row.Region, row.TrainSize, row.ValidSize, row.Duplicates,
			row.RMSE, row.MeanProduct, row.MeanPredicted, row.BreakEvenVolume, row.BreakEvenShare,
			row.Profit, row.MeanProfit, row.LossProbability, row.Lower, row.Upper, row.Samples,
			row.Error,
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert region %s: %w", row.Region, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// ListRuns devuelve las últimas ejecuciones con sus resultados, la más
// reciente primero.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	runs, err := s.queryRuns(ctx, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}

	// Con una sola conexión, los resultados se leen después de cerrar el
	// cursor de runs.
	for i := range runs {
		results, err := s.queryResults(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Results = results
	}
	return runs, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func (s *SQLiteStorage) queryRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, seed, budget, price_per_unit, points_selected,
		       resample_size, resamples, loss_threshold, confidence, valid_split,
		       selected, decision_ok, reason
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.ListRuns: query runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var r runRow
		var started, finished string
		var ok int
		if err := rows.Scan(
			&r.ID, &started, &finished, &r.Seed, &r.Budget, &r.PricePerUnit, &r.PointsSelected,
			&r.ResampleSize, &r.Resamples, &r.LossThreshold, &r.Confidence, &r.ValidSplit,
			&r.Selected, &ok, &r.Reason,
		); err != nil {
			return nil, fmt.Errorf("storage.ListRuns: scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		r.DecisionOK = ok == 1
		runs = append(runs, r.toDomain())
	}
	return runs, rows.Err()
}

func (s *SQLiteStorage) queryResults(ctx context.Context, runID string) ([]domain.RegionResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, position, region, train_size, valid_size, duplicates, rmse,
		       mean_product, mean_predicted, break_even_volume, break_even_share,
		       profit, mean_profit, loss_probability, ci_lower, ci_upper, samples, error
		FROM region_results
		WHERE run_id = ?
		ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.ListRuns: query results %s: %w", runID, err)
	}
	defer rows.Close()

	var results []domain.RegionResult
	for rows.Next() {
		var r resultRow
		if err := rows.Scan(
			&r.RunID, &r.Position, &r.Region, &r.TrainSize, &r.ValidSize, &r.Duplicates, &r.RMSE,
			&r.MeanProduct, &r.MeanPredicted, &r.BreakEvenVolume, &r.BreakEvenShare,
			&r.Profit, &r.MeanProfit, &r.LossProbability, &r.Lower, &r.Upper, &r.Samples, &r.Error,
		); err != nil {
			return nil, fmt.Errorf("storage.ListRuns: scan result: %w", err)
		}
		results = append(results, r.toDomain())
	}
	return results, rows.Err()
}

// pruneOld elimina ejecuciones antiguas para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := formatTime(time.Now().UTC().Add(-retentionRuns))
	s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
}

// formatTime usa un formato que ordena lexicográficamente igual que en el tiempo.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
