package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alejandrodnm/oilfield/internal/adapters/storage"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	runColumns = []string{
		"id", "started_at", "finished_at", "seed", "budget", "price_per_unit", "points_selected",
		"resample_size", "resamples", "loss_threshold", "confidence", "valid_split",
		"selected", "decision_ok", "reason",
	}
	resultColumns = []string{
		"run_id", "position", "region", "train_size", "valid_size", "duplicates", "rmse",
		"mean_product", "mean_predicted", "break_even_volume", "break_even_share",
		"profit", "mean_profit", "loss_probability", "ci_lower", "ci_upper", "samples", "error",
	}
)

func newMockPostgres(t *testing.T) (*storage.PostgresStorage, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return storage.NewPostgresStorageFromDB(sqlx.NewDb(mockDB, "postgres"), time.Second), mock
}

func TestPostgresStorage_SaveRun(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO runs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO region_results").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	err := s.SaveRun(context.Background(), makeRun("run-1", time.Now().UTC()))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_SaveRunDuplicate(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO runs").WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := s.SaveRun(context.Background(), makeRun("run-1", time.Now().UTC()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate run run-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_SaveRunWithoutResults(t *testing.T) {
	s, mock := newMockPostgres(t)

	run := makeRun("run-empty", time.Now().UTC())
	run.Results = nil

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO runs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.SaveRun(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_ListRuns(t *testing.T) {
	s, mock := newMockPostgres(t)
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM runs").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow("run-2", started.Add(time.Hour), started.Add(time.Hour+time.Second), int64(12345),
				10e9, 450000.0, 200, 500, 1000, 0.025, 0.95, 0.25, "", false,
				"no region has loss probability below 2.50%").
			AddRow("run-1", started, started.Add(time.Second), int64(12345),
				10e9, 450000.0, 200, 500, 1000, 0.025, 0.95, 0.25, "geo_1", true, ""))
	mock.ExpectQuery("FROM region_results").
		WillReturnRows(sqlmock.NewRows(resultColumns).
			AddRow("run-1", 0, "geo_0", 75000, 25000, 0, 37.58, 92.5, 92.59, 111.11, 0.36,
				33208260.43, 4259385.27, 0.06, -1020900.95, 9479763.53, 1000, "").
			AddRow("run-1", 1, "geo_1", 75000, 25000, 0, 0.89, 68.8, 68.72, 111.11, 0.16,
				24150866.97, 5152227.73, 0.01, 688732.25, 9315475.91, 1000, "").
			AddRow("run-2", 0, "geo_2", 0, 0, 0, 0.0, 0.0, 0.0, 0.0, 0.0,
				0.0, 0.0, 0.0, 0.0, 0.0, 0, "load geo_2: data source missing"))

	runs, err := s.ListRuns(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-2", runs[0].ID)
	assert.False(t, runs[0].Decision.Ok)
	require.Len(t, runs[0].Results, 1)
	assert.EqualError(t, runs[0].Results[0].Err, "load geo_2: data source missing")

	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, "geo_1", runs[1].Decision.Selected)
	assert.Equal(t, 200, runs[1].Params.PointsSelected)
	require.Len(t, runs[1].Results, 2)
	assert.Equal(t, "geo_0", runs[1].Results[0].Region)
	assert.InDelta(t, 0.01, runs[1].Results[1].Risk.LossProbability, 1e-12)
	assert.True(t, started.Equal(runs[1].StartedAt))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_ListRunsEmpty(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery("FROM runs").
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows(runColumns))

	runs, err := s.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
