package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/oilfield/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRun() domain.Run {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return domain.Run{
		ID:         "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(4 * time.Second),
		Results: []domain.RegionResult{
			{
				Region: "geo_0", RMSE: 37.58, Profit: 33208260.43,
				Risk: domain.RiskSummary{MeanProfit: 4259385.27, LossProbability: 0.06, Lower: -1020900.95, Upper: 9479763.53},
			},
			{
				Region: "geo_1", RMSE: 0.89, Profit: 24150866.97,
				Risk: domain.RiskSummary{MeanProfit: 5152227.73, LossProbability: 0.01, Lower: 688732.25, Upper: 9315475.91},
			},
			{Region: "geo_2", Err: errors.New("schema mismatch")},
		},
		Decision: domain.Decision{Selected: "geo_1", Ok: true},
	}
}

func TestExporter_Export(t *testing.T) {
	e := NewExporter("")
	require.NoError(t, e.Export(makeRun()))

	assert.InDelta(t, 0.06, testutil.ToFloat64(e.lossProbability.WithLabelValues("geo_0")), 1e-12)
	assert.InDelta(t, 5152227.73, testutil.ToFloat64(e.meanProfit.WithLabelValues("geo_1")), 1e-6)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.selected.WithLabelValues("geo_1")))
	assert.Equal(t, 0.0, testutil.ToFloat64(e.selected.WithLabelValues("geo_0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.regionFailed.WithLabelValues("geo_2")))
	assert.Equal(t, 4.0, testutil.ToFloat64(e.runDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.runsTotal.WithLabelValues("selected")))

	// geo_2 falló: solo tiene region_failed.
	assert.Equal(t, 2, testutil.CollectAndCount(e.rmse))
}

func TestExporter_ResetsBetweenRuns(t *testing.T) {
	e := NewExporter("")
	require.NoError(t, e.Export(makeRun()))

	second := makeRun()
	second.Results = second.Results[:1]
	second.Decision = domain.Decision{Reason: "no region has loss probability below 2.50%"}
	require.NoError(t, e.Export(second))

	assert.Equal(t, 1, testutil.CollectAndCount(e.meanProfit))
	assert.Equal(t, 0.0, testutil.ToFloat64(e.selected.WithLabelValues("geo_0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.runsTotal.WithLabelValues("no_decision")))
}

func TestExporter_WritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oilfield.prom")
	e := NewExporter(path)
	require.NoError(t, e.Export(makeRun()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `oilfield_region_loss_probability{region="geo_0"} 0.06`)
	assert.Contains(t, out, `oilfield_region_selected{region="geo_1"} 1`)
	assert.Contains(t, out, "oilfield_last_run_timestamp_seconds")
}

func TestOutcome(t *testing.T) {
	run := makeRun()
	assert.Equal(t, "selected", outcome(run))

	run.Decision = domain.Decision{}
	assert.Equal(t, "no_decision", outcome(run))

	run.Results = []domain.RegionResult{{Region: "x", Err: errors.New("boom")}}
	assert.Equal(t, "failed", outcome(run))
}
