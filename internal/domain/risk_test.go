package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Percentile ---

func TestPercentile_LinearInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	// h = 3 × 0.5 = 1.5 → 2 + 0.5 × (3-2)
	assert.InDelta(t, 2.5, Percentile(sorted, 0.5), 1e-12)
	// h = 3 × 0.025 = 0.075 → 1 + 0.075
	assert.InDelta(t, 1.075, Percentile(sorted, 0.025), 1e-12)
	// h = 3 × 0.975 = 2.925 → 3 + 0.925
	assert.InDelta(t, 3.925, Percentile(sorted, 0.975), 1e-12)
}

func TestPercentile_Bounds(t *testing.T) {
	sorted := []float64{-3, 0, 8}
	assert.Equal(t, -3.0, Percentile(sorted, 0))
	assert.Equal(t, 8.0, Percentile(sorted, 1))
	assert.Equal(t, 5.0, Percentile([]float64{5}, 0.3))
	assert.True(t, math.IsNaN(Percentile(nil, 0.5)))
}

// --- SummarizeRisk ---

func TestSummarizeRisk_Basic(t *testing.T) {
	profits := []float64{-10, 20, 30, 40, -50, 60, 70, 80, 90, 100}
	r, err := SummarizeRisk(profits, 0.95)
	require.NoError(t, err)

	assert.Equal(t, 43.0, r.MeanProfit)
	assert.InDelta(t, 0.2, r.LossProbability, 1e-12)
	assert.InDelta(t, 20.0, r.LossPercent(), 1e-9)
	assert.Equal(t, 10, r.Samples)
	// sorted: -50 -10 20 30 40 60 70 80 90 100
	// lower: h = 9 × 0.025 = 0.225 → -50 + 0.225 × 40 = -41
	// upper: h = 9 × 0.975 = 8.775 → 90 + 0.775 × 10 = 97.75
	assert.Equal(t, -41.0, r.Lower)
	assert.Equal(t, 97.75, r.Upper)
}

func TestSummarizeRisk_DoesNotReorderInput(t *testing.T) {
	profits := []float64{3, 1, 2}
	_, err := SummarizeRisk(profits, 0.95)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, profits)
}

func TestSummarizeRisk_UnimodalOrdering(t *testing.T) {
	profits := make([]float64, 0, 101)
	for i := -50; i <= 50; i++ {
		profits = append(profits, 1000+float64(i)*10-math.Abs(float64(i))*2)
	}
	r, err := SummarizeRisk(profits, 0.95)
	require.NoError(t, err)

	assert.LessOrEqual(t, r.Lower, r.MeanProfit)
	assert.LessOrEqual(t, r.MeanProfit, r.Upper)
	assert.GreaterOrEqual(t, r.LossProbability, 0.0)
	assert.LessOrEqual(t, r.LossProbability, 1.0)
}

func TestSummarizeRisk_Empty(t *testing.T) {
	_, err := SummarizeRisk(nil, 0.95)
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}

func TestSummarizeRisk_InvalidConfidence(t *testing.T) {
	_, err := SummarizeRisk([]float64{1}, 1.5)
	assert.Error(t, err)
}

// --- RMSE ---

func TestRMSE(t *testing.T) {
	rmse, err := RMSE([]float64{1, 2, 3, 4}, []float64{2, 2, 1, 4})
	require.NoError(t, err)
	// sqrt((1 + 0 + 4 + 0) / 4)
	assert.InDelta(t, math.Sqrt(1.25), rmse, 1e-12)
}

func TestRMSE_Errors(t *testing.T) {
	_, err := RMSE([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrMisaligned)
	_, err = RMSE(nil, nil)
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}

func TestMean(t *testing.T) {
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
	assert.Equal(t, 0.0, Mean(nil))
}
