package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func result(name string, mean, loss float64) RegionResult {
	return RegionResult{Region: name, Risk: RiskSummary{MeanProfit: mean, LossProbability: loss}}
}

func TestSelectRegion_PicksHighestAcceptable(t *testing.T) {
	d := SelectRegion([]RegionResult{
		result("geo_0", 425e6, 0.06),
		result("geo_1", 515e6, 0.01),
		result("geo_2", 600e6, 0.07),
	}, 0.025)

	assert.True(t, d.Ok)
	assert.Equal(t, "geo_1", d.Selected)
}

func TestSelectRegion_NoneQualifies(t *testing.T) {
	d := SelectRegion([]RegionResult{
		result("geo_0", 425e6, 0.06),
		result("geo_2", 600e6, 0.025), // el umbral es estricto
	}, 0.025)

	assert.False(t, d.Ok)
	assert.Empty(t, d.Selected)
	assert.Contains(t, d.Reason, "2.50%")
}

func TestSelectRegion_SkipsFailedRegions(t *testing.T) {
	failed := result("geo_0", 900e6, 0)
	failed.Err = errors.New("boom")

	d := SelectRegion([]RegionResult{failed, result("geo_1", 100, 0.01)}, 0.025)
	assert.Equal(t, "geo_1", d.Selected)
}

func TestSelectRegion_AllFailed(t *testing.T) {
	failed := result("geo_0", 0, 0)
	failed.Err = ErrSchemaMismatch

	d := SelectRegion([]RegionResult{failed}, 0.025)
	assert.False(t, d.Ok)
	assert.Contains(t, d.Reason, "no region was evaluated")
}

func TestSelectRegion_TieKeepsConfigOrder(t *testing.T) {
	d := SelectRegion([]RegionResult{result("a", 10, 0), result("b", 10, 0)}, 0.025)
	assert.Equal(t, "a", d.Selected)
}

func TestRun_Failed(t *testing.T) {
	bad := result("x", 0, 0)
	bad.Err = ErrDataSourceMissing
	run := Run{Results: []RegionResult{bad, result("y", 1, 0)}}
	assert.Equal(t, 1, run.Failed())
}

func TestParams_Validate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.ResampleSize = 100
	assert.Error(t, p.Validate())

	p = DefaultParams()
	p.LossThreshold = 0
	assert.Error(t, p.Validate())
}
