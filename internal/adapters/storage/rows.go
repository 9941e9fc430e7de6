package storage

import (
	"errors"
	"time"

	"github.com/alejandrodnm/oilfield/internal/domain"
)

const defaultListLimit = 20

// runRow es la fila de la tabla runs.
type runRow struct {
	ID             string    `db:"id"`
	StartedAt      time.Time `db:"started_at"`
	FinishedAt     time.Time `db:"finished_at"`
	Seed           int64     `db:"seed"`
	Budget         float64   `db:"budget"`
	PricePerUnit   float64   `db:"price_per_unit"`
	PointsSelected int       `db:"points_selected"`
	ResampleSize   int       `db:"resample_size"`
	Resamples      int       `db:"resamples"`
	LossThreshold  float64   `db:"loss_threshold"`
	Confidence     float64   `db:"confidence"`
	ValidSplit     float64   `db:"valid_split"`
	Selected       string    `db:"selected"`
	DecisionOK     bool      `db:"decision_ok"`
	Reason         string    `db:"reason"`
}

// resultRow es la fila de la tabla region_results.
type resultRow struct {
	RunID           string  `db:"run_id"`
	Position        int     `db:"position"`
	Region          string  `db:"region"`
	TrainSize       int     `db:"train_size"`
	ValidSize       int     `db:"valid_size"`
	Duplicates      int     `db:"duplicates"`
	RMSE            float64 `db:"rmse"`
	MeanProduct     float64 `db:"mean_product"`
	MeanPredicted   float64 `db:"mean_predicted"`
	BreakEvenVolume float64 `db:"break_even_volume"`
	BreakEvenShare  float64 `db:"break_even_share"`
	Profit          float64 `db:"profit"`
	MeanProfit      float64 `db:"mean_profit"`
	LossProbability float64 `db:"loss_probability"`
	Lower           float64 `db:"ci_lower"`
	Upper           float64 `db:"ci_upper"`
	Samples         int     `db:"samples"`
	Error           string  `db:"error"`
}

func toRunRow(run domain.Run) runRow {
	p := run.Params
	return runRow{
		ID:             run.ID,
		StartedAt:      run.StartedAt.UTC(),
		FinishedAt:     run.FinishedAt.UTC(),
		Seed:           p.Seed,
		Budget:         p.Budget,
		PricePerUnit:   p.PricePerUnit,
		PointsSelected: p.PointsSelected,
		ResampleSize:   p.ResampleSize,
		Resamples:      p.Resamples,
		LossThreshold:  p.LossThreshold,
		Confidence:     p.Confidence,
		ValidSplit:     p.ValidSplit,
		Selected:       run.Decision.Selected,
		DecisionOK:     run.Decision.Ok,
		Reason:         run.Decision.Reason,
	}
}

func (r runRow) toDomain() domain.Run {
	return domain.Run{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Params: domain.Params{
			Budget:         r.Budget,
			PricePerUnit:   r.PricePerUnit,
			PointsSelected: r.PointsSelected,
			ResampleSize:   r.ResampleSize,
			Resamples:      r.Resamples,
			LossThreshold:  r.LossThreshold,
			Confidence:     r.Confidence,
			ValidSplit:     r.ValidSplit,
			Seed:           r.Seed,
		},
		Decision: domain.Decision{Selected: r.Selected, Ok: r.DecisionOK, Reason: r.Reason},
	}
}

func toResultRows(run domain.Run) []resultRow {
	rows := make([]resultRow, len(run.Results))
	for i, res := range run.Results {
		var errMsg string
		if res.Err != nil {
			errMsg = res.Err.Error()
		}
		rows[i] = resultRow{
			RunID:           run.ID,
			Position:        i,
			Region:          res.Region,
			TrainSize:       res.TrainSize,
			ValidSize:       res.ValidSize,
			Duplicates:      res.Duplicates,
			RMSE:            res.RMSE,
			MeanProduct:     res.MeanProduct,
			MeanPredicted:   res.MeanPredicted,
			BreakEvenVolume: res.BreakEvenVolume,
			BreakEvenShare:  res.BreakEvenShare,
			Profit:          res.Profit,
			MeanProfit:      res.Risk.MeanProfit,
			LossProbability: res.Risk.LossProbability,
			Lower:           res.Risk.Lower,
			Upper:           res.Risk.Upper,
			Samples:         res.Risk.Samples,
			Error:           errMsg,
		}
	}
	return rows
}

func (r resultRow) toDomain() domain.RegionResult {
	res := domain.RegionResult{
		Region:          r.Region,
		TrainSize:       r.TrainSize,
		ValidSize:       r.ValidSize,
		Duplicates:      r.Duplicates,
		RMSE:            r.RMSE,
		MeanProduct:     r.MeanProduct,
		MeanPredicted:   r.MeanPredicted,
		BreakEvenVolume: r.BreakEvenVolume,
		BreakEvenShare:  r.BreakEvenShare,
		Profit:          r.Profit,
		Risk: domain.RiskSummary{
			MeanProfit:      r.MeanProfit,
			LossProbability: r.LossProbability,
			Lower:           r.Lower,
			Upper:           r.Upper,
			Samples:         r.Samples,
		},
	}
	// Solo se persiste el mensaje; errors.Is contra los sentinels no aplica.
	if r.Error != "" {
		res.Err = errors.New(r.Error)
	}
	return res
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
