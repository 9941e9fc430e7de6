package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alejandrodnm/oilfield/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

// Console implementa ports.Reporter.
type Console struct {
	out    io.Writer
	table  bool
	detail bool
}

// NewConsole crea un reporter que escribe a stdout.
func NewConsole(table, detail bool) *Console {
	return &Console{out: os.Stdout, table: table, detail: detail}
}

// NewConsoleWriter crea un reporter para tests.
func NewConsoleWriter(w io.Writer, table, detail bool) *Console {
	return &Console{out: w, table: table, detail: detail}
}

// Report imprime las métricas por región y la decisión final.
func (c *Console) Report(_ context.Context, run domain.Run) error {
	if len(run.Results) == 0 {
		fmt.Fprintf(c.out, "[%s] no regions evaluated\n", run.StartedAt.Format("15:04:05"))
		return nil
	}

	fmt.Fprintf(c.out, "\n[%s] run %s — %d regions, %d failed\n",
		run.StartedAt.Format("2006-01-02 15:04:05"), shortID(run.ID), len(run.Results), run.Failed())

	if c.table {
		c.printTable(run)
	} else {
		c.printCompact(run)
	}

	if c.detail {
		c.printDetail(run)
	}

	c.printDecision(run)
	return nil
}

// printCompact imprime una línea por región.
func (c *Console) printCompact(run domain.Run) {
	for _, r := range run.Results {
		if !r.OK() {
			fmt.Fprintf(c.out, "  %-10s FAILED %v\n", r.Region, r.Err)
			continue
		}
		fmt.Fprintf(c.out, "  %-10s rmse %.2f  profit %s  mean %s  ci [%s, %s]  loss %.2f%%\n",
			r.Region, r.RMSE, money(r.Profit), money(r.Risk.MeanProfit),
			money(r.Risk.Lower), money(r.Risk.Upper), r.Risk.LossPercent())
	}
}

// printTable imprime la tabla con métricas por región.
func (c *Console) printTable(run domain.Run) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Region", "Train/Valid", "RMSE", "Mean product", "Mean pred",
		"Profit top-K", "Mean profit", "CI low", "CI high", "Loss %", "Status")

	threshold := run.Params.LossThreshold
	for i, r := range run.Results {
		if !r.OK() {
			table.Append(
				fmt.Sprintf("%d", i+1), r.Region, "-", "-", "-", "-", "-", "-", "-", "-", "-",
				"FAILED: "+truncate(r.Err.Error(), 40),
			)
			continue
		}
		status := "RISKY"
		if r.Acceptable(threshold) {
			status = "OK"
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			r.Region,
			fmt.Sprintf("%d/%d", r.TrainSize, r.ValidSize),
			fmt.Sprintf("%.4f", r.RMSE),
			fmt.Sprintf("%.2f", r.MeanProduct),
			fmt.Sprintf("%.2f", r.MeanPredicted),
			money(r.Profit),
			money(r.Risk.MeanProfit),
			money(r.Risk.Lower),
			money(r.Risk.Upper),
			fmt.Sprintf("%.2f", r.Risk.LossPercent()),
			status,
		)
	}

	table.Render()

	p := run.Params
	fmt.Fprintf(c.out, "  Budget %s | K=%d of %d sampled | %d resamples | CI %.0f%% | seed %d\n",
		money(p.Budget), p.PointsSelected, p.ResampleSize, p.Resamples, p.Confidence*100, p.Seed)
	fmt.Fprintf(c.out, "  Status: OK = loss < %.2f%% | RISKY = loss >= %.2f%%\n",
		threshold*100, threshold*100)
}

// printDetail imprime el análisis de punto de equilibrio por región.
func (c *Console) printDetail(run domain.Run) {
	fmt.Fprintln(c.out, "\n=== BREAK-EVEN ===")
	for _, r := range run.Results {
		if !r.OK() {
			continue
		}
		fmt.Fprintf(c.out, "  %s\n", r.Region)
		fmt.Fprintf(c.out, "    Volume per site to break even: %.2f\n", r.BreakEvenVolume)
		fmt.Fprintf(c.out, "    Mean product in region:        %.2f (%s)\n",
			r.MeanProduct, gapLabel(r.MeanProduct, r.BreakEvenVolume))
		fmt.Fprintf(c.out, "    Sites above break-even:        %.2f%%\n", r.BreakEvenShare*100)
		if r.Duplicates > 0 {
			fmt.Fprintf(c.out, "    Duplicate rows:                %d\n", r.Duplicates)
		}
	}
}

// printDecision imprime la región recomendada o el motivo de no recomendar.
func (c *Console) printDecision(run domain.Run) {
	d := run.Decision
	if !d.Ok {
		fmt.Fprintf(c.out, "\n  VEREDICTO: NINGUNA REGIÓN — %s\n\n", d.Reason)
		return
	}
	for _, r := range run.Results {
		if r.Region != d.Selected {
			continue
		}
		fmt.Fprintf(c.out, "\n  VEREDICTO: %s — mean profit %s, loss %.2f%%, CI [%s, %s]\n\n",
			d.Selected, money(r.Risk.MeanProfit), r.Risk.LossPercent(),
			money(r.Risk.Lower), money(r.Risk.Upper))
		return
	}
	fmt.Fprintf(c.out, "\n  VEREDICTO: %s\n\n", d.Selected)
}

// PrintHistory imprime las ejecuciones guardadas, la más reciente primero.
func (c *Console) PrintHistory(runs []domain.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "No runs recorded yet")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Run", "Started", "Seed", "Regions", "Failed", "Selected", "Mean profit", "Loss %")

	for _, run := range runs {
		selected, meanProfit, loss := "-", "-", "-"
		if run.Decision.Ok {
			selected = run.Decision.Selected
			for _, r := range run.Results {
				if r.Region == selected {
					meanProfit = money(r.Risk.MeanProfit)
					loss = fmt.Sprintf("%.2f", r.Risk.LossPercent())
				}
			}
		}
		table.Append(
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", run.Params.Seed),
			fmt.Sprintf("%d", len(run.Results)),
			fmt.Sprintf("%d", run.Failed()),
			selected,
			meanProfit,
			loss,
		)
	}
	table.Render()
}

// --- helpers ---

// money formatea con separador de miles: 4259385.27 → 4,259,385.27.
func money(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var sb strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(ch)
	}
	out := sb.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

func gapLabel(mean, breakEven float64) string {
	if mean >= breakEven {
		return "above break-even"
	}
	return fmt.Sprintf("%.2f below break-even", breakEven-mean)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
