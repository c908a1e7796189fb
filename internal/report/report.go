// Package report writes end-of-run artifacts for downstream consumers: the
// equity curve as CSV and the summary statistics as JSON. The engine does
// not depend on it; callers opt in after a run.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"quant-backtest/internal/backtest"
)

func outDir(dir string) string {
	if v := os.Getenv("BACKTEST_REPORT_DIR"); v != "" {
		return v
	}
	if dir == "" {
		return "out"
	}
	return dir
}

// Write emits equity_curve.csv and summary.json under dir and returns their
// paths. Symbols fixes the column order of the per-symbol value columns.
func Write(dir string, symbols []string, res *backtest.Results) (curvePath, statsPath string, err error) {
	dir = outDir(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}

	curvePath = filepath.Join(dir, "equity_curve.csv")
	if err := writeCurveCSV(curvePath, symbols, res); err != nil {
		return "", "", err
	}

	statsPath = filepath.Join(dir, "summary.json")
	if err := writeStatsJSON(statsPath, res); err != nil {
		return "", "", err
	}
	return curvePath, statsPath, nil
}

func writeCurveCSV(path string, symbols []string, res *backtest.Results) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"Date"}, symbols...)
	header = append(header, "Cash", "Total", "Returns", "EquityCurve")
	if err := w.Write(header); err != nil {
		return err
	}
	for _, pt := range res.EquityCurve {
		row := make([]string, 0, len(header))
		row = append(row, pt.At.Format("2006-01-02"))
		for _, s := range symbols {
			row = append(row, formatFloat(pt.Values[s]))
		}
		row = append(row,
			formatFloat(pt.Cash),
			formatFloat(pt.Total),
			formatFloat(pt.Returns),
			formatFloat(pt.Equity),
		)
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeStatsJSON(path string, res *backtest.Results) error {
	b, err := json.MarshalIndent(res.Stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
