package portfolio

import "math"

// tradingPeriodsPerYear annualizes the Sharpe ratio for daily bars.
const tradingPeriodsPerYear = 252

// EquityCurve merges the snapshot history into the equity-curve table:
// per-period returns are the percentage change of total value, the equity
// column is the cumulative product of (1 + returns) starting at 1.
func (p *Naive) EquityCurve() ([]CurvePoint, error) {
	if len(p.history) == 0 {
		return nil, ErrNoHistory
	}
	curve := make([]CurvePoint, len(p.history))
	equity := 1.0
	for i, snap := range p.history {
		pt := CurvePoint{
			At:     snap.At,
			Values: make(map[string]float64, len(snap.Values)),
			Cash:   snap.Cash,
			Total:  snap.Total,
		}
		for s, v := range snap.Values {
			pt.Values[s] = v
		}
		if i > 0 && p.history[i-1].Total != 0 {
			pt.Returns = snap.Total/p.history[i-1].Total - 1
		}
		equity *= 1 + pt.Returns
		pt.Equity = equity
		curve[i] = pt
	}
	return curve, nil
}

// SummaryStats computes the run's headline numbers from the equity curve.
func (p *Naive) SummaryStats() (Stats, error) {
	curve, err := p.EquityCurve()
	if err != nil {
		return Stats{}, err
	}

	last := curve[len(curve)-1]
	totals := make([]float64, len(curve))
	returns := make([]float64, 0, len(curve)-1)
	for i, pt := range curve {
		totals[i] = pt.Total
		if i > 0 {
			returns = append(returns, pt.Returns)
		}
	}

	maxDD, duration := drawdowns(totals)
	return Stats{
		TotalReturnPct:   (last.Equity - 1) * 100,
		SharpeRatio:      sharpe(returns, tradingPeriodsPerYear),
		MaxDrawdownPct:   maxDD * 100,
		DrawdownDuration: duration,
		FinalValue:       last.Total,
	}, nil
}

// sharpe is the annualized ratio against a zero benchmark:
// sqrt(periods) * mean / std. Flat returns report 0 rather than dividing
// by zero.
func sharpe(returns []float64, periods float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(returns)))
	if std == 0 {
		return 0
	}
	return math.Sqrt(periods) * mean / std
}

// drawdowns walks the total-value series with a running high-water mark and
// returns the deepest peak-to-trough decline as a fraction, plus the longest
// contiguous span of periods spent below a prior high.
func drawdowns(totals []float64) (maxDD float64, maxDuration int) {
	if len(totals) == 0 {
		return 0, 0
	}
	hwm := totals[0]
	duration := 0
	for _, v := range totals[1:] {
		if v > hwm {
			hwm = v
		}
		dd := 0.0
		if hwm != 0 {
			dd = (hwm - v) / hwm
		}
		if dd > maxDD {
			maxDD = dd
		}
		if dd == 0 {
			duration = 0
		} else {
			duration++
			if duration > maxDuration {
				maxDuration = duration
			}
		}
	}
	return maxDD, maxDuration
}
