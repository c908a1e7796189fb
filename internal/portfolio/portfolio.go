// Package portfolio is the system of record for a run: cash, positions and
// the per-tick equity history. It turns signals into orders, applies fills,
// and computes the run's performance statistics.
package portfolio

import (
	"errors"
	"time"

	"quant-backtest/internal/event"
)

var (
	// ErrNoHistory means statistics were requested before any tick was
	// recorded.
	ErrNoHistory = errors.New("no holdings history recorded")
	// ErrUnknownSymbol means a signal or fill referenced a symbol outside
	// the configured set.
	ErrUnknownSymbol = errors.New("symbol not in portfolio")
)

// Portfolio owns financial truth for a run. State mutates only through the
// three update methods.
type Portfolio interface {
	// UpdateTimeIndex revalues all held positions at the latest close and
	// appends a snapshot. It must run before any signal from the same
	// tick is acted on.
	UpdateTimeIndex(e event.MarketEvent) error
	// UpdateSignal sizes an order for a signal. A nil order means the
	// signal requires no trade (e.g. EXIT while flat).
	UpdateSignal(e event.SignalEvent) (*event.OrderEvent, error)
	// UpdateFill applies an executed trade to positions and cash.
	UpdateFill(e event.FillEvent) error
}

// Snapshot is one tick's record of positions and holdings.
type Snapshot struct {
	At         time.Time
	Positions  map[string]int64
	Values     map[string]float64
	Cash       float64
	Commission float64
	Total      float64
}

// CurvePoint is one row of the equity-curve table.
type CurvePoint struct {
	At      time.Time
	Values  map[string]float64
	Cash    float64
	Total   float64
	Returns float64
	Equity  float64
}

// Stats summarizes a completed run.
type Stats struct {
	TotalReturnPct   float64 `json:"total_return_pct"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	MaxDrawdownPct   float64 `json:"max_drawdown_pct"`
	DrawdownDuration int     `json:"drawdown_duration"`
	FinalValue       float64 `json:"final_value"`
}
