// Package strategy turns market events into trading signals. Each strategy
// owns a per-symbol state machine (OUT/LONG/SHORT) so it never re-emits a
// signal for a position it already holds.
package strategy

import (
	"errors"

	"quant-backtest/internal/data"
	"quant-backtest/internal/event"
)

type State int

const (
	Out State = iota
	Long
	Short
)

func (s State) String() string {
	switch s {
	case Out:
		return "OUT"
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	}
	return "UNKNOWN"
}

// Strategy computes zero or more signals for one market tick. Insufficient
// lookback history is a normal startup transient: no signals, no error.
type Strategy interface {
	Name() string
	CalculateSignals(e event.MarketEvent) ([]event.SignalEvent, error)
}

func initialState(symbols []string) map[string]State {
	m := make(map[string]State, len(symbols))
	for _, s := range symbols {
		m[s] = Out
	}
	return m
}

// closeHistory fetches up to n closes for a symbol. A symbol that has not
// listed yet is skipped, not an error.
func closeHistory(bars data.Handler, symbol string, n int) ([]float64, bool, error) {
	recent, err := bars.LatestBars(symbol, n)
	if err != nil {
		if errors.Is(err, data.ErrMissingData) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(recent) < n {
		return nil, false, nil
	}
	closes := make([]float64, len(recent))
	for i, b := range recent {
		closes[i] = b.Close
	}
	return closes, true, nil
}
