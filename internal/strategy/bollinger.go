package strategy

import (
	"quant-backtest/internal/data"
	"quant-backtest/internal/event"
	"quant-backtest/internal/ta"
)

const (
	defaultBBWindow = 20
	defaultBBStdDev = 2.0
)

// Bollinger is a band mean-reversion strategy: long when the close drops
// below the lower band, exit once it recovers above the middle band.
type Bollinger struct {
	bars   data.Handler
	window int
	k      float64
	state  map[string]State
}

func NewBollinger(bars data.Handler, window int, k float64) *Bollinger {
	if window <= 0 {
		window = defaultBBWindow
	}
	if k <= 0 {
		k = defaultBBStdDev
	}
	return &Bollinger{
		bars:   bars,
		window: window,
		k:      k,
		state:  initialState(bars.Symbols()),
	}
}

func (s *Bollinger) Name() string { return "bollinger" }

func (s *Bollinger) CalculateSignals(e event.MarketEvent) ([]event.SignalEvent, error) {
	var signals []event.SignalEvent
	for _, sym := range s.bars.Symbols() {
		closes, ok, err := closeHistory(s.bars, sym, s.window)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		mid, _, low := ta.Bollinger(closes, s.window, s.k)
		price := closes[len(closes)-1]
		at, err := s.bars.LatestBarTime(sym)
		if err != nil {
			return nil, err
		}

		switch {
		case price < low && s.state[sym] == Out:
			signals = append(signals, event.SignalEvent{Symbol: sym, At: at, Signal: event.Long, Strength: 1.0})
			s.state[sym] = Long
		case price > mid && s.state[sym] == Long:
			signals = append(signals, event.SignalEvent{Symbol: sym, At: at, Signal: event.Exit, Strength: 1.0})
			s.state[sym] = Out
		}
	}
	return signals, nil
}
