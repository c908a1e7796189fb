package strategy

import (
	"quant-backtest/internal/data"
	"quant-backtest/internal/event"
	"quant-backtest/internal/ta"
)

const (
	defaultRSIPeriod    = 14
	defaultRSIBuyBelow  = 30
	defaultRSISellAbove = 70
)

// RSI is a mean-reversion strategy: long when the window RSI drops below the
// buy threshold, exit when it rises above the sell threshold. It uses the
// simple-average RSI of ta.RSIWindow, including its all-gains-reports-0
// convention.
type RSI struct {
	bars      data.Handler
	period    int
	buyBelow  float64
	sellAbove float64
	state     map[string]State
}

func NewRSI(bars data.Handler, period int, buyBelow, sellAbove float64) *RSI {
	if period <= 0 {
		period = defaultRSIPeriod
	}
	if buyBelow <= 0 {
		buyBelow = defaultRSIBuyBelow
	}
	if sellAbove <= 0 {
		sellAbove = defaultRSISellAbove
	}
	return &RSI{
		bars:      bars,
		period:    period,
		buyBelow:  buyBelow,
		sellAbove: sellAbove,
		state:     initialState(bars.Symbols()),
	}
}

func (s *RSI) Name() string { return "rsi" }

func (s *RSI) CalculateSignals(e event.MarketEvent) ([]event.SignalEvent, error) {
	var signals []event.SignalEvent
	for _, sym := range s.bars.Symbols() {
		closes, ok, err := closeHistory(s.bars, sym, s.period+1)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rsi := ta.RSIWindow(closes, s.period)
		at, err := s.bars.LatestBarTime(sym)
		if err != nil {
			return nil, err
		}

		switch {
		case rsi < s.buyBelow && s.state[sym] == Out:
			signals = append(signals, event.SignalEvent{Symbol: sym, At: at, Signal: event.Long, Strength: 1.0})
			s.state[sym] = Long
		case rsi > s.sellAbove && s.state[sym] == Long:
			signals = append(signals, event.SignalEvent{Symbol: sym, At: at, Signal: event.Exit, Strength: 1.0})
			s.state[sym] = Out
		}
	}
	return signals, nil
}
