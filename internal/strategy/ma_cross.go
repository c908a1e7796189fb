package strategy

import (
	"quant-backtest/internal/data"
	"quant-backtest/internal/event"
	"quant-backtest/internal/ta"
)

const (
	defaultShortWindow = 10
	defaultLongWindow  = 30
)

// MovingAverageCross goes long on a golden cross (short SMA above long SMA)
// and exits on the death cross. It stays silent until a symbol has a full
// long window of history.
type MovingAverageCross struct {
	bars        data.Handler
	shortWindow int
	longWindow  int
	state       map[string]State
}

func NewMovingAverageCross(bars data.Handler, shortWindow, longWindow int) *MovingAverageCross {
	if shortWindow <= 0 {
		shortWindow = defaultShortWindow
	}
	if longWindow <= 0 {
		longWindow = defaultLongWindow
	}
	return &MovingAverageCross{
		bars:        bars,
		shortWindow: shortWindow,
		longWindow:  longWindow,
		state:       initialState(bars.Symbols()),
	}
}

func (s *MovingAverageCross) Name() string { return "ma_cross" }

func (s *MovingAverageCross) CalculateSignals(e event.MarketEvent) ([]event.SignalEvent, error) {
	var signals []event.SignalEvent
	for _, sym := range s.bars.Symbols() {
		closes, ok, err := closeHistory(s.bars, sym, s.longWindow)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		shortSMA := ta.SMA(closes, s.shortWindow)
		longSMA := ta.SMA(closes, s.longWindow)
		at, err := s.bars.LatestBarTime(sym)
		if err != nil {
			return nil, err
		}

		switch {
		case shortSMA > longSMA && s.state[sym] == Out:
			signals = append(signals, event.SignalEvent{Symbol: sym, At: at, Signal: event.Long, Strength: 1.0})
			s.state[sym] = Long
		case shortSMA < longSMA && s.state[sym] == Long:
			signals = append(signals, event.SignalEvent{Symbol: sym, At: at, Signal: event.Exit, Strength: 1.0})
			s.state[sym] = Out
		}
	}
	return signals, nil
}
