// Package execution converts orders into fills. The simulated handler fills
// every order immediately at the latest known close with no slippage or
// latency, which keeps replays deterministic.
package execution

import (
	"fmt"

	"quant-backtest/internal/data"
	"quant-backtest/internal/event"
)

const (
	defaultExchange       = "ARCA"
	defaultCommissionRate = 0.005
	defaultCommissionMin  = 1.0
)

// Handler executes one order and reports the resulting fill.
type Handler interface {
	ExecuteOrder(e event.OrderEvent) (event.FillEvent, error)
}

// Commission is an IB-style simplified schedule: a per-unit rate with a
// flat minimum per trade.
type Commission struct {
	Rate    float64
	Minimum float64
}

func (c Commission) Cost(quantity int64) float64 {
	cost := c.Rate * float64(quantity)
	if cost < c.Minimum {
		return c.Minimum
	}
	return cost
}

// Simulated fills orders against the data handler's latest close.
type Simulated struct {
	bars       data.Handler
	exchange   string
	commission Commission
}

func NewSimulated(bars data.Handler, exchange string, commission Commission) *Simulated {
	if exchange == "" {
		exchange = defaultExchange
	}
	if commission.Rate <= 0 {
		commission.Rate = defaultCommissionRate
	}
	if commission.Minimum <= 0 {
		commission.Minimum = defaultCommissionMin
	}
	return &Simulated{bars: bars, exchange: exchange, commission: commission}
}

func (s *Simulated) ExecuteOrder(e event.OrderEvent) (event.FillEvent, error) {
	price, err := s.bars.LatestBarValue(e.Symbol, data.Close)
	if err != nil {
		return event.FillEvent{}, fmt.Errorf("fill %s: %w", e.Symbol, err)
	}
	at, err := s.bars.LatestBarTime(e.Symbol)
	if err != nil {
		return event.FillEvent{}, fmt.Errorf("fill %s: %w", e.Symbol, err)
	}
	return event.FillEvent{
		At:         at,
		Symbol:     e.Symbol,
		Exchange:   s.exchange,
		Quantity:   e.Quantity,
		Direction:  e.Direction,
		Price:      price,
		Commission: s.commission.Cost(e.Quantity),
	}, nil
}
