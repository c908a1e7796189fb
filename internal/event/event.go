// Package event defines the vocabulary of the backtest loop: market ticks,
// strategy signals, orders and fills, plus the FIFO queue they flow through.
package event

import "time"

type Kind int

const (
	Market Kind = iota
	Signal
	Order
	Fill
)

func (k Kind) String() string {
	switch k {
	case Market:
		return "MARKET"
	case Signal:
		return "SIGNAL"
	case Order:
		return "ORDER"
	case Fill:
		return "FILL"
	}
	return "UNKNOWN"
}

// SignalKind is a strategy's expressed intent, not yet sized or executed.
type SignalKind int

const (
	Long SignalKind = iota
	Exit
	Short
)

func (s SignalKind) String() string {
	switch s {
	case Long:
		return "LONG"
	case Exit:
		return "EXIT"
	case Short:
		return "SHORT"
	}
	return "UNKNOWN"
}

type Direction int

const (
	Buy Direction = iota
	Sell
)

func (d Direction) String() string {
	if d == Buy {
		return "BUY"
	}
	return "SELL"
}

// Sign is +1 for BUY and -1 for SELL, used for position arithmetic.
func (d Direction) Sign() int64 {
	if d == Buy {
		return 1
	}
	return -1
}

type OrderKind int

const (
	MarketOrder OrderKind = iota
	LimitOrder
)

func (o OrderKind) String() string {
	if o == MarketOrder {
		return "MKT"
	}
	return "LMT"
}

// Event is the common surface of the four variants. Events are created,
// routed through the queue exactly once, and discarded; they are never
// mutated after dispatch.
type Event interface {
	Kind() Kind
	When() time.Time
}

// MarketEvent marks that every symbol has advanced to At on the combined
// time index. One is emitted per tick, not one per symbol.
type MarketEvent struct {
	At time.Time
}

func (MarketEvent) Kind() Kind        { return Market }
func (e MarketEvent) When() time.Time { return e.At }

// SignalEvent is produced by a strategy and consumed once by the portfolio.
type SignalEvent struct {
	Symbol   string
	At       time.Time
	Signal   SignalKind
	Strength float64
}

func (SignalEvent) Kind() Kind        { return Signal }
func (e SignalEvent) When() time.Time { return e.At }

// OrderEvent is produced by the portfolio and consumed once by the
// execution handler.
type OrderEvent struct {
	Symbol    string
	At        time.Time
	Order     OrderKind
	Quantity  int64
	Direction Direction
}

func (OrderEvent) Kind() Kind        { return Order }
func (e OrderEvent) When() time.Time { return e.At }

// FillEvent is a simulated executed trade. Price is the per-unit fill price.
type FillEvent struct {
	At         time.Time
	Symbol     string
	Exchange   string
	Quantity   int64
	Direction  Direction
	Price      float64
	Commission float64
}

func (FillEvent) Kind() Kind        { return Fill }
func (e FillEvent) When() time.Time { return e.At }
