// Package data supplies synchronized OHLCV bars for a set of symbols. All
// symbols advance in lockstep on a combined time index; a handler emits one
// market event per tick regardless of symbol count.
package data

import (
	"errors"
	"time"

	"quant-backtest/internal/event"
)

var (
	// ErrMissingData means a bar value was requested for a symbol before
	// its first real observation (e.g. a leading gap before listing).
	ErrMissingData = errors.New("no bar observed yet for symbol")
	// ErrUnknownSymbol means the symbol is not part of this handler's set.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrNoBars means a symbol's source series is empty.
	ErrNoBars = errors.New("no bars for symbol")
)

// Field selects one OHLCV column of a bar.
type Field int

const (
	Open Field = iota
	High
	Low
	Close
	AdjClose
	Volume
)

func (f Field) String() string {
	switch f {
	case Open:
		return "Open"
	case High:
		return "High"
	case Low:
		return "Low"
	case Close:
		return "Close"
	case AdjClose:
		return "Adj Close"
	case Volume:
		return "Volume"
	}
	return "Unknown"
}

// Bar is one OHLCV observation for one symbol at one timestamp.
type Bar struct {
	At       time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

func (b Bar) Value(f Field) float64 {
	switch f {
	case Open:
		return b.Open
	case High:
		return b.High
	case Low:
		return b.Low
	case Close:
		return b.Close
	case AdjClose:
		return b.AdjClose
	case Volume:
		return b.Volume
	}
	return 0
}

// Handler replays aligned bars and reports when the series is exhausted.
type Handler interface {
	Symbols() []string
	LatestBar(symbol string) (Bar, error)
	// LatestBars returns up to n of the most recent observed bars.
	LatestBars(symbol string, n int) ([]Bar, error)
	LatestBarValue(symbol string, f Field) (float64, error)
	LatestBarTime(symbol string) (time.Time, error)
	// Update advances every symbol by one step on the combined index and
	// returns the market event for the tick. ok is false once the index
	// is consumed; that state is terminal.
	Update() (event.MarketEvent, bool)
	Continue() bool
}
