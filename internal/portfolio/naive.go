package portfolio

import (
	"errors"
	"fmt"

	"quant-backtest/internal/data"
	"quant-backtest/internal/event"
)

var errBadFill = errors.New("invalid fill")

const defaultOrderQuantity = 100

// Naive sizes every order at a fixed quantity with no cash check, so cash
// may go negative (implicit leverage). That is a documented limitation of
// this portfolio, not a bug.
type Naive struct {
	bars           data.Handler
	initialCapital float64
	orderQuantity  int64

	positions  map[string]int64
	cash       float64
	commission float64

	history []Snapshot
}

func NewNaive(bars data.Handler, initialCapital float64, orderQuantity int64) *Naive {
	if orderQuantity <= 0 {
		orderQuantity = defaultOrderQuantity
	}
	positions := make(map[string]int64, len(bars.Symbols()))
	for _, s := range bars.Symbols() {
		positions[s] = 0
	}
	return &Naive{
		bars:           bars,
		initialCapital: initialCapital,
		orderQuantity:  orderQuantity,
		positions:      positions,
		cash:           initialCapital,
	}
}

func (p *Naive) InitialCapital() float64 { return p.initialCapital }

// History returns the append-only per-tick snapshots.
func (p *Naive) History() []Snapshot { return p.history }

func (p *Naive) Position(symbol string) int64 { return p.positions[symbol] }

func (p *Naive) Cash() float64 { return p.cash }

// Total marks every position to the latest close and adds cash. A symbol
// with no observed bar yet contributes zero; it cannot hold a position,
// since no order can fill before the first bar.
func (p *Naive) Total() (float64, error) {
	total := p.cash
	for _, s := range p.bars.Symbols() {
		qty := p.positions[s]
		if qty == 0 {
			continue
		}
		px, err := p.bars.LatestBarValue(s, data.Close)
		if err != nil {
			return 0, fmt.Errorf("mark %s: %w", s, err)
		}
		total += float64(qty) * px
	}
	return total, nil
}

func (p *Naive) UpdateTimeIndex(e event.MarketEvent) error {
	snap := Snapshot{
		At:         e.At,
		Positions:  make(map[string]int64, len(p.positions)),
		Values:     make(map[string]float64, len(p.positions)),
		Cash:       p.cash,
		Commission: p.commission,
		Total:      p.cash,
	}
	for _, s := range p.bars.Symbols() {
		qty := p.positions[s]
		snap.Positions[s] = qty
		if qty == 0 {
			snap.Values[s] = 0
			continue
		}
		px, err := p.bars.LatestBarValue(s, data.Close)
		if err != nil {
			return fmt.Errorf("mark %s: %w", s, err)
		}
		value := float64(qty) * px
		snap.Values[s] = value
		snap.Total += value
	}
	p.history = append(p.history, snap)
	return nil
}

func (p *Naive) UpdateSignal(e event.SignalEvent) (*event.OrderEvent, error) {
	if _, ok := p.positions[e.Symbol]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, e.Symbol)
	}

	order := event.OrderEvent{
		Symbol: e.Symbol,
		At:     e.At,
		Order:  event.MarketOrder,
	}
	switch e.Signal {
	case event.Long:
		order.Direction = event.Buy
		order.Quantity = p.orderQuantity
	case event.Short:
		order.Direction = event.Sell
		order.Quantity = p.orderQuantity
	case event.Exit:
		// liquidate whatever is open; nothing to do when flat
		held := p.positions[e.Symbol]
		switch {
		case held > 0:
			order.Direction = event.Sell
			order.Quantity = held
		case held < 0:
			order.Direction = event.Buy
			order.Quantity = -held
		default:
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("unhandled signal kind %v", e.Signal)
	}
	return &order, nil
}

func (p *Naive) UpdateFill(e event.FillEvent) error {
	if _, ok := p.positions[e.Symbol]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, e.Symbol)
	}
	if err := validateFill(e); err != nil {
		return err
	}

	sign := e.Direction.Sign()
	p.positions[e.Symbol] += sign * e.Quantity
	p.cash -= float64(sign) * e.Price * float64(e.Quantity)
	p.cash -= e.Commission
	p.commission += e.Commission
	return nil
}

func validateFill(e event.FillEvent) error {
	if e.Quantity <= 0 {
		return fmt.Errorf("%w: quantity %d", errBadFill, e.Quantity)
	}
	if e.Price <= 0 {
		return fmt.Errorf("%w: price %v", errBadFill, e.Price)
	}
	return nil
}
