// Package backtest drives the event loop: it owns the FIFO queue, pulls one
// market tick at a time from the data handler, and dispatches events to the
// strategy, portfolio and execution handlers in a fixed priority order.
// Ordering is part of the contract: reordering market, signal, order and
// fill handling changes simulated outcomes, so a run is strictly
// single-threaded with no suspension points inside a tick.
package backtest

import (
	"context"
	"fmt"

	"quant-backtest/internal/data"
	"quant-backtest/internal/event"
	"quant-backtest/internal/logger"
	"quant-backtest/internal/portfolio"
	"quant-backtest/internal/strategy"
)

// RunState tracks where the engine is in its lifecycle.
type RunState int

const (
	Running RunState = iota
	DrainingQueue
	Finished
)

func (s RunState) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case DrainingQueue:
		return "DRAINING_QUEUE"
	case Finished:
		return "FINISHED"
	}
	return "UNKNOWN"
}

// Book is the portfolio surface the engine needs: the three update methods
// plus end-of-run reporting.
type Book interface {
	portfolio.Portfolio
	EquityCurve() ([]portfolio.CurvePoint, error)
	SummaryStats() (portfolio.Stats, error)
}

// Executor converts orders into fills.
type Executor interface {
	ExecuteOrder(e event.OrderEvent) (event.FillEvent, error)
}

// Results is what a finished run hands back to the caller.
type Results struct {
	Stats       portfolio.Stats
	EquityCurve []portfolio.CurvePoint
	Ticks       int
	Events      int
}

// Engine owns the queue and all handlers for exactly one run. Independent
// runs construct independent engines and share nothing.
type Engine struct {
	bars  data.Handler
	strat strategy.Strategy
	book  Book
	exec  Executor

	queue  event.Queue
	state  RunState
	ticks  int
	events int
}

func New(bars data.Handler, strat strategy.Strategy, book Book, exec Executor) *Engine {
	return &Engine{bars: bars, strat: strat, book: book, exec: exec}
}

func (e *Engine) State() RunState { return e.state }

// Run replays the data to exhaustion and returns the summary statistics and
// equity curve. Any dispatch error aborts the run immediately: skipping an
// event would silently corrupt the portfolio accounting, and a backtest is
// cheap to rerun from scratch.
func (e *Engine) Run(ctx context.Context) (*Results, error) {
	op := logger.StartOperation(ctx, "backtest.run", "strategy", e.strat.Name(), "symbols", len(e.bars.Symbols()))
	ctx = op.GetContext()

	for e.bars.Continue() {
		// cancellation is only observed between ticks
		select {
		case <-ctx.Done():
			op.EndWithError(ctx.Err())
			return nil, ctx.Err()
		default:
		}

		mkt, ok := e.bars.Update()
		if !ok {
			break
		}
		e.ticks++
		e.queue.Push(mkt)

		e.state = DrainingQueue
		if err := e.drain(ctx); err != nil {
			op.EndWithError(err, "ticks", e.ticks)
			return nil, err
		}
		e.state = Running
	}
	e.state = Finished

	stats, err := e.book.SummaryStats()
	if err != nil {
		op.EndWithError(err, "ticks", e.ticks)
		return nil, fmt.Errorf("summary stats: %w", err)
	}
	curve, err := e.book.EquityCurve()
	if err != nil {
		op.EndWithError(err, "ticks", e.ticks)
		return nil, fmt.Errorf("equity curve: %w", err)
	}

	logger.RunSummary(ctx, e.strat.Name(), e.ticks, stats.TotalReturnPct, stats.SharpeRatio, stats.MaxDrawdownPct,
		"final_value", stats.FinalValue,
		"drawdown_duration", stats.DrawdownDuration,
	)
	op.End("ticks", e.ticks, "events", e.events)
	return &Results{Stats: stats, EquityCurve: curve, Ticks: e.ticks, Events: e.events}, nil
}

func (e *Engine) drain(ctx context.Context) error {
	for {
		ev, ok := e.queue.Pop()
		if !ok {
			return nil
		}
		e.events++
		if err := e.dispatch(ctx, ev); err != nil {
			return err
		}
	}
}

func (e *Engine) dispatch(ctx context.Context, ev event.Event) error {
	switch ev := ev.(type) {
	case event.MarketEvent:
		signals, err := e.strat.CalculateSignals(ev)
		if err != nil {
			return fmt.Errorf("strategy %s: %w", e.strat.Name(), err)
		}
		for _, s := range signals {
			logger.Signal(ctx, s.Symbol, s.Signal.String(), s.Strength, s.At.Format("2006-01-02"), "strategy", e.strat.Name())
			e.queue.Push(s)
		}
		// snapshot reflects prior-tick holdings before this tick's
		// signals are sized into orders
		if err := e.book.UpdateTimeIndex(ev); err != nil {
			return fmt.Errorf("update timeindex: %w", err)
		}
	case event.SignalEvent:
		order, err := e.book.UpdateSignal(ev)
		if err != nil {
			return fmt.Errorf("update signal %s: %w", ev.Symbol, err)
		}
		if order != nil {
			e.queue.Push(*order)
		}
	case event.OrderEvent:
		fill, err := e.exec.ExecuteOrder(ev)
		if err != nil {
			return fmt.Errorf("execute order %s: %w", ev.Symbol, err)
		}
		logger.Fill(ctx, fill.Symbol, fill.Direction.String(), fill.Quantity, fill.Price, fill.Commission)
		e.queue.Push(fill)
	case event.FillEvent:
		if err := e.book.UpdateFill(ev); err != nil {
			return fmt.Errorf("update fill %s: %w", ev.Symbol, err)
		}
	default:
		return fmt.Errorf("unhandled event kind %v", ev.Kind())
	}
	return nil
}
