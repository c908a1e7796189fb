package portfolio

import (
	"math"
	"testing"
	"time"

	"quant-backtest/internal/data"
	"quant-backtest/internal/event"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func newHandler(t *testing.T, closes map[string][]float64) *data.Historic {
	t.Helper()
	bars := make(map[string][]data.Bar, len(closes))
	for sym, cs := range closes {
		series := make([]data.Bar, len(cs))
		for i, c := range cs {
			series[i] = data.Bar{At: day(i), Close: c}
		}
		bars[sym] = series
	}
	h, err := data.NewHistoric(bars)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestUpdateFillAccounting(t *testing.T) {
	h := newHandler(t, map[string][]float64{"AAA": {10, 11}})
	p := NewNaive(h, 100000, 100)
	h.Update()

	err := p.UpdateFill(event.FillEvent{
		At: day(0), Symbol: "AAA", Exchange: "ARCA",
		Quantity: 100, Direction: event.Buy, Price: 10, Commission: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	if p.Position("AAA") != 100 {
		t.Errorf("Expected position 100, got %d", p.Position("AAA"))
	}
	// cash: 100000 - 100*10 - 1
	if !approx(p.Cash(), 98999) {
		t.Errorf("Expected cash 98999, got %f", p.Cash())
	}
	total, err := p.Total()
	if err != nil {
		t.Fatal(err)
	}
	if !approx(total, 99999) {
		t.Errorf("Expected total 99999 after commission, got %f", total)
	}

	// sell half back at the same price
	err = p.UpdateFill(event.FillEvent{
		At: day(0), Symbol: "AAA",
		Quantity: 50, Direction: event.Sell, Price: 10, Commission: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.Position("AAA") != 50 {
		t.Errorf("Expected position 50, got %d", p.Position("AAA"))
	}
	if !approx(p.Cash(), 99498) {
		t.Errorf("Expected cash 99498, got %f", p.Cash())
	}
}

func TestUpdateFillRejectsBadFill(t *testing.T) {
	h := newHandler(t, map[string][]float64{"AAA": {10}})
	p := NewNaive(h, 100000, 100)
	h.Update()

	if err := p.UpdateFill(event.FillEvent{Symbol: "AAA", Quantity: 0, Price: 10}); err == nil {
		t.Error("Expected error for zero quantity")
	}
	if err := p.UpdateFill(event.FillEvent{Symbol: "AAA", Quantity: 10, Price: 0}); err == nil {
		t.Error("Expected error for zero price")
	}
	if err := p.UpdateFill(event.FillEvent{Symbol: "ZZZ", Quantity: 10, Price: 10}); err == nil {
		t.Error("Expected error for unknown symbol")
	}
}

func TestAccountingIdentityEveryTick(t *testing.T) {
	h := newHandler(t, map[string][]float64{
		"AAA": {10, 11, 12, 11, 13},
		"BBB": {20, 19, 21, 22, 20},
	})
	p := NewNaive(h, 100000, 100)

	tick := 0
	for h.Continue() {
		mkt, ok := h.Update()
		if !ok {
			break
		}
		tick++
		// trade on the second tick
		if tick == 2 {
			price, _ := h.LatestBarValue("AAA", data.Close)
			if err := p.UpdateFill(event.FillEvent{
				At: mkt.At, Symbol: "AAA", Quantity: 100,
				Direction: event.Buy, Price: price, Commission: 1,
			}); err != nil {
				t.Fatal(err)
			}
		}
		if err := p.UpdateTimeIndex(mkt); err != nil {
			t.Fatal(err)
		}

		snap := p.History()[len(p.History())-1]
		want := snap.Cash
		for _, s := range h.Symbols() {
			px, _ := h.LatestBarValue(s, data.Close)
			want += float64(snap.Positions[s]) * px
		}
		if !approx(snap.Total, want) {
			t.Errorf("Tick %d: total %f != cash + marked positions %f", tick, snap.Total, want)
		}
	}
	if tick != 5 {
		t.Fatalf("Expected 5 ticks, got %d", tick)
	}
}

func TestUntouchedSymbolStaysZero(t *testing.T) {
	h := newHandler(t, map[string][]float64{
		"AAA": {10, 11, 12},
		"BBB": {20, 21, 22},
	})
	p := NewNaive(h, 100000, 100)

	for h.Continue() {
		mkt, ok := h.Update()
		if !ok {
			break
		}
		price, _ := h.LatestBarValue("AAA", data.Close)
		_ = p.UpdateFill(event.FillEvent{At: mkt.At, Symbol: "AAA", Quantity: 10, Direction: event.Buy, Price: price, Commission: 1})
		if err := p.UpdateTimeIndex(mkt); err != nil {
			t.Fatal(err)
		}
	}

	for i, snap := range p.History() {
		if snap.Positions["BBB"] != 0 {
			t.Errorf("Tick %d: expected BBB position 0, got %d", i, snap.Positions["BBB"])
		}
		if snap.Values["BBB"] != 0 {
			t.Errorf("Tick %d: expected BBB value 0, got %f", i, snap.Values["BBB"])
		}
	}
}

func TestUpdateSignalSizing(t *testing.T) {
	h := newHandler(t, map[string][]float64{"AAA": {10, 11, 12}})
	p := NewNaive(h, 100000, 100)
	h.Update()

	order, err := p.UpdateSignal(event.SignalEvent{Symbol: "AAA", At: day(0), Signal: event.Long, Strength: 1})
	if err != nil {
		t.Fatal(err)
	}
	if order == nil {
		t.Fatal("Expected an order for LONG")
	}
	if order.Direction != event.Buy || order.Quantity != 100 {
		t.Errorf("Expected BUY 100, got %v %d", order.Direction, order.Quantity)
	}
	if order.Order != event.MarketOrder {
		t.Errorf("Expected market order, got %v", order.Order)
	}

	// EXIT while flat produces no order
	order, err = p.UpdateSignal(event.SignalEvent{Symbol: "AAA", At: day(0), Signal: event.Exit})
	if err != nil {
		t.Fatal(err)
	}
	if order != nil {
		t.Errorf("Expected no order for EXIT while flat, got %v", order)
	}

	// EXIT after a fill liquidates the open quantity, not the default size
	if err := p.UpdateFill(event.FillEvent{Symbol: "AAA", Quantity: 40, Direction: event.Buy, Price: 10, Commission: 1}); err != nil {
		t.Fatal(err)
	}
	order, err = p.UpdateSignal(event.SignalEvent{Symbol: "AAA", At: day(0), Signal: event.Exit})
	if err != nil {
		t.Fatal(err)
	}
	if order == nil || order.Direction != event.Sell || order.Quantity != 40 {
		t.Errorf("Expected SELL 40 to liquidate, got %v", order)
	}
}

func TestNaiveSizingPermitsNegativeCash(t *testing.T) {
	h := newHandler(t, map[string][]float64{"AAA": {1000}})
	p := NewNaive(h, 100, 100) // far less capital than one order costs
	h.Update()

	order, err := p.UpdateSignal(event.SignalEvent{Symbol: "AAA", Signal: event.Long})
	if err != nil {
		t.Fatal(err)
	}
	if order.Quantity != 100 {
		t.Errorf("Expected fixed quantity regardless of cash, got %d", order.Quantity)
	}

	if err := p.UpdateFill(event.FillEvent{Symbol: "AAA", Quantity: 100, Direction: event.Buy, Price: 1000, Commission: 5}); err != nil {
		t.Fatal(err)
	}
	if p.Cash() >= 0 {
		t.Errorf("Expected negative cash (implicit leverage), got %f", p.Cash())
	}
}

func TestEquityCurve(t *testing.T) {
	h := newHandler(t, map[string][]float64{"AAA": {10, 11, 12}})
	p := NewNaive(h, 1000, 100)

	// buy 10 units at the first close, no commission, then hold
	tick := 0
	for h.Continue() {
		mkt, ok := h.Update()
		if !ok {
			break
		}
		tick++
		if err := p.UpdateTimeIndex(mkt); err != nil {
			t.Fatal(err)
		}
		if tick == 1 {
			if err := p.UpdateFill(event.FillEvent{At: mkt.At, Symbol: "AAA", Quantity: 10, Direction: event.Buy, Price: 10, Commission: 1}); err != nil {
				t.Fatal(err)
			}
		}
	}

	curve, err := p.EquityCurve()
	if err != nil {
		t.Fatal(err)
	}
	if len(curve) != 3 {
		t.Fatalf("Expected 3 curve points, got %d", len(curve))
	}

	// tick 1 snapshot precedes the fill: total 1000, returns 0, equity 1
	if !approx(curve[0].Total, 1000) || !approx(curve[0].Returns, 0) || !approx(curve[0].Equity, 1) {
		t.Errorf("Unexpected first point: %+v", curve[0])
	}
	// tick 2: cash 899, position 10 @ 11 = 110, total 1009
	if !approx(curve[1].Total, 1009) {
		t.Errorf("Expected total 1009, got %f", curve[1].Total)
	}
	if !approx(curve[1].Returns, 9.0/1000) {
		t.Errorf("Expected returns 0.009, got %f", curve[1].Returns)
	}
	// tick 3: cash 899, position 10 @ 12 = 120, total 1019
	if !approx(curve[2].Total, 1019) {
		t.Errorf("Expected total 1019, got %f", curve[2].Total)
	}
	wantEquity := (1 + 9.0/1000) * (1 + 10.0/1009)
	if !approx(curve[2].Equity, wantEquity) {
		t.Errorf("Expected equity %f, got %f", wantEquity, curve[2].Equity)
	}
}

func TestSummaryStats(t *testing.T) {
	h := newHandler(t, map[string][]float64{"AAA": {10, 11, 12, 9, 12}})
	p := NewNaive(h, 1000, 100)

	// hold 100 units from the start so the totals track the price
	first := true
	for h.Continue() {
		mkt, ok := h.Update()
		if !ok {
			break
		}
		if first {
			if err := p.UpdateFill(event.FillEvent{At: mkt.At, Symbol: "AAA", Quantity: 100, Direction: event.Buy, Price: 10, Commission: 0}); err != nil {
				t.Fatal(err)
			}
			first = false
		}
		if err := p.UpdateTimeIndex(mkt); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := p.SummaryStats()
	if err != nil {
		t.Fatal(err)
	}

	// totals: 1000, 1100, 1200, 900, 1200
	if !approx(stats.FinalValue, 1200) {
		t.Errorf("Expected final value 1200, got %f", stats.FinalValue)
	}
	if !approx(stats.TotalReturnPct, 20) {
		t.Errorf("Expected total return 20%%, got %f", stats.TotalReturnPct)
	}
	// deepest decline: 1200 -> 900 = 25%
	if !approx(stats.MaxDrawdownPct, 25) {
		t.Errorf("Expected max drawdown 25%%, got %f", stats.MaxDrawdownPct)
	}
	// below the 1200 high for exactly one period before recovering
	if stats.DrawdownDuration != 1 {
		t.Errorf("Expected drawdown duration 1, got %d", stats.DrawdownDuration)
	}
	if stats.SharpeRatio == 0 {
		t.Error("Expected nonzero sharpe on a non-flat series")
	}
}

func TestSummaryStatsFlatSeries(t *testing.T) {
	h := newHandler(t, map[string][]float64{"AAA": {10, 10, 10}})
	p := NewNaive(h, 1000, 100)
	for h.Continue() {
		mkt, ok := h.Update()
		if !ok {
			break
		}
		if err := p.UpdateTimeIndex(mkt); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := p.SummaryStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.SharpeRatio != 0 {
		t.Errorf("Expected sharpe 0 on flat returns, got %f", stats.SharpeRatio)
	}
	if stats.MaxDrawdownPct != 0 || stats.DrawdownDuration != 0 {
		t.Errorf("Expected no drawdown, got %f%% over %d", stats.MaxDrawdownPct, stats.DrawdownDuration)
	}
}

func TestStatsBeforeAnyTick(t *testing.T) {
	h := newHandler(t, map[string][]float64{"AAA": {10}})
	p := NewNaive(h, 1000, 100)
	if _, err := p.SummaryStats(); err == nil {
		t.Error("Expected error with no recorded history")
	}
}
