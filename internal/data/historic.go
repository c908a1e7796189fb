package data

import (
	"fmt"
	"sort"
	"time"

	"quant-backtest/internal/event"
)

// Historic replays pre-loaded bars over the combined time index: the sorted
// union of every symbol's native dates. A symbol missing a date repeats its
// last known bar (forward-fill); values are never filled backward, so reads
// before a symbol's first real observation fail with ErrMissingData.
type Historic struct {
	symbols  []string
	source   map[string][]Bar
	index    []time.Time
	cursor   int
	next     map[string]int
	observed map[string][]Bar
	active   bool
}

// NewHistoric builds a handler from per-symbol bar series sorted ascending
// by time. Series may start and end on different dates.
func NewHistoric(bars map[string][]Bar) (*Historic, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("historic data: no symbols")
	}
	symbols := make([]string, 0, len(bars))
	for s := range bars {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	seen := map[time.Time]struct{}{}
	var index []time.Time
	for _, s := range symbols {
		if len(bars[s]) == 0 {
			return nil, fmt.Errorf("historic data: %s: %w", s, ErrNoBars)
		}
		for i, b := range bars[s] {
			if i > 0 && !bars[s][i-1].At.Before(b.At) {
				return nil, fmt.Errorf("historic data: %s: bars not strictly ascending at %s", s, b.At.Format("2006-01-02"))
			}
			if _, ok := seen[b.At]; !ok {
				seen[b.At] = struct{}{}
				index = append(index, b.At)
			}
		}
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Before(index[j]) })

	h := &Historic{
		symbols:  symbols,
		source:   bars,
		index:    index,
		next:     make(map[string]int, len(symbols)),
		observed: make(map[string][]Bar, len(symbols)),
		active:   true,
	}
	return h, nil
}

func (h *Historic) Symbols() []string { return h.symbols }

func (h *Historic) Continue() bool { return h.active }

// Index returns the combined time index the handler replays.
func (h *Historic) Index() []time.Time { return h.index }

func (h *Historic) Update() (event.MarketEvent, bool) {
	if h.cursor >= len(h.index) {
		h.active = false
		return event.MarketEvent{}, false
	}
	t := h.index[h.cursor]
	h.cursor++

	for _, s := range h.symbols {
		src := h.source[s]
		i := h.next[s]
		switch {
		case i < len(src) && src[i].At.Equal(t):
			h.observed[s] = append(h.observed[s], src[i])
			h.next[s] = i + 1
		case i > 0:
			// pad forward: repeat the last real bar at the index date
			padded := src[i-1]
			padded.At = t
			h.observed[s] = append(h.observed[s], padded)
		default:
			// before the symbol's first observation; leave unobserved
		}
	}
	return event.MarketEvent{At: t}, true
}

func (h *Historic) LatestBar(symbol string) (Bar, error) {
	obs, err := h.latest(symbol)
	if err != nil {
		return Bar{}, err
	}
	return obs[len(obs)-1], nil
}

func (h *Historic) LatestBars(symbol string, n int) ([]Bar, error) {
	obs, err := h.latest(symbol)
	if err != nil {
		return nil, err
	}
	if n > len(obs) {
		n = len(obs)
	}
	return obs[len(obs)-n:], nil
}

func (h *Historic) LatestBarValue(symbol string, f Field) (float64, error) {
	b, err := h.LatestBar(symbol)
	if err != nil {
		return 0, err
	}
	return b.Value(f), nil
}

func (h *Historic) LatestBarTime(symbol string) (time.Time, error) {
	b, err := h.LatestBar(symbol)
	if err != nil {
		return time.Time{}, err
	}
	return b.At, nil
}

func (h *Historic) latest(symbol string) ([]Bar, error) {
	if _, ok := h.source[symbol]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	obs := h.observed[symbol]
	if len(obs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingData, symbol)
	}
	return obs, nil
}
