package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// NewHistoricCSV loads one <symbol>.csv per symbol from dir and builds a
// Historic handler. Files carry a header row
// Date,Open,High,Low,Close,Volume,Adj Close with rows ascending by date.
func NewHistoricCSV(dir string, symbols []string) (*Historic, error) {
	bars := make(map[string][]Bar, len(symbols))
	for _, s := range symbols {
		path := filepath.Join(dir, s+".csv")
		b, err := ReadBarsCSV(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", s, err)
		}
		bars[s] = b
	}
	return NewHistoric(bars)
}

// ReadBarsCSV parses a single symbol's OHLCV file. Column order follows the
// header, so writers may reorder columns.
func ReadBarsCSV(path string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", path, err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"Date", "Open", "High", "Low", "Close", "Volume", "Adj Close"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, required)
		}
	}

	var bars []Bar
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		at, err := time.Parse(dateLayout, strings.TrimSpace(rec[col["Date"]]))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad date: %w", path, line, err)
		}
		b := Bar{At: at.UTC()}
		for _, fc := range []struct {
			name string
			dst  *float64
		}{
			{"Open", &b.Open},
			{"High", &b.High},
			{"Low", &b.Low},
			{"Close", &b.Close},
			{"Adj Close", &b.AdjClose},
			{"Volume", &b.Volume},
		} {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[col[fc.name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: bad %s: %w", path, line, fc.name, err)
			}
			*fc.dst = v
		}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoBars)
	}
	return bars, nil
}
