package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"quant-backtest/internal/backtest"
	"quant-backtest/internal/data"
	"quant-backtest/internal/execution"
	"quant-backtest/internal/logger"
	"quant-backtest/internal/portfolio"
	"quant-backtest/internal/report"
	"quant-backtest/internal/store"
	"quant-backtest/internal/strategy"

	"github.com/joho/godotenv"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()

	path := "config.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := store.LoadConfig(path)
	must(err)

	must(logger.Init())
	ctx := context.Background()
	defer func() { _ = logger.Shutdown(ctx) }()

	bars, err := data.NewHistoricCSV(cfg.CSVDir, cfg.Symbols)
	must(err)

	strat := pickStrategy(cfg, bars)
	book := portfolio.NewNaive(bars, cfg.InitialCapital, cfg.OrderQuantity)
	exec := execution.NewSimulated(bars, cfg.Exchange, execution.Commission{
		Rate:    cfg.Commission.Rate,
		Minimum: cfg.Commission.Minimum,
	})

	eng := backtest.New(bars, strat, book, exec)
	res, err := eng.Run(ctx)
	must(err)

	b, _ := json.MarshalIndent(res.Stats, "", "  ")
	fmt.Println(string(b))

	if cfg.Report.Enabled {
		curvePath, statsPath, err := report.Write(cfg.Report.Dir, cfg.Symbols, res)
		must(err)
		log.Println("Equity curve written:", curvePath)
		log.Println("Summary written:", statsPath)
	}
}

func pickStrategy(cfg *store.Config, bars data.Handler) strategy.Strategy {
	switch cfg.Strategy.Name {
	case "RSI":
		return strategy.NewRSI(bars, cfg.Strategy.RSIPeriod, cfg.Strategy.RSIBuyBelow, cfg.Strategy.RSISellAbove)
	case "BOLLINGER":
		return strategy.NewBollinger(bars, cfg.Strategy.BBWindow, cfg.Strategy.BBStdDev)
	default:
		return strategy.NewMovingAverageCross(bars, cfg.Strategy.ShortWindow, cfg.Strategy.LongWindow)
	}
}
