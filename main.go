package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ghantakiran/axion-stock-sub003/config"
	"github.com/ghantakiran/axion-stock-sub003/data"
	"github.com/ghantakiran/axion-stock-sub003/engine"
	"github.com/ghantakiran/axion-stock-sub003/log"
	"github.com/ghantakiran/axion-stock-sub003/montecarlo"
	"github.com/ghantakiran/axion-stock-sub003/strategies"
	"github.com/ghantakiran/axion-stock-sub003/walkforward"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "path to the configuration file",
	}
	dataFlag = &cli.StringFlag{
		Name:     "data",
		Usage:    "path to the close-price CSV table",
		Required: true,
	}
	strategyFlag = &cli.StringFlag{
		Name:  "strategy",
		Usage: "strategy name, overrides the configured one",
	}
)

func main() {
	app := &cli.App{
		Name:  "backtester",
		Usage: "event-driven strategy backtesting with walk-forward and Monte Carlo analysis",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run a single backtest and print the results",
				Flags:  []cli.Flag{configFlag, dataFlag, strategyFlag},
				Action: runBacktest,
			},
			{
				Name:  "walkforward",
				Usage: "optimise in-sample and validate out-of-sample across rolling windows",
				Flags: []cli.Flag{
					configFlag, dataFlag, strategyFlag,
					&cli.IntFlag{Name: "windows", Value: 4, Usage: "number of walk-forward windows"},
					&cli.Float64Flag{Name: "in-sample-ratio", Value: 0.7, Usage: "fraction of each window used for optimisation"},
					&cli.StringFlag{Name: "metric", Value: "sharpe", Usage: "optimisation metric: sharpe, cagr or sortino"},
					&cli.IntFlag{Name: "min-trades", Value: 5, Usage: "disqualify combinations trading less than this"},
					&cli.IntFlag{Name: "workers", Usage: "bound on concurrent in-sample backtests"},
					&cli.StringFlag{
						Name:     "grid",
						Required: true,
						Usage:    "parameter grid, e.g. 'rsi-period=10,14,20;rsi-low=25,30'",
					},
				},
				Action: runWalkForward,
			},
			{
				Name:  "montecarlo",
				Usage: "bootstrap the trade history of a run and test significance",
				Flags: []cli.Flag{
					configFlag, dataFlag, strategyFlag,
					&cli.IntFlag{Name: "simulations", Value: montecarlo.DefaultSimulations},
					&cli.Float64Flag{Name: "confidence", Value: 0.95},
					&cli.BoolFlag{Name: "significance", Usage: "also test the Sharpe ratio against random portfolios"},
				},
				Action: runMonteCarlo,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.ReadConfigFromFile(path)
		if err != nil {
			return cfg, err
		}
	}
	if name := c.String("strategy"); name != "" {
		cfg.Strategy.Name = name
	}
	if cfg.Strategy.Name == "" {
		cfg.Strategy.Name = "rsi"
	}
	return cfg, nil
}

func loadStrategy(cfg config.Config) (strategies.Handler, error) {
	strategy, err := strategies.LoadStrategyByName(cfg.Strategy.Name)
	if err != nil {
		return nil, err
	}
	if len(cfg.Strategy.CustomSettings) > 0 {
		if err := strategy.SetCustomSettings(cfg.Strategy.CustomSettings); err != nil {
			return nil, err
		}
	}
	return strategy, nil
}

func runBacktest(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	handler, err := data.NewHandlerFromCSV(c.String("data"))
	if err != nil {
		return err
	}
	strategy, err := loadStrategy(cfg)
	if err != nil {
		return err
	}
	bt, err := engine.New(cfg)
	if err != nil {
		return err
	}
	if err := bt.LoadData(handler); err != nil {
		return err
	}
	result, err := bt.Run(strategy)
	if err != nil {
		return err
	}
	result.PrintResults()
	return nil
}

func runWalkForward(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	handler, err := data.NewHandlerFromCSV(c.String("data"))
	if err != nil {
		return err
	}
	grid, err := parseGrid(c.String("grid"))
	if err != nil {
		return err
	}
	factory := func(params map[string]any) (strategies.Handler, error) {
		strategy, err := strategies.LoadStrategyByName(cfg.Strategy.Name)
		if err != nil {
			return nil, err
		}
		if err := strategy.SetCustomSettings(params); err != nil {
			return nil, err
		}
		return strategy, nil
	}
	optimizer, err := walkforward.New(walkforward.Settings{
		Windows:       c.Int("windows"),
		InSampleRatio: c.Float64("in-sample-ratio"),
		Metric:        walkforward.OptimizeMetric(c.String("metric")),
		MinTrades:     c.Int("min-trades"),
		Workers:       c.Int("workers"),
	}, cfg, factory)
	if err != nil {
		return err
	}
	result, err := optimizer.Run(handler, grid)
	if err != nil {
		return err
	}
	log.Infof(log.WalkForward, "combined out-of-sample: return %.2f%%, Sharpe %.4f, max drawdown %.2f%%",
		result.Combined.TotalReturn*100, result.Combined.SharpeRatio, result.Combined.MaxDrawdown*100)
	log.Infof(log.WalkForward, "efficiency ratio %.4f (%s)", result.EfficiencyRatio, result.Assessment)
	return nil
}

func runMonteCarlo(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	handler, err := data.NewHandlerFromCSV(c.String("data"))
	if err != nil {
		return err
	}
	strategy, err := loadStrategy(cfg)
	if err != nil {
		return err
	}
	bt, err := engine.New(cfg)
	if err != nil {
		return err
	}
	if err := bt.LoadData(handler); err != nil {
		return err
	}
	result, err := bt.Run(strategy)
	if err != nil {
		return err
	}
	result.PrintResults()

	resampler := montecarlo.NewResampler(montecarlo.Settings{
		Simulations: c.Int("simulations"),
		Confidence:  c.Float64("confidence"),
		Seed:        cfg.Seed,
	})
	mcResult, err := resampler.Run(bt.Trades(), cfg.InitialCapital.InexactFloat64())
	if err != nil {
		return err
	}
	mcResult.PrintResults()

	if c.Bool("significance") {
		universe := make(map[string][]float64)
		for _, symbol := range handler.Symbols() {
			if series := handler.ReturnSeries(symbol); series != nil {
				universe[symbol] = series
			}
		}
		sig, err := resampler.SignificanceTest(result.Metrics.SharpeRatio, universe)
		if err != nil {
			return err
		}
		log.Infof(log.MonteCarlo, "significance: p-value %.4f, threshold %.4f, significant %v",
			sig.PValue, sig.Threshold, sig.Significant)
	}
	return nil
}

// parseGrid turns "key=1,2,3;other=a,b" into a parameter grid. Values that
// parse as numbers become int or float64, everything else stays a string
func parseGrid(s string) (map[string][]any, error) {
	grid := make(map[string][]any)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, rawValues, found := strings.Cut(part, "=")
		if !found || key == "" || rawValues == "" {
			return nil, fmt.Errorf("malformed grid entry %q", part)
		}
		for _, raw := range strings.Split(rawValues, ",") {
			raw = strings.TrimSpace(raw)
			if i, err := strconv.Atoi(raw); err == nil {
				grid[key] = append(grid[key], i)
				continue
			}
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				grid[key] = append(grid[key], f)
				continue
			}
			grid[key] = append(grid[key], raw)
		}
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("empty grid %q", s)
	}
	return grid, nil
}
