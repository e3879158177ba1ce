package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/januswing/strategy-miner/internal/backtest"
	"github.com/januswing/strategy-miner/internal/classifier"
	"github.com/januswing/strategy-miner/internal/config"
	"github.com/januswing/strategy-miner/internal/logger"
	"github.com/januswing/strategy-miner/internal/monitor"
	"github.com/januswing/strategy-miner/internal/monitor/significance"
	"github.com/januswing/strategy-miner/internal/notifier"
	"github.com/januswing/strategy-miner/internal/orchestrator"
	"github.com/januswing/strategy-miner/internal/parser"
	"github.com/januswing/strategy-miner/internal/store"
	"github.com/januswing/strategy-miner/internal/store/duckdb"
	"github.com/januswing/strategy-miner/internal/types"
	"github.com/januswing/strategy-miner/pkg/marketdata"
)

func main() {
	cmd := &cli.Command{
		Name:  "strategy-miner",
		Usage: "Validate harvested trading strategy candidates",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Value:   "config.yaml",
			},
			&cli.BoolFlag{
				Name:  "synthetic",
				Usage: "Use deterministic synthetic market data instead of the exchange",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a single candidate by ID",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "id",
						Usage:    "Candidate ID",
						Required: true,
					},
				},
				Action: validateAction,
			},
			{
				Name:   "validate-all",
				Usage:  "Validate every pending candidate",
				Action: validateAllAction,
			},
			{
				Name:  "monitor",
				Usage: "Run a bounded live monitoring session and test signal significance",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "symbol",
						Usage: "Symbol to monitor (defaults to the configured symbol)",
					},
					&cli.FloatFlag{
						Name:  "hours",
						Usage: "How long to monitor",
						Value: 1,
					},
				},
				Action: monitorAction,
			},
			{
				Name:   "demo",
				Usage:  "Run the self-check against synthetic data",
				Action: demoAction,
			},
			{
				Name:  "schedule",
				Usage: "Periodically validate all pending candidates",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "every",
						Usage: "Interval between validation sweeps",
						Value: time.Hour,
					},
				},
				Action: scheduleAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

type runtimeEnv struct {
	cfg    config.Config
	logger *logger.Logger
	store  store.Store
}

func setup(cmd *cli.Command) (*runtimeEnv, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	candidateStore, err := duckdb.NewStore(cfg.Store.Path, zapLogger)
	if err != nil {
		return nil, err
	}

	return &runtimeEnv{
		cfg:    cfg,
		logger: zapLogger,
		store:  candidateStore,
	}, nil
}

func (env *runtimeEnv) close() {
	if err := env.store.Close(); err != nil {
		env.logger.Error("failed to close store", zap.Error(err))
	}

	_ = env.logger.Sync()
}

func (env *runtimeEnv) barProvider(synthetic bool) marketdata.Provider {
	if synthetic {
		return marketdata.NewSyntheticProvider()
	}

	return marketdata.NewBinanceProvider()
}

func (env *runtimeEnv) quoteProvider(synthetic bool) marketdata.QuoteProvider {
	if synthetic {
		return marketdata.NewSyntheticQuotes(100)
	}

	return marketdata.NewBinanceProvider()
}

func (env *runtimeEnv) notifier() notifier.Notifier {
	if env.cfg.Notifier.WebhookURL == "" {
		return notifier.Noop{}
	}

	webhook, err := notifier.NewWebhook(env.cfg.Notifier.WebhookURL)
	if err != nil {
		env.logger.Warn("invalid webhook configuration, notifications disabled", zap.Error(err))

		return notifier.Noop{}
	}

	return webhook
}

func (env *runtimeEnv) orchestrator(cmd *cli.Command, showProgress bool) (*orchestrator.Orchestrator, error) {
	return orchestrator.New(orchestrator.Options{
		Store:        env.store,
		Provider:     env.barProvider(cmd.Bool("synthetic")),
		Notifier:     env.notifier(),
		Logger:       env.logger,
		Symbol:       env.cfg.Symbol,
		Interval:     env.cfg.Interval,
		Bars:         env.cfg.Bars,
		FeeRate:      env.cfg.FeeRate,
		Thresholds:   env.cfg.Thresholds,
		ShowProgress: showProgress,
	})
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	o, err := env.orchestrator(cmd, false)
	if err != nil {
		return err
	}

	result, err := o.ValidateOne(ctx, cmd.Int("id"))
	if err != nil {
		return err
	}

	printResult(result)

	return nil
}

func validateAllAction(ctx context.Context, cmd *cli.Command) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	o, err := env.orchestrator(cmd, true)
	if err != nil {
		return err
	}

	results, err := o.ValidateAll(ctx)
	if err != nil {
		return err
	}

	passed := 0

	for _, result := range results {
		if result.Passed() {
			passed++
		}
	}

	fmt.Printf("validated %d candidates, %d passed\n", len(results), passed)

	for _, result := range results {
		printResult(result)
	}

	return nil
}

func monitorAction(ctx context.Context, cmd *cli.Command) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	symbol := cmd.String("symbol")
	if symbol == "" {
		symbol = env.cfg.Symbol
	}

	hours := cmd.Float("hours")

	task, err := monitor.NewTask(monitor.Options{
		Provider: env.quoteProvider(cmd.Bool("synthetic")),
		Symbol:   symbol,
		Interval: time.Duration(env.cfg.Monitor.IntervalSeconds) * time.Second,
		Duration: time.Duration(hours * float64(time.Hour)),
		Logger:   env.logger,
	})
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	env.logger.Info("monitoring started",
		zap.String("symbol", symbol),
		zap.Float64("hours", hours),
	)

	if err := task.Run(runCtx); err != nil {
		env.logger.Info("monitoring interrupted", zap.Error(err))
	}

	stats := task.Stats()
	result := significance.Test(task.Returns())

	fmt.Printf("samples: %d  signals: %d  elapsed: %.2fh\n",
		stats.SampleCount, stats.SignalCount, stats.ElapsedHours)
	fmt.Printf("significance: n=%d sufficient=%t z=%.3f p=%.4f significant=%t confidence=%.0f\n",
		result.SampleSize, result.Sufficient, result.ZScore, result.PValue,
		result.Significant, significance.Confidence(result))

	return nil
}

func demoAction(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Default()

	fmt.Println("== parser ==")

	for _, text := range []string{
		"Buy when the 10 day MA crosses above the 20 day MA",
		"Buy when RSI below 30, sell above 50, stop loss 10%",
		"Breakout above the upper Bollinger band",
		"buy low sell high",
	} {
		spec := parser.Parse(text)
		fmt.Printf("%-55q -> %s\n", text, spec.Kind)
	}

	fmt.Println("== classifier ==")

	for _, text := range []string{
		"market making on orderbook imbalance",
		"golden cross with volume confirmation",
		"low P/E dividend screen",
	} {
		fmt.Printf("%-45q -> %s\n", text, classifier.Classify(text))
	}

	fmt.Println("== backtest ==")

	engine := backtest.NewEngine(cfg.FeeRate, cfg.Thresholds, nil)
	spec := types.DefaultSpec(types.KindMACrossover)

	rising, err := marketdata.NewTrendingProvider(0.005).GetBars(ctx, cfg.Symbol, cfg.Interval, 500)
	if err != nil {
		return err
	}

	risingRun, err := engine.Run(rising, spec)
	if err != nil {
		return err
	}

	fmt.Printf("rising series: trades=%d annual=%.2f%% drawdown=%.2f%%\n",
		risingRun.Metrics.TotalTrades,
		risingRun.Metrics.AnnualReturn*100,
		risingRun.Metrics.MaxDrawdown*100)

	flat, err := marketdata.NewFlatProvider().GetBars(ctx, cfg.Symbol, cfg.Interval, 500)
	if err != nil {
		return err
	}

	flatRun, err := engine.Run(flat, spec)
	if err != nil {
		return err
	}

	fmt.Printf("flat series:   trades=%d passed=%t\n",
		flatRun.Metrics.TotalTrades, flatRun.Metrics.Passed)

	random, err := marketdata.NewSyntheticProvider().GetBars(ctx, cfg.Symbol, cfg.Interval, 500)
	if err != nil {
		return err
	}

	randomRun, err := engine.Run(random, spec)
	if err != nil {
		return err
	}

	fmt.Printf("random walk:   trades=%d annual=%.2f%% winrate=%.1f%%\n",
		randomRun.Metrics.TotalTrades,
		randomRun.Metrics.AnnualReturn*100,
		randomRun.Metrics.WinRate*100)

	return nil
}

func scheduleAction(ctx context.Context, cmd *cli.Command) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	o, err := env.orchestrator(cmd, false)
	if err != nil {
		return err
	}

	every := cmd.Duration("every")

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweep := func() {
		results, err := o.ValidateAll(runCtx)
		if err != nil {
			env.logger.Error("validation sweep failed", zap.Error(err))

			return
		}

		passed := 0

		for _, result := range results {
			if result.Passed() {
				passed++
			}
		}

		env.logger.Info("validation sweep complete",
			zap.Int("validated", len(results)),
			zap.Int("passed", passed),
		)
	}

	scheduler := cron.New()

	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", every), sweep); err != nil {
		return fmt.Errorf("failed to schedule validation sweep: %w", err)
	}

	// Run one sweep immediately, then on the cron cadence.
	sweep()
	scheduler.Start()

	<-runCtx.Done()
	<-scheduler.Stop().Done()

	env.logger.Info("scheduler stopped")

	return nil
}

func printResult(result types.ValidationResult) {
	fmt.Printf("candidate %d  tier=%s method=%s confidence=%.0f\n",
		result.CandidateID, result.Tier, result.Method, result.Confidence)

	if result.Notes != "" {
		fmt.Printf("  note: %s\n", result.Notes)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err == nil {
		fmt.Println(string(encoded))
	}
}
