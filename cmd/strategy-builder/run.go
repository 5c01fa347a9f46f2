package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-strategy-builder/internal/compiler"
	"github.com/rxtech-lab/argo-strategy-builder/internal/runner"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// newExecutor creates the executor the framework commands run through.
var newExecutor = func() runner.CommandExecutor {
	return runner.NewExecExecutor()
}

// runFlags are shared by backtest, hyperopt and trade.
func runFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Runner configuration YAML",
		},
		&cli.StringFlag{
			Name:  "user-data-dir",
			Usage: "Framework user data directory, overrides the configuration",
		},
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "Strategy class name, overrides the document's strategy_name",
		},
		&cli.StringSliceFlag{
			Name:  "set",
			Usage: "Framework configuration override as key=value, repeatable",
		},
	}

	return append(flags, extra...)
}

func backtestCommand() *cli.Command {
	return &cli.Command{
		Name:      "backtest",
		Usage:     "Export a graph and backtest it with the framework",
		ArgsUsage: "<graph.json|graph.yaml>",
		Flags: runFlags(
			&cli.StringFlag{
				Name:  "timerange",
				Usage: "Backtest time range, e.g. 20240101-20240601",
			},
			&cli.FloatFlag{
				Name:  "wallet",
				Usage: "Starting balance for the equity summary",
				Value: 1000,
			},
		),
		Action: backtestAction,
	}
}

func hyperoptCommand() *cli.Command {
	return &cli.Command{
		Name:      "hyperopt",
		Usage:     "Export a graph and optimize its hyperopt parameters",
		ArgsUsage: "<graph.json|graph.yaml>",
		Flags: runFlags(
			&cli.IntFlag{
				Name:  "epochs",
				Usage: "Hyperopt epochs, overrides the configuration",
			},
		),
		Action: hyperoptAction,
	}
}

func tradeCommand() *cli.Command {
	return &cli.Command{
		Name:      "trade",
		Usage:     "Export a graph and trade it live until interrupted",
		ArgsUsage: "<graph.json|graph.yaml>",
		Flags:     runFlags(),
		Action:    tradeAction,
	}
}

// prepareRun exports the graph argument and creates a runner for it.
func prepareRun(cmd *cli.Command) (*runner.Runner, runner.Job, error) {
	path, err := graphArg(cmd)
	if err != nil {
		return nil, runner.Job{}, err
	}

	log, err := newLogger(cmd)
	if err != nil {
		return nil, runner.Job{}, err
	}

	config := runner.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		if config, err = runner.LoadConfig(path); err != nil {
			return nil, runner.Job{}, err
		}
	}

	if dir := cmd.String("user-data-dir"); dir != "" {
		config.UserDataDir = dir
	}

	r, err := runner.NewRunner(config, newExecutor(), log)
	if err != nil {
		return nil, runner.Job{}, err
	}

	doc, graph, err := loadGraph(path)
	if err != nil {
		return nil, runner.Job{}, err
	}

	name := cmd.String("name")
	if name == "" {
		name = doc.StrategyName
	}

	result, err := compiler.NewExporter(compiler.Options{
		StrategyName:      name,
		Description:       doc.Description,
		FallbackTimeframe: "",
		Renderer:          nil,
		Logger:            log,
	}).Export(graph)
	if err != nil {
		return nil, runner.Job{}, err
	}

	for _, warning := range result.Warnings {
		fmt.Fprintln(stderr(cmd), FormatWarning(warning))
	}

	overrides, err := parseOverrides(cmd.StringSlice("set"))
	if err != nil {
		return nil, runner.Job{}, err
	}

	return r, runner.Job{
		Source:       result.Source,
		StrategyName: result.ClassName,
		Overrides:    overrides,
		Timerange:    "",
		Epochs:       0,
	}, nil
}

// parseOverrides turns key=value pairs into framework configuration
// overrides. Values are decoded as YAML scalars so numbers and booleans keep
// their type.
func parseOverrides(pairs []string) (map[string]any, error) {
	overrides := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)

		if !ok || key == "" {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "override %q must be key=value", pair)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}

		overrides[key] = value
	}

	return overrides, nil
}

// waitForRun spins while the run streams events and returns its last event.
func waitForRun(w io.Writer, events <-chan runner.Event) runner.Event {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription("Preparing..."),
		progressbar.OptionClearOnFinish(),
	)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var last runner.Event

	for {
		select {
		case event, ok := <-events:
			if !ok {
				_ = bar.Finish()

				return last
			}

			last = event
			bar.Describe(event.Message)
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

// finished returns the error of a run whose last event is not a finished one.
func finished(event runner.Event, name string) error {
	if event.Kind == runner.EventFinished {
		return nil
	}

	if event.Err != nil {
		return event.Err
	}

	return errors.Newf(errors.ErrCodeRunnerFailed, "%s ended without a result", name)
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	r, job, err := prepareRun(cmd)
	if err != nil {
		return err
	}

	job.Timerange = cmd.String("timerange")

	event := waitForRun(stderr(cmd), r.BacktestAsync(ctx, job))
	if err := finished(event, "backtest"); err != nil {
		return err
	}

	result := event.Backtest
	out := stdout(cmd)

	fmt.Fprintln(out, TitleStyle.Render("Backtest "+result.Strategy))
	fmt.Fprintf(out, "  Total return:      %s\n", FormatPercent(result.Stats.TotalReturnPct))
	fmt.Fprintf(out, "  Sharpe ratio:      %.2f\n", result.Stats.Sharpe)
	fmt.Fprintf(out, "  Max drawdown:      %.2f%%\n", result.Stats.MaxDrawdownPct)
	fmt.Fprintf(out, "  Total trades:      %d\n", result.Stats.TotalTrades)
	fmt.Fprintf(out, "  Profitable trades: %d\n", result.Stats.ProfitableTrades)

	if curve := result.EquityCurve(decimal.NewFromFloat(cmd.Float("wallet"))); len(curve) > 0 {
		fmt.Fprintf(out, "  Final balance:     %s\n", curve[len(curve)-1].Equity.StringFixed(2))
	}

	return nil
}

func hyperoptAction(ctx context.Context, cmd *cli.Command) error {
	r, job, err := prepareRun(cmd)
	if err != nil {
		return err
	}

	job.Epochs = int(cmd.Int("epochs"))

	event := waitForRun(stderr(cmd), r.HyperoptAsync(ctx, job))
	if err := finished(event, "hyperopt"); err != nil {
		return err
	}

	result := event.Hyperopt
	out := stdout(cmd)

	fmt.Fprintln(out, TitleStyle.Render("Hyperopt "+job.StrategyName))

	if result.BestResult != "" {
		fmt.Fprintln(out, "  "+result.BestResult)
	}

	if len(result.BestParams) == 0 {
		fmt.Fprintln(out, HelpStyle.Render("  No best parameters reported"))

		return nil
	}

	for _, key := range slices.Sorted(maps.Keys(result.BestParams)) {
		fmt.Fprintf(out, "  %s = %s\n", key, result.BestParams[key])
	}

	return nil
}

func tradeAction(ctx context.Context, cmd *cli.Command) error {
	r, job, err := prepareRun(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintln(stderr(cmd), SuccessStyle.Render("Trading "+job.StrategyName+", press Ctrl+C to stop"))

	return r.Trade(ctx, job)
}
