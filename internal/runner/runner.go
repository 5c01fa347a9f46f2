// Package runner drives the external trading framework: it writes a generated
// strategy into the framework's user data directory and runs backtesting,
// hyperopt or live trading against it.
package runner

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-strategy-builder/internal/logger"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"go.uber.org/zap"
)

const resultsFileName = "backtest_results.json"

// Job is one strategy to run.
type Job struct {
	// Source is the generated strategy file.
	Source string
	// StrategyName is the strategy class name and the file name stem.
	StrategyName string
	// Overrides are merged over the framework configuration.
	Overrides map[string]any
	// Timerange limits backtests, e.g. "20240101-20240601".
	Timerange string
	// Epochs overrides the configured hyperopt epochs when positive.
	Epochs int
}

// Runner runs jobs through a CommandExecutor. It is safe for concurrent use;
// every run works in its own temporary directory.
type Runner struct {
	config   Config
	executor CommandExecutor
	log      *logger.Logger
}

// NewRunner validates config and creates a Runner.
func NewRunner(config Config, executor CommandExecutor, log *logger.Logger) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Runner{config: config, executor: executor, log: log}, nil
}

// Config returns the runner configuration.
func (r *Runner) Config() Config {
	return r.config
}

// SaveStrategy writes source to <user_data>/strategies/<name>.py.
func (r *Runner) SaveStrategy(source, name string) (string, error) {
	dir := filepath.Join(r.config.UserDataDir, "strategies")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(errors.ErrCodeRunnerFailed, err, "failed to create %s", dir)
	}

	path := filepath.Join(dir, name+".py")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		return "", errors.Wrapf(errors.ErrCodeRunnerFailed, err, "failed to write strategy %s", path)
	}

	return path, nil
}

// WriteFrameworkConfig writes the merged framework configuration to
// dir/config.json.
func (r *Runner) WriteFrameworkConfig(dir string, overrides map[string]any) (string, error) {
	data, err := json.MarshalIndent(mergeFramework(r.config.Framework, overrides), "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode framework config", err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", errors.Wrapf(errors.ErrCodeRunnerFailed, err, "failed to write %s", path)
	}

	return path, nil
}

// Backtest runs a backtest and parses its exported results. When the
// framework exported no results file the console summary is used instead.
func (r *Runner) Backtest(ctx context.Context, job Job) (*BacktestResult, error) {
	var result *BacktestResult

	err := r.run(ctx, "backtesting", job, r.config.BacktestTimeout, func(dir string) []string {
		args := []string{
			"--export", "trades",
			"--export-filename", filepath.Join(dir, resultsFileName),
		}
		if job.Timerange != "" {
			args = append(args, "--timerange", job.Timerange)
		}

		return args
	}, func(dir string, output Output) error {
		data, err := os.ReadFile(filepath.Join(dir, resultsFileName))
		if os.IsNotExist(err) {
			result = &BacktestResult{Strategy: job.StrategyName}
			ParseSummary(output.Stdout, &result.Stats)
		} else {
			if err != nil {
				return errors.Wrap(errors.ErrCodeRunnerResultParse, "failed to read backtest results", err)
			}

			if result, err = ParseBacktestExport(data, job.StrategyName); err != nil {
				return err
			}
		}

		result.Stdout = output.Stdout
		result.Stderr = output.Stderr

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Hyperopt runs a hyperparameter search and parses the best parameters from
// its console output.
func (r *Runner) Hyperopt(ctx context.Context, job Job) (*HyperoptResult, error) {
	epochs := r.config.Epochs
	if job.Epochs > 0 {
		epochs = job.Epochs
	}

	var result *HyperoptResult

	err := r.run(ctx, "hyperopt", job, r.config.HyperoptTimeout, func(string) []string {
		args := []string{
			"--hyperopt-loss", r.config.HyperoptLoss,
			"--epochs", strconv.Itoa(epochs),
			"--spaces",
		}

		return append(args, r.config.Spaces...)
	}, func(_ string, output Output) error {
		result = ParseHyperoptOutput(output.Stdout)
		result.Stdout = output.Stdout
		result.Stderr = output.Stderr

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Trade starts live trading with dry_run disabled and blocks until the
// process exits or ctx is cancelled. Cancellation is a normal stop.
func (r *Runner) Trade(ctx context.Context, job Job) error {
	overrides := mergeFramework(job.Overrides, map[string]any{"dry_run": false})
	job.Overrides = overrides

	err := r.run(ctx, "trade", job, 0, func(string) []string { return nil }, func(string, Output) error { return nil })
	if errors.HasCode(err, errors.ErrCodeRunnerTimeout) && ctx.Err() != nil {
		return nil
	}

	return err
}

// run saves the strategy, writes the framework config to a fresh temporary
// directory and executes "<executable> <subcommand>". A zero timeout means
// the command runs until ctx ends.
func (r *Runner) run(
	ctx context.Context,
	subcommand string,
	job Job,
	timeout time.Duration,
	extraArgs func(dir string) []string,
	parse func(dir string, output Output) error,
) error {
	runID := uuid.NewString()
	log := r.log.With(
		zap.String("run_id", runID),
		zap.String("command", subcommand),
		zap.String("strategy", job.StrategyName),
	)

	if _, err := r.SaveStrategy(job.Source, job.StrategyName); err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "strategy-builder-")
	if err != nil {
		return errors.Wrap(errors.ErrCodeRunnerFailed, "failed to create run directory", err)
	}
	defer os.RemoveAll(dir)

	configPath, err := r.WriteFrameworkConfig(dir, job.Overrides)
	if err != nil {
		return err
	}

	args := []string{
		subcommand,
		"--config", configPath,
		"--strategy", job.StrategyName,
		"--user-data-dir", r.config.UserDataDir,
	}
	args = append(args, extraArgs(dir)...)

	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log.Info("Starting framework command", zap.Strings("args", args))

	started := time.Now()

	output, err := r.executor.Execute(ctx, Command{Name: r.config.Executable, Args: args, Dir: r.config.WorkDir})
	if err != nil {
		if ctx.Err() != nil {
			log.Warn("Framework command interrupted", zap.Duration("elapsed", time.Since(started)))

			return errors.Wrapf(errors.ErrCodeRunnerTimeout, ctx.Err(), "%s stopped after %s", subcommand, time.Since(started).Round(time.Second))
		}

		return errors.Wrapf(errors.ErrCodeRunnerFailed, err, "failed to run %s", subcommand)
	}

	if output.ExitCode != 0 {
		log.Error("Framework command failed", zap.Int("exit_code", output.ExitCode))

		return errors.Newf(errors.ErrCodeRunnerFailed, "%s failed with exit code %d: %s", subcommand, output.ExitCode, output.Stderr)
	}

	log.Info("Framework command finished", zap.Duration("elapsed", time.Since(started)))

	return parse(dir, output)
}
