package runner_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-strategy-builder/internal/runner"
	"github.com/rxtech-lab/argo-strategy-builder/mocks"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type RunnerTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	executor *mocks.MockCommandExecutor
	runner   *runner.Runner
	config   runner.Config
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerTestSuite))
}

func (suite *RunnerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.executor = mocks.NewMockCommandExecutor(suite.ctrl)

	suite.config = runner.DefaultConfig()
	suite.config.UserDataDir = filepath.Join(suite.T().TempDir(), "user_data")

	var err error

	suite.runner, err = runner.NewRunner(suite.config, suite.executor, nil)
	suite.Require().NoError(err)
}

func (suite *RunnerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *RunnerTestSuite) job() runner.Job {
	return runner.Job{
		Source:       "class EmaCross(IStrategy):\n    pass\n",
		StrategyName: "EmaCross",
		Overrides:    map[string]any{"stake_amount": 250},
	}
}

// argValue returns the argument following flag.
func argValue(args []string, flag string) string {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}

	return args[i+1]
}

const exportedResults = `{
  "strategy": {
    "EmaCross": {
      "profit_total_pct": 12.5,
      "sharpe": 1.42,
      "max_drawdown_pct": 6.1,
      "trades": [
        {"pair": "BTC/USDT", "close_timestamp": 2000, "profit_ratio": -0.05, "profit_abs": -5},
        {"pair": "ETH/USDT", "close_timestamp": 1000, "profit_ratio": 0.1, "profit_abs": 10}
      ],
      "wins": 1,
      "profit_mean_pct": 2.5
    }
  }
}`

func (suite *RunnerTestSuite) TestBacktest() {
	suite.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, cmd runner.Command) (runner.Output, error) {
			_, hasDeadline := ctx.Deadline()
			suite.True(hasDeadline)

			suite.Equal("freqtrade", cmd.Name)
			suite.Equal("backtesting", cmd.Args[0])
			suite.Equal("EmaCross", argValue(cmd.Args, "--strategy"))
			suite.Equal(suite.config.UserDataDir, argValue(cmd.Args, "--user-data-dir"))
			suite.Equal("trades", argValue(cmd.Args, "--export"))
			suite.Equal("20240101-20240301", argValue(cmd.Args, "--timerange"))

			data, err := os.ReadFile(argValue(cmd.Args, "--config"))
			suite.Require().NoError(err)

			var config map[string]any
			suite.Require().NoError(json.Unmarshal(data, &config))
			suite.EqualValues(250, config["stake_amount"])
			suite.Equal(true, config["dry_run"])

			suite.Require().NoError(os.WriteFile(argValue(cmd.Args, "--export-filename"), []byte(exportedResults), 0o600))

			return runner.Output{Stdout: "done", Stderr: "", ExitCode: 0}, nil
		})

	job := suite.job()
	job.Timerange = "20240101-20240301"

	result, err := suite.runner.Backtest(context.Background(), job)
	suite.Require().NoError(err)

	suite.Equal("EmaCross", result.Strategy)
	suite.InDelta(12.5, result.Stats.TotalReturnPct, 1e-9)
	suite.InDelta(1.42, result.Stats.Sharpe, 1e-9)
	suite.Equal(2, result.Stats.TotalTrades)
	suite.Equal(1, result.Stats.ProfitableTrades)
	suite.Equal("done", result.Stdout)

	saved, err := os.ReadFile(filepath.Join(suite.config.UserDataDir, "strategies", "EmaCross.py"))
	suite.Require().NoError(err)
	suite.Equal(job.Source, string(saved))
}

func (suite *RunnerTestSuite) TestBacktestFallsBackToSummary() {
	suite.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(runner.Output{
		Stdout:   "Result for strategy EmaCross\nTotal trades: 17\nTotal profit: 3.25%\n",
		Stderr:   "",
		ExitCode: 0,
	}, nil)

	result, err := suite.runner.Backtest(context.Background(), suite.job())
	suite.Require().NoError(err)
	suite.Equal(17, result.Stats.TotalTrades)
	suite.InDelta(3.25, result.Stats.TotalReturnPct, 1e-9)
}

func (suite *RunnerTestSuite) TestNonZeroExit() {
	suite.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(runner.Output{
		Stdout:   "",
		Stderr:   "Impossible to load Strategy",
		ExitCode: 2,
	}, nil)

	result, err := suite.runner.Backtest(context.Background(), suite.job())
	suite.Nil(result)
	suite.True(errors.HasCode(err, errors.ErrCodeRunnerFailed))
	suite.Contains(err.Error(), "Impossible to load Strategy")
}

func (suite *RunnerTestSuite) TestTimeout() {
	config := suite.config
	config.BacktestTimeout = 10 * time.Millisecond

	r, err := runner.NewRunner(config, suite.executor, nil)
	suite.Require().NoError(err)

	suite.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ runner.Command) (runner.Output, error) {
			<-ctx.Done()

			return runner.Output{ExitCode: -1}, ctx.Err()
		})

	_, err = r.Backtest(context.Background(), suite.job())
	suite.True(errors.HasCode(err, errors.ErrCodeRunnerTimeout))
}

func (suite *RunnerTestSuite) TestHyperopt() {
	stdout := "Best result:\n\n    42/100: 31 trades. Avg profit 1.2%\n\n" +
		"Best parameters:\n  buy_rsi: 27\n  trend: \"up\"\n\nOther output: ignored\n"

	suite.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cmd runner.Command) (runner.Output, error) {
			suite.Equal("hyperopt", cmd.Args[0])
			suite.Equal("SharpeHyperOptLoss", argValue(cmd.Args, "--hyperopt-loss"))
			suite.Equal("25", argValue(cmd.Args, "--epochs"))
			suite.Equal([]string{"--spaces", "buy", "sell"}, cmd.Args[len(cmd.Args)-3:])

			return runner.Output{Stdout: stdout, Stderr: "", ExitCode: 0}, nil
		})

	job := suite.job()
	job.Epochs = 25

	result, err := suite.runner.Hyperopt(context.Background(), job)
	suite.Require().NoError(err)
	suite.Equal(map[string]string{"buy_rsi": "27", "trend": `"up"`}, result.BestParams)
	suite.Empty(result.BestResult, "the line after \"Best result:\" is blank")
}

func (suite *RunnerTestSuite) TestTradeStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())

	suite.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, cmd runner.Command) (runner.Output, error) {
			suite.Equal("trade", cmd.Args[0])

			data, err := os.ReadFile(argValue(cmd.Args, "--config"))
			suite.Require().NoError(err)

			var config map[string]any
			suite.Require().NoError(json.Unmarshal(data, &config))
			suite.Equal(false, config["dry_run"])

			cancel()
			<-ctx.Done()

			return runner.Output{ExitCode: -1}, ctx.Err()
		})

	suite.NoError(suite.runner.Trade(ctx, suite.job()))
}

func (suite *RunnerTestSuite) TestBacktestAsync() {
	suite.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cmd runner.Command) (runner.Output, error) {
			suite.Require().NoError(os.WriteFile(argValue(cmd.Args, "--export-filename"), []byte(exportedResults), 0o600))

			return runner.Output{ExitCode: 0}, nil
		})

	var events []runner.Event
	for event := range suite.runner.BacktestAsync(context.Background(), suite.job()) {
		events = append(events, event)
	}

	suite.Require().Len(events, 2)
	suite.Equal(runner.EventProgress, events[0].Kind)
	suite.Equal(runner.EventFinished, events[1].Kind)
	suite.Equal(2, events[1].Backtest.Stats.TotalTrades)
}

func (suite *RunnerTestSuite) TestHyperoptAsyncFailure() {
	suite.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(runner.Output{Stderr: "boom", ExitCode: 1}, nil)

	var events []runner.Event
	for event := range suite.runner.HyperoptAsync(context.Background(), suite.job()) {
		events = append(events, event)
	}

	suite.Require().Len(events, 2)
	suite.Equal("Starting hyperopt (100 epochs)...", events[0].Message)
	suite.Equal(runner.EventFailed, events[1].Kind)
	suite.True(errors.HasCode(events[1].Err, errors.ErrCodeRunnerFailed))
}
