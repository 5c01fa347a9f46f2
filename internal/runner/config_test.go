package runner_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-strategy-builder/internal/runner"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) write(content string) string {
	path := filepath.Join(suite.T().TempDir(), "runner.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	return path
}

func (suite *ConfigTestSuite) TestDefaultConfig() {
	config := runner.DefaultConfig()

	suite.Equal("freqtrade", config.Executable)
	suite.Equal("user_data", config.UserDataDir)
	suite.Equal(5*time.Minute, config.BacktestTimeout)
	suite.Equal(30*time.Minute, config.HyperoptTimeout)
	suite.Equal(100, config.Epochs)
	suite.Equal("SharpeHyperOptLoss", config.HyperoptLoss)
	suite.Equal([]string{"buy", "sell"}, config.Spaces)
	suite.Equal(true, config.Framework["dry_run"])
	suite.NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestLoadConfig() {
	path := suite.write(`
executable: /opt/freqtrade/bin/freqtrade
backtest_timeout: 90s
epochs: 300
spaces: [buy, roi, stoploss]
framework:
  stake_currency: BUSD
  max_open_trades: 5
`)

	config, err := runner.LoadConfig(path)
	suite.Require().NoError(err)

	suite.Equal("/opt/freqtrade/bin/freqtrade", config.Executable)
	suite.Equal(90*time.Second, config.BacktestTimeout)
	suite.Equal(30*time.Minute, config.HyperoptTimeout, "unset keys keep defaults")
	suite.Equal(300, config.Epochs)
	suite.Equal([]string{"buy", "roi", "stoploss"}, config.Spaces)
	suite.Equal("BUSD", config.Framework["stake_currency"])
	suite.Equal(5, config.Framework["max_open_trades"])
	suite.Equal("spot", config.Framework["trading_mode"], "framework keys are merged")
}

func (suite *ConfigTestSuite) TestLoadConfigErrors() {
	_, err := runner.LoadConfig(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = runner.LoadConfig(suite.write("epochs: [1, 2]\n"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = runner.LoadConfig(suite.write("spaces: [everything]\n"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
	suite.Contains(err.Error(), "Spaces")
}

func (suite *ConfigTestSuite) TestNewRunnerValidates() {
	config := runner.DefaultConfig()
	config.Executable = ""

	_, err := runner.NewRunner(config, runner.NewExecExecutor(), nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

type ResultsTestSuite struct {
	suite.Suite
}

func TestResultsSuite(t *testing.T) {
	suite.Run(t, new(ResultsTestSuite))
}

func (suite *ResultsTestSuite) TestParseBacktestExportWithTradeCount() {
	data := `{
  "strategy": {
    "Other": {"profit_total_pct": 1, "trades": 3},
    "Alpha": {"profit_total_pct": 2, "trades": 5, "wins": 4}
  },
  "trades": [{"pair": "BTC/USDT", "profit_ratio": 0.01}]
}`

	result, err := runner.ParseBacktestExport([]byte(data), "Missing")
	suite.Require().NoError(err)
	suite.Equal("Alpha", result.Strategy, "falls back to the first report by name")
	suite.Equal(5, result.Stats.TotalTrades)
	suite.Equal(4, result.Stats.ProfitableTrades)
	suite.Len(result.Trades, 1)
}

func (suite *ResultsTestSuite) TestParseBacktestExportErrors() {
	for _, data := range []string{`not json`, `{"strategy": {}}`, `{"strategy": {"A": {"trades": "many"}}}`} {
		_, err := runner.ParseBacktestExport([]byte(data), "A")
		suite.True(errors.HasCode(err, errors.ErrCodeRunnerResultParse), data)
	}
}

func (suite *ResultsTestSuite) TestEquityCurve() {
	result := &runner.BacktestResult{
		Trades: []runner.Trade{
			{Pair: "B", CloseTimestamp: 2000, ProfitRatio: -0.05},
			{Pair: "A", CloseTimestamp: 1000, ProfitRatio: 0.1},
		},
	}

	points := result.EquityCurve(decimal.NewFromInt(1000))
	suite.Require().Len(points, 2)

	suite.Equal(time.UnixMilli(1000).UTC(), points[0].Time)
	suite.Equal("1100", points[0].Equity.String())
	suite.Equal("10", points[0].DrawdownPct.String())
	suite.Equal("1050", points[1].Equity.String())
	suite.Equal("5", points[1].DrawdownPct.String())
}
