package runner

import (
	"cmp"
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"github.com/shopspring/decimal"
)

// BacktestStats summarizes one strategy's backtest.
type BacktestStats struct {
	TotalReturnPct   float64 `json:"total_return_pct"`
	Sharpe           float64 `json:"sharpe"`
	MaxDrawdownPct   float64 `json:"max_drawdown_pct"`
	TotalTrades      int     `json:"total_trades"`
	ProfitableTrades int     `json:"profitable_trades"`
	AvgProfitPct     float64 `json:"avg_profit_pct"`
}

// Trade is one closed backtest trade.
type Trade struct {
	Pair           string  `json:"pair"`
	IsShort        bool    `json:"is_short"`
	OpenDate       string  `json:"open_date"`
	CloseDate      string  `json:"close_date"`
	CloseTimestamp int64   `json:"close_timestamp"`
	ProfitRatio    float64 `json:"profit_ratio"`
	ProfitAbs      float64 `json:"profit_abs"`
	ExitReason     string  `json:"exit_reason"`
}

// EquityPoint is the account value after a trade closed.
type EquityPoint struct {
	Time        time.Time       `json:"time"`
	Equity      decimal.Decimal `json:"equity"`
	DrawdownPct decimal.Decimal `json:"drawdown_pct"`
}

// BacktestResult is a parsed backtest run.
type BacktestResult struct {
	Strategy string        `json:"strategy"`
	Stats    BacktestStats `json:"stats"`
	Trades   []Trade       `json:"trades"`
	Stdout   string        `json:"-"`
	Stderr   string        `json:"-"`
}

// HyperoptResult is a parsed hyperopt run.
type HyperoptResult struct {
	BestResult string            `json:"best_result"`
	BestParams map[string]string `json:"best_params"`
	Stdout     string            `json:"-"`
	Stderr     string            `json:"-"`
}

type strategyReport struct {
	ProfitTotalPct float64         `json:"profit_total_pct"`
	Sharpe         float64         `json:"sharpe"`
	MaxDrawdownPct float64         `json:"max_drawdown_pct"`
	Trades         json.RawMessage `json:"trades"`
	Wins           int             `json:"wins"`
	ProfitMeanPct  float64         `json:"profit_mean_pct"`
}

type backtestExport struct {
	Strategy map[string]strategyReport `json:"strategy"`
	Trades   []Trade                   `json:"trades"`
}

// ParseBacktestExport reads the framework's exported results. The report of
// strategy is used when present, otherwise the first one by name.
//
// Depending on the framework version the per-strategy "trades" field is
// either the trade count or the trade list; both are accepted.
func ParseBacktestExport(data []byte, strategy string) (*BacktestResult, error) {
	var export backtestExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRunnerResultParse, "failed to parse backtest results", err)
	}

	if len(export.Strategy) == 0 {
		return nil, errors.New(errors.ErrCodeRunnerResultParse, "backtest results contain no strategy report")
	}

	name := strategy
	if _, ok := export.Strategy[name]; !ok {
		names := make([]string, 0, len(export.Strategy))
		for key := range export.Strategy {
			names = append(names, key)
		}

		slices.Sort(names)
		name = names[0]
	}

	report := export.Strategy[name]
	result := &BacktestResult{
		Strategy: name,
		Stats: BacktestStats{
			TotalReturnPct:   report.ProfitTotalPct,
			Sharpe:           report.Sharpe,
			MaxDrawdownPct:   report.MaxDrawdownPct,
			TotalTrades:      0,
			ProfitableTrades: report.Wins,
			AvgProfitPct:     report.ProfitMeanPct,
		},
		Trades: export.Trades,
	}

	if len(report.Trades) > 0 {
		var (
			count  int
			trades []Trade
		)

		switch {
		case json.Unmarshal(report.Trades, &count) == nil:
			result.Stats.TotalTrades = count
		case json.Unmarshal(report.Trades, &trades) == nil:
			result.Trades = trades
			result.Stats.TotalTrades = len(trades)
		default:
			return nil, errors.Newf(errors.ErrCodeRunnerResultParse, "unexpected trades field for strategy %s", name)
		}
	}

	if result.Stats.TotalTrades == 0 {
		result.Stats.TotalTrades = len(result.Trades)
	}

	return result, nil
}

// ParseSummary fills trade count and total return from the console summary.
// It is used when no exported results file exists.
func ParseSummary(stdout string, stats *BacktestStats) {
	for _, line := range strings.Split(stdout, "\n") {
		_, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		value = strings.TrimSpace(value)

		switch {
		case strings.Contains(line, "Total trades"):
			if n, err := strconv.Atoi(value); err == nil {
				stats.TotalTrades = n
			}
		case strings.Contains(line, "Total profit"):
			if pct, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64); err == nil {
				stats.TotalReturnPct = pct
			}
		}
	}
}

// ParseHyperoptOutput scans console output for the "Best result:" line and
// the "Best parameters:" block, which ends at the first blank line.
func ParseHyperoptOutput(stdout string) *HyperoptResult {
	result := &HyperoptResult{BestResult: "", BestParams: map[string]string{}}
	lines := strings.Split(stdout, "\n")

	for i, line := range lines {
		if strings.Contains(line, "Best result:") && i+1 < len(lines) {
			result.BestResult = strings.TrimSpace(lines[i+1])
		}

		if !strings.Contains(line, "Best parameters:") {
			continue
		}

		for _, param := range lines[i+1:] {
			if strings.TrimSpace(param) == "" {
				break
			}

			if key, value, found := strings.Cut(param, ":"); found {
				result.BestParams[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
		}
	}

	return result
}

// EquityCurve replays closed trades, ordered by close time, on a starting
// balance. Drawdown is the cumulative profit in percent.
func (r *BacktestResult) EquityCurve(startBalance decimal.Decimal) []EquityPoint {
	trades := slices.Clone(r.Trades)
	slices.SortStableFunc(trades, func(a, b Trade) int {
		return cmp.Compare(a.CloseTimestamp, b.CloseTimestamp)
	})

	hundred := decimal.NewFromInt(100)
	cumulative := decimal.Zero
	points := make([]EquityPoint, 0, len(trades))

	for _, trade := range trades {
		cumulative = cumulative.Add(decimal.NewFromFloat(trade.ProfitRatio))
		points = append(points, EquityPoint{
			Time:        time.UnixMilli(trade.CloseTimestamp).UTC(),
			Equity:      startBalance.Mul(decimal.NewFromInt(1).Add(cumulative)),
			DrawdownPct: cumulative.Mul(hundred),
		})
	}

	return points
}
