package compiler

import (
	"strings"

	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
)

// generateIndicator emits the talib/qtpylib call for an Indicator node. The
// input series is the upstream column when candles is wired to an Indicator,
// Math or Logic node, otherwise the node's own source parameter. Stochastic,
// Williams %R, ATR and ADX always read high/low/close.
func generateIndicator(a *Analysis, d Descriptor) Emission {
	emission := Emission{Section: SectionIndicators, Key: "", Column: "", Lines: nil, Warnings: nil}
	column, _ := VariableName(types.CategoryIndicator, d.ID)
	params := d.Parameters

	rawType := params.String("indicator_type", string(types.IndicatorTypeEMA))

	indicatorType, ok := types.ParseIndicatorType(rawType)
	if !ok {
		emission.Lines = append(emission.Lines, placeholder("Implement %s indicator", rawType))
		emission.Warnings = append(emission.Warnings, newWarning(WarnUnsupportedOperationVariant, d.ID,
			"indicator type %q is not supported", rawType))

		return emission
	}

	series, warnings := indicatorInput(a, d)
	emission.Warnings = append(emission.Warnings, warnings...)

	src := series.Python()
	target := pyColumn(column)
	period := params.Int("period", 14)

	switch indicatorType {
	case types.IndicatorTypeEMA, types.IndicatorTypeSMA, types.IndicatorTypeWMA, types.IndicatorTypeRSI:
		emission.Lines = append(emission.Lines,
			statement("%s = ta.%s(%s, timeperiod=%d)", target, indicatorType, src, period))
	case types.IndicatorTypeMACD:
		emission.Lines = append(emission.Lines, statement("%s, %s, %s = ta.MACD(%s, fastperiod=%d, slowperiod=%d, signalperiod=%d)",
			target, pyColumn(column+"_signal"), pyColumn(column+"_hist"), src,
			params.Int("macd_fast", 12), params.Int("macd_slow", 26), params.Int("macd_signal", 9)))
	case types.IndicatorTypeBollingerBands:
		bands := "bollinger_" + SanitizeIdentifier(d.ID)
		emission.Lines = append(emission.Lines,
			statement("%s = qtpylib.bollinger_bands(%s, window=%d, stds=%s)", bands, src, period, pyFloat(params.Float("bb_std", 2.0))),
			statement("%s = %s[%s]", pyColumn(column+"_upper"), bands, pyString("upper")),
			statement("%s = %s[%s]", pyColumn(column+"_middle"), bands, pyString("mid")),
			statement("%s = %s[%s]", pyColumn(column+"_lower"), bands, pyString("lower")),
			statement("%s = %s", target, pyColumn(column+"_middle")),
		)
	case types.IndicatorTypeStochastic:
		emission.Lines = append(emission.Lines, statement("%s, %s = ta.STOCH(%s, fastk_period=%d, slowk_period=%d, slowd_period=%d)",
			target, pyColumn(column+"_d"), highLowClose(),
			params.Int("stoch_k", 14), params.Int("stoch_smooth_k", 3), params.Int("stoch_d", 3)))
	case types.IndicatorTypeWilliamsR:
		emission.Lines = append(emission.Lines, statement("%s = ta.WILLR(%s, timeperiod=%d)", target, highLowClose(), period))
	case types.IndicatorTypeATR:
		emission.Lines = append(emission.Lines, statement("%s = ta.ATR(%s, timeperiod=%d)", target, highLowClose(), period))
	case types.IndicatorTypeADX:
		emission.Lines = append(emission.Lines,
			statement("%s = ta.ADX(%s, timeperiod=%d)", target, highLowClose(), params.Int("adx_period", period)))
	}

	if params.Bool("smooth_indicator", false) {
		method := strings.ToUpper(strings.TrimSpace(params.String("smooth_method", "SMA")))
		switch method {
		case "SMA", "EMA", "WMA":
			emission.Lines = append(emission.Lines,
				statement("%s = ta.%s(%s, timeperiod=%d)", target, method, target, params.Int("smooth_period", 3)))
		default:
			emission.Lines = append(emission.Lines, placeholder("Implement %s smoothing", method))
			emission.Warnings = append(emission.Warnings, newWarning(WarnUnsupportedOperationVariant, d.ID,
				"smoothing method %q is not supported", method))
		}
	}

	return emission
}

// indicatorInput picks the series an indicator reads.
func indicatorInput(a *Analysis, d Descriptor) (Operand, []Warning) {
	upstream, warnings := resolveInput(a, d, "candles")
	if upstream.IsSome() && upstream.Unwrap().IsColumn() {
		if ref := d.Source("candles"); ref.IsSome() {
			if source, ok := a.Descriptor(ref.Unwrap().NodeID); ok && source.Category != types.CategoryMarketData {
				return upstream.Unwrap(), warnings
			}
		}
	}

	raw := d.Parameters.String("source", string(types.PriceSourceClose))

	source, ok := types.ParsePriceSource(raw)
	if !ok {
		warnings = append(warnings, newWarning(WarnUnsupportedOperationVariant, d.ID,
			"price source %q is not supported, using close", raw))
		source = types.PriceSourceClose
	}

	return priceSeries(source), warnings
}

func highLowClose() string {
	return pyColumn("high") + ", " + pyColumn("low") + ", " + pyColumn("close")
}
