package nodes

import "github.com/rxtech-lab/argo-strategy-builder/internal/types"

// Serialized type names of the built-in kinds.
const (
	TypeMarketData    = "market_data"
	TypeIndicator     = "indicator"
	TypeMath          = "math"
	TypeLogic         = "logic"
	TypeEnter         = "enter"
	TypeExit          = "exit"
	TypeHyperoptParam = "hyperopt_param"
	TypePlot          = "plot"
)

// BuiltinKinds returns the eight node kinds of the strategy editor with their
// default parameter sets.
func BuiltinKinds() []Kind {
	return []Kind{
		marketDataKind(),
		indicatorKind(),
		mathKind(),
		logicKind(),
		enterKind(),
		exitKind(),
		hyperoptParamKind(),
		plotKind(),
	}
}

func marketDataKind() Kind {
	return Kind{
		Type:     TypeMarketData,
		Category: types.CategoryMarketData,
		Name:     "Market Data",
		Aliases:  []string{"MarketDataNode", "frequi.nodes.MarketDataNode"},
		Inputs:   nil,
		Outputs:  []string{"candles"},
		Defaults: map[string]types.ParamValue{
			"pair":                    types.String("BTC/USDT"),
			"timeframe":               types.String("1h"),
			"source":                  types.String("close"),
			"lookback":                types.Int(500),
			"exchange":                types.String("binance"),
			"data_source":             types.String("live"),
			"data_file":               types.String(""),
			"validate_data":           types.Bool(true),
			"fill_missing":            types.Bool(true),
			"remove_outliers":         types.Bool(false),
			"cache_data":              types.Bool(true),
			"refresh_interval":        types.Int(60),
			"data_quality_threshold":  types.Float(0.95),
			"max_gap_minutes":         types.Int(30),
			"timezone":                types.String("UTC"),
			"round_timestamps":        types.Bool(true),
			"backtest_start_date":     types.String(""),
			"use_ohlcv_preprocessing": types.Bool(false),
			"volume_filter_enabled":   types.Bool(false),
		},
	}
}

func indicatorKind() Kind {
	return Kind{
		Type:     TypeIndicator,
		Category: types.CategoryIndicator,
		Name:     "Indicator",
		Aliases:  []string{"IndicatorNode", "frequi.nodes.IndicatorNode"},
		Inputs:   []string{"candles"},
		Outputs:  []string{"values"},
		Defaults: map[string]types.ParamValue{
			"indicator_type":   types.String(string(types.IndicatorTypeEMA)),
			"period":           types.Int(14),
			"source":           types.String("close"),
			"rsi_overbought":   types.Int(70),
			"rsi_oversold":     types.Int(30),
			"macd_fast":        types.Int(12),
			"macd_slow":        types.Int(26),
			"macd_signal":      types.Int(9),
			"bb_period":        types.Int(20),
			"bb_std":           types.Float(2.0),
			"stoch_k":          types.Int(14),
			"stoch_d":          types.Int(3),
			"stoch_smooth_k":   types.Int(3),
			"adx_period":       types.Int(14),
			"adx_threshold":    types.Int(25),
			"smooth_indicator": types.Bool(false),
			"smooth_method":    types.String("SMA"),
			"smooth_period":    types.Int(3),
			"normalize_values": types.Bool(false),
			"apply_filters":    types.Bool(false),
			"filter_strength":  types.Float(0.1),
			"use_heiken_ashi":  types.Bool(false),
		},
	}
}

func mathKind() Kind {
	return Kind{
		Type:     TypeMath,
		Category: types.CategoryMath,
		Name:     "Math",
		Aliases:  []string{"MathNode", "frequi.nodes.MathNode"},
		Inputs:   []string{"A", "B"},
		Outputs:  []string{"result"},
		Defaults: map[string]types.ParamValue{
			"operation":           types.String("add"),
			"constant":            types.Float(0.0),
			"use_constant":        types.Bool(false),
			"comparison":          types.String("greater"),
			"threshold":           types.Float(0.0),
			"shift_periods":       types.Int(0),
			"rolling_window":      types.Int(1),
			"normalize":           types.Bool(false),
			"precision_digits":    types.Int(8),
			"handle_nan_values":   types.String("forward_fill"),
			"apply_rounding":      types.Bool(false),
			"min_value_threshold": types.Null(),
			"max_value_threshold": types.Null(),
			"outlier_detection":   types.Bool(false),
			"outlier_method":      types.String("iqr"),
		},
	}
}

func logicKind() Kind {
	return Kind{
		Type:     TypeLogic,
		Category: types.CategoryLogic,
		Name:     "Logic",
		Aliases:  []string{"LogicNode", "frequi.nodes.LogicNode"},
		Inputs:   []string{"condition1", "condition2", "condition3"},
		Outputs:  []string{"result"},
		Defaults: map[string]types.ParamValue{
			"operation":            types.String("AND"),
			"use_condition3":       types.Bool(false),
			"consecutive_bars":     types.Int(1),
			"within_bars":          types.Int(5),
			"invert_result":        types.Bool(false),
			"confidence_threshold": types.Float(0.5),
			"signal_persistence":   types.Int(1),
			"reset_on_opposite":    types.Bool(true),
			"enable_debugging":     types.Bool(false),
			"custom_logic_formula": types.String(""),
			"priority_weight":      types.Float(1.0),
			"timeout_bars":         types.Int(10),
			"memory_enabled":       types.Bool(false),
			"state_duration":       types.Int(1),
			"complex_evaluation":   types.Bool(false),
		},
	}
}

func enterKind() Kind {
	return Kind{
		Type:     TypeEnter,
		Category: types.CategoryEnter,
		Name:     "Enter",
		Aliases:  []string{"EnterNode", "EnterSignalNode", "frequi.nodes.EnterNode"},
		Inputs:   []string{"signal"},
		Outputs:  []string{"entry"},
		Defaults: map[string]types.ParamValue{
			"side":                    types.String(string(types.SideLong)),
			"position_size":           types.Float(1.0),
			"require_volume":          types.Bool(false),
			"min_volume_ratio":        types.Float(1.5),
			"max_spread_pct":          types.Float(0.5),
			"max_open_positions":      types.Int(1),
			"min_roi":                 types.Float(0.01),
			"cooldown_bars":           types.Int(5),
			"enable_stop_loss":        types.Bool(true),
			"stop_loss_pct":           types.Float(2.0),
			"enable_take_profit":      types.Bool(true),
			"take_profit_pct":         types.Float(5.0),
			"entry_signal_strength":   types.Float(1.0),
			"confirm_with_volume":     types.Bool(false),
			"avoid_weekend_entries":   types.Bool(false),
			"market_condition_filter": types.String("any"),
			"time_window_start":       types.String("00:00"),
			"time_window_end":         types.String("23:59"),
			"max_entries_per_day":     types.Int(10),
		},
	}
}

func exitKind() Kind {
	return Kind{
		Type:     TypeExit,
		Category: types.CategoryExit,
		Name:     "Exit",
		Aliases:  []string{"ExitNode", "ExitSignalNode", "frequi.nodes.ExitNode"},
		Inputs:   []string{"signal"},
		Outputs:  []string{"exit"},
		Defaults: map[string]types.ParamValue{
			"side":                          types.String(string(types.SideLong)),
			"exit_type":                     types.String("signal"),
			"stop_loss_pct":                 types.Float(2.0),
			"stop_loss_type":                types.String("fixed"),
			"take_profit_pct":               types.Float(5.0),
			"take_profit_type":              types.String("fixed"),
			"trailing_stop":                 types.Bool(false),
			"trailing_stop_positive":        types.Float(0.01),
			"trailing_stop_positive_offset": types.Float(0.0),
			"max_hold_hours":                types.Int(24),
			"force_exit_at_close":           types.Bool(false),
			"partial_exit":                  types.Bool(false),
			"partial_exit_at_pct":           types.Float(3.0),
			"partial_exit_ratio":            types.Float(0.5),
			"exit_signal_strength":          types.Float(1.0),
			"confirm_exit_with_volume":      types.Bool(false),
			"emergency_exit_enabled":        types.Bool(true),
			"max_hold_days":                 types.Int(30),
			"exit_on_weekend":               types.Bool(false),
			"break_even_enabled":            types.Bool(false),
			"break_even_threshold":          types.Float(1.0),
		},
	}
}

func hyperoptParamKind() Kind {
	return Kind{
		Type:     TypeHyperoptParam,
		Category: types.CategoryHyperoptParam,
		Name:     "Hyperopt Param",
		Aliases:  []string{"HyperoptParamNode", "frequi.nodes.HyperoptParamNode"},
		Inputs:   nil,
		Outputs:  []string{"value"},
		Defaults: map[string]types.ParamValue{
			"param_name":           types.String("param"),
			"param_type":           types.String("Integer"),
			"space":                types.String("buy"),
			"min_value":            types.Int(0),
			"max_value":            types.Int(100),
			"step":                 types.Int(1),
			"default_value":        types.Int(50),
			"choices":              types.List(),
			"optimize":             types.Bool(true),
			"load_from_file":       types.Bool(false),
			"description":          types.String(""),
			"optimization_metric":  types.String("profit"),
			"enable_constraints":   types.Bool(false),
			"constraint_formula":   types.String(""),
			"adaptive_ranges":      types.Bool(false),
			"correlation_analysis": types.Bool(false),
			"parameter_importance": types.Float(1.0),
		},
	}
}

func plotKind() Kind {
	return Kind{
		Type:     TypePlot,
		Category: types.CategoryPlot,
		Name:     "Plot",
		Aliases:  []string{"PlotNode", "frequi.nodes.PlotNode"},
		Inputs:   []string{"data"},
		Outputs:  nil,
		Defaults: map[string]types.ParamValue{
			"label":            types.String("Plot"),
			"color":            types.String("blue"),
			"plot_type":        types.String("line"),
			"subplot":          types.Bool(false),
			"line_width":       types.Float(1.0),
			"line_style":       types.String("solid"),
			"opacity":          types.Float(1.0),
			"normalize_data":   types.Bool(false),
			"smooth_data":      types.Bool(false),
			"smooth_periods":   types.Int(3),
			"show_legend":      types.Bool(true),
			"plot_on_volume":   types.Bool(false),
			"plot_markers":     types.Bool(false),
			"marker_size":      types.Int(5),
			"plot_fill_alpha":  types.Float(0.3),
			"custom_title":     types.String(""),
			"y_axis_label":     types.String(""),
			"plot_grid":        types.Bool(true),
			"plot_annotations": types.Bool(false),
		},
	}
}
