package types

import "strings"

// IndicatorType is the technical indicator an Indicator node computes. The
// value is the display name used in graph documents.
type IndicatorType string

const (
	IndicatorTypeEMA            IndicatorType = "EMA"
	IndicatorTypeSMA            IndicatorType = "SMA"
	IndicatorTypeWMA            IndicatorType = "WMA"
	IndicatorTypeRSI            IndicatorType = "RSI"
	IndicatorTypeMACD           IndicatorType = "MACD"
	IndicatorTypeBollingerBands IndicatorType = "Bollinger Bands"
	IndicatorTypeStochastic     IndicatorType = "Stochastic"
	IndicatorTypeWilliamsR      IndicatorType = "Williams %R"
	IndicatorTypeATR            IndicatorType = "ATR"
	IndicatorTypeADX            IndicatorType = "ADX"
)

// indicatorAliases maps lower-cased spellings seen in saved graphs to their
// canonical type.
var indicatorAliases = map[string]IndicatorType{
	"bb":                    IndicatorTypeBollingerBands,
	"bollinger":             IndicatorTypeBollingerBands,
	"bollinger-bands":       IndicatorTypeBollingerBands,
	"bollinger_bands":       IndicatorTypeBollingerBands,
	"stoch":                 IndicatorTypeStochastic,
	"stochastic_oscillator": IndicatorTypeStochastic,
	"williams_r":            IndicatorTypeWilliamsR,
	"willr":                 IndicatorTypeWilliamsR,
}

// AllIndicatorTypes returns every supported indicator type.
func AllIndicatorTypes() []IndicatorType {
	return []IndicatorType{
		IndicatorTypeEMA,
		IndicatorTypeSMA,
		IndicatorTypeWMA,
		IndicatorTypeRSI,
		IndicatorTypeMACD,
		IndicatorTypeBollingerBands,
		IndicatorTypeStochastic,
		IndicatorTypeWilliamsR,
		IndicatorTypeATR,
		IndicatorTypeADX,
	}
}

// ParseIndicatorType resolves a name case-insensitively, accepting the common
// aliases ("BB", "STOCH", ...).
func ParseIndicatorType(name string) (IndicatorType, bool) {
	trimmed := strings.TrimSpace(name)

	for _, t := range AllIndicatorTypes() {
		if strings.EqualFold(string(t), trimmed) {
			return t, true
		}
	}

	if t, ok := indicatorAliases[strings.ToLower(trimmed)]; ok {
		return t, true
	}

	return "", false
}

// PriceSource is a column an indicator can read when it is not fed by another
// value-producing node.
type PriceSource string

const (
	PriceSourceClose  PriceSource = "close"
	PriceSourceOpen   PriceSource = "open"
	PriceSourceHigh   PriceSource = "high"
	PriceSourceLow    PriceSource = "low"
	PriceSourceVolume PriceSource = "volume"
	PriceSourceHL2    PriceSource = "hl2"
	PriceSourceHLC3   PriceSource = "hlc3"
	PriceSourceOHLC4  PriceSource = "ohlc4"
)

// ParsePriceSource resolves a price source case-insensitively.
func ParsePriceSource(name string) (PriceSource, bool) {
	switch source := PriceSource(strings.ToLower(strings.TrimSpace(name))); source {
	case PriceSourceClose, PriceSourceOpen, PriceSourceHigh, PriceSourceLow, PriceSourceVolume,
		PriceSourceHL2, PriceSourceHLC3, PriceSourceOHLC4:
		return source, true
	default:
		return "", false
	}
}

// Derived reports whether the source is computed from several price columns.
func (s PriceSource) Derived() bool {
	return s == PriceSourceHL2 || s == PriceSourceHLC3 || s == PriceSourceOHLC4
}

// Side selects which trade direction an Enter or Exit node applies to.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
	SideBoth  Side = "both"
)

// ParseSide resolves a side case-insensitively. Unknown values fall back to long.
func ParseSide(name string) Side {
	switch side := Side(strings.ToLower(strings.TrimSpace(name))); side {
	case SideShort, SideBoth:
		return side
	default:
		return SideLong
	}
}

// Long reports whether the side covers long trades.
func (s Side) Long() bool {
	return s == SideLong || s == SideBoth
}

// Short reports whether the side covers short trades.
func (s Side) Short() bool {
	return s == SideShort || s == SideBoth
}
