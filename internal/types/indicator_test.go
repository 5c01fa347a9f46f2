package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func (suite *IndicatorTestSuite) TestParseIndicatorType() {
	tests := []struct {
		name     string
		input    string
		expected IndicatorType
		ok       bool
	}{
		{name: "canonical", input: "EMA", expected: IndicatorTypeEMA, ok: true},
		{name: "lower case", input: "rsi", expected: IndicatorTypeRSI, ok: true},
		{name: "display name with space", input: "Bollinger Bands", expected: IndicatorTypeBollingerBands, ok: true},
		{name: "bb alias", input: "BB", expected: IndicatorTypeBollingerBands, ok: true},
		{name: "stoch alias", input: "STOCH", expected: IndicatorTypeStochastic, ok: true},
		{name: "williams", input: "williams %r", expected: IndicatorTypeWilliamsR, ok: true},
		{name: "surrounding whitespace", input: "  macd ", expected: IndicatorTypeMACD, ok: true},
		{name: "unknown", input: "KAMA", expected: "", ok: false},
		{name: "empty", input: "", expected: "", ok: false},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			got, ok := ParseIndicatorType(tc.input)
			suite.Equal(tc.ok, ok)
			suite.Equal(tc.expected, got)
		})
	}
}

func (suite *IndicatorTestSuite) TestAllIndicatorTypesRoundTrip() {
	for _, t := range AllIndicatorTypes() {
		parsed, ok := ParseIndicatorType(string(t))
		suite.True(ok, string(t))
		suite.Equal(t, parsed)
	}
}

func (suite *IndicatorTestSuite) TestParsePriceSource() {
	source, ok := ParsePriceSource("Close")
	suite.True(ok)
	suite.Equal(PriceSourceClose, source)
	suite.False(source.Derived())

	source, ok = ParsePriceSource("hlc3")
	suite.True(ok)
	suite.True(source.Derived())

	_, ok = ParsePriceSource("vwap")
	suite.False(ok)
}

func (suite *IndicatorTestSuite) TestParseSide() {
	suite.Equal(SideLong, ParseSide("Long"))
	suite.Equal(SideShort, ParseSide("SHORT"))
	suite.Equal(SideBoth, ParseSide("both"))
	suite.Equal(SideLong, ParseSide("sideways"))

	suite.True(SideBoth.Long())
	suite.True(SideBoth.Short())
	suite.True(SideLong.Long())
	suite.False(SideLong.Short())
	suite.False(SideShort.Long())
}
