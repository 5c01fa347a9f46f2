package types

import (
	"fmt"
	"strings"
)

// Category is the closed set of node kinds a strategy graph can contain.
type Category int

const (
	CategoryMarketData Category = iota
	CategoryIndicator
	CategoryMath
	CategoryLogic
	CategoryEnter
	CategoryExit
	CategoryHyperoptParam
	CategoryPlot

	// CategoryCount is the number of categories. Tables indexed by Category
	// are sized with it so a missing entry fails to compile.
	CategoryCount
)

var categoryNames = [CategoryCount]string{
	CategoryMarketData:    "MarketData",
	CategoryIndicator:     "Indicator",
	CategoryMath:          "Math",
	CategoryLogic:         "Logic",
	CategoryEnter:         "Enter",
	CategoryExit:          "Exit",
	CategoryHyperoptParam: "HyperoptParam",
	CategoryPlot:          "Plot",
}

// AllCategories returns every category in declaration order.
func AllCategories() []Category {
	categories := make([]Category, 0, CategoryCount)
	for c := Category(0); c < CategoryCount; c++ {
		categories = append(categories, c)
	}

	return categories
}

// String returns the display name of the category.
func (c Category) String() string {
	if !c.Valid() {
		return "Unknown"
	}

	return categoryNames[c]
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	return c >= 0 && c < CategoryCount
}

// ProducesValue reports whether nodes of this category materialize a value
// that downstream nodes can consume.
func (c Category) ProducesValue() bool {
	switch c {
	case CategoryMarketData, CategoryIndicator, CategoryMath, CategoryLogic, CategoryHyperoptParam:
		return true
	default:
		return false
	}
}

// ParseCategory matches a category by its display name, case-insensitively.
func ParseCategory(name string) (Category, bool) {
	for c, n := range categoryNames {
		if strings.EqualFold(n, name) {
			return Category(c), true
		}
	}

	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, ok := ParseCategory(string(text))
	if !ok {
		return fmt.Errorf("unknown node category %q", text)
	}

	*c = parsed

	return nil
}
