package compiler

import (
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
)

// Operand is a resolved input: either a dataframe column or a free Python
// expression (a hyperopt parameter value or a derived price series).
type Operand struct {
	Column string
	Expr   string
}

// ColumnOperand references a dataframe column.
func ColumnOperand(column string) Operand {
	return Operand{Column: column, Expr: ""}
}

// ExprOperand wraps a Python expression.
func ExprOperand(expr string) Operand {
	return Operand{Column: "", Expr: expr}
}

// IsColumn reports whether the operand is a plain column reference.
func (o Operand) IsColumn() bool {
	return o.Column != ""
}

// Python renders the operand as a Python expression.
func (o Operand) Python() string {
	if o.IsColumn() {
		return pyColumn(o.Column)
	}

	return o.Expr
}

// priceSeries returns the operand for a price source. Derived sources are
// computed inline from the raw columns.
func priceSeries(source types.PriceSource) Operand {
	switch source {
	case types.PriceSourceHL2:
		return ExprOperand("((" + pyColumn("high") + " + " + pyColumn("low") + ") / 2)")
	case types.PriceSourceHLC3:
		return ExprOperand("((" + pyColumn("high") + " + " + pyColumn("low") + " + " + pyColumn("close") + ") / 3)")
	case types.PriceSourceOHLC4:
		return ExprOperand("((" + pyColumn("open") + " + " + pyColumn("high") + " + " + pyColumn("low") + " + " +
			pyColumn("close") + ") / 4)")
	default:
		return ColumnOperand(string(source))
	}
}

// marketDataOperand resolves a MarketData node to the series named by its
// source parameter.
func marketDataOperand(d Descriptor) Operand {
	source, ok := types.ParsePriceSource(d.Parameters.String("source", string(types.PriceSourceClose)))
	if !ok {
		source = types.PriceSourceClose
	}

	return priceSeries(source)
}

// defaultHyperoptParamName is the registry default for param_name. Nodes that
// keep it are declared under a name derived from their id instead.
const defaultHyperoptParamName = "param"

// hyperoptParamName is the attribute a HyperoptParam node is declared under,
// e.g. "param_h1" for node "h1" without an explicit param_name.
func hyperoptParamName(d Descriptor) string {
	name := SanitizeIdentifier(strings.TrimSpace(d.Parameters.String("param_name", "")))
	if name == "" || name == defaultHyperoptParamName {
		return defaultHyperoptParamName + "_" + SanitizeIdentifier(d.ID)
	}

	return name
}

// resolveInput follows the first connection into port and maps the source
// node to an operand. An unwired port resolves to None. A port wired to a node
// that produces no value also resolves to None and yields a warning.
func resolveInput(a *Analysis, d Descriptor, port string) (optional.Option[Operand], []Warning) {
	ref := d.Source(port)
	if ref.IsNone() {
		return optional.None[Operand](), nil
	}

	source, ok := a.Descriptor(ref.Unwrap().NodeID)
	if !ok {
		return optional.None[Operand](), nil
	}

	switch source.Category {
	case types.CategoryIndicator, types.CategoryMath, types.CategoryLogic:
		column, _ := VariableName(source.Category, source.ID)

		return optional.Some(ColumnOperand(column)), nil
	case types.CategoryMarketData:
		return optional.Some(marketDataOperand(source)), nil
	case types.CategoryHyperoptParam:
		return optional.Some(ExprOperand("self." + hyperoptParamName(source) + ".value")), nil
	default:
		return optional.None[Operand](), []Warning{newWarning(WarnUnresolvedInput, d.ID,
			"input %s is connected to %s node %s, which produces no value", port, source.Category, source.ID)}
	}
}
