package compiler

import (
	"strings"

	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
	"github.com/shopspring/decimal"
)

// generateHyperoptParam declares one framework parameter class attribute.
// Integer and Real parameters default to the midpoint of their range, a
// Categorical one to its first choice.
func generateHyperoptParam(_ *Analysis, d Descriptor) Emission {
	name := hyperoptParamName(d)
	emission := Emission{Section: SectionHyperopt, Key: name, Column: "", Lines: nil, Warnings: nil}
	params := d.Parameters
	paramType := params.String("param_type", "Integer")

	flags := hyperoptFlags(params)

	if description := strings.TrimSpace(params.String("description", "")); description != "" {
		emission.Lines = append(emission.Lines, comment("%s", description))
	}

	switch strings.ToLower(strings.TrimSpace(paramType)) {
	case "integer", "int":
		low := params.Int("min_value", 0)
		high := params.Int("max_value", 100)
		emission.Lines = append(emission.Lines, statement("%s = IntParameter(%d, %d, default=%d, %s)",
			name, low, high, floorDiv(low+high, 2), flags))
	case "real", "decimal", "float":
		low := decimal.NewFromFloat(params.Float("min_value", 0))
		high := decimal.NewFromFloat(params.Float("max_value", 1))
		mid := low.Add(high).Div(decimal.NewFromInt(2))

		emission.Lines = append(emission.Lines, statement("%s = DecimalParameter(%s, %s, default=%s%s, %s)",
			name, decimalLiteral(low), decimalLiteral(high), decimalLiteral(mid), decimalsArgument(params), flags))
	case "categorical":
		choices := params.List("choices")
		if len(choices) == 0 {
			emission.Key = ""
			emission.Lines = []Line{placeholder("Add choices for categorical parameter %s", name)}
			emission.Warnings = append(emission.Warnings, newWarning(WarnUnsupportedOperationVariant, d.ID,
				"categorical parameter %s has no choices", name))

			return emission
		}

		emission.Lines = append(emission.Lines, statement("%s = CategoricalParameter(%s, default=%s, %s)",
			name, pyStringList(choices), pyString(choices[0]), flags))
	default:
		emission.Key = ""
		emission.Lines = []Line{placeholder("Implement %s hyperopt parameter %s", paramType, name)}
		emission.Warnings = append(emission.Warnings, newWarning(WarnUnsupportedOperationVariant, d.ID,
			"hyperopt parameter type %q is not supported", paramType))
	}

	return emission
}

func hyperoptFlags(params types.Parameters) string {
	space := strings.ToLower(strings.TrimSpace(params.String("space", "buy")))
	if space == "" {
		space = "buy"
	}

	return "space=" + pyString(space) +
		", optimize=" + pyBool(params.Bool("optimize", true)) +
		", load=" + pyBool(params.Bool("load_from_file", false))
}

// decimalsArgument derives the DecimalParameter precision from a fractional
// step, e.g. step 0.01 gives ", decimals=2".
func decimalsArgument(params types.Parameters) string {
	step := decimal.NewFromFloat(params.Float("step", 1))
	if !step.IsPositive() || step.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return ""
	}

	return ", decimals=" + decimal.NewFromInt32(-step.Exponent()).String()
}

func decimalLiteral(d decimal.Decimal) string {
	text := d.String()
	if !strings.Contains(text, ".") {
		text += ".0"
	}

	return text
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}

	return q
}
