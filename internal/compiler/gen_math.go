package compiler

import (
	"strings"

	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
)

var binaryOperators = map[string]string{
	"add":      "+",
	"subtract": "-",
	"multiply": "*",
	"divide":   "/",
	"power":    "**",
}

var mathFunctions = map[string]string{
	"max":        "np.maximum",
	"min":        "np.minimum",
	"crossover":  "qtpylib.crossed_above",
	"crossunder": "qtpylib.crossed_below",
}

// generateMath emits an elementwise operation between A and B. B falls back to
// the constant parameter when unwired or when use_constant is set.
func generateMath(a *Analysis, d Descriptor) Emission {
	emission := Emission{Section: SectionIndicators, Key: "", Column: "", Lines: nil, Warnings: nil}
	column, _ := VariableName(types.CategoryMath, d.ID)
	target := pyColumn(column)
	params := d.Parameters
	operation := strings.ToLower(strings.TrimSpace(params.String("operation", "add")))

	inputA, warnings := resolveInput(a, d, "A")
	emission.Warnings = append(emission.Warnings, warnings...)

	if inputA.IsNone() {
		emission.Lines = append(emission.Lines, placeholder("Connect input A of math node %s (%s)", d.ID, operation))
		emission.Warnings = append(emission.Warnings, newWarning(WarnUnresolvedInput, d.ID,
			"math node has no value on input A"))

		return emission
	}

	left := inputA.Unwrap().Python()
	right := pyFloat(params.Float("constant", 0))

	if !params.Bool("use_constant", false) {
		inputB, bWarnings := resolveInput(a, d, "B")
		emission.Warnings = append(emission.Warnings, bWarnings...)

		if inputB.IsSome() {
			right = inputB.Unwrap().Python()
		}
	}

	switch {
	case binaryOperators[operation] != "":
		emission.Lines = append(emission.Lines, statement("%s = %s %s %s", target, left, binaryOperators[operation], right))
	case operation == "abs":
		emission.Lines = append(emission.Lines, statement("%s = np.abs(%s)", target, left))
	case operation == "crossover" || operation == "crossunder":
		emission.Lines = append(emission.Lines,
			statement("%s = %s(%s, %s).astype(int)", target, mathFunctions[operation], left, right))
	case mathFunctions[operation] != "":
		emission.Lines = append(emission.Lines, statement("%s = %s(%s, %s)", target, mathFunctions[operation], left, right))
	default:
		emission.Lines = append(emission.Lines, placeholder("Implement %s math operation", operation))
		emission.Warnings = append(emission.Warnings, newWarning(WarnUnsupportedOperationVariant, d.ID,
			"math operation %q is not supported", operation))

		return emission
	}

	if shift := params.Int("shift_periods", 0); shift != 0 {
		emission.Lines = append(emission.Lines, statement("%s = %s.shift(%d)", target, target, shift))
	}

	if window := params.Int("rolling_window", 1); window > 1 {
		emission.Lines = append(emission.Lines, statement("%s = %s.rolling(window=%d).mean()", target, target, window))
	}

	return emission
}
