package compiler

import (
	"strings"

	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
)

var logicJoiners = map[string]string{
	"AND":  " & ",
	"OR":   " | ",
	"XOR":  " ^ ",
	"NAND": " & ",
	"NOR":  " | ",
}

// generateLogic combines condition inputs into a 0/1 column. Each operand is
// truth-tested with "> 0". NOT reads condition1 only; the binary operations
// need condition1 and condition2 and take condition3 when it is wired.
func generateLogic(a *Analysis, d Descriptor) Emission {
	emission := Emission{Section: SectionIndicators, Key: "", Column: "", Lines: nil, Warnings: nil}
	column, _ := VariableName(types.CategoryLogic, d.ID)
	operation := strings.ToUpper(strings.TrimSpace(d.Parameters.String("operation", "AND")))

	_, binary := logicJoiners[operation]
	if !binary && operation != "NOT" {
		emission.Lines = append(emission.Lines, placeholder("Implement %s logic operation", operation))
		emission.Warnings = append(emission.Warnings, newWarning(WarnUnsupportedOperationVariant, d.ID,
			"logic operation %q is not supported", operation))

		return emission
	}

	var conditions []string

	for _, port := range []string{"condition1", "condition2", "condition3"} {
		operand, warnings := resolveInput(a, d, port)
		emission.Warnings = append(emission.Warnings, warnings...)

		if operand.IsSome() {
			conditions = append(conditions, "("+operand.Unwrap().Python()+" > 0)")
		} else if port != "condition3" {
			conditions = append(conditions, "")
		}
	}

	required := 2
	if operation == "NOT" {
		required = 1
	}

	for i := range required {
		if conditions[i] == "" {
			emission.Lines = append(emission.Lines, placeholder("Implement %s logic operation", operation))
			emission.Warnings = append(emission.Warnings, newWarning(WarnUnresolvedInput, d.ID,
				"logic operation %s needs condition%d", operation, i+1))

			return emission
		}
	}

	var expr string

	switch operation {
	case "NOT":
		expr = "~" + conditions[0]
	case "NAND", "NOR":
		expr = "~(" + strings.Join(conditions, logicJoiners[operation]) + ")"
	default:
		expr = strings.Join(conditions, logicJoiners[operation])
	}

	if d.Parameters.Bool("invert_result", false) {
		expr = "~(" + expr + ")"
	}

	emission.Lines = append(emission.Lines, statement("%s = (%s).astype(int)", pyColumn(column), expr))

	return emission
}
