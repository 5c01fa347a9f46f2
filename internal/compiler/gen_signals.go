package compiler

import (
	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
)

// signalRule describes how one trade side turns a signal into a flag column.
type signalRule struct {
	column     string
	comparison string
	trades     string
}

// Entries fire on a positive signal for long and a negative one for short.
// Exits mirror that: long closes on a negative signal, short on a positive one.
var (
	entryRules = map[types.Side]signalRule{
		types.SideLong:  {column: "enter_long", comparison: "> 0", trades: "long"},
		types.SideShort: {column: "enter_short", comparison: "< 0", trades: "short"},
	}
	exitRules = map[types.Side]signalRule{
		types.SideLong:  {column: "exit_long", comparison: "< 0", trades: "long"},
		types.SideShort: {column: "exit_short", comparison: "> 0", trades: "short"},
	}
)

func generateEntry(a *Analysis, d Descriptor) Emission {
	return generateSignal(a, d, SectionEntry, "entry", entryRules)
}

func generateExit(a *Analysis, d Descriptor) Emission {
	return generateSignal(a, d, SectionExit, "exit", exitRules)
}

// generateSignal emits one flag assignment per side the node trades, or a
// placeholder comment per side when the signal input has no value. The
// missing-signal warning itself comes from Validate.
func generateSignal(a *Analysis, d Descriptor, section Section, label string, rules map[types.Side]signalRule) Emission {
	emission := Emission{Section: section, Key: "", Column: "", Lines: nil, Warnings: nil}
	side := types.ParseSide(d.Parameters.String("side", string(types.SideLong)))

	signal, warnings := resolveInput(a, d, "signal")
	emission.Warnings = append(emission.Warnings, warnings...)

	var sides []types.Side
	if side.Long() {
		sides = append(sides, types.SideLong)
	}

	if side.Short() {
		sides = append(sides, types.SideShort)
	}

	for _, s := range sides {
		rule := rules[s]

		if signal.IsNone() {
			emission.Lines = append(emission.Lines, placeholder("Define %s condition for %s trades", label, rule.trades))

			continue
		}

		emission.Lines = append(emission.Lines, statement("dataframe.loc[(%s %s), %s] = 1",
			signal.Unwrap().Python(), rule.comparison, pyString(rule.column)))
	}

	return emission
}
