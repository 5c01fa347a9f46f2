package compiler

import (
	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
)

// requiredCategories must each have at least one node, with the message
// reported when they are missing.
var requiredCategories = []struct {
	category types.Category
	message  string
}{
	{category: types.CategoryMarketData, message: "strategy must have at least one Market Data node"},
	{category: types.CategoryEnter, message: "strategy must have at least one Enter node"},
	{category: types.CategoryExit, message: "strategy must have at least one Exit node"},
}

// Report is the outcome of validation. Problems are fatal; warnings are not.
type Report struct {
	Problems []string  `json:"problems"`
	Warnings []Warning `json:"warnings"`
}

// OK reports whether the graph can be compiled.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

// Err returns nil when the report has no problems, otherwise an
// ErrCodeMissingRequiredNodeCategory error carrying every problem as a detail.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}

	message := r.Problems[0]
	if len(r.Problems) > 1 {
		message = "graph is missing required node categories"
	}

	return errors.New(errors.ErrCodeMissingRequiredNodeCategory, message).WithDetails(r.Problems...)
}

// Validate checks the structural preconditions of compilation: the required
// categories are present, and Enter and Exit nodes have their signal wired.
// An unwired signal is only a warning.
func Validate(analysis *Analysis) Report {
	report := Report{
		Problems: nil,
		Warnings: nil,
	}

	for _, required := range requiredCategories {
		if analysis.Count(required.category) == 0 {
			report.Problems = append(report.Problems, required.message)
		}
	}

	for _, category := range []types.Category{types.CategoryEnter, types.CategoryExit} {
		for _, d := range analysis.Category(category) {
			if d.Source("signal").IsNone() {
				report.Warnings = append(report.Warnings, newWarning(WarnUnresolvedSignalInput, d.ID,
					"%s node %q has no signal input; a placeholder condition is generated", category, displayName(d)))
			}
		}
	}

	return report
}

func displayName(d Descriptor) string {
	if d.Name != "" {
		return d.Name
	}

	return d.ID
}
