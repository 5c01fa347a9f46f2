package compiler

import "strings"

// generatePlot emits a plot_config entry for a Plot node whose data input is a
// dataframe column. Anything else is skipped without a warning. A column is
// drawn once per plot; repeats are dropped in GenerateSections.
func generatePlot(a *Analysis, d Descriptor) Emission {
	emission := Emission{Section: SectionMainPlot, Key: "", Column: "", Lines: nil, Warnings: nil}
	params := d.Parameters

	data, warnings := resolveInput(a, d, "data")
	emission.Warnings = append(emission.Warnings, warnings...)

	if data.IsNone() || !data.Unwrap().IsColumn() {
		return emission
	}

	settings := []string{
		pyString("color") + ": " + pyString(params.String("color", "blue")),
		pyString("type") + ": " + pyString(strings.ToLower(params.String("plot_type", "line"))),
	}
	emission.Column = data.Unwrap().Column
	entry := statement("%s: {%s}", pyString(emission.Column), strings.Join(settings, ", "))

	if params.Bool("subplot", false) {
		emission.Section = SectionSubplots
		emission.Key = params.String("label", "Plot")
	}

	emission.Lines = append(emission.Lines, entry)

	return emission
}
