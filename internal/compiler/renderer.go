package compiler

import (
	"strings"
	"text/template"

	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
)

// Document is everything a Renderer needs to produce a strategy file.
type Document struct {
	ClassName   string
	Description string
	Timeframe   string
	CanShort    bool
	Sections    Sections
}

// Renderer turns generated sections into a complete source file.
type Renderer interface {
	Render(doc Document) (string, error)
}

// FreqtradeRenderer renders an IStrategy (interface version 3) class.
type FreqtradeRenderer struct {
	tmpl *template.Template
}

var _ Renderer = (*FreqtradeRenderer)(nil)

// NewFreqtradeRenderer parses the strategy skeleton.
func NewFreqtradeRenderer() *FreqtradeRenderer {
	return &FreqtradeRenderer{
		tmpl: template.Must(template.New("freqtrade").Parse(freqtradeTemplate)),
	}
}

type freqtradeView struct {
	ClassName   string
	Description string
	Timeframe   string
	CanShort    string
	Imports     []string
	Hyperopt    []string
	Indicators  []string
	Entry       []string
	Exit        []string
	MainPlot    []string
	Subplots    []string
	HasPlot     bool
}

// Render implements Renderer. The hyperopt block and plot_config are left out
// when their sections are empty.
func (r *FreqtradeRenderer) Render(doc Document) (string, error) {
	description := strings.TrimSpace(doc.Description)
	if description == "" {
		description = "Strategy generated from a visual strategy graph."
	}

	view := freqtradeView{
		ClassName:   doc.ClassName,
		Description: strings.ReplaceAll(description, `"""`, `\"\"\"`),
		Timeframe:   pyString(doc.Timeframe),
		CanShort:    pyBool(doc.CanShort),
		Imports:     doc.Sections.Text(SectionImports),
		Hyperopt:    doc.Sections.Text(SectionHyperopt),
		Indicators:  doc.Sections.Text(SectionIndicators),
		Entry:       doc.Sections.Text(SectionEntry),
		Exit:        doc.Sections.Text(SectionExit),
		MainPlot:    doc.Sections.Text(SectionMainPlot),
		Subplots:    doc.Sections.Text(SectionSubplots),
		HasPlot:     len(doc.Sections[SectionMainPlot])+len(doc.Sections[SectionSubplots]) > 0,
	}

	var out strings.Builder
	if err := r.tmpl.Execute(&out, view); err != nil {
		return "", errors.Wrap(errors.ErrCodeRenderFailed, "failed to render strategy", err)
	}

	return out.String(), nil
}

const freqtradeTemplate = `# Generated by argo-strategy-builder. Changes are overwritten on the next export.
# pragma pylint: disable=missing-docstring, invalid-name, pointless-string-statement
{{range .Imports}}
{{.}}
{{- end}}


class {{.ClassName}}(IStrategy):
    """
    {{.Description}}
    """

    INTERFACE_VERSION = 3

    minimal_roi = {
        "60": 0.01,
        "30": 0.02,
        "0": 0.04,
    }

    stoploss = -0.10

    timeframe = {{.Timeframe}}

    can_short: bool = {{.CanShort}}

    use_exit_signal = True
    exit_profit_only = False
    ignore_roi_if_entry_signal = False

    startup_candle_count: int = 30
{{- if .Hyperopt}}
{{range .Hyperopt}}
    {{.}}
{{- end}}
{{- end}}

    def populate_indicators(self, dataframe: DataFrame, metadata: dict) -> DataFrame:
{{- range .Indicators}}
        {{.}}
{{- end}}
        return dataframe

    def populate_entry_trend(self, dataframe: DataFrame, metadata: dict) -> DataFrame:
        dataframe["enter_long"] = 0
        dataframe["enter_short"] = 0
{{- range .Entry}}
        {{.}}
{{- end}}
        return dataframe

    def populate_exit_trend(self, dataframe: DataFrame, metadata: dict) -> DataFrame:
        dataframe["exit_long"] = 0
        dataframe["exit_short"] = 0
{{- range .Exit}}
        {{.}}
{{- end}}
        return dataframe
{{- if .HasPlot}}

    @property
    def plot_config(self):
        return {
            "main_plot": {
{{- range .MainPlot}}
                {{.}},
{{- end}}
            },
            "subplots": {
{{- range .Subplots}}
                {{.}},
{{- end}}
            },
        }
{{- end}}
`
