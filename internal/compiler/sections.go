package compiler

import (
	"fmt"
	"strings"

	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
)

// Section is one logical block of the generated strategy.
type Section int

const (
	SectionImports Section = iota
	SectionHyperopt
	SectionIndicators
	SectionEntry
	SectionExit
	SectionMainPlot
	SectionSubplots

	SectionCount
)

var sectionNames = [SectionCount]string{
	SectionImports:    "imports",
	SectionHyperopt:   "hyperopt",
	SectionIndicators: "indicators",
	SectionEntry:      "entry",
	SectionExit:       "exit",
	SectionMainPlot:   "main_plot",
	SectionSubplots:   "subplots",
}

func (s Section) String() string {
	if s < 0 || s >= SectionCount {
		return "unknown"
	}

	return sectionNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Section) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LineKind tells a renderer what a line holds.
type LineKind int

const (
	// LineStatement is executable code.
	LineStatement LineKind = iota
	// LineComment is an informational comment.
	LineComment
	// LinePlaceholder is a comment standing in for code that could not be
	// generated.
	LinePlaceholder
)

// Line is one unindented line of target source.
type Line struct {
	Kind LineKind `json:"kind"`
	Text string   `json:"text"`
}

func statement(format string, args ...any) Line {
	return Line{Kind: LineStatement, Text: fmt.Sprintf(format, args...)}
}

func comment(format string, args ...any) Line {
	return Line{Kind: LineComment, Text: "# " + fmt.Sprintf(format, args...)}
}

func placeholder(format string, args ...any) Line {
	return Line{Kind: LinePlaceholder, Text: "# TODO: " + fmt.Sprintf(format, args...)}
}

// Sections holds the generated lines of every section.
type Sections [SectionCount][]Line

// Text returns the lines of a section as plain strings.
func (s Sections) Text(section Section) []string {
	lines := make([]string, 0, len(s[section]))
	for _, line := range s[section] {
		lines = append(lines, line.Text)
	}

	return lines
}

// Statements returns the statement lines of a section.
func (s Sections) Statements(section Section) []string {
	var lines []string

	for _, line := range s[section] {
		if line.Kind == LineStatement {
			lines = append(lines, line.Text)
		}
	}

	return lines
}

// Emission is what a generator produces for one node.
type Emission struct {
	Section Section
	// Key identifies the declaration for de-duplication or grouping: the
	// hyperopt parameter name or the subplot label.
	Key string
	// Column is the dataframe column a plot entry draws.
	Column   string
	Lines    []Line
	Warnings []Warning
}

// plotSlot is one column within the main plot or a labelled subplot.
type plotSlot struct {
	subplot bool
	label   string
	column  string
}

type nodeGenerator func(a *Analysis, d Descriptor) Emission

// generators routes every category to its generator. The array is sized by
// CategoryCount so a category without an entry is a nil func, caught by the
// test that walks every category.
var generators = [types.CategoryCount]nodeGenerator{
	types.CategoryMarketData:    generateMarketData,
	types.CategoryIndicator:     generateIndicator,
	types.CategoryMath:          generateMath,
	types.CategoryLogic:         generateLogic,
	types.CategoryEnter:         generateEntry,
	types.CategoryExit:          generateExit,
	types.CategoryHyperoptParam: generateHyperoptParam,
	types.CategoryPlot:          generatePlot,
}

// GenerateSections runs the imports generator once and every node generator
// in execution order. Hyperopt declarations with a repeated name are dropped,
// as are plot entries for a column already drawn in the same plot. Subplot
// entries are grouped under their label.
func GenerateSections(a *Analysis) (Sections, []Warning) {
	var (
		sections Sections
		warnings []Warning
	)

	sections[SectionImports] = generateImports(a)

	declared := make(map[string]string)
	plotted := make(map[plotSlot]string)
	subplots := newSubplotGroups()

	for _, d := range a.Ordered() {
		emission := generators[d.Category](a, d)
		warnings = append(warnings, emission.Warnings...)

		if len(emission.Lines) == 0 {
			continue
		}

		switch emission.Section {
		case SectionHyperopt:
			if emission.Key != "" {
				if owner, exists := declared[emission.Key]; exists {
					warnings = append(warnings, newWarning(WarnDuplicateHyperoptParam, d.ID,
						"hyperopt parameter %q is already declared by node %s", emission.Key, owner))

					continue
				}

				declared[emission.Key] = d.ID
			}
		case SectionMainPlot, SectionSubplots:
			slot := plotSlot{subplot: false, label: "", column: emission.Column}
			if emission.Section == SectionSubplots {
				slot.subplot = true
				slot.label = emission.Key
			}

			if owner, exists := plotted[slot]; exists {
				warnings = append(warnings, newWarning(WarnDuplicatePlotColumn, d.ID,
					"column %q is already plotted by node %s", emission.Column, owner))

				continue
			}

			plotted[slot] = d.ID

			if emission.Section == SectionSubplots {
				subplots.add(emission.Key, emission.Lines)

				continue
			}
		}

		sections[emission.Section] = append(sections[emission.Section], emission.Lines...)
	}

	sections[SectionSubplots] = subplots.lines()

	return sections, warnings
}

func generateMarketData(_ *Analysis, _ Descriptor) Emission {
	return Emission{Section: SectionIndicators, Key: "", Column: "", Lines: nil, Warnings: nil}
}

// subplotGroups collects subplot entries by label in first-seen order.
type subplotGroups struct {
	labels  []string
	entries map[string][]string
}

func newSubplotGroups() *subplotGroups {
	return &subplotGroups{
		labels:  nil,
		entries: make(map[string][]string),
	}
}

func (g *subplotGroups) add(label string, lines []Line) {
	if _, exists := g.entries[label]; !exists {
		g.labels = append(g.labels, label)
	}

	for _, line := range lines {
		g.entries[label] = append(g.entries[label], line.Text)
	}
}

func (g *subplotGroups) lines() []Line {
	lines := make([]Line, 0, len(g.labels))
	for _, label := range g.labels {
		lines = append(lines, statement("%s: {%s}", pyString(label), strings.Join(g.entries[label], ", ")))
	}

	return lines
}
