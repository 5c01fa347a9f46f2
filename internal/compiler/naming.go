// Package compiler turns a strategy graph into Freqtrade strategy source.
//
// The pipeline is Analyze -> Validate -> generate sections -> Render. Every
// step except the Exporter façade is free of I/O and shared state, so an
// Exporter can be used from many goroutines at once.
package compiler

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
)

var invalidIdentifierChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

var variablePrefixes = [types.CategoryCount]string{
	types.CategoryIndicator: "indicator",
	types.CategoryMath:      "math",
	types.CategoryLogic:     "logic",
}

// SanitizeIdentifier replaces every character that is not valid in a Python
// identifier with an underscore.
func SanitizeIdentifier(s string) string {
	return invalidIdentifierChars.ReplaceAllString(s, "_")
}

// VariableName returns the dataframe column a node materializes its value
// under, e.g. "indicator_ema_1" for Indicator node "ema-1". Only Indicator,
// Math and Logic nodes own a column.
func VariableName(category types.Category, id string) (string, bool) {
	if !category.Valid() || variablePrefixes[category] == "" {
		return "", false
	}

	return variablePrefixes[category] + "_" + SanitizeIdentifier(id), true
}

// ClassName turns a strategy name into a Python class name.
func ClassName(name string) string {
	name = SanitizeIdentifier(strings.TrimSpace(name))
	if strings.Trim(name, "_") == "" {
		return DefaultStrategyName
	}

	if name[0] >= '0' && name[0] <= '9' {
		name = "Strategy" + name
	}

	return name
}

// pyString renders a Python string literal.
func pyString(s string) string {
	return strconv.Quote(s)
}

// pyColumn renders a dataframe column reference.
func pyColumn(column string) string {
	return "dataframe[" + pyString(column) + "]"
}

// pyFloat renders a float literal that Python reads back as a float.
func pyFloat(f float64) string {
	text := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(text, ".eE") {
		text += ".0"
	}

	return text
}

func pyBool(b bool) string {
	if b {
		return "True"
	}

	return "False"
}

func pyStringList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, pyString(v))
	}

	return "[" + strings.Join(quoted, ", ") + "]"
}
