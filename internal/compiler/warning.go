package compiler

import "fmt"

// WarningCode classifies a non-fatal compilation problem.
type WarningCode string

const (
	// WarnUnresolvedSignalInput is recorded for an Enter or Exit node whose
	// signal input is not connected.
	WarnUnresolvedSignalInput WarningCode = "unresolved_signal_input"
	// WarnUnsupportedOperationVariant is recorded when a node asks for an
	// indicator, operation or parameter type that is not implemented.
	WarnUnsupportedOperationVariant WarningCode = "unsupported_operation_variant"
	// WarnUnresolvedInput is recorded when a required input is missing or is
	// wired to a node that produces no value.
	WarnUnresolvedInput WarningCode = "unresolved_input"
	// WarnDuplicateHyperoptParam is recorded when two HyperoptParam nodes
	// declare the same parameter name.
	WarnDuplicateHyperoptParam WarningCode = "duplicate_hyperopt_param"
	// WarnDuplicatePlotColumn is recorded when two Plot nodes draw the same
	// column in the same plot.
	WarnDuplicatePlotColumn WarningCode = "duplicate_plot_column"
)

// Warning is a soft problem. The generated source is still valid but
// incomplete where a warning was recorded.
type Warning struct {
	Code    WarningCode `json:"code" yaml:"code"`
	NodeID  string      `json:"node_id" yaml:"node_id"`
	Message string      `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	if w.NodeID == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}

	return fmt.Sprintf("%s (%s): %s", w.Code, w.NodeID, w.Message)
}

func newWarning(code WarningCode, nodeID, format string, args ...any) Warning {
	return Warning{
		Code:    code,
		NodeID:  nodeID,
		Message: fmt.Sprintf(format, args...),
	}
}
