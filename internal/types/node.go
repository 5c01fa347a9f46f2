package types

import "slices"

// PortDirection tells whether a port consumes or produces data.
type PortDirection string

const (
	PortInput  PortDirection = "input"
	PortOutput PortDirection = "output"
)

// PortRef addresses one port on one node.
type PortRef struct {
	NodeID string `json:"node_id" yaml:"node_id"`
	Port   string `json:"port" yaml:"port"`
}

// String renders the reference in the "<node_id>.<port>" form used by graph documents.
func (r PortRef) String() string {
	return r.NodeID + "." + r.Port
}

// Connection links a source output port to a destination input port. Data
// flows From -> To.
type Connection struct {
	From PortRef `json:"from" yaml:"from"`
	To   PortRef `json:"to" yaml:"to"`
}

// Node is one typed unit of the strategy graph.
type Node struct {
	// ID is unique within a graph.
	ID string
	// Type is the serialized kind name, e.g. "indicator".
	Type string
	// Category drives how the compiler interprets the node.
	Category Category
	// Name is the human-readable display name.
	Name string
	// Inputs lists the input port names in declaration order.
	Inputs []string
	// Outputs lists the output port names in declaration order.
	Outputs []string
	// Parameters is the node's parameter snapshot.
	Parameters Parameters
	// Position is the editor canvas position. The compiler ignores it.
	Position [2]float64
}

// HasPort reports whether the node declares a port with the given name and direction.
func (n Node) HasPort(direction PortDirection, name string) bool {
	if direction == PortInput {
		return slices.Contains(n.Inputs, name)
	}

	return slices.Contains(n.Outputs, name)
}

// Clone returns a copy that shares no slices with n.
func (n Node) Clone() Node {
	clone := n
	clone.Inputs = slices.Clone(n.Inputs)
	clone.Outputs = slices.Clone(n.Outputs)
	clone.Parameters = NewParameters(n.Parameters.Map())

	return clone
}
