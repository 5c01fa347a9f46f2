package types

import (
	"slices"

	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
)

// PortLinks is one port together with the opposite-direction ports wired to it.
type PortLinks struct {
	Port      string
	Connected []PortRef
}

// GraphView is the read-only surface the compiler needs from a graph.
type GraphView interface {
	// AllNodes returns every node in insertion order.
	AllNodes() []Node
	// InputPorts returns the node's input ports with their connected output ports.
	InputPorts(nodeID string) []PortLinks
	// OutputPorts returns the node's output ports with their connected input ports.
	OutputPorts(nodeID string) []PortLinks
	// Parameters returns the node's parameter snapshot.
	Parameters(nodeID string) Parameters
}

// Graph is an in-memory strategy graph. It keeps insertion order for nodes and
// connections so that every traversal is deterministic.
//
// Graph is not safe for concurrent mutation. Take a Snapshot before handing it
// to code running on another goroutine. A nil *Graph reads as an empty graph.
type Graph struct {
	nodes       []Node
	index       map[string]int
	connections []Connection
}

var _ GraphView = (*Graph)(nil)

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:       nil,
		index:       make(map[string]int),
		connections: nil,
	}
}

// AddNode appends a node. Node ids must be non-empty and unique.
func (g *Graph) AddNode(node Node) error {
	if node.ID == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "node id must not be empty")
	}

	if _, exists := g.index[node.ID]; exists {
		return errors.Newf(errors.ErrCodeDuplicateNode, "node %s already exists", node.ID)
	}

	g.index[node.ID] = len(g.nodes)
	g.nodes = append(g.nodes, node.Clone())

	return nil
}

// RemoveNode deletes a node and every connection touching it.
func (g *Graph) RemoveNode(nodeID string) bool {
	i, ok := g.index[nodeID]
	if !ok {
		return false
	}

	g.nodes = slices.Delete(g.nodes, i, i+1)
	g.connections = slices.DeleteFunc(g.connections, func(c Connection) bool {
		return c.From.NodeID == nodeID || c.To.NodeID == nodeID
	})
	g.reindex()

	return true
}

// Node returns the node with the given id.
func (g *Graph) Node(nodeID string) (Node, bool) {
	if g == nil {
		return Node{}, false
	}

	i, ok := g.index[nodeID]
	if !ok {
		return Node{}, false
	}

	return g.nodes[i], true
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}

	return len(g.nodes)
}

// Connect wires an output port to an input port. Connecting the same pair
// twice is a no-op.
func (g *Graph) Connect(from, to PortRef) error {
	source, ok := g.Node(from.NodeID)
	if !ok {
		return errors.Newf(errors.ErrCodeDanglingConnection, "connection source node %s does not exist", from.NodeID)
	}

	target, ok := g.Node(to.NodeID)
	if !ok {
		return errors.Newf(errors.ErrCodeDanglingConnection, "connection target node %s does not exist", to.NodeID)
	}

	if !source.HasPort(PortOutput, from.Port) {
		return errors.Newf(errors.ErrCodeUnknownPort, "node %s has no output port %q", from.NodeID, from.Port)
	}

	if !target.HasPort(PortInput, to.Port) {
		return errors.Newf(errors.ErrCodeUnknownPort, "node %s has no input port %q", to.NodeID, to.Port)
	}

	conn := Connection{From: from, To: to}
	if slices.Contains(g.connections, conn) {
		return nil
	}

	g.connections = append(g.connections, conn)

	return nil
}

// Disconnect removes a connection. It reports whether the connection existed.
func (g *Graph) Disconnect(from, to PortRef) bool {
	before := len(g.connections)
	g.connections = slices.DeleteFunc(g.connections, func(c Connection) bool {
		return c.From == from && c.To == to
	})

	return len(g.connections) != before
}

// Connections returns every connection in insertion order.
func (g *Graph) Connections() []Connection {
	if g == nil {
		return nil
	}

	return slices.Clone(g.connections)
}

// SetParameter replaces one parameter on a node.
func (g *Graph) SetParameter(nodeID, key string, value ParamValue) error {
	i, ok := g.index[nodeID]
	if !ok {
		return errors.Newf(errors.ErrCodeInvalidParameter, "node %s does not exist", nodeID)
	}

	g.nodes[i].Parameters = g.nodes[i].Parameters.With(key, value)

	return nil
}

// Snapshot returns a deep copy of the graph.
func (g *Graph) Snapshot() *Graph {
	clone := NewGraph()
	if g == nil {
		return clone
	}

	for _, node := range g.nodes {
		clone.index[node.ID] = len(clone.nodes)
		clone.nodes = append(clone.nodes, node.Clone())
	}

	clone.connections = slices.Clone(g.connections)

	return clone
}

// AllNodes implements GraphView.
func (g *Graph) AllNodes() []Node {
	if g == nil {
		return nil
	}

	nodes := make([]Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node.Clone())
	}

	return nodes
}

// InputPorts implements GraphView.
func (g *Graph) InputPorts(nodeID string) []PortLinks {
	node, ok := g.Node(nodeID)
	if !ok {
		return nil
	}

	links := make([]PortLinks, 0, len(node.Inputs))
	for _, port := range node.Inputs {
		var connected []PortRef

		for _, c := range g.connections {
			if c.To.NodeID == nodeID && c.To.Port == port {
				connected = append(connected, c.From)
			}
		}

		links = append(links, PortLinks{Port: port, Connected: connected})
	}

	return links
}

// OutputPorts implements GraphView.
func (g *Graph) OutputPorts(nodeID string) []PortLinks {
	node, ok := g.Node(nodeID)
	if !ok {
		return nil
	}

	links := make([]PortLinks, 0, len(node.Outputs))
	for _, port := range node.Outputs {
		var connected []PortRef

		for _, c := range g.connections {
			if c.From.NodeID == nodeID && c.From.Port == port {
				connected = append(connected, c.To)
			}
		}

		links = append(links, PortLinks{Port: port, Connected: connected})
	}

	return links
}

// Parameters implements GraphView.
func (g *Graph) Parameters(nodeID string) Parameters {
	node, ok := g.Node(nodeID)
	if !ok {
		return Parameters{}
	}

	return node.Parameters
}

func (g *Graph) reindex() {
	g.index = make(map[string]int, len(g.nodes))
	for i, node := range g.nodes {
		g.index[node.ID] = i
	}
}
