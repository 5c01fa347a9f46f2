package compiler

import (
	"strings"

	"github.com/rxtech-lab/argo-strategy-builder/internal/nodes"
	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
)

// testGraph builds graphs from registry kinds. The first error sticks and is
// reported by mustBuild.
type testGraph struct {
	registry nodes.Registry
	graph    *types.Graph
	err      error
}

func newTestGraph() *testGraph {
	return &testGraph{
		registry: nodes.NewDefaultRegistry(),
		graph:    types.NewGraph(),
		err:      nil,
	}
}

func (g *testGraph) node(typeName, id string, params map[string]types.ParamValue) *testGraph {
	if g.err != nil {
		return g
	}

	node, err := g.registry.Instantiate(typeName, id, params)
	if err != nil {
		g.err = err

		return g
	}

	g.err = g.graph.AddNode(node)

	return g
}

// connect wires "from.port" to "to.port".
func (g *testGraph) connect(from, to string) *testGraph {
	if g.err != nil {
		return g
	}

	g.err = g.graph.Connect(splitRef(from), splitRef(to))

	return g
}

func (g *testGraph) mustBuild() *types.Graph {
	if g.err != nil {
		panic(g.err)
	}

	return g.graph
}

func splitRef(ref string) types.PortRef {
	i := strings.LastIndex(ref, ".")

	return types.PortRef{NodeID: ref[:i], Port: ref[i+1:]}
}

// minimalGraph has the three required categories and no connections.
func minimalGraph() *testGraph {
	return newTestGraph().
		node(nodes.TypeMarketData, "md", nil).
		node(nodes.TypeEnter, "enter", nil).
		node(nodes.TypeExit, "exit", nil)
}

// analyze is a test shortcut that panics on analysis errors.
func analyze(graph types.GraphView) *Analysis {
	analysis, err := Analyze(graph)
	if err != nil {
		panic(err)
	}

	return analysis
}

func lineTexts(lines []Line) []string {
	texts := make([]string, 0, len(lines))
	for _, line := range lines {
		texts = append(texts, line.Text)
	}

	return texts
}

func warningCodes(warnings []Warning) []WarningCode {
	codes := make([]WarningCode, 0, len(warnings))
	for _, w := range warnings {
		codes = append(codes, w.Code)
	}

	return codes
}

// viewStub is a GraphView that does not enforce the Graph invariants, so
// analyzer guards can be exercised.
type viewStub struct {
	nodes  []types.Node
	inputs map[string][]types.PortLinks
}

func (v viewStub) AllNodes() []types.Node { return v.nodes }

func (v viewStub) InputPorts(nodeID string) []types.PortLinks { return v.inputs[nodeID] }

func (v viewStub) OutputPorts(string) []types.PortLinks { return nil }

func (v viewStub) Parameters(nodeID string) types.Parameters {
	for _, n := range v.nodes {
		if n.ID == nodeID {
			return n.Parameters
		}
	}

	return types.Parameters{}
}
