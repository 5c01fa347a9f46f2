package mocks

import (
	"fmt"
	"math/rand"

	"github.com/rxtech-lab/argo-strategy-builder/internal/nodes"
	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
)

// GraphGenerator generates random, well-formed strategy graphs for property
// tests and benchmarks.
type GraphGenerator struct {
	rng      *rand.Rand
	registry nodes.Registry
}

// NewGraphGenerator creates a new GraphGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewGraphGenerator(seed int64) *GraphGenerator {
	return &GraphGenerator{
		rng:      rand.New(rand.NewSource(seed)),
		registry: nodes.NewDefaultRegistry(),
	}
}

// GeneratorConfig configures the shape of generated graphs.
type GeneratorConfig struct {
	// MarketData is the number of MarketData nodes (at least 1)
	MarketData int
	// Values is the number of Indicator, Math and Logic nodes
	Values int
	// HyperoptParams is the number of HyperoptParam nodes
	HyperoptParams int
	// Plots is the number of Plot nodes
	Plots int
	// ConnectChance is the probability that an optional input is wired
	ConnectChance float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		MarketData:     1,
		Values:         12,
		HyperoptParams: 2,
		Plots:          2,
		ConnectChance:  0.8,
	}
}

var (
	indicatorTypes  = []string{"EMA", "SMA", "WMA", "RSI", "MACD", "Bollinger Bands", "Stochastic", "Williams %R", "ATR", "ADX"}
	mathOperations  = []string{"add", "subtract", "multiply", "divide", "max", "min", "abs", "crossover"}
	logicOperations = []string{"AND", "OR", "XOR", "NAND", "NOR", "NOT"}
	sides           = []string{"long", "short", "both"}
)

// Generate creates an acyclic graph with every required category. Node ids
// are "<type>-<n>"; insertion order is shuffled so the topological order is
// not the insertion order.
func (g *GraphGenerator) Generate(config GeneratorConfig) *types.Graph {
	specs := g.plan(config)

	graph := types.NewGraph()
	for _, i := range g.rng.Perm(len(specs)) {
		g.must(graph.AddNode(specs[i].node))
	}

	for _, spec := range specs {
		for _, c := range spec.inputs {
			g.must(graph.Connect(c.From, c.To))
		}
	}

	return graph
}

// GenerateCyclic creates a graph like Generate and then closes a cycle
// between two Math nodes.
func (g *GraphGenerator) GenerateCyclic(config GeneratorConfig) *types.Graph {
	graph := g.Generate(config)

	first := g.node("math", "cycle-a", map[string]types.ParamValue{})
	second := g.node("math", "cycle-b", map[string]types.ParamValue{})
	g.must(graph.AddNode(first))
	g.must(graph.AddNode(second))
	g.must(graph.Connect(types.PortRef{NodeID: first.ID, Port: "result"}, types.PortRef{NodeID: second.ID, Port: "A"}))
	g.must(graph.Connect(types.PortRef{NodeID: second.ID, Port: "result"}, types.PortRef{NodeID: first.ID, Port: "A"}))

	return graph
}

type plannedNode struct {
	node   types.Node
	inputs []types.Connection
}

// plan lays nodes out in dependency order: every input is wired to a node
// planned earlier, which keeps the graph acyclic.
func (g *GraphGenerator) plan(config GeneratorConfig) []plannedNode {
	var (
		planned []plannedNode
		feeds   []types.PortRef
		values  []types.PortRef
	)

	add := func(node types.Node, inputs ...types.Connection) {
		planned = append(planned, plannedNode{node: node, inputs: inputs})
	}

	for i := range max(config.MarketData, 1) {
		node := g.node(nodes.TypeMarketData, fmt.Sprintf("market_data-%d", i), map[string]types.ParamValue{
			"timeframe": types.String("1h"),
		})
		add(node)
		feeds = append(feeds, types.PortRef{NodeID: node.ID, Port: "candles"})
	}

	for i := range config.HyperoptParams {
		node := g.node(nodes.TypeHyperoptParam, fmt.Sprintf("hyperopt_param-%d", i), map[string]types.ParamValue{
			"param_name": types.String(fmt.Sprintf("param_%d", i)),
		})
		add(node)
		values = append(values, types.PortRef{NodeID: node.ID, Port: "value"})
	}

	for i := range config.Values {
		var node types.Node

		var inputs []types.Connection

		switch kind := g.rng.Intn(3); {
		case kind == 0 || len(values) == 0:
			node = g.node(nodes.TypeIndicator, fmt.Sprintf("indicator-%d", i), map[string]types.ParamValue{
				"indicator_type": types.String(pick(g.rng, indicatorTypes)),
				"period":         types.Int(int64(2 + g.rng.Intn(50))),
			})
			inputs = g.wire(inputs, pick(g.rng, feeds), node.ID, "candles", config.ConnectChance)
		case kind == 1:
			node = g.node(nodes.TypeMath, fmt.Sprintf("math-%d", i), map[string]types.ParamValue{
				"operation": types.String(pick(g.rng, mathOperations)),
			})
			inputs = g.wire(inputs, pick(g.rng, values), node.ID, "A", config.ConnectChance)
			inputs = g.wire(inputs, pick(g.rng, values), node.ID, "B", config.ConnectChance)
		default:
			node = g.node(nodes.TypeLogic, fmt.Sprintf("logic-%d", i), map[string]types.ParamValue{
				"operation": types.String(pick(g.rng, logicOperations)),
			})
			inputs = g.wire(inputs, pick(g.rng, values), node.ID, "condition1", config.ConnectChance)
			inputs = g.wire(inputs, pick(g.rng, values), node.ID, "condition2", config.ConnectChance)
		}

		add(node, inputs...)
		values = append(values, types.PortRef{NodeID: node.ID, Port: node.Outputs[0]})
	}

	enter := g.node(nodes.TypeEnter, "enter-0", map[string]types.ParamValue{"side": types.String(pick(g.rng, sides))})
	exit := g.node(nodes.TypeExit, "exit-0", map[string]types.ParamValue{"side": types.String("long")})

	if len(values) > 0 {
		add(enter, g.wire(nil, pick(g.rng, values), enter.ID, "signal", config.ConnectChance)...)
		add(exit, g.wire(nil, pick(g.rng, values), exit.ID, "signal", config.ConnectChance)...)
	} else {
		add(enter)
		add(exit)
	}

	for i := range config.Plots {
		node := g.node(nodes.TypePlot, fmt.Sprintf("plot-%d", i), map[string]types.ParamValue{
			"subplot": types.Bool(g.rng.Intn(2) == 0),
		})
		if len(values) > 0 {
			add(node, g.wire(nil, pick(g.rng, values), node.ID, "data", 1)...)
		} else {
			add(node)
		}
	}

	return planned
}

func (g *GraphGenerator) wire(inputs []types.Connection, from types.PortRef, to, port string, chance float64) []types.Connection {
	if g.rng.Float64() >= chance {
		return inputs
	}

	return append(inputs, types.Connection{From: from, To: types.PortRef{NodeID: to, Port: port}})
}

func (g *GraphGenerator) node(typeName, id string, params map[string]types.ParamValue) types.Node {
	node, err := g.registry.Instantiate(typeName, id, params)
	g.must(err)

	return node
}

func (g *GraphGenerator) must(err error) {
	if err != nil {
		panic(err)
	}
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}
