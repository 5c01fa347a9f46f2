package mocks

import (
	"testing"

	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
)

func TestGraphGenerator_Generate(t *testing.T) {
	gen := NewGraphGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()

	graph := gen.Generate(config)

	expected := config.MarketData + config.Values + config.HyperoptParams + config.Plots + 2
	if graph.Len() != expected {
		t.Errorf("expected %d nodes, got %d", expected, graph.Len())
	}

	counts := make(map[types.Category]int)
	for _, node := range graph.AllNodes() {
		counts[node.Category]++

		if node.Parameters.Len() == 0 {
			t.Errorf("node %s has no parameters", node.ID)
		}
	}

	for _, category := range []types.Category{types.CategoryMarketData, types.CategoryEnter, types.CategoryExit} {
		if counts[category] == 0 {
			t.Errorf("missing %s node", category)
		}
	}

	for _, c := range graph.Connections() {
		if _, ok := graph.Node(c.From.NodeID); !ok {
			t.Errorf("connection from missing node %s", c.From.NodeID)
		}
	}
}

func TestGraphGenerator_Reproducibility(t *testing.T) {
	config := DefaultConfig()

	first := NewGraphGenerator(42).Generate(config)
	second := NewGraphGenerator(42).Generate(config)

	if len(first.Connections()) != len(second.Connections()) {
		t.Fatalf("connection counts differ: %d and %d", len(first.Connections()), len(second.Connections()))
	}

	for i, c := range first.Connections() {
		if c != second.Connections()[i] {
			t.Errorf("connection %d differs: %v and %v", i, c, second.Connections()[i])
		}
	}

	for i, node := range first.AllNodes() {
		if node.ID != second.AllNodes()[i].ID {
			t.Errorf("insertion order differs at %d", i)
		}
	}
}

func TestGraphGenerator_Cyclic(t *testing.T) {
	graph := NewGraphGenerator(7).GenerateCyclic(DefaultConfig())

	if _, ok := graph.Node("cycle-a"); !ok {
		t.Fatal("expected cycle-a node")
	}

	found := 0
	for _, c := range graph.Connections() {
		if c.From.NodeID == "cycle-a" && c.To.NodeID == "cycle-b" || c.From.NodeID == "cycle-b" && c.To.NodeID == "cycle-a" {
			found++
		}
	}

	if found != 2 {
		t.Errorf("expected 2 cycle connections, got %d", found)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.MarketData != 1 {
		t.Errorf("expected 1 market data node, got %d", config.MarketData)
	}

	if config.ConnectChance <= 0 || config.ConnectChance > 1 {
		t.Errorf("connect chance out of range: %f", config.ConnectChance)
	}
}
