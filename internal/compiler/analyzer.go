package compiler

import (
	"slices"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
)

// Descriptor is the analyzer's view of one node.
type Descriptor struct {
	ID         string
	Type       string
	Category   types.Category
	Name       string
	Parameters types.Parameters
	Inputs     []types.PortLinks
	Outputs    []types.PortLinks
}

// Source returns the first output port connected to the named input port.
func (d Descriptor) Source(port string) optional.Option[types.PortRef] {
	for _, link := range d.Inputs {
		if link.Port == port && len(link.Connected) > 0 {
			return optional.Some(link.Connected[0])
		}
	}

	return optional.None[types.PortRef]()
}

// Analysis is the structured form of a graph: descriptors by id, the same
// descriptors partitioned by category, and a dependency-respecting order.
type Analysis struct {
	nodes      map[string]Descriptor
	insertion  []string
	byCategory [types.CategoryCount][]string
	order      []string
}

// Descriptor returns the descriptor of a node.
func (a *Analysis) Descriptor(id string) (Descriptor, bool) {
	d, ok := a.nodes[id]

	return d, ok
}

// Len returns the number of nodes.
func (a *Analysis) Len() int {
	return len(a.insertion)
}

// Order returns node ids in execution order.
func (a *Analysis) Order() []string {
	return slices.Clone(a.order)
}

// Ordered returns descriptors in execution order.
func (a *Analysis) Ordered() []Descriptor {
	return a.collect(a.order)
}

// Category returns the descriptors of one category in graph insertion order.
func (a *Analysis) Category(category types.Category) []Descriptor {
	if !category.Valid() {
		return nil
	}

	return a.collect(a.byCategory[category])
}

// Count returns the number of nodes of a category.
func (a *Analysis) Count(category types.Category) int {
	if !category.Valid() {
		return 0
	}

	return len(a.byCategory[category])
}

func (a *Analysis) collect(ids []string) []Descriptor {
	descriptors := make([]Descriptor, 0, len(ids))
	for _, id := range ids {
		descriptors = append(descriptors, a.nodes[id])
	}

	return descriptors
}

// Analyze builds an Analysis from a graph view. It fails on an empty graph, a
// node without parameters, a connection to a node that is not in the graph,
// and on cycles. A cycle error names one concrete cycle.
func Analyze(graph types.GraphView) (*Analysis, error) {
	if graph == nil {
		return nil, errors.New(errors.ErrCodeEmptyGraph, "graph has no nodes")
	}

	nodes := graph.AllNodes()
	if len(nodes) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyGraph, "graph has no nodes")
	}

	analysis := &Analysis{
		nodes:      make(map[string]Descriptor, len(nodes)),
		insertion:  make([]string, 0, len(nodes)),
		byCategory: [types.CategoryCount][]string{},
		order:      nil,
	}

	for _, node := range nodes {
		if !node.Category.Valid() {
			return nil, errors.Newf(errors.ErrCodeUnknownNodeType, "node %s has unknown category %d", node.ID, node.Category)
		}

		if _, exists := analysis.nodes[node.ID]; exists {
			return nil, errors.Newf(errors.ErrCodeDuplicateNode, "node %s appears more than once", node.ID)
		}

		params := graph.Parameters(node.ID)
		if params.Len() == 0 {
			return nil, errors.Newf(errors.ErrCodeMissingParameters, "node %s (%s) has an empty parameter map", node.ID, node.Category)
		}

		analysis.nodes[node.ID] = Descriptor{
			ID:         node.ID,
			Type:       node.Type,
			Category:   node.Category,
			Name:       node.Name,
			Parameters: params,
			Inputs:     graph.InputPorts(node.ID),
			Outputs:    graph.OutputPorts(node.ID),
		}
		analysis.insertion = append(analysis.insertion, node.ID)
		analysis.byCategory[node.Category] = append(analysis.byCategory[node.Category], node.ID)
	}

	order, err := sortTopologically(analysis)
	if err != nil {
		return nil, err
	}

	analysis.order = order

	return analysis, nil
}

// sortTopologically runs Kahn's algorithm. Ready nodes are taken in insertion
// order and successors are released in the order their edges were recorded.
func sortTopologically(a *Analysis) ([]string, error) {
	successors := make(map[string][]string, len(a.insertion))
	inDegree := make(map[string]int, len(a.insertion))

	for _, id := range a.insertion {
		for _, link := range a.nodes[id].Inputs {
			for _, source := range link.Connected {
				if _, ok := a.nodes[source.NodeID]; !ok {
					return nil, errors.Newf(errors.ErrCodeDanglingConnection,
						"input %s of node %s is connected to missing node %s", link.Port, id, source.NodeID)
				}

				successors[source.NodeID] = append(successors[source.NodeID], id)
				inDegree[id]++
			}
		}
	}

	queue := make([]string, 0, len(a.insertion))
	for _, id := range a.insertion {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(a.insertion))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, next := range successors[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(a.insertion) {
		cycle := findCycle(a, order)

		return nil, errors.Newf(errors.ErrCodeCyclicGraph, "graph contains a cycle: %s", strings.Join(cycle, " -> ")).
			WithDetails(cycle[:len(cycle)-1]...)
	}

	return order, nil
}

// findCycle walks predecessors among the nodes Kahn could not place until a
// node repeats. Every unplaced node has an unplaced predecessor, so the walk
// always closes. The result starts and ends with the same id, rotated so the
// earliest inserted node of the cycle comes first.
func findCycle(a *Analysis, placed []string) []string {
	done := make(map[string]bool, len(placed))
	for _, id := range placed {
		done[id] = true
	}

	predecessor := func(id string) string {
		for _, link := range a.nodes[id].Inputs {
			for _, source := range link.Connected {
				if !done[source.NodeID] {
					return source.NodeID
				}
			}
		}

		return ""
	}

	var start string

	for _, id := range a.insertion {
		if !done[id] {
			start = id

			break
		}
	}

	seen := map[string]int{start: 0}
	walk := []string{start}
	current := start

	for {
		prev := predecessor(current)
		if prev == "" {
			return []string{start, start}
		}

		if at, ok := seen[prev]; ok {
			walk = walk[at:]

			break
		}

		seen[prev] = len(walk)
		walk = append(walk, prev)
		current = prev
	}

	// walk runs against the edges; flip it so each id feeds the next.
	slices.Reverse(walk)

	position := make(map[string]int, len(a.insertion))
	for i, id := range a.insertion {
		position[id] = i
	}

	first := 0
	for i, id := range walk {
		if position[id] < position[walk[first]] {
			first = i
		}
	}

	cycle := append(slices.Clone(walk[first:]), walk[:first]...)

	return append(cycle, cycle[0])
}
