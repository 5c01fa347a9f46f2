package graphfile

import (
	"strings"

	"github.com/rxtech-lab/argo-strategy-builder/internal/nodes"
	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
	"github.com/rxtech-lab/argo-strategy-builder/internal/version"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
)

// Build turns a document into a graph. Node kinds come from registry; any
// parameter the document leaves out takes the kind's default. A document
// version, when set, must be compatible with the running builder.
func Build(doc *Document, registry nodes.Registry) (*types.Graph, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidGraphDocument, "graph document is nil")
	}

	if doc.Version != "" {
		if err := version.CheckVersionCompatibility(version.GetVersion(), doc.Version); err != nil {
			return nil, err
		}
	}

	graph := types.NewGraph()

	for _, spec := range doc.Nodes {
		node, err := registry.Instantiate(spec.Type, spec.ID, spec.Parameters)
		if err != nil {
			return nil, errors.Wrapf(errors.GetCode(err), err, "node %q", spec.ID)
		}

		if spec.Name != "" {
			node.Name = spec.Name
		}

		if len(spec.Position) == 2 {
			node.Position = [2]float64{spec.Position[0], spec.Position[1]}
		}

		if err := graph.AddNode(node); err != nil {
			return nil, err
		}
	}

	for _, c := range doc.Connections {
		from, err := resolveEndpoint(graph, c.From, types.PortOutput)
		if err != nil {
			return nil, err
		}

		to, err := resolveEndpoint(graph, c.To, types.PortInput)
		if err != nil {
			return nil, err
		}

		if err := graph.Connect(from, to); err != nil {
			return nil, err
		}
	}

	return graph, nil
}

// resolveEndpoint splits "<node_id>.<port>" on the last dot. A bare node id,
// or a node id that itself contains dots, selects the node's first port in
// the given direction.
func resolveEndpoint(graph *types.Graph, endpoint string, direction types.PortDirection) (types.PortRef, error) {
	endpoint = strings.TrimSpace(endpoint)

	if i := strings.LastIndex(endpoint, "."); i > 0 {
		ref := types.PortRef{NodeID: endpoint[:i], Port: endpoint[i+1:]}
		if node, ok := graph.Node(ref.NodeID); ok && node.HasPort(direction, ref.Port) {
			return ref, nil
		}

		if _, whole := graph.Node(endpoint); !whole {
			// Let Connect report the missing node or unknown port.
			return ref, nil
		}
	}

	node, ok := graph.Node(endpoint)
	if !ok {
		return types.PortRef{}, errors.Newf(errors.ErrCodeDanglingConnection,
			"connection endpoint %q references a missing node", endpoint)
	}

	ports := node.Outputs
	if direction == types.PortInput {
		ports = node.Inputs
	}

	if len(ports) == 0 {
		return types.PortRef{}, errors.Newf(errors.ErrCodeUnknownPort,
			"node %s has no %s port", node.ID, direction)
	}

	return types.PortRef{NodeID: node.ID, Port: ports[0]}, nil
}

// FromGraph captures a graph as a document stamped with the builder version.
func FromGraph(graph *types.Graph, strategyName, description string) *Document {
	doc := &Document{
		Version:      version.GetVersion(),
		StrategyName: strategyName,
		Description:  description,
		Nodes:        make([]NodeSpec, 0, graph.Len()),
		Connections:  make([]ConnectionSpec, 0),
	}

	for _, node := range graph.AllNodes() {
		doc.Nodes = append(doc.Nodes, NodeSpec{
			ID:         node.ID,
			Type:       node.Type,
			Name:       node.Name,
			Position:   []float64{node.Position[0], node.Position[1]},
			Parameters: ParamMap(node.Parameters.Map()),
		})
	}

	for _, c := range graph.Connections() {
		doc.Connections = append(doc.Connections, ConnectionSpec{From: c.From.String(), To: c.To.String()})
	}

	return doc
}
