package nodes

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
)

// Kind describes one node type: its serialized name, category, ports and the
// default parameters every new node of this type starts with.
type Kind struct {
	Type     string                      `json:"type"`
	Category types.Category              `json:"category"`
	Name     string                      `json:"name"`
	Aliases  []string                    `json:"aliases,omitempty"`
	Inputs   []string                    `json:"inputs"`
	Outputs  []string                    `json:"outputs"`
	Defaults map[string]types.ParamValue `json:"defaults"`
}

// FirstInput returns the first declared input port, or "" when there is none.
func (k Kind) FirstInput() string {
	if len(k.Inputs) == 0 {
		return ""
	}

	return k.Inputs[0]
}

// FirstOutput returns the first declared output port, or "" when there is none.
func (k Kind) FirstOutput() string {
	if len(k.Outputs) == 0 {
		return ""
	}

	return k.Outputs[0]
}

// Registry maps serialized node type names to node kinds.
type Registry interface {
	// Register adds a kind. Type names and aliases must be unique.
	Register(kind Kind) error
	// Get looks up a kind by type name or alias, case-insensitively.
	Get(typeName string) (Kind, error)
	// ForCategory returns the kind registered for a category.
	ForCategory(category types.Category) (Kind, error)
	// List returns every registered kind ordered by category.
	List() []Kind
	// NewNode creates a node of the given type with default parameters. An
	// empty id is replaced by a generated one.
	NewNode(typeName, id string) (types.Node, error)
	// Instantiate creates a node whose parameters are the kind defaults
	// overlaid with params. Keys the kind does not know are kept.
	Instantiate(typeName, id string, params map[string]types.ParamValue) (types.Node, error)
}

// RegistryV1 is the map-backed Registry.
type RegistryV1 struct {
	kinds   map[string]Kind
	aliases map[string]string
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() Registry {
	return &RegistryV1{
		kinds:   make(map[string]Kind),
		aliases: make(map[string]string),
		mu:      sync.RWMutex{},
	}
}

// NewDefaultRegistry creates a registry holding the eight built-in kinds.
func NewDefaultRegistry() Registry {
	registry := NewRegistry()

	for _, kind := range BuiltinKinds() {
		if err := registry.Register(kind); err != nil {
			panic(err)
		}
	}

	return registry
}

// Register adds a kind to the registry.
func (r *RegistryV1) Register(kind Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if kind.Type == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "node kind type must not be empty")
	}

	if !kind.Category.Valid() {
		return errors.Newf(errors.ErrCodeInvalidType, "node kind %s has invalid category %d", kind.Type, kind.Category)
	}

	if len(kind.Defaults) == 0 {
		return errors.Newf(errors.ErrCodeMissingParameters, "node kind %s has no default parameters", kind.Type)
	}

	keys := append([]string{kind.Type}, kind.Aliases...)
	for _, key := range keys {
		if _, exists := r.aliases[strings.ToLower(key)]; exists {
			return errors.Newf(errors.ErrCodeInvalidParameter, "node type %s already registered", key)
		}
	}

	r.kinds[kind.Type] = cloneKind(kind)
	for _, key := range keys {
		r.aliases[strings.ToLower(key)] = kind.Type
	}

	return nil
}

// Get retrieves a kind by type name or alias.
func (r *RegistryV1) Get(typeName string) (Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	canonical, exists := r.aliases[strings.ToLower(strings.TrimSpace(typeName))]
	if !exists {
		return Kind{}, errors.Newf(errors.ErrCodeUnknownNodeType, "node type %q is not registered", typeName)
	}

	return cloneKind(r.kinds[canonical]), nil
}

// ForCategory returns the first kind, by type name, registered for category.
func (r *RegistryV1) ForCategory(category types.Category) (Kind, error) {
	for _, kind := range r.List() {
		if kind.Category == category {
			return kind, nil
		}
	}

	return Kind{}, errors.Newf(errors.ErrCodeUnknownNodeType, "no node type registered for category %s", category)
}

// List returns all kinds ordered by category, then type name.
func (r *RegistryV1) List() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.kinds))
	for _, kind := range r.kinds {
		kinds = append(kinds, cloneKind(kind))
	}

	slices.SortFunc(kinds, func(a, b Kind) int {
		if a.Category != b.Category {
			return int(a.Category) - int(b.Category)
		}

		return strings.Compare(a.Type, b.Type)
	})

	return kinds
}

// NewNode creates a node with the kind's default parameters.
func (r *RegistryV1) NewNode(typeName, id string) (types.Node, error) {
	return r.Instantiate(typeName, id, nil)
}

// Instantiate creates a node from a kind, overlaying params on the defaults.
func (r *RegistryV1) Instantiate(typeName, id string, params map[string]types.ParamValue) (types.Node, error) {
	kind, err := r.Get(typeName)
	if err != nil {
		return types.Node{}, err
	}

	if id == "" {
		id = uuid.NewString()
	}

	values := maps.Clone(kind.Defaults)
	maps.Copy(values, params)

	return types.Node{
		ID:         id,
		Type:       kind.Type,
		Category:   kind.Category,
		Name:       kind.Name,
		Inputs:     kind.Inputs,
		Outputs:    kind.Outputs,
		Parameters: types.NewParameters(values),
		Position:   [2]float64{},
	}, nil
}

func cloneKind(kind Kind) Kind {
	kind.Aliases = slices.Clone(kind.Aliases)
	kind.Inputs = slices.Clone(kind.Inputs)
	kind.Outputs = slices.Clone(kind.Outputs)
	kind.Defaults = maps.Clone(kind.Defaults)

	return kind
}
