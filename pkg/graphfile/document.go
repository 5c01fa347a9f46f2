// Package graphfile reads and writes persisted strategy graphs.
//
// A document is the editor's save format: a node list with parameters and a
// connection list of "<node_id>.<port>" endpoints. Documents are accepted as
// JSON or YAML and are turned into a types.Graph by Build.
package graphfile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/strategy"
	"gopkg.in/yaml.v3"
)

// Document is a persisted strategy graph.
type Document struct {
	Version      string           `json:"version,omitempty" yaml:"version,omitempty" jsonschema:"title=Version,description=Builder version that wrote the document (semver)"`
	StrategyName string           `json:"strategy_name,omitempty" yaml:"strategy_name,omitempty" jsonschema:"title=Strategy Name,description=Generated class name"`
	Description  string           `json:"description,omitempty" yaml:"description,omitempty" jsonschema:"title=Description,description=Class docstring of the generated strategy"`
	Nodes        []NodeSpec       `json:"nodes" yaml:"nodes" jsonschema:"title=Nodes,required" validate:"required,min=1,dive"`
	Connections  []ConnectionSpec `json:"connections" yaml:"connections" jsonschema:"title=Connections" validate:"dive"`
}

// NodeSpec is one node of a document.
type NodeSpec struct {
	ID         string    `json:"id" yaml:"id" jsonschema:"title=ID,description=Unique node id; generated when empty"`
	Type       string    `json:"type" yaml:"type" jsonschema:"title=Type,description=Serialized node kind,required,enum=market_data,enum=indicator,enum=math,enum=logic,enum=enter,enum=exit,enum=hyperopt_param,enum=plot" validate:"required"`
	Name       string    `json:"name,omitempty" yaml:"name,omitempty" jsonschema:"title=Name"`
	Position   []float64 `json:"position,omitempty" yaml:"position,omitempty" jsonschema:"title=Position,description=Editor canvas position [x y]" validate:"omitempty,len=2"`
	Parameters ParamMap  `json:"parameters,omitempty" yaml:"parameters,omitempty" jsonschema:"title=Parameters"`
}

// ConnectionSpec links "<node_id>.<port>" endpoints. The port may be left
// out, which selects the node's first output (From) or first input (To).
type ConnectionSpec struct {
	From string `json:"from" yaml:"from" jsonschema:"title=From,required" validate:"required"`
	To   string `json:"to" yaml:"to" jsonschema:"title=To,required" validate:"required"`
}

// ParamMap holds node parameters keyed by name.
type ParamMap map[string]types.ParamValue

// JSONSchema describes parameter values as scalars or string lists.
func (ParamMap) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		AdditionalProperties: &jsonschema.Schema{
			AnyOf: []*jsonschema.Schema{
				{Type: "boolean"},
				{Type: "number"},
				{Type: "string"},
				{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
				{Type: "null"},
			},
		},
	}
}

// Validate checks the struct constraints of the document.
func (d *Document) Validate() error {
	validate := validator.New()
	if err := validate.Struct(d); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGraphDocument, "invalid graph document", err)
	}

	return nil
}

// ParseJSON decodes and validates a JSON document.
func ParseJSON(data []byte) (*Document, error) {
	var doc Document

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraphDocument, "failed to parse JSON graph document", err)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return &doc, nil
}

// ParseYAML decodes and validates a YAML document.
func ParseYAML(data []byte) (*Document, error) {
	var doc Document

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraphDocument, "failed to parse YAML graph document", err)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Load reads a document from disk. Files ending in .yaml or .yml are parsed
// as YAML, everything else as JSON.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidGraphDocument, err, "failed to read graph document %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// EncodeJSON renders the document as indented JSON.
func (d *Document) EncodeJSON() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraphDocument, "failed to encode graph document", err)
	}

	return append(data, '\n'), nil
}

// EncodeYAML renders the document as YAML.
func (d *Document) EncodeYAML() ([]byte, error) {
	var out bytes.Buffer

	encoder := yaml.NewEncoder(&out)
	encoder.SetIndent(2)

	if err := encoder.Encode(d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraphDocument, "failed to encode graph document", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraphDocument, "failed to encode graph document", err)
	}

	return out.Bytes(), nil
}

// Schema returns the JSON schema of a graph document.
func Schema() (string, error) {
	return strategy.ToJSONSchema(Document{})
}
