package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-strategy-builder/internal/runner"
	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
	"github.com/rxtech-lab/argo-strategy-builder/internal/version"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/graphfile"
	"gopkg.in/yaml.v2"
)

const (
	configDir        = "./config"
	schemaName       = "strategy-graph.json"
	sampleGraphName  = "sample-graph.yaml"
	runnerConfigName = "runner-config.yaml"
)

func main() {
	schemaPath := filepath.Join(configDir, schemaName)
	samplePath := filepath.Join(configDir, sampleGraphName)
	runnerPath := filepath.Join(configDir, runnerConfigName)

	if err := validatePaths(schemaPath, samplePath); err != nil {
		log.Fatalf("Invalid paths: %v", err)
	}

	if err := generateSchemaFile(schemaPath); err != nil {
		log.Fatalf("Failed to generate schema: %v", err)
	}

	if err := generateSampleGraph(sampleDocument(), samplePath, schemaName); err != nil {
		log.Fatalf("Failed to generate sample graph: %v", err)
	}

	if err := generateRunnerConfig(runner.DefaultConfig(), runnerPath); err != nil {
		log.Fatalf("Failed to generate runner config: %v", err)
	}

	log.Printf("Schema successfully generated at %s", schemaPath)
}

// generateSchemaFile writes the graph document JSON schema to path.
func generateSchemaFile(path string) error {
	schema, err := graphfile.Schema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(schema), 0o644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}

	return nil
}

// generateSampleGraph writes doc as YAML with a schema reference. An existing
// file is left untouched.
func generateSampleGraph(doc *graphfile.Document, path, schemaName string) error {
	if err := validateSchemaName(schemaName); err != nil {
		return err
	}

	data, err := doc.EncodeYAML()
	if err != nil {
		return fmt.Errorf("failed to marshal sample graph to yaml: %w", err)
	}

	return writeOnce(path, append([]byte(getSchemaReference(schemaName)), data...))
}

// generateRunnerConfig writes the runner defaults as YAML unless the file
// already exists.
func generateRunnerConfig(config runner.Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal runner config to yaml: %w", err)
	}

	return writeOnce(path, data)
}

func writeOnce(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Printf("Sample written to %s", path)

	return nil
}

// sampleDocument is an EMA crossover: enter when the fast EMA crosses above
// the slow one, exit on the opposite cross.
func sampleDocument() *graphfile.Document {
	ema := func(period int64) graphfile.ParamMap {
		return graphfile.ParamMap{
			"indicator_type": types.String("EMA"),
			"period":         types.Int(period),
			"source":         types.String("close"),
		}
	}

	return &graphfile.Document{
		Version:      version.GetVersion(),
		StrategyName: "EmaCrossover",
		Description:  "Enters when the fast EMA crosses above the slow EMA.",
		Nodes: []graphfile.NodeSpec{
			{ID: "md", Type: "market_data", Position: []float64{0, 0}, Parameters: graphfile.ParamMap{
				"pair":      types.String("BTC/USDT"),
				"timeframe": types.String("1h"),
			}},
			{ID: "fast", Type: "indicator", Position: []float64{220, -80}, Parameters: ema(12)},
			{ID: "slow", Type: "indicator", Position: []float64{220, 80}, Parameters: ema(26)},
			{ID: "cross_up", Type: "math", Position: []float64{440, -80}, Parameters: graphfile.ParamMap{
				"operation": types.String("crossover"),
			}},
			{ID: "cross_down", Type: "math", Position: []float64{440, 80}, Parameters: graphfile.ParamMap{
				"operation": types.String("crossunder"),
			}},
			{ID: "enter", Type: "enter", Position: []float64{660, -80}, Parameters: graphfile.ParamMap{
				"side": types.String("long"),
			}},
			{ID: "exit", Type: "exit", Position: []float64{660, 80}, Parameters: graphfile.ParamMap{
				"side": types.String("long"),
			}},
		},
		Connections: []graphfile.ConnectionSpec{
			{From: "md.candles", To: "fast.candles"},
			{From: "md.candles", To: "slow.candles"},
			{From: "fast.values", To: "cross_up.A"},
			{From: "slow.values", To: "cross_up.B"},
			{From: "fast.values", To: "cross_down.A"},
			{From: "slow.values", To: "cross_down.B"},
			{From: "cross_up.result", To: "enter.signal"},
			{From: "cross_down.result", To: "exit.signal"},
		},
	}
}

func validatePaths(schemaPath, samplePath string) error {
	if schemaPath == "" {
		return fmt.Errorf("schema path cannot be empty")
	}

	if samplePath == "" {
		return fmt.Errorf("sample config path cannot be empty")
	}

	return nil
}

func validateSchemaName(name string) error {
	if name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}

	if !strings.HasSuffix(name, ".json") {
		return fmt.Errorf("schema name %q must have .json extension", name)
	}

	return nil
}

func getSchemaReference(name string) string {
	return "# yaml-language-server: $schema=" + name + "\n"
}
