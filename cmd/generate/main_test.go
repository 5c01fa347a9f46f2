package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-strategy-builder/internal/nodes"
	"github.com/rxtech-lab/argo-strategy-builder/internal/runner"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/graphfile"
	"github.com/stretchr/testify/suite"
)

type GenerateCmdTestSuite struct {
	suite.Suite
	tempDir string
	workDir string
}

func (suite *GenerateCmdTestSuite) SetupTest() {
	wd, err := os.Getwd()
	suite.Require().NoError(err)
	suite.workDir = wd

	suite.tempDir = suite.T().TempDir()
	suite.Require().NoError(os.Chdir(suite.tempDir))
}

func (suite *GenerateCmdTestSuite) TearDownTest() {
	suite.Require().NoError(os.Chdir(suite.workDir))
}

func (suite *GenerateCmdTestSuite) TestSchemaGeneration() {
	main()

	configDir := filepath.Join(suite.tempDir, "config")
	suite.True(dirExists(configDir), "Config directory should exist")

	schemaPath := filepath.Join(configDir, schemaName)
	suite.True(fileExists(schemaPath), "Schema file should exist")

	schemaContent, err := os.ReadFile(schemaPath)
	suite.Require().NoError(err)
	suite.Contains(string(schemaContent), `"connections"`)
}

func (suite *GenerateCmdTestSuite) TestSampleGraphCompiles() {
	main()

	samplePath := filepath.Join(suite.tempDir, "config", sampleGraphName)
	content, err := os.ReadFile(samplePath)
	suite.Require().NoError(err)
	suite.Contains(string(content), "# yaml-language-server: $schema="+schemaName)

	doc, err := graphfile.Load(samplePath)
	suite.Require().NoError(err)

	_, err = graphfile.Build(doc, nodes.NewDefaultRegistry())
	suite.Require().NoError(err)
}

func (suite *GenerateCmdTestSuite) TestRunnerConfigLoads() {
	main()

	config, err := runner.LoadConfig(filepath.Join(suite.tempDir, "config", runnerConfigName))
	suite.Require().NoError(err)
	suite.Equal(runner.DefaultConfig().BacktestTimeout, config.BacktestTimeout)
	suite.Equal("freqtrade", config.Executable)
}

func (suite *GenerateCmdTestSuite) TestSampleNotOverwritten() {
	main()

	samplePath := filepath.Join(suite.tempDir, "config", sampleGraphName)
	suite.Require().NoError(os.WriteFile(samplePath, []byte("edited"), 0o644))

	main()

	content, err := os.ReadFile(samplePath)
	suite.Require().NoError(err)
	suite.Equal("edited", string(content), "Sample graph should not be overwritten")
}

func (suite *GenerateCmdTestSuite) TestGenerateSchemaFileInvalidPath() {
	blocker := filepath.Join(suite.tempDir, "file")
	suite.Require().NoError(os.WriteFile(blocker, nil, 0o644))

	err := generateSchemaFile(filepath.Join(blocker, "schema.json"))
	suite.Error(err, "Should return error for invalid path")
	suite.Contains(err.Error(), "failed to")
}

func (suite *GenerateCmdTestSuite) TestGenerateSampleGraphRejectsSchemaName() {
	err := generateSampleGraph(sampleDocument(), filepath.Join(suite.tempDir, "g.yaml"), "schema.txt")
	suite.Error(err)
	suite.Contains(err.Error(), "must have .json extension")
	suite.False(fileExists(filepath.Join(suite.tempDir, "g.yaml")))
}

func (suite *GenerateCmdTestSuite) TestValidatePaths() {
	suite.NoError(validatePaths("/some/path/schema.json", "/some/path/graph.yaml"))

	err := validatePaths("", "/some/path/graph.yaml")
	suite.Error(err)
	suite.Contains(err.Error(), "schema path cannot be empty")

	err = validatePaths("/some/path/schema.json", "")
	suite.Error(err)
	suite.Contains(err.Error(), "sample config path cannot be empty")
}

func (suite *GenerateCmdTestSuite) TestValidateSchemaName() {
	suite.NoError(validateSchemaName("schema.json"))
	suite.NoError(validateSchemaName("my-schema-file.json"))

	err := validateSchemaName("")
	suite.Error(err)
	suite.Contains(err.Error(), "schema name cannot be empty")

	suite.Error(validateSchemaName("schema"))
}

func (suite *GenerateCmdTestSuite) TestGetSchemaReference() {
	suite.Equal("# yaml-language-server: $schema=test-schema.json\n", getSchemaReference("test-schema.json"))
	suite.Equal("# yaml-language-server: $schema=\n", getSchemaReference(""))
}

// Helper functions
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func TestGenerateCmdSuite(t *testing.T) {
	suite.Run(t, new(GenerateCmdTestSuite))
}
