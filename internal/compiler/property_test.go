package compiler_test

import (
	"testing"

	"github.com/rxtech-lab/argo-strategy-builder/internal/compiler"
	"github.com/rxtech-lab/argo-strategy-builder/mocks"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type GeneratedGraphTestSuite struct {
	suite.Suite
	exporter *compiler.Exporter
}

func TestGeneratedGraphSuite(t *testing.T) {
	suite.Run(t, new(GeneratedGraphTestSuite))
}

func (suite *GeneratedGraphTestSuite) SetupTest() {
	suite.exporter = compiler.NewExporter(compiler.Options{StrategyName: "Generated"})
}

func (suite *GeneratedGraphTestSuite) TestOrderRespectsConnections() {
	for seed := range int64(25) {
		graph := mocks.NewGraphGenerator(seed).Generate(mocks.DefaultConfig())

		result, err := suite.exporter.Export(graph)
		suite.Require().NoError(err, "seed %d", seed)
		suite.Len(result.Order, graph.Len())

		position := make(map[string]int, len(result.Order))
		for i, id := range result.Order {
			position[id] = i
		}

		for _, c := range graph.Connections() {
			suite.Less(position[c.From.NodeID], position[c.To.NodeID], "seed %d: %s -> %s", seed, c.From, c.To)
		}
	}
}

func (suite *GeneratedGraphTestSuite) TestSameSeedSameSource() {
	config := mocks.DefaultConfig()
	config.Values = 30

	first, err := suite.exporter.Export(mocks.NewGraphGenerator(7).Generate(config))
	suite.Require().NoError(err)

	second, err := suite.exporter.Export(mocks.NewGraphGenerator(7).Generate(config))
	suite.Require().NoError(err)

	suite.Equal(first.Source, second.Source)
	suite.Contains(first.Source, "class Generated(IStrategy):")
}

func (suite *GeneratedGraphTestSuite) TestCyclesAreRejected() {
	for seed := range int64(10) {
		graph := mocks.NewGraphGenerator(seed).GenerateCyclic(mocks.DefaultConfig())

		result, err := suite.exporter.Export(graph)
		suite.Nil(result)
		suite.True(errors.HasCode(err, errors.ErrCodeCyclicGraph), "seed %d: %v", seed, err)
	}
}
