package strategy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type JsonSchemaTestSuite struct {
	suite.Suite
}

func TestJsonSchemaTestSuite(t *testing.T) {
	suite.Run(t, new(JsonSchemaTestSuite))
}

func (suite *JsonSchemaTestSuite) TestToJSONSchema() {
	type ExportConfig struct {
		StrategyName string `json:"strategy_name" jsonschema:"title=Strategy Name,description=Generated class name,default=GeneratedStrategy"`
		Timeframe    string `json:"timeframe" jsonschema:"title=Timeframe,enum=1m,enum=5m,enum=1h"`
		Epochs       int    `json:"epochs" jsonschema:"minimum=1,default=100"`
	}

	schema, err := ToJSONSchema(ExportConfig{})
	suite.Require().NoError(err)

	var decoded map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &decoded))

	properties, ok := decoded["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "strategy_name")
	suite.Contains(properties, "timeframe")

	name, ok := properties["strategy_name"].(map[string]any)
	suite.Require().True(ok)
	suite.Equal("Strategy Name", name["title"])
	suite.Equal("GeneratedStrategy", name["default"])

	epochs, ok := properties["epochs"].(map[string]any)
	suite.Require().True(ok)
	suite.EqualValues(1, epochs["minimum"])
}
