package api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-strategy-builder/internal/api"
	"github.com/rxtech-lab/argo-strategy-builder/internal/history"
	"github.com/rxtech-lab/argo-strategy-builder/internal/nodes"
	"github.com/rxtech-lab/argo-strategy-builder/mocks"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ServerTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	store  *mocks.MockStore
	server *api.Server
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.store = mocks.NewMockStore(suite.ctrl)
	suite.server = api.NewServer(api.Config{
		Registry:          nodes.NewDefaultRegistry(),
		Store:             suite.store,
		Logger:            nil,
		AllowedOrigin:     "https://editor.example.com",
		FallbackTimeframe: "",
	})
}

func (suite *ServerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

const emaDocument = `{
  "strategy_name": "EmaCross",
  "nodes": [
    {"id": "md", "type": "market_data", "parameters": {"timeframe": "15m"}},
    {"id": "ema", "type": "indicator", "parameters": {"indicator_type": "EMA", "period": 9}},
    {"id": "enter", "type": "enter"},
    {"id": "exit", "type": "exit"}
  ],
  "connections": [
    {"from": "md.candles", "to": "ema.candles"},
    {"from": "ema.values", "to": "enter.signal"}
  ]
}`

const cyclicDocument = `{
  "nodes": [
    {"id": "md", "type": "market_data"},
    {"id": "a", "type": "math"},
    {"id": "b", "type": "math"},
    {"id": "enter", "type": "enter"},
    {"id": "exit", "type": "exit"}
  ],
  "connections": [
    {"from": "a.result", "to": "b.A"},
    {"from": "b.result", "to": "a.A"}
  ]
}`

func (suite *ServerTestSuite) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.server.ServeHTTP(w, req)

	return w
}

func (suite *ServerTestSuite) decodeError(w *httptest.ResponseRecorder) api.ErrorResponse {
	var response api.ErrorResponse
	suite.Require().NoError(json.NewDecoder(w.Body).Decode(&response))

	return response
}

func (suite *ServerTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", "")

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("application/json", w.Header().Get("Content-Type"))
	suite.Equal("https://editor.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	var response api.HealthResponse
	suite.Require().NoError(json.NewDecoder(w.Body).Decode(&response))
	suite.Equal("healthy", response.Status)
	suite.Equal("true", response.Details["history"])
}

func (suite *ServerTestSuite) TestPreflight() {
	w := suite.do(http.MethodOptions, "/api/export", "")

	suite.Equal(http.StatusNoContent, w.Code)
	suite.Contains(w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func (suite *ServerTestSuite) TestMethodNotAllowed() {
	w := suite.do(http.MethodGet, "/api/export", "")
	suite.Equal(http.StatusMethodNotAllowed, w.Code)
}

func (suite *ServerTestSuite) TestNodes() {
	w := suite.do(http.MethodGet, "/api/nodes", "")
	suite.Equal(http.StatusOK, w.Code)

	var kinds []nodes.Kind
	suite.Require().NoError(json.NewDecoder(w.Body).Decode(&kinds))
	suite.Len(kinds, 8)
	suite.Equal("market_data", kinds[0].Type)
	suite.Equal([]string{"candles"}, kinds[0].Outputs)
}

func (suite *ServerTestSuite) TestSchema() {
	w := suite.do(http.MethodGet, "/api/schema", "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"connections"`)
}

func (suite *ServerTestSuite) TestValidate() {
	w := suite.do(http.MethodPost, "/api/validate", emaDocument)
	suite.Equal(http.StatusOK, w.Code)

	var response api.ValidateResponse
	suite.Require().NoError(json.NewDecoder(w.Body).Decode(&response))
	suite.True(response.OK)
	suite.Len(response.Order, 4)
	suite.Empty(response.Problems)
	suite.Len(response.Warnings, 1)
	suite.Equal("exit", response.Warnings[0].NodeID)
}

func (suite *ServerTestSuite) TestValidateReportsMissingCategories() {
	w := suite.do(http.MethodPost, "/api/validate", `{"nodes": [{"id": "p", "type": "plot"}]}`)
	suite.Equal(http.StatusOK, w.Code)

	var response api.ValidateResponse
	suite.Require().NoError(json.NewDecoder(w.Body).Decode(&response))
	suite.False(response.OK)
	suite.Len(response.Problems, 3)
}

func (suite *ServerTestSuite) TestExport() {
	suite.store.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, entry history.Entry) (history.Entry, error) {
			suite.Equal("Renamed", entry.StrategyName)
			suite.Equal("15m", entry.Timeframe)
			suite.Equal(4, entry.NodeCount)
			suite.Len(entry.SourceSHA256, 64)

			entry.ID = "entry-1"

			return entry, nil
		})

	w := suite.do(http.MethodPost, "/api/export?strategy_name=Renamed", emaDocument)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var response struct {
		Source    string   `json:"source"`
		ClassName string   `json:"class_name"`
		Order     []string `json:"order"`
		HistoryID string   `json:"history_id"`
	}
	suite.Require().NoError(json.NewDecoder(w.Body).Decode(&response))
	suite.Equal("Renamed", response.ClassName)
	suite.Equal("entry-1", response.HistoryID)
	suite.Contains(response.Source, "class Renamed(IStrategy):")
	suite.Contains(response.Source, `ta.EMA(dataframe["close"], timeperiod=9)`)
}

func (suite *ServerTestSuite) TestExportAsPython() {
	suite.store.EXPECT().Record(gomock.Any(), gomock.Any()).Return(history.Entry{ID: "entry-2"}, nil)

	w := suite.do(http.MethodPost, "/api/export?format=python", emaDocument)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("entry-2", w.Header().Get("X-History-ID"))
	suite.Contains(w.Header().Get("Content-Disposition"), "EmaCross.py")
	suite.True(strings.HasPrefix(w.Body.String(), "# Generated by argo-strategy-builder."))
}

func (suite *ServerTestSuite) TestExportSurvivesHistoryFailure() {
	suite.store.EXPECT().Record(gomock.Any(), gomock.Any()).
		Return(history.Entry{}, errors.New(errors.ErrCodeHistoryQueryFailed, "disk full"))

	w := suite.do(http.MethodPost, "/api/export", emaDocument)
	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "history_id")
}

func (suite *ServerTestSuite) TestExportYAML() {
	suite.store.EXPECT().Record(gomock.Any(), gomock.Any()).Return(history.Entry{ID: "entry-3"}, nil)

	body := "nodes:\n" +
		"  - {id: md, type: market_data}\n" +
		"  - {id: enter, type: enter}\n" +
		"  - {id: exit, type: exit}\n"

	req := httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/yaml")

	w := httptest.NewRecorder()
	suite.server.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (suite *ServerTestSuite) TestExportErrors() {
	tests := []struct {
		name   string
		body   string
		status int
		code   errors.ErrorCode
	}{
		{name: "malformed", body: `{"nodes": [`, status: http.StatusBadRequest, code: errors.ErrCodeInvalidGraphDocument},
		{name: "unknown type", body: `{"nodes": [{"id": "x", "type": "sentiment"}]}`, status: http.StatusBadRequest, code: errors.ErrCodeUnknownNodeType},
		{name: "cycle", body: cyclicDocument, status: http.StatusUnprocessableEntity, code: errors.ErrCodeCyclicGraph},
		{name: "missing categories", body: `{"nodes": [{"id": "md", "type": "market_data"}]}`, status: http.StatusUnprocessableEntity, code: errors.ErrCodeMissingRequiredNodeCategory},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			w := suite.do(http.MethodPost, "/api/export", tc.body)
			suite.Equal(tc.status, w.Code)
			suite.Equal(tc.code, suite.decodeError(w).Code)
		})
	}

	w := suite.do(http.MethodPost, "/api/export", `{"nodes": [{"id": "md", "type": "market_data"}]}`)
	suite.Len(suite.decodeError(w).Details, 2)
}

func (suite *ServerTestSuite) TestHistory() {
	created := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	suite.store.EXPECT().
		List(gomock.Any(), history.Filter{StrategyName: "EmaCross", Limit: 5, WithSource: false}).
		Return([]history.Entry{{ID: "a", CreatedAt: created, StrategyName: "EmaCross"}}, nil)

	w := suite.do(http.MethodGet, "/api/history?strategy_name=EmaCross&limit=5", "")
	suite.Equal(http.StatusOK, w.Code)

	var entries []history.Entry
	suite.Require().NoError(json.NewDecoder(w.Body).Decode(&entries))
	suite.Require().Len(entries, 1)
	suite.Equal("a", entries[0].ID)

	w = suite.do(http.MethodGet, "/api/history?limit=-1", "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(errors.ErrCodeInvalidParameter, suite.decodeError(w).Code)
}

func (suite *ServerTestSuite) TestHistoryEntry() {
	suite.store.EXPECT().Get(gomock.Any(), "a").Return(history.Entry{ID: "a", Source: "pass"}, nil)
	suite.store.EXPECT().Get(gomock.Any(), "missing").
		Return(history.Entry{}, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to load export missing", sql.ErrNoRows))

	w := suite.do(http.MethodGet, "/api/history/a", "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"source":"pass"`)

	w = suite.do(http.MethodGet, "/api/history/missing", "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ServerTestSuite) TestHistoryDisabled() {
	server := api.NewServer(api.Config{})

	for _, target := range []string{"/api/history", "/api/history/a"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)

		suite.Equal(http.StatusServiceUnavailable, w.Code)
		suite.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
	}
}
