package api

import (
	"database/sql"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-strategy-builder/internal/compiler"
	"github.com/rxtech-lab/argo-strategy-builder/internal/history"
	"github.com/rxtech-lab/argo-strategy-builder/internal/nodes"
	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
	"github.com/rxtech-lab/argo-strategy-builder/internal/version"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/graphfile"
	"go.uber.org/zap"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// ValidateResponse is the body of POST /api/validate.
type ValidateResponse struct {
	OK       bool               `json:"ok"`
	Order    []string           `json:"order"`
	Problems []string           `json:"problems"`
	Warnings []compiler.Warning `json:"warnings"`
}

// ExportResponse is the body of POST /api/export.
type ExportResponse struct {
	*compiler.Result
	HistoryID string `json:"history_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "strategy-builder-api",
		Version:   version.GetVersion(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Details: map[string]string{
			"go_version": runtime.Version(),
			"num_cpu":    strconv.Itoa(runtime.NumCPU()),
			"history":    strconv.FormatBool(s.store != nil),
		},
	})
}

func (s *Server) handleNodes(w http.ResponseWriter, _ *http.Request) {
	kinds := s.registry.List()
	if kinds == nil {
		kinds = []nodes.Kind{}
	}

	s.writeJSON(w, http.StatusOK, kinds)
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	schema, err := graphfile.Schema()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)

		return
	}

	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(schema)); err != nil {
		s.logger.Error("Failed to write schema", zap.Error(err))
	}
}

// decodeGraph reads a graph document from the request and builds it. Any
// failure is written as a 400 response and reported by ok=false.
func (s *Server) decodeGraph(w http.ResponseWriter, r *http.Request) (*graphfile.Document, *types.Graph, bool) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)

		return nil, nil, false
	}

	parse := graphfile.ParseJSON
	if isYAML(r) {
		parse = graphfile.ParseYAML
	}

	doc, err := parse(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)

		return nil, nil, false
	}

	graph, err := graphfile.Build(doc, s.registry)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)

		return nil, nil, false
	}

	return doc, graph, true
}

func (s *Server) exporter(doc *graphfile.Document, r *http.Request) *compiler.Exporter {
	name := doc.StrategyName
	if override := strings.TrimSpace(r.URL.Query().Get("strategy_name")); override != "" {
		name = override
	}

	return compiler.NewExporter(compiler.Options{
		StrategyName:      name,
		Description:       doc.Description,
		FallbackTimeframe: s.fallbackTimeframe,
		Renderer:          nil,
		Logger:            s.logger,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	doc, graph, ok := s.decodeGraph(w, r)
	if !ok {
		return
	}

	analysis, report, err := s.exporter(doc, r).Inspect(graph)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)

		return
	}

	response := ValidateResponse{
		OK:       report.OK(),
		Order:    analysis.Order(),
		Problems: report.Problems,
		Warnings: report.Warnings,
	}
	if response.Problems == nil {
		response.Problems = []string{}
	}

	if response.Warnings == nil {
		response.Warnings = []compiler.Warning{}
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, graph, ok := s.decodeGraph(w, r)
	if !ok {
		return
	}

	result, err := s.exporter(doc, r).Export(graph)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.HasCode(err, errors.ErrCodeRenderFailed) {
			status = http.StatusInternalServerError
		}

		s.writeError(w, status, err)

		return
	}

	response := ExportResponse{Result: result, HistoryID: ""}

	if s.store != nil {
		entry, err := s.store.Record(r.Context(), history.NewEntry(result))
		if err != nil {
			// The source is still returned; only the history row is lost.
			s.logger.Warn("Failed to record export", zap.String("strategy", result.ClassName), zap.Error(err))
		} else {
			response.HistoryID = entry.ID
		}
	}

	if r.URL.Query().Get("format") == "python" {
		w.Header().Set("Content-Type", "text/x-python; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+result.ClassName+`.py"`)

		if response.HistoryID != "" {
			w.Header().Set("X-History-ID", response.HistoryID)
		}

		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte(result.Source)); err != nil {
			s.logger.Error("Failed to write strategy source", zap.Error(err))
		}

		return
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New(errors.ErrCodeHistoryUnavailable, "export history is disabled"))

		return
	}

	query := r.URL.Query()
	filter := history.Filter{
		StrategyName: query.Get("strategy_name"),
		Limit:        0,
		WithSource:   query.Get("with_source") == "true",
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid limit %q", raw))

			return
		}

		filter.Limit = limit
	}

	entries, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)

		return
	}

	if entries == nil {
		entries = []history.Entry{}
	}

	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New(errors.ErrCodeHistoryUnavailable, "export history is disabled"))

		return
	}

	entry, err := s.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sql.ErrNoRows) {
			status = http.StatusNotFound
		}

		s.writeError(w, status, err)

		return
	}

	s.writeJSON(w, http.StatusOK, entry)
}
