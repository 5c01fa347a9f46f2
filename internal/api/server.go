// Package api serves the strategy compiler over HTTP so an editor can list
// node kinds, validate a graph document and export it as strategy source.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-strategy-builder/internal/history"
	"github.com/rxtech-lab/argo-strategy-builder/internal/logger"
	"github.com/rxtech-lab/argo-strategy-builder/internal/nodes"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"go.uber.org/zap"
)

// maxBodyBytes limits graph document uploads.
const maxBodyBytes = 4 << 20

// Config configures a Server.
type Config struct {
	// Registry resolves node types. Defaults to the built-in kinds.
	Registry nodes.Registry
	// Store records exports. A nil store disables the history endpoints.
	Store history.Store
	// Logger defaults to a no-op logger.
	Logger *logger.Logger
	// AllowedOrigin is the CORS origin, "*" when empty.
	AllowedOrigin string
	// FallbackTimeframe is passed to every exporter.
	FallbackTimeframe string
}

// Server holds the HTTP handlers. It keeps no per-request state and may serve
// requests concurrently.
type Server struct {
	registry          nodes.Registry
	store             history.Store
	logger            *logger.Logger
	fallbackTimeframe string
	started           time.Time
	handler           http.Handler
}

// NewServer creates a Server and its routes.
func NewServer(config Config) *Server {
	if config.Registry == nil {
		config.Registry = nodes.NewDefaultRegistry()
	}

	if config.Logger == nil {
		config.Logger = logger.NewNopLogger()
	}

	server := &Server{
		registry:          config.Registry,
		store:             config.Store,
		logger:            config.Logger,
		fallbackTimeframe: config.FallbackTimeframe,
		started:           time.Now(),
		handler:           nil,
	}

	router := mux.NewRouter()
	router.Use(requestLogger(config.Logger))

	router.HandleFunc("/health", server.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/nodes", server.handleNodes).Methods(http.MethodGet)
	router.HandleFunc("/api/schema", server.handleSchema).Methods(http.MethodGet)
	router.HandleFunc("/api/validate", server.handleValidate).Methods(http.MethodPost)
	router.HandleFunc("/api/export", server.handleExport).Methods(http.MethodPost)
	router.HandleFunc("/api/history", server.handleHistory).Methods(http.MethodGet)
	router.HandleFunc("/api/history/{id}", server.handleHistoryEntry).Methods(http.MethodGet)

	server.handler = Cors(config.AllowedOrigin, router)

	return server
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    errors.ErrorCode `json:"code"`
	Error   string           `json:"error"`
	Details []string         `json:"details,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, ErrorResponse{
		Code:    errors.GetCode(err),
		Error:   err.Error(),
		Details: errors.GetDetails(err),
	})
}

// readBody reads a request body up to maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraphDocument, "failed to read request body", err)
	}

	return body, nil
}

func isYAML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "yaml")
}
