package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-strategy-builder/internal/logger"
	"go.uber.org/zap"
)

// DefaultAllowedOrigin is the CORS origin used when none is configured.
const DefaultAllowedOrigin = "*"

// Cors answers preflight requests and adds CORS headers for allowedOrigin.
// It wraps the whole router so OPTIONS requests reach it even though no
// route declares that method.
func Cors(allowedOrigin string, next http.Handler) http.Handler {
	if allowedOrigin == "" {
		allowedOrigin = DefaultAllowedOrigin
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// requestLogger logs one line per request.
func requestLogger(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			log.Debug("Handled request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", recorder.status),
				zap.Duration("elapsed", time.Since(started)),
			)
		})
	}
}
