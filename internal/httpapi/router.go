// Package httpapi serves the keepstreak JSON API over chi.
package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/julianstephens/keepstreak/internal/constants"
	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/logger"
	"github.com/julianstephens/keepstreak/internal/metrics"
	"github.com/julianstephens/keepstreak/internal/tracker"
)

// Options tunes the router. Zero values disable the timeout and metrics.
type Options struct {
	RequestTimeout time.Duration
	MetricsEnabled bool
	MetricsPath    string
}

// HealthResponse is served on /healthz
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// NewRouter returns the API router with the default middleware stack, the
// unauthenticated health and metrics endpoints, and the v1 routes.
func NewRouter(svc *tracker.Service, verifier Verifier, opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", userIDHeader},
		MaxAge:         300,
	}).Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorCode(w, r, apperrors.CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
			Code:      codeBadRequest,
			Message:   "method not allowed",
			RequestID: middleware.GetReqID(r.Context()),
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: constants.AppName, Version: constants.Version})
	})

	if opts.MetricsEnabled {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(verifier))
		RegisterRoutes(r, svc)
	})

	return r
}

// accessLog writes one structured line per request and records its latency
// under the matched route pattern.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		pattern := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}

		metrics.RecordHTTPRequestDuration(r.Method, pattern, strconv.Itoa(status), duration)
		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", pattern,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", duration,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
