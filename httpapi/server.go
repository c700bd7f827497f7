// SPDX-License-Identifier: GPL-3.0-or-later

// Package httpapi implements the agent's control and scrape HTTP surface
// (spec.md §6 "EXTERNAL INTERFACES"): a thin net/http layer over
// [policy.Manager] for tap/policy lifecycle management, and over each
// handler's render methods for the window/bucket/Prometheus metric
// endpoints.
package httpapi

import (
	"net/http"
	"time"

	netvisor "github.com/netvisor/agent"
	"github.com/netvisor/agent/policy"
)

// Server is the HTTP control/scrape surface for one agent process.
type Server struct {
	mgr        *policy.Manager
	logger     netvisor.SLogger
	classifier netvisor.ErrClassifier
	instance   string
	version    string
	startedAt  time.Time
}

// Opt configures a Server at construction.
type Opt func(*Server)

// WithLogger overrides the server's [netvisor.SLogger] (default: discard).
func WithLogger(logger netvisor.SLogger) Opt {
	return func(s *Server) { s.logger = logger }
}

// WithErrClassifier overrides the server's [netvisor.ErrClassifier]
// (default: no-op).
func WithErrClassifier(c netvisor.ErrClassifier) Opt {
	return func(s *Server) { s.classifier = c }
}

// WithInstance sets the "instance" label attached to Prometheus/OTel
// renders (spec.md §6: "Labels: policy, instance (if configured)").
// Empty (the default) omits the label.
func WithInstance(instance string) Opt {
	return func(s *Server) { s.instance = instance }
}

// WithVersion sets the version string reported by GET /api/v1/metrics/app.
func WithVersion(version string) Opt {
	return func(s *Server) { s.version = version }
}

// NewServer constructs a Server bound to mgr, started at now (used to
// compute process up-time for GET /api/v1/metrics/app).
func NewServer(mgr *policy.Manager, now time.Time, opts ...Opt) *Server {
	s := &Server{
		mgr:        mgr,
		logger:     netvisor.DefaultSLogger(),
		classifier: netvisor.DefaultErrClassifier,
		version:    "dev",
		startedAt:  now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRoutes wires every route onto mux, using Go's method+pattern
// ServeMux matching (e.g. "GET /api/v1/taps/{name}") rather than a
// third-party router — the stdlib mux has covered path-parameter routing
// since Go 1.22.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/metrics/app", s.handleAppMetrics)

	mux.HandleFunc("GET /api/v1/taps", s.handleListTaps)
	mux.HandleFunc("GET /api/v1/taps/{name}", s.handleGetTap)
	mux.HandleFunc("POST /api/v1/taps", s.handleCreateTap)
	mux.HandleFunc("DELETE /api/v1/taps/{name}", s.handleDeleteTap)

	mux.HandleFunc("GET /api/v1/policies", s.handleListPolicies)
	mux.HandleFunc("POST /api/v1/policies", s.handleCreatePolicy)
	mux.HandleFunc("DELETE /api/v1/policies/{name}", s.handleDeletePolicy)

	mux.HandleFunc("GET /api/v1/policies/{name}/metrics/window/{n}", s.handleMetricsWindow)
	mux.HandleFunc("GET /api/v1/policies/{name}/metrics/bucket/{n}", s.handleMetricsBucket)
	mux.HandleFunc("GET /api/v1/policies/{name}/metrics/prometheus", s.handleMetricsPrometheus)
}

// ListenAndServe starts the HTTP server on addr with the teacher's
// explicit-timeouts convention (grounded on the pack's ratelimiter API
// server), blocking until http.Server.ListenAndServe returns its error.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info("http server listening", "addr", addr)
	return srv.ListenAndServe()
}
