// SPDX-License-Identifier: GPL-3.0-or-later

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/netvisor/agent/render"
)

// renderableHandler is satisfied by every concrete handler type
// (dnsmetrics.Handler, netmetrics.Handler, flow.Handler): each carries
// its own Render/RenderBucket/RenderWindow trio built directly on its
// bucket.Manager. httpapi type-asserts policy.Handler values to this
// interface rather than policy importing render (policy stays
// renderer-agnostic, per its own package doc).
type renderableHandler interface {
	Render() []render.Sample
	RenderBucket(n int) ([]render.Sample, bool)
	RenderWindow(n int) ([]render.Sample, bool)
}

const allPolicies = "__all"

// collectSamples gathers every renderable handler's current samples for
// the named policy, or — when name is [allPolicies] — for every
// registered policy. op selects which of Render/RenderBucket/RenderWindow
// to call.
func (s *Server) collectSamples(name string, op func(renderableHandler) ([]render.Sample, bool)) ([]render.Sample, bool, error) {
	var policyNames []string
	if name == allPolicies {
		policyNames = s.mgr.Policies()
	} else {
		policyNames = []string{name}
	}

	var out []render.Sample
	tooEarly := false
	for _, pn := range policyNames {
		handle, err := s.mgr.LookupPolicy(pn)
		if err != nil {
			return nil, false, err
		}
		for _, h := range handle.Policy().Handlers() {
			rh, ok := h.(renderableHandler)
			if !ok {
				continue
			}
			samples, ok := op(rh)
			if !ok {
				tooEarly = true
				continue
			}
			out = append(out, samples...)
		}
		handle.Close()
	}
	return out, !tooEarly, nil
}

func parsePositiveInt(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// handleMetricsWindow serves GET /api/v1/policies/{name}/metrics/window/{n}
// (spec.md §6: "merged view of most recent N buckets. {name}=__all fans
// out across all policies. 425 Too Early if N exceeds available closed
// windows").
func (s *Server) handleMetricsWindow(w http.ResponseWriter, r *http.Request) {
	n, ok := parsePositiveInt(r.PathValue("n"))
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "n must be a positive integer")
		return
	}
	samples, ok, err := s.collectSamples(r.PathValue("name"), func(rh renderableHandler) ([]render.Sample, bool) {
		return rh.RenderWindow(n)
	})
	if err != nil {
		s.respondManagerErr(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusTooEarly, "requested window exceeds available closed buckets")
		return
	}
	writeJSON(w, http.StatusOK, render.JSON(samples))
}

// handleMetricsBucket serves GET /api/v1/policies/{name}/metrics/bucket/{n}.
func (s *Server) handleMetricsBucket(w http.ResponseWriter, r *http.Request) {
	n, ok := parsePositiveIntOrZero(r.PathValue("n"))
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "n must be a non-negative integer")
		return
	}
	samples, ok, err := s.collectSamples(r.PathValue("name"), func(rh renderableHandler) ([]render.Sample, bool) {
		return rh.RenderBucket(n)
	})
	if err != nil {
		s.respondManagerErr(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusTooEarly, "requested bucket exceeds available closed buckets")
		return
	}
	writeJSON(w, http.StatusOK, render.JSON(samples))
}

func parsePositiveIntOrZero(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// handleMetricsPrometheus serves
// GET /api/v1/policies/{name}/metrics/prometheus (spec.md §6: "Prometheus
// exposition; label policy=<name>"). Renders the live bucket, matching a
// scrape's expectation of current-state metrics.
func (s *Server) handleMetricsPrometheus(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	samples, _, err := s.collectSamples(name, func(rh renderableHandler) ([]render.Sample, bool) {
		return rh.Render(), true
	})
	if err != nil {
		s.respondManagerErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	if err := render.Prometheus(w, name, s.instance, samples); err != nil {
		s.logger.Info("prometheus render failed", "err", err, "err_class", s.classifier.Classify(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

