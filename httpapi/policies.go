// SPDX-License-Identifier: GPL-3.0-or-later

package httpapi

import (
	"net/http"
	"time"

	"github.com/netvisor/agent/internal/pipeline"
	"github.com/netvisor/agent/policy"
)

// policyHandlerBinding names one handler to attach to an existing tap
// when a policy is created.
type policyHandlerBinding struct {
	Kind        pipeline.Kind `json:"kind" yaml:"kind"`
	Tap         string        `json:"tap" yaml:"tap"`
	HandlerName string        `json:"handler,omitempty" yaml:"handler,omitempty"`
}

type policyCreateRequest struct {
	Name     string                 `json:"name" yaml:"name"`
	Handlers []policyHandlerBinding `json:"handlers" yaml:"handlers"`
}

type policyResponse struct {
	Name     string   `json:"name"`
	Handlers []string `json:"handlers"`
}

// handleListPolicies serves GET /api/v1/policies.
func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	names := s.mgr.Policies()
	out := make([]policyResponse, 0, len(names))
	for _, name := range names {
		handle, err := s.mgr.LookupPolicy(name)
		if err != nil {
			continue
		}
		out = append(out, policyResponse{Name: name, Handlers: handlerNames(handle.Policy())})
		handle.Close()
	}
	writeJSON(w, http.StatusOK, out)
}

func handlerNames(p *policy.Policy) []string {
	handlers := p.Handlers()
	names := make([]string, 0, len(handlers))
	for _, h := range handlers {
		names = append(names, h.Name())
	}
	return names
}

// handleCreatePolicy serves POST /api/v1/policies (spec.md §6: "422 on
// validation error, 409 on duplicate"). Every named handler binding must
// reference an already-registered tap of the matching kind; bindings are
// applied in order and the policy is only added to the manager once all
// succeed, per spec.md §7's "no partial state" for configuration errors.
func (s *Server) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req policyCreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	p := policy.NewPolicy(req.Name)
	now := time.Now()
	for _, binding := range req.Handlers {
		if !pipeline.Valid(binding.Kind) || binding.Tap == "" {
			p.Stop()
			writeError(w, http.StatusUnprocessableEntity, "handler binding requires a valid kind and tap")
			return
		}
		tap, err := s.mgr.Tap(binding.Tap)
		if err != nil {
			p.Stop()
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		handlerName := binding.HandlerName
		if handlerName == "" {
			handlerName = string(binding.Kind)
		}
		if err := pipeline.AttachHandler(p, tap, binding.Kind, handlerName, now); err != nil {
			p.Stop()
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	if err := s.mgr.AddPolicy(p); err != nil {
		p.Stop()
		s.respondManagerErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, policyResponse{Name: req.Name, Handlers: handlerNames(p)})
}

// handleDeletePolicy serves DELETE /api/v1/policies/{name}.
func (s *Server) handleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.mgr.RemovePolicy(name); err != nil {
		s.respondManagerErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
