// SPDX-License-Identifier: GPL-3.0-or-later

package httpapi

import (
	"errors"
	"net/http"

	"github.com/netvisor/agent/internal/pipeline"
	"github.com/netvisor/agent/policy"
)

// tapCreateRequest is the POST /api/v1/taps request body: a name and the
// handler kind it will carry events for.
type tapCreateRequest struct {
	Name string        `json:"name" yaml:"name"`
	Kind pipeline.Kind `json:"kind" yaml:"kind"`
}

type tapResponse struct {
	Name string        `json:"name"`
	Kind pipeline.Kind `json:"kind,omitempty"`
}

// handleListTaps serves GET /api/v1/taps.
func (s *Server) handleListTaps(w http.ResponseWriter, r *http.Request) {
	names := s.mgr.Taps()
	out := make([]tapResponse, 0, len(names))
	for _, name := range names {
		out = append(out, tapResponse{Name: name})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetTap serves GET /api/v1/taps/{name}.
func (s *Server) handleGetTap(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, err := s.mgr.Tap(name); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tapResponse{Name: name})
}

// handleCreateTap serves POST /api/v1/taps (spec.md §6: "201 on create,
// 409 if name exists").
func (s *Server) handleCreateTap(w http.ResponseWriter, r *http.Request) {
	var req tapCreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.Name == "" || !pipeline.Valid(req.Kind) {
		writeError(w, http.StatusUnprocessableEntity, "name and a valid kind are required")
		return
	}

	tap, err := pipeline.NewTap(req.Kind, req.Name)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.mgr.AddTap(tap); err != nil {
		s.respondManagerErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tapResponse{Name: req.Name, Kind: req.Kind})
}

// handleDeleteTap serves DELETE /api/v1/taps/{name} (spec.md §6: "404 on
// missing").
func (s *Server) handleDeleteTap(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.mgr.RemoveTap(name); err != nil {
		s.respondManagerErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondManagerErr maps a policy package sentinel error to its HTTP
// status (spec.md §6/§7), falling back to 500 for anything else
// (classified via the server's ErrClassifier before logging, per
// spec.md §7's "internal unexpected" handling).
func (s *Server) respondManagerErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, policy.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, policy.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Info("unexpected manager error", "err", err, "err_class", s.classifier.Classify(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

