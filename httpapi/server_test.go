// SPDX-License-Identifier: GPL-3.0-or-later

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netvisor/agent/internal/pipeline"
	"github.com/netvisor/agent/netmetrics"
	"github.com/netvisor/agent/policy"
)

func newTestServer() (*Server, *http.ServeMux) {
	mgr := policy.NewManager()
	s := NewServer(mgr, time.Unix(0, 0), WithVersion("test"))
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s, mux
}

func TestAppMetrics(t *testing.T) {
	_, mux := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/app", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body appMetricsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "test", body.App.Version)
}

func TestCreateTapThenDuplicateConflicts(t *testing.T) {
	_, mux := newTestServer()

	body, _ := json.Marshal(tapCreateRequest{Name: "net-tap", Kind: pipeline.Net})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/taps", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/taps", bytes.NewReader(body))
	rec2 := httptest.NewRecorder()
	mux.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusConflict, rec2.Code)
}

func TestDeleteMissingTapReturns404(t *testing.T) {
	_, mux := newTestServer()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/taps/nope", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePolicyRejectsUnknownTap(t *testing.T) {
	_, mux := newTestServer()
	body, _ := json.Marshal(policyCreateRequest{
		Name: "p1",
		Handlers: []policyHandlerBinding{
			{Kind: pipeline.Net, Tap: "missing-tap"},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/policies", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreatePolicyAttachesHandlerAndMetricsWindowTooEarly(t *testing.T) {
	_, mux := newTestServer()

	tapBody, _ := json.Marshal(tapCreateRequest{Name: "net-tap", Kind: pipeline.Net})
	tapReq := httptest.NewRequest(http.MethodPost, "/api/v1/taps", bytes.NewReader(tapBody))
	tapRec := httptest.NewRecorder()
	mux.ServeHTTP(tapRec, tapReq)
	require.Equal(t, http.StatusCreated, tapRec.Code)

	polBody, _ := json.Marshal(policyCreateRequest{
		Name: "p1",
		Handlers: []policyHandlerBinding{
			{Kind: pipeline.Net, Tap: "net-tap", HandlerName: "net"},
		},
	})
	polReq := httptest.NewRequest(http.MethodPost, "/api/v1/policies", bytes.NewReader(polBody))
	polRec := httptest.NewRecorder()
	mux.ServeHTTP(polRec, polReq)
	require.Equal(t, http.StatusCreated, polRec.Code)

	winReq := httptest.NewRequest(http.MethodGet, "/api/v1/policies/p1/metrics/window/3", nil)
	winRec := httptest.NewRecorder()
	mux.ServeHTTP(winRec, winReq)
	assert.Equal(t, http.StatusTooEarly, winRec.Code)
}

func TestMetricsPrometheusRendersLiveBucket(t *testing.T) {
	s, mux := newTestServer()

	tap := policy.NewTap[netmetrics.PacketEvent]("net-tap")
	require.NoError(t, s.mgr.AddTap(tap))

	p := policy.NewPolicy("p1")
	h := netmetrics.NewHandler(time.Unix(0, 0), netmetrics.WithName("net"))
	p.RegisterHandler(h)
	policy.Attach(p, tap, "net", h.Process)
	require.NoError(t, s.mgr.AddPolicy(p))

	require.NoError(t, h.Process(context.Background(), netmetrics.PacketEvent{
		Timestamp: time.Unix(0, 0), Direction: netmetrics.In, Family: netmetrics.IPv4, Proto: netmetrics.TCP, Bytes: 100,
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/policies/p1/metrics/prometheus", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `policy="p1"`))
}

func TestDeletePolicyThenMetricsLookupMissing(t *testing.T) {
	_, mux := newTestServer()

	polBody, _ := json.Marshal(policyCreateRequest{Name: "p1"})
	polReq := httptest.NewRequest(http.MethodPost, "/api/v1/policies", bytes.NewReader(polBody))
	polRec := httptest.NewRecorder()
	mux.ServeHTTP(polRec, polReq)
	require.Equal(t, http.StatusCreated, polRec.Code)

	delReq := httptest.NewRequest(http.MethodDelete, "/api/v1/policies/p1", nil)
	delRec := httptest.NewRecorder()
	mux.ServeHTTP(delRec, delReq)
	require.Equal(t, http.StatusNoContent, delRec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/policies/p1/metrics/bucket/0", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
