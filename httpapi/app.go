// SPDX-License-Identifier: GPL-3.0-or-later

package httpapi

import (
	"net/http"
	"time"
)

type appMetricsResponse struct {
	App appMetrics `json:"app"`
}

type appMetrics struct {
	Version   string  `json:"version"`
	UpTimeMin float64 `json:"up_time_min"`
}

// handleAppMetrics serves GET /api/v1/metrics/app (spec.md §6:
// "{app:{version, up_time_min}}").
func (s *Server) handleAppMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, appMetricsResponse{
		App: appMetrics{
			Version:   s.version,
			UpTimeMin: time.Since(s.startedAt).Minutes(),
		},
	})
}
