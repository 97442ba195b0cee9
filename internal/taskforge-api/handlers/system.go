// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/taskforge/taskforge/internal/server/middleware/logger"
)

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Stats handles GET /stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	stats, err := h.services.Stats()
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, stats)
}
