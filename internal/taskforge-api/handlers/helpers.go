// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/taskforge-api/models"
	"github.com/taskforge/taskforge/internal/taskforge-api/services"
)

// writeJSONResponse writes a successful API response
func writeJSONResponse[T any](w http.ResponseWriter, statusCode int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data) // Ignore encoding errors for response
}

// writeErrorResponse writes an error API response
func writeErrorResponse(w http.ResponseWriter, statusCode int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(models.ErrorBody{Error: code, Message: message})
}

// writeServiceError maps service layer errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		writeErrorResponse(w, http.StatusNotFound, err.Error(), services.CodeTaskNotFound)
	case errors.Is(err, services.ErrWorkflowNotFound):
		writeErrorResponse(w, http.StatusNotFound, err.Error(), services.CodeWorkflowNotFound)
	case errors.Is(err, services.ErrProjectNotFound):
		writeErrorResponse(w, http.StatusNotFound, err.Error(), services.CodeProjectNotFound)
	case errors.Is(err, services.ErrCircularDependency):
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeCircularDep)
	case errors.Is(err, services.ErrInvalidTransition):
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeInvalidTransition)
	case errors.Is(err, services.ErrInvalidTask):
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeInvalidTask)
	case errors.Is(err, services.ErrInvalidWorkflow):
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeInvalidWorkflow)
	case errors.Is(err, services.ErrValidation):
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeValidationError)
	case errors.Is(err, services.ErrStorage):
		logger.Error("storage failure", "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "storage operation failed", services.CodeStorageError)
	default:
		logger.Error("unexpected service error", "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "internal server error", services.CodeInternalError)
	}
}

// pathID parses the {id} path segment. A false return means the response
// has already been written.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid id in path", services.CodeInvalidInput)
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody decodes a JSON request body. A false return means the response
// has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body", services.CodeInvalidInput)
		return false
	}
	return true
}
