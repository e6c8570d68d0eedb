package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/niveshpath/advisory-backend/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps the use-case error taxonomy onto the API's status codes.
// Technical errors are logged with detail and surfaced generically.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if derr, ok := err.(*usecase.DomainError); ok {
		status := http.StatusBadRequest
		switch derr.Code {
		case usecase.CodeValidation:
			status = http.StatusUnprocessableEntity
		case usecase.CodeNotFound, usecase.CodeNotApplicable:
			status = http.StatusNotFound
		case usecase.CodeForbidden:
			status = http.StatusForbidden
		case usecase.CodeNoUpdates:
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorBody{Error: derr.Code, Fields: derr.Fields})
		return
	}

	logger.Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: usecase.CodeInternal})
}

func writeBadJSON(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_json"})
}
