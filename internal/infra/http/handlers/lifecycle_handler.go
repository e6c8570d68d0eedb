package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/niveshpath/advisory-backend/internal/infra/http/middleware"
	"github.com/niveshpath/advisory-backend/internal/usecase"
)

type LifecycleHandler struct {
	Lifecycle *usecase.ArchiveLifecycleUseCase
	Bulk      *usecase.BulkOpsUseCase
	Logger    *zap.Logger
}

func NewLifecycleHandler(lifecycle *usecase.ArchiveLifecycleUseCase, bulk *usecase.BulkOpsUseCase, logger *zap.Logger) *LifecycleHandler {
	return &LifecycleHandler{Lifecycle: lifecycle, Bulk: bulk, Logger: logger}
}

func (h *LifecycleHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthenticated"})
		return
	}

	out, err := h.Lifecycle.Archive(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *LifecycleHandler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthenticated"})
		return
	}

	out, err := h.Lifecycle.Restore(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *LifecycleHandler) HandlePurge(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthenticated"})
		return
	}

	if err := h.Lifecycle.Purge(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bulkRequest struct {
	LeadIDs    []string `json:"leadIds"`
	AssigneeID string   `json:"assigneeId,omitempty"`
}

func (h *LifecycleHandler) HandleBulk(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFrom(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthenticated"})
			return
		}

		var req bulkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadJSON(w)
			return
		}

		input := usecase.BulkInput{
			LeadIDs:    req.LeadIDs,
			Actor:      actor,
			AssigneeID: req.AssigneeID,
			RequestID:  chimiddleware.GetReqID(r.Context()),
		}

		var result usecase.BulkResult
		var err error
		switch op {
		case "archive":
			result, err = h.Bulk.Archive(r.Context(), input)
		case "restore":
			result, err = h.Bulk.Restore(r.Context(), input)
		case "transfer":
			result, err = h.Bulk.Transfer(r.Context(), input)
		case "hard-delete":
			result, err = h.Bulk.Purge(r.Context(), input)
		default:
			writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown bulk operation"})
			return
		}
		if err != nil {
			writeError(w, h.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
