package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/niveshpath/advisory-backend/internal/usecase"
)

type ActivityHandler struct {
	Activities usecase.ActivityRepository
	Logger     *zap.Logger
}

func NewActivityHandler(activities usecase.ActivityRepository, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{Activities: activities, Logger: logger}
}

// HandleTimeline serves the per-lead timeline, newest first. Actor names
// were resolved at write time, so no join is needed here.
func (h *ActivityHandler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "id")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	if skip < 0 {
		skip = 0
	}

	items, total, err := h.Activities.ListByLead(r.Context(), leadID, limit, skip)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, usecase.TimelinePage{Items: items, Total: total})
}
