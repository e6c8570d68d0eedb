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

type OutreachHandler struct {
	Outreach *usecase.UpdateOutreachUseCase
	Logger   *zap.Logger
}

func NewOutreachHandler(outreach *usecase.UpdateOutreachUseCase, logger *zap.Logger) *OutreachHandler {
	return &OutreachHandler{Outreach: outreach, Logger: logger}
}

// HandlePatch applies a partial outreach update. Field presence matters:
// "followUpAt": null clears the follow-up, omitting it leaves it alone, and
// the same for assignedTo.
func (h *OutreachHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthenticated"})
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeBadJSON(w)
		return
	}

	input := usecase.OutreachPatchInput{
		LeadID:    chi.URLParam(r, "id"),
		Actor:     actor,
		RequestID: chimiddleware.GetReqID(r.Context()),
	}

	if v, ok := raw["status"]; ok {
		if err := json.Unmarshal(v, &input.Status); err != nil {
			writeBadJSON(w)
			return
		}
	}
	if v, ok := raw["note"]; ok {
		if err := json.Unmarshal(v, &input.Note); err != nil {
			writeBadJSON(w)
			return
		}
	}
	if v, ok := raw["followUpAt"]; ok {
		if err := json.Unmarshal(v, &input.FollowUpAt); err != nil {
			writeBadJSON(w)
			return
		}
		input.FollowUpSet = true
	}
	if v, ok := raw["assignedTo"]; ok {
		if err := json.Unmarshal(v, &input.AssignedTo); err != nil {
			writeBadJSON(w)
			return
		}
		input.AssignedSet = true
	}

	out, err := h.Outreach.Execute(r.Context(), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	if input.Status != nil {
		middleware.RecordOutreachUpdate("status")
	}
	if input.AssignedSet {
		middleware.RecordOutreachUpdate("assignedTo")
	}
	if input.FollowUpSet {
		middleware.RecordOutreachUpdate("followUpAt")
	}
	writeJSON(w, http.StatusOK, out)
}
