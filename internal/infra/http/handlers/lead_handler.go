package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/niveshpath/advisory-backend/internal/entity"
	"github.com/niveshpath/advisory-backend/internal/infra/http/middleware"
	"github.com/niveshpath/advisory-backend/internal/usecase"
)

type LeadHandler struct {
	Intake  *usecase.IntakeLeadUseCase
	Listing *usecase.ListLeadsUseCase
	Details *usecase.UpdateDetailsUseCase
	Users   usecase.UserRepository
	Logger  *zap.Logger
}

func NewLeadHandler(intake *usecase.IntakeLeadUseCase, listing *usecase.ListLeadsUseCase, details *usecase.UpdateDetailsUseCase, users usecase.UserRepository, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		Intake:  intake,
		Listing: listing,
		Details: details,
		Users:   users,
		Logger:  logger,
	}
}

type intakeRequest struct {
	Name              string             `json:"name"`
	Phone             string             `json:"phone"`
	Email             string             `json:"email,omitempty"`
	Message           string             `json:"message,omitempty"`
	Consent           *bool              `json:"consent,omitempty"`
	Source            string             `json:"source,omitempty"`
	Interests         []string           `json:"interests,omitempty"`
	Tags              []string           `json:"tags,omitempty"`
	PreferredTimeType string             `json:"preferred_time_type,omitempty"`
	PreferredTimeAt   *time.Time         `json:"preferred_time_at,omitempty"`
	Context           entity.Attribution `json:"context"`
}

// HandleIntake is the public intake endpoint. Deduped submissions succeed
// with 200 by design; only fresh leads return 201.
func (h *LeadHandler) HandleIntake(w http.ResponseWriter, r *http.Request) {
	h.handleIntake(w, r, dedupeWindow(r))
}

// HandleIntakeOps is the staff-entry variant: dedupe disabled so manual
// re-entries always create.
func (h *LeadHandler) HandleIntakeOps(w http.ResponseWriter, r *http.Request) {
	h.handleIntake(w, r, 0)
}

func (h *LeadHandler) handleIntake(w http.ResponseWriter, r *http.Request, windowMinutes int) {
	var req intakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadJSON(w)
		return
	}

	out, err := h.Intake.Execute(r.Context(), usecase.IntakeLeadInput{
		Name:              req.Name,
		Phone:             req.Phone,
		Email:             req.Email,
		Message:           req.Message,
		Consent:           req.Consent,
		Source:            req.Source,
		Interests:         req.Interests,
		Tags:              req.Tags,
		PreferredTimeType: req.PreferredTimeType,
		PreferredTimeAt:   req.PreferredTimeAt,
		Context:           req.Context,
		WindowMinutes:     windowMinutes,
		RequestID:         chimiddleware.GetReqID(r.Context()),
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	if out.Deduped {
		middleware.RecordLeadDeduped()
		writeJSON(w, http.StatusOK, out)
		return
	}
	middleware.RecordLeadCreated(string(out.Source))
	writeJSON(w, http.StatusCreated, out)
}

func dedupeWindow(r *http.Request) int {
	header := r.Header.Get("x-dedupe-minutes")
	if header == "" {
		return usecase.DefaultDedupeWindowMinutes
	}
	minutes, err := strconv.Atoi(header)
	if err != nil || minutes < 0 {
		return usecase.DefaultDedupeWindowMinutes
	}
	return minutes
}

func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.Listing.Execute(r.Context(), listFilterFromQuery(r))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func listFilterFromQuery(r *http.Request) usecase.ListLeadsFilter {
	q := r.URL.Query()

	f := usecase.ListLeadsFilter{
		Query:       q.Get("q"),
		Phone:       q.Get("phone"),
		FollowUp:    q.Get("followUp"),
		ArchiveMode: q.Get("archiveMode"),
		Sort:        q.Get("sort"),
	}
	if s := q.Get("status"); s != "" {
		status := entity.LeadStatus(s)
		f.Status = &status
	}
	if s := q.Get("source"); s != "" {
		source := entity.LeadSource(s)
		f.Source = &source
	}
	if s, ok := q["assignedTo"]; ok && len(s) > 0 {
		f.AssignedTo = &s[0]
	}
	if s := q.Get("interests"); s != "" {
		f.Interests = strings.Split(s, ",")
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Skip, _ = strconv.Atoi(q.Get("skip"))
	return f
}

type leadResponse struct {
	*entity.Lead
	Assignee   *entity.RefValue `json:"assignee,omitempty"`
	LatestNote *entity.Note     `json:"latest_note,omitempty"`
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Listing.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(r, lead))
}

func (h *LeadHandler) toResponse(r *http.Request, lead *entity.Lead) leadResponse {
	resp := leadResponse{Lead: lead, LatestNote: lead.LatestNote()}
	if id := lead.Outreach.AssignedTo; id != nil {
		ref := &entity.RefValue{ID: *id, Label: "Assigned"}
		if user, err := h.Users.FindByID(r.Context(), *id); err == nil {
			ref.Label = user.Name
		}
		resp.Assignee = ref
	}
	return resp
}

func (h *LeadHandler) HandlePatchDetails(w http.ResponseWriter, r *http.Request) {
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

	input := usecase.UpdateDetailsInput{
		LeadID:    chi.URLParam(r, "id"),
		Actor:     actor,
		RequestID: chimiddleware.GetReqID(r.Context()),
	}

	var decodeErr error
	decode := func(key string, dst interface{}) bool {
		v, ok := raw[key]
		if !ok || decodeErr != nil {
			return false
		}
		if err := json.Unmarshal(v, dst); err != nil {
			decodeErr = err
			return false
		}
		return true
	}

	decode("name", &input.Name)
	decode("email", &input.Email)
	decode("message", &input.Message)
	decode("interests", &input.Interests)
	decode("tags", &input.Tags)
	decode("preferred_time_type", &input.PreferredTimeType)
	if decode("preferred_time_at", &input.PreferredTimeAt) {
		input.PreferredTimeSet = true
	}
	if decodeErr != nil {
		writeBadJSON(w)
		return
	}

	lead, err := h.Details.Execute(r.Context(), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"lead": h.toResponse(r, lead),
	})
}
