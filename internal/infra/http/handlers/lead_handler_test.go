package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/niveshpath/advisory-backend/internal/entity"
	"github.com/niveshpath/advisory-backend/internal/infra/http/handlers"
	"github.com/niveshpath/advisory-backend/internal/infra/queue"
	"github.com/niveshpath/advisory-backend/internal/usecase"
)

// MockLeadRepositoryHandler
type MockLeadRepositoryHandler struct {
	mock.Mock
}

func (m *MockLeadRepositoryHandler) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepositoryHandler) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepositoryHandler) FindByIDs(ctx context.Context, ids []string) ([]*entity.Lead, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepositoryHandler) FindRecentByPhone(ctx context.Context, phone string, since time.Time) (*entity.Lead, error) {
	args := m.Called(ctx, phone, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepositoryHandler) List(ctx context.Context, f usecase.ListLeadsFilter) ([]*entity.Lead, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entity.Lead), args.Int(1), args.Error(2)
}

func (m *MockLeadRepositoryHandler) UpdateOutreach(ctx context.Context, id string, o entity.Outreach) error {
	args := m.Called(ctx, id, o)
	return args.Error(0)
}

func (m *MockLeadRepositoryHandler) UpdateDetails(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepositoryHandler) AppendNote(ctx context.Context, note entity.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockLeadRepositoryHandler) Archive(ctx context.Context, id, actorID string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, actorID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepositoryHandler) Restore(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepositoryHandler) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepositoryHandler) BulkArchive(ctx context.Context, ids []string, actorID string, at time.Time) (usecase.BulkResult, error) {
	args := m.Called(ctx, ids, actorID, at)
	return args.Get(0).(usecase.BulkResult), args.Error(1)
}

func (m *MockLeadRepositoryHandler) BulkRestore(ctx context.Context, ids []string) (usecase.BulkResult, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(usecase.BulkResult), args.Error(1)
}

func (m *MockLeadRepositoryHandler) BulkAssign(ctx context.Context, ids []string, assigneeID string, at time.Time) (usecase.BulkResult, error) {
	args := m.Called(ctx, ids, assigneeID, at)
	return args.Get(0).(usecase.BulkResult), args.Error(1)
}

func (m *MockLeadRepositoryHandler) BulkDelete(ctx context.Context, ids []string) (usecase.BulkResult, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(usecase.BulkResult), args.Error(1)
}

// MockUserRepositoryHandler
type MockUserRepositoryHandler struct {
	mock.Mock
}

func (m *MockUserRepositoryHandler) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// MockQueueProducerHandler
type MockQueueProducerHandler struct {
	mock.Mock
}

func (m *MockQueueProducerHandler) PublishLeadEvent(ctx context.Context, payload queue.LeadEventPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// noopRecorder keeps handler tests focused on the HTTP surface.
type noopRecorder struct{}

func (noopRecorder) Record(context.Context, usecase.RecordActivityInput)       {}
func (noopRecorder) RecordGlobal(context.Context, usecase.RecordActivityInput) {}
func (noopRecorder) AssigneeValue(ctx context.Context, id *string) *entity.ChangeValue {
	return &entity.ChangeValue{Ref: &entity.RefValue{Label: "Unassigned"}}
}

func newLeadHandler(leads usecase.LeadRepository, users usecase.UserRepository, producer usecase.QueueProducerInterface) *handlers.LeadHandler {
	logger := zap.NewNop()
	intake := usecase.NewIntakeLeadUseCase(leads, noopRecorder{}, producer, logger)
	listing := usecase.NewListLeadsUseCase(leads)
	details := usecase.NewUpdateDetailsUseCase(leads, noopRecorder{}, logger)
	return handlers.NewLeadHandler(intake, listing, details, users, logger)
}

func TestHandleIntakeCreated(t *testing.T) {
	mockLeads := new(MockLeadRepositoryHandler)
	mockQueue := new(MockQueueProducerHandler)

	mockLeads.On("FindRecentByPhone", mock.Anything, "+919876543210", mock.Anything).Return(nil, nil)
	mockLeads.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockQueue.On("PublishLeadEvent", mock.Anything, mock.Anything).Return(nil)

	h := newLeadHandler(mockLeads, new(MockUserRepositoryHandler), mockQueue)

	body, _ := json.Marshal(map[string]interface{}{
		"name":  "Asha Verma",
		"phone": "+91 98765 43210",
		"context": map[string]string{
			"utm_source": "google",
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleIntake(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp usecase.IntakeLeadOutput
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.LeadID)
	assert.False(t, resp.Deduped)
	assert.Equal(t, entity.StatusNew, resp.Status)
}

// A deduped submission is a success for the caller, just not a creation.
func TestHandleIntakeDeduped(t *testing.T) {
	mockLeads := new(MockLeadRepositoryHandler)

	existing := entity.NewLead("Asha Verma", "+919876543210")
	mockLeads.On("FindRecentByPhone", mock.Anything, "+919876543210", mock.Anything).Return(existing, nil)

	h := newLeadHandler(mockLeads, new(MockUserRepositoryHandler), new(MockQueueProducerHandler))

	body, _ := json.Marshal(map[string]string{"name": "Asha", "phone": "+919876543210"})
	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleIntake(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp usecase.IntakeLeadOutput
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Deduped)
	assert.Equal(t, existing.ID, resp.LeadID)
	mockLeads.AssertNotCalled(t, "Create")
}

func TestHandleIntakeValidationFailure(t *testing.T) {
	h := newLeadHandler(new(MockLeadRepositoryHandler), new(MockUserRepositoryHandler), new(MockQueueProducerHandler))

	body, _ := json.Marshal(map[string]string{"name": "", "phone": "12"})
	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleIntake(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_failed", resp.Error)
	assert.Contains(t, resp.Fields, "name")
	assert.Contains(t, resp.Fields, "phone")
}

func TestHandleIntakeBadJSON(t *testing.T) {
	h := newLeadHandler(new(MockLeadRepositoryHandler), new(MockUserRepositoryHandler), new(MockQueueProducerHandler))

	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	h.HandleIntake(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleIntakeDedupeDisabledByHeader(t *testing.T) {
	mockLeads := new(MockLeadRepositoryHandler)
	mockQueue := new(MockQueueProducerHandler)

	mockLeads.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockQueue.On("PublishLeadEvent", mock.Anything, mock.Anything).Return(nil)

	h := newLeadHandler(mockLeads, new(MockUserRepositoryHandler), mockQueue)

	body, _ := json.Marshal(map[string]string{"name": "Asha", "phone": "+919876543210"})
	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader(body))
	req.Header.Set("x-dedupe-minutes", "0")
	rec := httptest.NewRecorder()

	h.HandleIntake(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	mockLeads.AssertNotCalled(t, "FindRecentByPhone")
}

func TestHandleGetLead(t *testing.T) {
	mockLeads := new(MockLeadRepositoryHandler)
	mockUsers := new(MockUserRepositoryHandler)

	lead := entity.NewLead("Asha Verma", "+919876543210")
	lead.ID = "lead-1"
	assignee := "adv-1"
	lead.Outreach.AssignedTo = &assignee
	mockLeads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)
	mockUsers.On("FindByID", mock.Anything, "adv-1").Return(&entity.User{ID: "adv-1", Name: "Rohan Advisor"}, nil)

	h := newLeadHandler(mockLeads, mockUsers, new(MockQueueProducerHandler))

	r := chi.NewRouter()
	r.Get("/leads/{id}", h.HandleGet)

	req := httptest.NewRequest(http.MethodGet, "/leads/lead-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ID       string `json:"id"`
		Assignee *struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"assignee"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "lead-1", resp.ID)
	assert.NotNil(t, resp.Assignee)
	assert.Equal(t, "Rohan Advisor", resp.Assignee.Label)
}

func TestHandleGetLeadNotFound(t *testing.T) {
	mockLeads := new(MockLeadRepositoryHandler)
	mockLeads.On("FindByID", mock.Anything, "missing").Return(nil, entity.ErrLeadNotFound)

	h := newLeadHandler(mockLeads, new(MockUserRepositoryHandler), new(MockQueueProducerHandler))

	r := chi.NewRouter()
	r.Get("/leads/{id}", h.HandleGet)

	req := httptest.NewRequest(http.MethodGet, "/leads/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp.Error)
}
