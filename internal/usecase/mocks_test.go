package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/niveshpath/advisory-backend/internal/entity"
	"github.com/niveshpath/advisory-backend/internal/infra/queue"
	"github.com/niveshpath/advisory-backend/internal/usecase"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Lead, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindRecentByPhone(ctx context.Context, phone string, since time.Time) (*entity.Lead, error) {
	args := m.Called(ctx, phone, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, f usecase.ListLeadsFilter) ([]*entity.Lead, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entity.Lead), args.Int(1), args.Error(2)
}

func (m *MockLeadRepository) UpdateOutreach(ctx context.Context, id string, o entity.Outreach) error {
	args := m.Called(ctx, id, o)
	return args.Error(0)
}

func (m *MockLeadRepository) UpdateDetails(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) AppendNote(ctx context.Context, note entity.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockLeadRepository) Archive(ctx context.Context, id, actorID string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, actorID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) Restore(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepository) BulkArchive(ctx context.Context, ids []string, actorID string, at time.Time) (usecase.BulkResult, error) {
	args := m.Called(ctx, ids, actorID, at)
	return args.Get(0).(usecase.BulkResult), args.Error(1)
}

func (m *MockLeadRepository) BulkRestore(ctx context.Context, ids []string) (usecase.BulkResult, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(usecase.BulkResult), args.Error(1)
}

func (m *MockLeadRepository) BulkAssign(ctx context.Context, ids []string, assigneeID string, at time.Time) (usecase.BulkResult, error) {
	args := m.Called(ctx, ids, assigneeID, at)
	return args.Get(0).(usecase.BulkResult), args.Error(1)
}

func (m *MockLeadRepository) BulkDelete(ctx context.Context, ids []string) (usecase.BulkResult, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(usecase.BulkResult), args.Error(1)
}

// MockActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, e *entity.ActivityLogEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockActivityRepository) ListByLead(ctx context.Context, leadID string, limit, skip int) ([]*entity.ActivityLogEntry, int, error) {
	args := m.Called(ctx, leadID, limit, skip)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entity.ActivityLogEntry), args.Int(1), args.Error(2)
}

func (m *MockActivityRepository) DeleteByLead(ctx context.Context, leadID string) (int64, error) {
	args := m.Called(ctx, leadID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, e *entity.AuditLogEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishLeadEvent(ctx context.Context, payload queue.LeadEventPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// recorderSpy captures what the use cases hand to the activity recorder so
// tests can assert on the log stream without wiring both sink repositories.
type recorderSpy struct {
	mu      sync.Mutex
	records []usecase.RecordActivityInput
	globals []usecase.RecordActivityInput
}

func (r *recorderSpy) Record(ctx context.Context, in usecase.RecordActivityInput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, in)
}

func (r *recorderSpy) RecordGlobal(ctx context.Context, in usecase.RecordActivityInput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globals = append(r.globals, in)
}

func (r *recorderSpy) AssigneeValue(ctx context.Context, id *string) *entity.ChangeValue {
	if id == nil {
		return &entity.ChangeValue{Ref: &entity.RefValue{Label: "Unassigned"}}
	}
	return &entity.ChangeValue{Ref: &entity.RefValue{ID: *id, Label: "User " + *id}}
}

func (r *recorderSpy) recorded() []usecase.RecordActivityInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]usecase.RecordActivityInput(nil), r.records...)
}

func (r *recorderSpy) global() []usecase.RecordActivityInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]usecase.RecordActivityInput(nil), r.globals...)
}

func strptr(s string) *string { return &s }

func timeptr(t time.Time) *time.Time { return &t }
