package usecase

import (
	"context"
	"time"

	"github.com/niveshpath/advisory-backend/internal/entity"
	"github.com/niveshpath/advisory-backend/internal/infra/queue"
)

type ListLeadsFilter struct {
	Query      string
	Status     *entity.LeadStatus
	Phone      string
	Source     *entity.LeadSource
	AssignedTo *string
	Interests  []string
	FollowUp   string // overdue | today | upcoming
	ArchiveMode string // active (default) | archived | all
	Sort       string
	Limit      int
	Skip       int
}

type BulkResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}

type LeadRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	FindByIDs(ctx context.Context, ids []string) ([]*entity.Lead, error)
	FindRecentByPhone(ctx context.Context, phone string, since time.Time) (*entity.Lead, error)
	List(ctx context.Context, f ListLeadsFilter) ([]*entity.Lead, int, error)
	UpdateOutreach(ctx context.Context, id string, o entity.Outreach) error
	UpdateDetails(ctx context.Context, lead *entity.Lead) error
	AppendNote(ctx context.Context, note entity.Note) error
	Archive(ctx context.Context, id, actorID string, at time.Time) (bool, error)
	Restore(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	BulkArchive(ctx context.Context, ids []string, actorID string, at time.Time) (BulkResult, error)
	BulkRestore(ctx context.Context, ids []string) (BulkResult, error)
	BulkAssign(ctx context.Context, ids []string, assigneeID string, at time.Time) (BulkResult, error)
	BulkDelete(ctx context.Context, ids []string) (BulkResult, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, e *entity.ActivityLogEntry) error
	ListByLead(ctx context.Context, leadID string, limit, skip int) ([]*entity.ActivityLogEntry, int, error)
	DeleteByLead(ctx context.Context, leadID string) (int64, error)
}

type AuditRepository interface {
	Create(ctx context.Context, e *entity.AuditLogEntry) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

type QueueProducerInterface interface {
	PublishLeadEvent(ctx context.Context, payload queue.LeadEventPayload) error
}

// ActivityRecorder is the dual-log sink used by the mutating use cases.
// Record never fails the caller; sink errors are surfaced through the
// logger and metrics instead.
type ActivityRecorder interface {
	Record(ctx context.Context, in RecordActivityInput)
	RecordGlobal(ctx context.Context, in RecordActivityInput)
	AssigneeValue(ctx context.Context, id *string) *entity.ChangeValue
}
