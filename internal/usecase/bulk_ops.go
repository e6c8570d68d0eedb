package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/niveshpath/advisory-backend/internal/entity"
)

// BulkOpsUseCase applies a lifecycle operation to a set of leads. Items the
// actor may not act on are silently filtered out, never failed individually;
// the caller only learns aggregate counts. The data write is one set-based
// update; the per-lead timeline entries afterwards are best effort.
type BulkOpsUseCase struct {
	Leads      LeadRepository
	Activities ActivityRepository
	Activity   ActivityRecorder
	Logger     *zap.Logger
}

func NewBulkOpsUseCase(leads LeadRepository, activities ActivityRepository, activity ActivityRecorder, logger *zap.Logger) *BulkOpsUseCase {
	return &BulkOpsUseCase{
		Leads:      leads,
		Activities: activities,
		Activity:   activity,
		Logger:     logger,
	}
}

func (uc *BulkOpsUseCase) Archive(ctx context.Context, input BulkInput) (BulkResult, error) {
	leads, err := uc.permitted(ctx, input, CanUpdate)
	if err != nil {
		return BulkResult{}, err
	}

	eligible := idsWhere(leads, func(l *entity.Lead) bool { return !l.Archived() })
	if len(eligible) == 0 {
		return BulkResult{}, nil
	}

	res, err := uc.Leads.BulkArchive(ctx, eligible, input.Actor.ID, time.Now())
	if err != nil {
		return BulkResult{}, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	uc.logEach(ctx, eligible, input, entity.ActionLeadArchived)
	return res, nil
}

func (uc *BulkOpsUseCase) Restore(ctx context.Context, input BulkInput) (BulkResult, error) {
	leads, err := uc.permitted(ctx, input, CanUpdate)
	if err != nil {
		return BulkResult{}, err
	}

	eligible := idsWhere(leads, func(l *entity.Lead) bool { return l.Archived() })
	if len(eligible) == 0 {
		return BulkResult{}, nil
	}

	res, err := uc.Leads.BulkRestore(ctx, eligible)
	if err != nil {
		return BulkResult{}, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	uc.logEach(ctx, eligible, input, entity.ActionLeadRestored)
	return res, nil
}

// Transfer reassigns every permitted lead to one target assignee. Previous
// assignees survive only as the "from" side of the timeline entries.
func (uc *BulkOpsUseCase) Transfer(ctx context.Context, input BulkInput) (BulkResult, error) {
	if input.AssigneeID == "" {
		return BulkResult{}, NewValidationError([]ValidationError{{"assignee_id", "is required"}})
	}

	leads, err := uc.permitted(ctx, input, CanTransfer)
	if err != nil {
		return BulkResult{}, err
	}

	eligible := idsWhere(leads, func(l *entity.Lead) bool { return !l.Archived() })
	if len(eligible) == 0 {
		return BulkResult{}, nil
	}

	res, err := uc.Leads.BulkAssign(ctx, eligible, input.AssigneeID, time.Now())
	if err != nil {
		return BulkResult{}, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	to := uc.Activity.AssigneeValue(ctx, &input.AssigneeID)
	byID := make(map[string]*entity.Lead, len(leads))
	for _, l := range leads {
		byID[l.ID] = l
	}
	for _, id := range eligible {
		uc.Activity.Record(ctx, RecordActivityInput{
			LeadID:    id,
			Actor:     &input.Actor,
			Action:    entity.ActionAssigneeUpdate,
			Field:     entity.FieldAssignee,
			From:      uc.Activity.AssigneeValue(ctx, byID[id].Outreach.AssignedTo),
			To:        to,
			RequestID: input.RequestID,
		})
	}
	return res, nil
}

// Purge hard-deletes every permitted lead together with its timeline, then
// writes one global audit entry per deleted lead.
func (uc *BulkOpsUseCase) Purge(ctx context.Context, input BulkInput) (BulkResult, error) {
	leads, err := uc.permitted(ctx, input, CanUpdate)
	if err != nil {
		return BulkResult{}, err
	}

	ids := idsWhere(leads, func(*entity.Lead) bool { return true })
	if len(ids) == 0 {
		return BulkResult{}, nil
	}

	res, err := uc.Leads.BulkDelete(ctx, ids)
	if err != nil {
		return BulkResult{}, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	for _, id := range ids {
		if _, err := uc.Activities.DeleteByLead(ctx, id); err != nil {
			uc.Logger.Error("bulk purge: timeline delete failed",
				zap.String("lead_id", id), zap.Error(err))
		}
		uc.Activity.RecordGlobal(ctx, RecordActivityInput{
			LeadID:    id,
			Actor:     &input.Actor,
			Action:    entity.ActionLeadHardDeleted,
			RequestID: input.RequestID,
		})
	}
	return res, nil
}

// permitted fetches the requested leads and keeps only those the actor may
// act on per the resolver rule.
func (uc *BulkOpsUseCase) permitted(ctx context.Context, input BulkInput, allowed func(*entity.Lead, entity.Actor) bool) ([]*entity.Lead, error) {
	if len(input.LeadIDs) == 0 {
		return nil, NewValidationError([]ValidationError{{"lead_ids", "must not be empty"}})
	}

	leads, err := uc.Leads.FindByIDs(ctx, input.LeadIDs)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	kept := leads[:0]
	for _, l := range leads {
		if allowed(l, input.Actor) {
			kept = append(kept, l)
		}
	}
	return kept, nil
}

func (uc *BulkOpsUseCase) logEach(ctx context.Context, ids []string, input BulkInput, action entity.ActivityAction) {
	for _, id := range ids {
		uc.Activity.Record(ctx, RecordActivityInput{
			LeadID:    id,
			Actor:     &input.Actor,
			Action:    action,
			RequestID: input.RequestID,
		})
	}
}

func idsWhere(leads []*entity.Lead, keep func(*entity.Lead) bool) []string {
	var ids []string
	for _, l := range leads {
		if keep(l) {
			ids = append(ids, l.ID)
		}
	}
	return ids
}
