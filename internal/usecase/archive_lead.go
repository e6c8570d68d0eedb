package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/niveshpath/advisory-backend/internal/entity"
)

// ArchiveLifecycleUseCase moves a lead between Active, Archived and Purged.
// Purged is terminal: the lead document and its whole timeline are gone.
type ArchiveLifecycleUseCase struct {
	Leads      LeadRepository
	Activities ActivityRepository
	Activity   ActivityRecorder
	Logger     *zap.Logger
}

func NewArchiveLifecycleUseCase(leads LeadRepository, activities ActivityRepository, activity ActivityRecorder, logger *zap.Logger) *ArchiveLifecycleUseCase {
	return &ArchiveLifecycleUseCase{
		Leads:      leads,
		Activities: activities,
		Activity:   activity,
		Logger:     logger,
	}
}

func (uc *ArchiveLifecycleUseCase) Archive(ctx context.Context, leadID string, actor entity.Actor) (*ArchiveOutput, error) {
	if _, err := uc.findForActor(ctx, leadID, actor); err != nil {
		return nil, err
	}

	now := time.Now()
	applied, err := uc.Leads.Archive(ctx, leadID, actor.ID, now)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}
	if !applied {
		// already archived (or deleted since the read); never silently succeed
		return nil, &DomainError{Code: CodeNotApplicable, Message: "lead not found or already archived"}
	}

	uc.Activity.Record(ctx, RecordActivityInput{
		LeadID: leadID,
		Actor:  &actor,
		Action: entity.ActionLeadArchived,
	})

	actorID := actor.ID
	return &ArchiveOutput{LeadID: leadID, ArchivedAt: &now, ArchivedBy: &actorID}, nil
}

func (uc *ArchiveLifecycleUseCase) Restore(ctx context.Context, leadID string, actor entity.Actor) (*ArchiveOutput, error) {
	if _, err := uc.findForActor(ctx, leadID, actor); err != nil {
		return nil, err
	}

	applied, err := uc.Leads.Restore(ctx, leadID)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}
	if !applied {
		return nil, &DomainError{Code: CodeNotApplicable, Message: "lead not found or not archived"}
	}

	uc.Activity.Record(ctx, RecordActivityInput{
		LeadID: leadID,
		Actor:  &actor,
		Action: entity.ActionLeadRestored,
	})

	return &ArchiveOutput{LeadID: leadID, ArchivedAt: nil}, nil
}

// Purge deletes the lead and its entire timeline. Both deletes must succeed
// or the operation reports itself incomplete. Irreversible by construction;
// confirmation belongs to the calling layer.
func (uc *ArchiveLifecycleUseCase) Purge(ctx context.Context, leadID string, actor entity.Actor) error {
	if _, err := uc.findForActor(ctx, leadID, actor); err != nil {
		return err
	}

	txn := NewTransaction(uc.Logger)
	txn.AddOperation("delete_lead", func(ctx context.Context) error {
		return uc.Leads.Delete(ctx, leadID)
	})
	txn.AddOperation("delete_activity_log", func(ctx context.Context) error {
		_, err := uc.Activities.DeleteByLead(ctx, leadID)
		return err
	})

	if err := txn.Execute(ctx); err != nil {
		return &TechnicalError{Code: "PURGE_INCOMPLETE", Message: "failed to purge lead: " + err.Error()}
	}

	// the per-lead log no longer exists, so this is the only record left
	uc.Activity.RecordGlobal(ctx, RecordActivityInput{
		LeadID: leadID,
		Actor:  &actor,
		Action: entity.ActionLeadHardDeleted,
	})

	return nil
}

func (uc *ArchiveLifecycleUseCase) findForActor(ctx context.Context, leadID string, actor entity.Actor) (*entity.Lead, error) {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &DomainError{Code: CodeNotFound, Message: "lead not found"}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}
	if !CanUpdate(lead, actor) {
		return nil, &DomainError{Code: CodeForbidden, Message: "not permitted to act on this lead"}
	}
	return lead, nil
}
