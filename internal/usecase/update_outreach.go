package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/niveshpath/advisory-backend/internal/entity"
	"github.com/niveshpath/advisory-backend/internal/infra/queue"
)

type UpdateOutreachUseCase struct {
	Leads    LeadRepository
	Users    UserRepository
	Activity ActivityRecorder
	Queue    QueueProducerInterface
	Logger   *zap.Logger
}

func NewUpdateOutreachUseCase(leads LeadRepository, users UserRepository, activity ActivityRecorder, producer QueueProducerInterface, logger *zap.Logger) *UpdateOutreachUseCase {
	return &UpdateOutreachUseCase{
		Leads:    leads,
		Users:    users,
		Activity: activity,
		Queue:    producer,
		Logger:   logger,
	}
}

type fieldChange struct {
	action entity.ActivityAction
	field  string
	from   *entity.ChangeValue
	to     *entity.ChangeValue
}

// Execute applies a partial outreach patch: snapshot, per-field diff,
// stage-rule validation, one persisted write, then one timeline entry per
// changed field. Concurrent patches to the same lead are last-write-wins at
// the field level; the diff is computed against the snapshot read here.
func (uc *UpdateOutreachUseCase) Execute(ctx context.Context, input OutreachPatchInput) (*OutreachPatchOutput, error) {
	lead, err := uc.Leads.FindByID(ctx, input.LeadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &DomainError{Code: CodeNotFound, Message: "lead not found"}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}
	if lead.Archived() {
		return nil, &DomainError{Code: CodeNotApplicable, Message: "lead is archived"}
	}

	current := lead.Outreach

	// assignee change first: claiming grants update rights for the rest of
	// the patch
	assigneeChanged := false
	newAssignee := current.AssignedTo
	if input.AssignedSet {
		if input.AssignedTo != nil {
			if _, err := uc.Users.FindByID(ctx, *input.AssignedTo); err != nil {
				return nil, NewValidationError([]ValidationError{{"assigned_to", "unknown user"}})
			}
		}
		if !refEqual(current.AssignedTo, input.AssignedTo) {
			if !CanTransfer(lead, input.Actor) {
				return nil, &DomainError{Code: CodeForbidden, Message: "not permitted to transfer this lead"}
			}
			assigneeChanged = true
			newAssignee = input.AssignedTo
		}
	}

	var newStatus *entity.LeadStatus
	if input.Status != nil {
		s := entity.LeadStatus(*input.Status)
		if !entity.ValidStatus(s) {
			return nil, NewValidationError([]ValidationError{{"status", "must be a valid pipeline stage"}})
		}
		if s != current.Status {
			newStatus = &s
		}
	}

	noteChanged := false
	noteBody := ""
	if input.Note != nil {
		noteBody = strings.TrimSpace(*input.Note)
		currentBody := ""
		if n := lead.LatestNote(); n != nil {
			currentBody = strings.TrimSpace(n.Body)
		}
		noteChanged = noteBody != "" && noteBody != currentBody
	}

	followUpChanged := false
	newFollowUp := current.FollowUpAt
	if input.FollowUpSet && !timeEqual(current.FollowUpAt, input.FollowUpAt) {
		followUpChanged = true
		newFollowUp = input.FollowUpAt
	}

	if newStatus == nil && !noteChanged && !followUpChanged && !assigneeChanged {
		return nil, &DomainError{Code: CodeNoUpdates, Message: "no recognized field changed"}
	}

	// non-transfer mutations require update rights against the post-claim
	// assignee
	if newStatus != nil || noteChanged || followUpChanged {
		effective := *lead
		effective.Outreach.AssignedTo = newAssignee
		if !CanUpdate(&effective, input.Actor) {
			return nil, &DomainError{Code: CodeForbidden, Message: "not permitted to update this lead"}
		}
	}

	if newStatus != nil {
		if errs := validateStageRules(*newStatus, noteBody, newFollowUp); len(errs) > 0 {
			return nil, NewValidationError(errs)
		}
	}

	now := time.Now()
	updated := current
	updated.AssignedTo = newAssignee
	updated.FollowUpAt = newFollowUp
	updated.LastActivityAt = now
	if newStatus != nil {
		updated.Status = *newStatus
	}

	if err := uc.Leads.UpdateOutreach(ctx, lead.ID, updated); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to update outreach: " + err.Error()}
	}

	if noteChanged {
		actorID := input.Actor.ID
		note := entity.Note{
			ID:        uuid.New().String(),
			LeadID:    lead.ID,
			Body:      noteBody,
			AuthorID:  &actorID,
			CreatedAt: now,
		}
		if err := uc.Leads.AppendNote(ctx, note); err != nil {
			return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to append note: " + err.Error()}
		}
		lead.Notes = append(lead.Notes, note)
	}
	lead.Outreach = updated

	for _, change := range uc.collectChanges(ctx, current, updated, lead, newStatus, noteChanged, followUpChanged, assigneeChanged, noteBody) {
		uc.Activity.Record(ctx, RecordActivityInput{
			LeadID:    lead.ID,
			Actor:     &input.Actor,
			Action:    change.action,
			Field:     change.field,
			From:      change.from,
			To:        change.to,
			RequestID: input.RequestID,
		})
	}

	uc.publishEvents(lead, input.Actor, newStatus, assigneeChanged)

	return uc.buildOutput(ctx, lead), nil
}

func (uc *UpdateOutreachUseCase) collectChanges(ctx context.Context, before, after entity.Outreach, lead *entity.Lead, newStatus *entity.LeadStatus, noteChanged, followUpChanged, assigneeChanged bool, noteBody string) []fieldChange {
	var changes []fieldChange

	if newStatus != nil {
		changes = append(changes, fieldChange{
			action: entity.ActionStatusUpdate,
			field:  entity.FieldStatus,
			from:   StatusValue(before.Status),
			to:     StatusValue(after.Status),
		})
	}
	if assigneeChanged {
		changes = append(changes, fieldChange{
			action: entity.ActionAssigneeUpdate,
			field:  entity.FieldAssignee,
			from:   uc.Activity.AssigneeValue(ctx, before.AssignedTo),
			to:     uc.Activity.AssigneeValue(ctx, after.AssignedTo),
		})
	}
	if followUpChanged {
		changes = append(changes, fieldChange{
			action: entity.ActionFollowUpUpdate,
			field:  entity.FieldFollowUp,
			from:   FollowUpValue(before.FollowUpAt),
			to:     FollowUpValue(after.FollowUpAt),
		})
	}
	if noteChanged {
		var from *entity.ChangeValue
		if len(lead.Notes) > 1 {
			from = NoteValue(lead.Notes[len(lead.Notes)-2].Body)
		}
		changes = append(changes, fieldChange{
			action: entity.ActionNoteAdd,
			field:  entity.FieldNote,
			from:   from,
			to:     NoteValue(noteBody),
		})
	}
	return changes
}

func (uc *UpdateOutreachUseCase) publishEvents(lead *entity.Lead, actor entity.Actor, newStatus *entity.LeadStatus, assigneeChanged bool) {
	var payloads []queue.LeadEventPayload

	if assigneeChanged && lead.Outreach.AssignedTo != nil {
		payloads = append(payloads, queue.LeadEventPayload{
			Event:      queue.EventLeadAssigned,
			LeadID:     lead.ID,
			LeadName:   lead.Name,
			AssignedTo: *lead.Outreach.AssignedTo,
			ActorID:    actor.ID,
			OccurredAt: lead.Outreach.LastActivityAt,
		})
	}
	if newStatus != nil && boundaryStages[*newStatus] {
		p := queue.LeadEventPayload{
			Event:      queue.EventStatusChanged,
			LeadID:     lead.ID,
			LeadName:   lead.Name,
			Status:     string(*newStatus),
			ActorID:    actor.ID,
			OccurredAt: lead.Outreach.LastActivityAt,
		}
		if lead.Outreach.AssignedTo != nil {
			p.AssignedTo = *lead.Outreach.AssignedTo
		}
		payloads = append(payloads, p)
	}
	if len(payloads) == 0 {
		return
	}

	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, p := range payloads {
			if err := uc.Queue.PublishLeadEvent(pubCtx, p); err != nil {
				uc.Logger.Warn("lead event publish failed",
					zap.String("event", p.Event),
					zap.String("lead_id", p.LeadID),
					zap.Error(err))
			}
		}
	}()
}

func (uc *UpdateOutreachUseCase) buildOutput(ctx context.Context, lead *entity.Lead) *OutreachPatchOutput {
	out := &OutreachPatchOutput{
		LeadID:         lead.ID,
		Status:         lead.Outreach.Status,
		FollowUpAt:     lead.Outreach.FollowUpAt,
		LastActivityAt: lead.Outreach.LastActivityAt,
		NotesCount:     len(lead.Notes),
		LatestNote:     lead.LatestNote(),
	}
	if id := lead.Outreach.AssignedTo; id != nil {
		ref := &entity.RefValue{ID: *id, Label: "Assigned"}
		if user, err := uc.Users.FindByID(ctx, *id); err == nil {
			ref.Label = user.Name
		}
		out.AssignedTo = ref
	}
	return out
}

func refEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// timeEqual compares by instant, not by struct representation.
func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return (a == nil) == (b == nil)
	}
	return a.Equal(*b)
}
