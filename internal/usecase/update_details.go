package usecase

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/niveshpath/advisory-backend/internal/entity"
)

type UpdateDetailsUseCase struct {
	Leads    LeadRepository
	Activity ActivityRecorder
	Logger   *zap.Logger
}

func NewUpdateDetailsUseCase(leads LeadRepository, activity ActivityRecorder, logger *zap.Logger) *UpdateDetailsUseCase {
	return &UpdateDetailsUseCase{Leads: leads, Activity: activity, Logger: logger}
}

// Execute edits the lead's intake details (not its outreach state). One
// lead_details_updated timeline entry is written for the whole patch, with
// free-text fields redacted in the diff payload.
func (uc *UpdateDetailsUseCase) Execute(ctx context.Context, input UpdateDetailsInput) (*entity.Lead, error) {
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
	if !CanUpdate(lead, input.Actor) {
		return nil, &DomainError{Code: CodeForbidden, Message: "not permitted to update this lead"}
	}

	fromFields := map[string]string{}
	toFields := map[string]string{}
	changed := func(field, oldVal, newVal string) {
		fromFields[field] = RedactDetail(field, oldVal)
		toFields[field] = RedactDetail(field, newVal)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, NewValidationError([]ValidationError{{"name", "is required"}})
		}
		if name != lead.Name {
			changed("name", lead.Name, name)
			lead.Name = name
		}
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				return nil, NewValidationError([]ValidationError{{"email", "is invalid"}})
			}
		}
		if email != lead.Email {
			changed("email", lead.Email, email)
			lead.Email = email
		}
	}
	if input.Message != nil {
		msg := strings.TrimSpace(*input.Message)
		if msg != lead.Message {
			changed("message", lead.Message, msg)
			lead.Message = msg
		}
	}
	if input.Interests != nil && !stringSliceEqual(*input.Interests, lead.Interests) {
		changed("interests", strings.Join(lead.Interests, ","), strings.Join(*input.Interests, ","))
		lead.Interests = *input.Interests
	}
	if input.Tags != nil && !stringSliceEqual(*input.Tags, lead.Tags) {
		changed("tags", strings.Join(lead.Tags, ","), strings.Join(*input.Tags, ","))
		lead.Tags = *input.Tags
	}

	if input.PreferredTimeType != nil || input.PreferredTimeSet {
		ptt := lead.PreferredTimeType
		if input.PreferredTimeType != nil {
			ptt = entity.PreferredTimeType(*input.PreferredTimeType)
			if !entity.ValidPreferredTimeType(ptt) {
				return nil, NewValidationError([]ValidationError{{"preferred_time_type", "must be ASAP, LATER or SCHEDULED"}})
			}
		}
		pta := lead.PreferredTimeAt
		if input.PreferredTimeSet {
			pta = input.PreferredTimeAt
		}
		if ptt == entity.PreferredScheduled {
			if pta == nil {
				return nil, NewValidationError([]ValidationError{{"preferred_time_at", "is required when preferred_time_type is SCHEDULED"}})
			}
			if pta.Before(time.Now().Add(-followUpGrace)) {
				return nil, NewValidationError([]ValidationError{{"preferred_time_at", "must not be in the past"}})
			}
		} else {
			pta = nil
		}

		if ptt != lead.PreferredTimeType {
			changed("preferred_time_type", string(lead.PreferredTimeType), string(ptt))
			lead.PreferredTimeType = ptt
		}
		if !timeEqual(pta, lead.PreferredTimeAt) {
			changed("preferred_time_at", timeLabel(lead.PreferredTimeAt), timeLabel(pta))
			lead.PreferredTimeAt = pta
		}
	}

	if len(toFields) == 0 {
		return nil, &DomainError{Code: CodeNoUpdates, Message: "no recognized field changed"}
	}

	lead.UpdatedAt = time.Now()
	if err := uc.Leads.UpdateDetails(ctx, lead); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to update lead: " + err.Error()}
	}

	uc.Activity.Record(ctx, RecordActivityInput{
		LeadID:    lead.ID,
		Actor:     &input.Actor,
		Action:    entity.ActionLeadDetailsUpdated,
		Field:     entity.FieldDetails,
		From:      DetailsValue(fromFields),
		To:        DetailsValue(toFields),
		RequestID: input.RequestID,
	})

	return lead, nil
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func timeLabel(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
