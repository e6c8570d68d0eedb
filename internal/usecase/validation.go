package usecase

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/niveshpath/advisory-backend/internal/entity"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// followUpGrace tolerates client clock skew when a future follow-up time is
// required.
const followUpGrace = 60 * time.Second

// StageRules are the per-status requirements an outreach patch must satisfy
// when moving a lead into that status. This table is the single source of
// those rules for both server-side enforcement and client pre-validation.
type StageRules struct {
	NoteRequired           bool
	FollowUpRequired       bool
	FutureFollowUpRequired bool
}

var stageRules = map[entity.LeadStatus]StageRules{
	entity.StatusFollowUp: {NoteRequired: true, FollowUpRequired: true, FutureFollowUpRequired: true},
	entity.StatusWon:      {NoteRequired: true},
	entity.StatusLost:     {NoteRequired: true},
}

func RulesFor(status entity.LeadStatus) StageRules {
	return stageRules[status]
}

func ValidateIntakeInput(input IntakeLeadInput) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, ValidationError{"name", "is required"})
	} else if len(input.Name) > 200 {
		errs = append(errs, ValidationError{"name", "must not exceed 200 characters"})
	}

	phone := entity.NormalizePhone(input.Phone)
	if phone == "" {
		errs = append(errs, ValidationError{"phone", "is required"})
	} else if !isValidPhoneNumber(phone) {
		errs = append(errs, ValidationError{"phone", "must be a valid phone number"})
	}

	if input.Email != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			errs = append(errs, ValidationError{"email", "is invalid"})
		}
	}

	ptt := entity.PreferredTimeType(input.PreferredTimeType)
	if input.PreferredTimeType == "" {
		ptt = entity.PreferredASAP
	}
	if !entity.ValidPreferredTimeType(ptt) {
		errs = append(errs, ValidationError{"preferred_time_type", "must be ASAP, LATER or SCHEDULED"})
	} else if ptt == entity.PreferredScheduled {
		if input.PreferredTimeAt == nil {
			errs = append(errs, ValidationError{"preferred_time_at", "is required when preferred_time_type is SCHEDULED"})
		} else if input.PreferredTimeAt.Before(time.Now().Add(-followUpGrace)) {
			errs = append(errs, ValidationError{"preferred_time_at", "must not be in the past"})
		}
	} else if input.PreferredTimeAt != nil {
		errs = append(errs, ValidationError{"preferred_time_at", "is only allowed when preferred_time_type is SCHEDULED"})
	}

	return errs
}

// validateStageRules checks the target status requirements against the
// effective (post-patch) note and follow-up values.
func validateStageRules(status entity.LeadStatus, note string, followUpAt *time.Time) []ValidationError {
	rules := RulesFor(status)
	var errs []ValidationError

	if rules.NoteRequired && strings.TrimSpace(note) == "" {
		errs = append(errs, ValidationError{"note", fmt.Sprintf("is required for status %q", status)})
	}
	if rules.FollowUpRequired && followUpAt == nil {
		errs = append(errs, ValidationError{"follow_up_at", fmt.Sprintf("is required for status %q", status)})
	}
	if rules.FutureFollowUpRequired && followUpAt != nil &&
		followUpAt.Before(time.Now().Add(-followUpGrace)) {
		errs = append(errs, ValidationError{"follow_up_at", "must not be in the past"})
	}
	return errs
}

func isValidPhoneNumber(normalized string) bool {
	digits := strings.TrimPrefix(normalized, "+")
	return len(digits) >= 10 && len(digits) <= 14
}
