package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/niveshpath/advisory-backend/internal/entity"
)

const notePreviewLen = 80

// boundaryStages are the pipeline stages significant enough for the global
// audit trail. Routine intermediate status edits stay timeline-only.
var boundaryStages = map[entity.LeadStatus]bool{
	entity.StatusContacted:        true,
	entity.StatusMeetingScheduled: true,
	entity.StatusWon:              true,
	entity.StatusLost:             true,
}

// ShouldAuditGlobally decides whether an event also belongs in the
// cross-entity audit trail. Creation, archive, restore, hard-delete and
// assignee changes always qualify; a status change qualifies only when the
// new status is a boundary stage.
func ShouldAuditGlobally(action entity.ActivityAction, to *entity.ChangeValue) bool {
	switch action {
	case entity.ActionLeadCreated,
		entity.ActionLeadArchived,
		entity.ActionLeadRestored,
		entity.ActionLeadHardDeleted,
		entity.ActionAssigneeUpdate:
		return true
	case entity.ActionStatusUpdate:
		return to != nil && to.Status != nil && boundaryStages[*to.Status]
	}
	return false
}

type RecordActivityInput struct {
	LeadID    string
	Actor     *entity.Actor
	Action    entity.ActivityAction
	Field     string
	From      *entity.ChangeValue
	To        *entity.ChangeValue
	Meta      map[string]string
	RequestID string
}

// ActivityLogger writes every mutating event to the per-lead timeline and,
// when the audit policy says so, to the global audit trail. Both sinks are
// best effort with respect to the caller: a failed write is reported through
// the logger and the failure hook, never returned.
type ActivityLogger struct {
	Activities ActivityRepository
	Audits     AuditRepository
	Users      UserRepository
	Logger     *zap.Logger
	OnFailure  func(sink string) // metrics hook, may be nil
}

func NewActivityLogger(activities ActivityRepository, audits AuditRepository, users UserRepository, logger *zap.Logger) *ActivityLogger {
	return &ActivityLogger{
		Activities: activities,
		Audits:     audits,
		Users:      users,
		Logger:     logger,
	}
}

func (l *ActivityLogger) Record(ctx context.Context, in RecordActivityInput) {
	entry := entity.NewActivityLogEntry(in.LeadID, in.Actor, in.Action)
	entry.Field = in.Field
	entry.From = in.From
	entry.To = in.To
	entry.Meta = in.Meta
	entry.RequestID = in.RequestID

	if err := l.Activities.Create(ctx, entry); err != nil {
		l.fail("activity", in, err)
	}

	if ShouldAuditGlobally(in.Action, in.To) {
		l.writeAudit(ctx, in)
	}
}

// RecordGlobal writes only the audit-trail side. Used for hard deletes,
// where the lead and its timeline no longer exist.
func (l *ActivityLogger) RecordGlobal(ctx context.Context, in RecordActivityInput) {
	l.writeAudit(ctx, in)
}

func (l *ActivityLogger) writeAudit(ctx context.Context, in RecordActivityInput) {
	var actorID *string
	if in.Actor != nil {
		id := in.Actor.ID
		actorID = &id
	}
	entry := entity.NewAuditLogEntry(entity.EntityLead, in.LeadID, "LEAD:"+string(in.Action), actorID)
	entry.Field = in.Field
	entry.From = in.From
	entry.To = in.To
	entry.Meta = in.Meta
	entry.RequestID = in.RequestID

	if err := l.Audits.Create(ctx, entry); err != nil {
		l.fail("audit", in, err)
	}
}

func (l *ActivityLogger) fail(sink string, in RecordActivityInput, err error) {
	l.Logger.Error("log sink write failed",
		zap.String("sink", sink),
		zap.String("lead_id", in.LeadID),
		zap.String("action", string(in.Action)),
		zap.String("request_id", in.RequestID),
		zap.Error(err))
	if l.OnFailure != nil {
		l.OnFailure(sink)
	}
}

// AssigneeValue normalizes an assignee reference into {id, label}, resolving
// the label at write time so the timeline renders without a later lookup.
func (l *ActivityLogger) AssigneeValue(ctx context.Context, id *string) *entity.ChangeValue {
	if id == nil {
		return &entity.ChangeValue{Ref: &entity.RefValue{Label: "Unassigned"}}
	}
	label := "Assigned"
	if user, err := l.Users.FindByID(ctx, *id); err == nil {
		label = user.Name
	}
	return &entity.ChangeValue{Ref: &entity.RefValue{ID: *id, Label: label}}
}

func StatusValue(s entity.LeadStatus) *entity.ChangeValue {
	return &entity.ChangeValue{Status: &s}
}

func FollowUpValue(t *time.Time) *entity.ChangeValue {
	if t == nil {
		return &entity.ChangeValue{Time: &entity.TimeValue{Label: "None"}}
	}
	return &entity.ChangeValue{Time: &entity.TimeValue{
		ISO:   t.UTC().Format(time.RFC3339),
		Label: t.Format("2 Jan 2006, 3:04 PM"),
	}}
}

// NoteValue stores a bounded preview plus the full length, never the raw
// unbounded text.
func NoteValue(body string) *entity.ChangeValue {
	trimmed := strings.TrimSpace(body)
	runes := []rune(trimmed)
	preview := trimmed
	if len(runes) > notePreviewLen {
		preview = string(runes[:notePreviewLen]) + "…"
	}
	return &entity.ChangeValue{Note: &entity.NoteValue{
		Preview: preview,
		Length:  len(runes),
	}}
}

func DetailsValue(fields map[string]string) *entity.ChangeValue {
	return &entity.ChangeValue{Fields: fields}
}

// RedactDetail masks free-text and PII-bearing detail fields while keeping
// structural ones (enumerated types, timestamps) intact.
func RedactDetail(field, value string) string {
	switch field {
	case "name", "message":
		if value == "" {
			return ""
		}
		return "[updated]"
	case "email":
		return maskEmail(value)
	default:
		return value
	}
}

func maskEmail(v string) string {
	if v == "" {
		return ""
	}
	at := strings.LastIndex(v, "@")
	if at < 0 {
		return "[updated]"
	}
	return "…" + v[at:]
}
