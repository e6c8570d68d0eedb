package entity

import (
	"time"

	"github.com/google/uuid"
)

type ActivityAction string

const (
	ActionLeadCreated        ActivityAction = "lead_created"
	ActionStatusUpdate       ActivityAction = "status_update"
	ActionFollowUpUpdate     ActivityAction = "followUpAt_update"
	ActionAssigneeUpdate     ActivityAction = "assignedTo_update"
	ActionNoteAdd            ActivityAction = "note_add"
	ActionLeadArchived       ActivityAction = "lead_archived"
	ActionLeadRestored       ActivityAction = "lead_restored"
	ActionLeadHardDeleted    ActivityAction = "lead_hard_deleted"
	ActionLeadDetailsUpdated ActivityAction = "lead_details_updated"
)

// Timeline field names, stored on entries so the log renders without
// re-deriving which attribute a diff belongs to.
const (
	FieldStatus   = "outreach.status"
	FieldFollowUp = "outreach.followUpAt"
	FieldAssignee = "outreach.assignedTo"
	FieldNote     = "outreach.note"
	FieldDetails  = "details"
)

// RefValue is a normalized reference diff side: the raw id plus a label
// resolved at write time, so the timeline stays renderable after the
// referenced user changes or disappears.
type RefValue struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
}

type TimeValue struct {
	ISO   string `json:"iso,omitempty"`
	Label string `json:"label"`
}

// NoteValue carries a bounded preview instead of the raw note text.
type NoteValue struct {
	Preview string `json:"preview"`
	Length  int    `json:"length"`
}

// ChangeValue is the tagged from/to payload of a log entry. Exactly one of
// the variant fields is set, keyed by the entry's action:
// status_update -> Status, assignedTo_update -> Ref, followUpAt_update ->
// Time, note_add -> Note, lead_details_updated -> Fields.
type ChangeValue struct {
	Status *LeadStatus       `json:"status,omitempty"`
	Ref    *RefValue         `json:"ref,omitempty"`
	Time   *TimeValue        `json:"time,omitempty"`
	Note   *NoteValue        `json:"note,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ActivityLogEntry is one row of the per-lead timeline. Entries are
// immutable once written; they are only ever removed when their parent lead
// is hard-deleted.
type ActivityLogEntry struct {
	ID        string            `json:"id"`
	LeadID    string            `json:"lead_id"`
	ActorID   *string           `json:"actor_id,omitempty"` // nil means system-initiated
	ActorName string            `json:"actor_name,omitempty"`
	Action    ActivityAction    `json:"action"`
	Field     string            `json:"field,omitempty"`
	From      *ChangeValue      `json:"from,omitempty"`
	To        *ChangeValue      `json:"to,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func NewActivityLogEntry(leadID string, actor *Actor, action ActivityAction) *ActivityLogEntry {
	e := &ActivityLogEntry{
		ID:        uuid.New().String(),
		LeadID:    leadID,
		Action:    action,
		CreatedAt: time.Now(),
	}
	if actor != nil {
		id := actor.ID
		e.ActorID = &id
		e.ActorName = actor.Name
	}
	return e
}
