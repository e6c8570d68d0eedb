package usecase

import (
	"time"

	"github.com/niveshpath/advisory-backend/internal/entity"
)

type IntakeLeadInput struct {
	Name    string
	Phone   string
	Email   string
	Message string
	Consent *bool // defaults to true

	Source    string // explicit channel, validated against the enum
	Interests []string
	Tags      []string

	PreferredTimeType string
	PreferredTimeAt   *time.Time

	Context entity.Attribution

	// WindowMinutes is the dedupe window; 0 disables deduplication
	// entirely (staff-entered leads).
	WindowMinutes int
	RequestID     string
}

type IntakeLeadOutput struct {
	LeadID  string            `json:"leadId"`
	Deduped bool              `json:"deduped"`
	Status  entity.LeadStatus `json:"status"`
	Source  entity.LeadSource `json:"source"`
}

// OutreachPatchInput carries an arbitrary subset of the patchable outreach
// fields. The *Set flags distinguish "field absent from the patch" from
// "field explicitly set to null".
type OutreachPatchInput struct {
	LeadID string
	Actor  entity.Actor

	Status *string
	Note   *string

	FollowUpAt  *time.Time
	FollowUpSet bool

	AssignedTo  *string
	AssignedSet bool

	RequestID string
}

type OutreachPatchOutput struct {
	LeadID         string            `json:"leadId"`
	Status         entity.LeadStatus `json:"status"`
	FollowUpAt     *time.Time        `json:"followUpAt,omitempty"`
	AssignedTo     *entity.RefValue  `json:"assignedTo,omitempty"`
	LastActivityAt time.Time         `json:"lastActivityAt"`
	NotesCount     int               `json:"notesCount"`
	LatestNote     *entity.Note      `json:"latestNote,omitempty"`
}

type UpdateDetailsInput struct {
	LeadID string
	Actor  entity.Actor

	Name    *string
	Email   *string
	Message *string

	Interests *[]string
	Tags      *[]string

	PreferredTimeType *string
	PreferredTimeAt   *time.Time
	PreferredTimeSet  bool

	RequestID string
}

type ArchiveOutput struct {
	LeadID     string     `json:"leadId"`
	ArchivedAt *time.Time `json:"archivedAt"`
	ArchivedBy *string    `json:"archivedBy,omitempty"`
}

type BulkInput struct {
	LeadIDs    []string
	Actor      entity.Actor
	AssigneeID string // transfer only
	RequestID  string
}

type TimelinePage struct {
	Items []*entity.ActivityLogEntry `json:"items"`
	Total int                        `json:"total"`
}

type LeadPage struct {
	Items []*entity.Lead `json:"items"`
	Total int            `json:"total"`
}
