package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	StatusNew              LeadStatus = "New"
	StatusContacted        LeadStatus = "Contacted"
	StatusFollowUp         LeadStatus = "Follow-Up"
	StatusMeetingScheduled LeadStatus = "Meeting Scheduled"
	StatusWon              LeadStatus = "Won"
	StatusLost             LeadStatus = "Lost"
)

func ValidStatus(s LeadStatus) bool {
	switch s {
	case StatusNew, StatusContacted, StatusFollowUp, StatusMeetingScheduled, StatusWon, StatusLost:
		return true
	}
	return false
}

type LeadSource string

const (
	SourceWebsite  LeadSource = "Website"
	SourceReferral LeadSource = "Referral"
	SourceWhatsApp LeadSource = "WhatsApp"
	SourceCampaign LeadSource = "Campaign"
	SourceWalkIn   LeadSource = "Walk-In"
	SourceOther    LeadSource = "Other"
)

func ValidSource(s LeadSource) bool {
	switch s {
	case SourceWebsite, SourceReferral, SourceWhatsApp, SourceCampaign, SourceWalkIn, SourceOther:
		return true
	}
	return false
}

type PreferredTimeType string

const (
	PreferredASAP      PreferredTimeType = "ASAP"
	PreferredLater     PreferredTimeType = "LATER"
	PreferredScheduled PreferredTimeType = "SCHEDULED"
)

func ValidPreferredTimeType(t PreferredTimeType) bool {
	return t == PreferredASAP || t == PreferredLater || t == PreferredScheduled
}

// Attribution is captured once at intake and never mutated afterwards.
type Attribution struct {
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMTerm     string `json:"utm_term,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`
	PageURL     string `json:"page_url,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
}

// Note is one entry of the append-only note history. The history is the
// source of truth; the "latest note" exposed by the API is a projection of
// the last element, never a separately stored field.
type Note struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"-"`
	Body      string    `json:"body"`
	AuthorID  *string   `json:"author_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Outreach is the mutable pipeline state of a lead, as opposed to the
// immutable intake data around it.
type Outreach struct {
	Status         LeadStatus `json:"status"`
	AssignedTo     *string    `json:"assigned_to,omitempty"`
	FollowUpAt     *time.Time `json:"follow_up_at,omitempty"`
	LastActivityAt time.Time  `json:"last_activity_at"`
}

type Lead struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`

	Source    LeadSource `json:"source"`
	RawSource string     `json:"raw_source,omitempty"`
	Interests []string   `json:"interests,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	Consent   bool       `json:"consent"`

	Attribution Attribution `json:"attribution"`

	PreferredTimeType PreferredTimeType `json:"preferred_time_type"`
	PreferredTimeAt   *time.Time        `json:"preferred_time_at,omitempty"`

	Outreach Outreach `json:"outreach"`
	Notes    []Note   `json:"notes,omitempty"`

	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	ArchivedBy *string    `json:"archived_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewLead(name, phone string) *Lead {
	now := time.Now()
	return &Lead{
		ID:                uuid.New().String(),
		Name:              name,
		Phone:             NormalizePhone(phone),
		Consent:           true,
		Source:            SourceOther,
		PreferredTimeType: PreferredASAP,
		Outreach: Outreach{
			Status:         StatusNew,
			LastActivityAt: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (l *Lead) Archived() bool {
	return l.ArchivedAt != nil
}

// LatestNote projects the current note from the history tail.
func (l *Lead) LatestNote() *Note {
	if len(l.Notes) == 0 {
		return nil
	}
	return &l.Notes[len(l.Notes)-1]
}

func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(l.Phone) == "" {
		return errors.New("phone is required")
	}
	if !ValidStatus(l.Outreach.Status) {
		return errors.New("invalid outreach status")
	}
	if l.PreferredTimeType == PreferredScheduled && l.PreferredTimeAt == nil {
		return errors.New("preferred_time_at is required for SCHEDULED")
	}
	if l.PreferredTimeType != PreferredScheduled && l.PreferredTimeAt != nil {
		return errors.New("preferred_time_at only allowed for SCHEDULED")
	}
	return nil
}

// NormalizePhone strips whitespace, dashes and parentheses so two spellings
// of the same number dedupe against each other. A leading + is preserved.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
