package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+91 98765-43210", "+919876543210"},
		{"(011) 2345 6789", "01123456789"},
		{"98765 43210", "9876543210"},
		{"+91-98765-43210", "+919876543210"},
		{"98+7654", "987654"}, // + only survives in first position
		{"", ""},
		{"abc", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePhone(tc.in), "input %q", tc.in)
	}
}

func TestNewLeadDefaults(t *testing.T) {
	lead := NewLead("Asha Verma", "+91 98765 43210")

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "+919876543210", lead.Phone)
	assert.True(t, lead.Consent)
	assert.Equal(t, StatusNew, lead.Outreach.Status)
	assert.Equal(t, SourceOther, lead.Source)
	assert.Equal(t, PreferredASAP, lead.PreferredTimeType)
	assert.False(t, lead.Archived())
	assert.False(t, lead.Outreach.LastActivityAt.IsZero())
}

func TestLatestNoteProjection(t *testing.T) {
	lead := NewLead("Asha", "+919876543210")
	assert.Nil(t, lead.LatestNote())

	lead.Notes = append(lead.Notes,
		Note{ID: "n1", Body: "first call"},
		Note{ID: "n2", Body: "second call"},
	)
	latest := lead.LatestNote()
	assert.Equal(t, "n2", latest.ID)
	assert.Equal(t, "second call", latest.Body)
}

func TestLeadValidateSchedulingInvariant(t *testing.T) {
	at := time.Now().Add(24 * time.Hour)

	lead := NewLead("Asha", "+919876543210")
	assert.NoError(t, lead.Validate())

	lead.PreferredTimeType = PreferredScheduled
	assert.Error(t, lead.Validate(), "SCHEDULED without a time")

	lead.PreferredTimeAt = &at
	assert.NoError(t, lead.Validate())

	lead.PreferredTimeType = PreferredLater
	assert.Error(t, lead.Validate(), "time without SCHEDULED")
}

func TestLeadValidateRequiredFields(t *testing.T) {
	lead := NewLead("", "+919876543210")
	assert.Error(t, lead.Validate())

	lead = NewLead("Asha", "")
	assert.Error(t, lead.Validate())

	lead = NewLead("Asha", "+919876543210")
	lead.Outreach.Status = LeadStatus("Imagined")
	assert.Error(t, lead.Validate())
}

func TestArchivedProjection(t *testing.T) {
	lead := NewLead("Asha", "+919876543210")
	assert.False(t, lead.Archived())

	now := time.Now()
	lead.ArchivedAt = &now
	assert.True(t, lead.Archived())
}
