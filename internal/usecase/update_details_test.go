package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/niveshpath/advisory-backend/internal/entity"
	"github.com/niveshpath/advisory-backend/internal/usecase"
)

func newDetailsUC(leads *MockLeadRepository, spy *recorderSpy) *usecase.UpdateDetailsUseCase {
	return usecase.NewUpdateDetailsUseCase(leads, spy, zap.NewNop())
}

func TestUpdateDetailsRedactsDiff(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)
	spy := &recorderSpy{}

	lead := activeLead("lead-1")
	lead.Email = "asha@example.com"
	mockLeads.On("FindByID", ctx, "lead-1").Return(lead, nil)
	mockLeads.On("UpdateDetails", ctx, mock.Anything).Return(nil)

	uc := newDetailsUC(mockLeads, spy)

	updated, err := uc.Execute(ctx, usecase.UpdateDetailsInput{
		LeadID: "lead-1",
		Actor:  adminActor,
		Name:   strptr("Asha V. Verma"),
		Email:  strptr("asha.verma@gmail.com"),
	})

	assert.NoError(t, err)
	assert.Equal(t, "Asha V. Verma", updated.Name)
	assert.Equal(t, "asha.verma@gmail.com", updated.Email)

	records := spy.recorded()
	assert.Len(t, records, 1)
	assert.Equal(t, entity.ActionLeadDetailsUpdated, records[0].Action)
	assert.Equal(t, entity.FieldDetails, records[0].Field)

	// free text never lands raw in the log
	assert.Equal(t, "[updated]", records[0].From.Fields["name"])
	assert.Equal(t, "[updated]", records[0].To.Fields["name"])
	assert.Equal(t, "…@example.com", records[0].From.Fields["email"])
	assert.Equal(t, "…@gmail.com", records[0].To.Fields["email"])
}

func TestUpdateDetailsNoChanges(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)

	lead := activeLead("lead-1")
	mockLeads.On("FindByID", ctx, "lead-1").Return(lead, nil)

	uc := newDetailsUC(mockLeads, &recorderSpy{})

	_, err := uc.Execute(ctx, usecase.UpdateDetailsInput{
		LeadID: "lead-1",
		Actor:  adminActor,
		Name:   strptr("Asha Verma"), // equals current
	})

	assert.Error(t, err)
	domainErr := err.(*usecase.DomainError)
	assert.Equal(t, usecase.CodeNoUpdates, domainErr.Code)
	mockLeads.AssertNotCalled(t, "UpdateDetails")
}

func TestUpdateDetailsArchivedRejected(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)

	lead := activeLead("lead-1")
	lead.ArchivedAt = timeptr(time.Now().Add(-time.Hour))
	mockLeads.On("FindByID", ctx, "lead-1").Return(lead, nil)

	uc := newDetailsUC(mockLeads, &recorderSpy{})

	_, err := uc.Execute(ctx, usecase.UpdateDetailsInput{
		LeadID: "lead-1",
		Actor:  adminActor,
		Name:   strptr("New Name"),
	})

	assert.Error(t, err)
	domainErr := err.(*usecase.DomainError)
	assert.Equal(t, usecase.CodeNotApplicable, domainErr.Code)
}

func TestUpdateDetailsBlankNameRejected(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)
	mockLeads.On("FindByID", ctx, "lead-1").Return(activeLead("lead-1"), nil)

	uc := newDetailsUC(mockLeads, &recorderSpy{})

	_, err := uc.Execute(ctx, usecase.UpdateDetailsInput{
		LeadID: "lead-1",
		Actor:  adminActor,
		Name:   strptr("   "),
	})

	assert.Error(t, err)
	domainErr := err.(*usecase.DomainError)
	assert.Equal(t, usecase.CodeValidation, domainErr.Code)
	assert.Contains(t, domainErr.Fields, "name")
}

func TestUpdateDetailsScheduledNeedsTime(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)
	mockLeads.On("FindByID", ctx, "lead-1").Return(activeLead("lead-1"), nil)

	uc := newDetailsUC(mockLeads, &recorderSpy{})

	_, err := uc.Execute(ctx, usecase.UpdateDetailsInput{
		LeadID:            "lead-1",
		Actor:             adminActor,
		PreferredTimeType: strptr("SCHEDULED"),
	})

	assert.Error(t, err)
	domainErr := err.(*usecase.DomainError)
	assert.Contains(t, domainErr.Fields, "preferred_time_at")
}

// Switching away from SCHEDULED drops the stale time so the scheduling
// invariant keeps holding.
func TestUpdateDetailsClearsTimeWhenLeavingScheduled(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)
	spy := &recorderSpy{}

	lead := activeLead("lead-1")
	lead.PreferredTimeType = entity.PreferredScheduled
	lead.PreferredTimeAt = timeptr(time.Now().Add(24 * time.Hour))
	mockLeads.On("FindByID", ctx, "lead-1").Return(lead, nil)
	mockLeads.On("UpdateDetails", ctx, mock.Anything).Return(nil)

	uc := newDetailsUC(mockLeads, spy)

	updated, err := uc.Execute(ctx, usecase.UpdateDetailsInput{
		LeadID:            "lead-1",
		Actor:             adminActor,
		PreferredTimeType: strptr("ASAP"),
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.PreferredASAP, updated.PreferredTimeType)
	assert.Nil(t, updated.PreferredTimeAt)
}

func TestUpdateDetailsInterestsChange(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)
	spy := &recorderSpy{}

	lead := activeLead("lead-1")
	lead.Interests = []string{"tax"}
	mockLeads.On("FindByID", ctx, "lead-1").Return(lead, nil)
	mockLeads.On("UpdateDetails", ctx, mock.Anything).Return(nil)

	uc := newDetailsUC(mockLeads, spy)

	interests := []string{"tax", "insurance"}
	updated, err := uc.Execute(ctx, usecase.UpdateDetailsInput{
		LeadID:    "lead-1",
		Actor:     adminActor,
		Interests: &interests,
	})

	assert.NoError(t, err)
	assert.Equal(t, interests, updated.Interests)

	records := spy.recorded()
	assert.Len(t, records, 1)
	// structural fields stay readable in the diff
	assert.Equal(t, "tax", records[0].From.Fields["interests"])
	assert.Equal(t, "tax,insurance", records[0].To.Fields["interests"])
}
