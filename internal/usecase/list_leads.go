package usecase

import (
	"context"
	"errors"

	"github.com/niveshpath/advisory-backend/internal/entity"
)

type ListLeadsUseCase struct {
	Leads LeadRepository
}

func NewListLeadsUseCase(leads LeadRepository) *ListLeadsUseCase {
	return &ListLeadsUseCase{Leads: leads}
}

const (
	defaultPageSize = 25
	maxPageSize     = 200
)

func (uc *ListLeadsUseCase) Execute(ctx context.Context, f ListLeadsFilter) (*LeadPage, error) {
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.ArchiveMode == "" {
		f.ArchiveMode = "active"
	}
	if f.Phone != "" {
		f.Phone = entity.NormalizePhone(f.Phone)
	}

	items, total, err := uc.Leads.List(ctx, f)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}
	return &LeadPage{Items: items, Total: total}, nil
}

func (uc *ListLeadsUseCase) Get(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &DomainError{Code: CodeNotFound, Message: "lead not found"}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}
	return lead, nil
}
