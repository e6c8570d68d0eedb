package database

import (
	"context"
	"database/sql"

	"github.com/niveshpath/advisory-backend/internal/entity"
)

type AuditRepository struct {
	DB *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{DB: db}
}

func (r *AuditRepository) Create(ctx context.Context, e *entity.AuditLogEntry) error {
	from, err := marshalChange(e.From)
	if err != nil {
		return err
	}
	to, err := marshalChange(e.To)
	if err != nil {
		return err
	}
	meta, err := marshalMeta(e.Meta)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO audit_log (id, entity, entity_id, actor_id, action, field,
		                       from_value, to_value, meta, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, e.ID, e.Entity, e.EntityID, e.ActorID, e.Action, e.Field,
		from, to, meta, e.RequestID, e.CreatedAt)
	return err
}
