package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/niveshpath/advisory-backend/internal/entity"
)

type ActivityRepository struct {
	DB *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) Create(ctx context.Context, e *entity.ActivityLogEntry) error {
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
		INSERT INTO activity_log (id, lead_id, actor_id, actor_name, action, field,
		                          from_value, to_value, meta, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, e.ID, e.LeadID, e.ActorID, e.ActorName, string(e.Action), e.Field,
		from, to, meta, e.RequestID, e.CreatedAt)
	return err
}

func (r *ActivityRepository) ListByLead(ctx context.Context, leadID string, limit, skip int) ([]*entity.ActivityLogEntry, int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity_log WHERE lead_id = $1`, leadID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, lead_id, actor_id, actor_name, action, field,
		       from_value, to_value, meta, request_id, created_at
		FROM activity_log
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, leadID, limit, skip)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*entity.ActivityLogEntry
	for rows.Next() {
		var e entity.ActivityLogEntry
		var actorID sql.NullString
		var action string
		var from, to, meta []byte
		if err := rows.Scan(&e.ID, &e.LeadID, &actorID, &e.ActorName, &action, &e.Field,
			&from, &to, &meta, &e.RequestID, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		e.Action = entity.ActivityAction(action)
		if actorID.Valid {
			e.ActorID = &actorID.String
		}
		if e.From, err = unmarshalChange(from); err != nil {
			return nil, 0, err
		}
		if e.To, err = unmarshalChange(to); err != nil {
			return nil, 0, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Meta); err != nil {
				return nil, 0, err
			}
		}
		items = append(items, &e)
	}
	return items, total, rows.Err()
}

func (r *ActivityRepository) DeleteByLead(ctx context.Context, leadID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM activity_log WHERE lead_id = $1`, leadID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func marshalChange(v *entity.ChangeValue) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalChange(b []byte) (*entity.ChangeValue, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var v entity.ChangeValue
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func marshalMeta(m map[string]string) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}
