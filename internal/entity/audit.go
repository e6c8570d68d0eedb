package entity

import (
	"time"

	"github.com/google/uuid"
)

const EntityLead = "lead"

// AuditLogEntry is the cross-entity audit trail row. It has the timeline
// entry's shape generalized to entity+entityId and is written only for
// policy-selected events, so it is coarser than the per-lead timeline and
// neither log can be reconstructed from the other.
type AuditLogEntry struct {
	ID        string            `json:"id"`
	Entity    string            `json:"entity"`
	EntityID  string            `json:"entity_id"`
	ActorID   *string           `json:"actor_id,omitempty"`
	Action    string            `json:"action"` // namespaced, e.g. "LEAD:status_update"
	Field     string            `json:"field,omitempty"`
	From      *ChangeValue      `json:"from,omitempty"`
	To        *ChangeValue      `json:"to,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func NewAuditLogEntry(entityType, entityID, action string, actorID *string) *AuditLogEntry {
	return &AuditLogEntry{
		ID:        uuid.New().String(),
		Entity:    entityType,
		EntityID:  entityID,
		Action:    action,
		ActorID:   actorID,
		CreatedAt: time.Now(),
	}
}
