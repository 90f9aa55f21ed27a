package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditAction is the kind of change an audit entry records.
type AuditAction string

const (
	AuditActionCreated  AuditAction = "created"
	AuditActionModified AuditAction = "modified"
	AuditActionDeleted  AuditAction = "deleted"
)

// AuditLog captures one tracked entity change within one transaction: who did
// it, what kind of change, which entity, and JSON snapshots of the key and the
// changed field values. Modified entries with zero actually-changed fields are
// never produced.
type AuditLog struct {
	ID         uuid.UUID   `gorm:"type:char(36);primaryKey" json:"id"`
	ActorID    string      `json:"actor_id"`
	Action     AuditAction `json:"action"`
	EntityName string      `json:"entity_name"`
	Timestamp  time.Time   `json:"timestamp"`

	// KeyValues is the JSON form of the primary key value(s).
	KeyValues string `json:"key_values"`

	// OldValues holds the prior field values for modified/deleted entries.
	OldValues string `json:"old_values,omitempty"`

	// NewValues holds the resulting field values for created/modified entries.
	NewValues string `json:"new_values,omitempty"`
}

// AuditLogStore durably appends a batch of audit entries. Implementations
// differ only in destination. An empty batch is a no-op; backend errors
// propagate to the committing unit of work, which treats them as a secondary
// failure mode.
type AuditLogStore interface {
	Save(ctx context.Context, logs []*AuditLog) error
}

// ActorProvider yields the acting user's identifier for audit attribution.
// An empty string means the action was unattributed (system or anonymous).
type ActorProvider interface {
	ActorID(ctx context.Context) string
}
