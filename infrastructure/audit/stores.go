/*
Package audit provides the pluggable destinations for the audit trail the unit
of work produces: a database table, an append-only file, a Redis stream, or
nothing. All stores treat an empty batch as a no-op.
*/
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"finmarket/domain/shared"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NoopStore discards every batch. Used when auditing is disabled.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) Save(ctx context.Context, logs []*shared.AuditLog) error { return nil }

// GormStore appends audit entries to the audit_logs table in one batch
// insert on its own connection. The audit write is deliberately outside the
// business transaction; its failure is a secondary one.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) Save(ctx context.Context, logs []*shared.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Table("audit_logs").Create(logs).Error; err != nil {
		return fmt.Errorf("audit insert: %w", err)
	}
	return nil
}

// FileStore appends audit entries as JSON lines to a single file. The mutex
// belongs to the instance; two stores on the same path do not serialize
// against each other and should not be created.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

func (s *FileStore) Save(ctx context.Context, logs []*shared.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("audit file open: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, log := range logs {
		if err := enc.Encode(log); err != nil {
			return fmt.Errorf("audit file write: %w", err)
		}
	}
	return nil
}

// StreamStore appends audit entries to a Redis stream. Each entry is keyed by
// its primary-key JSON so consumers can partition per entity and see one
// entity's changes in order.
type StreamStore struct {
	client *goredis.Client
	stream string
}

func NewStreamStore(client *goredis.Client, stream string) *StreamStore {
	return &StreamStore{client: client, stream: stream}
}

func (s *StreamStore) Save(ctx context.Context, logs []*shared.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}
	for _, log := range logs {
		payload, err := json.Marshal(log)
		if err != nil {
			return fmt.Errorf("audit stream encode: %w", err)
		}
		err = s.client.XAdd(ctx, &goredis.XAddArgs{
			Stream: s.stream,
			Values: map[string]any{
				"key":     log.KeyValues,
				"entity":  log.EntityName,
				"action":  string(log.Action),
				"payload": payload,
			},
		}).Err()
		if err != nil {
			return fmt.Errorf("audit stream append: %w", err)
		}
	}
	return nil
}

var (
	_ shared.AuditLogStore = (*NoopStore)(nil)
	_ shared.AuditLogStore = (*GormStore)(nil)
	_ shared.AuditLogStore = (*FileStore)(nil)
	_ shared.AuditLogStore = (*StreamStore)(nil)
)
