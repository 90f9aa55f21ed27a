package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finmarket/domain/shared"
	"finmarket/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Persister writes a batch of tracked changes atomically and returns the
// number of persisted entities. It is the only seam between the unit of work
// and the database, which keeps the commit sequence testable without one.
type Persister interface {
	Persist(ctx context.Context, entries []*ChangeEntry) (int, error)
}

// GormPersister persists change entries through GORM. Inserts are plain
// creates; updates and soft deletes bump the version and guard the write with
// the version the entity was loaded at, so a stale write affects zero rows
// and surfaces as a concurrency conflict.
type GormPersister struct {
	db *gorm.DB
}

func NewGormPersister(db *gorm.DB) *GormPersister {
	return &GormPersister{db: db}
}

// Persist writes all entries inside one transaction. A transaction already on
// the context is joined instead.
func (p *GormPersister) Persist(ctx context.Context, entries []*ChangeEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	if tx := TxFromContext(ctx); tx != nil {
		return p.persistAll(tx, entries)
	}
	var affected int
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		affected, err = p.persistAll(tx, entries)
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (p *GormPersister) persistAll(tx *gorm.DB, entries []*ChangeEntry) (int, error) {
	affected := 0
	for _, entry := range entries {
		switch entry.State {
		case StateAdded:
			if err := tx.Create(entry.Entity).Error; err != nil {
				return affected, fmt.Errorf("insert %s %s: %w", entry.EntityName, entry.Entity.GetID(), err)
			}
		case StateModified:
			if err := p.updateGuarded(tx, entry, false); err != nil {
				return affected, err
			}
		case StateRemoved:
			if err := p.updateGuarded(tx, entry, true); err != nil {
				return affected, err
			}
		default:
			continue
		}
		affected++
	}
	return affected, nil
}

// updateGuarded writes the entity with an optimistic-concurrency guard on the
// version it was loaded at. Zero affected rows means a concurrent writer got
// there first.
func (p *GormPersister) updateGuarded(tx *gorm.DB, entry *ChangeEntry, softDelete bool) error {
	loadedVersion := entry.Entity.EntityVersion()
	entry.Entity.SetVersion(loadedVersion + 1)
	if softDelete {
		entry.Entity.MarkDeleted()
	}

	res := tx.Model(entry.Entity).
		Where("version = ?", loadedVersion).
		Select("*").
		Omit("created_at", "created_by").
		Updates(entry.Entity)
	if res.Error != nil {
		entry.Entity.SetVersion(loadedVersion)
		return fmt.Errorf("update %s %s: %w", entry.EntityName, entry.Entity.GetID(), res.Error)
	}
	if res.RowsAffected == 0 {
		entry.Entity.SetVersion(loadedVersion)
		return fmt.Errorf("update %s %s: %w", entry.EntityName, entry.Entity.GetID(), shared.ErrConcurrencyConflict)
	}
	return nil
}

// UnitOfWork commits the changes registered with its tracker as one atomic
// operation and runs the post-commit pipeline: audit snapshot first, change
// events on cacheable entities, the guarded persist, then event dispatch and
// audit persistence. Dispatch and audit run on a non-cancellable context
// because the business data is already durable at that point.
type UnitOfWork struct {
	tracker    *ChangeTracker
	persister  Persister
	dispatcher shared.EventDispatcher
	auditStore shared.AuditLogStore
	actors     shared.ActorProvider
	policies   *shared.CachePolicies

	// AuditFailClosed turns an audit-store failure after a successful commit
	// into a returned *AuditStoreError instead of a logged warning.
	AuditFailClosed bool

	db *gorm.DB
	tx *gorm.DB
}

// NewUnitOfWork wires a unit of work over GORM. The tracker must be the same
// instance the repositories register with.
func NewUnitOfWork(
	db *gorm.DB,
	tracker *ChangeTracker,
	dispatcher shared.EventDispatcher,
	auditStore shared.AuditLogStore,
	actors shared.ActorProvider,
	policies *shared.CachePolicies,
) *UnitOfWork {
	return &UnitOfWork{
		tracker:    tracker,
		persister:  NewGormPersister(db),
		dispatcher: dispatcher,
		auditStore: auditStore,
		actors:     actors,
		policies:   policies,
		db:         db,
	}
}

// NewUnitOfWorkWithPersister is the constructor used by tests and by setups
// that persist somewhere other than GORM.
func NewUnitOfWorkWithPersister(
	persister Persister,
	tracker *ChangeTracker,
	dispatcher shared.EventDispatcher,
	auditStore shared.AuditLogStore,
	actors shared.ActorProvider,
	policies *shared.CachePolicies,
) *UnitOfWork {
	return &UnitOfWork{
		tracker:    tracker,
		persister:  persister,
		dispatcher: dispatcher,
		auditStore: auditStore,
		actors:     actors,
		policies:   policies,
	}
}

// Complete commits all tracked changes and returns the number of persisted
// entities.
func (u *UnitOfWork) Complete(ctx context.Context) (int, error) {
	pending := u.tracker.PendingEntries()
	now := time.Now().UTC()
	actor := ""
	if u.actors != nil {
		actor = u.actors.ActorID(ctx)
	}

	// 1. Audit snapshot before anything mutates the entities.
	auditLogs, err := u.buildAuditLogs(pending, actor, now)
	if err != nil {
		return 0, err
	}

	// 2. Change events for cacheable entities, so the invalidation handler
	// learns about every committed change.
	u.attachChangeEvents(pending)

	for _, entry := range pending {
		switch entry.State {
		case StateAdded:
			entry.Entity.MarkCreated(now, actor)
		case StateModified, StateRemoved:
			entry.Entity.MarkModified(now, actor)
		}
	}

	// 3. Persist atomically. A failure here suppresses dispatch and audit.
	affected, err := u.persister.Persist(ctx, pending)
	if err != nil {
		return 0, fmt.Errorf("unit of work persist: %w", err)
	}

	// The data is durable now; the remaining steps must not be cancelled
	// halfway through.
	tail := context.WithoutCancel(ctx)

	// 4. Drain and dispatch pending events in tracking order.
	if err := u.dispatchEvents(tail); err != nil {
		return affected, err
	}

	// 5. Audit entries last, as one batch.
	if len(auditLogs) > 0 && u.auditStore != nil {
		if err := u.auditStore.Save(tail, auditLogs); err != nil {
			auditErr := &shared.AuditStoreError{Err: err}
			if u.AuditFailClosed {
				return affected, auditErr
			}
			logger.Warn("audit trail incomplete",
				zap.Int("entries", len(auditLogs)),
				zap.Error(auditErr))
		}
	}

	u.tracker.Clear()
	return affected, nil
}

func (u *UnitOfWork) dispatchEvents(ctx context.Context) error {
	for _, entry := range u.tracker.Entries() {
		events := entry.Entity.DomainEvents()
		entry.Entity.ClearDomainEvents()
		for _, event := range events {
			if u.dispatcher == nil {
				continue
			}
			if err := u.dispatcher.Publish(ctx, event); err != nil {
				return fmt.Errorf("dispatch after commit: %w", err)
			}
		}
	}
	return nil
}

func (u *UnitOfWork) attachChangeEvents(pending []*ChangeEntry) {
	for _, entry := range pending {
		if u.policies == nil || !u.policies.IsCacheable(entry.EntityName) {
			continue
		}
		switch entry.State {
		case StateAdded:
			entry.Entity.AddDomainEvent(shared.NewEntityCreatedEvent(entry.EntityName, entry.Entity))
		case StateModified:
			entry.Entity.AddDomainEvent(shared.NewEntityUpdatedEvent(entry.EntityName, entry.Entity))
		case StateRemoved:
			entry.Entity.AddDomainEvent(shared.NewEntityDeletedEvent(entry.EntityName, entry.Entity))
		}
	}
}

func (u *UnitOfWork) buildAuditLogs(pending []*ChangeEntry, actor string, now time.Time) ([]*shared.AuditLog, error) {
	var logs []*shared.AuditLog
	for _, entry := range pending {
		keyJSON, err := json.Marshal(map[string]any{"id": entry.Entity.GetID()})
		if err != nil {
			return nil, fmt.Errorf("audit key for %s: %w", entry.EntityName, err)
		}
		log := &shared.AuditLog{
			ID:         uuid.New(),
			ActorID:    actor,
			EntityName: entry.EntityName,
			Timestamp:  now,
			KeyValues:  string(keyJSON),
		}

		switch entry.State {
		case StateAdded:
			current, err := Snapshot(entry.Entity)
			if err != nil {
				return nil, err
			}
			newJSON, err := json.Marshal(current)
			if err != nil {
				return nil, err
			}
			log.Action = shared.AuditActionCreated
			log.NewValues = string(newJSON)

		case StateModified:
			oldValues, newValues, err := entry.Diff()
			if err != nil {
				return nil, err
			}
			if len(newValues) == 0 {
				// Registered as modified but nothing actually changed.
				continue
			}
			oldJSON, err := json.Marshal(oldValues)
			if err != nil {
				return nil, err
			}
			newJSON, err := json.Marshal(newValues)
			if err != nil {
				return nil, err
			}
			log.Action = shared.AuditActionModified
			log.OldValues = string(oldJSON)
			log.NewValues = string(newJSON)

		case StateRemoved:
			current, err := Snapshot(entry.Entity)
			if err != nil {
				return nil, err
			}
			oldJSON, err := json.Marshal(current)
			if err != nil {
				return nil, err
			}
			log.Action = shared.AuditActionDeleted
			log.OldValues = string(oldJSON)

		default:
			continue
		}
		logs = append(logs, log)
	}
	return logs, nil
}

// BeginTransaction starts an explicit transaction. Calling it with one
// already active is a no-op.
func (u *UnitOfWork) BeginTransaction(ctx context.Context) error {
	if u.tx != nil {
		return nil
	}
	if u.db == nil {
		return errors.New("unit of work has no database handle")
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	u.tx = tx
	return nil
}

// CommitTransaction completes the unit of work inside the explicit
// transaction and commits it, rolling back on any failure.
func (u *UnitOfWork) CommitTransaction(ctx context.Context) error {
	if u.tx == nil {
		return errors.New("no active transaction")
	}
	if _, err := u.Complete(ContextWithTx(ctx, u.tx)); err != nil {
		u.tx.Rollback()
		u.tx = nil
		return err
	}
	if err := u.tx.Commit().Error; err != nil {
		u.tx = nil
		return fmt.Errorf("commit transaction: %w", err)
	}
	u.tx = nil
	return nil
}

// RollbackTransaction discards the explicit transaction and the tracked
// changes.
func (u *UnitOfWork) RollbackTransaction(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	u.tracker.Clear()
	return err
}

// TransactionContext returns ctx carrying the active explicit transaction so
// repository reads join it. Without one the context is returned unchanged.
func (u *UnitOfWork) TransactionContext(ctx context.Context) context.Context {
	if u.tx == nil {
		return ctx
	}
	return ContextWithTx(ctx, u.tx)
}

// Close rolls back any active transaction and drops the tracked changes.
func (u *UnitOfWork) Close() error {
	if u.tx != nil {
		u.tx.Rollback()
		u.tx = nil
	}
	u.tracker.Clear()
	return nil
}

var _ shared.UnitOfWork = (*UnitOfWork)(nil)
