/*
Package persistence implements the storage side of the framework on GORM:
explicit change tracking, the specification evaluator, the generic repository
and the unit of work.

Change tracking is explicit. Repositories register every entity they load as
clean and every Add/Update/Remove as a pending change; nothing is discovered
by scanning object graphs. The unit of work reads the tracked set in
registration order when it commits.
*/
package persistence

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"finmarket/domain/shared"

	"github.com/google/uuid"
)

// EntityState is the tracked lifecycle state of an entity.
type EntityState int

const (
	StateClean EntityState = iota
	StateAdded
	StateModified
	StateRemoved
)

func (s EntityState) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateAdded:
		return "added"
	case StateModified:
		return "modified"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// ChangeEntry is one tracked entity with its state and the field snapshot
// taken when it was loaded. The snapshot is the baseline for audit diffs.
type ChangeEntry struct {
	EntityName string
	Entity     shared.Entity
	State      EntityState

	original map[string]any
}

// Snapshot renders the entity's current fields as a flat JSON map.
func Snapshot(entity shared.Entity) (map[string]any, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("snapshot %T: %w", entity, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("snapshot %T: %w", entity, err)
	}
	return fields, nil
}

// Diff compares the load-time snapshot against the entity's current fields
// and returns the old and new values of the fields that actually changed.
// Both maps are empty when nothing changed. Without a load-time snapshot the
// full current state counts as new.
func (e *ChangeEntry) Diff() (oldValues, newValues map[string]any, err error) {
	current, err := Snapshot(e.Entity)
	if err != nil {
		return nil, nil, err
	}
	if e.original == nil {
		return map[string]any{}, current, nil
	}

	oldValues = make(map[string]any)
	newValues = make(map[string]any)
	for key, newVal := range current {
		oldVal, existed := e.original[key]
		if !existed || !reflect.DeepEqual(oldVal, newVal) {
			oldValues[key] = oldVal
			newValues[key] = newVal
		}
	}
	for key, oldVal := range e.original {
		if _, stillThere := current[key]; !stillThere {
			oldValues[key] = oldVal
			newValues[key] = nil
		}
	}
	return oldValues, newValues, nil
}

// Original returns the load-time snapshot, nil for entities that were never
// loaded through a repository.
func (e *ChangeEntry) Original() map[string]any { return e.original }

// ChangeTracker records which entities the current unit of work has seen and
// what should happen to them on commit. Registration order is preserved; the
// unit of work persists and dispatches in that order.
type ChangeTracker struct {
	mu      sync.Mutex
	entries []*ChangeEntry
	index   map[uuid.UUID]*ChangeEntry
}

func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{index: make(map[uuid.UUID]*ChangeEntry)}
}

// TrackLoaded registers an entity fresh from the database as clean and stores
// its snapshot. An entity that is already tracked keeps its current state.
func (t *ChangeTracker) TrackLoaded(entityName string, entity shared.Entity) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, tracked := t.index[entity.GetID()]; tracked {
		return nil
	}
	snap, err := Snapshot(entity)
	if err != nil {
		return err
	}
	t.append(&ChangeEntry{EntityName: entityName, Entity: entity, State: StateClean, original: snap})
	return nil
}

// TrackAdded registers a new entity for insertion.
func (t *ChangeTracker) TrackAdded(entityName string, entity shared.Entity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, tracked := t.index[entity.GetID()]; tracked {
		entry.State = StateAdded
		entry.Entity = entity
		return
	}
	t.append(&ChangeEntry{EntityName: entityName, Entity: entity, State: StateAdded})
}

// TrackModified registers an entity for update. A loaded entity keeps its
// snapshot so the audit diff can be computed; an added entity stays added.
func (t *ChangeTracker) TrackModified(entityName string, entity shared.Entity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, tracked := t.index[entity.GetID()]; tracked {
		if entry.State == StateClean {
			entry.State = StateModified
		}
		entry.Entity = entity
		return
	}
	t.append(&ChangeEntry{EntityName: entityName, Entity: entity, State: StateModified})
}

// TrackRemoved registers an entity for (soft) deletion. Removing an entity
// that was only added drops it from the tracker entirely.
func (t *ChangeTracker) TrackRemoved(entityName string, entity shared.Entity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, tracked := t.index[entity.GetID()]; tracked {
		if entry.State == StateAdded {
			t.remove(entity.GetID())
			return
		}
		entry.State = StateRemoved
		entry.Entity = entity
		return
	}
	t.append(&ChangeEntry{EntityName: entityName, Entity: entity, State: StateRemoved})
}

// Entries returns all tracked entries in registration order.
func (t *ChangeTracker) Entries() []*ChangeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*ChangeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// PendingEntries returns the entries with uncommitted changes, in
// registration order.
func (t *ChangeTracker) PendingEntries() []*ChangeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []*ChangeEntry
	for _, entry := range t.entries {
		if entry.State != StateClean {
			out = append(out, entry)
		}
	}
	return out
}

// Clear drops all tracked entries.
func (t *ChangeTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = nil
	t.index = make(map[uuid.UUID]*ChangeEntry)
}

func (t *ChangeTracker) append(entry *ChangeEntry) {
	t.entries = append(t.entries, entry)
	t.index[entry.Entity.GetID()] = entry
}

func (t *ChangeTracker) remove(id uuid.UUID) {
	delete(t.index, id)
	for i, entry := range t.entries {
		if entry.Entity.GetID() == id {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return
		}
	}
}
