package shared

import "context"

// UnitOfWork is the transactional boundary of one business operation. A bare
// Complete commits all tracked changes atomically; the explicit
// Begin/Commit/Rollback triple wraps Complete in a caller-controlled database
// transaction.
//
// Commit order is fixed: audit snapshot, change-event attachment, primary
// persist, event dispatch, audit persist. A primary-persist failure suppresses
// every later step. Once the primary persist has succeeded, the dispatch and
// audit steps are no longer cancellable through ctx.
type UnitOfWork interface {
	// Complete commits all tracked changes and returns the number of
	// persisted entities. Audit-store failures after a successful persist
	// surface as *AuditStoreError unless configured fatal-free.
	Complete(ctx context.Context) (int, error)

	// BeginTransaction starts an explicit transaction. No-op if one is
	// already active.
	BeginTransaction(ctx context.Context) error

	// CommitTransaction runs Complete and then commits the explicit
	// transaction, rolling back and returning the error on any failure.
	CommitTransaction(ctx context.Context) error

	// RollbackTransaction rolls back the explicit transaction.
	RollbackTransaction(ctx context.Context) error

	// Close releases any active transaction and the underlying handle.
	Close() error
}

// AuditStoreError reports that audit persistence failed after the primary
// commit had already succeeded. It is a secondary failure: the business data
// is durable, only the audit trail is incomplete.
type AuditStoreError struct {
	Err error
}

func (e *AuditStoreError) Error() string {
	return "audit store failed after successful commit: " + e.Err.Error()
}

func (e *AuditStoreError) Unwrap() error { return e.Err }
