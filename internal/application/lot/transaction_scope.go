package lot

import (
	"context"

	"github.com/stocklot/backend/internal/domain/lot"
	"github.com/stocklot/backend/internal/domain/reconciliation"
)

// TransactionScope provides transactional access to the ledger repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories that take
// part in ledger transactions. All repositories returned share the same
// underlying database transaction.
//
// The movement repository is append-only; lots carry an optimistic version
// check so concurrent depletions of the same lot conflict instead of
// silently overwriting each other. Reconciliation sessions and audit
// records join the scope because completing a session books its adjustment
// movements, the audit row and the status flip as one unit.
type TransactionalRepositories interface {
	// LotRepo returns the lot repository scoped to the current transaction
	LotRepo() lot.Repository
	// MovementRepo returns the movement repository scoped to the current transaction
	MovementRepo() lot.MovementRepository
	// SessionRepo returns the reconciliation session repository scoped to the current transaction
	SessionRepo() reconciliation.Repository
	// AuditRepo returns the reconciliation audit repository scoped to the current transaction
	AuditRepo() reconciliation.AuditRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	lotRepo      lot.Repository
	movementRepo lot.MovementRepository
	sessionRepo  reconciliation.Repository
	auditRepo    reconciliation.AuditRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	lotRepo lot.Repository,
	movementRepo lot.MovementRepository,
	sessionRepo reconciliation.Repository,
	auditRepo reconciliation.AuditRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		lotRepo:      lotRepo,
		movementRepo: movementRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LotRepo returns the lot repository.
func (s *NoOpTransactionScope) LotRepo() lot.Repository {
	return s.lotRepo
}

// MovementRepo returns the movement repository.
func (s *NoOpTransactionScope) MovementRepo() lot.MovementRepository {
	return s.movementRepo
}

// SessionRepo returns the reconciliation session repository.
func (s *NoOpTransactionScope) SessionRepo() reconciliation.Repository {
	return s.sessionRepo
}

// AuditRepo returns the reconciliation audit repository.
func (s *NoOpTransactionScope) AuditRepo() reconciliation.AuditRepository {
	return s.auditRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
