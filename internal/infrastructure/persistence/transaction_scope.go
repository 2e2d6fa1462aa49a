package persistence

import (
	"context"

	"gorm.io/gorm"

	lotapp "github.com/stocklot/backend/internal/application/lot"
	"github.com/stocklot/backend/internal/domain/lot"
	"github.com/stocklot/backend/internal/domain/reconciliation"
)

// GormTransactionScope implements lotapp.TransactionScope using GORM
// transactions. Every repository handed to the callback shares the same
// underlying transaction, so a failing adjustment rolls back the lot update,
// the movement and the audit row together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos lotapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides transaction-scoped repositories
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) LotRepo() lot.Repository {
	return NewGormLotRepository(r.tx)
}

func (r *gormTransactionalRepositories) MovementRepo() lot.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) SessionRepo() reconciliation.Repository {
	return NewGormSessionRepository(r.tx)
}

func (r *gormTransactionalRepositories) AuditRepo() reconciliation.AuditRepository {
	return NewGormAuditRepository(r.tx)
}

// Ensure the implementations satisfy the application interfaces
var _ lotapp.TransactionScope = (*GormTransactionScope)(nil)
var _ lotapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
