package reconciliation

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence port for reconciliation sessions
type Repository interface {
	// FindByID retrieves a session with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)

	// FindByIDForTenant retrieves a tenant's session with its lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Session, error)

	// FindInProgressForTenant retrieves the open sessions of a tenant
	FindInProgressForTenant(ctx context.Context, tenantID uuid.UUID) ([]*Session, error)

	// FindAllForTenant retrieves a tenant's sessions, newest first
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*Session, error)

	// Save persists a session and its lines
	Save(ctx context.Context, session *Session) error

	// SaveWithLock persists a session guarded by its version, returning
	// CONCURRENCY_CONFLICT when the row moved underneath
	SaveWithLock(ctx context.Context, session *Session, expectedVersion int) error
}
