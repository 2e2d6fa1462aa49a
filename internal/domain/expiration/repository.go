package expiration

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence port for expiration alerts
type Repository interface {
	// FindByID retrieves an alert by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Alert, error)

	// FindByLot retrieves every alert ever raised for a lot, newest first
	FindByLot(ctx context.Context, tenantID, lotID uuid.UUID) ([]*Alert, error)

	// FindActiveForTenant retrieves the open alerts of a tenant, most
	// urgent first
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]*Alert, error)

	// FindByStatus retrieves alerts in the given status
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status AlertStatus) ([]*Alert, error)

	// Save persists an alert
	Save(ctx context.Context, alert *Alert) error

	// CountActiveForTenant counts the open alerts of a tenant
	CountActiveForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
