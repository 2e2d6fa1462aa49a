package fifoconfig

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence port for FIFO configurations
type Repository interface {
	// FindByID retrieves a configuration by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Configuration, error)

	// FindActiveForTenant retrieves all active configurations of a tenant
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]*Configuration, error)

	// FindCandidates retrieves the active configurations that could govern
	// the given product: its product-scoped rules, its family's rules, and
	// the tenant's global rules
	FindCandidates(ctx context.Context, tenantID, productID, familyID uuid.UUID) ([]*Configuration, error)

	// FindAllForTenant retrieves every configuration of a tenant, active or not
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*Configuration, error)

	// Save persists a configuration
	Save(ctx context.Context, config *Configuration) error

	// Delete removes a configuration
	Delete(ctx context.Context, id uuid.UUID) error
}
