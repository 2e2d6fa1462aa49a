package shared

import (
	"time"

	"github.com/google/uuid"
)

// Filter narrows and paginates repository list queries. Zero values mean
// "no constraint"; pagination is skipped when Page or PageSize is zero.
type Filter struct {
	// Lot constraints
	ProductID       *uuid.UUID
	Status          string
	HasStock        bool
	ExpiresBefore   *time.Time
	StorageLocation string

	// Movement constraints
	MovementType string
	From         *time.Time
	To           *time.Time

	// Pagination and ordering
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// DefaultFilter returns an unconstrained filter ordered by creation time,
// newest first
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}
