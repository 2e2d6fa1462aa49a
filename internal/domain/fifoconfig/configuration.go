package fifoconfig

import (
	"time"

	"github.com/google/uuid"

	"github.com/stocklot/backend/internal/domain/shared"
)

// ScopeKind discriminates the configuration scope variant
type ScopeKind string

const (
	ScopeProduct ScopeKind = "PRODUCT"
	ScopeFamily  ScopeKind = "FAMILY"
	ScopeGlobal  ScopeKind = "GLOBAL"
)

// String returns the string representation of ScopeKind
func (k ScopeKind) String() string {
	return string(k)
}

// precedence returns the resolution precedence of the scope; lower wins
func (k ScopeKind) precedence() int {
	switch k {
	case ScopeProduct:
		return 0
	case ScopeFamily:
		return 1
	default:
		return 2
	}
}

// Scope is the tagged variant identifying what a configuration applies to:
// exactly one product, one product family, or every product (global).
type Scope struct {
	Kind      ScopeKind
	ProductID uuid.UUID // set when Kind == ScopeProduct
	FamilyID  uuid.UUID // set when Kind == ScopeFamily
}

// ProductScope returns a product-scoped Scope
func ProductScope(productID uuid.UUID) Scope {
	return Scope{Kind: ScopeProduct, ProductID: productID}
}

// FamilyScope returns a family-scoped Scope
func FamilyScope(familyID uuid.UUID) Scope {
	return Scope{Kind: ScopeFamily, FamilyID: familyID}
}

// GlobalScope returns the global Scope
func GlobalScope() Scope {
	return Scope{Kind: ScopeGlobal}
}

// AppliesTo reports whether the scope covers the given product/family pair
func (s Scope) AppliesTo(productID, familyID uuid.UUID) bool {
	switch s.Kind {
	case ScopeProduct:
		return s.ProductID == productID
	case ScopeFamily:
		return familyID != uuid.Nil && s.FamilyID == familyID
	case ScopeGlobal:
		return true
	}
	return false
}

// Thresholds holds the urgency day thresholds used by the expiration risk
// engine. Boundaries are inclusive: days_remaining <= Critical classifies as
// critical, and so on upward.
type Thresholds struct {
	CriticalDays int `gorm:"not null;default:7"`
	AlertDays    int `gorm:"not null;default:30"`
	WarningDays  int `gorm:"not null;default:60"`
}

// DefaultThresholds returns the tenant-independent fallback thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{CriticalDays: 7, AlertDays: 30, WarningDays: 60}
}

// Valid checks the thresholds are strictly ordered
func (t Thresholds) Valid() bool {
	return t.CriticalDays >= 0 && t.CriticalDays < t.AlertDays && t.AlertDays < t.WarningDays
}

// Configuration is a rule set controlling depletion order and alerting.
// Scope fields are mutually exclusive; defaults are resolved once at
// construction time so business logic never sees partially-populated rules.
type Configuration struct {
	shared.TenantAggregateRoot
	ProductID          *uuid.UUID `gorm:"type:uuid;index"`
	FamilyID           *uuid.UUID `gorm:"type:uuid;index"`
	Active             bool       `gorm:"not null;default:true;index"`
	Priority           int        `gorm:"not null;default:0"`
	ToleranceDays      int        `gorm:"not null;default:0"`
	AlertThresholdDays int        `gorm:"not null;default:30"`
	Thresholds         Thresholds `gorm:"embedded;embeddedPrefix:threshold_"`
	IgnoreExpiredLots  bool       `gorm:"not null;default:true"`
	PricePriority      bool       `gorm:"not null;default:false"`
	AutoAction         bool       `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Configuration) TableName() string {
	return "fifo_configurations"
}

// NewConfiguration creates a configuration for the given scope with defaults
// fully resolved
func NewConfiguration(tenantID uuid.UUID, scope Scope) (*Configuration, error) {
	c := &Configuration{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Active:              true,
		Priority:            0,
		ToleranceDays:       0,
		AlertThresholdDays:  30,
		Thresholds:          DefaultThresholds(),
		IgnoreExpiredLots:   true,
	}

	switch scope.Kind {
	case ScopeProduct:
		if scope.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_SCOPE", "Product-scoped configuration requires a product ID")
		}
		id := scope.ProductID
		c.ProductID = &id
	case ScopeFamily:
		if scope.FamilyID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_SCOPE", "Family-scoped configuration requires a family ID")
		}
		id := scope.FamilyID
		c.FamilyID = &id
	case ScopeGlobal:
		// nothing to set
	default:
		return nil, shared.NewDomainError("INVALID_SCOPE", "Unknown configuration scope")
	}

	return c, nil
}

// Scope returns the tagged scope variant of the configuration
func (c *Configuration) Scope() Scope {
	switch {
	case c.ProductID != nil:
		return ProductScope(*c.ProductID)
	case c.FamilyID != nil:
		return FamilyScope(*c.FamilyID)
	default:
		return GlobalScope()
	}
}

// SetPriority sets the resolution priority; the numerically highest active
// priority wins within a scope level
func (c *Configuration) SetPriority(priority int) {
	c.Priority = priority
	c.touch()
}

// SetToleranceDays sets the FIFO tie-grouping window in days
func (c *Configuration) SetToleranceDays(days int) error {
	if days < 0 {
		return shared.NewDomainError("INVALID_TOLERANCE", "Tolerance days cannot be negative")
	}
	c.ToleranceDays = days
	c.touch()
	return nil
}

// SetThresholds replaces the urgency thresholds
func (c *Configuration) SetThresholds(t Thresholds) error {
	if !t.Valid() {
		return shared.NewDomainError("INVALID_THRESHOLDS", "Thresholds must satisfy 0 <= critical < alert < warning")
	}
	c.Thresholds = t
	c.AlertThresholdDays = t.AlertDays
	c.touch()
	return nil
}

// SetIgnoreExpiredLots toggles whether expired lots are FIFO candidates
func (c *Configuration) SetIgnoreExpiredLots(ignore bool) {
	c.IgnoreExpiredLots = ignore
	c.touch()
}

// SetPricePriority toggles purchase-price-first ordering
func (c *Configuration) SetPricePriority(enabled bool) {
	c.PricePriority = enabled
	c.touch()
}

// SetAutoAction toggles automatic application of advisor suggestions
func (c *Configuration) SetAutoAction(enabled bool) {
	c.AutoAction = enabled
	c.touch()
}

// Activate marks the configuration active
func (c *Configuration) Activate() {
	c.Active = true
	c.touch()
}

// Deactivate marks the configuration inactive
func (c *Configuration) Deactivate() {
	c.Active = false
	c.touch()
}

func (c *Configuration) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
