package directory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocklot/backend/internal/domain/lot/acl"
	"github.com/stocklot/backend/internal/domain/shared"
)

// agentReferenceRow is the persisted read model of an identity-service agent
type agentReferenceRow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	DisplayName string    `gorm:"type:varchar(200);not null"`
	SyncedAt    time.Time `gorm:"not null"`
}

func (agentReferenceRow) TableName() string {
	return "agent_references"
}

// GormAgentDirectory implements acl.AgentDirectory over the synchronized
// agent reference table
type GormAgentDirectory struct {
	db *gorm.DB
}

// NewGormAgentDirectory creates a new GormAgentDirectory
func NewGormAgentDirectory(db *gorm.DB) *GormAgentDirectory {
	return &GormAgentDirectory{db: db}
}

// GetAgentReference retrieves the display identity of an acting agent
func (d *GormAgentDirectory) GetAgentReference(ctx context.Context, tenantID, agentID uuid.UUID) (acl.AgentReference, error) {
	var row agentReferenceRow
	if err := d.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, agentID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return acl.AgentReference{}, shared.ErrNotFound
		}
		return acl.AgentReference{}, err
	}
	return acl.NewAgentReference(row.ID, row.DisplayName)
}

// Ensure GormAgentDirectory implements acl.AgentDirectory
var _ acl.AgentDirectory = (*GormAgentDirectory)(nil)
