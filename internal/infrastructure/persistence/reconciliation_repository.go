package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stocklot/backend/internal/domain/reconciliation"
	"github.com/stocklot/backend/internal/domain/shared"
)

// GormSessionRepository implements reconciliation.Repository using GORM
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// FindByID retrieves a session with its lines
func (r *GormSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*reconciliation.Session, error) {
	var session reconciliation.Session
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// FindByIDForTenant retrieves a tenant's session with its lines
func (r *GormSessionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*reconciliation.Session, error) {
	var session reconciliation.Session
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// FindInProgressForTenant retrieves the open sessions of a tenant
func (r *GormSessionRepository) FindInProgressForTenant(ctx context.Context, tenantID uuid.UUID) ([]*reconciliation.Session, error) {
	var sessions []*reconciliation.Session
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND status = ?", tenantID, reconciliation.SessionStatusInProgress).
		Order("started_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// FindAllForTenant retrieves a tenant's sessions, newest first
func (r *GormSessionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*reconciliation.Session, error) {
	query := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ?", tenantID).
		Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var sessions []*reconciliation.Session
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Save persists a session and its lines
func (r *GormSessionRepository) Save(ctx context.Context, session *reconciliation.Session) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(session).Error
}

// SaveWithLock persists a session guarded by its version. Lines are upserted
// separately because the optimistic check only makes sense on the session row.
func (r *GormSessionRepository) SaveWithLock(ctx context.Context, session *reconciliation.Session, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&reconciliation.Session{}).
		Where("id = ? AND version = ?", session.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":       session.Status,
			"completed_at": session.CompletedAt,
			"completed_by": session.CompletedBy,
			"version":      session.Version,
			"updated_at":   session.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	if len(session.Lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"physical_quantity", "counted_at", "counted_by", "updated_at",
			}),
		}).
		Create(session.Lines).Error
}

// Ensure GormSessionRepository implements reconciliation.Repository
var _ reconciliation.Repository = (*GormSessionRepository)(nil)

// GormAuditRepository implements reconciliation.AuditRepository using GORM.
// Records are append-only.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Create appends an audit record
func (r *GormAuditRepository) Create(ctx context.Context, record *reconciliation.AuditRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindBySession retrieves the audit records of one session
func (r *GormAuditRepository) FindBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]*reconciliation.AuditRecord, error) {
	var records []*reconciliation.AuditRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Order("recorded_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByTenant retrieves a tenant's audit records, newest first
func (r *GormAuditRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*reconciliation.AuditRecord, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("recorded_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []*reconciliation.AuditRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Ensure GormAuditRepository implements reconciliation.AuditRepository
var _ reconciliation.AuditRepository = (*GormAuditRepository)(nil)
