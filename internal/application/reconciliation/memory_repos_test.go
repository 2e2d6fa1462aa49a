package reconciliation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/lot"
	"github.com/stocklot/backend/internal/domain/reconciliation"
	"github.com/stocklot/backend/internal/domain/shared"
)

// memLotRepo is a thread-safe in-memory lot repository honoring the
// optimistic version check
type memLotRepo struct {
	mu   sync.Mutex
	lots map[uuid.UUID]*lot.Lot
}

func newMemLotRepo() *memLotRepo {
	return &memLotRepo{lots: make(map[uuid.UUID]*lot.Lot)}
}

func copyLot(l *lot.Lot) *lot.Lot {
	c := *l
	c.ClearDomainEvents()
	return &c
}

func (r *memLotRepo) FindByID(_ context.Context, id uuid.UUID) (*lot.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lots[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return copyLot(l), nil
}

func (r *memLotRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*lot.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lots[id]
	if !ok || l.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return copyLot(l), nil
}

func (r *memLotRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID, _ lot.ListOptions) ([]lot.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []lot.Lot
	for _, l := range r.lots {
		if l.TenantID == tenantID && l.ProductID == productID {
			out = append(out, *copyLot(l))
		}
	}
	return out, nil
}

func (r *memLotRepo) FindByLotNumber(_ context.Context, tenantID, productID uuid.UUID, lotNumber string) (*lot.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lots {
		if l.TenantID == tenantID && l.ProductID == productID && l.LotNumber == lotNumber {
			return copyLot(l), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memLotRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]lot.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []lot.Lot
	for _, l := range r.lots {
		if l.TenantID == tenantID {
			out = append(out, *copyLot(l))
		}
	}
	return out, nil
}

func (r *memLotRepo) FindWithExpiration(_ context.Context, tenantID uuid.UUID) ([]lot.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []lot.Lot
	for _, l := range r.lots {
		if l.TenantID == tenantID && l.ExpirationDate != nil && l.HasStock() {
			out = append(out, *copyLot(l))
		}
	}
	return out, nil
}

func (r *memLotRepo) Save(_ context.Context, l *lot.Lot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lots[l.ID] = copyLot(l)
	return nil
}

func (r *memLotRepo) SaveWithLock(_ context.Context, l *lot.Lot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.lots[l.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.GetVersion() != l.GetVersion()-1 {
		return shared.ErrConcurrencyConflict
	}
	r.lots[l.ID] = copyLot(l)
	return nil
}

func (r *memLotRepo) ExistsByLotNumber(_ context.Context, tenantID, productID uuid.UUID, lotNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lots {
		if l.TenantID == tenantID && l.ProductID == productID && l.LotNumber == lotNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *memLotRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.lots)), nil
}

var _ lot.Repository = (*memLotRepo)(nil)

// memMovementRepo is a thread-safe in-memory append-only movement ledger
type memMovementRepo struct {
	mu        sync.Mutex
	movements []lot.Movement
}

func newMemMovementRepo() *memMovementRepo {
	return &memMovementRepo{}
}

func (r *memMovementRepo) FindByID(_ context.Context, id uuid.UUID) (*lot.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.movements {
		if r.movements[i].ID == id {
			m := r.movements[i]
			return &m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memMovementRepo) FindByLot(_ context.Context, lotID uuid.UUID, from, to *time.Time) ([]lot.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []lot.Movement
	for _, m := range r.movements {
		if m.LotID != lotID {
			continue
		}
		if from != nil && m.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && m.OccurredAt.After(*to) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (r *memMovementRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID, _ shared.Filter) ([]lot.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []lot.Movement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) FindByReference(_ context.Context, referenceType, referenceID string) ([]lot.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []lot.Movement
	for _, m := range r.movements {
		if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) Create(_ context.Context, m *lot.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *memMovementRepo) CreateBatch(ctx context.Context, ms []*lot.Movement) error {
	for _, m := range ms {
		if err := r.Create(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *memMovementRepo) SumSignedQuantityByLot(_ context.Context, lotID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, m := range r.movements {
		if m.LotID == lotID {
			sum = sum.Add(m.SignedQuantity)
		}
	}
	return sum, nil
}

func (r *memMovementRepo) CountByLot(_ context.Context, lotID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.movements {
		if m.LotID == lotID {
			n++
		}
	}
	return n, nil
}

var _ lot.MovementRepository = (*memMovementRepo)(nil)

// memSessionRepo is a thread-safe in-memory session repository honoring the
// explicit expected-version check
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*reconciliation.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uuid.UUID]*reconciliation.Session)}
}

func copySession(s *reconciliation.Session) *reconciliation.Session {
	c := *s
	c.ClearDomainEvents()
	c.Lines = make([]*reconciliation.Line, len(s.Lines))
	for i, line := range s.Lines {
		l := *line
		c.Lines[i] = &l
	}
	return &c
}

func (r *memSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*reconciliation.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return copySession(s), nil
}

func (r *memSessionRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*reconciliation.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return copySession(s), nil
}

func (r *memSessionRepo) FindInProgressForTenant(_ context.Context, tenantID uuid.UUID) ([]*reconciliation.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*reconciliation.Session
	for _, s := range r.sessions {
		if s.TenantID == tenantID && s.Status == reconciliation.SessionStatusInProgress {
			out = append(out, copySession(s))
		}
	}
	return out, nil
}

func (r *memSessionRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, limit int) ([]*reconciliation.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*reconciliation.Session
	for _, s := range r.sessions {
		if s.TenantID == tenantID {
			out = append(out, copySession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memSessionRepo) Save(_ context.Context, s *reconciliation.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = copySession(s)
	return nil
}

func (r *memSessionRepo) SaveWithLock(_ context.Context, s *reconciliation.Session, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[s.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.GetVersion() != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	r.sessions[s.ID] = copySession(s)
	return nil
}

var _ reconciliation.Repository = (*memSessionRepo)(nil)

// memAuditRepo is a thread-safe in-memory append-only audit trail
type memAuditRepo struct {
	mu      sync.Mutex
	records []*reconciliation.AuditRecord
}

func newMemAuditRepo() *memAuditRepo {
	return &memAuditRepo{}
}

func (r *memAuditRepo) Create(_ context.Context, record *reconciliation.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *record
	r.records = append(r.records, &c)
	return nil
}

func (r *memAuditRepo) FindBySession(_ context.Context, tenantID, sessionID uuid.UUID) ([]*reconciliation.AuditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*reconciliation.AuditRecord
	for _, rec := range r.records {
		if rec.TenantID == tenantID && rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memAuditRepo) FindByTenant(_ context.Context, tenantID uuid.UUID, limit int) ([]*reconciliation.AuditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*reconciliation.AuditRecord
	for _, rec := range r.records {
		if rec.TenantID == tenantID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ reconciliation.AuditRepository = (*memAuditRepo)(nil)
