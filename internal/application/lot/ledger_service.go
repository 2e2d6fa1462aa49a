package lot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/lot"
	"github.com/stocklot/backend/internal/domain/lot/acl"
	"github.com/stocklot/backend/internal/domain/shared"
)

// maxConflictRetries bounds the optimistic-lock retry loop on movements
const maxConflictRetries = 3

// LedgerService handles lot receptions and the append-only movement ledger
type LedgerService struct {
	txScope          TransactionScope
	lotRepo          lot.Repository
	movementRepo     lot.MovementRepository
	productDirectory acl.ProductDirectory
	eventPublisher   shared.EventPublisher
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	txScope TransactionScope,
	lotRepo lot.Repository,
	movementRepo lot.MovementRepository,
) *LedgerService {
	return &LedgerService{
		txScope:      txScope,
		lotRepo:      lotRepo,
		movementRepo: movementRepo,
	}
}

// SetProductDirectory sets the catalog directory used to validate receptions
func (s *LedgerService) SetProductDirectory(directory acl.ProductDirectory) {
	s.productDirectory = directory
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishDomainEvents publishes all pending domain events from the lot
func (s *LedgerService) publishDomainEvents(ctx context.Context, l *lot.Lot) {
	if s.eventPublisher == nil {
		return
	}
	events := l.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Publish events (errors are logged by the event bus, not propagated)
	_ = s.eventPublisher.Publish(ctx, events...)
	l.ClearDomainEvents()
}

// ReceiveLot registers a new lot and books its initial entry movement in
// one transaction. The lot number must be unique within tenant and product.
func (s *LedgerService) ReceiveLot(ctx context.Context, tenantID, agentID uuid.UUID, req ReceiveLotRequest) (*LotResponse, error) {
	if s.productDirectory != nil {
		exists, err := s.productDirectory.ProductExists(ctx, tenantID, req.ProductID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, shared.NewDomainError("NOT_FOUND", "Product does not exist")
		}
	}

	l, err := lot.NewLot(tenantID, req.ProductID, req.LotNumber, req.InitialQuantity, req.ReceptionDate, req.ExpirationDate)
	if err != nil {
		return nil, err
	}
	if req.ManufactureDate != nil {
		l.WithManufactureDate(*req.ManufactureDate)
	}
	if req.UnitPurchasePrice != nil {
		l.WithPurchasePrice(*req.UnitPurchasePrice)
	}
	if req.UnitSalePrice != nil {
		l.WithSalePrice(*req.UnitSalePrice)
	}
	if req.StorageLocation != "" {
		l.WithStorageLocation(req.StorageLocation)
	}

	entry, err := lot.NewMovement(l, lot.MovementTypeEntry, req.InitialQuantity, agentID)
	if err != nil {
		return nil, err
	}
	entry.WithReference(lot.ReferenceTypeReception, req.ReferenceID).
		WithOccurredAt(req.ReceptionDate)

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.LotRepo().ExistsByLotNumber(ctx, tenantID, req.ProductID, req.LotNumber)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "Lot number already used for this product")
		}
		if err := repos.LotRepo().Save(ctx, l); err != nil {
			return err
		}
		return repos.MovementRepo().Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, l)

	response := ToLotResponse(l)
	return &response, nil
}

// GetLot retrieves one lot of a tenant
func (s *LedgerService) GetLot(ctx context.Context, tenantID, lotID uuid.UUID) (*LotResponse, error) {
	l, err := s.lotRepo.FindByIDForTenant(ctx, tenantID, lotID)
	if err != nil {
		return nil, err
	}
	response := ToLotResponse(l)
	return &response, nil
}

// ListLotsForProduct lists a product's lots, lazily refreshing expired
// statuses before exposing them
func (s *LedgerService) ListLotsForProduct(ctx context.Context, tenantID, productID uuid.UUID, filter ListLotsFilter) ([]LotResponse, error) {
	lots, err := s.lotRepo.FindByProduct(ctx, tenantID, productID, lot.ListOptions{
		IncludeExpired:  filter.IncludeExpired,
		IncludeDepleted: filter.IncludeDepleted,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	kept := lots[:0]
	for i := range lots {
		if lots[i].RefreshStatus(now) {
			if err := s.lotRepo.Save(ctx, &lots[i]); err != nil {
				return nil, err
			}
			s.publishDomainEvents(ctx, &lots[i])
			if !filter.IncludeExpired {
				continue
			}
		}
		kept = append(kept, lots[i])
	}

	return ToLotResponses(kept), nil
}

// ApplyMovement books one movement against a lot: the movement row is
// appended and the lot's cached remaining is updated in the same
// transaction, guarded by the lot's optimistic version. Conflicting
// writers are retried a few times before giving up.
func (s *LedgerService) ApplyMovement(ctx context.Context, tenantID, agentID uuid.UUID, req ApplyMovementRequest) (*MovementResponse, error) {
	movementType := lot.MovementType(req.Type)
	if movementType == lot.MovementTypeTransfer {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transfers must go through the transfer operation")
	}

	var response MovementResponse
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		var appliedLot *lot.Lot
		err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			l, err := repos.LotRepo().FindByIDForTenant(ctx, tenantID, req.LotID)
			if err != nil {
				return err
			}

			m, err := lot.NewMovement(l, movementType, req.SignedQuantity, agentID)
			if err != nil {
				return err
			}
			if req.ReferenceType != "" || req.ReferenceID != "" {
				m.WithReference(req.ReferenceType, req.ReferenceID)
			}
			if req.OccurredAt != nil {
				m.WithOccurredAt(*req.OccurredAt)
			}
			if len(req.Metadata) > 0 {
				m.WithMetadata(req.Metadata)
			}

			if err := l.ApplyDelta(req.SignedQuantity); err != nil {
				return err
			}
			l.AddDomainEvent(lot.NewMovementAppliedEvent(l, m))

			if err := repos.LotRepo().SaveWithLock(ctx, l); err != nil {
				return err
			}
			if err := repos.MovementRepo().Create(ctx, m); err != nil {
				return err
			}

			appliedLot = l
			response = ToMovementResponse(m)
			return nil
		})
		if err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				continue
			}
			return nil, err
		}

		s.publishDomainEvents(ctx, appliedLot)
		return &response, nil
	}

	return nil, shared.ErrConcurrencyConflict
}

// TransferMovement moves quantity between two lots as a pair of transfer
// legs sharing one reference. Both legs commit or neither does.
func (s *LedgerService) TransferMovement(ctx context.Context, tenantID, agentID uuid.UUID, req TransferRequest) (*TransferResponse, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Transfer quantity must be positive")
	}
	if req.FromLotID == req.ToLotID {
		return nil, shared.NewDomainError("INVALID_INPUT", "Cannot transfer a lot onto itself")
	}

	referenceID := req.ReferenceID
	if referenceID == "" {
		referenceID = uuid.NewString()
	}

	var response TransferResponse
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		var fromLot, toLot *lot.Lot
		err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			from, err := repos.LotRepo().FindByIDForTenant(ctx, tenantID, req.FromLotID)
			if err != nil {
				return err
			}
			to, err := repos.LotRepo().FindByIDForTenant(ctx, tenantID, req.ToLotID)
			if err != nil {
				return err
			}

			exitLeg, err := lot.NewMovement(from, lot.MovementTypeTransfer, req.Quantity.Neg(), agentID)
			if err != nil {
				return err
			}
			entryLeg, err := lot.NewMovement(to, lot.MovementTypeTransfer, req.Quantity, agentID)
			if err != nil {
				return err
			}
			exitLeg.WithReference(lot.ReferenceTypeTransfer, referenceID)
			entryLeg.WithReference(lot.ReferenceTypeTransfer, referenceID)

			if err := from.ApplyDelta(req.Quantity.Neg()); err != nil {
				return err
			}
			if err := to.ApplyDelta(req.Quantity); err != nil {
				return err
			}
			from.AddDomainEvent(lot.NewMovementAppliedEvent(from, exitLeg))
			to.AddDomainEvent(lot.NewMovementAppliedEvent(to, entryLeg))

			if err := repos.LotRepo().SaveWithLock(ctx, from); err != nil {
				return err
			}
			if err := repos.LotRepo().SaveWithLock(ctx, to); err != nil {
				return err
			}
			if err := repos.MovementRepo().CreateBatch(ctx, []*lot.Movement{exitLeg, entryLeg}); err != nil {
				return err
			}

			fromLot, toLot = from, to
			response = TransferResponse{
				ReferenceID: referenceID,
				ExitLeg:     ToMovementResponse(exitLeg),
				EntryLeg:    ToMovementResponse(entryLeg),
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				continue
			}
			return nil, err
		}

		s.publishDomainEvents(ctx, fromLot)
		s.publishDomainEvents(ctx, toLot)
		return &response, nil
	}

	return nil, shared.ErrConcurrencyConflict
}

// ListMovements returns a lot's movement history ordered by occurred_at
// ascending, optionally bounded by a time range
func (s *LedgerService) ListMovements(ctx context.Context, tenantID, lotID uuid.UUID, filter ListMovementsFilter) ([]MovementResponse, error) {
	if _, err := s.lotRepo.FindByIDForTenant(ctx, tenantID, lotID); err != nil {
		return nil, err
	}

	movements, err := s.movementRepo.FindByLot(ctx, lotID, filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}

// VerifyLedgerInvariant recomputes a lot's remaining quantity from the
// ledger and compares it with the cached projection. Used by health checks
// and tests.
func (s *LedgerService) VerifyLedgerInvariant(ctx context.Context, tenantID, lotID uuid.UUID) (bool, error) {
	l, err := s.lotRepo.FindByIDForTenant(ctx, tenantID, lotID)
	if err != nil {
		return false, err
	}
	sum, err := s.movementRepo.SumSignedQuantityByLot(ctx, lotID)
	if err != nil {
		return false, err
	}
	return l.RemainingQuantity.Equal(sum), nil
}
