package fifo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stocklot/backend/internal/domain/fifoconfig"
	"github.com/stocklot/backend/internal/domain/lot"
	"github.com/stocklot/backend/internal/domain/lot/acl"
	"github.com/stocklot/backend/internal/domain/shared"
)

// Service resolves FIFO configurations and recommends depletion order
type Service struct {
	configRepo       fifoconfig.Repository
	lotRepo          lot.Repository
	productDirectory acl.ProductDirectory
}

// NewService creates a new FIFO service
func NewService(
	configRepo fifoconfig.Repository,
	lotRepo lot.Repository,
	productDirectory acl.ProductDirectory,
) *Service {
	return &Service{
		configRepo:       configRepo,
		lotRepo:          lotRepo,
		productDirectory: productDirectory,
	}
}

// CreateConfiguration registers a new configuration for the given scope
func (s *Service) CreateConfiguration(ctx context.Context, tenantID uuid.UUID, req CreateConfigurationRequest) (*ConfigurationResponse, error) {
	scope, err := scopeFromRequest(req)
	if err != nil {
		return nil, err
	}

	config, err := fifoconfig.NewConfiguration(tenantID, scope)
	if err != nil {
		return nil, err
	}
	config.SetPriority(req.Priority)
	if err := config.SetToleranceDays(req.ToleranceDays); err != nil {
		return nil, err
	}
	if req.CriticalDays != nil || req.AlertDays != nil || req.WarningDays != nil {
		thresholds := config.Thresholds
		if req.CriticalDays != nil {
			thresholds.CriticalDays = *req.CriticalDays
		}
		if req.AlertDays != nil {
			thresholds.AlertDays = *req.AlertDays
		}
		if req.WarningDays != nil {
			thresholds.WarningDays = *req.WarningDays
		}
		if err := config.SetThresholds(thresholds); err != nil {
			return nil, err
		}
	}
	if req.IgnoreExpiredLots != nil {
		config.SetIgnoreExpiredLots(*req.IgnoreExpiredLots)
	}
	config.SetPricePriority(req.PricePriority)
	config.SetAutoAction(req.AutoAction)

	if err := s.configRepo.Save(ctx, config); err != nil {
		return nil, err
	}

	response := ToConfigurationResponse(config)
	return &response, nil
}

func scopeFromRequest(req CreateConfigurationRequest) (fifoconfig.Scope, error) {
	switch fifoconfig.ScopeKind(req.Scope) {
	case fifoconfig.ScopeProduct:
		if req.ProductID == nil {
			return fifoconfig.Scope{}, shared.NewDomainError("INVALID_INPUT", "Product-scoped configuration requires product_id")
		}
		return fifoconfig.ProductScope(*req.ProductID), nil
	case fifoconfig.ScopeFamily:
		if req.FamilyID == nil {
			return fifoconfig.Scope{}, shared.NewDomainError("INVALID_INPUT", "Family-scoped configuration requires family_id")
		}
		return fifoconfig.FamilyScope(*req.FamilyID), nil
	case fifoconfig.ScopeGlobal:
		return fifoconfig.GlobalScope(), nil
	}
	return fifoconfig.Scope{}, shared.NewDomainError("INVALID_INPUT", "Unknown configuration scope")
}

// UpdateConfiguration applies the provided mutations to a configuration
func (s *Service) UpdateConfiguration(ctx context.Context, tenantID, configID uuid.UUID, req UpdateConfigurationRequest) (*ConfigurationResponse, error) {
	config, err := s.configRepo.FindByID(ctx, configID)
	if err != nil {
		return nil, err
	}
	if config.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}

	if req.Active != nil {
		if *req.Active {
			config.Activate()
		} else {
			config.Deactivate()
		}
	}
	if req.Priority != nil {
		config.SetPriority(*req.Priority)
	}
	if req.ToleranceDays != nil {
		if err := config.SetToleranceDays(*req.ToleranceDays); err != nil {
			return nil, err
		}
	}
	if req.CriticalDays != nil || req.AlertDays != nil || req.WarningDays != nil {
		thresholds := config.Thresholds
		if req.CriticalDays != nil {
			thresholds.CriticalDays = *req.CriticalDays
		}
		if req.AlertDays != nil {
			thresholds.AlertDays = *req.AlertDays
		}
		if req.WarningDays != nil {
			thresholds.WarningDays = *req.WarningDays
		}
		if err := config.SetThresholds(thresholds); err != nil {
			return nil, err
		}
	}
	if req.IgnoreExpiredLots != nil {
		config.SetIgnoreExpiredLots(*req.IgnoreExpiredLots)
	}
	if req.PricePriority != nil {
		config.SetPricePriority(*req.PricePriority)
	}
	if req.AutoAction != nil {
		config.SetAutoAction(*req.AutoAction)
	}

	if err := s.configRepo.Save(ctx, config); err != nil {
		return nil, err
	}

	response := ToConfigurationResponse(config)
	return &response, nil
}

// DeleteConfiguration removes a configuration
func (s *Service) DeleteConfiguration(ctx context.Context, tenantID, configID uuid.UUID) error {
	config, err := s.configRepo.FindByID(ctx, configID)
	if err != nil {
		return err
	}
	if config.TenantID != tenantID {
		return shared.ErrNotFound
	}
	return s.configRepo.Delete(ctx, configID)
}

// ListConfigurations returns every configuration of a tenant
func (s *Service) ListConfigurations(ctx context.Context, tenantID uuid.UUID) ([]ConfigurationResponse, error) {
	configs, err := s.configRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ToConfigurationResponses(configs), nil
}

// ResolveConfiguration returns the configuration governing a product
func (s *Service) ResolveConfiguration(ctx context.Context, tenantID, productID uuid.UUID) (*ConfigurationResponse, error) {
	config, err := s.resolve(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	response := ToConfigurationResponse(config)
	return &response, nil
}

func (s *Service) resolve(ctx context.Context, tenantID, productID uuid.UUID) (*fifoconfig.Configuration, error) {
	familyID := uuid.Nil
	if s.productDirectory != nil {
		ref, err := s.productDirectory.GetProductReference(ctx, tenantID, productID)
		if err != nil {
			return nil, err
		}
		familyID = ref.FamilyID()
	}

	candidates, err := s.configRepo.FindCandidates(ctx, tenantID, productID, familyID)
	if err != nil {
		return nil, err
	}
	return fifoconfig.ResolveConfig(candidates, productID, familyID)
}

// candidateLots loads a product's lots and lazily refreshes expired
// statuses, persisting any transition it detects
func (s *Service) candidateLots(ctx context.Context, tenantID, productID uuid.UUID, asOf time.Time) ([]*lot.Lot, error) {
	lots, err := s.lotRepo.FindByProduct(ctx, tenantID, productID, lot.ListOptions{IncludeExpired: true})
	if err != nil {
		return nil, err
	}

	out := make([]*lot.Lot, 0, len(lots))
	for i := range lots {
		if lots[i].RefreshStatus(asOf) {
			if err := s.lotRepo.Save(ctx, &lots[i]); err != nil {
				return nil, err
			}
		}
		out = append(out, &lots[i])
	}
	return out, nil
}

// NextLotToSell recommends the lot to deplete next for a product. A
// product without candidates yields a response flagged NoCandidate, not an
// error.
func (s *Service) NextLotToSell(ctx context.Context, tenantID, productID uuid.UUID) (*RecommendationResponse, error) {
	config, err := s.resolve(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	lots, err := s.candidateLots(ctx, tenantID, productID, now)
	if err != nil {
		return nil, err
	}

	response := &RecommendationResponse{
		ProductID:       productID,
		ConfigurationID: config.ID,
	}
	next := fifoconfig.NextLotToSell(config, lots, now)
	if next == nil {
		response.NoCandidate = true
		return response, nil
	}

	id := next.ID
	response.LotID = &id
	response.LotNumber = next.LotNumber
	return response, nil
}

// RankLots returns the full depletion order for a product
func (s *Service) RankLots(ctx context.Context, tenantID, productID uuid.UUID) ([]RankedLotResponse, error) {
	config, err := s.resolve(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	lots, err := s.candidateLots(ctx, tenantID, productID, now)
	if err != nil {
		return nil, err
	}

	ranked := fifoconfig.RankLots(config, lots, now)
	out := make([]RankedLotResponse, len(ranked))
	for i, l := range ranked {
		out[i] = RankedLotResponse{Position: i + 1, LotID: l.ID, LotNumber: l.LotNumber}
	}
	return out, nil
}

// CheckCompliance reports whether depleting the given lot follows the
// recommended order. Advisory only; it never blocks a movement.
func (s *Service) CheckCompliance(ctx context.Context, tenantID, productID, lotID uuid.UUID) (*ComplianceResponse, error) {
	config, err := s.resolve(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	lots, err := s.candidateLots(ctx, tenantID, productID, now)
	if err != nil {
		return nil, err
	}

	result := fifoconfig.CheckCompliance(config, lots, lotID, now)
	response := &ComplianceResponse{
		Compliant:        result.Compliant,
		DepletedLotID:    result.DepletedLotID,
		RecommendedLotNo: result.RecommendedLotNo,
	}
	if !result.Compliant {
		id := result.RecommendedLotID
		response.RecommendedLotID = &id
	}
	return response, nil
}
