package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/analytics"
	"github.com/stocklot/backend/internal/domain/fifoconfig"
	"github.com/stocklot/backend/internal/domain/lot"
	"github.com/stocklot/backend/internal/domain/lot/acl"
	"github.com/stocklot/backend/internal/domain/shared"
)

// defaultCarryingRatePercent is the annual carrying rate used when the
// caller does not supply one
var defaultCarryingRatePercent = decimal.NewFromInt(20)

// complianceLookbackDays bounds how far back the advisor scans exits for
// depletion-order violations
const complianceLookbackDays = 30

// AdvisorService computes rotation analytics and advisory optimization
// suggestions. Everything here is read-only: the advisor never books
// movements or mutates configurations.
type AdvisorService struct {
	lotRepo          lot.Repository
	movementRepo     lot.MovementRepository
	configRepo       fifoconfig.Repository
	productDirectory acl.ProductDirectory
	defaults         AnalyticsOptions
}

// NewAdvisorService creates a new AdvisorService
func NewAdvisorService(
	lotRepo lot.Repository,
	movementRepo lot.MovementRepository,
	configRepo fifoconfig.Repository,
) *AdvisorService {
	return &AdvisorService{
		lotRepo:      lotRepo,
		movementRepo: movementRepo,
		configRepo:   configRepo,
	}
}

// SetProductDirectory sets the catalog directory used for family-scoped
// configuration resolution
func (s *AdvisorService) SetProductDirectory(directory acl.ProductDirectory) {
	s.productDirectory = directory
}

// SetDefaultOptions sets deployment-level fallbacks applied when a
// request does not override them
func (s *AdvisorService) SetDefaultOptions(opts AnalyticsOptions) {
	s.defaults = opts
}

func (s *AdvisorService) carryingRate(opts AnalyticsOptions) decimal.Decimal {
	if opts.CarryingRatePercent.GreaterThan(decimal.Zero) {
		return opts.CarryingRatePercent
	}
	if s.defaults.CarryingRatePercent.GreaterThan(decimal.Zero) {
		return s.defaults.CarryingRatePercent
	}
	return defaultCarryingRatePercent
}

func (s *AdvisorService) lowStockThreshold(opts AnalyticsOptions) decimal.Decimal {
	if opts.LowStockThreshold.GreaterThan(decimal.Zero) {
		return opts.LowStockThreshold
	}
	return s.defaults.LowStockThreshold
}

func (s *AdvisorService) productLots(ctx context.Context, tenantID, productID uuid.UUID) ([]*lot.Lot, error) {
	lots, err := s.lotRepo.FindByProduct(ctx, tenantID, productID, lot.ListOptions{
		IncludeExpired:  true,
		IncludeDepleted: true,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*lot.Lot, len(lots))
	for i := range lots {
		out[i] = &lots[i]
	}
	return out, nil
}

// resolveConfig returns the configuration governing a product, nil when
// none applies
func (s *AdvisorService) resolveConfig(ctx context.Context, tenantID, productID uuid.UUID) *fifoconfig.Configuration {
	familyID := uuid.Nil
	if s.productDirectory != nil {
		if ref, err := s.productDirectory.GetProductReference(ctx, tenantID, productID); err == nil {
			familyID = ref.FamilyID()
		}
	}
	candidates, err := s.configRepo.FindCandidates(ctx, tenantID, productID, familyID)
	if err != nil {
		return nil
	}
	config, err := fifoconfig.ResolveConfig(candidates, productID, familyID)
	if err != nil {
		return nil
	}
	return config
}

// ProductAnalytics computes the rotation metrics of every lot of a product
// together with the aggregated stock value and carrying cost
func (s *AdvisorService) ProductAnalytics(ctx context.Context, tenantID, productID uuid.UUID, opts AnalyticsOptions) (*ProductAnalyticsResponse, error) {
	lots, err := s.productLots(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rate := s.carryingRate(opts)
	positions := s.depletionOrder(ctx, tenantID, productID, lots, now)

	response := &ProductAnalyticsResponse{
		ProductID:         productID,
		TotalLots:         len(lots),
		TotalRemaining:    decimal.Zero,
		TotalStockValue:   decimal.Zero,
		TotalCarryingCost: decimal.Zero,
		Lots:              make([]LotAnalyticsResponse, 0, len(lots)),
	}

	for _, l := range lots {
		consumption := analytics.AvgDailyConsumption(l, now)
		rotation := analytics.RotationRate(l, now)
		cost := analytics.CarryingCost(l, rate, now)
		position, ranked := positions[l.ID]
		if !ranked {
			position = -1
		}

		response.TotalRemaining = response.TotalRemaining.Add(l.RemainingQuantity)
		response.TotalStockValue = response.TotalStockValue.Add(l.StockValue())
		response.TotalCarryingCost = response.TotalCarryingCost.Add(cost)

		response.Lots = append(response.Lots, LotAnalyticsResponse{
			LotID:                 l.ID,
			LotNumber:             l.LotNumber,
			RemainingQuantity:     l.RemainingQuantity,
			StockValue:            l.StockValue(),
			UsagePercent:          l.UsagePercent(),
			DaysInStock:           l.DaysInStock(now),
			RotationRate:          rotation,
			RotationBand:          string(analytics.ClassifyRotation(rotation)),
			AvgDailyConsumption:   consumption,
			PredictedStockoutDate: analytics.PredictedStockoutDate(l, consumption, now),
			CarryingCost:          cost,
			SalePriorityScore:     analytics.SalePriorityScore(l, consumption, position, len(positions), now),
		})
	}

	return response, nil
}

// SuggestOptimizations runs the advisor rules over a product's current
// state. Suggestions are advisory: nothing is executed automatically.
func (s *AdvisorService) SuggestOptimizations(ctx context.Context, tenantID, productID uuid.UUID, opts AnalyticsOptions) ([]SuggestionResponse, error) {
	lots, err := s.productLots(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	config := s.resolveConfig(ctx, tenantID, productID)

	thresholds := fifoconfig.DefaultThresholds()
	if config != nil {
		thresholds = config.Thresholds
	}

	snapshot := analytics.ProductSnapshot{
		ProductID:           productID,
		Lots:                lots,
		AvgDailyConsumption: productConsumption(lots, now),
		Thresholds:          thresholds,
		LowStockThreshold:   s.lowStockThreshold(opts),
	}
	if config != nil {
		compliance, err := s.recentCompliance(ctx, tenantID, productID, config, lots, now)
		if err != nil {
			return nil, err
		}
		snapshot.Compliance = compliance
	}

	return ToSuggestionResponses(analytics.SuggestOptimizations(snapshot, now)), nil
}

// depletionOrder ranks the product's lots under its governing
// configuration (or a default global one) and returns each candidate's
// zero-based position. Expired and depleted lots are not candidates and
// carry no position.
func (s *AdvisorService) depletionOrder(ctx context.Context, tenantID, productID uuid.UUID, lots []*lot.Lot, asOf time.Time) map[uuid.UUID]int {
	cfg := s.resolveConfig(ctx, tenantID, productID)
	if cfg == nil {
		fallback, err := fifoconfig.NewConfiguration(tenantID, fifoconfig.GlobalScope())
		if err != nil {
			return nil
		}
		cfg = fallback
	}

	for _, l := range lots {
		l.RefreshStatus(asOf)
	}

	positions := make(map[uuid.UUID]int)
	for i, l := range fifoconfig.RankLots(cfg, lots, asOf) {
		positions[l.ID] = i
	}
	return positions
}

// productConsumption sums the per-lot mean daily outflow into a
// product-level rate
func productConsumption(lots []*lot.Lot, asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(analytics.AvgDailyConsumption(l, asOf))
	}
	return total
}

// recentCompliance replays the depletion-order check over the lots that
// saw exits in the lookback window
func (s *AdvisorService) recentCompliance(ctx context.Context, tenantID, productID uuid.UUID, config *fifoconfig.Configuration, lots []*lot.Lot, asOf time.Time) ([]fifoconfig.ComplianceResult, error) {
	movements, err := s.movementRepo.FindByProduct(ctx, tenantID, productID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}

	cutoff := asOf.AddDate(0, 0, -complianceLookbackDays)
	seen := make(map[uuid.UUID]struct{})
	var results []fifoconfig.ComplianceResult
	for _, m := range movements {
		if m.Type != lot.MovementTypeExit || m.OccurredAt.Before(cutoff) {
			continue
		}
		if _, dup := seen[m.LotID]; dup {
			continue
		}
		seen[m.LotID] = struct{}{}
		results = append(results, fifoconfig.CheckCompliance(config, lots, m.LotID, asOf))
	}
	return results, nil
}
