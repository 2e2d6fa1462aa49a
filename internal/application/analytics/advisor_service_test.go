package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklot/backend/internal/domain/analytics"
	"github.com/stocklot/backend/internal/domain/fifoconfig"
	"github.com/stocklot/backend/internal/domain/lot"
	"github.com/stocklot/backend/internal/domain/shared"
)

// fakeLotRepo serves a fixed lot list per product
type fakeLotRepo struct {
	lots []*lot.Lot
}

func (r *fakeLotRepo) FindByID(_ context.Context, id uuid.UUID) (*lot.Lot, error) {
	for _, l := range r.lots {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeLotRepo) FindByIDForTenant(ctx context.Context, _, id uuid.UUID) (*lot.Lot, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeLotRepo) FindByProduct(_ context.Context, _, productID uuid.UUID, _ lot.ListOptions) ([]lot.Lot, error) {
	var out []lot.Lot
	for _, l := range r.lots {
		if l.ProductID == productID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLotRepo) FindByLotNumber(_ context.Context, _, _ uuid.UUID, _ string) (*lot.Lot, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeLotRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]lot.Lot, error) {
	return nil, nil
}

func (r *fakeLotRepo) FindWithExpiration(_ context.Context, _ uuid.UUID) ([]lot.Lot, error) {
	return nil, nil
}

func (r *fakeLotRepo) Save(_ context.Context, _ *lot.Lot) error { return nil }

func (r *fakeLotRepo) SaveWithLock(_ context.Context, _ *lot.Lot) error { return nil }

func (r *fakeLotRepo) ExistsByLotNumber(_ context.Context, _, _ uuid.UUID, _ string) (bool, error) {
	return false, nil
}

func (r *fakeLotRepo) CountForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) (int64, error) {
	return int64(len(r.lots)), nil
}

var _ lot.Repository = (*fakeLotRepo)(nil)

// fakeMovementRepo serves a fixed movement list
type fakeMovementRepo struct {
	movements []lot.Movement
}

func (r *fakeMovementRepo) FindByID(_ context.Context, _ uuid.UUID) (*lot.Movement, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeMovementRepo) FindByLot(_ context.Context, lotID uuid.UUID, _, _ *time.Time) ([]lot.Movement, error) {
	var out []lot.Movement
	for _, m := range r.movements {
		if m.LotID == lotID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) FindByProduct(_ context.Context, _, productID uuid.UUID, _ shared.Filter) ([]lot.Movement, error) {
	var out []lot.Movement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) FindByReference(_ context.Context, _, _ string) ([]lot.Movement, error) {
	return nil, nil
}

func (r *fakeMovementRepo) Create(_ context.Context, m *lot.Movement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeMovementRepo) CreateBatch(_ context.Context, _ []*lot.Movement) error { return nil }

func (r *fakeMovementRepo) SumSignedQuantityByLot(_ context.Context, _ uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (r *fakeMovementRepo) CountByLot(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

var _ lot.MovementRepository = (*fakeMovementRepo)(nil)

// fakeConfigRepo serves a fixed candidate list
type fakeConfigRepo struct {
	candidates []*fifoconfig.Configuration
}

func (r *fakeConfigRepo) FindByID(_ context.Context, _ uuid.UUID) (*fifoconfig.Configuration, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeConfigRepo) FindActiveForTenant(_ context.Context, _ uuid.UUID) ([]*fifoconfig.Configuration, error) {
	return r.candidates, nil
}

func (r *fakeConfigRepo) FindCandidates(_ context.Context, _, _, _ uuid.UUID) ([]*fifoconfig.Configuration, error) {
	return r.candidates, nil
}

func (r *fakeConfigRepo) FindAllForTenant(_ context.Context, _ uuid.UUID) ([]*fifoconfig.Configuration, error) {
	return r.candidates, nil
}

func (r *fakeConfigRepo) Save(_ context.Context, _ *fifoconfig.Configuration) error { return nil }

func (r *fakeConfigRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

var _ fifoconfig.Repository = (*fakeConfigRepo)(nil)

func testLot(t *testing.T, productID uuid.UUID, number string, initial, remaining int64, daysInStock int, expiresInDays *int, unitPrice string) *lot.Lot {
	t.Helper()
	reception := time.Now().Add(-time.Duration(daysInStock) * 24 * time.Hour)
	var expiration *time.Time
	if expiresInDays != nil {
		e := time.Now().Add(time.Duration(*expiresInDays) * 24 * time.Hour)
		expiration = &e
	}
	l, err := lot.NewLot(uuid.New(), productID, number, decimal.NewFromInt(initial), reception, expiration)
	require.NoError(t, err)
	if unitPrice != "" {
		l.WithPurchasePrice(decimal.RequireFromString(unitPrice))
	}
	if remaining != initial {
		require.NoError(t, l.ApplyDelta(decimal.NewFromInt(remaining-initial)))
	}
	l.ClearDomainEvents()
	return l
}

func intPtr(v int) *int { return &v }

func TestAdvisorService_ProductAnalytics(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()

	t.Run("computes rotation and carrying metrics per lot", func(t *testing.T) {
		// 100 received 10 days ago, 60 left: 4/day consumption,
		// annualized rotation (40/10*365)/100 = 14.6
		l := testLot(t, productID, "LOT-A", 100, 60, 10, nil, "2")
		service := NewAdvisorService(&fakeLotRepo{lots: []*lot.Lot{l}}, &fakeMovementRepo{}, &fakeConfigRepo{})

		result, err := service.ProductAnalytics(ctx, tenantID, productID, AnalyticsOptions{})

		require.NoError(t, err)
		assert.Equal(t, 1, result.TotalLots)
		assert.True(t, result.TotalRemaining.Equal(decimal.NewFromInt(60)))
		assert.True(t, result.TotalStockValue.Equal(decimal.NewFromInt(120)))

		la := result.Lots[0]
		assert.True(t, la.AvgDailyConsumption.Equal(decimal.NewFromInt(4)))
		assert.True(t, la.RotationRate.Equal(decimal.RequireFromString("14.6")))
		assert.Equal(t, string(analytics.RotationFast), la.RotationBand)

		// 120 value at the default 20% annual rate over 10 days
		assert.True(t, la.CarryingCost.Equal(decimal.RequireFromString("0.6575")))

		require.NotNil(t, la.PredictedStockoutDate)
		assert.True(t, la.PredictedStockoutDate.After(time.Now()))
	})

	t.Run("an untouched lot predicts no stockout", func(t *testing.T) {
		l := testLot(t, productID, "LOT-B", 100, 100, 10, nil, "")
		service := NewAdvisorService(&fakeLotRepo{lots: []*lot.Lot{l}}, &fakeMovementRepo{}, &fakeConfigRepo{})

		result, err := service.ProductAnalytics(ctx, tenantID, productID, AnalyticsOptions{})

		require.NoError(t, err)
		la := result.Lots[0]
		assert.Nil(t, la.PredictedStockoutDate)
		assert.Equal(t, string(analytics.RotationSlow), la.RotationBand)
		assert.True(t, la.StockValue.IsZero())
	})

	t.Run("the next lot to deplete carries the higher sale priority", func(t *testing.T) {
		older := testLot(t, productID, "LOT-OLD", 100, 60, 40, nil, "")
		newer := testLot(t, productID, "LOT-NEW", 100, 60, 10, nil, "")
		service := NewAdvisorService(&fakeLotRepo{lots: []*lot.Lot{older, newer}}, &fakeMovementRepo{}, &fakeConfigRepo{})

		result, err := service.ProductAnalytics(ctx, tenantID, productID, AnalyticsOptions{})

		require.NoError(t, err)
		require.Len(t, result.Lots, 2)
		byNumber := make(map[string]LotAnalyticsResponse)
		for _, la := range result.Lots {
			byNumber[la.LotNumber] = la
		}
		assert.True(t, byNumber["LOT-OLD"].SalePriorityScore.GreaterThan(byNumber["LOT-NEW"].SalePriorityScore))
	})

	t.Run("honors a caller-supplied carrying rate", func(t *testing.T) {
		l := testLot(t, productID, "LOT-C", 100, 60, 10, nil, "2")
		service := NewAdvisorService(&fakeLotRepo{lots: []*lot.Lot{l}}, &fakeMovementRepo{}, &fakeConfigRepo{})

		result, err := service.ProductAnalytics(ctx, tenantID, productID, AnalyticsOptions{
			CarryingRatePercent: decimal.NewFromInt(40),
		})

		require.NoError(t, err)
		assert.True(t, result.Lots[0].CarryingCost.Equal(decimal.RequireFromString("1.3151")))
	})
}

func TestAdvisorService_SuggestOptimizations(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()

	findByType := func(suggestions []SuggestionResponse, kind analytics.SuggestionType) []SuggestionResponse {
		var out []SuggestionResponse
		for _, s := range suggestions {
			if s.Type == string(kind) {
				out = append(out, s)
			}
		}
		return out
	}

	t.Run("flags critically expiring stock", func(t *testing.T) {
		l := testLot(t, productID, "LOT-CRIT", 100, 80, 20, intPtr(3), "2")
		service := NewAdvisorService(&fakeLotRepo{lots: []*lot.Lot{l}}, &fakeMovementRepo{}, &fakeConfigRepo{})

		suggestions, err := service.SuggestOptimizations(ctx, tenantID, productID, AnalyticsOptions{})

		require.NoError(t, err)
		expiring := findByType(suggestions, analytics.SuggestionPromotion)
		require.Len(t, expiring, 1)
		assert.Equal(t, string(analytics.PriorityHigh), expiring[0].Priority)
		require.NotNil(t, expiring[0].LotID)
		assert.Equal(t, l.ID, *expiring[0].LotID)
	})

	t.Run("warns on low total stock", func(t *testing.T) {
		l := testLot(t, productID, "LOT-LOW", 100, 5, 10, nil, "")
		service := NewAdvisorService(&fakeLotRepo{lots: []*lot.Lot{l}}, &fakeMovementRepo{}, &fakeConfigRepo{})

		suggestions, err := service.SuggestOptimizations(ctx, tenantID, productID, AnalyticsOptions{
			LowStockThreshold: decimal.NewFromInt(10),
		})

		require.NoError(t, err)
		low := findByType(suggestions, analytics.SuggestionReorder)
		require.Len(t, low, 1)
		assert.Equal(t, string(analytics.PriorityHigh), low[0].Priority)
	})

	t.Run("surfaces depletion-order violations from recent exits", func(t *testing.T) {
		older := testLot(t, productID, "LOT-OLD", 100, 100, 40, nil, "")
		newer := testLot(t, productID, "LOT-NEW", 100, 90, 10, nil, "")

		config, err := fifoconfig.NewConfiguration(tenantID, fifoconfig.GlobalScope())
		require.NoError(t, err)

		agentID := uuid.New()
		exit, err := lot.NewMovement(newer, lot.MovementTypeExit, decimal.NewFromInt(-10), agentID)
		require.NoError(t, err)

		service := NewAdvisorService(
			&fakeLotRepo{lots: []*lot.Lot{older, newer}},
			&fakeMovementRepo{movements: []lot.Movement{*exit}},
			&fakeConfigRepo{candidates: []*fifoconfig.Configuration{config}},
		)

		suggestions, err := service.SuggestOptimizations(ctx, tenantID, productID, AnalyticsOptions{})

		require.NoError(t, err)
		violations := findByType(suggestions, analytics.SuggestionTransfer)
		require.Len(t, violations, 1)
		require.NotNil(t, violations[0].LotID)
		assert.Equal(t, older.ID, *violations[0].LotID)
	})

	t.Run("a compliant exit yields no violation", func(t *testing.T) {
		older := testLot(t, productID, "LOT-OLD", 100, 90, 40, nil, "")
		newer := testLot(t, productID, "LOT-NEW", 100, 100, 10, nil, "")

		config, err := fifoconfig.NewConfiguration(tenantID, fifoconfig.GlobalScope())
		require.NoError(t, err)

		exit, err := lot.NewMovement(older, lot.MovementTypeExit, decimal.NewFromInt(-10), uuid.New())
		require.NoError(t, err)

		service := NewAdvisorService(
			&fakeLotRepo{lots: []*lot.Lot{older, newer}},
			&fakeMovementRepo{movements: []lot.Movement{*exit}},
			&fakeConfigRepo{candidates: []*fifoconfig.Configuration{config}},
		)

		suggestions, err := service.SuggestOptimizations(ctx, tenantID, productID, AnalyticsOptions{})

		require.NoError(t, err)
		assert.Empty(t, findByType(suggestions, analytics.SuggestionTransfer))
	})
}
