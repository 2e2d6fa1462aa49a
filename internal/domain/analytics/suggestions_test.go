package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklot/backend/internal/domain/fifoconfig"
	"github.com/stocklot/backend/internal/domain/lot"
)

func snapshotWith(lots ...*lot.Lot) ProductSnapshot {
	productID := uuid.New()
	if len(lots) > 0 {
		productID = lots[0].ProductID
	}
	return ProductSnapshot{
		ProductID:  productID,
		Lots:       lots,
		Thresholds: fifoconfig.DefaultThresholds(),
	}
}

func byType(suggestions []Suggestion, t SuggestionType) []Suggestion {
	var out []Suggestion
	for _, s := range suggestions {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

func TestSuggestOptimizations_ExpirationRule(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("critical lot gets a high priority suggestion with benefit", func(t *testing.T) {
		soon := asOf.AddDate(0, 0, 3)
		l := receivedLot(t, 100, asOf.AddDate(0, 0, -30), &soon)
		l.WithPurchasePrice(decimal.NewFromInt(2))
		s := snapshotWith(l)

		suggestions := byType(SuggestOptimizations(s, asOf), SuggestionPromotion)

		require.Len(t, suggestions, 1)
		assert.Equal(t, PriorityHigh, suggestions[0].Priority)
		assert.Equal(t, l.ID, suggestions[0].LotID)
		assert.True(t, suggestions[0].ExpectedBenefit.Equal(decimal.NewFromInt(200)))
	})

	t.Run("high urgency lot gets a medium priority suggestion", func(t *testing.T) {
		in20 := asOf.AddDate(0, 0, 20)
		l := receivedLot(t, 100, asOf.AddDate(0, 0, -30), &in20)
		s := snapshotWith(l)

		suggestions := byType(SuggestOptimizations(s, asOf), SuggestionPromotion)

		require.Len(t, suggestions, 1)
		assert.Equal(t, PriorityMedium, suggestions[0].Priority)
	})

	t.Run("expired lot gets a write-off adjustment instead", func(t *testing.T) {
		gone := asOf.AddDate(0, 0, -2)
		l := receivedLot(t, 100, asOf.AddDate(0, 0, -30), &gone)
		l.WithPurchasePrice(decimal.NewFromInt(3))
		s := snapshotWith(l)

		suggestions := SuggestOptimizations(s, asOf)

		writeOffs := byType(suggestions, SuggestionAdjustment)
		require.Len(t, writeOffs, 1)
		assert.Equal(t, PriorityHigh, writeOffs[0].Priority)
		assert.True(t, writeOffs[0].ExpectedBenefit.Equal(decimal.NewFromInt(300)))
		assert.Empty(t, byType(suggestions, SuggestionPromotion))
	})

	t.Run("far-dated and empty lots stay quiet", func(t *testing.T) {
		far := asOf.AddDate(1, 0, 0)
		quiet := receivedLot(t, 100, asOf.AddDate(0, 0, -30), &far)
		soon := asOf.AddDate(0, 0, 3)
		empty := receivedLot(t, 100, asOf.AddDate(0, 0, -30), &soon)
		require.NoError(t, empty.ApplyDelta(decimal.NewFromInt(-100)))
		s := snapshotWith(quiet, empty)

		assert.Empty(t, byType(SuggestOptimizations(s, asOf), SuggestionPromotion))
	})
}

func TestSuggestOptimizations_FIFOViolationRule(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("violations surface the skipped lot", func(t *testing.T) {
		skipped := uuid.New()
		s := snapshotWith()
		s.Compliance = []fifoconfig.ComplianceResult{
			{Compliant: true},
			{Compliant: false, RecommendedLotID: skipped, RecommendedLotNo: "LOT-7"},
		}

		suggestions := byType(SuggestOptimizations(s, asOf), SuggestionTransfer)

		require.Len(t, suggestions, 1)
		assert.Equal(t, skipped, suggestions[0].LotID)
		assert.Contains(t, suggestions[0].Description, "LOT-7")
	})

	t.Run("compliant history produces nothing", func(t *testing.T) {
		s := snapshotWith()
		s.Compliance = []fifoconfig.ComplianceResult{{Compliant: true}}

		assert.Empty(t, byType(SuggestOptimizations(s, asOf), SuggestionTransfer))
	})
}

func TestSuggestOptimizations_LowStockRule(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("fires at the reorder floor with a stockout projection", func(t *testing.T) {
		l := receivedLot(t, 100, asOf.AddDate(0, 0, -30), nil)
		require.NoError(t, l.ApplyDelta(decimal.NewFromInt(-92)))
		s := snapshotWith(l)
		s.LowStockThreshold = decimal.NewFromInt(10)
		s.AvgDailyConsumption = decimal.NewFromInt(2)

		suggestions := byType(SuggestOptimizations(s, asOf), SuggestionReorder)

		require.Len(t, suggestions, 1)
		assert.Equal(t, PriorityHigh, suggestions[0].Priority)
		assert.Contains(t, suggestions[0].Description, "2024-03-05")
	})

	t.Run("silent above the floor", func(t *testing.T) {
		l := receivedLot(t, 100, asOf.AddDate(0, 0, -30), nil)
		s := snapshotWith(l)
		s.LowStockThreshold = decimal.NewFromInt(10)

		assert.Empty(t, byType(SuggestOptimizations(s, asOf), SuggestionReorder))
	})

	t.Run("silent without a configured floor", func(t *testing.T) {
		l := receivedLot(t, 10, asOf.AddDate(0, 0, -30), nil)
		s := snapshotWith(l)

		assert.Empty(t, byType(SuggestOptimizations(s, asOf), SuggestionReorder))
	})
}

func TestSuggestOptimizations_RulesAreIndependent(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	soon := asOf.AddDate(0, 0, 3)
	l := receivedLot(t, 100, asOf.AddDate(0, 0, -30), &soon)
	require.NoError(t, l.ApplyDelta(decimal.NewFromInt(-95)))
	s := snapshotWith(l)
	s.LowStockThreshold = decimal.NewFromInt(10)
	s.Compliance = []fifoconfig.ComplianceResult{
		{Compliant: false, RecommendedLotID: uuid.New(), RecommendedLotNo: "LOT-9"},
	}

	suggestions := SuggestOptimizations(s, asOf)

	assert.Len(t, byType(suggestions, SuggestionPromotion), 1)
	assert.Len(t, byType(suggestions, SuggestionTransfer), 1)
	assert.Len(t, byType(suggestions, SuggestionReorder), 1)
}
