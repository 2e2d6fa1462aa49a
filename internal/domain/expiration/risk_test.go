package expiration

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklot/backend/internal/domain/fifoconfig"
	"github.com/stocklot/backend/internal/domain/lot"
)

func lotExpiringIn(t *testing.T, days int, asOf time.Time, qty int64) *lot.Lot {
	t.Helper()
	expiration := asOf.AddDate(0, 0, days)
	l, err := lot.NewLot(
		uuid.New(),
		uuid.New(),
		"LOT-RISK",
		decimal.NewFromInt(qty),
		asOf.AddDate(0, 0, -30),
		&expiration,
	)
	require.NoError(t, err)
	return l
}

func TestClassifyUrgency_Boundaries(t *testing.T) {
	thresholds := fifoconfig.DefaultThresholds()

	tests := []struct {
		days    int
		urgency Urgency
	}{
		{-3, UrgencyCritical},
		{0, UrgencyCritical},
		{7, UrgencyCritical},
		{8, UrgencyHigh},
		{10, UrgencyHigh},
		{30, UrgencyHigh},
		{31, UrgencyMedium},
		{60, UrgencyMedium},
		{61, UrgencyLow},
		{365, UrgencyLow},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d days", tt.days), func(t *testing.T) {
			assert.Equal(t, tt.urgency, ClassifyUrgency(tt.days, thresholds))
		})
	}
}

func TestAssessRisk(t *testing.T) {
	thresholds := fifoconfig.DefaultThresholds()
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("lot without expiry is low urgency with no loss", func(t *testing.T) {
		l, err := lot.NewLot(uuid.New(), uuid.New(), "LOT-1", decimal.NewFromInt(100), asOf.AddDate(0, 0, -10), nil)
		require.NoError(t, err)

		a := AssessRisk(l, thresholds, decimal.NewFromInt(5), decimal.NewFromInt(2), asOf)

		assert.False(t, a.HasExpiry)
		assert.Equal(t, UrgencyLow, a.Urgency)
		assert.True(t, a.EstimatedLoss.IsZero())
		assert.Empty(t, a.RecommendedActions)
	})

	t.Run("expired lot loses the full remaining value", func(t *testing.T) {
		l := lotExpiringIn(t, -2, asOf, 40)

		a := AssessRisk(l, thresholds, decimal.NewFromInt(5), decimal.NewFromInt(3), asOf)

		assert.Equal(t, UrgencyCritical, a.Urgency)
		assert.Equal(t, -2, a.DaysRemaining)
		assert.True(t, a.EstimatedLoss.Equal(decimal.NewFromInt(120)))
	})

	t.Run("stalled product loses the full remaining value", func(t *testing.T) {
		l := lotExpiringIn(t, 20, asOf, 40)

		a := AssessRisk(l, thresholds, decimal.Zero, decimal.NewFromInt(3), asOf)

		assert.True(t, a.EstimatedLoss.Equal(decimal.NewFromInt(120)))
	})

	t.Run("slow consumption loses the unsellable excess", func(t *testing.T) {
		// 100 remaining, 2/day for 10 days -> 80 unsellable at 1.5 each
		l := lotExpiringIn(t, 10, asOf, 100)

		a := AssessRisk(l, thresholds, decimal.NewFromInt(2), decimal.NewFromFloat(1.5), asOf)

		assert.Equal(t, UrgencyHigh, a.Urgency)
		assert.True(t, a.EstimatedLoss.Equal(decimal.NewFromInt(120)))
	})

	t.Run("fast consumption sells through with no loss", func(t *testing.T) {
		l := lotExpiringIn(t, 10, asOf, 100)

		a := AssessRisk(l, thresholds, decimal.NewFromInt(15), decimal.NewFromInt(2), asOf)

		assert.True(t, a.EstimatedLoss.IsZero())
	})

	t.Run("no unit value means no measurable loss", func(t *testing.T) {
		l := lotExpiringIn(t, -2, asOf, 40)

		a := AssessRisk(l, thresholds, decimal.Zero, decimal.Zero, asOf)

		assert.True(t, a.EstimatedLoss.IsZero())
	})

	t.Run("actions follow urgency deterministically", func(t *testing.T) {
		critical := AssessRisk(lotExpiringIn(t, 3, asOf, 10), thresholds, decimal.Zero, decimal.Zero, asOf)
		high := AssessRisk(lotExpiringIn(t, 20, asOf, 10), thresholds, decimal.Zero, decimal.Zero, asOf)
		medium := AssessRisk(lotExpiringIn(t, 45, asOf, 10), thresholds, decimal.Zero, decimal.Zero, asOf)

		assert.Equal(t, []string{ActionImmediatePromotion, ActionPlanDestruction}, critical.RecommendedActions)
		assert.Equal(t, []string{ActionPromotion, ActionPrioritizeSale}, high.RecommendedActions)
		assert.Equal(t, []string{ActionWatchClosely}, medium.RecommendedActions)
	})
}
