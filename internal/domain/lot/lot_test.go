package lot

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklot/backend/internal/domain/shared"
)

func newTestLot(t *testing.T, initial int64, expiration *time.Time) *Lot {
	t.Helper()
	l, err := NewLot(
		uuid.New(),
		uuid.New(),
		"LOT-001",
		decimal.NewFromInt(initial),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		expiration,
	)
	require.NoError(t, err)
	return l
}

func TestNewLot(t *testing.T) {
	t.Run("creates lot with remaining equal to initial", func(t *testing.T) {
		l := newTestLot(t, 100, nil)

		assert.True(t, l.RemainingQuantity.Equal(decimal.NewFromInt(100)))
		assert.True(t, l.InitialQuantity.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, LotStatusActive, l.Status)
		assert.Equal(t, 1, l.GetVersion())
	})

	t.Run("emits LotReceived event", func(t *testing.T) {
		l := newTestLot(t, 100, nil)

		events := l.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeLotReceived, events[0].EventType())
	})

	t.Run("rejects zero initial quantity", func(t *testing.T) {
		_, err := NewLot(uuid.New(), uuid.New(), "LOT-001", decimal.Zero, time.Now(), nil)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
	})

	t.Run("rejects negative initial quantity", func(t *testing.T) {
		_, err := NewLot(uuid.New(), uuid.New(), "LOT-001", decimal.NewFromInt(-5), time.Now(), nil)

		require.Error(t, err)
	})

	t.Run("rejects empty lot number", func(t *testing.T) {
		_, err := NewLot(uuid.New(), uuid.New(), "", decimal.NewFromInt(10), time.Now(), nil)

		require.Error(t, err)
	})

	t.Run("rejects expiration before reception", func(t *testing.T) {
		reception := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		expiration := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err := NewLot(uuid.New(), uuid.New(), "LOT-001", decimal.NewFromInt(10), reception, &expiration)

		require.Error(t, err)
	})
}

func TestLot_ApplyDelta(t *testing.T) {
	t.Run("decreases remaining on negative delta", func(t *testing.T) {
		l := newTestLot(t, 100, nil)

		err := l.ApplyDelta(decimal.NewFromInt(-30))

		require.NoError(t, err)
		assert.True(t, l.RemainingQuantity.Equal(decimal.NewFromInt(70)))
		assert.Equal(t, LotStatusActive, l.Status)
	})

	t.Run("rejects delta that would go below zero", func(t *testing.T) {
		l := newTestLot(t, 100, nil)
		require.NoError(t, l.ApplyDelta(decimal.NewFromInt(-30)))

		err := l.ApplyDelta(decimal.NewFromInt(-80))

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "QUANTITY_OUT_OF_BOUNDS", domainErr.Code)
		assert.True(t, l.RemainingQuantity.Equal(decimal.NewFromInt(70)), "remaining must be untouched after rejection")
	})

	t.Run("rejects delta that would exceed initial", func(t *testing.T) {
		l := newTestLot(t, 100, nil)
		require.NoError(t, l.ApplyDelta(decimal.NewFromInt(-30)))

		err := l.ApplyDelta(decimal.NewFromInt(40))

		require.Error(t, err)
		assert.True(t, l.RemainingQuantity.Equal(decimal.NewFromInt(70)))
	})

	t.Run("rejects zero delta", func(t *testing.T) {
		l := newTestLot(t, 100, nil)

		err := l.ApplyDelta(decimal.Zero)

		require.Error(t, err)
	})

	t.Run("transitions to depleted at zero and emits event", func(t *testing.T) {
		l := newTestLot(t, 100, nil)
		l.ClearDomainEvents()

		require.NoError(t, l.ApplyDelta(decimal.NewFromInt(-100)))

		assert.Equal(t, LotStatusDepleted, l.Status)
		events := l.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeLotDepleted, events[0].EventType())
	})

	t.Run("reactivates a depleted lot on positive correction", func(t *testing.T) {
		l := newTestLot(t, 100, nil)
		require.NoError(t, l.ApplyDelta(decimal.NewFromInt(-100)))
		require.Equal(t, LotStatusDepleted, l.Status)

		require.NoError(t, l.ApplyDelta(decimal.NewFromInt(10)))

		assert.Equal(t, LotStatusActive, l.Status)
		assert.True(t, l.RemainingQuantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("increments version on every applied delta", func(t *testing.T) {
		l := newTestLot(t, 100, nil)
		v := l.GetVersion()

		require.NoError(t, l.ApplyDelta(decimal.NewFromInt(-10)))
		require.NoError(t, l.ApplyDelta(decimal.NewFromInt(-10)))

		assert.Equal(t, v+2, l.GetVersion())
	})
}

func TestLot_RefreshStatus(t *testing.T) {
	t.Run("marks active lot expired past expiration date", func(t *testing.T) {
		expiration := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		l := newTestLot(t, 100, &expiration)
		l.ClearDomainEvents()

		changed := l.RefreshStatus(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))

		assert.True(t, changed)
		assert.Equal(t, LotStatusExpired, l.Status)
		events := l.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeLotExpired, events[0].EventType())
	})

	t.Run("does nothing before expiration", func(t *testing.T) {
		expiration := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		l := newTestLot(t, 100, &expiration)

		changed := l.RefreshStatus(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

		assert.False(t, changed)
		assert.Equal(t, LotStatusActive, l.Status)
	})

	t.Run("does nothing without an expiration date", func(t *testing.T) {
		l := newTestLot(t, 100, nil)

		assert.False(t, l.RefreshStatus(time.Now()))
		assert.Equal(t, LotStatusActive, l.Status)
	})

	t.Run("does not touch depleted lots", func(t *testing.T) {
		expiration := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		l := newTestLot(t, 100, &expiration)
		require.NoError(t, l.ApplyDelta(decimal.NewFromInt(-100)))

		assert.False(t, l.RefreshStatus(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, LotStatusDepleted, l.Status)
	})
}

func TestLot_DaysUntilExpiry(t *testing.T) {
	t.Run("counts days to future expiration", func(t *testing.T) {
		expiration := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
		l := newTestLot(t, 100, &expiration)

		days, ok := l.DaysUntilExpiry(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

		require.True(t, ok)
		assert.Equal(t, 10, days)
	})

	t.Run("is negative once expired", func(t *testing.T) {
		expiration := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
		l := newTestLot(t, 100, &expiration)

		days, ok := l.DaysUntilExpiry(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC))

		require.True(t, ok)
		assert.Equal(t, -5, days)
	})

	t.Run("reports no expiry when date is absent", func(t *testing.T) {
		l := newTestLot(t, 100, nil)

		_, ok := l.DaysUntilExpiry(time.Now())

		assert.False(t, ok)
	})
}

func TestLot_Derivations(t *testing.T) {
	t.Run("usage percent reflects consumption", func(t *testing.T) {
		l := newTestLot(t, 200, nil)
		require.NoError(t, l.ApplyDelta(decimal.NewFromInt(-50)))

		assert.True(t, l.UsagePercent().Equal(decimal.NewFromInt(25)))
	})

	t.Run("stock value uses purchase price", func(t *testing.T) {
		l := newTestLot(t, 100, nil)
		l.WithPurchasePrice(decimal.NewFromFloat(2.5))

		assert.True(t, l.StockValue().Equal(decimal.NewFromInt(250)))
	})

	t.Run("stock value is zero without purchase price", func(t *testing.T) {
		l := newTestLot(t, 100, nil)

		assert.True(t, l.StockValue().IsZero())
	})

	t.Run("days in stock is at least one", func(t *testing.T) {
		l := newTestLot(t, 100, nil)

		assert.Equal(t, 1, l.DaysInStock(l.ReceptionDate))
		assert.Equal(t, 31, l.DaysInStock(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	})
}
