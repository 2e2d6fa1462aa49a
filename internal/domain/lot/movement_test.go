package lot

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovementType_AllowsSign(t *testing.T) {
	pos := decimal.NewFromInt(5)
	neg := decimal.NewFromInt(-5)

	tests := []struct {
		movementType MovementType
		quantity     decimal.Decimal
		allowed      bool
	}{
		{MovementTypeEntry, pos, true},
		{MovementTypeEntry, neg, false},
		{MovementTypeReturn, pos, true},
		{MovementTypeReturn, neg, false},
		{MovementTypeExit, neg, true},
		{MovementTypeExit, pos, false},
		{MovementTypeDestruction, neg, true},
		{MovementTypeDestruction, pos, false},
		{MovementTypeAdjustment, pos, true},
		{MovementTypeAdjustment, neg, true},
		{MovementTypeAdjustment, decimal.Zero, false},
		{MovementTypeTransfer, pos, true},
		{MovementTypeTransfer, neg, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.movementType)+"/"+tt.quantity.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.movementType.AllowsSign(tt.quantity))
		})
	}
}

func TestMovementType_IsValid(t *testing.T) {
	assert.True(t, MovementTypeEntry.IsValid())
	assert.True(t, MovementTypeTransfer.IsValid())
	assert.False(t, MovementType("UNKNOWN").IsValid())
}

func TestNewMovement(t *testing.T) {
	agent := uuid.New()

	t.Run("creates movement with denormalized product", func(t *testing.T) {
		l := newTestLot(t, 100, nil)

		m, err := NewMovement(l, MovementTypeExit, decimal.NewFromInt(-10), agent)

		require.NoError(t, err)
		assert.Equal(t, l.ID, m.LotID)
		assert.Equal(t, l.ProductID, m.ProductID)
		assert.Equal(t, l.TenantID, m.TenantID)
		assert.Equal(t, agent, m.ActingAgentID)
		assert.False(t, m.OccurredAt.IsZero())
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		l := newTestLot(t, 100, nil)

		_, err := NewMovement(l, MovementTypeAdjustment, decimal.Zero, agent)

		require.Error(t, err)
	})

	t.Run("rejects sign mismatch", func(t *testing.T) {
		l := newTestLot(t, 100, nil)

		_, err := NewMovement(l, MovementTypeEntry, decimal.NewFromInt(-10), agent)

		require.Error(t, err)
	})

	t.Run("rejects invalid type", func(t *testing.T) {
		l := newTestLot(t, 100, nil)

		_, err := NewMovement(l, MovementType("BOGUS"), decimal.NewFromInt(10), agent)

		require.Error(t, err)
	})

	t.Run("rejects missing agent", func(t *testing.T) {
		l := newTestLot(t, 100, nil)

		_, err := NewMovement(l, MovementTypeEntry, decimal.NewFromInt(10), uuid.Nil)

		require.Error(t, err)
	})
}

func TestMovement_Builders(t *testing.T) {
	agent := uuid.New()
	l := newTestLot(t, 100, nil)

	t.Run("reference and metadata are carried", func(t *testing.T) {
		m, err := NewMovement(l, MovementTypeAdjustment, decimal.NewFromInt(-5), agent)
		require.NoError(t, err)

		m.WithReference(ReferenceTypeReconciliation, "session-42").
			WithMetadata(Metadata{
				MetadataKeyTheoreticalQuantity: "50",
				MetadataKeyPhysicalQuantity:    "45",
			})

		assert.Equal(t, ReferenceTypeReconciliation, m.ReferenceType)
		assert.Equal(t, "session-42", m.ReferenceID)
		assert.Equal(t, "50", m.Metadata[MetadataKeyTheoreticalQuantity])
		assert.Equal(t, "45", m.Metadata[MetadataKeyPhysicalQuantity])
	})

	t.Run("occurred at can be overridden", func(t *testing.T) {
		m, err := NewMovement(l, MovementTypeExit, decimal.NewFromInt(-5), agent)
		require.NoError(t, err)

		at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		m.WithOccurredAt(at)

		assert.Equal(t, at, m.OccurredAt)
	})

	t.Run("abs quantity and direction helpers", func(t *testing.T) {
		m, err := NewMovement(l, MovementTypeExit, decimal.NewFromInt(-5), agent)
		require.NoError(t, err)

		assert.True(t, m.IsDecrease())
		assert.False(t, m.IsIncrease())
		assert.True(t, m.AbsQuantity().Equal(decimal.NewFromInt(5)))
	})
}
