package fifoconfig

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfiguration(t *testing.T) {
	tenant := uuid.New()

	t.Run("global scope resolves defaults at construction", func(t *testing.T) {
		c, err := NewConfiguration(tenant, GlobalScope())

		require.NoError(t, err)
		assert.Equal(t, ScopeGlobal, c.Scope().Kind)
		assert.True(t, c.Active)
		assert.Equal(t, 0, c.ToleranceDays)
		assert.Equal(t, DefaultThresholds(), c.Thresholds)
		assert.True(t, c.IgnoreExpiredLots)
		assert.False(t, c.PricePriority)
	})

	t.Run("product scope carries the product", func(t *testing.T) {
		productID := uuid.New()
		c, err := NewConfiguration(tenant, ProductScope(productID))

		require.NoError(t, err)
		require.NotNil(t, c.ProductID)
		assert.Equal(t, productID, *c.ProductID)
		assert.Equal(t, ScopeProduct, c.Scope().Kind)
	})

	t.Run("family scope carries the family", func(t *testing.T) {
		familyID := uuid.New()
		c, err := NewConfiguration(tenant, FamilyScope(familyID))

		require.NoError(t, err)
		require.NotNil(t, c.FamilyID)
		assert.Equal(t, familyID, *c.FamilyID)
	})

	t.Run("rejects product scope without product ID", func(t *testing.T) {
		_, err := NewConfiguration(tenant, Scope{Kind: ScopeProduct})

		require.Error(t, err)
	})

	t.Run("rejects family scope without family ID", func(t *testing.T) {
		_, err := NewConfiguration(tenant, Scope{Kind: ScopeFamily})

		require.Error(t, err)
	})
}

func TestScope_AppliesTo(t *testing.T) {
	productID := uuid.New()
	familyID := uuid.New()

	t.Run("product scope matches only its product", func(t *testing.T) {
		s := ProductScope(productID)

		assert.True(t, s.AppliesTo(productID, familyID))
		assert.False(t, s.AppliesTo(uuid.New(), familyID))
	})

	t.Run("family scope matches products of the family", func(t *testing.T) {
		s := FamilyScope(familyID)

		assert.True(t, s.AppliesTo(productID, familyID))
		assert.False(t, s.AppliesTo(productID, uuid.New()))
		assert.False(t, s.AppliesTo(productID, uuid.Nil), "products without a family never match family scope")
	})

	t.Run("global scope matches everything", func(t *testing.T) {
		s := GlobalScope()

		assert.True(t, s.AppliesTo(productID, familyID))
		assert.True(t, s.AppliesTo(productID, uuid.Nil))
	})
}

func TestConfiguration_Setters(t *testing.T) {
	tenant := uuid.New()

	t.Run("rejects negative tolerance", func(t *testing.T) {
		c, err := NewConfiguration(tenant, GlobalScope())
		require.NoError(t, err)

		require.Error(t, c.SetToleranceDays(-1))
		assert.Equal(t, 0, c.ToleranceDays)
	})

	t.Run("rejects unordered thresholds", func(t *testing.T) {
		c, err := NewConfiguration(tenant, GlobalScope())
		require.NoError(t, err)

		require.Error(t, c.SetThresholds(Thresholds{CriticalDays: 30, AlertDays: 10, WarningDays: 60}))
	})

	t.Run("thresholds keep alert threshold in sync", func(t *testing.T) {
		c, err := NewConfiguration(tenant, GlobalScope())
		require.NoError(t, err)

		require.NoError(t, c.SetThresholds(Thresholds{CriticalDays: 5, AlertDays: 20, WarningDays: 45}))
		assert.Equal(t, 20, c.AlertThresholdDays)
	})

	t.Run("setters bump the version", func(t *testing.T) {
		c, err := NewConfiguration(tenant, GlobalScope())
		require.NoError(t, err)
		v := c.GetVersion()

		c.SetPriority(5)
		c.SetPricePriority(true)

		assert.Equal(t, v+2, c.GetVersion())
	})
}
