package usecase

import (
	"testing"

	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func targetCatalog() []domain.Product {
	return []domain.Product{
		{
			ID: 10,
			Variants: []domain.Variant{
				{ID: 100, ProductID: 10, SKU: "ALPHA", IsDefault: true},
				{ID: 101, ProductID: 10, SKU: "ALPHA-XL"},
			},
		},
		{
			ID: 20,
			Variants: []domain.Variant{
				{ID: 200, ProductID: 20, SKU: "BETA", IsDefault: true},
			},
		},
		{
			ID: 30,
			Variants: []domain.Variant{
				{ID: 300, ProductID: 30, SKU: "ALPHA", IsDefault: true},
			},
		},
	}
}

func TestBuildCatalogIndex(t *testing.T) {
	idx := BuildCatalogIndex(targetCatalog())

	// ALPHA встречается в двух товарах, BETA в одном
	require.Len(t, idx["ALPHA"], 2)
	require.Len(t, idx["BETA"], 1)
	assert.Equal(t, int64(20), idx["BETA"][0].ProductID)
	assert.Equal(t, int64(200), idx["BETA"][0].DefaultVariantID)
	assert.Equal(t, 1, idx["BETA"][0].VariantCount)

	// не-дефолтный SKU индексируется с записью своего товара
	require.Len(t, idx["ALPHA-XL"], 1)
	assert.Equal(t, int64(10), idx["ALPHA-XL"][0].ProductID)
	assert.Equal(t, int64(100), idx["ALPHA-XL"][0].DefaultVariantID)
	assert.Equal(t, 2, idx["ALPHA-XL"][0].VariantCount)
}

func TestBuildCatalogIndex_NoDefaultVariant(t *testing.T) {
	idx := BuildCatalogIndex([]domain.Product{
		{
			ID: 40,
			Variants: []domain.Variant{
				{ID: 400, ProductID: 40, SKU: "GAMMA"},
				{ID: 401, ProductID: 40, SKU: "GAMMA-2"},
			},
		},
	})

	// без варианта по умолчанию берётся первый вариант
	require.Len(t, idx["GAMMA"], 1)
	assert.Equal(t, int64(400), idx["GAMMA"][0].DefaultVariantID)
}

func TestBuildCatalogIndex_SkipsEmptySKU(t *testing.T) {
	idx := BuildCatalogIndex([]domain.Product{
		{
			ID: 50,
			Variants: []domain.Variant{
				{ID: 500, ProductID: 50, SKU: "", IsDefault: true},
				{ID: 501, ProductID: 50, SKU: "   "},
			},
		},
	})

	assert.Empty(t, idx)
}

func TestClassify(t *testing.T) {
	idx := BuildCatalogIndex(targetCatalog())

	tests := []struct {
		name       string
		defaultSKU string
		fallbacks  []string
		status     domain.MatchStatus
		matchCount int
		productIDs []int64
	}{
		{
			name:       "single match",
			defaultSKU: "BETA",
			status:     domain.MatchExistsSingle,
			matchCount: 1,
			productIDs: []int64{20},
		},
		{
			name:       "multiple matches ordered by product id",
			defaultSKU: "ALPHA",
			status:     domain.MatchExistsMultiple,
			matchCount: 2,
			productIDs: []int64{10, 30},
		},
		{
			name:       "no match anywhere",
			defaultSKU: "DELTA",
			fallbacks:  []string{"OMEGA"},
			status:     domain.MatchNotExists,
		},
		{
			name:       "fallback used when default misses",
			defaultSKU: "DELTA",
			fallbacks:  []string{"OMEGA", "BETA", "ALPHA"},
			status:     domain.MatchExistsSingle,
			matchCount: 1,
			productIDs: []int64{20},
		},
		{
			name:       "fallback ignored when default matches",
			defaultSKU: "BETA",
			fallbacks:  []string{"ALPHA"},
			status:     domain.MatchExistsSingle,
			matchCount: 1,
			productIDs: []int64{20},
		},
		{
			name:       "default sku trimmed before lookup",
			defaultSKU: "  BETA  ",
			status:     domain.MatchExistsSingle,
			matchCount: 1,
			productIDs: []int64{20},
		},
		{
			name:       "empty default sku never checks fallbacks",
			defaultSKU: "",
			fallbacks:  []string{"BETA"},
			status:     domain.MatchNotExists,
		},
		{
			name:       "whitespace default sku never checks fallbacks",
			defaultSKU: "   ",
			fallbacks:  []string{"ALPHA"},
			status:     domain.MatchNotExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.defaultSKU, tt.fallbacks, idx)

			assert.Equal(t, tt.status, result.Status)
			assert.Equal(t, tt.matchCount, result.MatchCount)
			assert.Equal(t, tt.productIDs, result.ProductIDs)
		})
	}
}

func TestClassify_DeduplicatesByProduct(t *testing.T) {
	// оба SKU товара 10 указывают на один и тот же товар
	idx := BuildCatalogIndex([]domain.Product{
		{
			ID: 10,
			Variants: []domain.Variant{
				{ID: 100, ProductID: 10, SKU: "SAME", IsDefault: true},
				{ID: 101, ProductID: 10, SKU: "SAME"},
			},
		},
	})

	result := Classify("SAME", nil, idx)

	assert.Equal(t, domain.MatchExistsSingle, result.Status)
	assert.Equal(t, 1, result.MatchCount)
	assert.Equal(t, []int64{10}, result.ProductIDs)
	assert.Equal(t, []int64{100}, result.DefaultVariantIDs)
	assert.Equal(t, []int{2}, result.VariantCounts)
}

func TestClassify_ParallelArraysAligned(t *testing.T) {
	idx := BuildCatalogIndex(targetCatalog())

	result := Classify("ALPHA", nil, idx)

	require.Equal(t, 2, result.MatchCount)
	assert.Equal(t, []int64{10, 30}, result.ProductIDs)
	assert.Equal(t, []int64{100, 300}, result.DefaultVariantIDs)
	assert.Equal(t, []int{2, 1}, result.VariantCounts)
}
