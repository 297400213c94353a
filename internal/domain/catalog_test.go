package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariant_NormalizedSKU(t *testing.T) {
	assert.Equal(t, "A-1", Variant{SKU: "  A-1  "}.NormalizedSKU())
	assert.Equal(t, "", Variant{SKU: "   "}.NormalizedSKU())
	assert.Equal(t, "", Variant{}.NormalizedSKU())
}

func TestProduct_DefaultVariant(t *testing.T) {
	p := Product{Variants: []Variant{
		{ID: 1, SKU: "A"},
		{ID: 2, SKU: "B", IsDefault: true},
	}}

	dv := p.DefaultVariant()
	require.NotNil(t, dv)
	assert.Equal(t, int64(2), dv.ID)

	assert.Nil(t, Product{Variants: []Variant{{ID: 1}}}.DefaultVariant())
	assert.Nil(t, Product{}.DefaultVariant())
}

func TestProduct_NonDefaultSKUs(t *testing.T) {
	p := Product{Variants: []Variant{
		{ID: 1, SKU: "LAST", SortOrder: 9},
		{ID: 2, SKU: "MAIN", SortOrder: 1, IsDefault: true},
		{ID: 3, SKU: "FIRST", SortOrder: 2},
		{ID: 4, SKU: "  ", SortOrder: 3},
		{ID: 5, SKU: "MIDDLE", SortOrder: 5},
	}}

	// порядок сортировки вариантов, вариант по умолчанию и пустые SKU выпадают
	assert.Equal(t, []string{"FIRST", "MIDDLE", "LAST"}, p.NonDefaultSKUs())
}

func TestShop_Languages(t *testing.T) {
	shop := Shop{
		TLD: "be",
		Languages: []ShopLanguage{
			{Code: "nl", IsDefault: true, IsActive: true},
			{Code: "fr", IsActive: true},
			{Code: "de"},
		},
	}

	assert.Equal(t, "nl", shop.DefaultLanguage())
	assert.Equal(t, []string{"nl", "fr"}, shop.ActiveLanguages())
}

func TestCreationResult_Partial(t *testing.T) {
	assert.False(t, CreationResult{Success: true}.Partial())
	assert.True(t, CreationResult{Success: true, Details: []StageFailure{{Stage: StageVariant}}}.Partial())
	// без созданного товара частичности не бывает
	assert.False(t, CreationResult{Success: false, Details: []StageFailure{{Stage: StageVariant}}}.Partial())
}
