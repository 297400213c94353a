package lightspeed

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageField_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"false means no image", `false`, false},
		{"null means no image", `null`, false},
		{"object is parsed", `{"title":"t","thumb":"th","src":"s","extra":"ignored"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f imageField
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &f))

			if !tt.want {
				assert.Nil(t, f.Image)
				return
			}
			require.NotNil(t, f.Image)
			assert.Equal(t, "t", f.Image.Title)
			assert.Equal(t, "th", f.Image.Thumb)
			assert.Equal(t, "s", f.Image.Src)
		})
	}
}

func TestWireVariant_ToDomain(t *testing.T) {
	raw := `{
		"id": 42,
		"isDefault": true,
		"sku": "SKU-1",
		"priceExcl": 19.95,
		"sortOrder": 3,
		"title": "Default",
		"image": false,
		"product": {"resource": {"id": 7, "url": "products/7", "link": "https://api/products/7.json"}}
	}`

	var wv wireVariant
	require.NoError(t, json.Unmarshal([]byte(raw), &wv))

	v := wv.toDomain()
	assert.Equal(t, int64(42), v.ID)
	assert.Equal(t, int64(7), v.ProductID)
	assert.Equal(t, "SKU-1", v.SKU)
	assert.True(t, v.IsDefault)
	assert.Equal(t, 3, v.SortOrder)
	assert.Equal(t, "19.95", v.PriceExcl.String())
	assert.Nil(t, v.Image)
}

func TestWireProduct_ToDomain(t *testing.T) {
	raw := `{
		"id": 7,
		"visibility": "visible",
		"url": "stoel-eiken",
		"title": "Stoel",
		"fulltitle": "Stoel eiken",
		"description": "desc",
		"content": "<p>body</p>",
		"image": {"title": "", "thumb": "https://cdn/7_thumb.jpg", "src": "https://cdn/7.jpg"}
	}`

	var wp wireProduct
	require.NoError(t, json.Unmarshal([]byte(raw), &wp))

	p := wp.toDomain("nl")
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "nl", p.Content.Language)
	assert.Equal(t, "Stoel", p.Content.Title)
	assert.Equal(t, "stoel-eiken", p.Content.URL)
	require.NotNil(t, p.Image)
	assert.Equal(t, "https://cdn/7_thumb.jpg", p.Image.Thumb)
}

func TestCreateBodies_WireFormat(t *testing.T) {
	product, err := json.Marshal(createProductBody{Product: createProductFields{
		Visibility: "hidden",
		Title:      "Stoel",
	}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"product":{"visibility":"hidden","title":"Stoel"}}`, string(product))

	variant, err := json.Marshal(createVariantBody{Variant: createVariantFields{
		Product:   7,
		SKU:       "SKU-1",
		PriceExcl: "19.95",
		SortOrder: 1,
		Title:     "Default",
	}})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"variant":{"product":7,"sku":"SKU-1","priceExcl":"19.95","sortOrder":1,"title":"Default"}}`,
		string(variant))
}
