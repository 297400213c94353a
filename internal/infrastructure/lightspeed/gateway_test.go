package lightspeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/merchantops/shopsync-backend/internal/usecase"
	"github.com/merchantops/shopsync-backend/pkg/e"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct{}

func (testLogger) Debugf(string, ...any)        {}
func (testLogger) Infof(string, ...any)         {}
func (testLogger) Warnf(string, ...any)         {}
func (testLogger) Errorf(error, string, ...any) {}

func newTestGateway(t *testing.T, handler http.Handler, pageLimit int, maxRetries int) *Gateway {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "test-key", "test-secret", 5*time.Second)

	return NewGateway("de", client, pageLimit, maxRetries, testLogger{})
}

func requireBasicAuth(t *testing.T, r *http.Request) {
	t.Helper()

	user, pass, ok := r.BasicAuth()
	require.True(t, ok, "request must carry basic auth")
	assert.Equal(t, "test-key", user)
	assert.Equal(t, "test-secret", pass)
}

func writeJSON(w http.ResponseWriter, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, format, args...)
}

func variantJSON(id int64, productID int64, sku string, isDefault bool) string {
	return fmt.Sprintf(`{
		"id": %d, "isDefault": %t, "sku": %q, "priceExcl": 10.00, "sortOrder": 1,
		"title": "v", "image": false, "product": {"resource": {"id": %d}}
	}`, id, isDefault, sku, productID)
}

func TestGateway_FetchCatalog(t *testing.T) {
	mux := http.NewServeMux()

	mux.HandleFunc("/de/products.json", func(w http.ResponseWriter, r *http.Request) {
		requireBasicAuth(t, r)
		assert.Equal(t, productFields, r.URL.Query().Get("fields"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		switch r.URL.Query().Get("page") {
		case "1":
			// полная страница: выгрузка продолжается
			writeJSON(w, `{"products": [
				{"id": 1, "title": "One", "image": {"thumb": "https://cdn/1_thumb.jpg"}},
				{"id": 2, "title": "Two", "image": false}
			]}`)
		case "2":
			// короткая страница завершает проход
			writeJSON(w, `{"products": [{"id": 3, "title": "Three", "image": false}]}`)
		default:
			t.Errorf("unexpected products page requested: %s", r.URL.Query().Get("page"))
		}
	})

	mux.HandleFunc("/de/variants.json", func(w http.ResponseWriter, r *http.Request) {
		requireBasicAuth(t, r)
		assert.Equal(t, variantFields, r.URL.Query().Get("fields"))

		switch r.URL.Query().Get("page") {
		case "1":
			writeJSON(w, `{"variants": [%s, %s]}`,
				variantJSON(10, 1, "A", true),
				variantJSON(11, 1, "A-XL", false))
		case "2":
			// сирота: товара 999 нет в выгрузке
			writeJSON(w, `{"variants": [%s]}`, variantJSON(99, 999, "GHOST", true))
		default:
			t.Errorf("unexpected variants page requested: %s", r.URL.Query().Get("page"))
		}
	})

	gw := newTestGateway(t, mux, 2, 1)

	snap, err := gw.FetchCatalog(context.Background(), "de")
	require.NoError(t, err)

	assert.Equal(t, "de", snap.Language)
	require.Len(t, snap.Products, 3)
	assert.Equal(t, 3, snap.VariantsFetched)
	assert.Equal(t, 1, snap.OrphanVariants)

	first := snap.Products[0]
	assert.Equal(t, int64(1), first.ID)
	require.Len(t, first.Variants, 2)
	assert.Equal(t, "A", first.Variants[0].SKU)
	require.NotNil(t, first.Image)
	assert.Equal(t, "https://cdn/1_thumb.jpg", first.Image.Thumb)

	// товары без вариантов остаются в снапшоте
	assert.Empty(t, snap.Products[1].Variants)
	assert.Nil(t, snap.Products[1].Image)
}

func TestGateway_FetchLocalizedContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/products.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			writeJSON(w, `{"products": [{"id": 1, "title": "Chair", "url": "chair", "image": false}]}`)
			return
		}
		writeJSON(w, `{"products": []}`)
	})
	mux.HandleFunc("/en/variants.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			writeJSON(w, `{"variants": [%s]}`, variantJSON(10, 1, "A", true))
			return
		}
		writeJSON(w, `{"variants": []}`)
	})

	gw := newTestGateway(t, mux, 250, 1)

	snap, err := gw.FetchLocalizedContent(context.Background(), "en")
	require.NoError(t, err)

	assert.Equal(t, "en", snap.Language)
	require.Contains(t, snap.ProductContent, int64(1))
	assert.Equal(t, "Chair", snap.ProductContent[1].Title)
	assert.Equal(t, "en", snap.ProductContent[1].Language)
	assert.Equal(t, map[int64]string{10: "v"}, snap.VariantTitles)
}

func TestGateway_RetriesTransientFailures(t *testing.T) {
	var productCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/de/products.json", func(w http.ResponseWriter, r *http.Request) {
		if productCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, `{"products": []}`)
	})
	mux.HandleFunc("/de/variants.json", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"variants": []}`)
	})

	gw := newTestGateway(t, mux, 250, 3)

	snap, err := gw.FetchCatalog(context.Background(), "de")
	require.NoError(t, err)

	assert.Empty(t, snap.Products)
	assert.Equal(t, int32(2), productCalls.Load())
}

func TestGateway_UpstreamErrorAfterRetries(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/de/products.json", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	})
	mux.HandleFunc("/de/variants.json", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"variants": []}`)
	})

	gw := newTestGateway(t, mux, 250, 1)

	_, err := gw.FetchCatalog(context.Background(), "de")
	require.Error(t, err)

	var upstream *e.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "rate limited")
}

func TestGateway_CreateProduct(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/de/products.json", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		requireBasicAuth(t, r)

		var body createProductBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "visible", body.Product.Visibility)
		assert.Equal(t, "Stuhl", body.Product.Title)

		writeJSON(w, `{"product": {"id": 123, "title": "Stuhl", "image": false}}`)
	})

	gw := newTestGateway(t, mux, 250, 1)

	id, err := gw.CreateProduct(context.Background(), "de", &usecase.CreateShellReq{
		Visibility: "visible",
		Title:      "Stuhl",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(123), id)
}

func TestGateway_CreateVariant(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/de/variants.json", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var body createVariantBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(123), body.Variant.Product)
		assert.Equal(t, "CH-1", body.Variant.SKU)
		// цена уходит строкой, без потери точности
		assert.Equal(t, "19.95", body.Variant.PriceExcl)

		writeJSON(w, `{"variant": {"id": 55, "image": false, "product": {"resource": {"id": 123}}}}`)
	})

	gw := newTestGateway(t, mux, 250, 1)

	price, err := decimal.NewFromString("19.95")
	require.NoError(t, err)

	id, err := gw.CreateVariant(context.Background(), "de", 123, &usecase.NewVariantReq{
		SKU:       "CH-1",
		PriceExcl: price,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(55), id)
}

func TestGateway_UpdateProductContent(t *testing.T) {
	var called bool

	mux := http.NewServeMux()
	mux.HandleFunc("/en/products/123.json", func(w http.ResponseWriter, r *http.Request) {
		called = true
		require.Equal(t, http.MethodPut, r.Method)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"product": {"title": "Chair"}}`, string(raw))

		writeJSON(w, `{"product": {"id": 123, "image": false}}`)
	})

	gw := newTestGateway(t, mux, 250, 1)

	err := gw.UpdateProductContent(context.Background(), "en", 123, &usecase.LocalizedContent{
		Language: "en",
		Title:    "Chair",
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestGateway_FetchImage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/de/products/7/image.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, imageFields, r.URL.Query().Get("fields"))
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "test-key", "test-secret", 5*time.Second)
	gw := NewGateway("de", client, 250, 1, testLogger{})

	img, err := gw.FetchImage(context.Background(), srv.URL+"/de/products/7/image.json")
	require.NoError(t, err)

	assert.Equal(t, []byte("jpeg-bytes"), img.Data)
	assert.Equal(t, "image/jpeg", img.ContentType)
}

func TestGateway_ParsesBodyWithoutJSONContentType(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/de/products.json", func(w http.ResponseWriter, r *http.Request) {
		// магазин иногда отвечает без Content-Type; тело всё равно JSON,
		// и каталог не должен молча превращаться в пустой
		fmt.Fprint(w, `{"products": [{"id": 1, "title": "One", "image": false}]}`)
	})
	mux.HandleFunc("/de/variants.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, `{"variants": [%s]}`, variantJSON(10, 1, "A", true))
	})

	gw := newTestGateway(t, mux, 250, 1)

	snap, err := gw.FetchCatalog(context.Background(), "de")
	require.NoError(t, err)

	require.Len(t, snap.Products, 1)
	assert.Equal(t, int64(1), snap.Products[0].ID)
	require.Len(t, snap.Products[0].Variants, 1)
	assert.Equal(t, "A", snap.Products[0].Variants[0].SKU)
}

func TestGateway_UnreachableShopErrorClass(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, "test-key", "test-secret", time.Second)
	gw := NewGateway("de", client, 250, 1, testLogger{})

	_, err := gw.FetchCatalog(context.Background(), "de")

	// сетевой сбой несёт класс недоступности магазина, а не теряет его
	require.ErrorIs(t, err, e.ErrShopUnavailable)
}
