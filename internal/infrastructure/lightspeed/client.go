package lightspeed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/merchantops/shopsync-backend/pkg/e"
)

// API магазина отдаёт JSON, но не всегда проставляет Content-Type;
// парсим тело принудительно, иначе успешный ответ читается как пустой.
const jsonContentType = "application/json"

// Client — тонкая обёртка над REST API одного магазина.
// Не ретраит и не интерпретирует ответы за пределами кода статуса:
// политика повторов принадлежит вызывающему.
type Client struct {
	http *resty.Client
}

// NewClient создаёт клиент API магазина с Basic Auth по его учётным данным.
func NewClient(apiBase string, apiKey string, apiSecret string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(apiBase).
		SetBasicAuth(apiKey, apiSecret).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient}
}

// FetchProductsPage выгружает одну страницу товаров.
func (c *Client) FetchProductsPage(ctx context.Context, lang string, page int, limit int) ([]wireProduct, error) {
	var envelope productsEnvelope

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"limit":  strconv.Itoa(limit),
			"page":   strconv.Itoa(page),
			"fields": productFields,
		}).
		SetResult(&envelope).
		ForceContentType(jsonContentType).
		Get(fmt.Sprintf("/%s/products.json", lang))
	if err != nil {
		return nil, unavailable(err)
	}
	if resp.IsError() {
		return nil, e.NewUpstreamError(resp.StatusCode(), string(resp.Body()))
	}

	return envelope.Products, nil
}

// FetchVariantsPage выгружает одну страницу вариантов.
func (c *Client) FetchVariantsPage(ctx context.Context, lang string, page int, limit int) ([]wireVariant, error) {
	var envelope variantsEnvelope

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"limit":  strconv.Itoa(limit),
			"page":   strconv.Itoa(page),
			"fields": variantFields,
		}).
		SetResult(&envelope).
		ForceContentType(jsonContentType).
		Get(fmt.Sprintf("/%s/variants.json", lang))
	if err != nil {
		return nil, unavailable(err)
	}
	if resp.IsError() {
		return nil, e.NewUpstreamError(resp.StatusCode(), string(resp.Body()))
	}

	return envelope.Variants, nil
}

// CreateProduct создаёт товар и возвращает его ID.
func (c *Client) CreateProduct(ctx context.Context, lang string, body createProductBody) (int64, error) {
	var envelope productEnvelope

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&envelope).
		ForceContentType(jsonContentType).
		Post(fmt.Sprintf("/%s/products.json", lang))
	if err != nil {
		return 0, unavailable(err)
	}
	if resp.IsError() {
		return 0, e.NewUpstreamError(resp.StatusCode(), string(resp.Body()))
	}

	return envelope.Product.ID, nil
}

// UpdateProduct записывает локализованный контент существующего товара.
func (c *Client) UpdateProduct(ctx context.Context, lang string, productID int64, body updateContentBody) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Put(fmt.Sprintf("/%s/products/%d.json", lang, productID))
	if err != nil {
		return unavailable(err)
	}
	if resp.IsError() {
		return e.NewUpstreamError(resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

// CreateVariant создаёт вариант товара и возвращает его ID.
func (c *Client) CreateVariant(ctx context.Context, lang string, body createVariantBody) (int64, error) {
	var envelope variantEnvelope

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&envelope).
		ForceContentType(jsonContentType).
		Post(fmt.Sprintf("/%s/variants.json", lang))
	if err != nil {
		return 0, unavailable(err)
	}
	if resp.IsError() {
		return 0, e.NewUpstreamError(resp.StatusCode(), string(resp.Body()))
	}

	return envelope.Variant.ID, nil
}

// CreateImage прикрепляет изображение к товару и возвращает его ID.
func (c *Client) CreateImage(ctx context.Context, lang string, productID int64, body createImageBody) (int64, error) {
	var envelope imageEnvelope

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&envelope).
		ForceContentType(jsonContentType).
		Post(fmt.Sprintf("/%s/products/%d/images.json", lang, productID))
	if err != nil {
		return 0, unavailable(err)
	}
	if resp.IsError() {
		return 0, e.NewUpstreamError(resp.StatusCode(), string(resp.Body()))
	}

	return envelope.ProductImage.ID, nil
}

// DownloadImage скачивает изображение по ссылке из каталога.
// К ссылке добавляется фиксированный выбор полей.
func (c *Client) DownloadImage(ctx context.Context, link string) ([]byte, string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("fields", imageFields).
		Get(link)
	if err != nil {
		return nil, "", unavailable(err)
	}
	if resp.IsError() {
		return nil, "", e.NewUpstreamError(resp.StatusCode(), string(resp.Body()))
	}

	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

// unavailable помечает сетевой сбой классом ErrShopUnavailable,
// сохраняя исходную причину для errors.Is/As.
func unavailable(err error) error {
	return fmt.Errorf("%w: %w", e.ErrShopUnavailable, err)
}
