package lightspeed

import (
	"context"
	"time"

	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/merchantops/shopsync-backend/internal/usecase"
	"github.com/merchantops/shopsync-backend/pkg/e"
	"github.com/merchantops/shopsync-backend/pkg/jitter"
	"github.com/merchantops/shopsync-backend/pkg/logger"
)

const (
	retryBaseDelay = time.Second
	retryMaxDelay  = 30 * time.Second
)

// Gateway реализует доступ к каталогу одного магазина поверх Client.
// Постраничные выгрузки ретраятся с экспоненциальным отступлением;
// операции создания проходят без повторов.
type Gateway struct {
	shopTLD    string
	client     *Client
	pageLimit  int
	maxRetries int
	logger     logger.Logger
}

func NewGateway(shopTLD string, client *Client, pageLimit int, maxRetries int, logger logger.Logger) *Gateway {
	if pageLimit < 1 {
		pageLimit = 250
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Gateway{
		shopTLD:    shopTLD,
		client:     client,
		pageLimit:  pageLimit,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// FetchCatalog выгружает товары и варианты одного языка параллельно
// и присоединяет варианты к товарам. Варианты, ссылающиеся на
// несуществующий товар, отбрасываются и попадают в счётчик сирот.
func (g *Gateway) FetchCatalog(ctx context.Context, lang string) (*usecase.CatalogSnapshot, error) {
	const op = "lightspeed.Gateway.FetchCatalog"

	products, variants, err := g.fetchPair(ctx, lang)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	byProduct := make(map[int64][]domain.Variant)
	for _, v := range variants {
		dv := v.toDomain()
		byProduct[dv.ProductID] = append(byProduct[dv.ProductID], dv)
	}

	snap := &usecase.CatalogSnapshot{
		Language:        lang,
		Products:        make([]domain.Product, 0, len(products)),
		VariantsFetched: len(variants),
	}

	attached := 0
	for _, p := range products {
		dp := p.toDomain(lang)
		dp.Variants = byProduct[dp.ID]
		attached += len(dp.Variants)
		snap.Products = append(snap.Products, dp)
	}

	snap.OrphanVariants = len(variants) - attached
	if snap.OrphanVariants > 0 {
		g.logger.Warnf("Orphan variants dropped. shop: %s, lang: %s, count: %d",
			g.shopTLD, lang, snap.OrphanVariants)
	}

	return snap, nil
}

// FetchLocalizedContent выгружает контент не-базового языка:
// тексты товаров и заголовки вариантов, без коммерческих данных.
func (g *Gateway) FetchLocalizedContent(ctx context.Context, lang string) (*usecase.LocalizedSnapshot, error) {
	const op = "lightspeed.Gateway.FetchLocalizedContent"

	products, variants, err := g.fetchPair(ctx, lang)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	snap := &usecase.LocalizedSnapshot{
		Language:       lang,
		ProductContent: make(map[int64]domain.ProductContent, len(products)),
		VariantTitles:  make(map[int64]string, len(variants)),
	}

	for _, p := range products {
		snap.ProductContent[p.ID] = p.toDomain(lang).Content
	}
	for _, v := range variants {
		snap.VariantTitles[v.ID] = v.Title
	}

	return snap, nil
}

// FetchImage скачивает изображение по ссылке из каталога.
func (g *Gateway) FetchImage(ctx context.Context, link string) (*usecase.FetchedImage, error) {
	const op = "lightspeed.Gateway.FetchImage"

	var fetched usecase.FetchedImage
	err := g.withRetry(ctx, func() error {
		data, contentType, err := g.client.DownloadImage(ctx, link)
		if err != nil {
			return err
		}
		fetched = usecase.FetchedImage{Data: data, ContentType: contentType}

		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &fetched, nil
}

// CreateProduct создаёт товар на языке по умолчанию. Без повторов.
func (g *Gateway) CreateProduct(ctx context.Context, lang string, req *usecase.CreateShellReq) (int64, error) {
	return g.client.CreateProduct(ctx, lang, createProductBody{
		Product: createProductFields{
			Visibility:  req.Visibility,
			Title:       req.Title,
			FullTitle:   req.FullTitle,
			Description: req.Description,
			Content:     req.Content,
		},
	})
}

// UpdateProductContent записывает контент одного языка. Без повторов.
func (g *Gateway) UpdateProductContent(ctx context.Context, lang string, productID int64, content *usecase.LocalizedContent) error {
	return g.client.UpdateProduct(ctx, lang, productID, updateContentBody{
		Product: updateContentFields{
			Title:       content.Title,
			FullTitle:   content.FullTitle,
			Description: content.Description,
			Content:     content.Content,
		},
	})
}

// CreateVariant создаёт вариант товара. Без повторов.
func (g *Gateway) CreateVariant(ctx context.Context, lang string, productID int64, req *usecase.NewVariantReq) (int64, error) {
	return g.client.CreateVariant(ctx, lang, createVariantBody{
		Variant: createVariantFields{
			Product:   productID,
			SKU:       req.SKU,
			PriceExcl: req.PriceExcl.String(),
			SortOrder: req.SortOrder,
			Title:     req.Title,
		},
	})
}

// CreateImage прикрепляет изображение к товару. Без повторов.
func (g *Gateway) CreateImage(ctx context.Context, lang string, productID int64, req *usecase.NewImageReq) (int64, error) {
	return g.client.CreateImage(ctx, lang, productID, createImageBody{
		ProductImage: createImageFields{
			Src:       req.Src,
			Title:     req.Title,
			SortOrder: req.SortOrder,
		},
	})
}

// fetchPair выгружает товары и варианты языка двумя параллельными проходами.
func (g *Gateway) fetchPair(ctx context.Context, lang string) ([]wireProduct, []wireVariant, error) {
	var (
		products []wireProduct
		variants []wireVariant
	)

	errCh := make(chan error, 2)
	go func() {
		var err error
		products, err = g.fetchAllProducts(ctx, lang)
		errCh <- err
	}()
	go func() {
		var err error
		variants, err = g.fetchAllVariants(ctx, lang)
		errCh <- err
	}()

	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			return nil, nil, err
		}
	}

	return products, variants, nil
}

// fetchAllProducts выгружает все страницы товаров.
// Короткая или пустая страница завершает проход.
func (g *Gateway) fetchAllProducts(ctx context.Context, lang string) ([]wireProduct, error) {
	var all []wireProduct
	for page := 1; ; page++ {
		var batch []wireProduct
		err := g.withRetry(ctx, func() error {
			var err error
			batch, err = g.client.FetchProductsPage(ctx, lang, page, g.pageLimit)

			return err
		})
		if err != nil {
			return nil, err
		}

		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		if len(batch) < g.pageLimit {
			break
		}
	}

	return all, nil
}

// fetchAllVariants выгружает все страницы вариантов.
func (g *Gateway) fetchAllVariants(ctx context.Context, lang string) ([]wireVariant, error) {
	var all []wireVariant
	for page := 1; ; page++ {
		var batch []wireVariant
		err := g.withRetry(ctx, func() error {
			var err error
			batch, err = g.client.FetchVariantsPage(ctx, lang, page, g.pageLimit)

			return err
		})
		if err != nil {
			return nil, err
		}

		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		if len(batch) < g.pageLimit {
			break
		}
	}

	return all, nil
}

// withRetry повторяет запрос с экспоненциальным отступлением и джиттером.
func (g *Gateway) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == g.maxRetries-1 {
			break
		}

		delay := jitter.ExponentialBackoff(retryBaseDelay, retryMaxDelay, attempt, jitter.DefaultJitter)
		g.logger.Warnf("Retrying shop api call. shop: %s, attempt: %d/%d, delay: %s, error: %v",
			g.shopTLD, attempt+1, g.maxRetries, delay, err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return err
}
