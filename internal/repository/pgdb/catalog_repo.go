package pgdb

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/merchantops/shopsync-backend/internal/usecase"
	"github.com/merchantops/shopsync-backend/pkg/e"
	"github.com/merchantops/shopsync-backend/pkg/tr"
	"github.com/shopspring/decimal"
)

// CatalogRepo хранит снапшоты каталогов магазинов в PostgreSQL.
// Контент базового языка лежит прямо в строках товаров и вариантов;
// контент остальных языков — в отдельных таблицах.
type CatalogRepo struct {
	pool *pgxpool.Pool
}

func NewCatalogRepo(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

// ApplySnapshot применяет снапшот базового языка: upsert всех товаров
// и вариантов плюс удаление строк, исчезнувших из выгрузки.
// Выполняется внутри транзакции из контекста.
func (c *CatalogRepo) ApplySnapshot(ctx context.Context, shopTLD string, snap *usecase.CatalogSnapshot) (*usecase.ApplySnapshotRes, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	upsertProduct := `
		INSERT INTO products (
			shop_tld, id, visibility, image, url, title, fulltitle,
			description, content, created_at, updated_at, synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (shop_tld, id)
		DO UPDATE SET
			visibility = EXCLUDED.visibility,
			image = EXCLUDED.image,
			url = EXCLUDED.url,
			title = EXCLUDED.title,
			fulltitle = EXCLUDED.fulltitle,
			description = EXCLUDED.description,
			content = EXCLUDED.content,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			synced_at = NOW();
	`

	upsertVariant := `
		INSERT INTO variants (
			shop_tld, id, product_id, sku, is_default, sort_order,
			price_excl, title, image, synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (shop_tld, id)
		DO UPDATE SET
			product_id = EXCLUDED.product_id,
			sku = EXCLUDED.sku,
			is_default = EXCLUDED.is_default,
			sort_order = EXCLUDED.sort_order,
			price_excl = EXCLUDED.price_excl,
			title = EXCLUDED.title,
			image = EXCLUDED.image,
			synced_at = NOW();
	`

	productIDs := make([]int64, 0, len(snap.Products))
	variantIDs := make([]int64, 0, snap.VariantsFetched)

	for _, p := range snap.Products {
		image, err := imageToJSON(p.Image)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		_, err = tx.Exec(ctx, upsertProduct,
			shopTLD, p.ID, p.Visibility, image,
			p.Content.URL, p.Content.Title, p.Content.FullTitle,
			p.Content.Description, p.Content.Content,
			p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		productIDs = append(productIDs, p.ID)

		for _, v := range p.Variants {
			image, err := imageToJSON(v.Image)
			if err != nil {
				return nil, e.Wrap(whereami.WhereAmI(), err)
			}

			_, err = tx.Exec(ctx, upsertVariant,
				shopTLD, v.ID, p.ID, v.SKU, v.IsDefault, v.SortOrder,
				v.PriceExcl, v.Title, image,
			)
			if err != nil {
				return nil, e.Wrap(whereami.WhereAmI(), err)
			}
			variantIDs = append(variantIDs, v.ID)
		}
	}

	// Удаление исчезнувших строк. Варианты первыми, чтобы каскад товаров
	// не смешивался со счётчиком вариантов.
	res := &usecase.ApplySnapshotRes{}

	deleteVariants := `
		DELETE FROM variants
		WHERE shop_tld = $1 AND NOT (id = ANY($2));
	`
	tag, err := tx.Exec(ctx, deleteVariants, shopTLD, variantIDs)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	res.VariantsDeleted = int(tag.RowsAffected())

	deleteProducts := `
		DELETE FROM products
		WHERE shop_tld = $1 AND NOT (id = ANY($2));
	`
	tag, err = tx.Exec(ctx, deleteProducts, shopTLD, productIDs)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	res.ProductsDeleted = int(tag.RowsAffected())

	return res, nil
}

// UpsertLocalizedContent применяет контент не-базового языка. Строки,
// ссылающиеся на неизвестные базовому языку ID, отбрасываются и считаются.
func (c *CatalogRepo) UpsertLocalizedContent(ctx context.Context, shopTLD string, snap *usecase.LocalizedSnapshot,
	validProducts map[int64]struct{}, validVariants map[int64]struct{}) (*usecase.UpsertLocalizedRes, error) {

	upsertContent := `
		INSERT INTO product_content (
			shop_tld, product_id, language, url, title, fulltitle, description, content
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (shop_tld, product_id, language)
		DO UPDATE SET
			url = EXCLUDED.url,
			title = EXCLUDED.title,
			fulltitle = EXCLUDED.fulltitle,
			description = EXCLUDED.description,
			content = EXCLUDED.content;
	`

	upsertVariantContent := `
		INSERT INTO variant_content (shop_tld, variant_id, language, title)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (shop_tld, variant_id, language)
		DO UPDATE SET title = EXCLUDED.title;
	`

	res := &usecase.UpsertLocalizedRes{}

	for productID, content := range snap.ProductContent {
		if _, ok := validProducts[productID]; !ok {
			res.ProductsFiltered++
			continue
		}

		_, err := c.pool.Exec(ctx, upsertContent,
			shopTLD, productID, snap.Language,
			content.URL, content.Title, content.FullTitle,
			content.Description, content.Content,
		)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	for variantID, title := range snap.VariantTitles {
		if _, ok := validVariants[variantID]; !ok {
			res.VariantsFiltered++
			continue
		}

		_, err := c.pool.Exec(ctx, upsertVariantContent, shopTLD, variantID, snap.Language, title)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return res, nil
}

// GetCatalog читает снапшот магазина: товары с контентом базового языка
// и их варианты в порядке сортировки.
func (c *CatalogRepo) GetCatalog(ctx context.Context, shopTLD string) ([]domain.Product, error) {
	productsQuery := `
		SELECT id, visibility, image, url, title, fulltitle, description, content,
		       created_at, updated_at
		FROM products
		WHERE shop_tld = $1
		ORDER BY id;
	`

	rows, err := c.pool.Query(ctx, productsQuery, shopTLD)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	byID := make(map[int64]int)
	for rows.Next() {
		var (
			p     domain.Product
			image []byte
		)
		err := rows.Scan(
			&p.ID, &p.Visibility, &image,
			&p.Content.URL, &p.Content.Title, &p.Content.FullTitle,
			&p.Content.Description, &p.Content.Content,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		if p.Image, err = imageFromJSON(image); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		byID[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	variantsQuery := `
		SELECT id, product_id, sku, is_default, sort_order, price_excl::text, title, image
		FROM variants
		WHERE shop_tld = $1
		ORDER BY product_id, sort_order, id;
	`

	vRows, err := c.pool.Query(ctx, variantsQuery, shopTLD)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer vRows.Close()

	for vRows.Next() {
		var (
			v     domain.Variant
			price string
			image []byte
		)
		err := vRows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.IsDefault, &v.SortOrder, &price, &v.Title, &image)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		if v.PriceExcl, err = decimal.NewFromString(price); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		if v.Image, err = imageFromJSON(image); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		if idx, ok := byID[v.ProductID]; ok {
			products[idx].Variants = append(products[idx].Variants, v)
		}
	}
	if err := vRows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

func imageToJSON(img *domain.Image) ([]byte, error) {
	if img == nil {
		return nil, nil
	}

	return json.Marshal(img)
}

func imageFromJSON(data []byte) (*domain.Image, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var img domain.Image
	if err := json.Unmarshal(data, &img); err != nil {
		return nil, err
	}

	return &img, nil
}
