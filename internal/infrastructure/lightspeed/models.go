package lightspeed

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Поля, запрашиваемые у API магазина. Фиксированный набор уменьшает
// размер страниц и делает формат ответа предсказуемым.
const (
	productFields = "id,visibility,url,title,fulltitle,description,content,image,createdAt,updatedAt"
	variantFields = "id,isDefault,sku,priceExcl,sortOrder,title,image,product"
	imageFields   = "title,thumb,src"
)

type productsEnvelope struct {
	Products []wireProduct `json:"products"`
}

type variantsEnvelope struct {
	Variants []wireVariant `json:"variants"`
}

type wireProduct struct {
	ID          int64      `json:"id"`
	Visibility  string     `json:"visibility"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	FullTitle   string     `json:"fulltitle"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Image       imageField `json:"image"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

type wireVariant struct {
	ID        int64           `json:"id"`
	IsDefault bool            `json:"isDefault"`
	SKU       string          `json:"sku"`
	PriceExcl decimal.Decimal `json:"priceExcl"`
	SortOrder int             `json:"sortOrder"`
	Title     string          `json:"title"`
	Image     imageField      `json:"image"`
	Product   resourceRef     `json:"product"`
}

// resourceRef — ссылка на связанный ресурс: {"resource": {"id": ...}}.
type resourceRef struct {
	Resource struct {
		ID int64 `json:"id"`
	} `json:"resource"`
}

// imageField нормализует поле image: API возвращает false вместо
// отсутствующего изображения, иначе объект с лишними полями.
type imageField struct {
	Image *domain.Image
}

func (f *imageField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("false")) || bytes.Equal(data, []byte("null")) {
		f.Image = nil
		return nil
	}

	var img domain.Image
	if err := json.Unmarshal(data, &img); err != nil {
		return err
	}
	f.Image = &img

	return nil
}

func (p wireProduct) toDomain(lang string) domain.Product {
	return domain.Product{
		ID:         p.ID,
		Visibility: p.Visibility,
		Image:      p.Image.Image,
		Content: domain.ProductContent{
			Language:    lang,
			URL:         p.URL,
			Title:       p.Title,
			FullTitle:   p.FullTitle,
			Description: p.Description,
			Content:     p.Content,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (v wireVariant) toDomain() domain.Variant {
	return domain.Variant{
		ID:        v.ID,
		ProductID: v.Product.Resource.ID,
		SKU:       v.SKU,
		IsDefault: v.IsDefault,
		SortOrder: v.SortOrder,
		PriceExcl: v.PriceExcl,
		Title:     v.Title,
		Image:     v.Image.Image,
	}
}

// Тела запросов создания. API ожидает полезную нагрузку под корневым ключом.

type createProductBody struct {
	Product createProductFields `json:"product"`
}

type createProductFields struct {
	Visibility  string `json:"visibility"`
	Title       string `json:"title"`
	FullTitle   string `json:"fulltitle,omitempty"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
}

type updateContentBody struct {
	Product updateContentFields `json:"product"`
}

type updateContentFields struct {
	Title       string `json:"title"`
	FullTitle   string `json:"fulltitle,omitempty"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
}

type createVariantBody struct {
	Variant createVariantFields `json:"variant"`
}

type createVariantFields struct {
	Product   int64  `json:"product"`
	SKU       string `json:"sku"`
	PriceExcl string `json:"priceExcl"`
	SortOrder int    `json:"sortOrder"`
	Title     string `json:"title"`
}

type createImageBody struct {
	ProductImage createImageFields `json:"productImage"`
}

type createImageFields struct {
	Src       string `json:"src"`
	Title     string `json:"title,omitempty"`
	SortOrder int    `json:"sortOrder"`
}

type productEnvelope struct {
	Product wireProduct `json:"product"`
}

type variantEnvelope struct {
	Variant wireVariant `json:"variant"`
}

type imageEnvelope struct {
	ProductImage struct {
		ID int64 `json:"id"`
	} `json:"productImage"`
}
