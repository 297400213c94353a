package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Image — нормализованное изображение магазина: только title, thumb, src.
type Image struct {
	Title string `json:"title"`
	Thumb string `json:"thumb"`
	Src   string `json:"src"`
}

// ProductContent — локализованный контент товара для одного языка.
type ProductContent struct {
	Language    string
	URL         string
	Title       string
	FullTitle   string
	Description string
	Content     string
}

// Variant — вариант товара в снапшоте каталога.
// SKU не уникален в пределах магазина, дубликаты ожидаемы.
type Variant struct {
	ID        int64
	ProductID int64
	SKU       string
	IsDefault bool
	SortOrder int
	PriceExcl decimal.Decimal
	Title     string
	Image     *Image
}

// NormalizedSKU возвращает SKU без окружающих пробелов.
// SKU из одних пробелов считается пустым и никогда не матчится.
func (v Variant) NormalizedSKU() string {
	return strings.TrimSpace(v.SKU)
}

// Product — товар в снапшоте каталога одного магазина
// вместе с вариантами и контентом базового языка.
type Product struct {
	ID         int64
	Visibility string
	Image      *Image
	Content    ProductContent
	CreatedAt  *time.Time
	UpdatedAt  *time.Time
	Variants   []Variant
}

// DefaultVariant возвращает вариант по умолчанию или nil, если его нет.
func (p Product) DefaultVariant() *Variant {
	for i := range p.Variants {
		if p.Variants[i].IsDefault {
			return &p.Variants[i]
		}
	}

	return nil
}

// NonDefaultSKUs возвращает непустые SKU остальных вариантов в порядке сортировки.
func (p Product) NonDefaultSKUs() []string {
	variants := make([]Variant, len(p.Variants))
	copy(variants, p.Variants)
	sort.SliceStable(variants, func(i, j int) bool { return variants[i].SortOrder < variants[j].SortOrder })

	skus := make([]string, 0, len(variants))
	for _, v := range variants {
		if v.IsDefault {
			continue
		}
		if sku := v.NormalizedSKU(); sku != "" {
			skus = append(skus, sku)
		}
	}

	return skus
}
