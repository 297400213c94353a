package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchStatus — классификация товара относительно одного целевого магазина.
type MatchStatus string

const (
	MatchNotExists      MatchStatus = "not_exists"
	MatchExistsSingle   MatchStatus = "exists_single"
	MatchExistsMultiple MatchStatus = "exists_multiple"
)

// TargetMatch — результат сопоставления одного исходного товара
// с каталогом одного целевого магазина. Списки идентификаторов — параллельные
// массивы длины MatchCount (nil при MatchCount == 0), отсортированные по
// возрастанию ID товара.
type TargetMatch struct {
	ShopTLD           string
	Status            MatchStatus
	MatchCount        int
	ProductIDs        []int64
	DefaultVariantIDs []int64
	VariantCounts     []int
}

// ProductSyncStatus — запись сверки по одному исходному товару (ключ —
// его вариант по умолчанию). Вычисляется заново при каждом запросе из
// текущих снапшотов каталогов, никогда не обновляется частично.
type ProductSyncStatus struct {
	ProductID        int64
	DefaultVariantID int64
	SKU              string
	VariantTitle     string
	ProductTitle     string
	PriceExcl        decimal.Decimal
	Image            *Image
	VariantCount     int
	DuplicateCount   int
	HasDuplicates    bool
	CreatedAt        *time.Time
	UpdatedAt        *time.Time
	Targets          []TargetMatch
}
