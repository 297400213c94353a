package usecase

import (
	"sort"
	"strings"

	"github.com/merchantops/shopsync-backend/internal/domain"
)

// IndexEntry — одно вхождение SKU в каталоге целевого магазина.
type IndexEntry struct {
	ProductID        int64
	DefaultVariantID int64
	VariantCount     int
}

// CatalogIndex отображает SKU на товары целевого магазина, содержащие его.
// Строится по ВСЕМ вариантам каталога (не только по вариантам по умолчанию):
// товар мог быть создан в целевом магазине с другой структурой вариантов.
// Чистая функция снапшота, строится один раз на магазин и не мутируется.
type CatalogIndex map[string][]IndexEntry

// BuildCatalogIndex строит SKU-индекс по снапшоту каталога целевого магазина.
func BuildCatalogIndex(products []domain.Product) CatalogIndex {
	idx := make(CatalogIndex)
	for _, p := range products {
		defaultVariantID := int64(0)
		if dv := p.DefaultVariant(); dv != nil {
			defaultVariantID = dv.ID
		} else if len(p.Variants) > 0 {
			defaultVariantID = p.Variants[0].ID
		}

		entry := IndexEntry{
			ProductID:        p.ID,
			DefaultVariantID: defaultVariantID,
			VariantCount:     len(p.Variants),
		}

		for _, v := range p.Variants {
			sku := v.NormalizedSKU()
			if sku == "" {
				continue
			}
			idx[sku] = append(idx[sku], entry)
		}
	}

	return idx
}

// MatchResult — классификация одного исходного товара относительно
// одного целевого магазина. Списки — параллельные массивы длины MatchCount.
type MatchResult struct {
	Status            domain.MatchStatus
	MatchCount        int
	ProductIDs        []int64
	DefaultVariantIDs []int64
	VariantCounts     []int
}

// Classify сопоставляет исходный товар с индексом целевого магазина.
// Совпадение по SKU варианта по умолчанию авторитетно; запасные SKU
// проверяются в порядке сортировки вариантов и только при нуле совпадений
// по основному SKU. Совпадения дедуплицируются по ID товара и
// упорядочиваются по его возрастанию для детерминизма.
func Classify(defaultSKU string, fallbackSKUs []string, idx CatalogIndex) MatchResult {
	// Пустой основной SKU — это товар без ключа сопоставления: not_exists
	// по определению, запасные SKU не проверяются.
	if strings.TrimSpace(defaultSKU) == "" {
		return MatchResult{Status: domain.MatchNotExists}
	}

	entries := lookup(defaultSKU, idx)
	if len(entries) == 0 {
		for _, sku := range fallbackSKUs {
			if entries = lookup(sku, idx); len(entries) > 0 {
				break
			}
		}
	}

	if len(entries) == 0 {
		return MatchResult{Status: domain.MatchNotExists}
	}

	byProduct := make(map[int64]IndexEntry, len(entries))
	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		if _, seen := byProduct[entry.ProductID]; seen {
			continue
		}
		byProduct[entry.ProductID] = entry
		ids = append(ids, entry.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := MatchResult{
		MatchCount:        len(ids),
		ProductIDs:        ids,
		DefaultVariantIDs: make([]int64, 0, len(ids)),
		VariantCounts:     make([]int, 0, len(ids)),
	}
	for _, id := range ids {
		entry := byProduct[id]
		result.DefaultVariantIDs = append(result.DefaultVariantIDs, entry.DefaultVariantID)
		result.VariantCounts = append(result.VariantCounts, entry.VariantCount)
	}

	if result.MatchCount == 1 {
		result.Status = domain.MatchExistsSingle
	} else {
		result.Status = domain.MatchExistsMultiple
	}

	return result
}

// lookup ищет SKU в индексе. Пустой SKU (в том числе из одних пробелов)
// не совпадает ни с чем.
func lookup(sku string, idx CatalogIndex) []IndexEntry {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil
	}

	return idx[sku]
}
