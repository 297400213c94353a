package usecase

import "github.com/merchantops/shopsync-backend/internal/domain"

// CountDuplicates считает, сколько вариантов по умолчанию исходного каталога
// делят каждый непустой SKU. Пустые SKU исключаются целиком. Для любого
// непустого SKU счётчик не меньше единицы (товар считает сам себя).
// Чистая функция снапшота, целевые магазины не участвуют.
func CountDuplicates(products []domain.Product) map[string]int {
	counts := make(map[string]int)
	for _, p := range products {
		dv := p.DefaultVariant()
		if dv == nil {
			continue
		}

		if sku := dv.NormalizedSKU(); sku != "" {
			counts[sku]++
		}
	}

	return counts
}
