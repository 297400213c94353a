package usecase

import "github.com/merchantops/shopsync-backend/internal/domain"

// ShopCatalog — магазин вместе с его текущим снапшотом каталога.
type ShopCatalog struct {
	Shop     domain.Shop
	Products []domain.Product
}

// AggregateKPIs собирает агрегаты по исходному и каждому целевому магазину.
// Для целевого магазина MissingFromSource — число различных SKU исходного
// каталога со статусом not_exists против этого магазина; для исходного
// магазина поле не определено и остаётся nil.
func AggregateKPIs(source ShopCatalog, targets []ShopCatalog, statuses []domain.ProductSyncStatus) []domain.DashboardKpi {
	kpis := make([]domain.DashboardKpi, 0, len(targets)+1)
	kpis = append(kpis, shopKpi(source))

	for _, target := range targets {
		kpi := shopKpi(target)
		missing := missingFromSource(target.Shop.TLD, statuses)
		kpi.MissingFromSource = &missing
		kpis = append(kpis, kpi)
	}

	return kpis
}

// shopKpi считает счётчики магазина по его собственным вариантам по умолчанию.
func shopKpi(catalog ShopCatalog) domain.DashboardKpi {
	counts := CountDuplicates(catalog.Products)

	total := 0
	valid := 0
	for _, p := range catalog.Products {
		dv := p.DefaultVariant()
		if dv == nil {
			continue
		}
		total++
		if dv.NormalizedSKU() != "" {
			valid++
		}
	}

	duplicates := 0
	for _, n := range counts {
		if n > 1 {
			duplicates++
		}
	}

	return domain.DashboardKpi{
		ShopTLD:           catalog.Shop.TLD,
		ShopName:          catalog.Shop.Name,
		Role:              catalog.Shop.Role,
		TotalProducts:     total,
		TotalWithValidSKU: valid,
		UniqueProducts:    len(counts),
		DuplicateSKUs:     duplicates,
	}
}

// missingFromSource считает различные исходные SKU, отсутствующие в целевом магазине.
func missingFromSource(targetTLD string, statuses []domain.ProductSyncStatus) int {
	missing := make(map[string]struct{})
	for _, st := range statuses {
		if st.SKU == "" {
			continue
		}
		for _, t := range st.Targets {
			if t.ShopTLD == targetTLD && t.Status == domain.MatchNotExists {
				missing[st.SKU] = struct{}{}
				break
			}
		}
	}

	return len(missing)
}
