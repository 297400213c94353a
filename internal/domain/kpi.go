package domain

// DashboardKpi — агрегат по одному магазину.
// Инвариант: UniqueProducts <= TotalWithValidSKU <= TotalProducts.
// MissingFromSource равен nil для исходного магазина.
type DashboardKpi struct {
	ShopTLD           string
	ShopName          string
	Role              ShopRole
	TotalProducts     int
	TotalWithValidSKU int
	UniqueProducts    int
	DuplicateSKUs     int
	MissingFromSource *int
}
