package usecase

import (
	"context"
	"testing"

	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/merchantops/shopsync-backend/pkg/e"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogRepo struct {
	catalogs map[string][]domain.Product
	calls    int
}

func (r *fakeCatalogRepo) ApplySnapshot(context.Context, string, *CatalogSnapshot) (*ApplySnapshotRes, error) {
	return &ApplySnapshotRes{}, nil
}

func (r *fakeCatalogRepo) UpsertLocalizedContent(context.Context, string, *LocalizedSnapshot,
	map[int64]struct{}, map[int64]struct{}) (*UpsertLocalizedRes, error) {
	return &UpsertLocalizedRes{}, nil
}

func (r *fakeCatalogRepo) GetCatalog(_ context.Context, shopTLD string) ([]domain.Product, error) {
	r.calls++

	return r.catalogs[shopTLD], nil
}

type fakeKpiCache struct {
	stored []domain.DashboardKpi
}

func (c *fakeKpiCache) GetKPIs(context.Context) ([]domain.DashboardKpi, error) {
	return c.stored, nil
}

func (c *fakeKpiCache) SetKPIs(_ context.Context, kpis []domain.DashboardKpi) error {
	return nil
}

func (c *fakeKpiCache) DeleteKPIs(context.Context) error {
	c.stored = nil

	return nil
}

func statusProduct(id int64, sku string, title string, price int64) domain.Product {
	return domain.Product{
		ID:      id,
		Content: domain.ProductContent{Title: title},
		Variants: []domain.Variant{
			{ID: id * 10, ProductID: id, SKU: sku, IsDefault: true, Title: title, PriceExcl: decimal.NewFromInt(price)},
		},
	}
}

func newStatusUC(repo *fakeCatalogRepo, cache *fakeKpiCache) *StatusUseCase {
	source := domain.Shop{TLD: "nl", Name: "Main", Role: domain.RoleSource}
	targets := []domain.Shop{
		{TLD: "de", Name: "Germany", Role: domain.RoleTarget},
		{TLD: "be", Name: "Belgium", Role: domain.RoleTarget},
	}

	return NewStatusUC(source, targets, repo, cache, nopLogger{})
}

func statusFixtureRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{catalogs: map[string][]domain.Product{
		"nl": {
			statusProduct(1, "APPLE", "Apple", 10),
			statusProduct(2, "BANANA", "Banana", 5),
			statusProduct(3, "CHERRY", "Cherry", 20),
			{ID: 4, Variants: []domain.Variant{{ID: 40, ProductID: 4, SKU: "NODEF"}}},
		},
		"de": {
			statusProduct(10, "APPLE", "Apfel", 10),
			statusProduct(11, "BANANA", "Banane", 5),
			statusProduct(12, "BANANA", "Banane alt", 5),
		},
		"be": {},
	}}
}

func TestListProducts_StatusesPerTarget(t *testing.T) {
	uc := newStatusUC(statusFixtureRepo(), &fakeKpiCache{})

	res, err := uc.ListProducts(context.Background(), &ListProductsReq{})
	require.NoError(t, err)

	// товар без варианта по умолчанию не попадает в сверку
	require.Len(t, res.Items, 3)
	assert.Equal(t, 3, res.Total)

	apple := res.Items[0]
	require.Equal(t, "APPLE", apple.SKU)
	require.Len(t, apple.Targets, 2)
	assert.Equal(t, domain.MatchExistsSingle, apple.Targets[0].Status)
	assert.Equal(t, []int64{10}, apple.Targets[0].ProductIDs)
	assert.Equal(t, domain.MatchNotExists, apple.Targets[1].Status)

	banana := res.Items[1]
	require.Equal(t, "BANANA", banana.SKU)
	assert.Equal(t, domain.MatchExistsMultiple, banana.Targets[0].Status)
	assert.Equal(t, 2, banana.Targets[0].MatchCount)
	assert.Equal(t, []int64{11, 12}, banana.Targets[0].ProductIDs)
}

func TestListProducts_SearchFilter(t *testing.T) {
	uc := newStatusUC(statusFixtureRepo(), &fakeKpiCache{})

	res, err := uc.ListProducts(context.Background(), &ListProductsReq{Search: "che"})
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	assert.Equal(t, "CHERRY", res.Items[0].SKU)
	assert.Equal(t, 1, res.Total)
}

func TestListProducts_StatusFilterScopedToTarget(t *testing.T) {
	uc := newStatusUC(statusFixtureRepo(), &fakeKpiCache{})

	// против любого магазина: в be нет ничего, поэтому not_exists дают все три
	res, err := uc.ListProducts(context.Background(), &ListProductsReq{Status: "not_exists"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)

	// против de отсутствует только CHERRY
	res, err = uc.ListProducts(context.Background(), &ListProductsReq{Status: "not_exists", TargetTLD: "de"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "CHERRY", res.Items[0].SKU)
}

func TestListProducts_SortAndPaginate(t *testing.T) {
	uc := newStatusUC(statusFixtureRepo(), &fakeKpiCache{})

	res, err := uc.ListProducts(context.Background(), &ListProductsReq{Sort: "price", Order: "desc"})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "CHERRY", res.Items[0].SKU)
	assert.Equal(t, "APPLE", res.Items[1].SKU)
	assert.Equal(t, "BANANA", res.Items[2].SKU)

	// вторая страница при limit=2
	res, err = uc.ListProducts(context.Background(), &ListProductsReq{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "CHERRY", res.Items[0].SKU)

	// страница за пределами данных пуста, но не ошибка
	res, err = uc.ListProducts(context.Background(), &ListProductsReq{Page: 9, Limit: 50})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 3, res.Total)
}

func TestListProducts_Validation(t *testing.T) {
	uc := newStatusUC(statusFixtureRepo(), &fakeKpiCache{})

	tests := []struct {
		name    string
		req     *ListProductsReq
		wantErr error
	}{
		{"negative page", &ListProductsReq{Page: -1}, e.ErrInvalidPagination},
		{"limit above cap", &ListProductsReq{Limit: 1000}, e.ErrInvalidPagination},
		{"unknown sort key", &ListProductsReq{Sort: "weight"}, e.ErrInvalidSortKey},
		{"unknown order", &ListProductsReq{Order: "sideways"}, e.ErrInvalidSortKey},
		{"unknown status", &ListProductsReq{Status: "maybe"}, e.ErrInvalidStatus},
		{"unknown target", &ListProductsReq{TargetTLD: "fr"}, e.ErrUnknownShop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.ListProducts(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetKPIs_CacheHit(t *testing.T) {
	repo := statusFixtureRepo()
	cache := &fakeKpiCache{stored: []domain.DashboardKpi{{ShopTLD: "nl", TotalProducts: 42}}}
	uc := newStatusUC(repo, cache)

	kpis, err := uc.GetKPIs(context.Background())
	require.NoError(t, err)

	require.Len(t, kpis, 1)
	assert.Equal(t, 42, kpis[0].TotalProducts)
	// попадание в кэш не трогает хранилище
	assert.Zero(t, repo.calls)
}

func TestGetKPIs_CacheMissComputes(t *testing.T) {
	uc := newStatusUC(statusFixtureRepo(), &fakeKpiCache{})

	kpis, err := uc.GetKPIs(context.Background())
	require.NoError(t, err)

	require.Len(t, kpis, 3)
	assert.Equal(t, "nl", kpis[0].ShopTLD)
	assert.Nil(t, kpis[0].MissingFromSource)

	for _, kpi := range kpis[1:] {
		require.NotNil(t, kpi.MissingFromSource)
	}
	// в de отсутствует только CHERRY, в be все три SKU
	assert.Equal(t, 1, *kpis[1].MissingFromSource)
	assert.Equal(t, 3, *kpis[2].MissingFromSource)
}
