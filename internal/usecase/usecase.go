package usecase

import (
	"context"

	"github.com/merchantops/shopsync-backend/internal/domain"
)

type SyncUC interface {
	SyncAll(ctx context.Context, force bool) []ShopSyncReport
	SyncShop(ctx context.Context, shopTLD string, force bool) (*domain.SyncRun, error)
	LastRuns(ctx context.Context) ([]domain.SyncRun, error)
}

type StatusUC interface {
	ListProducts(ctx context.Context, req *ListProductsReq) (*ListProductsRes, error)
	GetKPIs(ctx context.Context) ([]domain.DashboardKpi, error)
}

type CreationUC interface {
	CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.CreationResult, error)
}
