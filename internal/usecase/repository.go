package usecase

import (
	"context"

	"github.com/merchantops/shopsync-backend/internal/domain"
)

type CatalogRepository interface {
	// ApplySnapshot выполняется внутри транзакции из контекста.
	ApplySnapshot(ctx context.Context, shopTLD string, snap *CatalogSnapshot) (*ApplySnapshotRes, error)
	UpsertLocalizedContent(ctx context.Context, shopTLD string, snap *LocalizedSnapshot,
		validProducts map[int64]struct{}, validVariants map[int64]struct{}) (*UpsertLocalizedRes, error)
	GetCatalog(ctx context.Context, shopTLD string) ([]domain.Product, error)
}

type SyncRunRepository interface {
	Start(ctx context.Context, shopTLD string, force bool) (*domain.SyncRun, error)
	// Seal выполняется внутри транзакции из контекста.
	Seal(ctx context.Context, runID int64, status domain.RunStatus, errMsg string, m domain.SyncMetrics) error
	Last(ctx context.Context) ([]domain.SyncRun, error)
}

type OutboxRepository interface {
	// Create выполняется внутри транзакции из контекста.
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.StoredImage) (string, error)
	Delete(ctx context.Context, key string) error
}

type KpiCache interface {
	// GetKPIs возвращает nil без ошибки при промахе кэша.
	GetKPIs(ctx context.Context) ([]domain.DashboardKpi, error)
	SetKPIs(ctx context.Context, kpis []domain.DashboardKpi) error
	DeleteKPIs(ctx context.Context) error
}
