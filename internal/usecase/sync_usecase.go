package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/merchantops/shopsync-backend/pkg/e"
	"github.com/merchantops/shopsync-backend/pkg/logger"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SyncUseCase реализует выгрузку каталогов магазинов в локальное хранилище.
// Один проход обслуживает один магазин: базовый язык целиком, остальные
// языки только контентом, запись о проходе в sync_runs и событие
// о завершении через транзакционный outbox.
type SyncUseCase struct {
	shops       []domain.Shop
	gateways    map[string]ShopGateway
	catalogRepo CatalogRepository
	runRepo     SyncRunRepository
	outboxRepo  OutboxRepository
	cacheRepo   KpiCache
	mirror      ImageMirror
	dbPool      transaction.Transactional
	maxParallel int
	logger      logger.Logger
}

func NewSyncUC(
	shops []domain.Shop,
	gateways map[string]ShopGateway,
	catalogRepo CatalogRepository,
	runRepo SyncRunRepository,
	outboxRepo OutboxRepository,
	cacheRepo KpiCache,
	mirror ImageMirror,
	dbPool transaction.Transactional,
	maxParallel int,
	logger logger.Logger,
) *SyncUseCase {
	if maxParallel < 1 {
		maxParallel = 1
	}

	return &SyncUseCase{
		shops:       shops,
		gateways:    gateways,
		catalogRepo: catalogRepo,
		runRepo:     runRepo,
		outboxRepo:  outboxRepo,
		cacheRepo:   cacheRepo,
		mirror:      mirror,
		dbPool:      dbPool,
		maxParallel: maxParallel,
		logger:      logger,
	}
}

// SyncAll синхронизирует все магазины параллельно с ограничением
// одновременности. Сбой одного магазина не прерывает остальные;
// итог каждого магазина попадает в свой отчёт.
func (s *SyncUseCase) SyncAll(ctx context.Context, force bool) []ShopSyncReport {
	var (
		wg       sync.WaitGroup
		sem      = make(chan struct{}, s.maxParallel)
		resultCh = make(chan ShopSyncReport, len(s.shops))
	)

	for _, shop := range s.shops {
		if ctx.Err() != nil {
			resultCh <- ShopSyncReport{ShopTLD: shop.TLD, Err: ctx.Err()}
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(tld string) {
			defer wg.Done()
			defer func() { <-sem }()

			report := ShopSyncReport{ShopTLD: tld}
			run, err := s.SyncShop(ctx, tld, force)
			if err != nil {
				report.Err = err
			} else {
				report.RunID = run.ID
			}
			resultCh <- report
		}(shop.TLD)
	}

	wg.Wait()
	close(resultCh)

	reports := make([]ShopSyncReport, 0, len(s.shops))
	for report := range resultCh {
		reports = append(reports, report)
	}

	return reports
}

// SyncShop выполняет один проход синхронизации магазина. Проход открывается
// записью в статусе running; вторая попытка для того же магазина вернёт
// ErrSyncAlreadyRunning, пока первая не закрыта (force снимает зависший running).
func (s *SyncUseCase) SyncShop(ctx context.Context, shopTLD string, force bool) (*domain.SyncRun, error) {
	const op = "SyncUseCase.SyncShop"

	shop, ok := s.shopByTLD(shopTLD)
	if !ok {
		return nil, e.Wrap(op, e.ErrUnknownShop)
	}

	run, err := s.runRepo.Start(ctx, shopTLD, force)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	s.logger.Infof("Sync run started. shop: %s, run: %d, force: %t", shopTLD, run.ID, force)

	metrics, err := s.syncCatalog(ctx, shop)
	if err != nil {
		s.logger.Errorf(err, "Sync run failed. shop: %s, run: %d", shopTLD, run.ID)
		if sealErr := s.sealRun(ctx, run, domain.RunError, err.Error(), metrics); sealErr != nil {
			s.logger.Errorf(sealErr, "Failed to seal errored sync run. shop: %s, run: %d", shopTLD, run.ID)
		}

		return nil, e.Wrap(op, err)
	}

	if err = s.sealRun(ctx, run, domain.RunSuccess, "", metrics); err != nil {
		return nil, e.Wrap(op, err)
	}

	s.logger.Infof("Sync run completed. shop: %s, run: %d, products: %d, variants: %d",
		shopTLD, run.ID, metrics.ProductsSynced, metrics.VariantsSynced)

	run.Status = domain.RunSuccess
	run.Metrics = metrics

	return run, nil
}

// LastRuns возвращает последний проход каждого магазина.
func (s *SyncUseCase) LastRuns(ctx context.Context) ([]domain.SyncRun, error) {
	const op = "SyncUseCase.LastRuns"

	runs, err := s.runRepo.Last(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return runs, nil
}

// syncCatalog выгружает каталог магазина и применяет его к хранилищу.
// Метрики возвращаются и при ошибке: частично накопленные счётчики
// попадают в запись о неуспешном проходе.
func (s *SyncUseCase) syncCatalog(ctx context.Context, shop domain.Shop) (domain.SyncMetrics, error) {
	var metrics domain.SyncMetrics

	gateway, ok := s.gateways[shop.TLD]
	if !ok {
		return metrics, e.ErrShopCredsMissing
	}

	baseLang := shop.DefaultLanguage()

	// Базовый язык: товары и варианты целиком.
	snap, err := gateway.FetchCatalog(ctx, baseLang)
	if err != nil {
		return metrics, err
	}

	metrics.ProductsFetched = len(snap.Products)
	metrics.VariantsFetched = snap.VariantsFetched
	metrics.VariantsFiltered = snap.OrphanVariants

	applyRes, err := s.applySnapshot(ctx, shop.TLD, snap)
	if err != nil {
		return metrics, err
	}

	metrics.ProductsSynced = len(snap.Products)
	metrics.VariantsSynced = snap.VariantsFetched - snap.OrphanVariants
	metrics.ProductsDeleted = applyRes.ProductsDeleted
	metrics.VariantsDeleted = applyRes.VariantsDeleted

	// Остальные языки: только контент, отфильтрованный по ID базового языка.
	validProducts, validVariants := validIDs(snap.Products)
	for _, lang := range shop.ActiveLanguages() {
		if lang == baseLang {
			continue
		}
		if err = ctx.Err(); err != nil {
			return metrics, err
		}

		locSnap, err := gateway.FetchLocalizedContent(ctx, lang)
		if err != nil {
			return metrics, err
		}

		locRes, err := s.catalogRepo.UpsertLocalizedContent(ctx, shop.TLD, locSnap, validProducts, validVariants)
		if err != nil {
			return metrics, err
		}

		metrics.VariantsFiltered += locRes.VariantsFiltered
	}

	// Зеркалирование витринных изображений — неблокирующее, сбои не
	// влияют на итог прохода.
	if scheduled := s.mirror.MirrorImages(ctx, NewMirrorImagesReq(shop.TLD, mirrorItems(snap.Products))); scheduled > 0 {
		s.logger.Debugf("Scheduled image mirroring. shop: %s, images: %d", shop.TLD, scheduled)
	}

	return metrics, nil
}

// applySnapshot применяет снапшот базового языка одной транзакцией:
// upsert товаров и вариантов плюс удаление исчезнувших из выгрузки.
func (s *SyncUseCase) applySnapshot(ctx context.Context, shopTLD string, snap *CatalogSnapshot) (*ApplySnapshotRes, error) {
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, s.dbPool)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	res, err := s.catalogRepo.ApplySnapshot(ctx, shopTLD, snap)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	return res, nil
}

// sealRun закрывает проход и в той же транзакции кладёт событие
// о завершении в outbox. Кэш агрегатов сбрасывается после коммита.
func (s *SyncUseCase) sealRun(ctx context.Context, run *domain.SyncRun, status domain.RunStatus, errMsg string, metrics domain.SyncMetrics) error {
	eventID := uuid.NewString()
	payload, err := json.Marshal(SyncRunEvent{
		EventID:     eventID,
		ShopTLD:     run.ShopTLD,
		RunID:       run.ID,
		Status:      status,
		StartedAt:   run.StartedAt,
		CompletedAt: time.Now().UTC(),
		Error:       errMsg,
		Metrics:     metrics,
	})
	if err != nil {
		return err
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, s.dbPool)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	if err = s.runRepo.Seal(ctx, run.ID, status, errMsg, metrics); err != nil {
		return err
	}

	if _, err = s.outboxRepo.Create(ctx, NewOutboxEvent(eventID, EventTypeSyncRun, run.ShopTLD, payload)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}

	if err := s.cacheRepo.DeleteKPIs(ctx); err != nil {
		s.logger.Warnf("Failed to invalidate KPI cache: %v", err)
	}

	return nil
}

func (s *SyncUseCase) shopByTLD(tld string) (domain.Shop, bool) {
	for _, shop := range s.shops {
		if shop.TLD == tld {
			return shop, true
		}
	}

	return domain.Shop{}, false
}

// validIDs собирает ID товаров и вариантов базового языка: контент
// остальных языков принимается только для них.
func validIDs(products []domain.Product) (map[int64]struct{}, map[int64]struct{}) {
	validProducts := make(map[int64]struct{}, len(products))
	validVariants := make(map[int64]struct{})
	for _, p := range products {
		validProducts[p.ID] = struct{}{}
		for _, v := range p.Variants {
			validVariants[v.ID] = struct{}{}
		}
	}

	return validProducts, validVariants
}

// mirrorItems отбирает по одному витринному изображению на товар.
func mirrorItems(products []domain.Product) []MirrorItem {
	items := make([]MirrorItem, 0, len(products))
	for _, p := range products {
		if p.Image == nil || p.Image.Thumb == "" {
			continue
		}
		items = append(items, MirrorItem{ProductID: p.ID, Link: p.Image.Thumb})
	}

	return items
}
