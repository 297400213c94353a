package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/merchantops/shopsync-backend/pkg/e"
	"github.com/merchantops/shopsync-backend/pkg/logger"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 250
)

var sortKeys = map[string]struct{}{
	"sku":        {},
	"title":      {},
	"price":      {},
	"variants":   {},
	"duplicates": {},
}

// StatusUseCase реализует сверку каталогов и агрегаты дашборда.
// Записи сверки вычисляются заново на каждый запрос из текущих снапшотов:
// ни кэширования частичных результатов, ни инкрементальных обновлений.
type StatusUseCase struct {
	source      domain.Shop
	targets     []domain.Shop
	catalogRepo CatalogRepository
	cacheRepo   KpiCache
	logger      logger.Logger
}

func NewStatusUC(
	source domain.Shop,
	targets []domain.Shop,
	catalogRepo CatalogRepository,
	cacheRepo KpiCache,
	logger logger.Logger,
) *StatusUseCase {
	return &StatusUseCase{
		source:      source,
		targets:     targets,
		catalogRepo: catalogRepo,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// ListProducts возвращает страницу записей сверки с поиском, фильтром
// по статусу и сортировкой. Total считается после фильтрации, до пагинации.
func (s *StatusUseCase) ListProducts(ctx context.Context, req *ListProductsReq) (*ListProductsRes, error) {
	const op = "StatusUseCase.ListProducts"

	if err := s.validateList(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	statuses, err := s.computeStatuses(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	filtered := s.filterStatuses(statuses, req)
	sortStatuses(filtered, req.Sort, req.Order)

	total := len(filtered)
	offset := (req.Page - 1) * req.Limit
	if offset > total {
		offset = total
	}
	end := offset + req.Limit
	if end > total {
		end = total
	}

	return NewListProductsRes(filtered[offset:end], total, req.Page, req.Limit), nil
}

// GetKPIs возвращает агрегаты дашборда, по возможности из кэша.
// Свежесозданные агрегаты докладываются в кэш в фоне.
func (s *StatusUseCase) GetKPIs(ctx context.Context) ([]domain.DashboardKpi, error) {
	const op = "StatusUseCase.GetKPIs"

	cached, err := s.cacheRepo.GetKPIs(ctx)
	if err != nil {
		s.logger.Warnf("Failed to read KPI cache: %v", e.Wrap(op, err))
	}
	if cached != nil {
		return cached, nil
	}

	statuses, err := s.computeStatuses(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	sourceCatalog, targetCatalogs, err := s.loadCatalogs(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	kpis := AggregateKPIs(sourceCatalog, targetCatalogs, statuses)

	// Фоновое добавление агрегатов в кэш.
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := s.cacheRepo.SetKPIs(bgCtx, kpis); err != nil {
			s.logger.Warnf("Failed to cache KPIs in background: %v", e.Wrap(op, err))
		}
	}()

	return kpis, nil
}

// computeStatuses строит записи сверки из текущих снапшотов: по записи
// на каждый исходный товар с вариантом по умолчанию, со статусом против
// каждого целевого магазина.
func (s *StatusUseCase) computeStatuses(ctx context.Context) ([]domain.ProductSyncStatus, error) {
	sourceCatalog, targetCatalogs, err := s.loadCatalogs(ctx)
	if err != nil {
		return nil, err
	}

	indexes := make(map[string]CatalogIndex, len(targetCatalogs))
	for _, target := range targetCatalogs {
		indexes[target.Shop.TLD] = BuildCatalogIndex(target.Products)
	}

	duplicates := CountDuplicates(sourceCatalog.Products)

	statuses := make([]domain.ProductSyncStatus, 0, len(sourceCatalog.Products))
	for _, p := range sourceCatalog.Products {
		dv := p.DefaultVariant()
		if dv == nil {
			continue
		}

		sku := dv.NormalizedSKU()
		fallbacks := p.NonDefaultSKUs()

		status := domain.ProductSyncStatus{
			ProductID:        p.ID,
			DefaultVariantID: dv.ID,
			SKU:              sku,
			VariantTitle:     dv.Title,
			ProductTitle:     p.Content.Title,
			PriceExcl:        dv.PriceExcl,
			Image:            p.Image,
			VariantCount:     len(p.Variants),
			DuplicateCount:   duplicates[sku],
			HasDuplicates:    duplicates[sku] > 1,
			CreatedAt:        p.CreatedAt,
			UpdatedAt:        p.UpdatedAt,
			Targets:          make([]domain.TargetMatch, 0, len(s.targets)),
		}

		for _, target := range s.targets {
			match := Classify(sku, fallbacks, indexes[target.TLD])
			status.Targets = append(status.Targets, domain.TargetMatch{
				ShopTLD:           target.TLD,
				Status:            match.Status,
				MatchCount:        match.MatchCount,
				ProductIDs:        match.ProductIDs,
				DefaultVariantIDs: match.DefaultVariantIDs,
				VariantCounts:     match.VariantCounts,
			})
		}

		statuses = append(statuses, status)
	}

	return statuses, nil
}

// loadCatalogs читает снапшоты исходного и целевых магазинов из хранилища.
func (s *StatusUseCase) loadCatalogs(ctx context.Context) (ShopCatalog, []ShopCatalog, error) {
	sourceProducts, err := s.catalogRepo.GetCatalog(ctx, s.source.TLD)
	if err != nil {
		return ShopCatalog{}, nil, err
	}
	sourceCatalog := ShopCatalog{Shop: s.source, Products: sourceProducts}

	targetCatalogs := make([]ShopCatalog, 0, len(s.targets))
	for _, target := range s.targets {
		products, err := s.catalogRepo.GetCatalog(ctx, target.TLD)
		if err != nil {
			return ShopCatalog{}, nil, err
		}
		targetCatalogs = append(targetCatalogs, ShopCatalog{Shop: target, Products: products})
	}

	return sourceCatalog, targetCatalogs, nil
}

// validateList проверяет и нормализует параметры запроса страницы.
func (s *StatusUseCase) validateList(req *ListProductsReq) error {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = defaultPageLimit
	}
	if req.Page < 1 || req.Limit < 1 || req.Limit > maxPageLimit {
		return e.ErrInvalidPagination
	}

	if req.Sort == "" {
		req.Sort = "sku"
	}
	if _, ok := sortKeys[req.Sort]; !ok {
		return e.ErrInvalidSortKey
	}

	if req.Order == "" {
		req.Order = "asc"
	}
	if req.Order != "asc" && req.Order != "desc" {
		return e.ErrInvalidSortKey
	}

	switch domain.MatchStatus(req.Status) {
	case "", domain.MatchNotExists, domain.MatchExistsSingle, domain.MatchExistsMultiple:
	default:
		return e.ErrInvalidStatus
	}

	if req.TargetTLD != "" {
		found := false
		for _, target := range s.targets {
			if target.TLD == req.TargetTLD {
				found = true
				break
			}
		}
		if !found {
			return e.ErrUnknownShop
		}
	}

	return nil
}

// filterStatuses применяет поиск и фильтр по статусу.
func (s *StatusUseCase) filterStatuses(statuses []domain.ProductSyncStatus, req *ListProductsReq) []domain.ProductSyncStatus {
	search := strings.ToLower(strings.TrimSpace(req.Search))

	filtered := make([]domain.ProductSyncStatus, 0, len(statuses))
	for _, st := range statuses {
		if search != "" && !matchesSearch(st, search) {
			continue
		}
		if req.Status != "" && !matchesStatus(st, req.TargetTLD, domain.MatchStatus(req.Status)) {
			continue
		}
		filtered = append(filtered, st)
	}

	return filtered
}

// matchesSearch ищет подстроку в SKU и заголовках без учёта регистра.
func matchesSearch(st domain.ProductSyncStatus, search string) bool {
	return strings.Contains(strings.ToLower(st.SKU), search) ||
		strings.Contains(strings.ToLower(st.VariantTitle), search) ||
		strings.Contains(strings.ToLower(st.ProductTitle), search)
}

// matchesStatus проверяет статус против указанного целевого магазина
// или против любого из них, если магазин не указан.
func matchesStatus(st domain.ProductSyncStatus, targetTLD string, status domain.MatchStatus) bool {
	for _, t := range st.Targets {
		if targetTLD != "" && t.ShopTLD != targetTLD {
			continue
		}
		if t.Status == status {
			return true
		}
	}

	return false
}

// sortStatuses сортирует записи стабильно по выбранному ключу.
// Вторичный ключ — SKU по возрастанию, для детерминированной пагинации.
func sortStatuses(statuses []domain.ProductSyncStatus, key string, order string) {
	desc := order == "desc"

	less := func(a, b domain.ProductSyncStatus) bool {
		switch key {
		case "title":
			return strings.ToLower(a.VariantTitle) < strings.ToLower(b.VariantTitle)
		case "price":
			return a.PriceExcl.LessThan(b.PriceExcl)
		case "variants":
			return a.VariantCount < b.VariantCount
		case "duplicates":
			return a.DuplicateCount < b.DuplicateCount
		default:
			return a.SKU < b.SKU
		}
	}

	sort.SliceStable(statuses, func(i, j int) bool {
		a, b := statuses[i], statuses[j]
		if less(a, b) {
			return !desc
		}
		if less(b, a) {
			return desc
		}

		return a.SKU < b.SKU
	})
}
