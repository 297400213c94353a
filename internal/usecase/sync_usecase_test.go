package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/merchantops/shopsync-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx реализует pgx.Tx ровно настолько, насколько нужно менеджеру транзакций.
type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true

	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true

	return nil
}

func (t *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }

func (t *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                         { return nil }

type fakePool struct {
	mu  sync.Mutex
	txs []*fakeTx
}

func (p *fakePool) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tx := &fakeTx{}
	p.txs = append(p.txs, tx)

	return tx, nil
}

type fakeRunRepo struct {
	mu       sync.Mutex
	startErr map[string]error
	nextID   int64

	sealedStatus  domain.RunStatus
	sealedErrMsg  string
	sealedMetrics domain.SyncMetrics
	sealCalls     int
	runs          []domain.SyncRun
}

func (r *fakeRunRepo) Start(_ context.Context, shopTLD string, _ bool) (*domain.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.startErr[shopTLD]; err != nil {
		return nil, err
	}
	r.nextID++

	return &domain.SyncRun{
		ID:        r.nextID,
		ShopTLD:   shopTLD,
		Status:    domain.RunRunning,
		StartedAt: time.Now().UTC(),
	}, nil
}

func (r *fakeRunRepo) Seal(_ context.Context, _ int64, status domain.RunStatus, errMsg string, m domain.SyncMetrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sealCalls++
	r.sealedStatus = status
	r.sealedErrMsg = errMsg
	r.sealedMetrics = m

	return nil
}

func (r *fakeRunRepo) Last(context.Context) ([]domain.SyncRun, error) {
	return r.runs, nil
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []*OutboxEvent
}

func (r *fakeOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)

	return event, nil
}

func (r *fakeOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkAsProcessed(context.Context, int64) error { return nil }

type fakeMirror struct {
	mu   sync.Mutex
	reqs []*MirrorImagesReq
}

func (m *fakeMirror) MirrorImages(_ context.Context, req *MirrorImagesReq) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reqs = append(m.reqs, req)

	return len(req.Items)
}

func (m *fakeMirror) WaitForMirror(context.Context) error { return nil }

// syncGateway отдаёт заранее подготовленные снапшоты.
type syncGateway struct {
	snap      *CatalogSnapshot
	fetchErr  error
	localized map[string]*LocalizedSnapshot

	localizedLangs []string
}

func (g *syncGateway) FetchCatalog(_ context.Context, _ string) (*CatalogSnapshot, error) {
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}

	return g.snap, nil
}

func (g *syncGateway) FetchLocalizedContent(_ context.Context, lang string) (*LocalizedSnapshot, error) {
	g.localizedLangs = append(g.localizedLangs, lang)
	if snap, ok := g.localized[lang]; ok {
		return snap, nil
	}

	return &LocalizedSnapshot{Language: lang}, nil
}

func (g *syncGateway) FetchImage(context.Context, string) (*FetchedImage, error) {
	return nil, errors.New("not implemented")
}

func (g *syncGateway) CreateProduct(context.Context, string, *CreateShellReq) (int64, error) {
	return 0, errors.New("not implemented")
}

func (g *syncGateway) UpdateProductContent(context.Context, string, int64, *LocalizedContent) error {
	return errors.New("not implemented")
}

func (g *syncGateway) CreateVariant(context.Context, string, int64, *NewVariantReq) (int64, error) {
	return 0, errors.New("not implemented")
}

func (g *syncGateway) CreateImage(context.Context, string, int64, *NewImageReq) (int64, error) {
	return 0, errors.New("not implemented")
}

type syncCatalogRepo struct {
	applyRes  *ApplySnapshotRes
	upsertRes *UpsertLocalizedRes

	applied       []*CatalogSnapshot
	validProducts map[int64]struct{}
	validVariants map[int64]struct{}
}

func (r *syncCatalogRepo) ApplySnapshot(_ context.Context, _ string, snap *CatalogSnapshot) (*ApplySnapshotRes, error) {
	r.applied = append(r.applied, snap)
	if r.applyRes != nil {
		return r.applyRes, nil
	}

	return &ApplySnapshotRes{}, nil
}

func (r *syncCatalogRepo) UpsertLocalizedContent(_ context.Context, _ string, _ *LocalizedSnapshot,
	validProducts map[int64]struct{}, validVariants map[int64]struct{}) (*UpsertLocalizedRes, error) {
	r.validProducts = validProducts
	r.validVariants = validVariants
	if r.upsertRes != nil {
		return r.upsertRes, nil
	}

	return &UpsertLocalizedRes{}, nil
}

func (r *syncCatalogRepo) GetCatalog(context.Context, string) ([]domain.Product, error) {
	return nil, nil
}

func syncShopFixture() domain.Shop {
	return domain.Shop{
		TLD:  "de",
		Name: "Germany",
		Role: domain.RoleTarget,
		Languages: []domain.ShopLanguage{
			{Code: "de", IsDefault: true, IsActive: true},
			{Code: "en", IsActive: true},
			{Code: "fr"},
		},
	}
}

func syncSnapshot() *CatalogSnapshot {
	return &CatalogSnapshot{
		Language: "de",
		Products: []domain.Product{
			{
				ID:    1,
				Image: &domain.Image{Thumb: "https://cdn/1_thumb.jpg"},
				Variants: []domain.Variant{
					{ID: 10, ProductID: 1, SKU: "A", IsDefault: true},
					{ID: 11, ProductID: 1, SKU: "A-XL"},
				},
			},
			{
				ID: 2,
				Variants: []domain.Variant{
					{ID: 20, ProductID: 2, SKU: "B", IsDefault: true},
				},
			},
		},
		VariantsFetched: 4,
		OrphanVariants:  1,
	}
}

func TestSyncShop_Success(t *testing.T) {
	gw := &syncGateway{snap: syncSnapshot()}
	catalogRepo := &syncCatalogRepo{
		applyRes:  &ApplySnapshotRes{ProductsDeleted: 1, VariantsDeleted: 2},
		upsertRes: &UpsertLocalizedRes{VariantsFiltered: 3},
	}
	runRepo := &fakeRunRepo{}
	outboxRepo := &fakeOutboxRepo{}
	mirror := &fakeMirror{}
	pool := &fakePool{}

	uc := NewSyncUC([]domain.Shop{syncShopFixture()}, map[string]ShopGateway{"de": gw},
		catalogRepo, runRepo, outboxRepo, &fakeKpiCache{}, mirror, pool, 2, nopLogger{})

	run, err := uc.SyncShop(context.Background(), "de", false)
	require.NoError(t, err)

	assert.Equal(t, domain.RunSuccess, run.Status)
	assert.Equal(t, domain.SyncMetrics{
		ProductsFetched:  2,
		VariantsFetched:  4,
		ProductsSynced:   2,
		VariantsSynced:   3,
		ProductsDeleted:  1,
		VariantsDeleted:  2,
		VariantsFiltered: 4, // 1 сирота + 3 отфильтрованных на втором языке
	}, run.Metrics)

	// контент выгружается только для не-базовых активных языков
	assert.Equal(t, []string{"en"}, gw.localizedLangs)
	assert.Equal(t, map[int64]struct{}{1: {}, 2: {}}, catalogRepo.validProducts)
	assert.Equal(t, map[int64]struct{}{10: {}, 11: {}, 20: {}}, catalogRepo.validVariants)

	// запись закрыта успехом, событие ушло в outbox той же транзакцией
	assert.Equal(t, 1, runRepo.sealCalls)
	assert.Equal(t, domain.RunSuccess, runRepo.sealedStatus)
	require.Len(t, outboxRepo.events, 1)
	event := outboxRepo.events[0]
	assert.Equal(t, EventTypeSyncRun, event.EventType)
	assert.Equal(t, "de", event.ShopTLD)

	var payload SyncRunEvent
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, domain.RunSuccess, payload.Status)
	assert.Equal(t, run.ID, payload.RunID)
	assert.NotEmpty(t, payload.EventID)

	// по одному витринному изображению на товар с thumb
	require.Len(t, mirror.reqs, 1)
	require.Len(t, mirror.reqs[0].Items, 1)
	assert.Equal(t, int64(1), mirror.reqs[0].Items[0].ProductID)

	// обе транзакции (снапшот и закрытие) закоммичены
	require.Len(t, pool.txs, 2)
	for _, tx := range pool.txs {
		assert.True(t, tx.committed)
		assert.False(t, tx.rolledBack)
	}
}

func TestSyncShop_UnknownShop(t *testing.T) {
	uc := NewSyncUC(nil, nil, &syncCatalogRepo{}, &fakeRunRepo{}, &fakeOutboxRepo{},
		&fakeKpiCache{}, &fakeMirror{}, &fakePool{}, 1, nopLogger{})

	_, err := uc.SyncShop(context.Background(), "xx", false)
	require.ErrorIs(t, err, e.ErrUnknownShop)
}

func TestSyncShop_AlreadyRunning(t *testing.T) {
	gw := &syncGateway{snap: syncSnapshot()}
	runRepo := &fakeRunRepo{startErr: map[string]error{"de": e.ErrSyncAlreadyRunning}}

	uc := NewSyncUC([]domain.Shop{syncShopFixture()}, map[string]ShopGateway{"de": gw},
		&syncCatalogRepo{}, runRepo, &fakeOutboxRepo{}, &fakeKpiCache{}, &fakeMirror{}, &fakePool{}, 1, nopLogger{})

	_, err := uc.SyncShop(context.Background(), "de", false)
	require.ErrorIs(t, err, e.ErrSyncAlreadyRunning)
	// до API магазина дело не доходит
	assert.Empty(t, gw.localizedLangs)
}

func TestSyncShop_FetchFailureSealsRunAsError(t *testing.T) {
	gw := &syncGateway{fetchErr: errors.New("shop down")}
	runRepo := &fakeRunRepo{}

	uc := NewSyncUC([]domain.Shop{syncShopFixture()}, map[string]ShopGateway{"de": gw},
		&syncCatalogRepo{}, runRepo, &fakeOutboxRepo{}, &fakeKpiCache{}, &fakeMirror{}, &fakePool{}, 1, nopLogger{})

	_, err := uc.SyncShop(context.Background(), "de", false)
	require.Error(t, err)

	assert.Equal(t, 1, runRepo.sealCalls)
	assert.Equal(t, domain.RunError, runRepo.sealedStatus)
	assert.Contains(t, runRepo.sealedErrMsg, "shop down")
}

func TestSyncAll_FailureIsolatedPerShop(t *testing.T) {
	okShop := syncShopFixture()
	badShop := domain.Shop{
		TLD:       "be",
		Role:      domain.RoleTarget,
		Languages: []domain.ShopLanguage{{Code: "nl", IsDefault: true, IsActive: true}},
	}

	gateways := map[string]ShopGateway{
		"de": &syncGateway{snap: syncSnapshot()},
		"be": &syncGateway{snap: syncSnapshot()},
	}
	runRepo := &fakeRunRepo{startErr: map[string]error{"be": e.ErrSyncAlreadyRunning}}

	uc := NewSyncUC([]domain.Shop{okShop, badShop}, gateways, &syncCatalogRepo{}, runRepo,
		&fakeOutboxRepo{}, &fakeKpiCache{}, &fakeMirror{}, &fakePool{}, 2, nopLogger{})

	reports := uc.SyncAll(context.Background(), false)
	require.Len(t, reports, 2)

	byTLD := make(map[string]ShopSyncReport, len(reports))
	for _, report := range reports {
		byTLD[report.ShopTLD] = report
	}

	require.NoError(t, byTLD["de"].Err)
	assert.NotZero(t, byTLD["de"].RunID)
	require.ErrorIs(t, byTLD["be"].Err, e.ErrSyncAlreadyRunning)
}

func TestSyncAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uc := NewSyncUC([]domain.Shop{syncShopFixture()}, nil, &syncCatalogRepo{}, &fakeRunRepo{},
		&fakeOutboxRepo{}, &fakeKpiCache{}, &fakeMirror{}, &fakePool{}, 1, nopLogger{})

	reports := uc.SyncAll(ctx, false)
	require.Len(t, reports, 1)
	require.ErrorIs(t, reports[0].Err, context.Canceled)
}
