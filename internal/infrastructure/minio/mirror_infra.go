package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/merchantops/shopsync-backend/internal/cfg"
	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/merchantops/shopsync-backend/internal/infrastructure"
	"github.com/merchantops/shopsync-backend/internal/usecase"
	"github.com/merchantops/shopsync-backend/pkg/logger"
)

// MirrorInfrastructure зеркалирует витринные изображения магазинов в MinIO.
// Зеркало — вторичный артефакт: сбои логируются и не влияют на проход
// синхронизации, объекты перезаписываются детерминированными ключами.
type MirrorInfrastructure struct {
	imageRepo   usecase.ImageRepository
	gateways    map[string]usecase.ShopGateway
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
	mirrorLimit int
}

func NewMirrorInfrastructure(
	imageRepo usecase.ImageRepository,
	gateways map[string]usecase.ShopGateway,
	cfg *cfg.MinIOCfg,
	logger logger.Logger,
	shutdownCtx context.Context,
) *MirrorInfrastructure {
	return &MirrorInfrastructure{
		imageRepo:   imageRepo,
		gateways:    gateways,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		mirrorLimit: cfg.MirrorLimit,
	}
}

// MirrorImages ставит изображения магазина в фоновое зеркалирование
// и возвращает число запланированных загрузок.
func (m *MirrorInfrastructure) MirrorImages(ctx context.Context, req *usecase.MirrorImagesReq) int {
	gateway, ok := m.gateways[req.ShopTLD]
	if !ok || len(req.Items) == 0 {
		return 0
	}

	m.wg.Add(1)
	go m.mirrorShop(req.ShopTLD, gateway, req.Items)

	return len(req.Items)
}

// mirrorShop скачивает и загружает изображения одного магазина
// параллельно с ограничением одновременных операций.
func (m *MirrorInfrastructure) mirrorShop(shopTLD string, gateway usecase.ShopGateway, items []usecase.MirrorItem) {
	defer m.wg.Done()
	const op = "MirrorInfrastructure.mirrorShop"

	ctx, cancel := context.WithTimeout(m.shutdownCtx, 10*time.Minute)
	defer cancel()

	sem := make(chan struct{}, m.mirrorLimit)
	var mirrorWg sync.WaitGroup

	failed := 0
	var mu sync.Mutex

	for _, item := range items {
		if ctx.Err() != nil {
			m.logger.Warnf("%s: mirroring interrupted by shutdown. shop: %s", op, shopTLD)
			break
		}

		mirrorWg.Add(1)
		go func(item usecase.MirrorItem) {
			defer mirrorWg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := m.mirrorOne(ctx, shopTLD, gateway, item); err != nil {
				m.logger.Warnf("Failed to mirror image. shop: %s, product: %d, error: %v",
					shopTLD, item.ProductID, err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(item)
	}

	mirrorWg.Wait()
	m.logger.Infof("Image mirroring finished. shop: %s, images: %d, failed: %d",
		shopTLD, len(items), failed)
}

// mirrorOne скачивает одно изображение и кладёт его в бакет зеркала.
func (m *MirrorInfrastructure) mirrorOne(ctx context.Context, shopTLD string, gateway usecase.ShopGateway, item usecase.MirrorItem) error {
	fetched, err := gateway.FetchImage(ctx, item.Link)
	if err != nil {
		return err
	}

	ext, err := infrastructure.GetExtensionFromMIME(fetched.ContentType)
	if err != nil {
		return fmt.Errorf("invalid mime type %s: %w", fetched.ContentType, err)
	}

	size := int64(len(fetched.Data))
	objKey := fmt.Sprintf("mirror/%s/%d.%s", shopTLD, item.ProductID, ext)
	image := domain.NewStoredImage(m.cfg.BucketName, objKey, fetched.Data, &size, &fetched.ContentType)

	_, err = m.imageRepo.Upload(ctx, image)

	return err
}

// WaitForMirror ожидает завершения фоновых загрузок с учётом таймаута
// завершения приложения.
func (m *MirrorInfrastructure) WaitForMirror(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("image mirror timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
