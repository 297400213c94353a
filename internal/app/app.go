package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	config "github.com/merchantops/shopsync-backend/internal/cfg"
	v1Http "github.com/merchantops/shopsync-backend/internal/delivery/v1/http"
	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/merchantops/shopsync-backend/internal/infrastructure/kafka"
	"github.com/merchantops/shopsync-backend/internal/infrastructure/lightspeed"
	minioInfra "github.com/merchantops/shopsync-backend/internal/infrastructure/minio"
	s3Repo "github.com/merchantops/shopsync-backend/internal/repository/minio"
	"github.com/merchantops/shopsync-backend/internal/repository/pgdb"
	"github.com/merchantops/shopsync-backend/internal/repository/redis"
	"github.com/merchantops/shopsync-backend/internal/task"
	"github.com/merchantops/shopsync-backend/internal/usecase"
	"github.com/merchantops/shopsync-backend/pkg/clients"
	"github.com/merchantops/shopsync-backend/pkg/closer"
	"github.com/merchantops/shopsync-backend/pkg/e"
	"github.com/merchantops/shopsync-backend/pkg/logger"
	"github.com/merchantops/shopsync-backend/pkg/postgres"
)

// Run собирает приложение и блокируется до сигнала остановки.
func Run(cfg *config.Config, logger logger.Logger) error {
	db, err := initPGDB(logger, cfg)
	if err != nil {
		logger.Errorf(err, "failed to initialize database")
		return err
	}

	appCloser := closer.NewCloser(cfg.Sync.ForcedCloseWindow)
	appCloser.Add(func(_ context.Context) error {
		db.Close()
		return nil
	})

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		logger.Errorf(err, "failed to connect to redis")
		return err
	}
	appCloser.Add(func(_ context.Context) error {
		return redisClient.Client.Close()
	})
	cacheRepo := redis.NewCacheRepo(redisClient, cfg.Redis, logger)

	minioClient, err := clients.NewMinIOClient(cfg)
	if err != nil {
		logger.Errorf(err, "failed to initialize minio client")
		return err
	}
	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		minioCancel()
		logger.Errorf(err, "failed to initialize MinIO bucket")
		return err
	}
	minioCancel()
	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)

	catalogRepo := pgdb.NewCatalogRepo(db.Pool)
	runRepo := pgdb.NewSyncRunRepo(db.Pool)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool)

	producer, err := kafka.NewProducer(logger, cfg.Kafka)
	if err != nil {
		logger.Errorf(err, "failed to initialize kafka producer")
		return err
	}
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		logger.Warnf("failed to ensure kafka topic: %v", err)
	}
	appCloser.Add(func(_ context.Context) error {
		return producer.Close()
	})

	workerCtx, workerCancel := context.WithCancel(context.Background())
	worker := kafka.NewOutboxWorker(outboxRepo, logger, producer, db.Dsn)
	worker.Start(workerCtx)
	appCloser.Add(func(_ context.Context) error {
		workerCancel()
		worker.Stop()
		return nil
	})

	// Магазины и шлюзы к их API: по клиенту на магазин,
	// учётные данные уже проверены при загрузке конфигурации.
	shops := make([]domain.Shop, 0, len(cfg.Shops.Targets)+1)
	shopsByTLD := make(map[string]domain.Shop)
	gateways := make(map[string]usecase.ShopGateway)
	for _, sc := range cfg.Shops.All() {
		shop := toDomainShop(sc)
		shops = append(shops, shop)
		shopsByTLD[shop.TLD] = shop

		client := lightspeed.NewClient(cfg.Shops.APIBase, sc.APIKey, sc.APISecret, cfg.Sync.CallTimeout)
		gateways[shop.TLD] = lightspeed.NewGateway(shop.TLD, client, cfg.Sync.PageLimit, cfg.Sync.MaxRetries, logger)
	}
	sourceShop := toDomainShop(cfg.Shops.Source)
	targetShops := make([]domain.Shop, 0, len(cfg.Shops.Targets))
	for _, sc := range cfg.Shops.Targets {
		targetShops = append(targetShops, toDomainShop(sc))
	}

	mirrorCtx, mirrorCancel := context.WithCancel(context.Background())
	mirror := minioInfra.NewMirrorInfrastructure(imageRepo, gateways, cfg.Minio, logger, mirrorCtx)
	appCloser.Add(func(ctx context.Context) error {
		defer mirrorCancel()
		return mirror.WaitForMirror(ctx)
	})

	syncUC := usecase.NewSyncUC(shops, gateways, catalogRepo, runRepo, outboxRepo,
		cacheRepo, mirror, db.Pool, cfg.Sync.MaxParallelShops, logger)
	statusUC := usecase.NewStatusUC(sourceShop, targetShops, catalogRepo, cacheRepo, logger)
	creationUC := usecase.NewCreationUC(shopsByTLD, gateways, logger)

	syncTask := task.NewSyncTask(syncUC, cfg.Sync.Cron, logger)
	if err := syncTask.Start(); err != nil {
		logger.Errorf(err, "failed to start scheduled sync")
		return err
	}
	appCloser.Add(func(_ context.Context) error {
		syncTask.Stop()
		return nil
	})

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, logger)
	router.Init(cfg.Session, shops, syncUC, statusUC, creationUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)
	appCloser.Add(func(ctx context.Context) error {
		return httpSrv.Stop(ctx)
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server started on port %s", cfg.Http.Port)
		if err := httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(err, "HTTP server failed: %v", err)
			errCh <- err
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown ===
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := appCloser.Close(shutdownCtx); err != nil {
		logger.Warnf("shutdown finished with errors: %v", err)
	} else {
		logger.Infof("Application shutdown complete")
	}

	return appErr
}

func toDomainShop(sc config.ShopCfg) domain.Shop {
	return domain.Shop{
		TLD:       sc.TLD,
		Name:      sc.Name,
		Role:      sc.Role,
		Languages: sc.Languages,
	}
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
