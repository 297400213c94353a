package redis

import (
	"context"
	"encoding/json"

	"github.com/jimlawless/whereami"
	"github.com/merchantops/shopsync-backend/internal/cfg"
	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/merchantops/shopsync-backend/pkg/clients"
	"github.com/merchantops/shopsync-backend/pkg/e"
	"github.com/merchantops/shopsync-backend/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
)

const kpiKey = "dashboard:kpis"

// CacheRepo кэширует агрегаты дашборда в Redis одним ключом.
// Агрегаты пересчитываются из снапшотов, поэтому кэш можно терять:
// все ошибки чтения и записи деградируют до промаха.
type CacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// GetKPIs возвращает закэшированные агрегаты или nil при промахе.
func (r *CacheRepo) GetKPIs(ctx context.Context) ([]domain.DashboardKpi, error) {
	data, err := r.client.Client.Get(ctx, kpiKey).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil // cache miss
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var kpis []domain.DashboardKpi
	if err := json.Unmarshal(data, &kpis); err != nil {
		r.logger.Warnf("KPI cache unmarshal failed, dropping key: %v", e.Wrap(whereami.WhereAmI(), err))
		if err := r.client.Client.Del(context.Background(), kpiKey).Err(); err != nil {
			r.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}

		return nil, nil
	}

	return kpis, nil
}

// SetKPIs кэширует агрегаты с TTL из конфигурации.
// Игнорирует ошибки сериализации/записи, логируя их.
func (r *CacheRepo) SetKPIs(ctx context.Context, kpis []domain.DashboardKpi) error {
	data, err := json.Marshal(kpis)
	if err != nil {
		r.logger.Warnf("Failed to marshal KPIs for caching: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil
	}

	if err := r.client.Client.Set(ctx, kpiKey, data, r.cfg.KpiTTL).Err(); err != nil {
		r.logger.Warnf("Redis SET failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// DeleteKPIs сбрасывает кэш агрегатов.
func (r *CacheRepo) DeleteKPIs(ctx context.Context) error {
	if err := r.client.Client.Del(ctx, kpiKey).Err(); err != nil {
		r.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}
