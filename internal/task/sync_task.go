package task

import (
	"context"
	"time"

	"github.com/merchantops/shopsync-backend/internal/usecase"
	"github.com/merchantops/shopsync-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// SyncTask запускает фоновую синхронизацию всех магазинов по расписанию.
// Пустое расписание выключает задачу: синхронизация остаётся только ручной.
type SyncTask struct {
	syncUC   usecase.SyncUC
	cron     *cron.Cron
	schedule string
	logger   logger.Logger
}

func NewSyncTask(syncUC usecase.SyncUC, schedule string, logger logger.Logger) *SyncTask {
	return &SyncTask{
		syncUC:   syncUC,
		cron:     cron.New(),
		schedule: schedule,
		logger:   logger,
	}
}

// Start регистрирует расписание и запускает планировщик.
func (t *SyncTask) Start() error {
	if t.schedule == "" {
		t.logger.Infof("Scheduled sync disabled: no schedule configured")
		return nil
	}

	_, err := t.cron.AddFunc(t.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		t.logger.Infof("Scheduled sync started")
		reports := t.syncUC.SyncAll(ctx, false)
		for _, report := range reports {
			if report.Err != nil {
				t.logger.Warnf("Scheduled sync failed for shop. shop: %s, error: %v", report.ShopTLD, report.Err)
			}
		}
		t.logger.Infof("Scheduled sync finished")
	})
	if err != nil {
		return err
	}

	t.cron.Start()
	t.logger.Infof("Scheduled sync enabled. schedule: %s", t.schedule)

	return nil
}

// Stop останавливает планировщик и дожидается бегущих задач.
func (t *SyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
}
