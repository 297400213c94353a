package domain

import "time"

// RunStatus — состояние одного прохода синхронизации.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// SyncMetrics — счётчики одного прохода синхронизации.
type SyncMetrics struct {
	ProductsFetched  int
	VariantsFetched  int
	ProductsSynced   int
	VariantsSynced   int
	ProductsDeleted  int
	VariantsDeleted  int
	VariantsFiltered int
}

// SyncRun — запись о проходе синхронизации одного магазина.
// Создаётся в статусе running и закрывается ровно один раз.
type SyncRun struct {
	ID           int64
	ShopTLD      string
	Status       RunStatus
	StartedAt    time.Time
	CompletedAt  *time.Time
	ErrorMessage string
	Metrics      SyncMetrics
}
