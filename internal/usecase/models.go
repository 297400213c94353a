package usecase

import (
	"time"

	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// CREATION USECASE

// LocalizedContent — контент товара для одного языка.
// Порядок элементов в запросе значим: первый элемент задаёт язык по умолчанию.
type LocalizedContent struct {
	Language    string
	Title       string
	FullTitle   string
	Description string
	Content     string
}

// NewVariantReq — вариант, создаваемый в целевом магазине.
type NewVariantReq struct {
	SourceVariantID int64
	SKU             string
	PriceExcl       decimal.Decimal
	SortOrder       int
	Title           string
}

// NewImageReq — изображение, прикрепляемое к созданному товару.
type NewImageReq struct {
	Src       string
	Title     string
	SortOrder int
}

// CreateProductReq — запрос на создание товара в целевом магазине.
type CreateProductReq struct {
	TargetTLD  string
	Visibility string
	Content    []LocalizedContent
	Variants   []NewVariantReq
	Images     []NewImageReq
}

// CreateShellReq — этап 1: создание самого товара на языке по умолчанию.
type CreateShellReq struct {
	Visibility  string
	Title       string
	FullTitle   string
	Description string
	Content     string
}

// SYNC USECASE

// CatalogSnapshot — каталог одного магазина, выгруженный для одного языка:
// товары с уже присоединёнными вариантами.
type CatalogSnapshot struct {
	Language        string
	Products        []domain.Product
	VariantsFetched int
	// OrphanVariants — варианты, ссылающиеся на несуществующий товар;
	// они отфильтрованы из Products.
	OrphanVariants int
}

// LocalizedSnapshot — контент не-базового языка: только тексты,
// без коммерческих данных.
type LocalizedSnapshot struct {
	Language       string
	ProductContent map[int64]domain.ProductContent
	VariantTitles  map[int64]string
}

// FetchedImage — скачанное изображение магазина.
type FetchedImage struct {
	Data        []byte
	ContentType string
}

// ApplySnapshotRes — результат применения снапшота к хранилищу.
type ApplySnapshotRes struct {
	ProductsDeleted int
	VariantsDeleted int
}

// UpsertLocalizedRes — результат применения контента не-базового языка.
type UpsertLocalizedRes struct {
	ProductsFiltered int
	VariantsFiltered int
}

// ShopSyncReport — итог синхронизации одного магазина в групповом проходе.
type ShopSyncReport struct {
	ShopTLD string
	RunID   int64
	Err     error
}

// MirrorItem — одно витринное изображение для зеркалирования в S3.
type MirrorItem struct {
	ProductID int64
	Link      string
}

// MirrorImagesReq — запрос на зеркалирование витринных изображений магазина.
type MirrorImagesReq struct {
	ShopTLD string
	Items   []MirrorItem
}

// STATUS USECASE

// ListProductsReq — запрос страницы сверки каталогов.
type ListProductsReq struct {
	Search    string
	TargetTLD string // пусто = фильтр по любому целевому магазину
	Status    string // пусто = без фильтра по статусу
	Sort      string
	Order     string
	Page      int
	Limit     int
}

// ListProductsRes — страница записей сверки.
type ListProductsRes struct {
	Items []domain.ProductSyncStatus
	Total int
	Page  int
	Limit int
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

const EventTypeSyncRun = "sync_run_completed"

// OutboxEvent — событие для публикации в Kafka через транзакционный outbox.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   string
	ShopTLD     string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// SyncRunEvent — полезная нагрузка события о завершённом проходе синхронизации.
type SyncRunEvent struct {
	EventID     string             `json:"event_id"`
	ShopTLD     string             `json:"shop_tld"`
	RunID       int64              `json:"run_id"`
	Status      domain.RunStatus   `json:"status"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt time.Time          `json:"completed_at"`
	Error       string             `json:"error,omitempty"`
	Metrics     domain.SyncMetrics `json:"metrics"`
}

// WriteRawMessageReq — сырое сообщение для продюсера Kafka.
type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// MAPPERS

func NewOutboxEvent(eventID string, eventType string, shopTLD string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:   eventID,
		EventType: eventType,
		ShopTLD:   shopTLD,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: time.Now().UTC(),
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}

func NewMirrorImagesReq(shopTLD string, items []MirrorItem) *MirrorImagesReq {
	return &MirrorImagesReq{
		ShopTLD: shopTLD,
		Items:   items,
	}
}

func NewListProductsRes(items []domain.ProductSyncStatus, total int, page int, limit int) *ListProductsRes {
	return &ListProductsRes{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}
}
