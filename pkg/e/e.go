package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации магазинов
	ErrUnknownShop      = fmt.Errorf("unknown shop tld")
	ErrNotATargetShop   = fmt.Errorf("shop is not a target shop")
	ErrShopCredsMissing = fmt.Errorf("missing api credentials for shop")

	// Ошибки синхронизации
	ErrSyncAlreadyRunning = fmt.Errorf("sync is already running for this shop")
	ErrSyncRunNotFound    = fmt.Errorf("sync run not found")

	// Ошибки создания товара (400 Bad Request)
	ErrNoContentLanguages = fmt.Errorf("content list must not be empty")
	ErrNoVariants         = fmt.Errorf("at least one variant is required")
	ErrInvalidPrice       = fmt.Errorf("invalid price value")
	ErrInvalidVisibility  = fmt.Errorf("invalid visibility value")

	// Ошибки разбора тела запроса (400 Bad Request)
	ErrMalformedBody = fmt.Errorf("malformed request body")

	// Ошибки запросов списка (400 Bad Request)
	ErrInvalidPagination = fmt.Errorf("invalid page or limit")
	ErrInvalidSortKey    = fmt.Errorf("invalid sort key")
	ErrInvalidStatus     = fmt.Errorf("invalid status filter")

	// 401 Unauthorized
	ErrUnauthorized       = fmt.Errorf("unauthorized")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Ошибки взаимодействия с магазином
	ErrShopUnavailable = fmt.Errorf("shop api is unavailable")

	// Ошибки зеркалирования изображений
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// UpstreamError — магазин ответил не-успешным статусом.
// Сохраняет код и тело ответа для диагностики.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (u *UpstreamError) Error() string {
	return fmt.Sprintf("shop api rejected request: status %d: %s", u.StatusCode, u.Body)
}

func NewUpstreamError(statusCode int, body string) *UpstreamError {
	return &UpstreamError{StatusCode: statusCode, Body: body}
}

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
