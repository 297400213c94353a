package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/merchantops/shopsync-backend/pkg/e"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// ToHTTPResponse отображает доменные ошибки на коды HTTP.
// Неопознанные ошибки не раскрываются наружу и уходят как 500.
func ToHTTPResponse(err error) (int, string) {
	var upstream *e.UpstreamError
	if errors.As(err, &upstream) {
		return http.StatusBadGateway, upstream.Error()
	}

	switch {
	case errors.Is(err, e.ErrMalformedBody):
		return http.StatusBadRequest, e.ErrMalformedBody.Error()
	case errors.Is(err, e.ErrNoContentLanguages):
		return http.StatusBadRequest, e.ErrNoContentLanguages.Error()
	case errors.Is(err, e.ErrNoVariants):
		return http.StatusBadRequest, e.ErrNoVariants.Error()
	case errors.Is(err, e.ErrInvalidPrice):
		return http.StatusBadRequest, e.ErrInvalidPrice.Error()
	case errors.Is(err, e.ErrInvalidVisibility):
		return http.StatusBadRequest, e.ErrInvalidVisibility.Error()
	case errors.Is(err, e.ErrInvalidPagination):
		return http.StatusBadRequest, e.ErrInvalidPagination.Error()
	case errors.Is(err, e.ErrInvalidSortKey):
		return http.StatusBadRequest, e.ErrInvalidSortKey.Error()
	case errors.Is(err, e.ErrInvalidStatus):
		return http.StatusBadRequest, e.ErrInvalidStatus.Error()
	case errors.Is(err, e.ErrNotATargetShop):
		return http.StatusBadRequest, e.ErrNotATargetShop.Error()
	case errors.Is(err, e.ErrUnauthorized):
		return http.StatusUnauthorized, e.ErrUnauthorized.Error()
	case errors.Is(err, e.ErrInvalidCredentials):
		return http.StatusUnauthorized, e.ErrInvalidCredentials.Error()
	case errors.Is(err, e.ErrUnknownShop):
		return http.StatusNotFound, e.ErrUnknownShop.Error()
	case errors.Is(err, e.ErrSyncRunNotFound):
		return http.StatusNotFound, e.ErrSyncRunNotFound.Error()
	case errors.Is(err, e.ErrSyncAlreadyRunning):
		return http.StatusConflict, e.ErrSyncAlreadyRunning.Error()
	case errors.Is(err, e.ErrShopUnavailable):
		return http.StatusBadGateway, e.ErrShopUnavailable.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// queryInt читает целочисленный параметр запроса.
// Пустое значение отдаёт ноль, мусор — ошибку валидации.
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, e.ErrInvalidPagination
	}

	return n, nil
}
