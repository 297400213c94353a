package http

import (
	"net/http"

	"github.com/merchantops/shopsync-backend/internal/domain"
)

// ShopHandler отдаёт конфигурацию магазинов. Список неизменен
// в течение жизни процесса, поэтому хранится прямо в обработчике.
type ShopHandler struct {
	shops []domain.Shop
}

func NewShopHandler(shops []domain.Shop) *ShopHandler {
	return &ShopHandler{shops: shops}
}

// listShops
//
//	@Summary	Список магазинов: исходный и целевые
//	@Tags		shops
//	@Produce	json
//	@Success	200	{array}	ShopResponse
//	@Router		/shops [get]
func (s *ShopHandler) listShops(w http.ResponseWriter, _ *http.Request) {
	out := make([]ShopResponse, 0, len(s.shops))
	for _, shop := range s.shops {
		out = append(out, NewShopResponse(shop))
	}

	WriteSuccess(w, http.StatusOK, out)
}
