package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/merchantops/shopsync-backend/internal/usecase"
	"github.com/merchantops/shopsync-backend/pkg/e"
	"github.com/merchantops/shopsync-backend/pkg/logger"
)

type ProductHandler struct {
	statusUC   usecase.StatusUC
	creationUC usecase.CreationUC
	logger     logger.Logger
}

func NewProductHandler(statusUC usecase.StatusUC, creationUC usecase.CreationUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{statusUC: statusUC, creationUC: creationUC, logger: logger}
}

// listProducts
//
//	@Summary		Сверка каталогов
//	@Description	Страница исходных товаров со статусом против каждого целевого магазина
//	@Tags			products
//	@Produce		json
//	@Param			search	query		string	false	"Подстрока SKU или заголовка"
//	@Param			target	query		string	false	"TLD целевого магазина для фильтра по статусу"
//	@Param			status	query		string	false	"not_exists | exists_single | exists_multiple"
//	@Param			sort	query		string	false	"sku | title | price | variants | duplicates"
//	@Param			order	query		string	false	"asc | desc"
//	@Param			page	query		int		false	"Номер страницы, с единицы"
//	@Param			limit	query		int		false	"Размер страницы, не более 250"
//	@Success		200		{object}	ListProductsResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		WriteError(w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		WriteError(w, err)
		return
	}

	q := r.URL.Query()
	res, err := p.statusUC.ListProducts(r.Context(), &usecase.ListProductsReq{
		Search:    q.Get("search"),
		TargetTLD: q.Get("target"),
		Status:    q.Get("status"),
		Sort:      q.Get("sort"),
		Order:     q.Get("order"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewListProductsResponse(res))
}

// createProduct
//
//	@Summary		Создание товара в целевом магазине
//	@Description	Четырёхэтапное создание: товар, контент остальных языков, варианты, изображения
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			tld		path		string					true	"TLD целевого магазина"
//	@Param			product	body		CreateProductRequest	true	"Создаваемый товар"
//	@Success		201		{object}	domain.CreationResult
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		502		{object}	ErrorResponse	"Магазин отклонил запрос"
//	@Router			/shops/{tld}/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		p.logger.Warnf("%d bad create request: %s", http.StatusBadRequest, err.Error())
		WriteError(w, e.ErrMalformedBody)
		return
	}

	ucReq, err := req.ToUsecase(chi.URLParam(r, "tld"))
	if err != nil {
		p.logger.Warnf("%d invalid price in create request: %s", http.StatusBadRequest, err.Error())
		WriteError(w, e.ErrInvalidPrice)
		return
	}

	result, err := p.creationUC.CreateProduct(r.Context(), ucReq)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, result)
}
