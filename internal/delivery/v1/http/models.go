package http

import (
	"time"

	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/merchantops/shopsync-backend/internal/usecase"
	"github.com/shopspring/decimal"
)

// Ответные модели. Доменные структуры наружу не отдаются.

type ShopResponse struct {
	TLD       string   `json:"tld"`
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Languages []string `json:"languages"`
}

func NewShopResponse(shop domain.Shop) ShopResponse {
	return ShopResponse{
		TLD:       shop.TLD,
		Name:      shop.Name,
		Role:      string(shop.Role),
		Languages: shop.ActiveLanguages(),
	}
}

type TargetMatchResponse struct {
	ShopTLD           string  `json:"shop_tld"`
	Status            string  `json:"status"`
	MatchCount        int     `json:"match_count"`
	ProductIDs        []int64 `json:"product_ids,omitempty"`
	DefaultVariantIDs []int64 `json:"default_variant_ids,omitempty"`
	VariantCounts     []int   `json:"variant_counts,omitempty"`
}

type ProductStatusResponse struct {
	ProductID        int64                 `json:"product_id"`
	DefaultVariantID int64                 `json:"default_variant_id"`
	SKU              string                `json:"sku"`
	VariantTitle     string                `json:"variant_title"`
	ProductTitle     string                `json:"product_title"`
	PriceExcl        string                `json:"price_excl"`
	Image            *domain.Image         `json:"image,omitempty"`
	VariantCount     int                   `json:"variant_count"`
	DuplicateCount   int                   `json:"duplicate_count"`
	HasDuplicates    bool                  `json:"has_duplicates"`
	CreatedAt        *time.Time            `json:"created_at,omitempty"`
	UpdatedAt        *time.Time            `json:"updated_at,omitempty"`
	Targets          []TargetMatchResponse `json:"targets"`
}

func NewProductStatusResponse(st domain.ProductSyncStatus) ProductStatusResponse {
	targets := make([]TargetMatchResponse, 0, len(st.Targets))
	for _, t := range st.Targets {
		targets = append(targets, TargetMatchResponse{
			ShopTLD:           t.ShopTLD,
			Status:            string(t.Status),
			MatchCount:        t.MatchCount,
			ProductIDs:        t.ProductIDs,
			DefaultVariantIDs: t.DefaultVariantIDs,
			VariantCounts:     t.VariantCounts,
		})
	}

	return ProductStatusResponse{
		ProductID:        st.ProductID,
		DefaultVariantID: st.DefaultVariantID,
		SKU:              st.SKU,
		VariantTitle:     st.VariantTitle,
		ProductTitle:     st.ProductTitle,
		PriceExcl:        st.PriceExcl.StringFixed(2),
		Image:            st.Image,
		VariantCount:     st.VariantCount,
		DuplicateCount:   st.DuplicateCount,
		HasDuplicates:    st.HasDuplicates,
		CreatedAt:        st.CreatedAt,
		UpdatedAt:        st.UpdatedAt,
		Targets:          targets,
	}
}

type ListProductsResponse struct {
	Items []ProductStatusResponse `json:"items"`
	Total int                     `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

func NewListProductsResponse(res *usecase.ListProductsRes) ListProductsResponse {
	items := make([]ProductStatusResponse, 0, len(res.Items))
	for _, st := range res.Items {
		items = append(items, NewProductStatusResponse(st))
	}

	return ListProductsResponse{
		Items: items,
		Total: res.Total,
		Page:  res.Page,
		Limit: res.Limit,
	}
}

type KpiResponse struct {
	ShopTLD           string `json:"shop_tld"`
	ShopName          string `json:"shop_name"`
	Role              string `json:"role"`
	TotalProducts     int    `json:"total_products"`
	TotalWithValidSKU int    `json:"total_with_valid_sku"`
	UniqueProducts    int    `json:"unique_products"`
	DuplicateSKUs     int    `json:"duplicate_skus"`
	MissingFromSource *int   `json:"missing_from_source,omitempty"`
}

func NewKpiResponse(kpi domain.DashboardKpi) KpiResponse {
	return KpiResponse{
		ShopTLD:           kpi.ShopTLD,
		ShopName:          kpi.ShopName,
		Role:              string(kpi.Role),
		TotalProducts:     kpi.TotalProducts,
		TotalWithValidSKU: kpi.TotalWithValidSKU,
		UniqueProducts:    kpi.UniqueProducts,
		DuplicateSKUs:     kpi.DuplicateSKUs,
		MissingFromSource: kpi.MissingFromSource,
	}
}

type SyncMetricsResponse struct {
	ProductsFetched  int `json:"products_fetched"`
	VariantsFetched  int `json:"variants_fetched"`
	ProductsSynced   int `json:"products_synced"`
	VariantsSynced   int `json:"variants_synced"`
	ProductsDeleted  int `json:"products_deleted"`
	VariantsDeleted  int `json:"variants_deleted"`
	VariantsFiltered int `json:"variants_filtered"`
}

type SyncRunResponse struct {
	ID           int64               `json:"id"`
	ShopTLD      string              `json:"shop_tld"`
	Status       string              `json:"status"`
	StartedAt    time.Time           `json:"started_at"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
	Metrics      SyncMetricsResponse `json:"metrics"`
}

func NewSyncRunResponse(run domain.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:           run.ID,
		ShopTLD:      run.ShopTLD,
		Status:       string(run.Status),
		StartedAt:    run.StartedAt,
		CompletedAt:  run.CompletedAt,
		ErrorMessage: run.ErrorMessage,
		Metrics: SyncMetricsResponse{
			ProductsFetched:  run.Metrics.ProductsFetched,
			VariantsFetched:  run.Metrics.VariantsFetched,
			ProductsSynced:   run.Metrics.ProductsSynced,
			VariantsSynced:   run.Metrics.VariantsSynced,
			ProductsDeleted:  run.Metrics.ProductsDeleted,
			VariantsDeleted:  run.Metrics.VariantsDeleted,
			VariantsFiltered: run.Metrics.VariantsFiltered,
		},
	}
}

type SyncReportResponse struct {
	ShopTLD string `json:"shop_tld"`
	RunID   int64  `json:"run_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Запросные модели.

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LocalizedContentRequest struct {
	Language    string `json:"language"`
	Title       string `json:"title"`
	FullTitle   string `json:"fulltitle,omitempty"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
}

type NewVariantRequest struct {
	SourceVariantID int64  `json:"source_variant_id"`
	SKU             string `json:"sku"`
	PriceExcl       string `json:"price_excl"`
	SortOrder       int    `json:"sort_order"`
	Title           string `json:"title"`
}

type NewImageRequest struct {
	Src       string `json:"src"`
	Title     string `json:"title,omitempty"`
	SortOrder int    `json:"sort_order"`
}

type CreateProductRequest struct {
	Visibility string                    `json:"visibility"`
	Content    []LocalizedContentRequest `json:"content"`
	Variants   []NewVariantRequest       `json:"variants"`
	Images     []NewImageRequest         `json:"images,omitempty"`
}

// ToUsecase конвертирует запрос в модель usecase-слоя, разбирая цены.
func (r CreateProductRequest) ToUsecase(targetTLD string) (*usecase.CreateProductReq, error) {
	content := make([]usecase.LocalizedContent, 0, len(r.Content))
	for _, c := range r.Content {
		content = append(content, usecase.LocalizedContent{
			Language:    c.Language,
			Title:       c.Title,
			FullTitle:   c.FullTitle,
			Description: c.Description,
			Content:     c.Content,
		})
	}

	variants := make([]usecase.NewVariantReq, 0, len(r.Variants))
	for _, v := range r.Variants {
		price, err := decimal.NewFromString(v.PriceExcl)
		if err != nil {
			return nil, err
		}
		variants = append(variants, usecase.NewVariantReq{
			SourceVariantID: v.SourceVariantID,
			SKU:             v.SKU,
			PriceExcl:       price,
			SortOrder:       v.SortOrder,
			Title:           v.Title,
		})
	}

	images := make([]usecase.NewImageReq, 0, len(r.Images))
	for _, img := range r.Images {
		images = append(images, usecase.NewImageReq{
			Src:       img.Src,
			Title:     img.Title,
			SortOrder: img.SortOrder,
		})
	}

	return &usecase.CreateProductReq{
		TargetTLD:  targetTLD,
		Visibility: r.Visibility,
		Content:    content,
		Variants:   variants,
		Images:     images,
	}, nil
}
