package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/merchantops/shopsync-backend/pkg/e"
	"github.com/merchantops/shopsync-backend/pkg/logger"
)

var allowedVisibility = map[string]struct{}{
	"visible": {},
	"hidden":  {},
	"auto":    {},
}

// CreationUseCase реализует поэтапное создание товара в целевом магазине.
// Протокол из четырёх этапов: товар, контент остальных языков, варианты,
// изображения. Этап 1 определяет успех; сбои этапов 2-4 собираются
// в детали результата и не откатывают уже созданное. Повторный вызов
// с тем же запросом создаст второй товар: идемпотентности у API магазина нет.
type CreationUseCase struct {
	shops    map[string]domain.Shop
	gateways map[string]ShopGateway
	logger   logger.Logger
}

func NewCreationUC(
	shops map[string]domain.Shop,
	gateways map[string]ShopGateway,
	logger logger.Logger,
) *CreationUseCase {
	return &CreationUseCase{
		shops:    shops,
		gateways: gateways,
		logger:   logger,
	}
}

// CreateProduct создаёт товар в целевом магазине по четырёхэтапному протоколу.
func (c *CreationUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.CreationResult, error) {
	const op = "CreationUseCase.CreateProduct"

	if err := c.validate(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	gateway := c.gateways[req.TargetTLD]
	defaultContent := req.Content[0]

	// Этап 1: сам товар на языке по умолчанию. Сбой здесь — сбой всей операции.
	productID, err := gateway.CreateProduct(ctx, defaultContent.Language, &CreateShellReq{
		Visibility:  req.Visibility,
		Title:       defaultContent.Title,
		FullTitle:   defaultContent.FullTitle,
		Description: defaultContent.Description,
		Content:     defaultContent.Content,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	result := &domain.CreationResult{
		Success:         true,
		ProductID:       productID,
		CreatedVariants: make([]domain.CreatedVariant, 0, len(req.Variants)),
	}

	// Этап 2: контент остальных языков.
	for _, content := range req.Content[1:] {
		if err = gateway.UpdateProductContent(ctx, content.Language, productID, &content); err != nil {
			c.logger.Warnf("Failed to write localized content. shop: %s, product: %d, lang: %s, error: %v",
				req.TargetTLD, productID, content.Language, e.Wrap(op, err))
			result.Details = append(result.Details, domain.StageFailure{
				Stage:  domain.StageContent,
				Ref:    content.Language,
				Reason: err.Error(),
			})
		}
	}

	// Этап 3: варианты в порядке сортировки.
	variants := make([]NewVariantReq, len(req.Variants))
	copy(variants, req.Variants)
	sort.SliceStable(variants, func(i, j int) bool { return variants[i].SortOrder < variants[j].SortOrder })

	for i := range variants {
		variantID, err := gateway.CreateVariant(ctx, defaultContent.Language, productID, &variants[i])
		if err != nil {
			c.logger.Warnf("Failed to create variant. shop: %s, product: %d, sku: %s, error: %v",
				req.TargetTLD, productID, variants[i].SKU, e.Wrap(op, err))
			result.Details = append(result.Details, domain.StageFailure{
				Stage:  domain.StageVariant,
				Ref:    variants[i].SKU,
				Reason: err.Error(),
			})

			continue
		}

		result.CreatedVariants = append(result.CreatedVariants, domain.CreatedVariant{
			SourceVariantID: variants[i].SourceVariantID,
			VariantID:       variantID,
			SKU:             variants[i].SKU,
		})
	}

	// Этап 4: изображения в порядке сортировки.
	images := make([]NewImageReq, len(req.Images))
	copy(images, req.Images)
	sort.SliceStable(images, func(i, j int) bool { return images[i].SortOrder < images[j].SortOrder })

	for i := range images {
		if _, err = gateway.CreateImage(ctx, defaultContent.Language, productID, &images[i]); err != nil {
			c.logger.Warnf("Failed to attach image. shop: %s, product: %d, src: %s, error: %v",
				req.TargetTLD, productID, images[i].Src, e.Wrap(op, err))
			result.Details = append(result.Details, domain.StageFailure{
				Stage:  domain.StageImage,
				Ref:    images[i].Src,
				Reason: err.Error(),
			})
		}
	}

	if result.Partial() {
		result.Error = fmt.Sprintf("product %d created with %d partial failures", productID, len(result.Details))
	}

	c.logger.Infof("Product created. shop: %s, product: %d, variants: %d/%d, failures: %d",
		req.TargetTLD, productID, len(result.CreatedVariants), len(req.Variants), len(result.Details))

	return result, nil
}

// validate проверяет запрос до первого обращения к API магазина.
func (c *CreationUseCase) validate(req *CreateProductReq) error {
	shop, ok := c.shops[req.TargetTLD]
	if !ok {
		return e.ErrUnknownShop
	}
	if shop.Role != domain.RoleTarget {
		return e.ErrNotATargetShop
	}

	if len(req.Content) == 0 {
		return e.ErrNoContentLanguages
	}
	for _, content := range req.Content {
		if strings.TrimSpace(content.Language) == "" || strings.TrimSpace(content.Title) == "" {
			return e.ErrNoContentLanguages
		}
	}

	if len(req.Variants) == 0 {
		return e.ErrNoVariants
	}
	for _, v := range req.Variants {
		if v.PriceExcl.IsNegative() {
			return e.ErrInvalidPrice
		}
	}

	if _, ok = allowedVisibility[req.Visibility]; !ok {
		return e.ErrInvalidVisibility
	}

	return nil
}
