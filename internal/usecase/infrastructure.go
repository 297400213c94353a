package usecase

import "context"

// ShopGateway — доступ к REST API одного магазина.
// Операции выгрузки ретраятся реализацией, операции создания — нет:
// политика повторов при создании принадлежит вызывающему.
type ShopGateway interface {
	FetchCatalog(ctx context.Context, lang string) (*CatalogSnapshot, error)
	FetchLocalizedContent(ctx context.Context, lang string) (*LocalizedSnapshot, error)
	FetchImage(ctx context.Context, link string) (*FetchedImage, error)

	CreateProduct(ctx context.Context, lang string, req *CreateShellReq) (int64, error)
	UpdateProductContent(ctx context.Context, lang string, productID int64, content *LocalizedContent) error
	CreateVariant(ctx context.Context, lang string, productID int64, req *NewVariantReq) (int64, error)
	CreateImage(ctx context.Context, lang string, productID int64, req *NewImageReq) (int64, error)
}

// ImageMirror зеркалирует витринные изображения магазина в S3.
type ImageMirror interface {
	MirrorImages(ctx context.Context, req *MirrorImagesReq) int
	WaitForMirror(ctx context.Context) error
}

// MessageProducer публикует события в Kafka.
type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
