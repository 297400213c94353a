package domain

// StoredImage описывает объект зеркала изображений в S3
type StoredImage struct {
	Bucket    string
	ObjectKey string
	Data      []byte
	// Передайте значение -1 в Size, если размер потока неизвестен
	// (внимание: при передаче значения -1 будет выделен большой объем памяти).
	Size        *int64
	ContentType *string // Example: "image/jpeg"
}

func NewStoredImage(bucket string, objectKey string, data []byte, size *int64, contentType *string) *StoredImage {
	return &StoredImage{
		Bucket:      bucket,
		ObjectKey:   objectKey,
		Data:        data,
		Size:        size,
		ContentType: contentType,
	}
}
