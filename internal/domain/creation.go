package domain

// CreationStage — этап создания товара в целевом магазине.
type CreationStage string

const (
	StageProduct CreationStage = "product"
	StageContent CreationStage = "content"
	StageVariant CreationStage = "variant"
	StageImage   CreationStage = "image"
)

// CreatedVariant связывает созданный в целевом магазине вариант
// с исходным вариантом.
type CreatedVariant struct {
	SourceVariantID int64  `json:"source_variant_id"`
	VariantID       int64  `json:"variant_id"`
	SKU             string `json:"sku"`
}

// StageFailure — одна неуспешная операция этапов 2-4.
type StageFailure struct {
	Stage  CreationStage `json:"stage"`
	Ref    string        `json:"ref"`
	Reason string        `json:"reason"`
}

// CreationResult — итог одной попытки создания товара.
// Success равен true, если создан сам товар (этап 1); частичные сбои
// этапов 2-4 попадают в Details и не отменяют успех.
type CreationResult struct {
	Success         bool             `json:"success"`
	ProductID       int64            `json:"product_id,omitempty"`
	CreatedVariants []CreatedVariant `json:"created_variants"`
	Error           string           `json:"error,omitempty"`
	Details         []StageFailure   `json:"details,omitempty"`
}

// Partial сообщает, были ли сбои на этапах 2-4 при созданном товаре.
func (r CreationResult) Partial() bool {
	return r.Success && len(r.Details) > 0
}
