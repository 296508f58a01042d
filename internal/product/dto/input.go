package dto

type CreateProductInput struct {
	MerchantID  string
	SKU         string
	Barcode     string
	Name        string
	Description string
	CostPrice   float64
	SalePrice   float64
}

// UpdateProductInput patches a product conditioned on ExpectedVersion.
type UpdateProductInput struct {
	MerchantID      string
	ID              string
	ExpectedVersion int64

	SKU         *string
	Barcode     *string
	Name        *string
	Description *string
	CostPrice   *float64
	SalePrice   *float64
	IsActive    *bool
}

type ProductFilters struct {
	MerchantID     string
	SearchQuery    string
	IsActive       *bool
	IncludeDeleted bool
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
