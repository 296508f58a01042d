package dto

type StockFilters struct {
	MerchantID string
	ProductID  string
	LocationID string
	LowStock   bool // available quantity <= reorder point
	Page       int
	PageSize   int
}
