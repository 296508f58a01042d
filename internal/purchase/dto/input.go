package dto

import "github.com/fekuna/omnipos-inventory-service/internal/model"

type CreateOrderInput struct {
	MerchantID   string
	OrderNo      string
	SupplierName string
	Notes        string
	OrderedBy    string
	// MarkOrdered creates the order directly in ORDERED instead of DRAFT.
	MarkOrdered bool
	Items       []OrderItemInput
}

type OrderItemInput struct {
	ProductID string
	Quantity  int64
	UnitCost  float64
}

type UpdateItemInput struct {
	MerchantID string
	ItemID     string
	Quantity   int64
	UnitCost   float64
}

type ReceiveItemInput struct {
	MerchantID string
	ItemID     string
	Quantity   int64
	LocationID string
	UserID     string
}

type OrderFilters struct {
	MerchantID string
	Status     model.OrderStatus
	Page       int
	PageSize   int
}
