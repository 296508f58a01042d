package model

import "time"

type OrderStatus string

const (
	OrderDraft     OrderStatus = "DRAFT"
	OrderOrdered   OrderStatus = "ORDERED"
	OrderPartial   OrderStatus = "PARTIAL"
	OrderReceived  OrderStatus = "RECEIVED"
	OrderCancelled OrderStatus = "CANCELLED"
)

type PurchaseOrder struct {
	BaseModel
	MerchantID   string      `db:"merchant_id" json:"merchant_id"`
	OrderNo      string      `db:"order_no" json:"order_no"`
	SupplierName string      `db:"supplier_name" json:"supplier_name"`
	Status       OrderStatus `db:"status" json:"status"`
	TotalAmount  float64     `db:"total_amount" json:"total_amount"`
	Notes        *string     `db:"notes" json:"notes"`
	OrderedBy    string      `db:"ordered_by" json:"ordered_by"`
	ReceivedBy   *string     `db:"received_by" json:"received_by"`
	ReceivedAt   *time.Time  `db:"received_at" json:"received_at"`

	Items []PurchaseOrderItem `db:"-" json:"items,omitempty"`
}

// PurchaseOrderItem tracks ordered vs received quantity for one line.
// received_qty <= quantity always, backed by a CHECK constraint.
type PurchaseOrderItem struct {
	ID          string    `db:"id" json:"id"`
	MerchantID  string    `db:"merchant_id" json:"merchant_id"`
	OrderID     string    `db:"order_id" json:"order_id"`
	ProductID   string    `db:"product_id" json:"product_id"`
	Quantity    int64     `db:"quantity" json:"quantity"`
	UnitCost    float64   `db:"unit_cost" json:"unit_cost"`
	TotalCost   float64   `db:"total_cost" json:"total_cost"`
	ReceivedQty int64     `db:"received_qty" json:"received_qty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
