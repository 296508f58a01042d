package model

import "time"

type EventType string

const (
	EventStockSold     EventType = "STOCK_SOLD"
	EventAdjustment    EventType = "ADJUSTMENT"
	EventTransferOut   EventType = "TRANSFER_OUT"
	EventTransferIn    EventType = "TRANSFER_IN"
	EventStockReceived EventType = "STOCK_RECEIVED"
)

// InventoryEvent is one append-only ledger row. Rows are never updated;
// summing quantity_delta per product must reconcile with the product's
// current total balance.
type InventoryEvent struct {
	ID             string    `db:"id" json:"id"`
	MerchantID     string    `db:"merchant_id" json:"merchant_id"`
	EventType      EventType `db:"event_type" json:"event_type"`
	ProductID      string    `db:"product_id" json:"product_id"`
	LocationID     *string   `db:"location_id" json:"location_id"`
	QuantityDelta  int64     `db:"quantity_delta" json:"quantity_delta"`
	RunningBalance int64     `db:"running_balance" json:"running_balance"`
	ReferenceType  *string   `db:"reference_type" json:"reference_type"`
	ReferenceID    *string   `db:"reference_id" json:"reference_id"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedBy      *string   `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
