package model

import "time"

type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferInTransit TransferStatus = "IN_TRANSIT"
	TransferCompleted TransferStatus = "COMPLETED"
	TransferCancelled TransferStatus = "CANCELLED"
)

// Terminal reports whether no further transition is permitted.
func (s TransferStatus) Terminal() bool {
	return s == TransferCompleted || s == TransferCancelled
}

// StockTransfer moves a fixed quantity of one product between two locations.
// Stock moves exactly once, at the COMPLETED transition.
type StockTransfer struct {
	BaseModel
	MerchantID     string         `db:"merchant_id" json:"merchant_id"`
	ProductID      string         `db:"product_id" json:"product_id"`
	FromLocationID string         `db:"from_location_id" json:"from_location_id"`
	ToLocationID   string         `db:"to_location_id" json:"to_location_id"`
	Quantity       int64          `db:"quantity" json:"quantity"`
	Status         TransferStatus `db:"status" json:"status"`
	Notes          *string        `db:"notes" json:"notes"`
	RequestedBy    string         `db:"requested_by" json:"requested_by"`
	CompletedBy    *string        `db:"completed_by" json:"completed_by"`
	CompletedAt    *time.Time     `db:"completed_at" json:"completed_at"`
}
