package model

import "time"

// StockLevel is the balance of one product at one location for one merchant.
// The (merchant_id, product_id, location_id) triple is unique at the schema
// level and the version column orders every applied mutation of the row.
type StockLevel struct {
	ID               string    `db:"id" json:"id"`
	MerchantID       string    `db:"merchant_id" json:"merchant_id"`
	ProductID        string    `db:"product_id" json:"product_id"`
	LocationID       string    `db:"location_id" json:"location_id"`
	Quantity         int64     `db:"quantity" json:"quantity"`
	ReservedQuantity int64     `db:"reserved_quantity" json:"reserved_quantity"`
	ReorderPoint     int64     `db:"reorder_point" json:"reorder_point"`
	Version          int64     `db:"version" json:"version"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

func (s *StockLevel) Available() int64 {
	return s.Quantity - s.ReservedQuantity
}
