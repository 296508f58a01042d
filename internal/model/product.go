package model

import "time"

type Product struct {
	BaseModel
	MerchantID  string     `db:"merchant_id" json:"merchant_id"`
	SKU         string     `db:"sku" json:"sku"`
	Barcode     *string    `db:"barcode" json:"barcode"` // Nullable
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description"`
	CostPrice   float64    `db:"cost_price" json:"cost_price"`
	SalePrice   float64    `db:"sale_price" json:"sale_price"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	DeletedAt   *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	Version     int64      `db:"version" json:"version"`
}
