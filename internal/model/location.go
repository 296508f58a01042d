package model

type LocationType string

const (
	LocationWarehouse LocationType = "warehouse"
	LocationStore     LocationType = "store"
	LocationVirtual   LocationType = "virtual"
)

type Location struct {
	BaseModel
	MerchantID string       `db:"merchant_id" json:"merchant_id"`
	Name       string       `db:"name" json:"name"`
	Type       LocationType `db:"type" json:"type"`
	IsActive   bool         `db:"is_active" json:"is_active"`
	IsPrimary  bool         `db:"is_primary" json:"is_primary"`
}
