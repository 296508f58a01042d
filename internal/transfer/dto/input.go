package dto

import "github.com/fekuna/omnipos-inventory-service/internal/model"

type CreateTransferInput struct {
	MerchantID     string
	ProductID      string
	FromLocationID string
	ToLocationID   string
	Quantity       int64
	Notes          string
	RequestedBy    string
}

type TransferFilters struct {
	MerchantID string
	ProductID  string
	LocationID string // matches either side
	Status     model.TransferStatus
	Page       int
	PageSize   int
}
