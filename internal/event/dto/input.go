package dto

import "github.com/fekuna/omnipos-inventory-service/internal/model"

type RecordEventInput struct {
	MerchantID    string
	EventType     model.EventType
	ProductID     string
	LocationID    string
	QuantityDelta int64
	Notes         string
	ReferenceType string
	ReferenceID   string
	UserID        string
}
