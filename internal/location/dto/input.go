package dto

import "github.com/fekuna/omnipos-inventory-service/internal/model"

type CreateLocationInput struct {
	MerchantID string
	Name       string
	Type       model.LocationType
	IsPrimary  bool
}

type UpdateLocationInput struct {
	MerchantID string
	ID         string
	Name       string
	Type       model.LocationType
	IsActive   bool
}

type LocationFilters struct {
	MerchantID string
	Type       model.LocationType
	IsActive   *bool
	Page       int
	PageSize   int
}
