package location

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/location/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, l *model.Location) error
	FindByID(ctx context.Context, merchantID, id string) (*model.Location, error)
	FindAll(ctx context.Context, filters *dto.LocationFilters) ([]model.Location, int, error)
	Update(ctx context.Context, l *model.Location) error
	// SetPrimary demotes any current primary and promotes id in one
	// transaction, keeping at most one primary per merchant.
	SetPrimary(ctx context.Context, merchantID, id string) error
}
