package event

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/event/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// Repository records and queries inventory_events. Rows are append-only:
// there is no update path, and Delete exists only for administrative
// corrections by id.
type Repository interface {
	Insert(ctx context.Context, ev *model.InventoryEvent) error
	FindByID(ctx context.Context, merchantID, id string) (*model.InventoryEvent, error)
	FindMany(ctx context.Context, filters *dto.EventFilters) ([]model.InventoryEvent, int, error)
	GetRecent(ctx context.Context, merchantID string, limit int) ([]model.InventoryEvent, error)
	GetStats(ctx context.Context, merchantID string, filters *dto.EventFilters) ([]dto.EventTypeStat, error)
	GetProductSummary(ctx context.Context, merchantID, productID string, lastN int) (*dto.ProductEventSummary, error)
	Delete(ctx context.Context, merchantID, id string) error
}
