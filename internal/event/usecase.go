package event

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/event/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type UseCase interface {
	// Record appends a standalone ledger entry, snapshotting the product's
	// current total as the running balance. Mutations that change balances
	// go through the stock ledger instead, which appends in-transaction.
	Record(ctx context.Context, input *dto.RecordEventInput) (*model.InventoryEvent, error)
	FindMany(ctx context.Context, filters *dto.EventFilters) ([]model.InventoryEvent, int, error)
	GetRecent(ctx context.Context, merchantID string, limit int) ([]model.InventoryEvent, error)
	GetStats(ctx context.Context, merchantID string, filters *dto.EventFilters) ([]dto.EventTypeStat, error)
	GetProductSummary(ctx context.Context, merchantID, productID string) (*dto.ProductEventSummary, error)
	Delete(ctx context.Context, merchantID, id string) error
}
