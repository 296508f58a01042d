package stock

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/stock/dto"
)

// Repository owns stock_levels rows. Every mutation is a single conditional
// statement; a mutation that also takes an event commits the balance change
// and the ledger append in one transaction, filling event.RunningBalance from
// the post-mutation state.
type Repository interface {
	Get(ctx context.Context, merchantID, productID, locationID string) (*model.StockLevel, error)
	GetQuantity(ctx context.Context, merchantID, productID, locationID string) (int64, error)
	GetTotalQuantity(ctx context.Context, merchantID, productID string) (int64, error)
	FindAll(ctx context.Context, filters *dto.StockFilters) ([]model.StockLevel, int, error)

	// ApplyDeltaWithEvent adds delta to the balance, creating the row when
	// absent. A negative delta that would drive the balance below zero
	// affects no rows and fails. event may be nil.
	ApplyDeltaWithEvent(ctx context.Context, merchantID, productID, locationID string, delta int64, event *model.InventoryEvent) (*model.StockLevel, error)

	// SetQuantityWithEvent overwrites the balance with an absolute value.
	// event.QuantityDelta is filled from the pre-overwrite balance inside
	// the transaction; an overwrite that changes nothing appends no row.
	SetQuantityWithEvent(ctx context.Context, merchantID, productID, locationID string, quantity int64, event *model.InventoryEvent) (*model.StockLevel, error)

	// AddQuantityWithEvent is the conditional increment. With
	// expectedVersion the predicate includes version = expectedVersion and
	// zero affected rows is a conflict; the caller decides whether to
	// retry. event may be nil.
	AddQuantityWithEvent(ctx context.Context, merchantID, productID, locationID string, delta int64, expectedVersion *int64, event *model.InventoryEvent) (*model.StockLevel, error)

	// DeductWithEvent decrements only when both the version matches and the
	// balance covers the quantity.
	DeductWithEvent(ctx context.Context, merchantID, productID, locationID string, quantity, expectedVersion int64, event *model.InventoryEvent) (*model.StockLevel, error)

	// TransferWithEvents moves quantity between two locations of the same
	// product atomically: both balance rows and both ledger appends commit
	// together or not at all.
	TransferWithEvents(ctx context.Context, merchantID, productID, fromLocationID, toLocationID string, quantity int64, out, in *model.InventoryEvent) error
}
