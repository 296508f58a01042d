package transfer

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/transfer/dto"
)

type Repository interface {
	Create(ctx context.Context, t *model.StockTransfer) error
	FindByID(ctx context.Context, merchantID, id string) (*model.StockTransfer, error)
	FindAll(ctx context.Context, filters *dto.TransferFilters) ([]model.StockTransfer, int, error)

	// UpdateStatus applies a non-moving transition. The predicate pins the
	// set of statuses the transition is valid from; zero affected rows means
	// the transfer was not in any of them.
	UpdateStatus(ctx context.Context, merchantID, id string, from []model.TransferStatus, to model.TransferStatus) (bool, error)

	// Complete moves the stock and finalizes the transfer in one
	// transaction. moved is false when the transfer was already completed
	// by a concurrent caller (idempotent no-op).
	Complete(ctx context.Context, t *model.StockTransfer, completedBy string, out, in *model.InventoryEvent) (moved bool, err error)

	// Delete removes the transfer only while it is still PENDING.
	Delete(ctx context.Context, merchantID, id string) (bool, error)
}
