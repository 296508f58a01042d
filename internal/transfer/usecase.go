package transfer

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/transfer/dto"
)

// UseCase drives the transfer state machine:
// PENDING -> IN_TRANSIT (informational) -> COMPLETED, or -> CANCELLED.
// Stock moves exactly once, at the COMPLETED transition.
type UseCase interface {
	Create(ctx context.Context, input *dto.CreateTransferInput) (*model.StockTransfer, error)
	Get(ctx context.Context, merchantID, id string) (*model.StockTransfer, error)
	FindAll(ctx context.Context, filters *dto.TransferFilters) ([]model.StockTransfer, int, error)
	UpdateStatus(ctx context.Context, merchantID, id string, status model.TransferStatus, userID string) (*model.StockTransfer, error)
	Cancel(ctx context.Context, merchantID, id, userID string) (*model.StockTransfer, error)
	Delete(ctx context.Context, merchantID, id string) error
}
