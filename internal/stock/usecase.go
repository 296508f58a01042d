package stock

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/stock/dto"
)

type UseCase interface {
	GetStockLevel(ctx context.Context, merchantID, productID, locationID string) (*model.StockLevel, error)
	GetQuantity(ctx context.Context, merchantID, productID, locationID string) (int64, error)
	GetTotalQuantity(ctx context.Context, merchantID, productID string) (int64, error)
	ListStock(ctx context.Context, filters *dto.StockFilters) ([]model.StockLevel, int, error)
	ListLowStock(ctx context.Context, merchantID string, page, pageSize int) ([]model.StockLevel, int, error)

	UpsertStock(ctx context.Context, input *dto.UpsertStockInput) (*model.StockLevel, error)
	SetQuantity(ctx context.Context, input *dto.SetQuantityInput) (*model.StockLevel, error)
	AddQuantity(ctx context.Context, input *dto.AddQuantityInput) (*model.StockLevel, error)
	DeductStock(ctx context.Context, input *dto.DeductStockInput) error
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.StockLevel, error)
	TransferStock(ctx context.Context, input *dto.TransferStockInput) error
}
