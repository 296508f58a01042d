package product

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product/dto"
)

type Repository interface {
	Create(ctx context.Context, p *model.Product) error
	// FindByID excludes soft-deleted products.
	FindByID(ctx context.Context, merchantID, id string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)

	// Update persists the product only when the stored version still equals
	// expectedVersion, bumping it on success. Zero affected rows is a
	// conflict the caller surfaces, never retries.
	Update(ctx context.Context, p *model.Product, expectedVersion int64) (bool, error)

	SoftDelete(ctx context.Context, merchantID, id string) (bool, error)

	IsSKUUnique(ctx context.Context, merchantID, sku, excludeID string) (bool, error)
	IsBarcodeUnique(ctx context.Context, merchantID, barcode, excludeID string) (bool, error)
}
