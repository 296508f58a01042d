package purchase

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/purchase/dto"
)

type UseCase interface {
	Create(ctx context.Context, input *dto.CreateOrderInput) (*model.PurchaseOrder, error)
	Get(ctx context.Context, merchantID, id string) (*model.PurchaseOrder, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.PurchaseOrder, int, error)

	AddItem(ctx context.Context, merchantID, orderID string, input *dto.OrderItemInput) (*model.PurchaseOrderItem, error)
	UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*model.PurchaseOrderItem, error)
	RemoveItem(ctx context.Context, merchantID, itemID string) error

	// ReceiveItem reconciles one supplier delivery against an order line:
	// received_qty grows monotonically and never past the ordered quantity.
	ReceiveItem(ctx context.Context, input *dto.ReceiveItemInput) (*model.PurchaseOrder, error)

	MarkAsOrdered(ctx context.Context, merchantID, id string) (*model.PurchaseOrder, error)
	// MarkAsReceived receives every outstanding line quantity into the given
	// location and closes the order.
	MarkAsReceived(ctx context.Context, merchantID, id, locationID, userID string) (*model.PurchaseOrder, error)
	Cancel(ctx context.Context, merchantID, id string) (*model.PurchaseOrder, error)
	Delete(ctx context.Context, merchantID, id string) error
}
