package purchase

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/purchase/dto"
)

type Repository interface {
	CreateWithItems(ctx context.Context, po *model.PurchaseOrder, items []model.PurchaseOrderItem) error
	FindByID(ctx context.Context, merchantID, id string) (*model.PurchaseOrder, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.PurchaseOrder, int, error)
	FindItemByID(ctx context.Context, merchantID, itemID string) (*model.PurchaseOrderItem, error)
	FindItemsByOrder(ctx context.Context, merchantID, orderID string) ([]model.PurchaseOrderItem, error)

	// Item mutations recalculate the order total in the same transaction so
	// total_amount never drifts from the sum of item totals.
	AddItem(ctx context.Context, item *model.PurchaseOrderItem) error
	UpdateItem(ctx context.Context, item *model.PurchaseOrderItem) error
	RemoveItem(ctx context.Context, merchantID, orderID, itemID string) error
	RecalculateTotal(ctx context.Context, merchantID, orderID string) error

	// ReceiveItem credits stock, appends the STOCK_RECEIVED ledger row,
	// bumps received_qty and recomputes the order status, all in one
	// transaction. The received_qty increment is guarded so receiving past
	// the ordered quantity affects zero rows.
	ReceiveItem(ctx context.Context, item *model.PurchaseOrderItem, quantity int64, locationID string, event *model.InventoryEvent, receivedBy string) (*model.PurchaseOrder, error)

	UpdateStatus(ctx context.Context, merchantID, id string, from []model.OrderStatus, to model.OrderStatus) (bool, error)
	Delete(ctx context.Context, merchantID, id string) (bool, error)
}
