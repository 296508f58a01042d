package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/purchase"
	"github.com/fekuna/omnipos-inventory-service/internal/purchase/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperrors"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const referenceTypePurchaseOrder = "purchase_order"

type purchaseUseCase struct {
	repo   purchase.Repository
	logger logger.ZapLogger
}

func NewPurchaseUseCase(repo purchase.Repository, log logger.ZapLogger) purchase.UseCase {
	return &purchaseUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *purchaseUseCase) Create(ctx context.Context, input *dto.CreateOrderInput) (*model.PurchaseOrder, error) {
	if input.MerchantID == "" {
		return nil, apperrors.Validation("merchant id is required")
	}
	if input.OrderNo == "" {
		return nil, apperrors.Validation("order number is required")
	}

	now := time.Now()
	status := model.OrderDraft
	if input.MarkOrdered {
		status = model.OrderOrdered
	}

	po := &model.PurchaseOrder{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MerchantID:   input.MerchantID,
		OrderNo:      input.OrderNo,
		SupplierName: input.SupplierName,
		Status:       status,
		Notes:        optional(input.Notes),
		OrderedBy:    input.OrderedBy,
	}

	items := make([]model.PurchaseOrderItem, 0, len(input.Items))
	for _, in := range input.Items {
		item, err := buildItem(po, &in, now)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
		po.TotalAmount += item.TotalCost
	}

	if err := uc.repo.CreateWithItems(ctx, po, items); err != nil {
		return nil, err
	}
	po.Items = items
	return po, nil
}

func buildItem(po *model.PurchaseOrder, in *dto.OrderItemInput, now time.Time) (*model.PurchaseOrderItem, error) {
	if in.ProductID == "" {
		return nil, apperrors.Validation("item product id is required")
	}
	if in.Quantity <= 0 {
		return nil, apperrors.Validation("item quantity must be positive")
	}
	return &model.PurchaseOrderItem{
		ID:         uuid.New().String(),
		MerchantID: po.MerchantID,
		OrderID:    po.ID,
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
		TotalCost:  float64(in.Quantity) * in.UnitCost,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (uc *purchaseUseCase) Get(ctx context.Context, merchantID, id string) (*model.PurchaseOrder, error) {
	po, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, apperrors.NotFound("purchase order %s not found", id)
	}
	return po, nil
}

func (uc *purchaseUseCase) FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.PurchaseOrder, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

// editable rejects item changes once an order has moved past ORDERED.
func editable(po *model.PurchaseOrder) error {
	if po.Status != model.OrderDraft && po.Status != model.OrderOrdered {
		return apperrors.InvalidState("purchase order %s is %s and can no longer be edited", po.ID, po.Status)
	}
	return nil
}

func (uc *purchaseUseCase) AddItem(ctx context.Context, merchantID, orderID string, input *dto.OrderItemInput) (*model.PurchaseOrderItem, error) {
	po, err := uc.Get(ctx, merchantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := editable(po); err != nil {
		return nil, err
	}

	item, err := buildItem(po, input, time.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.repo.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (uc *purchaseUseCase) UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*model.PurchaseOrderItem, error) {
	item, err := uc.repo.FindItemByID(ctx, input.MerchantID, input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NotFound("purchase order item %s not found", input.ItemID)
	}

	po, err := uc.Get(ctx, input.MerchantID, item.OrderID)
	if err != nil {
		return nil, err
	}
	if err := editable(po); err != nil {
		return nil, err
	}

	if input.Quantity <= 0 {
		return nil, apperrors.Validation("item quantity must be positive")
	}
	if input.Quantity < item.ReceivedQty {
		return nil, apperrors.InvalidState("cannot reduce ordered quantity below the %d already received", item.ReceivedQty)
	}

	item.Quantity = input.Quantity
	item.UnitCost = input.UnitCost
	item.TotalCost = float64(input.Quantity) * input.UnitCost
	item.UpdatedAt = time.Now()

	if err := uc.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (uc *purchaseUseCase) RemoveItem(ctx context.Context, merchantID, itemID string) error {
	item, err := uc.repo.FindItemByID(ctx, merchantID, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return apperrors.NotFound("purchase order item %s not found", itemID)
	}

	po, err := uc.Get(ctx, merchantID, item.OrderID)
	if err != nil {
		return err
	}
	if err := editable(po); err != nil {
		return err
	}
	if item.ReceivedQty > 0 {
		return apperrors.InvalidState("cannot remove item %s: %d units already received", itemID, item.ReceivedQty)
	}

	return uc.repo.RemoveItem(ctx, merchantID, item.OrderID, itemID)
}

func (uc *purchaseUseCase) ReceiveItem(ctx context.Context, input *dto.ReceiveItemInput) (*model.PurchaseOrder, error) {
	if input.Quantity <= 0 {
		return nil, apperrors.Validation("received quantity must be positive")
	}
	if input.LocationID == "" {
		return nil, apperrors.Validation("location id is required")
	}

	item, err := uc.repo.FindItemByID(ctx, input.MerchantID, input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NotFound("purchase order item %s not found", input.ItemID)
	}

	po, err := uc.Get(ctx, input.MerchantID, item.OrderID)
	if err != nil {
		return nil, err
	}
	if po.Status != model.OrderOrdered && po.Status != model.OrderPartial {
		return nil, apperrors.InvalidState("purchase order %s is %s and cannot receive stock", po.ID, po.Status)
	}

	ev := &model.InventoryEvent{
		ID:            uuid.New().String(),
		MerchantID:    input.MerchantID,
		EventType:     model.EventStockReceived,
		ProductID:     item.ProductID,
		LocationID:    &input.LocationID,
		QuantityDelta: input.Quantity,
		ReferenceType: strPtr(referenceTypePurchaseOrder),
		ReferenceID:   &item.OrderID,
		Notes:         "Received against " + po.OrderNo,
		CreatedBy:     optional(input.UserID),
		CreatedAt:     time.Now(),
	}

	updated, err := uc.repo.ReceiveItem(ctx, item, input.Quantity, input.LocationID, ev, input.UserID)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("purchase order item received",
		zap.String("order_id", item.OrderID),
		zap.String("item_id", item.ID),
		zap.Int64("quantity", input.Quantity),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

func (uc *purchaseUseCase) MarkAsOrdered(ctx context.Context, merchantID, id string) (*model.PurchaseOrder, error) {
	ok, err := uc.repo.UpdateStatus(ctx, merchantID, id, []model.OrderStatus{model.OrderDraft}, model.OrderOrdered)
	if err != nil {
		return nil, err
	}
	if !ok {
		po, err := uc.Get(ctx, merchantID, id)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.InvalidState("purchase order %s is %s, only DRAFT orders can be marked ordered", id, po.Status)
	}
	return uc.Get(ctx, merchantID, id)
}

func (uc *purchaseUseCase) MarkAsReceived(ctx context.Context, merchantID, id, locationID, userID string) (*model.PurchaseOrder, error) {
	po, err := uc.Get(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if po.Status != model.OrderOrdered && po.Status != model.OrderPartial {
		return nil, apperrors.InvalidState("purchase order %s is %s and cannot be received", id, po.Status)
	}

	for i := range po.Items {
		item := &po.Items[i]
		remaining := item.Quantity - item.ReceivedQty
		if remaining <= 0 {
			continue
		}
		if _, err := uc.ReceiveItem(ctx, &dto.ReceiveItemInput{
			MerchantID: merchantID,
			ItemID:     item.ID,
			Quantity:   remaining,
			LocationID: locationID,
			UserID:     userID,
		}); err != nil {
			return nil, err
		}
	}

	return uc.Get(ctx, merchantID, id)
}

func (uc *purchaseUseCase) Cancel(ctx context.Context, merchantID, id string) (*model.PurchaseOrder, error) {
	ok, err := uc.repo.UpdateStatus(ctx, merchantID, id,
		[]model.OrderStatus{model.OrderDraft, model.OrderOrdered, model.OrderPartial}, model.OrderCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		po, err := uc.Get(ctx, merchantID, id)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.InvalidState("purchase order %s is %s and cannot be cancelled", id, po.Status)
	}
	return uc.Get(ctx, merchantID, id)
}

func (uc *purchaseUseCase) Delete(ctx context.Context, merchantID, id string) error {
	po, err := uc.Get(ctx, merchantID, id)
	if err != nil {
		return err
	}

	ok, err := uc.repo.Delete(ctx, merchantID, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.InvalidState("only DRAFT purchase orders can be deleted, order %s is %s", id, po.Status)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strPtr(s string) *string { return &s }
