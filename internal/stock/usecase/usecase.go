package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/stock"
	"github.com/fekuna/omnipos-inventory-service/internal/stock/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperrors"
	"github.com/fekuna/omnipos-inventory-service/pkg/cache"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stockUseCase struct {
	repo   stock.Repository
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

func NewStockUseCase(repo stock.Repository, cache *cache.RedisClient, log logger.ZapLogger) stock.UseCase {
	return &stockUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (uc *stockUseCase) GetStockLevel(ctx context.Context, merchantID, productID, locationID string) (*model.StockLevel, error) {
	lvl, err := uc.repo.Get(ctx, merchantID, productID, locationID)
	if err != nil {
		return nil, err
	}
	if lvl == nil {
		// No row until the first movement; report a zero balance.
		return &model.StockLevel{
			MerchantID: merchantID,
			ProductID:  productID,
			LocationID: locationID,
			Quantity:   0,
		}, nil
	}
	return lvl, nil
}

func (uc *stockUseCase) GetQuantity(ctx context.Context, merchantID, productID, locationID string) (int64, error) {
	return uc.repo.GetQuantity(ctx, merchantID, productID, locationID)
}

func (uc *stockUseCase) GetTotalQuantity(ctx context.Context, merchantID, productID string) (int64, error) {
	return uc.repo.GetTotalQuantity(ctx, merchantID, productID)
}

func (uc *stockUseCase) ListStock(ctx context.Context, filters *dto.StockFilters) ([]model.StockLevel, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *stockUseCase) ListLowStock(ctx context.Context, merchantID string, page, pageSize int) ([]model.StockLevel, int, error) {
	return uc.repo.FindAll(ctx, &dto.StockFilters{
		MerchantID: merchantID,
		LowStock:   true,
		Page:       page,
		PageSize:   pageSize,
	})
}

func (uc *stockUseCase) UpsertStock(ctx context.Context, input *dto.UpsertStockInput) (*model.StockLevel, error) {
	if err := requireKey(input.MerchantID, input.ProductID, input.LocationID); err != nil {
		return nil, err
	}
	if input.Quantity == 0 {
		return nil, apperrors.Validation("quantity delta must be non-zero")
	}

	ev := newEvent(input.MerchantID, model.EventAdjustment, input.ProductID, input.LocationID, input.Quantity, input.Notes, input.UserID)
	ev.ReferenceType = optional(input.ReferenceType)
	ev.ReferenceID = optional(input.ReferenceID)

	return uc.repo.ApplyDeltaWithEvent(ctx, input.MerchantID, input.ProductID, input.LocationID, input.Quantity, ev)
}

func (uc *stockUseCase) SetQuantity(ctx context.Context, input *dto.SetQuantityInput) (*model.StockLevel, error) {
	if err := requireKey(input.MerchantID, input.ProductID, input.LocationID); err != nil {
		return nil, err
	}
	if input.Quantity < 0 {
		return nil, apperrors.Validation("quantity must not be negative")
	}

	// The repository fills the signed delta from the pre-overwrite balance.
	ev := newEvent(input.MerchantID, model.EventAdjustment, input.ProductID, input.LocationID, 0, input.Notes, input.UserID)

	return uc.repo.SetQuantityWithEvent(ctx, input.MerchantID, input.ProductID, input.LocationID, input.Quantity, ev)
}

func (uc *stockUseCase) AddQuantity(ctx context.Context, input *dto.AddQuantityInput) (*model.StockLevel, error) {
	if err := requireKey(input.MerchantID, input.ProductID, input.LocationID); err != nil {
		return nil, err
	}
	if input.Delta == 0 {
		return nil, apperrors.Validation("quantity delta must be non-zero")
	}

	ev := newEvent(input.MerchantID, model.EventAdjustment, input.ProductID, input.LocationID, input.Delta, input.Notes, input.UserID)

	return uc.repo.AddQuantityWithEvent(ctx, input.MerchantID, input.ProductID, input.LocationID, input.Delta, input.ExpectedVersion, ev)
}

func (uc *stockUseCase) DeductStock(ctx context.Context, input *dto.DeductStockInput) error {
	if err := requireKey(input.MerchantID, input.ProductID, input.LocationID); err != nil {
		return err
	}
	if input.Quantity <= 0 {
		return apperrors.Validation("quantity must be positive")
	}

	ev := newEvent(input.MerchantID, model.EventStockSold, input.ProductID, input.LocationID, -input.Quantity, input.Notes, input.UserID)
	ev.ReferenceType = optional(input.ReferenceType)
	ev.ReferenceID = optional(input.ReferenceID)

	_, err := uc.repo.DeductWithEvent(ctx, input.MerchantID, input.ProductID, input.LocationID, input.Quantity, input.ExpectedVersion, ev)
	return err
}

// AdjustStock sets an absolute balance and records the signed delta. The
// redis lock shapes contention between concurrent manual adjustments; the
// conditional statement remains the correctness guard.
func (uc *stockUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.StockLevel, error) {
	if err := requireKey(input.MerchantID, input.ProductID, input.LocationID); err != nil {
		return nil, err
	}
	if input.NewQuantity < 0 {
		return nil, apperrors.Validation("quantity must not be negative")
	}

	if uc.cache != nil {
		lockKey := fmt.Sprintf("lock:stock:%s:%s:%s", input.MerchantID, input.ProductID, input.LocationID)
		lockValue := uuid.New().String()

		acquired := false
		for i := 0; i < 3; i++ {
			ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
			if err != nil {
				uc.logger.Error("failed to acquire stock lock", zap.Error(err))
			}
			if ok {
				acquired = true
				break
			}
			time.Sleep(100 * time.Millisecond)
		}
		if !acquired {
			return nil, apperrors.Conflict("stock level %s/%s is being adjusted, try again", input.ProductID, input.LocationID)
		}
		defer uc.cache.ReleaseLock(ctx, lockKey, lockValue)
	}

	current, err := uc.repo.Get(ctx, input.MerchantID, input.ProductID, input.LocationID)
	if err != nil {
		return nil, err
	}

	var currentQty, reserved int64
	if current != nil {
		currentQty = current.Quantity
		reserved = current.ReservedQuantity
	}

	if !input.Force && input.NewQuantity < reserved {
		return nil, apperrors.InvalidState(
			"adjusting below reserved quantity %d requires force", reserved)
	}

	delta := input.NewQuantity - currentQty
	var ev *model.InventoryEvent
	if delta != 0 {
		ev = newEvent(input.MerchantID, model.EventAdjustment, input.ProductID, input.LocationID, delta, input.Notes, input.UserID)
	}

	return uc.repo.SetQuantityWithEvent(ctx, input.MerchantID, input.ProductID, input.LocationID, input.NewQuantity, ev)
}

func (uc *stockUseCase) TransferStock(ctx context.Context, input *dto.TransferStockInput) error {
	if err := requireKey(input.MerchantID, input.ProductID, input.FromLocationID); err != nil {
		return err
	}
	if input.ToLocationID == "" {
		return apperrors.Validation("destination location is required")
	}
	if input.FromLocationID == input.ToLocationID {
		return apperrors.Validation("source and destination locations must differ")
	}
	if input.Quantity <= 0 {
		return apperrors.Validation("quantity must be positive")
	}

	out := newEvent(input.MerchantID, model.EventTransferOut, input.ProductID, input.FromLocationID, -input.Quantity, input.Notes, input.UserID)
	in := newEvent(input.MerchantID, model.EventTransferIn, input.ProductID, input.ToLocationID, input.Quantity, input.Notes, input.UserID)
	for _, ev := range []*model.InventoryEvent{out, in} {
		ev.ReferenceType = optional(input.ReferenceType)
		ev.ReferenceID = optional(input.ReferenceID)
	}

	return uc.repo.TransferWithEvents(ctx, input.MerchantID, input.ProductID, input.FromLocationID, input.ToLocationID, input.Quantity, out, in)
}

func newEvent(merchantID string, eventType model.EventType, productID, locationID string, delta int64, notes, userID string) *model.InventoryEvent {
	return &model.InventoryEvent{
		ID:            uuid.New().String(),
		MerchantID:    merchantID,
		EventType:     eventType,
		ProductID:     productID,
		LocationID:    optional(locationID),
		QuantityDelta: delta,
		Notes:         notes,
		CreatedBy:     optional(userID),
		CreatedAt:     time.Now(),
	}
}

func requireKey(merchantID, productID, locationID string) error {
	if merchantID == "" {
		return apperrors.Validation("merchant id is required")
	}
	if productID == "" {
		return apperrors.Validation("product id is required")
	}
	if locationID == "" {
		return apperrors.Validation("location id is required")
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
