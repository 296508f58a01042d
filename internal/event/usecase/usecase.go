package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/event"
	"github.com/fekuna/omnipos-inventory-service/internal/event/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperrors"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const productSummaryEvents = 20

// BalanceReader supplies the product total used as the running balance of a
// standalone Record. Satisfied by the stock repository.
type BalanceReader interface {
	GetTotalQuantity(ctx context.Context, merchantID, productID string) (int64, error)
}

type eventUseCase struct {
	repo     event.Repository
	balances BalanceReader
	logger   logger.ZapLogger
}

func NewEventUseCase(repo event.Repository, balances BalanceReader, log logger.ZapLogger) event.UseCase {
	return &eventUseCase{
		repo:     repo,
		balances: balances,
		logger:   log,
	}
}

func (uc *eventUseCase) Record(ctx context.Context, input *dto.RecordEventInput) (*model.InventoryEvent, error) {
	if input.MerchantID == "" || input.ProductID == "" {
		return nil, apperrors.Validation("merchant id and product id are required")
	}
	if input.EventType == "" {
		return nil, apperrors.Validation("event type is required")
	}

	total, err := uc.balances.GetTotalQuantity(ctx, input.MerchantID, input.ProductID)
	if err != nil {
		return nil, err
	}

	ev := &model.InventoryEvent{
		ID:             uuid.New().String(),
		MerchantID:     input.MerchantID,
		EventType:      input.EventType,
		ProductID:      input.ProductID,
		LocationID:     optional(input.LocationID),
		QuantityDelta:  input.QuantityDelta,
		RunningBalance: total,
		ReferenceType:  optional(input.ReferenceType),
		ReferenceID:    optional(input.ReferenceID),
		Notes:          input.Notes,
		CreatedBy:      optional(input.UserID),
		CreatedAt:      time.Now(),
	}

	if err := uc.repo.Insert(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

func (uc *eventUseCase) FindMany(ctx context.Context, filters *dto.EventFilters) ([]model.InventoryEvent, int, error) {
	return uc.repo.FindMany(ctx, filters)
}

func (uc *eventUseCase) GetRecent(ctx context.Context, merchantID string, limit int) ([]model.InventoryEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	return uc.repo.GetRecent(ctx, merchantID, limit)
}

func (uc *eventUseCase) GetStats(ctx context.Context, merchantID string, filters *dto.EventFilters) ([]dto.EventTypeStat, error) {
	return uc.repo.GetStats(ctx, merchantID, filters)
}

func (uc *eventUseCase) GetProductSummary(ctx context.Context, merchantID, productID string) (*dto.ProductEventSummary, error) {
	return uc.repo.GetProductSummary(ctx, merchantID, productID, productSummaryEvents)
}

// Delete is an administrative correction. It does not rebalance anything:
// undoing a balance change requires an explicit compensating event instead.
func (uc *eventUseCase) Delete(ctx context.Context, merchantID, id string) error {
	ev, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return err
	}
	if ev == nil {
		return apperrors.NotFound("inventory event %s not found", id)
	}

	uc.logger.Warn("deleting ledger event",
		zap.String("event_id", id),
		zap.String("merchant_id", merchantID),
		zap.String("event_type", string(ev.EventType)),
		zap.Int64("quantity_delta", ev.QuantityDelta),
	)
	return uc.repo.Delete(ctx, merchantID, id)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
