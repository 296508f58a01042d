package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/transfer"
	"github.com/fekuna/omnipos-inventory-service/internal/transfer/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperrors"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const referenceTypeTransfer = "transfer"

type transferUseCase struct {
	repo   transfer.Repository
	logger logger.ZapLogger
}

func NewTransferUseCase(repo transfer.Repository, log logger.ZapLogger) transfer.UseCase {
	return &transferUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *transferUseCase) Create(ctx context.Context, input *dto.CreateTransferInput) (*model.StockTransfer, error) {
	if input.MerchantID == "" || input.ProductID == "" {
		return nil, apperrors.Validation("merchant id and product id are required")
	}
	if input.FromLocationID == "" || input.ToLocationID == "" {
		return nil, apperrors.Validation("both locations are required")
	}
	if input.FromLocationID == input.ToLocationID {
		return nil, apperrors.Validation("source and destination locations must differ")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}

	now := time.Now()
	t := &model.StockTransfer{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MerchantID:     input.MerchantID,
		ProductID:      input.ProductID,
		FromLocationID: input.FromLocationID,
		ToLocationID:   input.ToLocationID,
		Quantity:       input.Quantity,
		Status:         model.TransferPending,
		Notes:          optional(input.Notes),
		RequestedBy:    input.RequestedBy,
	}

	if err := uc.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (uc *transferUseCase) Get(ctx context.Context, merchantID, id string) (*model.StockTransfer, error) {
	t, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperrors.NotFound("transfer %s not found", id)
	}
	return t, nil
}

func (uc *transferUseCase) FindAll(ctx context.Context, filters *dto.TransferFilters) ([]model.StockTransfer, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *transferUseCase) UpdateStatus(ctx context.Context, merchantID, id string, status model.TransferStatus, userID string) (*model.StockTransfer, error) {
	t, err := uc.Get(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}

	switch status {
	case model.TransferCompleted:
		return uc.complete(ctx, t, userID)

	case model.TransferInTransit:
		ok, err := uc.repo.UpdateStatus(ctx, merchantID, id, []model.TransferStatus{model.TransferPending}, status)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.InvalidState("transfer %s cannot move to IN_TRANSIT from %s", id, t.Status)
		}

	case model.TransferCancelled:
		ok, err := uc.repo.UpdateStatus(ctx, merchantID, id,
			[]model.TransferStatus{model.TransferPending, model.TransferInTransit}, status)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.InvalidState("transfer %s cannot be cancelled from %s", id, t.Status)
		}

	default:
		return nil, apperrors.Validation("invalid target status %q", status)
	}

	return uc.Get(ctx, merchantID, id)
}

func (uc *transferUseCase) complete(ctx context.Context, t *model.StockTransfer, userID string) (*model.StockTransfer, error) {
	// Re-invoking on an already completed transfer is a no-op, not a
	// double move.
	if t.Status == model.TransferCompleted {
		return t, nil
	}
	if t.Status == model.TransferCancelled {
		return nil, apperrors.InvalidState("transfer %s is cancelled", t.ID)
	}

	out := newTransferEvent(t, model.EventTransferOut, t.FromLocationID, -t.Quantity, userID)
	in := newTransferEvent(t, model.EventTransferIn, t.ToLocationID, t.Quantity, userID)

	moved, err := uc.repo.Complete(ctx, t, userID, out, in)
	if err != nil {
		return nil, err
	}
	if moved {
		uc.logger.Info("transfer completed",
			zap.String("transfer_id", t.ID),
			zap.String("product_id", t.ProductID),
			zap.Int64("quantity", t.Quantity),
		)
	}
	return uc.Get(ctx, t.MerchantID, t.ID)
}

func (uc *transferUseCase) Cancel(ctx context.Context, merchantID, id, userID string) (*model.StockTransfer, error) {
	return uc.UpdateStatus(ctx, merchantID, id, model.TransferCancelled, userID)
}

func (uc *transferUseCase) Delete(ctx context.Context, merchantID, id string) error {
	t, err := uc.Get(ctx, merchantID, id)
	if err != nil {
		return err
	}

	ok, err := uc.repo.Delete(ctx, merchantID, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.InvalidState("only PENDING transfers can be deleted, transfer %s is %s", id, t.Status)
	}
	return nil
}

func newTransferEvent(t *model.StockTransfer, eventType model.EventType, locationID string, delta int64, userID string) *model.InventoryEvent {
	refType := referenceTypeTransfer
	notes := ""
	if t.Notes != nil {
		notes = *t.Notes
	}
	return &model.InventoryEvent{
		ID:            uuid.New().String(),
		MerchantID:    t.MerchantID,
		EventType:     eventType,
		ProductID:     t.ProductID,
		LocationID:    &locationID,
		QuantityDelta: delta,
		ReferenceType: &refType,
		ReferenceID:   &t.ID,
		Notes:         notes,
		CreatedBy:     optional(userID),
		CreatedAt:     time.Now(),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
