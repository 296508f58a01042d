package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/stock"
	"github.com/fekuna/omnipos-inventory-service/internal/stock/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperrors"
	"github.com/fekuna/omnipos-inventory-service/pkg/broker"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"go.uber.org/zap"
)

// deductAttempts bounds the version-refresh retry loop for one sale line.
// The ledger itself never retries; as the caller, the listener does.
const deductAttempts = 3

type StockListener struct {
	consumer *broker.KafkaConsumer
	uc       stock.UseCase
	logger   logger.ZapLogger
}

func NewStockListener(consumer *broker.KafkaConsumer, uc stock.UseCase, logger logger.ZapLogger) *StockListener {
	return &StockListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *StockListener) Start(ctx context.Context) {
	l.logger.Info("Starting stock Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping stock Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type OrderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID         string             `json:"id"`
	MerchantID string             `json:"merchant_id"`
	LocationID string             `json:"location_id"`
	Items      []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

func (l *StockListener) processMessage(ctx context.Context, value []byte) {
	var event OrderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != "OrderCreated" {
		return
	}

	l.logger.Info("Processing OrderCreated event", zap.String("order_id", event.Payload.ID))

	for _, item := range event.Payload.Items {
		if err := l.deductWithRetry(ctx, &event.Payload, &item); err != nil {
			l.logger.Error("Failed to deduct stock for order item",
				zap.String("order_id", event.Payload.ID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
		}
	}
}

// deductWithRetry chains versions: read the current balance, deduct against
// its version, refresh and try again on conflict.
func (l *StockListener) deductWithRetry(ctx context.Context, order *OrderPayload, item *OrderItemPayload) error {
	var lastErr error
	for i := 0; i < deductAttempts; i++ {
		lvl, err := l.uc.GetStockLevel(ctx, order.MerchantID, item.ProductID, order.LocationID)
		if err != nil {
			return err
		}

		err = l.uc.DeductStock(ctx, &dto.DeductStockInput{
			MerchantID:      order.MerchantID,
			ProductID:       item.ProductID,
			LocationID:      order.LocationID,
			Quantity:        item.Quantity,
			ExpectedVersion: lvl.Version,
			Notes:           "Order sale",
			ReferenceType:   "sale",
			ReferenceID:     order.ID,
			UserID:          "",
		})
		if err == nil {
			return nil
		}
		if !apperrors.IsConflict(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}
