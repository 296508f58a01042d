package listener

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/stock/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperrors"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStockUseCase tracks one balance with a version and can be told to
// conflict a fixed number of times before a deduct applies.
type mockStockUseCase struct {
	mu        sync.Mutex
	quantity  int64
	version   int64
	conflicts int
	deducted  []dto.DeductStockInput
}

func (m *mockStockUseCase) GetStockLevel(ctx context.Context, merchantID, productID, locationID string) (*model.StockLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &model.StockLevel{
		MerchantID: merchantID,
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   m.quantity,
		Version:    m.version,
	}, nil
}

func (m *mockStockUseCase) DeductStock(ctx context.Context, input *dto.DeductStockInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts > 0 {
		m.conflicts--
		m.version++
		return apperrors.Conflict("stock level version changed")
	}
	if input.ExpectedVersion != m.version {
		return apperrors.Conflict("stock level version changed")
	}
	if m.quantity < input.Quantity {
		return apperrors.InsufficientStock("cannot deduct %d", input.Quantity)
	}
	m.quantity -= input.Quantity
	m.version++
	m.deducted = append(m.deducted, *input)
	return nil
}

func (m *mockStockUseCase) GetQuantity(ctx context.Context, merchantID, productID, locationID string) (int64, error) {
	return 0, nil
}

func (m *mockStockUseCase) GetTotalQuantity(ctx context.Context, merchantID, productID string) (int64, error) {
	return 0, nil
}

func (m *mockStockUseCase) ListStock(ctx context.Context, filters *dto.StockFilters) ([]model.StockLevel, int, error) {
	return nil, 0, nil
}

func (m *mockStockUseCase) ListLowStock(ctx context.Context, merchantID string, page, pageSize int) ([]model.StockLevel, int, error) {
	return nil, 0, nil
}

func (m *mockStockUseCase) UpsertStock(ctx context.Context, input *dto.UpsertStockInput) (*model.StockLevel, error) {
	return nil, nil
}

func (m *mockStockUseCase) SetQuantity(ctx context.Context, input *dto.SetQuantityInput) (*model.StockLevel, error) {
	return nil, nil
}

func (m *mockStockUseCase) AddQuantity(ctx context.Context, input *dto.AddQuantityInput) (*model.StockLevel, error) {
	return nil, nil
}

func (m *mockStockUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.StockLevel, error) {
	return nil, nil
}

func (m *mockStockUseCase) TransferStock(ctx context.Context, input *dto.TransferStockInput) error {
	return nil
}

func newTestListener(uc *mockStockUseCase) *StockListener {
	return &StockListener{uc: uc, logger: logger.NewNopLogger()}
}

func orderPayload(t *testing.T, eventType string, items []OrderItemPayload) []byte {
	t.Helper()
	data, err := json.Marshal(OrderCreatedEvent{
		EventID:   "evt-1",
		EventType: eventType,
		Payload: OrderPayload{
			ID:         "order-1",
			MerchantID: "merchant-1",
			LocationID: "location-a",
			Items:      items,
		},
	})
	require.NoError(t, err)
	return data
}

func TestProcessMessage_DeductsEachItem(t *testing.T) {
	uc := &mockStockUseCase{quantity: 10, version: 3}
	l := newTestListener(uc)

	l.processMessage(context.Background(), orderPayload(t, "OrderCreated", []OrderItemPayload{
		{ProductID: "product-a", Quantity: 2},
		{ProductID: "product-b", Quantity: 1},
	}))

	require.Len(t, uc.deducted, 2)
	assert.Equal(t, int64(7), uc.quantity)
	assert.Equal(t, "sale", uc.deducted[0].ReferenceType)
	assert.Equal(t, "order-1", uc.deducted[0].ReferenceID)
	assert.Equal(t, "merchant-1", uc.deducted[0].MerchantID)
	assert.Equal(t, "location-a", uc.deducted[0].LocationID)
}

func TestProcessMessage_RetriesOnVersionConflict(t *testing.T) {
	uc := &mockStockUseCase{quantity: 10, version: 1, conflicts: 2}
	l := newTestListener(uc)

	l.processMessage(context.Background(), orderPayload(t, "OrderCreated", []OrderItemPayload{
		{ProductID: "product-a", Quantity: 4},
	}))

	require.Len(t, uc.deducted, 1)
	assert.Equal(t, int64(6), uc.quantity)
}

func TestProcessMessage_IgnoresOtherEventTypes(t *testing.T) {
	uc := &mockStockUseCase{quantity: 10, version: 1}
	l := newTestListener(uc)

	l.processMessage(context.Background(), orderPayload(t, "OrderCancelled", []OrderItemPayload{
		{ProductID: "product-a", Quantity: 4},
	}))

	assert.Empty(t, uc.deducted)
	assert.Equal(t, int64(10), uc.quantity)
}

func TestProcessMessage_MalformedPayload(t *testing.T) {
	uc := &mockStockUseCase{quantity: 10, version: 1}
	l := newTestListener(uc)

	l.processMessage(context.Background(), []byte("{not json"))

	assert.Empty(t, uc.deducted)
}
