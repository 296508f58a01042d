package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/transfer/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperrors"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTransferRepo keeps transfers in memory and mirrors the predicate
// semantics of the postgres repository: transitions and deletions report
// whether a row matched, and Complete moves stock at most once.
type mockTransferRepo struct {
	mu        sync.Mutex
	transfers map[string]*model.StockTransfer
	moves     int // times Complete actually moved stock
	events    []model.InventoryEvent
}

func newMockTransferRepo() *mockTransferRepo {
	return &mockTransferRepo{transfers: make(map[string]*model.StockTransfer)}
}

func (m *mockTransferRepo) Create(ctx context.Context, t *model.StockTransfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.transfers[t.ID] = &cp
	return nil
}

func (m *mockTransferRepo) FindByID(ctx context.Context, merchantID, id string) (*model.StockTransfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transfers[id]
	if !ok || t.MerchantID != merchantID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *mockTransferRepo) FindAll(ctx context.Context, filters *dto.TransferFilters) ([]model.StockTransfer, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.StockTransfer
	for _, t := range m.transfers {
		if t.MerchantID != filters.MerchantID {
			continue
		}
		if filters.Status != "" && t.Status != filters.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (m *mockTransferRepo) UpdateStatus(ctx context.Context, merchantID, id string, from []model.TransferStatus, to model.TransferStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transfers[id]
	if !ok || t.MerchantID != merchantID {
		return false, nil
	}
	for _, s := range from {
		if t.Status == s {
			t.Status = to
			t.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTransferRepo) Complete(ctx context.Context, t *model.StockTransfer, completedBy string, out, in *model.InventoryEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.transfers[t.ID]
	if !ok || stored.Status.Terminal() {
		return false, nil
	}
	now := time.Now()
	stored.Status = model.TransferCompleted
	stored.CompletedBy = &completedBy
	stored.CompletedAt = &now
	m.moves++
	m.events = append(m.events, *out, *in)
	return true, nil
}

func (m *mockTransferRepo) Delete(ctx context.Context, merchantID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transfers[id]
	if !ok || t.MerchantID != merchantID || t.Status != model.TransferPending {
		return false, nil
	}
	delete(m.transfers, id)
	return true, nil
}

func newTestUseCase(repo *mockTransferRepo) *transferUseCase {
	return &transferUseCase{repo: repo, logger: logger.NewNopLogger()}
}

func createPending(t *testing.T, uc *transferUseCase) *model.StockTransfer {
	t.Helper()
	tr, err := uc.Create(context.Background(), &dto.CreateTransferInput{
		MerchantID:     "merchant-1",
		ProductID:      "product-a",
		FromLocationID: "location-a",
		ToLocationID:   "location-b",
		Quantity:       4,
		RequestedBy:    "user-1",
	})
	require.NoError(t, err)
	require.Equal(t, model.TransferPending, tr.Status)
	return tr
}

func TestCreateTransfer_Validation(t *testing.T) {
	uc := newTestUseCase(newMockTransferRepo())
	ctx := context.Background()

	_, err := uc.Create(ctx, &dto.CreateTransferInput{
		MerchantID: "merchant-1", ProductID: "product-a",
		FromLocationID: "location-a", ToLocationID: "location-a", Quantity: 1,
	})
	assert.True(t, apperrors.IsValidation(err))

	_, err = uc.Create(ctx, &dto.CreateTransferInput{
		MerchantID: "merchant-1", ProductID: "product-a",
		FromLocationID: "location-a", ToLocationID: "location-b", Quantity: 0,
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestTransferLifecycle_PendingToCompleted(t *testing.T) {
	repo := newMockTransferRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()
	tr := createPending(t, uc)

	got, err := uc.UpdateStatus(ctx, tr.MerchantID, tr.ID, model.TransferInTransit, "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.TransferInTransit, got.Status)

	got, err = uc.UpdateStatus(ctx, tr.MerchantID, tr.ID, model.TransferCompleted, "user-2")
	require.NoError(t, err)
	assert.Equal(t, model.TransferCompleted, got.Status)
	require.NotNil(t, got.CompletedBy)
	assert.Equal(t, "user-2", *got.CompletedBy)
	assert.NotNil(t, got.CompletedAt)

	// One move, two ledger legs netting to zero.
	assert.Equal(t, 1, repo.moves)
	require.Len(t, repo.events, 2)
	assert.Equal(t, model.EventTransferOut, repo.events[0].EventType)
	assert.Equal(t, model.EventTransferIn, repo.events[1].EventType)
	assert.Equal(t, int64(0), repo.events[0].QuantityDelta+repo.events[1].QuantityDelta)
}

func TestCompleteTransfer_SecondCallIsNoOp(t *testing.T) {
	repo := newMockTransferRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()
	tr := createPending(t, uc)

	_, err := uc.UpdateStatus(ctx, tr.MerchantID, tr.ID, model.TransferCompleted, "user-1")
	require.NoError(t, err)

	got, err := uc.UpdateStatus(ctx, tr.MerchantID, tr.ID, model.TransferCompleted, "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.TransferCompleted, got.Status)

	assert.Equal(t, 1, repo.moves, "stock must move exactly once")
	assert.Len(t, repo.events, 2)
}

func TestCompleteTransfer_CancelledIsInvalid(t *testing.T) {
	repo := newMockTransferRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()
	tr := createPending(t, uc)

	_, err := uc.Cancel(ctx, tr.MerchantID, tr.ID, "user-1")
	require.NoError(t, err)

	_, err = uc.UpdateStatus(ctx, tr.MerchantID, tr.ID, model.TransferCompleted, "user-1")
	assert.True(t, apperrors.IsInvalidState(err))
	assert.Equal(t, 0, repo.moves)
}

func TestTransferInTransit_OnlyFromPending(t *testing.T) {
	repo := newMockTransferRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()
	tr := createPending(t, uc)

	_, err := uc.UpdateStatus(ctx, tr.MerchantID, tr.ID, model.TransferCompleted, "user-1")
	require.NoError(t, err)

	_, err = uc.UpdateStatus(ctx, tr.MerchantID, tr.ID, model.TransferInTransit, "user-1")
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestCancelTransfer_FromInTransit(t *testing.T) {
	repo := newMockTransferRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()
	tr := createPending(t, uc)

	_, err := uc.UpdateStatus(ctx, tr.MerchantID, tr.ID, model.TransferInTransit, "user-1")
	require.NoError(t, err)

	got, err := uc.Cancel(ctx, tr.MerchantID, tr.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.TransferCancelled, got.Status)
}

func TestCancelTransfer_CompletedIsInvalid(t *testing.T) {
	repo := newMockTransferRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()
	tr := createPending(t, uc)

	_, err := uc.UpdateStatus(ctx, tr.MerchantID, tr.ID, model.TransferCompleted, "user-1")
	require.NoError(t, err)

	_, err = uc.Cancel(ctx, tr.MerchantID, tr.ID, "user-1")
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestDeleteTransfer_OnlyPending(t *testing.T) {
	repo := newMockTransferRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()

	tr := createPending(t, uc)
	require.NoError(t, uc.Delete(ctx, tr.MerchantID, tr.ID))
	_, err := uc.Get(ctx, tr.MerchantID, tr.ID)
	assert.True(t, apperrors.IsNotFound(err))

	tr = createPending(t, uc)
	_, err = uc.UpdateStatus(ctx, tr.MerchantID, tr.ID, model.TransferInTransit, "user-1")
	require.NoError(t, err)
	err = uc.Delete(ctx, tr.MerchantID, tr.ID)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestGetTransfer_NotFound(t *testing.T) {
	uc := newTestUseCase(newMockTransferRepo())
	_, err := uc.Get(context.Background(), "merchant-1", "missing")
	assert.True(t, apperrors.IsNotFound(err))
}
