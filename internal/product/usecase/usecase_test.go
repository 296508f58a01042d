package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperrors"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductRepo mirrors the version-conditioned Update of the postgres
// repository: the write applies only when the stored version still matches.
type mockProductRepo struct {
	mu       sync.Mutex
	products map[string]*model.Product
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[string]*model.Product)}
}

func (m *mockProductRepo) Create(ctx context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *mockProductRepo) FindByID(ctx context.Context, merchantID, id string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || p.MerchantID != merchantID || p.DeletedAt != nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Product
	for _, p := range m.products {
		if p.MerchantID != filters.MerchantID {
			continue
		}
		if p.DeletedAt != nil && !filters.IncludeDeleted {
			continue
		}
		if filters.IsActive != nil && p.IsActive != *filters.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockProductRepo) Update(ctx context.Context, p *model.Product, expectedVersion int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.products[p.ID]
	if !ok || stored.DeletedAt != nil || stored.Version != expectedVersion {
		return false, nil
	}
	cp := *p
	cp.Version = expectedVersion + 1
	m.products[p.ID] = &cp
	p.Version = cp.Version
	return true, nil
}

func (m *mockProductRepo) SoftDelete(ctx context.Context, merchantID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || p.MerchantID != merchantID || p.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	p.DeletedAt = &now
	p.IsActive = false
	return true, nil
}

func (m *mockProductRepo) IsSKUUnique(ctx context.Context, merchantID, sku, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.MerchantID == merchantID && p.SKU == sku && p.ID != excludeID && p.DeletedAt == nil {
			return false, nil
		}
	}
	return true, nil
}

func (m *mockProductRepo) IsBarcodeUnique(ctx context.Context, merchantID, barcode, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.MerchantID == merchantID && p.Barcode != nil && *p.Barcode == barcode && p.ID != excludeID && p.DeletedAt == nil {
			return false, nil
		}
	}
	return true, nil
}

func newTestUseCase(repo *mockProductRepo) *productUseCase {
	return &productUseCase{repo: repo, logger: logger.NewNopLogger()}
}

func createProduct(t *testing.T, uc *productUseCase, sku string) *model.Product {
	t.Helper()
	p, err := uc.CreateProduct(context.Background(), &dto.CreateProductInput{
		MerchantID: "merchant-1",
		SKU:        sku,
		Name:       "Arabica Beans 1kg",
		CostPrice:  8,
		SalePrice:  12.5,
	})
	require.NoError(t, err)
	return p
}

func TestCreateProduct_Defaults(t *testing.T) {
	uc := newTestUseCase(newMockProductRepo())

	p := createProduct(t, uc, "SKU-001")
	assert.Equal(t, int64(1), p.Version)
	assert.True(t, p.IsActive)
	assert.NotEmpty(t, p.ID)
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	uc := newTestUseCase(newMockProductRepo())
	createProduct(t, uc, "SKU-001")

	_, err := uc.CreateProduct(context.Background(), &dto.CreateProductInput{
		MerchantID: "merchant-1",
		SKU:        "SKU-001",
		Name:       "Another product",
	})
	assert.True(t, apperrors.IsConflict(err))
}

func TestCreateProduct_Validation(t *testing.T) {
	uc := newTestUseCase(newMockProductRepo())

	_, err := uc.CreateProduct(context.Background(), &dto.CreateProductInput{
		MerchantID: "merchant-1",
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateProduct_BumpsVersion(t *testing.T) {
	uc := newTestUseCase(newMockProductRepo())
	p := createProduct(t, uc, "SKU-001")

	name := "Arabica Beans 500g"
	price := 7.5
	updated, err := uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{
		MerchantID:      p.MerchantID,
		ID:              p.ID,
		ExpectedVersion: p.Version,
		Name:            &name,
		SalePrice:       &price,
	})
	require.NoError(t, err)
	assert.Equal(t, p.Version+1, updated.Version)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, price, updated.SalePrice)
}

func TestUpdateProduct_StaleVersionConflicts(t *testing.T) {
	uc := newTestUseCase(newMockProductRepo())
	p := createProduct(t, uc, "SKU-001")
	ctx := context.Background()

	name := "First edit"
	_, err := uc.UpdateProduct(ctx, &dto.UpdateProductInput{
		MerchantID: p.MerchantID, ID: p.ID, ExpectedVersion: p.Version, Name: &name,
	})
	require.NoError(t, err)

	// Second writer still holds the original version.
	name = "Second edit"
	_, err = uc.UpdateProduct(ctx, &dto.UpdateProductInput{
		MerchantID: p.MerchantID, ID: p.ID, ExpectedVersion: p.Version, Name: &name,
	})
	assert.True(t, apperrors.IsConflict(err))

	// The first edit survives.
	got, err := uc.GetProduct(ctx, p.MerchantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "First edit", got.Name)
}

func TestUpdateProduct_DuplicateSKURejected(t *testing.T) {
	uc := newTestUseCase(newMockProductRepo())
	createProduct(t, uc, "SKU-001")
	p := createProduct(t, uc, "SKU-002")

	sku := "SKU-001"
	_, err := uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{
		MerchantID: p.MerchantID, ID: p.ID, ExpectedVersion: p.Version, SKU: &sku,
	})
	assert.True(t, apperrors.IsConflict(err))
}

func TestDeleteProduct_SoftDeletesAndHides(t *testing.T) {
	repo := newMockProductRepo()
	uc := newTestUseCase(repo)
	p := createProduct(t, uc, "SKU-001")
	ctx := context.Background()

	require.NoError(t, uc.DeleteProduct(ctx, p.MerchantID, p.ID))

	_, err := uc.GetProduct(ctx, p.MerchantID, p.ID)
	assert.True(t, apperrors.IsNotFound(err))

	// A deleted product frees its SKU for reuse.
	again := createProduct(t, uc, "SKU-001")
	assert.NotEqual(t, p.ID, again.ID)

	err = uc.DeleteProduct(ctx, p.MerchantID, p.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateProduct_DeletedIsNotFound(t *testing.T) {
	uc := newTestUseCase(newMockProductRepo())
	p := createProduct(t, uc, "SKU-001")
	ctx := context.Background()

	require.NoError(t, uc.DeleteProduct(ctx, p.MerchantID, p.ID))

	name := "Edit after delete"
	_, err := uc.UpdateProduct(ctx, &dto.UpdateProductInput{
		MerchantID: p.MerchantID, ID: p.ID, ExpectedVersion: p.Version, Name: &name,
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestListProducts_FallsBackToRepository(t *testing.T) {
	uc := newTestUseCase(newMockProductRepo())
	createProduct(t, uc, "SKU-001")
	createProduct(t, uc, "SKU-002")

	products, count, err := uc.ListProducts(context.Background(), &dto.ProductFilters{
		MerchantID: "merchant-1",
		Page:       1,
		PageSize:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, products, 2)
}
