package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/fekuna/omnipos-inventory-service/internal/location/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperrors"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLocationRepo struct {
	mu        sync.Mutex
	locations map[string]*model.Location
}

func newMockLocationRepo() *mockLocationRepo {
	return &mockLocationRepo{locations: make(map[string]*model.Location)}
}

func (m *mockLocationRepo) Create(ctx context.Context, l *model.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.locations[l.ID] = &cp
	return nil
}

func (m *mockLocationRepo) FindByID(ctx context.Context, merchantID, id string) (*model.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locations[id]
	if !ok || l.MerchantID != merchantID {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (m *mockLocationRepo) FindAll(ctx context.Context, filters *dto.LocationFilters) ([]model.Location, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Location
	for _, l := range m.locations {
		if l.MerchantID != filters.MerchantID {
			continue
		}
		if filters.Type != "" && l.Type != filters.Type {
			continue
		}
		if filters.IsActive != nil && l.IsActive != *filters.IsActive {
			continue
		}
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (m *mockLocationRepo) Update(ctx context.Context, l *model.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.locations[l.ID] = &cp
	return nil
}

func (m *mockLocationRepo) SetPrimary(ctx context.Context, merchantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.locations[id]
	if !ok || target.MerchantID != merchantID {
		return apperrors.NotFound("location %s not found", id)
	}
	for _, l := range m.locations {
		if l.MerchantID == merchantID {
			l.IsPrimary = false
		}
	}
	target.IsPrimary = true
	return nil
}

func newTestUseCase(repo *mockLocationRepo) *locationUseCase {
	return &locationUseCase{repo: repo, logger: logger.NewNopLogger()}
}

func createLocation(t *testing.T, uc *locationUseCase, name string, primary bool) *model.Location {
	t.Helper()
	l, err := uc.CreateLocation(context.Background(), &dto.CreateLocationInput{
		MerchantID: "merchant-1",
		Name:       name,
		Type:       model.LocationWarehouse,
		IsPrimary:  primary,
	})
	require.NoError(t, err)
	return l
}

func TestCreateLocation_Validation(t *testing.T) {
	uc := newTestUseCase(newMockLocationRepo())
	ctx := context.Background()

	_, err := uc.CreateLocation(ctx, &dto.CreateLocationInput{MerchantID: "merchant-1"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = uc.CreateLocation(ctx, &dto.CreateLocationInput{
		MerchantID: "merchant-1", Name: "Main", Type: "garage",
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateLocation_PrimaryFlag(t *testing.T) {
	uc := newTestUseCase(newMockLocationRepo())

	l := createLocation(t, uc, "Main Warehouse", true)
	assert.True(t, l.IsPrimary)
	assert.True(t, l.IsActive)
}

func TestSetPrimary_DemotesPrevious(t *testing.T) {
	repo := newMockLocationRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()

	first := createLocation(t, uc, "Main Warehouse", true)
	second := createLocation(t, uc, "Downtown Store", false)

	promoted, err := uc.SetPrimary(ctx, "merchant-1", second.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsPrimary)

	demoted, err := uc.GetLocation(ctx, "merchant-1", first.ID)
	require.NoError(t, err)
	assert.False(t, demoted.IsPrimary)

	// Exactly one primary per merchant.
	all, _, err := uc.ListLocations(ctx, &dto.LocationFilters{MerchantID: "merchant-1"})
	require.NoError(t, err)
	var primaries int
	for _, l := range all {
		if l.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)
}

func TestSetPrimary_NotFound(t *testing.T) {
	uc := newTestUseCase(newMockLocationRepo())
	_, err := uc.SetPrimary(context.Background(), "merchant-1", "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateLocation(t *testing.T) {
	uc := newTestUseCase(newMockLocationRepo())
	ctx := context.Background()
	l := createLocation(t, uc, "Main Warehouse", false)

	updated, err := uc.UpdateLocation(ctx, &dto.UpdateLocationInput{
		MerchantID: "merchant-1",
		ID:         l.ID,
		Name:       "Central Warehouse",
		Type:       model.LocationStore,
		IsActive:   false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Central Warehouse", updated.Name)
	assert.Equal(t, model.LocationStore, updated.Type)
	assert.False(t, updated.IsActive)

	_, err = uc.UpdateLocation(ctx, &dto.UpdateLocationInput{
		MerchantID: "merchant-1", ID: "missing", Name: "x", Type: model.LocationStore,
	})
	assert.True(t, apperrors.IsNotFound(err))
}
