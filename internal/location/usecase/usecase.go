package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/location"
	"github.com/fekuna/omnipos-inventory-service/internal/location/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperrors"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
)

type locationUseCase struct {
	repo   location.Repository
	logger logger.ZapLogger
}

func NewLocationUseCase(repo location.Repository, log logger.ZapLogger) location.UseCase {
	return &locationUseCase{
		repo:   repo,
		logger: log,
	}
}

func validType(t model.LocationType) bool {
	switch t {
	case model.LocationWarehouse, model.LocationStore, model.LocationVirtual:
		return true
	}
	return false
}

func (uc *locationUseCase) CreateLocation(ctx context.Context, input *dto.CreateLocationInput) (*model.Location, error) {
	if input.MerchantID == "" || input.Name == "" {
		return nil, apperrors.Validation("merchant id and name are required")
	}
	if !validType(input.Type) {
		return nil, apperrors.Validation("invalid location type %q", input.Type)
	}

	now := time.Now()
	l := &model.Location{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MerchantID: input.MerchantID,
		Name:       input.Name,
		Type:       input.Type,
		IsActive:   true,
	}

	if err := uc.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	if input.IsPrimary {
		if err := uc.repo.SetPrimary(ctx, input.MerchantID, l.ID); err != nil {
			return nil, err
		}
		l.IsPrimary = true
	}
	return l, nil
}

func (uc *locationUseCase) GetLocation(ctx context.Context, merchantID, id string) (*model.Location, error) {
	l, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, apperrors.NotFound("location %s not found", id)
	}
	return l, nil
}

func (uc *locationUseCase) ListLocations(ctx context.Context, filters *dto.LocationFilters) ([]model.Location, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *locationUseCase) UpdateLocation(ctx context.Context, input *dto.UpdateLocationInput) (*model.Location, error) {
	l, err := uc.GetLocation(ctx, input.MerchantID, input.ID)
	if err != nil {
		return nil, err
	}
	if !validType(input.Type) {
		return nil, apperrors.Validation("invalid location type %q", input.Type)
	}

	l.Name = input.Name
	l.Type = input.Type
	l.IsActive = input.IsActive
	l.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (uc *locationUseCase) SetPrimary(ctx context.Context, merchantID, id string) (*model.Location, error) {
	if err := uc.repo.SetPrimary(ctx, merchantID, id); err != nil {
		return nil, err
	}
	return uc.GetLocation(ctx, merchantID, id)
}
