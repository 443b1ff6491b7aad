package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"rentora/internal/caching"
	"rentora/internal/common"
	"rentora/internal/models"
	"rentora/internal/repositories"
)

const propertyCacheTTL = 5 * time.Minute

// PropertyService covers the landlord-facing slice of listing management
// that the request workflow depends on.
type PropertyService interface {
	Create(ctx context.Context, landlordID uuid.UUID, title, address string, monthlyPrice float64) (*models.Property, error)
	Get(ctx context.Context, propertyID uuid.UUID) (*models.Property, error)
	List(ctx context.Context, filter *models.PropertySearchFilter) ([]*models.Property, error)
	SetAvailability(ctx context.Context, landlordID, propertyID uuid.UUID, available bool) error
}

type propertyService struct {
	propertyRepo repositories.PropertyRepository
	cacheSvc     caching.CacheService
}

func NewPropertyService(propertyRepo repositories.PropertyRepository, cacheSvc caching.CacheService) PropertyService {
	return &propertyService{propertyRepo: propertyRepo, cacheSvc: cacheSvc}
}

func (s *propertyService) Create(ctx context.Context, landlordID uuid.UUID, title, address string, monthlyPrice float64) (*models.Property, error) {
	if err := common.ValidateRequiredString(title, "title"); err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrInvalidInput)
	}
	if err := common.ValidateRequiredString(address, "address"); err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrInvalidInput)
	}
	if err := common.ValidatePositiveFloat(monthlyPrice, "monthly_price", 1000000); err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrInvalidInput)
	}

	property := &models.Property{
		ID:           uuid.New(),
		LandlordID:   landlordID,
		Title:        title,
		Address:      address,
		MonthlyPrice: monthlyPrice,
		Available:    true,
	}
	if err := s.propertyRepo.Create(ctx, property); err != nil {
		return nil, fmt.Errorf("save property: %w", err)
	}
	return property, nil
}

// Get is cache-aside over Redis. A cache failure falls through to Postgres.
func (s *propertyService) Get(ctx context.Context, propertyID uuid.UUID) (*models.Property, error) {
	if cached, err := s.cacheSvc.GetProperty(ctx, propertyID); err == nil && cached != nil {
		return cached, nil
	}

	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("look up property: %w", err)
	}
	if property == nil {
		return nil, fmt.Errorf("property %s: %w", propertyID, common.ErrNotFound)
	}

	if err := s.cacheSvc.SetProperty(ctx, property, propertyCacheTTL); err != nil {
		log.Printf("Failed to cache property %s: %v", propertyID, err)
	}
	return property, nil
}

func (s *propertyService) List(ctx context.Context, filter *models.PropertySearchFilter) ([]*models.Property, error) {
	if filter == nil {
		filter = &models.PropertySearchFilter{}
	}
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)
	return s.propertyRepo.List(ctx, filter)
}

func (s *propertyService) SetAvailability(ctx context.Context, landlordID, propertyID uuid.UUID, available bool) error {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return fmt.Errorf("look up property: %w", err)
	}
	if property == nil {
		return fmt.Errorf("property %s: %w", propertyID, common.ErrNotFound)
	}
	if property.LandlordID != landlordID {
		return fmt.Errorf("property %s: %w", propertyID, common.ErrForbidden)
	}

	property.Available = available
	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	if err := s.cacheSvc.DeleteProperty(ctx, propertyID); err != nil {
		log.Printf("Failed to invalidate property cache %s: %v", propertyID, err)
	}
	return nil
}
