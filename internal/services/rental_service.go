package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentora/internal/common"
	"rentora/internal/models"
	"rentora/internal/repositories"
)

const (
	contractBucket    = "contracts"
	contractURLExpiry = 15 * time.Minute
)

var contractContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// RentalService exposes rentals to their two parties and handles the
// contract document attached after acceptance.
type RentalService interface {
	Get(ctx context.Context, callerID, rentalID uuid.UUID) (*models.Rental, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Rental, error)
	UploadContract(ctx context.Context, callerID, rentalID uuid.UUID, filename string, reader io.Reader, size int64) (string, error)
	ContractURL(ctx context.Context, callerID, rentalID uuid.UUID) (string, error)
}

type rentalService struct {
	rentalRepo   repositories.RentalRepository
	propertyRepo repositories.PropertyRepository
	minioSvc     MinioService
}

func NewRentalService(rentalRepo repositories.RentalRepository, propertyRepo repositories.PropertyRepository, minioSvc MinioService) RentalService {
	return &rentalService{
		rentalRepo:   rentalRepo,
		propertyRepo: propertyRepo,
		minioSvc:     minioSvc,
	}
}

// Get returns the rental to its tenant or to the landlord of its property.
// Anyone else gets ErrForbidden.
func (s *rentalService) Get(ctx context.Context, callerID, rentalID uuid.UUID) (*models.Rental, error) {
	rental, _, err := s.authorizedRental(ctx, callerID, rentalID)
	return rental, err
}

func (s *rentalService) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Rental, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.rentalRepo.ListByTenant(ctx, tenantID, limit, offset)
}

// UploadContract stores the signed contract in object storage under a key
// derived from the rental id, records that key on the rental, and returns a
// presigned download URL. Re-uploads replace the previous document.
func (s *rentalService) UploadContract(ctx context.Context, callerID, rentalID uuid.UUID, filename string, reader io.Reader, size int64) (string, error) {
	rental, _, err := s.authorizedRental(ctx, callerID, rentalID)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := contractContentTypes[ext]
	if !ok {
		return "", fmt.Errorf("contract must be a PDF or Word document: %w", common.ErrInvalidInput)
	}

	if err := s.minioSvc.EnsureBucketExists(ctx, contractBucket); err != nil {
		return "", fmt.Errorf("ensure contract bucket: %w", err)
	}

	objectName := fmt.Sprintf("%s/contract%s", rental.ID, ext)
	if err := s.minioSvc.UploadDocument(ctx, contractBucket, objectName, reader, size, contentType); err != nil {
		return "", fmt.Errorf("upload contract: %w", err)
	}

	if err := s.rentalRepo.SetContractObject(ctx, rental.ID, objectName); err != nil {
		return "", fmt.Errorf("record contract object: %w", err)
	}

	url, err := s.minioSvc.GetPresignedURL(contractBucket, objectName, contractURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign contract url: %w", err)
	}
	return url, nil
}

// ContractURL returns a short-lived download link for the stored contract.
func (s *rentalService) ContractURL(ctx context.Context, callerID, rentalID uuid.UUID) (string, error) {
	rental, _, err := s.authorizedRental(ctx, callerID, rentalID)
	if err != nil {
		return "", err
	}
	if rental.ContractObject == nil {
		return "", fmt.Errorf("rental %s has no contract: %w", rentalID, common.ErrNotFound)
	}

	url, err := s.minioSvc.GetPresignedURL(contractBucket, *rental.ContractObject, contractURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign contract url: %w", err)
	}
	return url, nil
}

func (s *rentalService) authorizedRental(ctx context.Context, callerID, rentalID uuid.UUID) (*models.Rental, *models.Property, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, nil, fmt.Errorf("look up rental: %w", err)
	}
	if rental == nil {
		return nil, nil, fmt.Errorf("rental %s: %w", rentalID, common.ErrNotFound)
	}

	property, err := s.propertyRepo.GetByID(ctx, rental.PropertyID)
	if err != nil {
		return nil, nil, fmt.Errorf("look up property: %w", err)
	}
	if property == nil {
		return nil, nil, fmt.Errorf("property %s: %w", rental.PropertyID, common.ErrNotFound)
	}

	if callerID != rental.TenantID && callerID != property.LandlordID {
		return nil, nil, fmt.Errorf("rental %s: %w", rentalID, common.ErrForbidden)
	}
	return rental, property, nil
}
