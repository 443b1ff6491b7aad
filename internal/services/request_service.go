package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"rentora/internal/caching"
	"rentora/internal/common"
	"rentora/internal/models"
	"rentora/internal/repositories"
)

// RequestService drives the rental request lifecycle: tenant creation with
// the duplicate-active guard, landlord accept/reject transitions, and the
// notification side effects of each.
type RequestService interface {
	Create(ctx context.Context, tenantID, propertyID uuid.UUID, roomID *uuid.UUID) (*models.RentalRequest, error)
	Accept(ctx context.Context, landlordID, requestID uuid.UUID, terms *models.AcceptTerms) (uuid.UUID, error)
	Reject(ctx context.Context, landlordID, requestID uuid.UUID) error
	InterestedTenants(ctx context.Context, landlordID uuid.UUID, propertyID *uuid.UUID) ([]*models.InterestedEntry, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.RentalRequest, error)
	ExpireStalePending(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// A tenant may file at most this many requests per window; enough for real
// browsing, low enough to stop scripted spam.
const (
	createRateLimit  = 10
	createRateWindow = time.Minute
)

type requestService struct {
	requestRepo     repositories.RentalRequestRepository
	propertyRepo    repositories.PropertyRepository
	userRepo        repositories.UserRepository
	notificationSvc NotificationService
	cacheSvc        caching.CacheService
}

// NewRequestService creates a new request lifecycle service
func NewRequestService(requestRepo repositories.RentalRequestRepository, propertyRepo repositories.PropertyRepository, userRepo repositories.UserRepository, notificationSvc NotificationService, cacheSvc caching.CacheService) RequestService {
	return &requestService{
		requestRepo:     requestRepo,
		propertyRepo:    propertyRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		cacheSvc:        cacheSvc,
	}
}

// Create files a pending request for the tenant and fans a rental_request
// notification out to the property's landlord. Exactly one notification is
// created per successful request. A non-rejected request on the same
// (tenant, property, room) tuple makes this fail with ErrDuplicateRequest.
func (s *requestService) Create(ctx context.Context, tenantID, propertyID uuid.UUID, roomID *uuid.UUID) (*models.RentalRequest, error) {
	limited, err := s.cacheSvc.IsRateLimited(ctx, "requests:"+tenantID.String(), createRateLimit, createRateWindow)
	if err != nil {
		// Redis being down must not block legitimate requests.
		log.Printf("rate limit check failed for tenant %s: %v", tenantID, err)
	} else if limited {
		return nil, fmt.Errorf("too many requests from tenant %s: %w", tenantID, common.ErrRateLimited)
	}

	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("look up property: %w", err)
	}
	if property == nil {
		return nil, fmt.Errorf("property %s: %w", propertyID, common.ErrNotFound)
	}
	if !property.Available {
		return nil, fmt.Errorf("property %s is not available: %w", propertyID, common.ErrInvalidState)
	}

	if roomID != nil {
		room, err := s.propertyRepo.GetRoom(ctx, propertyID, *roomID)
		if err != nil {
			return nil, fmt.Errorf("look up room: %w", err)
		}
		if room == nil {
			return nil, fmt.Errorf("room %s: %w", *roomID, common.ErrNotFound)
		}
		if !room.Available {
			return nil, fmt.Errorf("room %s is not available: %w", *roomID, common.ErrInvalidState)
		}
	}

	existing, err := s.requestRepo.FindActiveByTuple(ctx, tenantID, propertyID, roomID)
	if err != nil {
		return nil, fmt.Errorf("check for active request: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("request is already %s: %w", existing.Status, common.ErrDuplicateRequest)
	}

	request := &models.RentalRequest{
		ID:          uuid.New(),
		TenantID:    tenantID,
		PropertyID:  propertyID,
		RoomID:      roomID,
		Status:      models.RequestStatusPending,
		RequestedAt: time.Now(),
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("save request: %w", err)
	}

	s.notifyLandlord(ctx, property, request)

	return request, nil
}

// notifyLandlord fans the request out to the property owner. Fan-out
// failure does not undo the created request; it is logged and the landlord
// still discovers the request through the interested-tenants list.
func (s *requestService) notifyLandlord(ctx context.Context, property *models.Property, request *models.RentalRequest) {
	tenant, err := s.userRepo.GetByID(ctx, request.TenantID)
	if err != nil || tenant == nil {
		log.Printf("Fan-out skipped, tenant %s lookup failed: %v", request.TenantID, err)
		return
	}

	payload := &models.NotificationPayload{
		PropertyID:       property.ID,
		RoomID:           request.RoomID,
		CounterpartID:    tenant.ID,
		CounterpartName:  tenant.Name,
		CounterpartEmail: tenant.Email,
		CounterpartPhone: common.SafeString(tenant.Phone),
	}

	message := fmt.Sprintf("%s is interested in %s", tenant.Name, property.Title)
	if _, err := s.notificationSvc.Send(ctx, property.LandlordID, tenant.ID, models.NotificationTypeRentalRequest, "New rental request", message, payload); err != nil {
		log.Printf("Fan-out to landlord %s failed: %v", property.LandlordID, err)
	}
}

// Accept transitions a pending request to accepted and creates its rental
// in a single repository transaction, then notifies the tenant. Accepting a
// non-pending request, or losing a concurrent accept race, fails with
// ErrInvalidState.
func (s *requestService) Accept(ctx context.Context, landlordID, requestID uuid.UUID, terms *models.AcceptTerms) (uuid.UUID, error) {
	request, property, err := s.authorizedRequest(ctx, landlordID, requestID)
	if err != nil {
		return uuid.Nil, err
	}
	if request.Status != models.RequestStatusPending {
		return uuid.Nil, fmt.Errorf("request is %s: %w", request.Status, common.ErrInvalidState)
	}

	if err := common.ValidateDateRange(terms.StartDate, terms.EndDate); err != nil {
		return uuid.Nil, fmt.Errorf("%v: %w", err, common.ErrInvalidInput)
	}

	agreedPrice := property.MonthlyPrice
	if request.RoomID != nil {
		room, err := s.propertyRepo.GetRoom(ctx, request.PropertyID, *request.RoomID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("look up room: %w", err)
		}
		if room != nil {
			agreedPrice = room.Price
		}
	}
	if terms.AgreedPrice != nil {
		agreedPrice = *terms.AgreedPrice
	}

	rental := &models.Rental{
		ID:           uuid.New(),
		RequestID:    request.ID,
		TenantID:     request.TenantID,
		PropertyID:   request.PropertyID,
		RoomID:       request.RoomID,
		StartDate:    terms.StartDate,
		EndDate:      terms.EndDate,
		AgreedPrice:  agreedPrice,
		Deposit:      terms.Deposit,
		SpecialTerms: terms.SpecialTerms,
	}

	if err := s.requestRepo.AcceptWithRental(ctx, requestID, rental); err != nil {
		if errors.Is(err, repositories.ErrNoTransition) {
			return uuid.Nil, fmt.Errorf("request already transitioned: %w", common.ErrInvalidState)
		}
		return uuid.Nil, fmt.Errorf("accept request: %w", err)
	}

	s.notifyTenantAccepted(ctx, property, request, rental)

	return rental.ID, nil
}

// notifyTenantAccepted carries rental_id and property_id in the payload so
// the tenant client can deep-link straight to the contract view.
func (s *requestService) notifyTenantAccepted(ctx context.Context, property *models.Property, request *models.RentalRequest, rental *models.Rental) {
	landlord, err := s.userRepo.GetByID(ctx, property.LandlordID)
	if err != nil || landlord == nil {
		log.Printf("Acceptance fan-out skipped, landlord %s lookup failed: %v", property.LandlordID, err)
		return
	}

	payload := &models.NotificationPayload{
		PropertyID:       property.ID,
		RoomID:           request.RoomID,
		CounterpartID:    landlord.ID,
		CounterpartName:  landlord.Name,
		CounterpartEmail: landlord.Email,
		CounterpartPhone: common.SafeString(landlord.Phone),
		RentalID:         &rental.ID,
	}

	message := fmt.Sprintf("Your request for %s was accepted", property.Title)
	if _, err := s.notificationSvc.Send(ctx, request.TenantID, landlord.ID, models.NotificationTypeRentalAccepted, "Request accepted", message, payload); err != nil {
		log.Printf("Acceptance fan-out to tenant %s failed: %v", request.TenantID, err)
	}
}

// Reject transitions a pending request to rejected. No notification goes to
// the tenant, who discovers the rejection by listing their own requests and
// may then re-request.
func (s *requestService) Reject(ctx context.Context, landlordID, requestID uuid.UUID) error {
	request, _, err := s.authorizedRequest(ctx, landlordID, requestID)
	if err != nil {
		return err
	}
	if request.Status != models.RequestStatusPending {
		return fmt.Errorf("request is %s: %w", request.Status, common.ErrInvalidState)
	}

	if err := s.requestRepo.RejectIfPending(ctx, requestID); err != nil {
		if errors.Is(err, repositories.ErrNoTransition) {
			return fmt.Errorf("request already transitioned: %w", common.ErrInvalidState)
		}
		return fmt.Errorf("reject request: %w", err)
	}
	return nil
}

// authorizedRequest loads the request and its property and checks the
// caller owns that property.
func (s *requestService) authorizedRequest(ctx context.Context, landlordID, requestID uuid.UUID) (*models.RentalRequest, *models.Property, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("look up request: %w", err)
	}
	if request == nil {
		return nil, nil, fmt.Errorf("request %s: %w", requestID, common.ErrNotFound)
	}

	property, err := s.propertyRepo.GetByID(ctx, request.PropertyID)
	if err != nil {
		return nil, nil, fmt.Errorf("look up property: %w", err)
	}
	if property == nil {
		return nil, nil, fmt.Errorf("property %s: %w", request.PropertyID, common.ErrNotFound)
	}
	if property.LandlordID != landlordID {
		return nil, nil, fmt.Errorf("property %s: %w", property.ID, common.ErrForbidden)
	}
	return request, property, nil
}

// InterestedTenants is the landlord's view: rejected entries are excluded
// and entries deduplicate by (tenant, property, room), keeping the first
// occurrence in creation order.
func (s *requestService) InterestedTenants(ctx context.Context, landlordID uuid.UUID, propertyID *uuid.UUID) ([]*models.InterestedEntry, error) {
	entries, err := s.requestRepo.ListInterestedByLandlord(ctx, landlordID, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list interested tenants: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	deduped := make([]*models.InterestedEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Status == models.RequestStatusRejected {
			continue
		}
		key := entry.TupleKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, entry)
	}
	return deduped, nil
}

// ListByTenant returns the tenant's own requests, optionally narrowed to a
// single status. An unknown status string fails rather than silently
// matching nothing.
func (s *requestService) ListByTenant(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.RentalRequest, error) {
	if status != "" && !models.ValidRequestStatus(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, common.ErrInvalidInput)
	}

	limit, offset = common.ValidatePaginationParams(limit, offset)
	requests, err := s.requestRepo.ListByTenant(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return requests, nil
	}

	filtered := make([]*models.RentalRequest, 0, len(requests))
	for _, request := range requests {
		if request.Status == models.RequestStatus(status) {
			filtered = append(filtered, request)
		}
	}
	return filtered, nil
}

// ExpireStalePending auto-rejects pending requests older than the window so
// listings do not stay locked behind abandoned requests. Used by the
// background scheduler; returns how many were expired.
func (s *requestService) ExpireStalePending(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	stale, err := s.requestRepo.ListPendingOlderThan(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("list stale pending requests: %w", err)
	}

	expired := 0
	for _, request := range stale {
		if err := s.requestRepo.RejectIfPending(ctx, request.ID); err != nil {
			if errors.Is(err, repositories.ErrNoTransition) {
				continue // transitioned since we listed it
			}
			log.Printf("Failed to expire request %s: %v", request.ID, err)
			continue
		}
		expired++
	}
	return expired, nil
}
