package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"rentora/internal/common"
	"rentora/internal/models"
	"rentora/internal/repositories"
)

type MockRentalRequestRepo struct {
	mock.Mock
}

func (m *MockRentalRequestRepo) Create(ctx context.Context, req *models.RentalRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRentalRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RentalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RentalRequest), args.Error(1)
}

func (m *MockRentalRequestRepo) FindActiveByTuple(ctx context.Context, tenantID, propertyID uuid.UUID, roomID *uuid.UUID) (*models.RentalRequest, error) {
	args := m.Called(ctx, tenantID, propertyID, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RentalRequest), args.Error(1)
}

func (m *MockRentalRequestRepo) RejectIfPending(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRentalRequestRepo) AcceptWithRental(ctx context.Context, id uuid.UUID, rental *models.Rental) error {
	args := m.Called(ctx, id, rental)
	return args.Error(0)
}

func (m *MockRentalRequestRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.RentalRequest, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.RentalRequest), args.Error(1)
}

func (m *MockRentalRequestRepo) ListInterestedByLandlord(ctx context.Context, landlordID uuid.UUID, propertyID *uuid.UUID) ([]*models.InterestedEntry, error) {
	args := m.Called(ctx, landlordID, propertyID)
	return args.Get(0).([]*models.InterestedEntry), args.Error(1)
}

func (m *MockRentalRequestRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*models.RentalRequest, error) {
	args := m.Called(ctx, cutoff, limit)
	return args.Get(0).([]*models.RentalRequest), args.Error(1)
}

type MockPropertyRepo struct {
	mock.Mock
}

func (m *MockPropertyRepo) Create(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepo) GetRoom(ctx context.Context, propertyID, roomID uuid.UUID) (*models.Room, error) {
	args := m.Called(ctx, propertyID, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockPropertyRepo) List(ctx context.Context, filter *models.PropertySearchFilter) ([]*models.Property, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Property), args.Error(1)
}

func (m *MockPropertyRepo) Update(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Send(ctx context.Context, recipientID, senderID uuid.UUID, notifType models.NotificationType, title, message string, payload *models.NotificationPayload) (*models.Notification, error) {
	args := m.Called(ctx, recipientID, senderID, notifType, title, message, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationService) GetUnread(ctx context.Context, userID uuid.UUID, role models.UserRole) ([]*models.Notification, error) {
	args := m.Called(ctx, userID, role)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID) error {
	args := m.Called(ctx, notificationID)
	return args.Error(0)
}

type RequestServiceTestSuite struct {
	suite.Suite
	requestRepo  *MockRentalRequestRepo
	propertyRepo *MockPropertyRepo
	userRepo     *MockUserRepo
	notifSvc     *MockNotificationService
	cacheSvc     *MockCacheService
	service      RequestService

	tenant   *models.User
	landlord *models.User
	property *models.Property
}

func (suite *RequestServiceTestSuite) SetupTest() {
	suite.requestRepo = &MockRentalRequestRepo{}
	suite.propertyRepo = &MockPropertyRepo{}
	suite.userRepo = &MockUserRepo{}
	suite.notifSvc = &MockNotificationService{}
	suite.cacheSvc = &MockCacheService{}
	suite.service = NewRequestService(suite.requestRepo, suite.propertyRepo, suite.userRepo, suite.notifSvc, suite.cacheSvc)

	suite.tenant = &models.User{
		ID:    uuid.New(),
		Name:  "Ana Costa",
		Email: "ana@example.com",
		Role:  models.RoleTenant,
	}
	suite.landlord = &models.User{
		ID:    uuid.New(),
		Name:  "Bruno Dias",
		Email: "bruno@example.com",
		Role:  models.RoleLandlord,
	}
	suite.property = &models.Property{
		ID:           uuid.New(),
		LandlordID:   suite.landlord.ID,
		Title:        "Casa Azul",
		Address:      "Rua das Flores 12",
		MonthlyPrice: 850,
		Available:    true,
	}

	suite.requestRepo.Test(suite.T())
	suite.propertyRepo.Test(suite.T())
	suite.userRepo.Test(suite.T())
	suite.notifSvc.Test(suite.T())
	suite.cacheSvc.Test(suite.T())
}

func (suite *RequestServiceTestSuite) TearDownTest() {
	suite.requestRepo.AssertExpectations(suite.T())
	suite.propertyRepo.AssertExpectations(suite.T())
	suite.userRepo.AssertExpectations(suite.T())
	suite.notifSvc.AssertExpectations(suite.T())
	suite.cacheSvc.AssertExpectations(suite.T())
}

func (suite *RequestServiceTestSuite) expectNotRateLimited(ctx context.Context) {
	suite.cacheSvc.On("IsRateLimited", ctx, "requests:"+suite.tenant.ID.String(), 10, time.Minute).Return(false, nil)
}

func TestRequestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RequestServiceTestSuite))
}

func (suite *RequestServiceTestSuite) TestCreate_Success() {
	ctx := context.Background()
	suite.expectNotRateLimited(ctx)

	suite.propertyRepo.On("GetByID", ctx, suite.property.ID).Return(suite.property, nil)
	suite.requestRepo.On("FindActiveByTuple", ctx, suite.tenant.ID, suite.property.ID, (*uuid.UUID)(nil)).Return(nil, nil)
	suite.requestRepo.On("Create", ctx, mock.AnythingOfType("*models.RentalRequest")).Return(nil).Run(func(args mock.Arguments) {
		req := args.Get(1).(*models.RentalRequest)
		assert.Equal(suite.T(), suite.tenant.ID, req.TenantID)
		assert.Equal(suite.T(), models.RequestStatusPending, req.Status)
		assert.NotEqual(suite.T(), uuid.Nil, req.ID)
	})
	suite.userRepo.On("GetByID", ctx, suite.tenant.ID).Return(suite.tenant, nil)
	suite.notifSvc.On("Send", ctx, suite.landlord.ID, suite.tenant.ID, models.NotificationTypeRentalRequest, "New rental request", mock.AnythingOfType("string"), mock.AnythingOfType("*models.NotificationPayload")).
		Return(&models.Notification{ID: uuid.New()}, nil).
		Run(func(args mock.Arguments) {
			payload := args.Get(6).(*models.NotificationPayload)
			assert.Equal(suite.T(), suite.property.ID, payload.PropertyID)
			assert.Equal(suite.T(), suite.tenant.ID, payload.CounterpartID)
			assert.Equal(suite.T(), suite.tenant.Name, payload.CounterpartName)
		})

	request, err := suite.service.Create(ctx, suite.tenant.ID, suite.property.ID, nil)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), request)
	assert.Equal(suite.T(), models.RequestStatusPending, request.Status)
	suite.notifSvc.AssertNumberOfCalls(suite.T(), "Send", 1)
}

func (suite *RequestServiceTestSuite) TestCreate_DuplicateActiveRequest() {
	ctx := context.Background()
	suite.expectNotRateLimited(ctx)
	existing := &models.RentalRequest{
		ID:         uuid.New(),
		TenantID:   suite.tenant.ID,
		PropertyID: suite.property.ID,
		Status:     models.RequestStatusPending,
	}

	suite.propertyRepo.On("GetByID", ctx, suite.property.ID).Return(suite.property, nil)
	suite.requestRepo.On("FindActiveByTuple", ctx, suite.tenant.ID, suite.property.ID, (*uuid.UUID)(nil)).Return(existing, nil)

	request, err := suite.service.Create(ctx, suite.tenant.ID, suite.property.ID, nil)
	assert.Nil(suite.T(), request)
	assert.ErrorIs(suite.T(), err, common.ErrDuplicateRequest)
}

func (suite *RequestServiceTestSuite) TestCreate_AcceptedRequestAlsoBlocks() {
	ctx := context.Background()
	suite.expectNotRateLimited(ctx)
	existing := &models.RentalRequest{
		ID:         uuid.New(),
		TenantID:   suite.tenant.ID,
		PropertyID: suite.property.ID,
		Status:     models.RequestStatusAccepted,
	}

	suite.propertyRepo.On("GetByID", ctx, suite.property.ID).Return(suite.property, nil)
	suite.requestRepo.On("FindActiveByTuple", ctx, suite.tenant.ID, suite.property.ID, (*uuid.UUID)(nil)).Return(existing, nil)

	_, err := suite.service.Create(ctx, suite.tenant.ID, suite.property.ID, nil)
	assert.ErrorIs(suite.T(), err, common.ErrDuplicateRequest)
}

func (suite *RequestServiceTestSuite) TestCreate_PropertyUnavailable() {
	ctx := context.Background()
	suite.expectNotRateLimited(ctx)
	unavailable := *suite.property
	unavailable.Available = false

	suite.propertyRepo.On("GetByID", ctx, suite.property.ID).Return(&unavailable, nil)

	_, err := suite.service.Create(ctx, suite.tenant.ID, suite.property.ID, nil)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidState)
}

func (suite *RequestServiceTestSuite) TestCreate_UnknownRoom() {
	ctx := context.Background()
	suite.expectNotRateLimited(ctx)
	roomID := uuid.New()

	suite.propertyRepo.On("GetByID", ctx, suite.property.ID).Return(suite.property, nil)
	suite.propertyRepo.On("GetRoom", ctx, suite.property.ID, roomID).Return(nil, nil)

	_, err := suite.service.Create(ctx, suite.tenant.ID, suite.property.ID, &roomID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *RequestServiceTestSuite) TestCreate_FanOutFailureDoesNotUndoRequest() {
	ctx := context.Background()
	suite.expectNotRateLimited(ctx)

	suite.propertyRepo.On("GetByID", ctx, suite.property.ID).Return(suite.property, nil)
	suite.requestRepo.On("FindActiveByTuple", ctx, suite.tenant.ID, suite.property.ID, (*uuid.UUID)(nil)).Return(nil, nil)
	suite.requestRepo.On("Create", ctx, mock.AnythingOfType("*models.RentalRequest")).Return(nil)
	suite.userRepo.On("GetByID", ctx, suite.tenant.ID).Return(suite.tenant, nil)
	suite.notifSvc.On("Send", ctx, suite.landlord.ID, suite.tenant.ID, models.NotificationTypeRentalRequest, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("*models.NotificationPayload")).
		Return(nil, assert.AnError)

	request, err := suite.service.Create(ctx, suite.tenant.ID, suite.property.ID, nil)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), request)
}

func (suite *RequestServiceTestSuite) TestCreate_RateLimited() {
	ctx := context.Background()

	suite.cacheSvc.On("IsRateLimited", ctx, "requests:"+suite.tenant.ID.String(), 10, time.Minute).Return(true, nil)

	request, err := suite.service.Create(ctx, suite.tenant.ID, suite.property.ID, nil)
	assert.Nil(suite.T(), request)
	assert.ErrorIs(suite.T(), err, common.ErrRateLimited)
	suite.propertyRepo.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *RequestServiceTestSuite) TestCreate_RateLimitCheckFailureIsOpen() {
	ctx := context.Background()

	suite.cacheSvc.On("IsRateLimited", ctx, "requests:"+suite.tenant.ID.String(), 10, time.Minute).Return(false, assert.AnError)
	suite.propertyRepo.On("GetByID", ctx, suite.property.ID).Return(suite.property, nil)
	suite.requestRepo.On("FindActiveByTuple", ctx, suite.tenant.ID, suite.property.ID, (*uuid.UUID)(nil)).Return(nil, nil)
	suite.requestRepo.On("Create", ctx, mock.AnythingOfType("*models.RentalRequest")).Return(nil)
	suite.userRepo.On("GetByID", ctx, suite.tenant.ID).Return(suite.tenant, nil)
	suite.notifSvc.On("Send", ctx, suite.landlord.ID, suite.tenant.ID, models.NotificationTypeRentalRequest, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("*models.NotificationPayload")).
		Return(&models.Notification{ID: uuid.New()}, nil)

	request, err := suite.service.Create(ctx, suite.tenant.ID, suite.property.ID, nil)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), request)
}

func (suite *RequestServiceTestSuite) pendingRequest() *models.RentalRequest {
	return &models.RentalRequest{
		ID:          uuid.New(),
		TenantID:    suite.tenant.ID,
		PropertyID:  suite.property.ID,
		Status:      models.RequestStatusPending,
		RequestedAt: time.Now(),
	}
}

func acceptTerms() *models.AcceptTerms {
	return &models.AcceptTerms{
		StartDate: time.Now().AddDate(0, 1, 0),
		EndDate:   time.Now().AddDate(1, 1, 0),
	}
}

func (suite *RequestServiceTestSuite) TestAccept_Success() {
	ctx := context.Background()
	request := suite.pendingRequest()

	suite.requestRepo.On("GetByID", ctx, request.ID).Return(request, nil)
	suite.propertyRepo.On("GetByID", ctx, suite.property.ID).Return(suite.property, nil)
	suite.requestRepo.On("AcceptWithRental", ctx, request.ID, mock.AnythingOfType("*models.Rental")).Return(nil).Run(func(args mock.Arguments) {
		rental := args.Get(2).(*models.Rental)
		assert.Equal(suite.T(), request.ID, rental.RequestID)
		assert.Equal(suite.T(), suite.tenant.ID, rental.TenantID)
		assert.Equal(suite.T(), suite.property.MonthlyPrice, rental.AgreedPrice)
	})
	suite.userRepo.On("GetByID", ctx, suite.landlord.ID).Return(suite.landlord, nil)
	suite.notifSvc.On("Send", ctx, suite.tenant.ID, suite.landlord.ID, models.NotificationTypeRentalAccepted, "Request accepted", mock.AnythingOfType("string"), mock.AnythingOfType("*models.NotificationPayload")).
		Return(&models.Notification{ID: uuid.New()}, nil).
		Run(func(args mock.Arguments) {
			payload := args.Get(6).(*models.NotificationPayload)
			assert.NotNil(suite.T(), payload.RentalID)
			assert.Equal(suite.T(), suite.landlord.ID, payload.CounterpartID)
		})

	rentalID, err := suite.service.Accept(ctx, suite.landlord.ID, request.ID, acceptTerms())
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, rentalID)
}

func (suite *RequestServiceTestSuite) TestAccept_ExplicitPriceOverridesListing() {
	ctx := context.Background()
	request := suite.pendingRequest()
	price := 990.0
	terms := acceptTerms()
	terms.AgreedPrice = &price

	suite.requestRepo.On("GetByID", ctx, request.ID).Return(request, nil)
	suite.propertyRepo.On("GetByID", ctx, suite.property.ID).Return(suite.property, nil)
	suite.requestRepo.On("AcceptWithRental", ctx, request.ID, mock.AnythingOfType("*models.Rental")).Return(nil).Run(func(args mock.Arguments) {
		rental := args.Get(2).(*models.Rental)
		assert.Equal(suite.T(), price, rental.AgreedPrice)
	})
	suite.userRepo.On("GetByID", ctx, suite.landlord.ID).Return(suite.landlord, nil)
	suite.notifSvc.On("Send", ctx, suite.tenant.ID, suite.landlord.ID, models.NotificationTypeRentalAccepted, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("*models.NotificationPayload")).
		Return(&models.Notification{ID: uuid.New()}, nil)

	_, err := suite.service.Accept(ctx, suite.landlord.ID, request.ID, terms)
	assert.NoError(suite.T(), err)
}

func (suite *RequestServiceTestSuite) TestAccept_NotOwner() {
	ctx := context.Background()
	request := suite.pendingRequest()
	stranger := uuid.New()

	suite.requestRepo.On("GetByID", ctx, request.ID).Return(request, nil)
	suite.propertyRepo.On("GetByID", ctx, suite.property.ID).Return(suite.property, nil)

	_, err := suite.service.Accept(ctx, stranger, request.ID, acceptTerms())
	assert.ErrorIs(suite.T(), err, common.ErrForbidden)
}

func (suite *RequestServiceTestSuite) TestAccept_AlreadyRejected() {
	ctx := context.Background()
	request := suite.pendingRequest()
	request.Status = models.RequestStatusRejected

	suite.requestRepo.On("GetByID", ctx, request.ID).Return(request, nil)
	suite.propertyRepo.On("GetByID", ctx, suite.property.ID).Return(suite.property, nil)

	_, err := suite.service.Accept(ctx, suite.landlord.ID, request.ID, acceptTerms())
	assert.ErrorIs(suite.T(), err, common.ErrInvalidState)
}

func (suite *RequestServiceTestSuite) TestAccept_LostConcurrentRace() {
	ctx := context.Background()
	request := suite.pendingRequest()

	suite.requestRepo.On("GetByID", ctx, request.ID).Return(request, nil)
	suite.propertyRepo.On("GetByID", ctx, suite.property.ID).Return(suite.property, nil)
	suite.requestRepo.On("AcceptWithRental", ctx, request.ID, mock.AnythingOfType("*models.Rental")).Return(repositories.ErrNoTransition)

	_, err := suite.service.Accept(ctx, suite.landlord.ID, request.ID, acceptTerms())
	assert.ErrorIs(suite.T(), err, common.ErrInvalidState)
}

func (suite *RequestServiceTestSuite) TestAccept_InvalidDateRange() {
	ctx := context.Background()
	request := suite.pendingRequest()
	terms := acceptTerms()
	terms.EndDate = terms.StartDate.AddDate(0, 0, -1)

	suite.requestRepo.On("GetByID", ctx, request.ID).Return(request, nil)
	suite.propertyRepo.On("GetByID", ctx, suite.property.ID).Return(suite.property, nil)

	_, err := suite.service.Accept(ctx, suite.landlord.ID, request.ID, terms)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidInput)
}

func (suite *RequestServiceTestSuite) TestReject_SuccessIsSilent() {
	ctx := context.Background()
	request := suite.pendingRequest()

	suite.requestRepo.On("GetByID", ctx, request.ID).Return(request, nil)
	suite.propertyRepo.On("GetByID", ctx, suite.property.ID).Return(suite.property, nil)
	suite.requestRepo.On("RejectIfPending", ctx, request.ID).Return(nil)

	err := suite.service.Reject(ctx, suite.landlord.ID, request.ID)
	assert.NoError(suite.T(), err)
	// No notification goes out on rejection.
	suite.notifSvc.AssertNotCalled(suite.T(), "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RequestServiceTestSuite) TestReject_AlreadyTransitioned() {
	ctx := context.Background()
	request := suite.pendingRequest()

	suite.requestRepo.On("GetByID", ctx, request.ID).Return(request, nil)
	suite.propertyRepo.On("GetByID", ctx, suite.property.ID).Return(suite.property, nil)
	suite.requestRepo.On("RejectIfPending", ctx, request.ID).Return(repositories.ErrNoTransition)

	err := suite.service.Reject(ctx, suite.landlord.ID, request.ID)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidState)
}

func (suite *RequestServiceTestSuite) TestInterestedTenants_DedupKeepsFirstPerTuple() {
	ctx := context.Background()
	roomID := uuid.New()
	base := time.Now().Add(-time.Hour)

	entries := []*models.InterestedEntry{
		{RequestID: uuid.New(), TenantID: suite.tenant.ID, PropertyID: suite.property.ID, Status: models.RequestStatusPending, TenantName: "Ana Costa", RequestedAt: base},
		// Same tuple, later entry: dropped.
		{RequestID: uuid.New(), TenantID: suite.tenant.ID, PropertyID: suite.property.ID, Status: models.RequestStatusPending, TenantName: "Ana Costa", RequestedAt: base.Add(10 * time.Minute)},
		// Same tenant and property but a different room: kept.
		{RequestID: uuid.New(), TenantID: suite.tenant.ID, PropertyID: suite.property.ID, RoomID: &roomID, Status: models.RequestStatusPending, TenantName: "Ana Costa", RequestedAt: base.Add(20 * time.Minute)},
	}

	suite.requestRepo.On("ListInterestedByLandlord", ctx, suite.landlord.ID, (*uuid.UUID)(nil)).Return(entries, nil)

	result, err := suite.service.InterestedTenants(ctx, suite.landlord.ID, nil)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 2)
	assert.Equal(suite.T(), entries[0].RequestID, result[0].RequestID)
	assert.Equal(suite.T(), entries[2].RequestID, result[1].RequestID)
}

func (suite *RequestServiceTestSuite) TestInterestedTenants_RejectedNeverSurface() {
	ctx := context.Background()

	entries := []*models.InterestedEntry{
		{RequestID: uuid.New(), TenantID: suite.tenant.ID, PropertyID: suite.property.ID, Status: models.RequestStatusRejected, TenantName: "Ana Costa", RequestedAt: time.Now()},
	}

	suite.requestRepo.On("ListInterestedByLandlord", ctx, suite.landlord.ID, (*uuid.UUID)(nil)).Return(entries, nil)

	result, err := suite.service.InterestedTenants(ctx, suite.landlord.ID, nil)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), result)
}

func (suite *RequestServiceTestSuite) TestListByTenant_StatusFilter() {
	ctx := context.Background()
	pending := suite.pendingRequest()
	accepted := suite.pendingRequest()
	accepted.Status = models.RequestStatusAccepted

	suite.requestRepo.On("ListByTenant", ctx, suite.tenant.ID, 50, 0).Return([]*models.RentalRequest{pending, accepted}, nil)

	result, err := suite.service.ListByTenant(ctx, suite.tenant.ID, "accepted", 0, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 1)
	assert.Equal(suite.T(), accepted.ID, result[0].ID)
}

func (suite *RequestServiceTestSuite) TestListByTenant_UnknownStatus() {
	ctx := context.Background()

	result, err := suite.service.ListByTenant(ctx, suite.tenant.ID, "archived", 0, 0)
	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidInput)
	suite.requestRepo.AssertNotCalled(suite.T(), "ListByTenant", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RequestServiceTestSuite) TestExpireStalePending_SkipsAlreadyTransitioned() {
	ctx := context.Background()
	first := suite.pendingRequest()
	second := suite.pendingRequest()

	suite.requestRepo.On("ListPendingOlderThan", ctx, mock.AnythingOfType("time.Time"), 100).Return([]*models.RentalRequest{first, second}, nil)
	suite.requestRepo.On("RejectIfPending", ctx, first.ID).Return(nil)
	suite.requestRepo.On("RejectIfPending", ctx, second.ID).Return(repositories.ErrNoTransition)

	expired, err := suite.service.ExpireStalePending(ctx, 30*24*time.Hour, 100)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, expired)
}
