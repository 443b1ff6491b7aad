package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"rentora/internal/models"
)

type RentalRequestRepoTestSuite struct {
	suite.Suite
	mock       pgxmock.PgxPoolIface
	repo       RentalRequestRepository
	tenantID   uuid.UUID
	propertyID uuid.UUID
	requestID  uuid.UUID
	context    context.Context
}

func (suite *RentalRequestRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewRentalRequestRepo(mock)
	suite.tenantID = uuid.New()
	suite.propertyID = uuid.New()
	suite.requestID = uuid.New()
	suite.context = context.Background()
}

func (suite *RentalRequestRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestRentalRequestRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RentalRequestRepoTestSuite))
}

func requestRows(req *models.RentalRequest) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "tenant_id", "property_id", "room_id", "status", "agreed_price", "rental_id", "requested_at", "created_at", "updated_at"}).
		AddRow(req.ID, req.TenantID, req.PropertyID, req.RoomID, req.Status, req.AgreedPrice, req.RentalID, req.RequestedAt, req.CreatedAt, req.UpdatedAt)
}

func (suite *RentalRequestRepoTestSuite) TestCreate_Success() {
	req := &models.RentalRequest{
		ID:          suite.requestID,
		TenantID:    suite.tenantID,
		PropertyID:  suite.propertyID,
		Status:      models.RequestStatusPending,
		RequestedAt: time.Now(),
	}

	suite.mock.ExpectExec(`INSERT INTO rental_requests`).
		WithArgs(req.ID, req.TenantID, req.PropertyID, req.RoomID, req.Status, req.RequestedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, req)
	assert.NoError(suite.T(), err)
}

func (suite *RentalRequestRepoTestSuite) TestFindActiveByTuple_Found() {
	now := time.Now()
	req := &models.RentalRequest{
		ID:          suite.requestID,
		TenantID:    suite.tenantID,
		PropertyID:  suite.propertyID,
		Status:      models.RequestStatusPending,
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	suite.mock.ExpectQuery(`SELECT .+ FROM rental_requests\s+WHERE tenant_id = \$1 AND property_id = \$2 AND room_id IS NOT DISTINCT FROM \$3 AND status <> 'rejected'`).
		WithArgs(suite.tenantID, suite.propertyID, (*uuid.UUID)(nil)).
		WillReturnRows(requestRows(req))

	result, err := suite.repo.FindActiveByTuple(suite.context, suite.tenantID, suite.propertyID, nil)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), result)
	assert.Equal(suite.T(), req.ID, result.ID)
	assert.Equal(suite.T(), models.RequestStatusPending, result.Status)
}

func (suite *RentalRequestRepoTestSuite) TestFindActiveByTuple_NoneReturnsNil() {
	suite.mock.ExpectQuery(`SELECT .+ FROM rental_requests`).
		WithArgs(suite.tenantID, suite.propertyID, (*uuid.UUID)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "tenant_id", "property_id", "room_id", "status", "agreed_price", "rental_id", "requested_at", "created_at", "updated_at"}))

	result, err := suite.repo.FindActiveByTuple(suite.context, suite.tenantID, suite.propertyID, nil)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), result)
}

func (suite *RentalRequestRepoTestSuite) TestRejectIfPending_Success() {
	suite.mock.ExpectExec(`UPDATE rental_requests\s+SET status = 'rejected', updated_at = NOW\(\)\s+WHERE id = \$1 AND status = 'pending'`).
		WithArgs(suite.requestID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.RejectIfPending(suite.context, suite.requestID)
	assert.NoError(suite.T(), err)
}

func (suite *RentalRequestRepoTestSuite) TestRejectIfPending_AlreadyTransitioned() {
	suite.mock.ExpectExec(`UPDATE rental_requests`).
		WithArgs(suite.requestID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.RejectIfPending(suite.context, suite.requestID)
	assert.ErrorIs(suite.T(), err, ErrNoTransition)
}

func (suite *RentalRequestRepoTestSuite) TestAcceptWithRental_Success() {
	rental := &models.Rental{
		ID:          uuid.New(),
		RequestID:   suite.requestID,
		TenantID:    suite.tenantID,
		PropertyID:  suite.propertyID,
		StartDate:   time.Now(),
		EndDate:     time.Now().AddDate(1, 0, 0),
		AgreedPrice: 950,
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE rental_requests\s+SET status = 'accepted'`).
		WithArgs(suite.requestID, rental.AgreedPrice, rental.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO rentals`).
		WithArgs(rental.ID, rental.RequestID, rental.TenantID, rental.PropertyID, rental.RoomID, rental.StartDate, rental.EndDate, rental.AgreedPrice, rental.Deposit, rental.SpecialTerms).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()
	suite.mock.ExpectRollback()

	err := suite.repo.AcceptWithRental(suite.context, suite.requestID, rental)
	assert.NoError(suite.T(), err)
}

func (suite *RentalRequestRepoTestSuite) TestAcceptWithRental_LostRace() {
	rental := &models.Rental{
		ID:          uuid.New(),
		RequestID:   suite.requestID,
		TenantID:    suite.tenantID,
		PropertyID:  suite.propertyID,
		AgreedPrice: 950,
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE rental_requests\s+SET status = 'accepted'`).
		WithArgs(suite.requestID, rental.AgreedPrice, rental.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectRollback()

	err := suite.repo.AcceptWithRental(suite.context, suite.requestID, rental)
	assert.ErrorIs(suite.T(), err, ErrNoTransition)
}

func (suite *RentalRequestRepoTestSuite) TestAcceptWithRental_InsertFailureRollsBack() {
	rental := &models.Rental{
		ID:          uuid.New(),
		RequestID:   suite.requestID,
		TenantID:    suite.tenantID,
		PropertyID:  suite.propertyID,
		AgreedPrice: 950,
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE rental_requests\s+SET status = 'accepted'`).
		WithArgs(suite.requestID, rental.AgreedPrice, rental.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO rentals`).
		WithArgs(rental.ID, rental.RequestID, rental.TenantID, rental.PropertyID, rental.RoomID, rental.StartDate, rental.EndDate, rental.AgreedPrice, rental.Deposit, rental.SpecialTerms).
		WillReturnError(errors.New("constraint violation"))
	suite.mock.ExpectRollback()

	err := suite.repo.AcceptWithRental(suite.context, suite.requestID, rental)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "constraint violation")
}

func (suite *RentalRequestRepoTestSuite) TestListByTenant_Success() {
	now := time.Now()
	req := &models.RentalRequest{
		ID:          suite.requestID,
		TenantID:    suite.tenantID,
		PropertyID:  suite.propertyID,
		Status:      models.RequestStatusAccepted,
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	suite.mock.ExpectQuery(`SELECT .+ FROM rental_requests\s+WHERE tenant_id = \$1\s+ORDER BY requested_at DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs(suite.tenantID, 10, 0).
		WillReturnRows(requestRows(req))

	result, err := suite.repo.ListByTenant(suite.context, suite.tenantID, 10, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 1)
	assert.Equal(suite.T(), models.RequestStatusAccepted, result[0].Status)
}

func (suite *RentalRequestRepoTestSuite) TestListInterestedByLandlord_Success() {
	landlordID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "tenant_id", "property_id", "room_id", "status", "name", "email", "phone", "requested_at"}).
		AddRow(suite.requestID, suite.tenantID, suite.propertyID, (*uuid.UUID)(nil), models.RequestStatusPending, "Ana Costa", "ana@example.com", (*string)(nil), now)

	suite.mock.ExpectQuery(`FROM rental_requests rr\s+JOIN properties p ON p\.id = rr\.property_id\s+JOIN users u ON u\.id = rr\.tenant_id`).
		WithArgs(landlordID, (*uuid.UUID)(nil)).
		WillReturnRows(rows)

	result, err := suite.repo.ListInterestedByLandlord(suite.context, landlordID, nil)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 1)
	assert.Equal(suite.T(), "Ana Costa", result[0].TenantName)
	assert.Equal(suite.T(), suite.tenantID, result[0].TenantID)
}

func (suite *RentalRequestRepoTestSuite) TestListPendingOlderThan_Success() {
	cutoff := time.Now().AddDate(0, -1, 0)
	old := &models.RentalRequest{
		ID:          suite.requestID,
		TenantID:    suite.tenantID,
		PropertyID:  suite.propertyID,
		Status:      models.RequestStatusPending,
		RequestedAt: cutoff.AddDate(0, -1, 0),
		CreatedAt:   cutoff,
		UpdatedAt:   cutoff,
	}

	suite.mock.ExpectQuery(`WHERE status = 'pending' AND requested_at < \$1`).
		WithArgs(cutoff, 100).
		WillReturnRows(requestRows(old))

	result, err := suite.repo.ListPendingOlderThan(suite.context, cutoff, 100)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 1)
}
