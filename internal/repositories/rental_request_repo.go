package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"rentora/internal/models"
)

// Database is the subset of pgxpool.Pool the repositories need; pgxmock
// implements it for tests.
type Database interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ErrNoTransition is returned by compare-and-swap status updates when the
// request was not in the expected state (already transitioned, or lost a
// concurrent accept race).
var ErrNoTransition = errors.New("request status transition affected no rows")

type RentalRequestRepository interface {
	Create(ctx context.Context, req *models.RentalRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RentalRequest, error)
	FindActiveByTuple(ctx context.Context, tenantID, propertyID uuid.UUID, roomID *uuid.UUID) (*models.RentalRequest, error)
	RejectIfPending(ctx context.Context, id uuid.UUID) error
	AcceptWithRental(ctx context.Context, id uuid.UUID, rental *models.Rental) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.RentalRequest, error)
	ListInterestedByLandlord(ctx context.Context, landlordID uuid.UUID, propertyID *uuid.UUID) ([]*models.InterestedEntry, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*models.RentalRequest, error)
}

type rentalRequestRepo struct {
	db Database
}

func NewRentalRequestRepo(db Database) RentalRequestRepository {
	return &rentalRequestRepo{db: db}
}

const requestColumns = `id, tenant_id, property_id, room_id, status, agreed_price, rental_id, requested_at, created_at, updated_at`

func (r *rentalRequestRepo) Create(ctx context.Context, req *models.RentalRequest) error {
	query := `
		INSERT INTO rental_requests (id, tenant_id, property_id, room_id, status, requested_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, req.ID, req.TenantID, req.PropertyID, req.RoomID, req.Status, req.RequestedAt)
	return err
}

func (r *rentalRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RentalRequest, error) {
	req := &models.RentalRequest{}
	query := `
		SELECT ` + requestColumns + `
		FROM rental_requests
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&req.ID, &req.TenantID, &req.PropertyID, &req.RoomID, &req.Status, &req.AgreedPrice, &req.RentalID, &req.RequestedAt, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// FindActiveByTuple returns the non-rejected request for the tuple, or nil.
// A nil roomID matches only whole-property requests.
func (r *rentalRequestRepo) FindActiveByTuple(ctx context.Context, tenantID, propertyID uuid.UUID, roomID *uuid.UUID) (*models.RentalRequest, error) {
	req := &models.RentalRequest{}
	query := `
		SELECT ` + requestColumns + `
		FROM rental_requests
		WHERE tenant_id = $1 AND property_id = $2 AND room_id IS NOT DISTINCT FROM $3 AND status <> 'rejected'
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, tenantID, propertyID, roomID).Scan(&req.ID, &req.TenantID, &req.PropertyID, &req.RoomID, &req.Status, &req.AgreedPrice, &req.RentalID, &req.RequestedAt, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// RejectIfPending flips pending -> rejected via compare-and-swap.
func (r *rentalRequestRepo) RejectIfPending(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE rental_requests
		SET status = 'rejected', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoTransition
	}
	return nil
}

// AcceptWithRental atomically transitions the request pending -> accepted,
// inserts the rental, and stamps rental_id, all in one transaction. The
// compare-and-swap on status guards against concurrent accepts: the loser
// sees zero rows and the whole transaction rolls back. A request is never
// observable as accepted without its rental_id.
func (r *rentalRequestRepo) AcceptWithRental(ctx context.Context, id uuid.UUID, rental *models.Rental) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin accept transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE rental_requests
		SET status = 'accepted', agreed_price = $2, rental_id = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := tx.Exec(ctx, updateQuery, id, rental.AgreedPrice, rental.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoTransition
	}

	insertQuery := `
		INSERT INTO rentals (id, request_id, tenant_id, property_id, room_id, start_date, end_date, agreed_price, deposit, special_terms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`
	if _, err := tx.Exec(ctx, insertQuery, rental.ID, rental.RequestID, rental.TenantID, rental.PropertyID, rental.RoomID, rental.StartDate, rental.EndDate, rental.AgreedPrice, rental.Deposit, rental.SpecialTerms); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *rentalRequestRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.RentalRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM rental_requests
		WHERE tenant_id = $1
		ORDER BY requested_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*models.RentalRequest
	for rows.Next() {
		req := &models.RentalRequest{}
		if err := rows.Scan(&req.ID, &req.TenantID, &req.PropertyID, &req.RoomID, &req.Status, &req.AgreedPrice, &req.RentalID, &req.RequestedAt, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// ListInterestedByLandlord returns requests against the landlord's
// properties joined with the tenant snapshot, rejected excluded, oldest
// first so service-level dedup keeps the earliest row per tuple.
func (r *rentalRequestRepo) ListInterestedByLandlord(ctx context.Context, landlordID uuid.UUID, propertyID *uuid.UUID) ([]*models.InterestedEntry, error) {
	query := `
		SELECT rr.id, rr.tenant_id, rr.property_id, rr.room_id, rr.status, u.name, u.email, u.phone, rr.requested_at
		FROM rental_requests rr
		JOIN properties p ON p.id = rr.property_id
		JOIN users u ON u.id = rr.tenant_id
		WHERE p.landlord_id = $1 AND rr.status <> 'rejected' AND ($2::uuid IS NULL OR rr.property_id = $2)
		ORDER BY rr.requested_at ASC
	`
	rows, err := r.db.Query(ctx, query, landlordID, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.InterestedEntry
	for rows.Next() {
		entry := &models.InterestedEntry{}
		if err := rows.Scan(&entry.RequestID, &entry.TenantID, &entry.PropertyID, &entry.RoomID, &entry.Status, &entry.TenantName, &entry.TenantEmail, &entry.TenantPhone, &entry.RequestedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ListPendingOlderThan feeds the stale-pending expiry job.
func (r *rentalRequestRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*models.RentalRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM rental_requests
		WHERE status = 'pending' AND requested_at < $1
		ORDER BY requested_at ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*models.RentalRequest
	for rows.Next() {
		req := &models.RentalRequest{}
		if err := rows.Scan(&req.ID, &req.TenantID, &req.PropertyID, &req.RoomID, &req.Status, &req.AgreedPrice, &req.RentalID, &req.RequestedAt, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}
