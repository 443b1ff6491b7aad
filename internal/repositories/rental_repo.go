package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"rentora/internal/models"
)

type RentalRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Rental, error)
	SetContractObject(ctx context.Context, id uuid.UUID, objectKey string) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Rental, error)
}

type rentalRepo struct {
	db Database
}

func NewRentalRepo(db Database) RentalRepository {
	return &rentalRepo{db: db}
}

const rentalColumns = `id, request_id, tenant_id, property_id, room_id, start_date, end_date, agreed_price, deposit, special_terms, contract_object, created_at`

func (r *rentalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	rental := &models.Rental{}
	query := `
		SELECT ` + rentalColumns + `
		FROM rentals
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&rental.ID, &rental.RequestID, &rental.TenantID, &rental.PropertyID, &rental.RoomID, &rental.StartDate, &rental.EndDate, &rental.AgreedPrice, &rental.Deposit, &rental.SpecialTerms, &rental.ContractObject, &rental.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rental, nil
}

func (r *rentalRepo) SetContractObject(ctx context.Context, id uuid.UUID, objectKey string) error {
	query := `UPDATE rentals SET contract_object = $2 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, objectKey)
	return err
}

func (r *rentalRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Rental, error) {
	query := `
		SELECT ` + rentalColumns + `
		FROM rentals
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []*models.Rental
	for rows.Next() {
		rental := &models.Rental{}
		if err := rows.Scan(&rental.ID, &rental.RequestID, &rental.TenantID, &rental.PropertyID, &rental.RoomID, &rental.StartDate, &rental.EndDate, &rental.AgreedPrice, &rental.Deposit, &rental.SpecialTerms, &rental.ContractObject, &rental.CreatedAt); err != nil {
			return nil, err
		}
		rentals = append(rentals, rental)
	}
	return rentals, nil
}
