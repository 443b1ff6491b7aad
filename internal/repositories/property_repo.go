package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"rentora/internal/models"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	GetRoom(ctx context.Context, propertyID, roomID uuid.UUID) (*models.Room, error)
	List(ctx context.Context, filter *models.PropertySearchFilter) ([]*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
}

type propertyRepo struct {
	db Database
}

func NewPropertyRepo(db Database) PropertyRepository {
	return &propertyRepo{db: db}
}

const propertyColumns = `id, landlord_id, title, address, monthly_price, available, created_at, updated_at`

func (r *propertyRepo) Create(ctx context.Context, property *models.Property) error {
	query := `
		INSERT INTO properties (id, landlord_id, title, address, monthly_price, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, property.ID, property.LandlordID, property.Title, property.Address, property.MonthlyPrice, property.Available)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	property := &models.Property{}
	query := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&property.ID, &property.LandlordID, &property.Title, &property.Address, &property.MonthlyPrice, &property.Available, &property.CreatedAt, &property.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return property, nil
}

func (r *propertyRepo) GetRoom(ctx context.Context, propertyID, roomID uuid.UUID) (*models.Room, error) {
	room := &models.Room{}
	query := `
		SELECT id, property_id, name, price, available, created_at
		FROM rooms
		WHERE property_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, propertyID, roomID).Scan(&room.ID, &room.PropertyID, &room.Name, &room.Price, &room.Available, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

func (r *propertyRepo) List(ctx context.Context, filter *models.PropertySearchFilter) ([]*models.Property, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	queryBase := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE 1=1
	`
	args := []interface{}{}
	conditionCount := 0

	if filter.Query != "" {
		conditionCount++
		queryBase += fmt.Sprintf(` AND (title ILIKE $%d OR address ILIKE $%d)`, conditionCount, conditionCount)
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.LandlordID != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND landlord_id = $%d`, conditionCount)
		args = append(args, *filter.LandlordID)
	}
	if filter.MaxPrice != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND monthly_price <= $%d`, conditionCount)
		args = append(args, *filter.MaxPrice)
	}
	if filter.OnlyAvailable {
		queryBase += ` AND available = true`
	}

	queryBase += ` ORDER BY created_at DESC`

	conditionCount++
	queryBase += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		conditionCount++
		queryBase += fmt.Sprintf(` OFFSET $%d`, conditionCount)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		property := &models.Property{}
		if err := rows.Scan(&property.ID, &property.LandlordID, &property.Title, &property.Address, &property.MonthlyPrice, &property.Available, &property.CreatedAt, &property.UpdatedAt); err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}
	return properties, nil
}

func (r *propertyRepo) Update(ctx context.Context, property *models.Property) error {
	query := `
		UPDATE properties
		SET title = $1, address = $2, monthly_price = $3, available = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, property.Title, property.Address, property.MonthlyPrice, property.Available, property.ID)
	return err
}
