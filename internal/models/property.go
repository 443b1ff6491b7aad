package models

import (
	"time"

	"github.com/google/uuid"
)

type Property struct {
	ID           uuid.UUID `json:"id" db:"id"`
	LandlordID   uuid.UUID `json:"landlord_id" db:"landlord_id"`
	Title        string    `json:"title" db:"title"`
	Address      string    `json:"address" db:"address"`
	MonthlyPrice float64   `json:"monthly_price" db:"monthly_price"`
	Available    bool      `json:"available" db:"available"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Room is an individually rentable unit inside a property. Requests that
// target the whole property carry a nil room id.
type Room struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PropertyID uuid.UUID `json:"property_id" db:"property_id"`
	Name       string    `json:"name" db:"name"`
	Price      float64   `json:"price" db:"price"`
	Available  bool      `json:"available" db:"available"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// PropertySearchFilter holds filter criteria for property listing queries
type PropertySearchFilter struct {
	Query         string     `json:"query,omitempty"`
	LandlordID    *uuid.UUID `json:"landlord_id,omitempty"`
	MaxPrice      *float64   `json:"max_price,omitempty"`
	OnlyAvailable bool       `json:"only_available,omitempty"`
	Limit         int        `json:"limit,omitempty"`
	Offset        int        `json:"offset,omitempty"`
}
