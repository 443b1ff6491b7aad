package models

import (
	"time"

	"github.com/google/uuid"
)

// Rental is the agreement record created when a request is accepted. It is
// 1:1 with the accepting request. ContractObject is the object-store key of
// the signed contract, attached by a later upload step.
type Rental struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	RequestID      uuid.UUID  `json:"request_id" db:"request_id"`
	TenantID       uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	PropertyID     uuid.UUID  `json:"property_id" db:"property_id"`
	RoomID         *uuid.UUID `json:"room_id" db:"room_id"`
	StartDate      time.Time  `json:"start_date" db:"start_date"`
	EndDate        time.Time  `json:"end_date" db:"end_date"`
	AgreedPrice    float64    `json:"agreed_price" db:"agreed_price"`
	Deposit        *float64   `json:"deposit" db:"deposit"`
	SpecialTerms   *string    `json:"special_terms" db:"special_terms"`
	ContractObject *string    `json:"contract_object" db:"contract_object"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// AcceptTerms carries the landlord-supplied terms for accepting a request.
type AcceptTerms struct {
	AgreedPrice  *float64   `json:"agreed_price"`
	Deposit      *float64   `json:"deposit"`
	SpecialTerms *string    `json:"special_terms"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      time.Time  `json:"end_date"`
}
