package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the closed set of rental request states. Rejected is
// terminal but supersedable: the tenant may file a fresh request afterwards.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

// ValidRequestStatus reports whether the status is one of the closed set.
func ValidRequestStatus(status string) bool {
	switch RequestStatus(status) {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusRejected:
		return true
	}
	return false
}

// RentalRequest is a tenant's expressed interest in a property or a specific
// room of it. At most one non-rejected request may exist per
// (tenant, property, room) tuple; RentalID is set exactly when the request
// is accepted and never otherwise.
type RentalRequest struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	TenantID    uuid.UUID     `json:"tenant_id" db:"tenant_id"`
	PropertyID  uuid.UUID     `json:"property_id" db:"property_id"`
	RoomID      *uuid.UUID    `json:"room_id" db:"room_id"`
	Status      RequestStatus `json:"status" db:"status"`
	AgreedPrice *float64      `json:"agreed_price" db:"agreed_price"`
	RentalID    *uuid.UUID    `json:"rental_id" db:"rental_id"`
	RequestedAt time.Time     `json:"requested_at" db:"requested_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// InterestedEntry is one row of a landlord's interested-tenants view: the
// request joined with a snapshot of the tenant's contact details.
type InterestedEntry struct {
	RequestID   uuid.UUID     `json:"request_id"`
	TenantID    uuid.UUID     `json:"tenant_id"`
	PropertyID  uuid.UUID     `json:"property_id"`
	RoomID      *uuid.UUID    `json:"room_id"`
	Status      RequestStatus `json:"status"`
	TenantName  string        `json:"tenant_name"`
	TenantEmail string        `json:"tenant_email"`
	TenantPhone *string       `json:"tenant_phone"`
	RequestedAt time.Time     `json:"requested_at"`
}

// TupleKey identifies the request's dedup tuple. A nil room id folds to the
// zero UUID so whole-property requests collide with each other, not with
// room-scoped ones.
func (e *InterestedEntry) TupleKey() string {
	room := uuid.Nil
	if e.RoomID != nil {
		room = *e.RoomID
	}
	return e.TenantID.String() + ":" + e.PropertyID.String() + ":" + room.String()
}
