package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeRentalRequest  NotificationType = "rental_request"
	NotificationTypeRentalAccepted NotificationType = "rental_accepted"
)

// ValidNotificationType validates notification type strings
func ValidNotificationType(t string) bool {
	switch NotificationType(t) {
	case NotificationTypeRentalRequest, NotificationTypeRentalAccepted:
		return true
	}
	return false
}

// TypesForRole returns the notification types relevant to a role: landlords
// only care about incoming requests, tenants about acceptances. Admins see
// both.
func TypesForRole(role UserRole) []NotificationType {
	switch role {
	case RoleLandlord:
		return []NotificationType{NotificationTypeRentalRequest}
	case RoleTenant:
		return []NotificationType{NotificationTypeRentalAccepted}
	default:
		return []NotificationType{NotificationTypeRentalRequest, NotificationTypeRentalAccepted}
	}
}

// JSONB represents PostgreSQL JSONB type
type JSONB map[string]interface{}

// Notification is a per-recipient event row. Read is monotonic: once true it
// never reverts. Rows are soft-state and never physically deleted.
type Notification struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	RecipientID uuid.UUID        `json:"recipient_id" db:"recipient_id"`
	SenderID    uuid.UUID        `json:"sender_id" db:"sender_id"`
	Type        NotificationType `json:"type" db:"type"`
	Title       string           `json:"title" db:"title"`
	Message     string           `json:"message" db:"message"`
	Data        JSONB            `json:"data" db:"data"`
	Read        bool             `json:"read" db:"read"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

// FallbackCounterpart is shown when a notification payload cannot be decoded.
const FallbackCounterpart = "unknown"

// NotificationPayload is the structured content a notification carries so
// the receiving client can deep-link to the right screen.
type NotificationPayload struct {
	PropertyID       uuid.UUID  `json:"property_id"`
	RoomID           *uuid.UUID `json:"room_id,omitempty"`
	CounterpartID    uuid.UUID  `json:"counterpart_id"`
	CounterpartName  string     `json:"counterpart_name"`
	CounterpartEmail string     `json:"counterpart_email"`
	CounterpartPhone string     `json:"counterpart_phone,omitempty"`
	RentalID         *uuid.UUID `json:"rental_id,omitempty"`
}

// ToJSONB converts the payload to the opaque map stored on the row.
func (p *NotificationPayload) ToJSONB() (JSONB, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var data JSONB
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// NotificationView is the wire shape of an unread feed entry: the raw row
// plus its decoded payload, so clients render the counterpart and deep-link
// targets without parsing the opaque data map themselves.
type NotificationView struct {
	Notification
	Payload NotificationPayload `json:"payload"`
}

// View decodes the payload onto the row for the unread feed response.
func (n *Notification) View() NotificationView {
	payload, _ := n.DecodePayload()
	return NotificationView{Notification: *n, Payload: payload}
}

// DecodePayload parses the opaque data map into the typed payload. A
// malformed or incomplete payload degrades to a placeholder counterpart
// instead of failing; the bool reports whether the decode was clean.
func (n *Notification) DecodePayload() (NotificationPayload, bool) {
	fallback := NotificationPayload{CounterpartName: FallbackCounterpart}

	raw, err := json.Marshal(n.Data)
	if err != nil {
		return fallback, false
	}
	var payload NotificationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fallback, false
	}
	if payload.PropertyID == uuid.Nil || payload.CounterpartName == "" {
		if payload.CounterpartName == "" {
			payload.CounterpartName = FallbackCounterpart
		}
		return payload, false
	}
	return payload, true
}
