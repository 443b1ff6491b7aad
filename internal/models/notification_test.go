package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDecodePayload_RoundTrip(t *testing.T) {
	roomID := uuid.New()
	payload := &NotificationPayload{
		PropertyID:       uuid.New(),
		RoomID:           &roomID,
		CounterpartID:    uuid.New(),
		CounterpartName:  "Ana Costa",
		CounterpartEmail: "ana@example.com",
	}
	data, err := payload.ToJSONB()
	assert.NoError(t, err)

	n := &Notification{ID: uuid.New(), Data: data}
	decoded, ok := n.DecodePayload()
	assert.True(t, ok)
	assert.Equal(t, payload.PropertyID, decoded.PropertyID)
	assert.Equal(t, roomID, *decoded.RoomID)
	assert.Equal(t, "Ana Costa", decoded.CounterpartName)
}

func TestDecodePayload_WrongTypedFieldFallsBack(t *testing.T) {
	// A property_id that is not a uuid string cannot unmarshal; the feed
	// still renders with the placeholder counterpart.
	n := &Notification{ID: uuid.New(), Data: JSONB{
		"property_id":      12345,
		"counterpart_name": "Ana Costa",
	}}

	decoded, ok := n.DecodePayload()
	assert.False(t, ok)
	assert.Equal(t, FallbackCounterpart, decoded.CounterpartName)
	assert.Equal(t, uuid.Nil, decoded.PropertyID)
}

func TestDecodePayload_MissingCounterpartNameFallsBack(t *testing.T) {
	propertyID := uuid.New()
	n := &Notification{ID: uuid.New(), Data: JSONB{
		"property_id":    propertyID.String(),
		"counterpart_id": uuid.New().String(),
	}}

	decoded, ok := n.DecodePayload()
	assert.False(t, ok)
	assert.Equal(t, FallbackCounterpart, decoded.CounterpartName)
	// Fields that did decode are kept.
	assert.Equal(t, propertyID, decoded.PropertyID)
}

func TestDecodePayload_NilData(t *testing.T) {
	n := &Notification{ID: uuid.New()}

	decoded, ok := n.DecodePayload()
	assert.False(t, ok)
	assert.Equal(t, FallbackCounterpart, decoded.CounterpartName)
}

func TestView_CarriesDecodedPayload(t *testing.T) {
	payload := &NotificationPayload{
		PropertyID:      uuid.New(),
		CounterpartID:   uuid.New(),
		CounterpartName: "Bruno Dias",
	}
	data, err := payload.ToJSONB()
	assert.NoError(t, err)

	n := &Notification{ID: uuid.New(), Title: "New rental request", Data: data}
	view := n.View()
	assert.Equal(t, n.ID, view.ID)
	assert.Equal(t, payload.PropertyID, view.Payload.PropertyID)
	assert.Equal(t, "Bruno Dias", view.Payload.CounterpartName)
}

func TestView_MalformedPayloadStillRenders(t *testing.T) {
	n := &Notification{ID: uuid.New(), Title: "New rental request", Data: JSONB{
		"property_id": true,
	}}

	view := n.View()
	assert.Equal(t, n.ID, view.ID)
	assert.Equal(t, FallbackCounterpart, view.Payload.CounterpartName)
}
