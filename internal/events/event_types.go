package events

import (
	"time"

	"github.com/spec-kit/parcel-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventParcelBooked        EventType = "parcel_booked"
	EventParcelStatusChanged EventType = "parcel_status_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role     domain.Role `json:"role"`
	ID       string      `json:"id"`
	OfficeID string      `json:"office_id,omitempty"`
}

// Event represents a domain event emitted by the lifecycle engine.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	TrackingID string      `json:"tracking_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// ParcelBookedPayload payload.
type ParcelBookedPayload struct {
	SourceOfficeID      string             `json:"source_office_id"`
	DestinationOfficeID string             `json:"destination_office_id"`
	SenderName          string             `json:"sender_name"`
	SenderPhone         string             `json:"sender_phone"`
	ReceiverName        string             `json:"receiver_name"`
	ReceiverPhone       string             `json:"receiver_phone"`
	PaymentMode         domain.PaymentMode `json:"payment_mode"`
}

// ParcelStatusChangedPayload payload.
type ParcelStatusChangedPayload struct {
	OldStatus     domain.ParcelStatus `json:"old_status"`
	NewStatus     domain.ParcelStatus `json:"new_status"`
	Location      string              `json:"location"`
	Note          string              `json:"note,omitempty"`
	SenderPhone   string              `json:"sender_phone"`
	ReceiverPhone string              `json:"receiver_phone"`
}
