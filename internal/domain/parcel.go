package domain

import "time"

// ParcelStatus enumerates the delivery pipeline states.
type ParcelStatus string

const (
	ParcelStatusBooked    ParcelStatus = "BOOKED"
	ParcelStatusInTransit ParcelStatus = "IN_TRANSIT"
	ParcelStatusArrived   ParcelStatus = "ARRIVED"
	ParcelStatusDelivered ParcelStatus = "DELIVERED"
)

// NextStatus returns the unique legal successor of a status. The pipeline is
// strictly linear; DELIVERED is terminal.
func NextStatus(current ParcelStatus) (ParcelStatus, bool) {
	switch current {
	case ParcelStatusBooked:
		return ParcelStatusInTransit, true
	case ParcelStatusInTransit:
		return ParcelStatusArrived, true
	case ParcelStatusArrived:
		return ParcelStatusDelivered, true
	default:
		return "", false
	}
}

// PaymentMode enumerates who pays for the shipment.
type PaymentMode string

const (
	PaymentModeSenderPays   PaymentMode = "SENDER_PAYS"
	PaymentModeReceiverPays PaymentMode = "RECEIVER_PAYS"
)

// History-entry location markers for actors without a concrete office.
const (
	LocationTransit  = "Transit"
	LocationHQUpdate = "HQ Update"
)

// TrackingEvent is one immutable entry in a parcel's history.
type TrackingEvent struct {
	Status    ParcelStatus
	Timestamp time.Time
	Location  string
	Note      string
}

// Parcel is a single shipment tracked through the four-stage lifecycle.
// History is append-only and chronological; CurrentStatus always equals the
// status of the last history entry.
type Parcel struct {
	ID                  string
	TrackingID          string
	SenderName          string
	SenderPhone         string
	ReceiverName        string
	ReceiverPhone       string
	SourceOfficeID      string
	DestinationOfficeID string
	WeightKg            float64
	Quantity            int
	ItemType            string
	PaymentMode         PaymentMode
	Price               float64
	CurrentStatus       ParcelStatus
	History             []TrackingEvent
	CreatedAt           time.Time
}

// LastEvent returns the most recent history entry.
func (p *Parcel) LastEvent() TrackingEvent {
	if len(p.History) == 0 {
		return TrackingEvent{}
	}
	return p.History[len(p.History)-1]
}
