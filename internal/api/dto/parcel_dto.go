package dto

import (
	"time"

	"github.com/spec-kit/parcel-service/internal/domain"
)

// BookParcelRequest payload.
type BookParcelRequest struct {
	SenderName          string             `json:"sender_name"`
	SenderPhone         string             `json:"sender_phone"`
	ReceiverName        string             `json:"receiver_name"`
	ReceiverPhone       string             `json:"receiver_phone"`
	DestinationOfficeID string             `json:"destination_office_id"`
	WeightKg            float64            `json:"weight_kg"`
	Quantity            int                `json:"quantity"`
	ItemType            string             `json:"item_type"`
	PaymentMode         domain.PaymentMode `json:"payment_mode"`
	Price               float64            `json:"price"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.ParcelStatus `json:"status"`
	Note   string              `json:"note"`
}

// TrackingEventResponse is one history entry.
type TrackingEventResponse struct {
	Status    domain.ParcelStatus `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	Location  string              `json:"location"`
	Note      string              `json:"note,omitempty"`
}

// ParcelResponse provides full parcel info.
type ParcelResponse struct {
	ID                  string                  `json:"id"`
	TrackingID          string                  `json:"tracking_id"`
	SenderName          string                  `json:"sender_name"`
	SenderPhone         string                  `json:"sender_phone"`
	ReceiverName        string                  `json:"receiver_name"`
	ReceiverPhone       string                  `json:"receiver_phone"`
	SourceOfficeID      string                  `json:"source_office_id"`
	DestinationOfficeID string                  `json:"destination_office_id"`
	WeightKg            float64                 `json:"weight_kg"`
	Quantity            int                     `json:"quantity"`
	ItemType            string                  `json:"item_type"`
	PaymentMode         domain.PaymentMode      `json:"payment_mode"`
	Price               float64                 `json:"price"`
	CurrentStatus       domain.ParcelStatus     `json:"current_status"`
	History             []TrackingEventResponse `json:"history"`
	CreatedAt           time.Time               `json:"created_at"`
}

// NewParcelResponse maps a domain parcel.
func NewParcelResponse(parcel *domain.Parcel) ParcelResponse {
	history := make([]TrackingEventResponse, 0, len(parcel.History))
	for _, event := range parcel.History {
		history = append(history, TrackingEventResponse{
			Status:    event.Status,
			Timestamp: event.Timestamp,
			Location:  event.Location,
			Note:      event.Note,
		})
	}
	return ParcelResponse{
		ID:                  parcel.ID,
		TrackingID:          parcel.TrackingID,
		SenderName:          parcel.SenderName,
		SenderPhone:         parcel.SenderPhone,
		ReceiverName:        parcel.ReceiverName,
		ReceiverPhone:       parcel.ReceiverPhone,
		SourceOfficeID:      parcel.SourceOfficeID,
		DestinationOfficeID: parcel.DestinationOfficeID,
		WeightKg:            parcel.WeightKg,
		Quantity:            parcel.Quantity,
		ItemType:            parcel.ItemType,
		PaymentMode:         parcel.PaymentMode,
		Price:               parcel.Price,
		CurrentStatus:       parcel.CurrentStatus,
		History:             history,
		CreatedAt:           parcel.CreatedAt,
	}
}

// NotificationResponse is one entry of the notification log.
type NotificationResponse struct {
	ID        string               `json:"id"`
	Timestamp time.Time            `json:"timestamp"`
	Recipient domain.RecipientRole `json:"recipient"`
	Phone     string               `json:"phone"`
	Message   string               `json:"message"`
}
