package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/parcel-service/internal/config"
	"github.com/spec-kit/parcel-service/internal/domain"
	"github.com/spec-kit/parcel-service/internal/events"
)

// NotificationService records outbound SMS-style messages for domain events.
// It models the gateway without performing real delivery: the log holds what
// would have been sent, most recent first.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig

	mu  sync.RWMutex
	log []domain.Notification
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventParcelBooked, n.handleParcelBooked)
	n.dispatcher.Subscribe(events.EventParcelStatusChanged, n.handleStatusChanged)
}

// Dispatch appends a message to the front of the notification log.
func (n *NotificationService) Dispatch(recipient domain.RecipientRole, phone, message string) {
	entry := domain.Notification{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Recipient: recipient,
		Phone:     phone,
		Message:   message,
	}

	n.mu.Lock()
	n.log = append([]domain.Notification{entry}, n.log...)
	if n.cfg.LogLimit > 0 && len(n.log) > n.cfg.LogLimit {
		n.log = n.log[:n.cfg.LogLimit]
	}
	n.mu.Unlock()

	n.logger.Info("notification dispatched",
		zap.String("recipient", string(recipient)),
		zap.String("phone", phone),
		zap.String("message", message))
}

// Recent returns up to limit entries, most recent first. A non-positive limit
// returns the whole log.
func (n *NotificationService) Recent(limit int) []domain.Notification {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if limit <= 0 || limit > len(n.log) {
		limit = len(n.log)
	}
	return append([]domain.Notification(nil), n.log[:limit]...)
}

func (n *NotificationService) handleParcelBooked(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ParcelBookedPayload)
	if !ok {
		return nil
	}
	n.Dispatch(domain.RecipientSender, payload.SenderPhone,
		fmt.Sprintf("Your parcel %s to %s is booked!", event.TrackingID, payload.ReceiverName))
	n.Dispatch(domain.RecipientReceiver, payload.ReceiverPhone,
		fmt.Sprintf("A parcel from %s (%s) has been booked for you.", payload.SenderName, event.TrackingID))
	return nil
}

func (n *NotificationService) handleStatusChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ParcelStatusChangedPayload)
	if !ok {
		return nil
	}
	switch payload.NewStatus {
	case domain.ParcelStatusInTransit:
		n.Dispatch(domain.RecipientReceiver, payload.ReceiverPhone,
			fmt.Sprintf("Parcel %s is now in transit.", event.TrackingID))
	case domain.ParcelStatusArrived:
		n.Dispatch(domain.RecipientReceiver, payload.ReceiverPhone,
			fmt.Sprintf("Good news! Parcel %s has arrived at destination office.", event.TrackingID))
	case domain.ParcelStatusDelivered:
		n.Dispatch(domain.RecipientSender, payload.SenderPhone,
			fmt.Sprintf("Parcel %s was successfully delivered.", event.TrackingID))
		n.Dispatch(domain.RecipientReceiver, payload.ReceiverPhone,
			fmt.Sprintf("You have collected parcel %s. Thanks!", event.TrackingID))
	}
	return nil
}
