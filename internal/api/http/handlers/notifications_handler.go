package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parcel-service/internal/api/dto"
	"github.com/spec-kit/parcel-service/internal/service"
)

// NotificationsHandler exposes the read-only notification log.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notificationService}
}

// List handles GET /api/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	entries := h.notifications.Recent(limit)
	responses := make([]dto.NotificationResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NotificationResponse{
			ID:        entry.ID,
			Timestamp: entry.Timestamp,
			Recipient: entry.Recipient,
			Phone:     entry.Phone,
			Message:   entry.Message,
		})
	}
	return c.JSON(fiber.Map{"data": responses})
}
