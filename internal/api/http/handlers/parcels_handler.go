package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parcel-service/internal/api/dto"
	"github.com/spec-kit/parcel-service/internal/auth"
	"github.com/spec-kit/parcel-service/internal/service"
)

// ParcelsHandler exposes booking, status updates and tracking.
type ParcelsHandler struct {
	parcels *service.ParcelService
}

// NewParcelsHandler constructs handler.
func NewParcelsHandler(parcelService *service.ParcelService) *ParcelsHandler {
	return &ParcelsHandler{parcels: parcelService}
}

// Book handles POST /api/shipments.
func (h *ParcelsHandler) Book(c *fiber.Ctx) error {
	var req dto.BookParcelRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	identity := auth.IdentityFromContext(c)
	parcel, err := h.parcels.Book(c.Context(), identity, service.BookingInput{
		SenderName:          req.SenderName,
		SenderPhone:         req.SenderPhone,
		ReceiverName:        req.ReceiverName,
		ReceiverPhone:       req.ReceiverPhone,
		SourceOfficeID:      identity.OfficeID,
		DestinationOfficeID: req.DestinationOfficeID,
		WeightKg:            req.WeightKg,
		Quantity:            req.Quantity,
		ItemType:            req.ItemType,
		PaymentMode:         req.PaymentMode,
		Price:               req.Price,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Shipment booked successfully",
		"data":    dto.NewParcelResponse(parcel),
	})
}

// UpdateStatus handles PATCH /api/shipments/:trackingId/status.
func (h *ParcelsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Status == "" {
		return fiber.NewError(http.StatusBadRequest, "status required")
	}

	identity := auth.IdentityFromContext(c)
	parcel, err := h.parcels.Advance(c.Context(), identity, c.Params("trackingId"), req.Status, req.Note)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Status updated to " + string(parcel.CurrentStatus),
		"data":    dto.NewParcelResponse(parcel),
	})
}

// List handles GET /api/shipments.
func (h *ParcelsHandler) List(c *fiber.Ctx) error {
	identity := auth.IdentityFromContext(c)
	parcels, err := h.parcels.List(c.Context(), identity)
	if err != nil {
		return err
	}

	responses := make([]dto.ParcelResponse, 0, len(parcels))
	for i := range parcels {
		responses = append(responses, dto.NewParcelResponse(&parcels[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// Track handles GET /api/shipments/track/:trackingId. Public: no principal
// required; an exact tracking id is the only key.
func (h *ParcelsHandler) Track(c *fiber.Ctx) error {
	parcel, err := h.parcels.Track(c.Context(), c.Params("trackingId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewParcelResponse(parcel)})
}
