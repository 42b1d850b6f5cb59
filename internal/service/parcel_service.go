package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/parcel-service/internal/directory"
	"github.com/spec-kit/parcel-service/internal/domain"
	"github.com/spec-kit/parcel-service/internal/events"
	"github.com/spec-kit/parcel-service/internal/repository"
	apperrors "github.com/spec-kit/parcel-service/pkg/util"
)

// ParcelService drives the parcel lifecycle: booking, status transitions and
// tracking lookups. Every mutation is authorized against the acting identity
// passed in by the caller; there is no ambient current-user state here.
type ParcelService struct {
	parcels    repository.ParcelRepository
	directory  *directory.Cache
	dispatcher events.Dispatcher
}

// ParcelDependencies bundles collaborators for the service.
type ParcelDependencies struct {
	ParcelRepo repository.ParcelRepository
	Directory  *directory.Cache
	Dispatcher events.Dispatcher
}

// BookingInput describes a booking form submission.
type BookingInput struct {
	SenderName          string
	SenderPhone         string
	ReceiverName        string
	ReceiverPhone       string
	SourceOfficeID      string
	DestinationOfficeID string
	WeightKg            float64
	Quantity            int
	ItemType            string
	PaymentMode         domain.PaymentMode
	Price               float64
}

// NewParcelService constructs the service.
func NewParcelService(deps ParcelDependencies) *ParcelService {
	return &ParcelService{
		parcels:    deps.ParcelRepo,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
	}
}

// Book creates a parcel at its source office. Only the branch manager of the
// source office may book; the parcel, its first history entry and both
// booking notifications happen together or not at all.
func (s *ParcelService) Book(ctx context.Context, identity domain.Identity, input BookingInput) (*domain.Parcel, error) {
	if identity.Role != domain.RoleBranchAdmin {
		return nil, apperrors.NewUnauthorized("only branch managers can book parcels")
	}
	if input.SourceOfficeID == "" {
		input.SourceOfficeID = identity.OfficeID
	}
	if input.SourceOfficeID != identity.OfficeID {
		return nil, apperrors.NewUnauthorized("parcels can only be booked at your own office")
	}
	if err := validateBooking(input); err != nil {
		return nil, err
	}

	trackingID, err := s.newTrackingID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sourceName := s.directory.ResolveOfficeName(input.SourceOfficeID)
	parcel := &domain.Parcel{
		ID:                  uuid.NewString(),
		TrackingID:          trackingID,
		SenderName:          strings.TrimSpace(input.SenderName),
		SenderPhone:         strings.TrimSpace(input.SenderPhone),
		ReceiverName:        strings.TrimSpace(input.ReceiverName),
		ReceiverPhone:       strings.TrimSpace(input.ReceiverPhone),
		SourceOfficeID:      input.SourceOfficeID,
		DestinationOfficeID: input.DestinationOfficeID,
		WeightKg:            input.WeightKg,
		Quantity:            input.Quantity,
		ItemType:            input.ItemType,
		PaymentMode:         input.PaymentMode,
		Price:               input.Price,
		CurrentStatus:       domain.ParcelStatusBooked,
		CreatedAt:           now,
		History: []domain.TrackingEvent{{
			Status:    domain.ParcelStatusBooked,
			Timestamp: now,
			Location:  sourceName,
			Note:      "Parcel booked at source office",
		}},
	}

	if err := s.parcels.Create(ctx, parcel); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventParcelBooked,
		TrackingID: parcel.TrackingID,
		Actor:      actorFromIdentity(identity),
		Payload: events.ParcelBookedPayload{
			SourceOfficeID:      parcel.SourceOfficeID,
			DestinationOfficeID: parcel.DestinationOfficeID,
			SenderName:          parcel.SenderName,
			SenderPhone:         parcel.SenderPhone,
			ReceiverName:        parcel.ReceiverName,
			ReceiverPhone:       parcel.ReceiverPhone,
			PaymentMode:         parcel.PaymentMode,
		},
	})
	return parcel, nil
}

// Advance moves a parcel to the next pipeline status. Checks run in order:
// the parcel exists, the target is the unique legal successor, and the acting
// identity is allowed to request the move.
func (s *ParcelService) Advance(ctx context.Context, identity domain.Identity, trackingID string, target domain.ParcelStatus, note string) (*domain.Parcel, error) {
	parcel, err := s.parcels.GetByTrackingID(ctx, trackingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("parcel", map[string]any{"tracking_id": trackingID})
		}
		return nil, apperrors.MapError(err)
	}

	next, ok := domain.NextStatus(parcel.CurrentStatus)
	if !ok || next != target {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot move parcel from %s to %s", parcel.CurrentStatus, target),
			map[string]any{"current_status": parcel.CurrentStatus, "target_status": target},
		)
	}

	if !canAdvance(identity, parcel, target) {
		return nil, apperrors.NewUnauthorized("acting identity may not advance this parcel")
	}

	event := domain.TrackingEvent{
		Status:    target,
		Timestamp: time.Now(),
		Location:  s.locationFor(identity),
		Note:      note,
	}
	if err := s.parcels.AppendEvent(ctx, trackingID, event); err != nil {
		return nil, apperrors.MapError(err)
	}

	oldStatus := parcel.CurrentStatus
	parcel.History = append(parcel.History, event)
	parcel.CurrentStatus = target

	s.publishEvent(ctx, events.Event{
		Type:       events.EventParcelStatusChanged,
		TrackingID: parcel.TrackingID,
		Actor:      actorFromIdentity(identity),
		Payload: events.ParcelStatusChangedPayload{
			OldStatus:     oldStatus,
			NewStatus:     target,
			Location:      event.Location,
			Note:          note,
			SenderPhone:   parcel.SenderPhone,
			ReceiverPhone: parcel.ReceiverPhone,
		},
	})
	return parcel, nil
}

// Track returns the full parcel including history. Available to every role,
// including anonymous public tracking.
func (s *ParcelService) Track(ctx context.Context, trackingID string) (*domain.Parcel, error) {
	parcel, err := s.parcels.GetByTrackingID(ctx, trackingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("parcel", map[string]any{"tracking_id": trackingID})
		}
		return nil, apperrors.MapError(err)
	}
	return parcel, nil
}

// List returns the parcels visible to the acting identity: org admins see
// everything, branch managers see parcels touching their office, guests see
// nothing here (they use Track with an exact tracking id).
func (s *ParcelService) List(ctx context.Context, identity domain.Identity) ([]domain.Parcel, error) {
	switch identity.Role {
	case domain.RoleOrgAdmin:
		parcels, err := s.parcels.List(ctx)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		return parcels, nil
	case domain.RoleBranchAdmin:
		parcels, err := s.parcels.List(ctx)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		scoped := make([]domain.Parcel, 0, len(parcels))
		for _, parcel := range parcels {
			if parcel.SourceOfficeID == identity.OfficeID || parcel.DestinationOfficeID == identity.OfficeID {
				scoped = append(scoped, parcel)
			}
		}
		return scoped, nil
	default:
		return []domain.Parcel{}, nil
	}
}

// canAdvance is the single authorization rule for status moves: the source
// office dispatches, the destination office receives and hands over.
func canAdvance(identity domain.Identity, parcel *domain.Parcel, target domain.ParcelStatus) bool {
	if identity.Role != domain.RoleBranchAdmin {
		return false
	}
	switch target {
	case domain.ParcelStatusInTransit:
		return identity.OfficeID == parcel.SourceOfficeID
	case domain.ParcelStatusArrived, domain.ParcelStatusDelivered:
		return identity.OfficeID == parcel.DestinationOfficeID
	default:
		return false
	}
}

func (s *ParcelService) locationFor(identity domain.Identity) string {
	switch {
	case identity.Role == domain.RoleBranchAdmin && identity.OfficeID != "":
		return s.directory.ResolveOfficeName(identity.OfficeID)
	case identity.Role == domain.RoleOrgAdmin:
		return domain.LocationHQUpdate
	default:
		return domain.LocationTransit
	}
}

func validateBooking(input BookingInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.SenderName) == "" {
		details["sender_name"] = "required"
	}
	if strings.TrimSpace(input.SenderPhone) == "" {
		details["sender_phone"] = "required"
	}
	if strings.TrimSpace(input.ReceiverName) == "" {
		details["receiver_name"] = "required"
	}
	if strings.TrimSpace(input.ReceiverPhone) == "" {
		details["receiver_phone"] = "required"
	}
	if input.DestinationOfficeID == "" {
		details["destination_office_id"] = "required"
	}
	if input.Quantity < 1 {
		details["quantity"] = "must be at least 1"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid booking details", details)
	}
	if input.DestinationOfficeID == input.SourceOfficeID {
		return apperrors.NewValidationError("source and destination offices must differ", nil)
	}
	return nil
}

// newTrackingID generates a human-shareable TRK-###### id, retrying on the
// unlikely collision.
func (s *ParcelService) newTrackingID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		candidate := fmt.Sprintf("TRK-%06d", 100000+rand.Intn(900000))
		exists, err := s.parcels.ExistsTrackingID(ctx, candidate)
		if err != nil {
			return "", apperrors.MapError(err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", apperrors.NewInternalError(errors.New("could not allocate tracking id"))
}

func (s *ParcelService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorFromIdentity(identity domain.Identity) events.Actor {
	return events.Actor{
		Role:     identity.Role,
		ID:       identity.ID,
		OfficeID: identity.OfficeID,
	}
}
