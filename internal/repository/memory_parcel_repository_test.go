package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/parcel-service/internal/domain"
	"github.com/spec-kit/parcel-service/internal/repository"
)

func sampleParcel(trackingID string, createdAt time.Time) *domain.Parcel {
	return &domain.Parcel{
		ID:                  trackingID + "-uuid",
		TrackingID:          trackingID,
		SenderName:          "Alice Smith",
		ReceiverName:        "Bob Jones",
		SourceOfficeID:      "off_1",
		DestinationOfficeID: "off_2",
		CurrentStatus:       domain.ParcelStatusBooked,
		CreatedAt:           createdAt,
		History: []domain.TrackingEvent{{
			Status:    domain.ParcelStatusBooked,
			Timestamp: createdAt,
			Location:  "Central Hub NY",
		}},
	}
}

func TestMemoryParcelRepository_CreateAndGet(t *testing.T) {
	repo := repository.NewMemoryParcelRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleParcel("TRK-111111", time.Now())))

	found, err := repo.GetByTrackingID(ctx, "TRK-111111")
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", found.SenderName)
	require.Len(t, found.History, 1)

	exists, err := repo.ExistsTrackingID(ctx, "TRK-111111")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetByTrackingID(ctx, "TRK-000000")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryParcelRepository_AppendEventKeepsStatusInLockstep(t *testing.T) {
	repo := repository.NewMemoryParcelRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleParcel("TRK-111111", time.Now())))

	err := repo.AppendEvent(ctx, "TRK-111111", domain.TrackingEvent{
		Status:    domain.ParcelStatusInTransit,
		Timestamp: time.Now(),
		Location:  domain.LocationTransit,
	})
	require.NoError(t, err)

	found, err := repo.GetByTrackingID(ctx, "TRK-111111")
	require.NoError(t, err)
	assert.Equal(t, domain.ParcelStatusInTransit, found.CurrentStatus)
	require.Len(t, found.History, 2)
	assert.Equal(t, found.History[1].Status, found.CurrentStatus)

	err = repo.AppendEvent(ctx, "TRK-404040", domain.TrackingEvent{Status: domain.ParcelStatusInTransit})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryParcelRepository_ReadsAreCopies(t *testing.T) {
	repo := repository.NewMemoryParcelRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleParcel("TRK-111111", time.Now())))

	found, err := repo.GetByTrackingID(ctx, "TRK-111111")
	require.NoError(t, err)
	found.SenderName = "Mallory"
	found.History[0].Note = "tampered"

	again, err := repo.GetByTrackingID(ctx, "TRK-111111")
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", again.SenderName)
	assert.Empty(t, again.History[0].Note)
}

func TestMemoryParcelRepository_ListNewestFirst(t *testing.T) {
	repo := repository.NewMemoryParcelRepository()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, repo.Create(ctx, sampleParcel("TRK-111111", base.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, sampleParcel("TRK-222222", base)))

	parcels, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, parcels, 2)
	assert.Equal(t, "TRK-222222", parcels[0].TrackingID)
	assert.Equal(t, "TRK-111111", parcels[1].TrackingID)
}
