package service_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/parcel-service/internal/config"
	"github.com/spec-kit/parcel-service/internal/domain"
	"github.com/spec-kit/parcel-service/internal/events"
	"github.com/spec-kit/parcel-service/internal/service"
)

func TestNotificationLog_MostRecentFirst(t *testing.T) {
	notifier := service.NewNotificationService(events.NewInMemoryDispatcher(), zap.NewNop(), config.NotificationConfig{LogLimit: 100})

	notifier.Dispatch(domain.RecipientSender, "555-0101", "first")
	notifier.Dispatch(domain.RecipientReceiver, "555-0202", "second")
	notifier.Dispatch(domain.RecipientSender, "555-0101", "third")

	entries := notifier.Recent(0)
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Message)
	assert.Equal(t, "second", entries[1].Message)
	assert.Equal(t, "first", entries[2].Message)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestNotificationLog_RecentLimit(t *testing.T) {
	notifier := service.NewNotificationService(events.NewInMemoryDispatcher(), zap.NewNop(), config.NotificationConfig{LogLimit: 100})

	for i := 0; i < 5; i++ {
		notifier.Dispatch(domain.RecipientSender, "555-0101", fmt.Sprintf("message %d", i))
	}

	assert.Len(t, notifier.Recent(2), 2)
	assert.Len(t, notifier.Recent(99), 5)
	assert.Len(t, notifier.Recent(0), 5)
}

func TestNotificationLog_CapDropsOldest(t *testing.T) {
	notifier := service.NewNotificationService(events.NewInMemoryDispatcher(), zap.NewNop(), config.NotificationConfig{LogLimit: 3})

	for i := 0; i < 5; i++ {
		notifier.Dispatch(domain.RecipientSender, "555-0101", fmt.Sprintf("message %d", i))
	}

	entries := notifier.Recent(0)
	require.Len(t, entries, 3)
	assert.Equal(t, "message 4", entries[0].Message)
	assert.Equal(t, "message 2", entries[2].Message)
}
