package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/parcel-service/internal/domain"
)

// memoryParcelRepository is the in-process store used when no DSN is
// configured, and in tests. One writer at a time; readers get copies.
type memoryParcelRepository struct {
	mu      sync.RWMutex
	parcels map[string]*domain.Parcel
}

// NewMemoryParcelRepository builds an in-memory repository.
func NewMemoryParcelRepository() ParcelRepository {
	return &memoryParcelRepository{parcels: make(map[string]*domain.Parcel)}
}

func (r *memoryParcelRepository) Create(_ context.Context, parcel *domain.Parcel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneParcel(parcel)
	r.parcels[parcel.TrackingID] = &stored
	return nil
}

func (r *memoryParcelRepository) GetByTrackingID(_ context.Context, trackingID string) (*domain.Parcel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	parcel, ok := r.parcels[trackingID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := cloneParcel(parcel)
	return &copied, nil
}

func (r *memoryParcelRepository) AppendEvent(_ context.Context, trackingID string, event domain.TrackingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	parcel, ok := r.parcels[trackingID]
	if !ok {
		return pgx.ErrNoRows
	}
	parcel.History = append(parcel.History, event)
	parcel.CurrentStatus = event.Status
	return nil
}

func (r *memoryParcelRepository) List(_ context.Context) ([]domain.Parcel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Parcel, 0, len(r.parcels))
	for _, parcel := range r.parcels {
		result = append(result, cloneParcel(parcel))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memoryParcelRepository) ExistsTrackingID(_ context.Context, trackingID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.parcels[trackingID]
	return ok, nil
}

func cloneParcel(p *domain.Parcel) domain.Parcel {
	copied := *p
	copied.History = append([]domain.TrackingEvent(nil), p.History...)
	return copied
}
