package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/parcel-service/internal/domain"
)

// ParcelRepository owns the parcel collection and its history. It is the only
// writer of CurrentStatus and History.
type ParcelRepository interface {
	Create(ctx context.Context, parcel *domain.Parcel) error
	GetByTrackingID(ctx context.Context, trackingID string) (*domain.Parcel, error)
	// AppendEvent appends a history entry and moves CurrentStatus with it in
	// one step, keeping the two in lockstep.
	AppendEvent(ctx context.Context, trackingID string, event domain.TrackingEvent) error
	List(ctx context.Context) ([]domain.Parcel, error)
	ExistsTrackingID(ctx context.Context, trackingID string) (bool, error)
}

type parcelRepository struct {
	pool *pgxpool.Pool
}

// NewParcelRepository builds a Postgres-backed repository.
func NewParcelRepository(pool *pgxpool.Pool) ParcelRepository {
	return &parcelRepository{pool: pool}
}

func (r *parcelRepository) Create(ctx context.Context, parcel *domain.Parcel) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO parcels (id, tracking_id, sender_name, sender_phone, receiver_name, receiver_phone,
            source_office_id, destination_office_id, weight_kg, quantity, item_type, payment_mode, price,
            current_status, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	if _, err := tx.Exec(ctx, query,
		parcel.ID,
		parcel.TrackingID,
		parcel.SenderName,
		parcel.SenderPhone,
		parcel.ReceiverName,
		parcel.ReceiverPhone,
		parcel.SourceOfficeID,
		parcel.DestinationOfficeID,
		parcel.WeightKg,
		parcel.Quantity,
		parcel.ItemType,
		parcel.PaymentMode,
		parcel.Price,
		parcel.CurrentStatus,
		parcel.CreatedAt,
	); err != nil {
		return err
	}

	for _, event := range parcel.History {
		if err := insertEvent(ctx, tx, parcel.TrackingID, event); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *parcelRepository) GetByTrackingID(ctx context.Context, trackingID string) (*domain.Parcel, error) {
	const query = `
        SELECT id, tracking_id, sender_name, sender_phone, receiver_name, receiver_phone,
            source_office_id, destination_office_id, weight_kg, quantity, item_type, payment_mode, price,
            current_status, created_at
        FROM parcels WHERE tracking_id=$1`
	var parcel domain.Parcel
	if err := r.pool.QueryRow(ctx, query, trackingID).Scan(
		&parcel.ID,
		&parcel.TrackingID,
		&parcel.SenderName,
		&parcel.SenderPhone,
		&parcel.ReceiverName,
		&parcel.ReceiverPhone,
		&parcel.SourceOfficeID,
		&parcel.DestinationOfficeID,
		&parcel.WeightKg,
		&parcel.Quantity,
		&parcel.ItemType,
		&parcel.PaymentMode,
		&parcel.Price,
		&parcel.CurrentStatus,
		&parcel.CreatedAt,
	); err != nil {
		return nil, err
	}

	history, err := r.listEvents(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	parcel.History = history
	return &parcel, nil
}

func (r *parcelRepository) AppendEvent(ctx context.Context, trackingID string, event domain.TrackingEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `UPDATE parcels SET current_status=$1 WHERE tracking_id=$2`, event.Status, trackingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	if err := insertEvent(ctx, tx, trackingID, event); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *parcelRepository) List(ctx context.Context) ([]domain.Parcel, error) {
	const query = `
        SELECT id, tracking_id, sender_name, sender_phone, receiver_name, receiver_phone,
            source_office_id, destination_office_id, weight_kg, quantity, item_type, payment_mode, price,
            current_status, created_at
        FROM parcels ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Parcel
	for rows.Next() {
		var parcel domain.Parcel
		if err := rows.Scan(
			&parcel.ID,
			&parcel.TrackingID,
			&parcel.SenderName,
			&parcel.SenderPhone,
			&parcel.ReceiverName,
			&parcel.ReceiverPhone,
			&parcel.SourceOfficeID,
			&parcel.DestinationOfficeID,
			&parcel.WeightKg,
			&parcel.Quantity,
			&parcel.ItemType,
			&parcel.PaymentMode,
			&parcel.Price,
			&parcel.CurrentStatus,
			&parcel.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, parcel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		history, err := r.listEvents(ctx, result[i].TrackingID)
		if err != nil {
			return nil, err
		}
		result[i].History = history
	}
	return result, nil
}

func (r *parcelRepository) ExistsTrackingID(ctx context.Context, trackingID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM parcels WHERE tracking_id=$1)`, trackingID).Scan(&exists)
	return exists, err
}

func (r *parcelRepository) listEvents(ctx context.Context, trackingID string) ([]domain.TrackingEvent, error) {
	const query = `
        SELECT status, occurred_at, location, note
        FROM parcel_history WHERE tracking_id=$1 ORDER BY occurred_at ASC, seq ASC`
	rows, err := r.pool.Query(ctx, query, trackingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.TrackingEvent
	for rows.Next() {
		var event domain.TrackingEvent
		if err := rows.Scan(&event.Status, &event.Timestamp, &event.Location, &event.Note); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func insertEvent(ctx context.Context, tx pgx.Tx, trackingID string, event domain.TrackingEvent) error {
	const query = `
        INSERT INTO parcel_history (tracking_id, status, occurred_at, location, note)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := tx.Exec(ctx, query, trackingID, event.Status, event.Timestamp, event.Location, event.Note)
	return err
}
