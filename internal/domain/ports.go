package domain

import (
	"context"
	"time"
)

type BookingRepository interface {
	// Write paths. Create must reject overlaps atomically with *ConflictError.
	Create(ctx context.Context, b Booking) error
	Cancel(ctx context.Context, id BookingID) error

	// Read paths
	Get(ctx context.Context, id BookingID) (Booking, error)
	// ListActive returns non-cancelled bookings intersecting [from, to).
	ListActive(ctx context.Context, from, to time.Time) ([]Booking, error)
	// ListStartingBetween returns bookings of any status with from <= start < to.
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]Booking, error)
}

type ResidentDirectory interface {
	GetResident(ctx context.Context, id int64) (Resident, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
