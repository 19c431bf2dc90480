package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByReference retrieves a booking by its human-readable reference.
	FindByReference(ctx context.Context, reference string) (*Booking, error)

	// FindByBedspaceID retrieves bookings for a bedspace with pagination.
	FindByBedspaceID(ctx context.Context, bedspaceID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByCRN retrieves bookings for a person with pagination.
	FindByCRN(ctx context.Context, crn string, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination.
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by stored status.
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, b *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, b *Booking) error
}
