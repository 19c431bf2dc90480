package bedspace

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BlockerType identifies what kind of record blocks an archive.
type BlockerType string

const (
	BlockerBooking BlockerType = "booking"
	BlockerVoid    BlockerType = "void"
)

// Blocker describes an active booking or void period extending past a
// candidate archive date. Its presence forbids the archive entirely.
type Blocker struct {
	Type            BlockerType `json:"type"`
	Date            time.Time   `json:"date"`
	EntityID        uuid.UUID   `json:"entity_id"`
	EntityReference string      `json:"entity_reference"`
}

// Repository defines the persistence contract for bedspace aggregates.
type Repository interface {
	// FindByID retrieves a bedspace by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Bedspace, error)

	// FindByPremisesID retrieves all bedspaces belonging to a premises.
	FindByPremisesID(ctx context.Context, premisesID uuid.UUID) ([]*Bedspace, error)

	// TotalsForPremises counts a premises' bedspaces grouped by status.
	TotalsForPremises(ctx context.Context, premisesID uuid.UUID) (PremisesTotals, error)

	// FindBlocker returns the latest-ending booking or void for the
	// bedspace that is still active on or after the given date, or nil
	// if the archive date is unobstructed.
	FindBlocker(ctx context.Context, bedspaceID uuid.UUID, onOrAfter time.Time) (*Blocker, error)

	// Save persists a new bedspace.
	Save(ctx context.Context, b *Bedspace) error

	// Update persists changes to an existing bedspace with optimistic locking.
	Update(ctx context.Context, b *Bedspace) error
}
