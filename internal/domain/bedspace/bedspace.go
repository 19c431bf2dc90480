package bedspace

import (
	"time"

	"github.com/google/uuid"

	"github.com/havenpath/service-placement/internal/dates"
	"github.com/havenpath/service-placement/internal/domain"
)

// Archive and unarchive dates must fall inside a window around today.
const (
	windowPastDays     = 7
	windowFutureMonths = 3
)

// StatusChange is one entry in a bedspace's archive history.
type StatusChange struct {
	Status        Status    `json:"status"`
	EffectiveDate time.Time `json:"effective_date"`
}

// Bedspace is the aggregate root for a lettable unit within a premises.
type Bedspace struct {
	id         uuid.UUID
	premisesID uuid.UUID
	reference  string

	characteristics []string
	notes           string

	status                Status
	startDate             *time.Time
	endDate               *time.Time
	scheduleUnarchiveDate *time.Time
	archiveHistory        []StatusChange

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBedspace creates a new bedspace. A start date after today makes it
// upcoming; otherwise it is online immediately.
func NewBedspace(premisesID uuid.UUID, reference string, characteristics []string, notes string, startDate, today time.Time) (*Bedspace, error) {
	if premisesID == uuid.Nil {
		return nil, domain.NewValidationError("premises ID is required")
	}
	if reference == "" {
		return nil, domain.NewValidationError("bedspace reference is required")
	}

	status := StatusOnline
	if dates.After(startDate, today) {
		status = StatusUpcoming
	}

	start := dates.Truncate(startDate)
	now := time.Now().UTC()
	return &Bedspace{
		id:              uuid.New(),
		premisesID:      premisesID,
		reference:       reference,
		characteristics: characteristics,
		notes:           notes,
		status:          status,
		startDate:       &start,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructBedspace rebuilds a Bedspace from persistence data (no validation).
func ReconstructBedspace(
	id uuid.UUID,
	premisesID uuid.UUID,
	reference string,
	characteristics []string,
	notes string,
	status Status,
	startDate *time.Time,
	endDate *time.Time,
	scheduleUnarchiveDate *time.Time,
	archiveHistory []StatusChange,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Bedspace {
	return &Bedspace{
		id:                    id,
		premisesID:            premisesID,
		reference:             reference,
		characteristics:       characteristics,
		notes:                 notes,
		status:                status,
		startDate:             startDate,
		endDate:               endDate,
		scheduleUnarchiveDate: scheduleUnarchiveDate,
		archiveHistory:        archiveHistory,
		version:               version,
		createdAt:             createdAt,
		updatedAt:             updatedAt,
	}
}

// --- Getters ---

// ID returns the bedspace's unique identifier.
func (b *Bedspace) ID() uuid.UUID { return b.id }

// PremisesID returns the identifier of the containing premises.
func (b *Bedspace) PremisesID() uuid.UUID { return b.premisesID }

// Reference returns the bedspace reference (e.g. a room name).
func (b *Bedspace) Reference() string { return b.reference }

// Characteristics returns the bedspace's attribute tags.
func (b *Bedspace) Characteristics() []string { return b.characteristics }

// Notes returns free-text notes about the bedspace.
func (b *Bedspace) Notes() string { return b.notes }

// Status returns the current availability status.
func (b *Bedspace) Status() Status { return b.status }

// StartDate returns the date the bedspace came (or comes) online, or nil.
func (b *Bedspace) StartDate() *time.Time { return b.startDate }

// EndDate returns the archive date, or nil if no archive is set or scheduled.
func (b *Bedspace) EndDate() *time.Time { return b.endDate }

// ScheduleUnarchiveDate returns the scheduled future unarchive date, or nil.
func (b *Bedspace) ScheduleUnarchiveDate() *time.Time { return b.scheduleUnarchiveDate }

// ArchiveHistory returns the prior status changes, oldest first.
func (b *Bedspace) ArchiveHistory() []StatusChange { return b.archiveHistory }

// Version returns the entity version for optimistic locking.
func (b *Bedspace) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Bedspace) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Bedspace) UpdatedAt() time.Time { return b.updatedAt }

// HasScheduledArchive reports whether an archive date is set but not yet reached.
func (b *Bedspace) HasScheduledArchive(today time.Time) bool {
	return b.status == StatusOnline && b.endDate != nil && dates.After(*b.endDate, today)
}

// HasScheduledUnarchive reports whether a future unarchive date is set.
func (b *Bedspace) HasScheduledUnarchive() bool {
	return b.scheduleUnarchiveDate != nil
}

// --- Behaviour ---

// validateWindow checks that a candidate date falls within the permitted
// window around today (windowPastDays in the past through
// windowFutureMonths ahead).
func validateWindow(field string, candidate, today time.Time) error {
	earliest := dates.Truncate(today).AddDate(0, 0, -windowPastDays)
	latest := dates.Truncate(today).AddDate(0, windowFutureMonths, 0)
	if dates.Before(candidate, earliest) {
		return domain.NewFieldValidationError(field, domain.CodeInvalidEndDateInThePast,
			"date cannot be more than 7 days in the past")
	}
	if dates.After(candidate, latest) {
		return domain.NewFieldValidationError(field, domain.CodeInvalidEndDateInTheFuture,
			"date cannot be more than 3 months in the future")
	}
	return nil
}

// Archive sets the bedspace's archive date. A date on or before today takes
// effect immediately; a future date is a scheduled archive and the bedspace
// stays online until it arrives. Blocking-dependency checks are the
// caller's responsibility and must pass before this is invoked; on any
// validation failure the bedspace is left unchanged.
func (b *Bedspace) Archive(endDate, today time.Time) error {
	if !b.status.CanTransitionTo(StatusArchived) {
		return domain.NewInvalidStateError(string(b.status), string(StatusArchived))
	}
	if err := validateWindow("endDate", endDate, today); err != nil {
		return err
	}

	end := dates.Truncate(endDate)
	b.endDate = &end
	if !dates.After(end, today) {
		b.pushHistory(StatusArchived, end)
		b.status = StatusArchived
		// Archiving supersedes any pending unarchive.
		b.scheduleUnarchiveDate = nil
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// CancelScheduledArchive clears a pending archive date. Cancelling when no
// archive is scheduled is a validation error, not a no-op.
func (b *Bedspace) CancelScheduledArchive(today time.Time) error {
	if !b.HasScheduledArchive(today) {
		return domain.NewFieldValidationError("endDate", domain.CodeNoScheduledArchive,
			"no archive is scheduled for this bedspace")
	}
	b.endDate = nil
	b.updatedAt = time.Now().UTC()
	return nil
}

// Unarchive brings an archived bedspace back online. A restart date on or
// before today takes effect immediately; a future date schedules the
// unarchive, moving the bedspace to upcoming until the date arrives.
func (b *Bedspace) Unarchive(restartDate, today time.Time) error {
	if b.status != StatusArchived {
		return domain.NewInvalidStateError(string(b.status), string(StatusOnline))
	}
	if err := validateWindow("startDate", restartDate, today); err != nil {
		return err
	}

	restart := dates.Truncate(restartDate)
	if dates.After(restart, today) {
		b.scheduleUnarchiveDate = &restart
		b.pushHistory(StatusUpcoming, restart)
		b.status = StatusUpcoming
		b.updatedAt = time.Now().UTC()
		return nil
	}

	b.pushHistory(StatusOnline, restart)
	b.status = StatusOnline
	b.startDate = &restart
	b.endDate = nil
	b.scheduleUnarchiveDate = nil
	b.updatedAt = time.Now().UTC()
	return nil
}

// CancelScheduledUnarchive reverts a scheduled unarchive, returning the
// bedspace to archived. Cancelling when nothing is scheduled is a
// validation error, not a no-op, so repeated cancellations fail cleanly.
func (b *Bedspace) CancelScheduledUnarchive() error {
	if !b.HasScheduledUnarchive() {
		return domain.NewFieldValidationError("scheduleUnarchiveDate", domain.CodeNoScheduledUnarchive,
			"no unarchive is scheduled for this bedspace")
	}
	b.scheduleUnarchiveDate = nil
	if b.status == StatusUpcoming {
		b.status = StatusArchived
	}
	// Drop the history entry the scheduling added.
	if n := len(b.archiveHistory); n > 0 && b.archiveHistory[n-1].Status == StatusUpcoming {
		b.archiveHistory = b.archiveHistory[:n-1]
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// ActivateScheduled applies every scheduled change whose date has arrived:
// a start date bringing an upcoming bedspace online, a due unarchive, a due
// archive. Changes apply in sequence until none are due, so a bedspace whose
// start and end dates have both passed settles on archived. It reports
// whether the status changed.
func (b *Bedspace) ActivateScheduled(today time.Time) bool {
	changed := false
	for b.activateNext(today) {
		changed = true
	}
	return changed
}

func (b *Bedspace) activateNext(today time.Time) bool {
	if b.status == StatusUpcoming && b.scheduleUnarchiveDate != nil && !dates.After(*b.scheduleUnarchiveDate, today) {
		restart := *b.scheduleUnarchiveDate
		b.pushHistory(StatusOnline, restart)
		b.status = StatusOnline
		b.startDate = &restart
		b.endDate = nil
		b.scheduleUnarchiveDate = nil
		b.updatedAt = time.Now().UTC()
		return true
	}
	// A new bedspace comes online when its planned start date arrives. The
	// scheduleUnarchiveDate guard keeps this from firing on the upcoming
	// state a scheduled unarchive produces.
	if b.status == StatusUpcoming && b.scheduleUnarchiveDate == nil && b.startDate != nil && !dates.After(*b.startDate, today) {
		b.status = StatusOnline
		b.updatedAt = time.Now().UTC()
		return true
	}
	if (b.status == StatusOnline || (b.status == StatusUpcoming && b.scheduleUnarchiveDate == nil)) &&
		b.endDate != nil && !dates.After(*b.endDate, today) {
		b.pushHistory(StatusArchived, *b.endDate)
		b.status = StatusArchived
		b.updatedAt = time.Now().UTC()
		return true
	}
	return false
}

// UpdateDetails replaces the bedspace's characteristics and notes.
func (b *Bedspace) UpdateDetails(characteristics []string, notes string) {
	b.characteristics = characteristics
	b.notes = notes
	b.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Bedspace) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

func (b *Bedspace) pushHistory(status Status, effectiveDate time.Time) {
	b.archiveHistory = append(b.archiveHistory, StatusChange{
		Status:        status,
		EffectiveDate: effectiveDate,
	})
}
