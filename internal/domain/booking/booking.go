package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/havenpath/service-placement/internal/dates"
	"github.com/havenpath/service-placement/internal/domain"
)

const referenceChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for a placement of a person in a bedspace.
//
// Status is not stored: it is a projection over the event records, computed
// through Status. Every transition happens by recording the corresponding
// event, never by setting status directly, so the stored representation and
// the lifecycle can never diverge.
type Booking struct {
	id         uuid.UUID
	reference  string
	bedspaceID uuid.UUID
	premisesID uuid.UUID
	crn        string

	originalArrivalDate   time.Time
	originalDepartureDate time.Time
	arrivalDate           time.Time
	departureDate         time.Time

	arrival       *Arrival
	confirmation  *Confirmation
	departures    []Departure
	cancellations []Cancellation
	extensions    []Extension
	turnarounds   []Turnaround

	notes     string
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateReference creates a booking reference in the format "PL-XXXXXX".
func generateReference() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking reference: %w", err)
		}
		result[i] = referenceChars[n.Int64()]
	}
	return "PL-" + string(result), nil
}

// NewBooking creates a new provisional Booking.
func NewBooking(
	bedspaceID uuid.UUID,
	premisesID uuid.UUID,
	crn string,
	arrivalDate time.Time,
	departureDate time.Time,
	notes string,
) (*Booking, error) {
	if bedspaceID == uuid.Nil {
		return nil, domain.NewValidationError("bedspace ID is required")
	}
	if premisesID == uuid.Nil {
		return nil, domain.NewValidationError("premises ID is required")
	}
	if crn == "" {
		return nil, domain.NewValidationError("CRN is required")
	}
	if !dates.After(departureDate, arrivalDate) {
		return nil, domain.NewValidationError("departure date must be after arrival date")
	}

	reference, err := generateReference()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:                    uuid.New(),
		reference:             reference,
		bedspaceID:            bedspaceID,
		premisesID:            premisesID,
		crn:                   crn,
		originalArrivalDate:   dates.Truncate(arrivalDate),
		originalDepartureDate: dates.Truncate(departureDate),
		arrivalDate:           dates.Truncate(arrivalDate),
		departureDate:         dates.Truncate(departureDate),
		notes:                 notes,
		version:               1,
		createdAt:             now,
		updatedAt:             now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
// Event collections are re-sorted by creation timestamp and the current
// dates are re-derived, so a well-formed aggregate comes back regardless of
// stored array order.
func ReconstructBooking(
	id uuid.UUID,
	reference string,
	bedspaceID uuid.UUID,
	premisesID uuid.UUID,
	crn string,
	originalArrivalDate time.Time,
	originalDepartureDate time.Time,
	arrival *Arrival,
	confirmation *Confirmation,
	departures []Departure,
	cancellations []Cancellation,
	extensions []Extension,
	turnarounds []Turnaround,
	notes string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	sortDepartures(departures)
	sortCancellations(cancellations)
	sortExtensions(extensions)
	sortTurnarounds(turnarounds)

	b := &Booking{
		id:                    id,
		reference:             reference,
		bedspaceID:            bedspaceID,
		premisesID:            premisesID,
		crn:                   crn,
		originalArrivalDate:   originalArrivalDate,
		originalDepartureDate: originalDepartureDate,
		arrival:               arrival,
		confirmation:          confirmation,
		departures:            departures,
		cancellations:         cancellations,
		extensions:            extensions,
		turnarounds:           turnarounds,
		notes:                 notes,
		version:               version,
		createdAt:             createdAt,
		updatedAt:             updatedAt,
	}
	b.arrivalDate = b.deriveArrivalDate()
	b.departureDate = b.deriveDepartureDate()
	return b
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Reference returns the human-readable booking reference.
func (b *Booking) Reference() string { return b.reference }

// BedspaceID returns the identifier of the bedspace the booking occupies.
func (b *Booking) BedspaceID() uuid.UUID { return b.bedspaceID }

// PremisesID returns the identifier of the premises containing the bedspace.
func (b *Booking) PremisesID() uuid.UUID { return b.premisesID }

// CRN returns the case reference number of the associated person.
func (b *Booking) CRN() string { return b.crn }

// OriginalArrivalDate returns the arrival date fixed when the booking was created.
func (b *Booking) OriginalArrivalDate() time.Time { return b.originalArrivalDate }

// OriginalDepartureDate returns the departure date fixed when the booking was created.
func (b *Booking) OriginalDepartureDate() time.Time { return b.originalDepartureDate }

// ArrivalDate returns the current arrival date.
func (b *Booking) ArrivalDate() time.Time { return b.arrivalDate }

// DepartureDate returns the current departure date.
func (b *Booking) DepartureDate() time.Time { return b.departureDate }

// Arrival returns the arrival record, or nil if the person has not arrived.
func (b *Booking) Arrival() *Arrival { return b.arrival }

// Confirmation returns the confirmation record, or nil if unconfirmed.
func (b *Booking) Confirmation() *Confirmation { return b.confirmation }

// Departures returns the departure records, oldest first.
func (b *Booking) Departures() []Departure { return b.departures }

// Cancellations returns the cancellation records, oldest first.
func (b *Booking) Cancellations() []Cancellation { return b.cancellations }

// Extensions returns the extension records, oldest first.
func (b *Booking) Extensions() []Extension { return b.extensions }

// Turnarounds returns the turnaround records, oldest first.
func (b *Booking) Turnarounds() []Turnaround { return b.turnarounds }

// LatestTurnaround returns the most recently created turnaround record, or nil.
func (b *Booking) LatestTurnaround() *Turnaround {
	if len(b.turnarounds) == 0 {
		return nil
	}
	return &b.turnarounds[len(b.turnarounds)-1]
}

// Notes returns free-text notes recorded against the booking.
func (b *Booking) Notes() string { return b.notes }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Derived state ---

// statusFromEvents projects the lifecycle status from which event records
// exist. The departed/closed split needs a reference date and is handled by
// Status.
func (b *Booking) statusFromEvents() Status {
	switch {
	case len(b.cancellations) > 0:
		return StatusCancelled
	case len(b.departures) > 0:
		return StatusDeparted
	case b.arrival != nil:
		return StatusArrived
	case b.confirmation != nil:
		return StatusConfirmed
	default:
		return StatusProvisional
	}
}

// Status returns the booking's lifecycle status as of the given date. A
// departed booking whose turnaround window has fully elapsed is closed.
func (b *Booking) Status(asOf time.Time) Status {
	status := b.statusFromEvents()
	if status == StatusDeparted && dates.Before(b.TurnaroundEffectiveEndDate(), asOf) {
		return StatusClosed
	}
	return status
}

// TurnaroundEffectiveEndDate returns the date the bedspace becomes available
// again: the departure date advanced by the latest turnaround's working days.
// With no turnaround recorded, it is the departure date itself.
func (b *Booking) TurnaroundEffectiveEndDate() time.Time {
	t := b.LatestTurnaround()
	if t == nil {
		return b.departureDate
	}
	return dates.AddWorkingDays(b.departureDate, t.WorkingDays)
}

// TurnaroundStartDate returns the first day of the turnaround window, the
// day after departure.
func (b *Booking) TurnaroundStartDate() time.Time {
	return dates.Truncate(b.departureDate).AddDate(0, 0, 1)
}

// deriveArrivalDate resolves the current arrival date from the arrival
// record when present, falling back to the original arrival date.
func (b *Booking) deriveArrivalDate() time.Time {
	if b.arrival != nil {
		return b.arrival.ArrivalDate
	}
	return b.originalArrivalDate
}

// deriveDepartureDate resolves the current departure date: the last
// departure's date, else the last extension's new date, else the arrival's
// expected departure date, else the original departure date. The most
// recently created event always wins, which is the consistency invariant
// the stored representation must satisfy.
func (b *Booking) deriveDepartureDate() time.Time {
	if n := len(b.departures); n > 0 {
		return b.departures[n-1].DepartureDate
	}
	if n := len(b.extensions); n > 0 {
		return b.extensions[n-1].NewDepartureDate
	}
	if b.arrival != nil {
		return b.arrival.ExpectedDepartureDate
	}
	return b.originalDepartureDate
}

// --- Behaviour ---

// Confirm transitions the booking from provisional to confirmed.
func (b *Booking) Confirm(notes string) error {
	status := b.statusFromEvents()
	if !status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(status), string(StatusConfirmed))
	}
	now := time.Now().UTC()
	b.confirmation = &Confirmation{
		ID:        uuid.New(),
		Notes:     notes,
		CreatedAt: now,
	}
	b.updatedAt = now
	return nil
}

// MarkArrived transitions the booking from confirmed to arrived, recording
// the actual arrival date and the expected departure date.
func (b *Booking) MarkArrived(arrivalDate, expectedDepartureDate time.Time, notes string) error {
	status := b.statusFromEvents()
	if !status.CanTransitionTo(StatusArrived) {
		return domain.NewInvalidStateError(string(status), string(StatusArrived))
	}
	if !dates.After(expectedDepartureDate, arrivalDate) {
		return domain.NewValidationError("expected departure date must be after arrival date")
	}
	now := time.Now().UTC()
	b.arrival = &Arrival{
		ID:                    uuid.New(),
		ArrivalDate:           dates.Truncate(arrivalDate),
		ExpectedDepartureDate: dates.Truncate(expectedDepartureDate),
		Notes:                 notes,
		CreatedAt:             now,
	}
	b.arrivalDate = b.arrival.ArrivalDate
	b.departureDate = b.deriveDepartureDate()
	b.updatedAt = now
	return nil
}

// ChangeArrivalDate corrects the arrival date of an arrived booking.
func (b *Booking) ChangeArrivalDate(arrivalDate time.Time) error {
	if status := b.statusFromEvents(); status != StatusArrived {
		return domain.NewInvalidStateError(string(status), string(StatusArrived))
	}
	if !dates.Before(arrivalDate, b.departureDate) {
		return domain.NewValidationError("arrival date must be before the departure date")
	}
	b.arrival.ArrivalDate = dates.Truncate(arrivalDate)
	b.arrivalDate = b.arrival.ArrivalDate
	b.updatedAt = time.Now().UTC()
	return nil
}

// MarkDeparted transitions the booking from arrived to departed.
func (b *Booking) MarkDeparted(departureDate time.Time, reasonID, moveOnCategory, notes string) error {
	status := b.statusFromEvents()
	if !status.CanTransitionTo(StatusDeparted) {
		return domain.NewInvalidStateError(string(status), string(StatusDeparted))
	}
	return b.recordDeparture(departureDate, reasonID, moveOnCategory, notes)
}

// CorrectDeparture records a corrected departure against an already departed
// (or closed) booking. The new record supersedes the previous one; prior
// records are retained for history.
func (b *Booking) CorrectDeparture(departureDate time.Time, reasonID, moveOnCategory, notes string) error {
	if status := b.statusFromEvents(); !status.HasDeparted() {
		return domain.NewInvalidStateError(string(status), string(StatusDeparted))
	}
	return b.recordDeparture(departureDate, reasonID, moveOnCategory, notes)
}

func (b *Booking) recordDeparture(departureDate time.Time, reasonID, moveOnCategory, notes string) error {
	if !dates.After(departureDate, b.arrivalDate) {
		return domain.NewValidationError("departure date must be after the arrival date")
	}
	now := time.Now().UTC()
	b.departures = append(b.departures, Departure{
		ID:             uuid.New(),
		DepartureDate:  dates.Truncate(departureDate),
		ReasonID:       reasonID,
		MoveOnCategory: moveOnCategory,
		Notes:          notes,
		CreatedAt:      now,
	})
	b.departureDate = b.deriveDepartureDate()
	b.updatedAt = now
	return nil
}

// Extend changes the expected departure date of an arrived booking,
// recording the previous date so history can be rewound. Despite the name
// it may also shorten the stay; see Extension.Kind.
func (b *Booking) Extend(newDepartureDate time.Time, notes string) error {
	if status := b.statusFromEvents(); status != StatusArrived {
		return domain.NewInvalidStateError(string(status), string(StatusArrived))
	}
	if !dates.After(newDepartureDate, b.arrivalDate) {
		return domain.NewValidationError("new departure date must be after the arrival date")
	}
	now := time.Now().UTC()
	b.extensions = append(b.extensions, Extension{
		ID:                    uuid.New(),
		PreviousDepartureDate: b.departureDate,
		NewDepartureDate:      dates.Truncate(newDepartureDate),
		Notes:                 notes,
		CreatedAt:             now,
	})
	b.departureDate = b.deriveDepartureDate()
	b.updatedAt = now
	return nil
}

// Cancel cancels a provisional or confirmed booking.
func (b *Booking) Cancel(date time.Time, reasonID, notes string) error {
	status := b.statusFromEvents()
	if !status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(status), string(StatusCancelled))
	}
	return b.recordCancellation(date, reasonID, notes)
}

// CorrectCancellation records corrected cancellation details against an
// already cancelled booking.
func (b *Booking) CorrectCancellation(date time.Time, reasonID, notes string) error {
	if status := b.statusFromEvents(); status != StatusCancelled {
		return domain.NewInvalidStateError(string(status), string(StatusCancelled))
	}
	return b.recordCancellation(date, reasonID, notes)
}

func (b *Booking) recordCancellation(date time.Time, reasonID, notes string) error {
	if reasonID == "" {
		return domain.NewValidationError("cancellation reason is required")
	}
	now := time.Now().UTC()
	b.cancellations = append(b.cancellations, Cancellation{
		ID:        uuid.New(),
		Date:      dates.Truncate(date),
		ReasonID:  reasonID,
		Notes:     notes,
		CreatedAt: now,
	})
	b.updatedAt = now
	return nil
}

// ChangeTurnaround records a new turnaround period. Permitted in any status
// except cancelled.
func (b *Booking) ChangeTurnaround(workingDays int) error {
	if status := b.statusFromEvents(); status == StatusCancelled {
		return domain.NewInvalidStateError(string(status), "turnaround change")
	}
	if workingDays < 0 {
		return domain.NewValidationError("turnaround working days cannot be negative")
	}
	now := time.Now().UTC()
	b.turnarounds = append(b.turnarounds, Turnaround{
		ID:          uuid.New(),
		WorkingDays: workingDays,
		CreatedAt:   now,
	})
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
