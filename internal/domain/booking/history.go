package booking

import (
	"time"
)

// Snapshot is the booking as it existed at one point in time. Snapshots are
// value copies: rewinding one never touches the aggregate it came from.
type Snapshot struct {
	Status                Status
	ArrivalDate           time.Time
	DepartureDate         time.Time
	OriginalArrivalDate   time.Time
	OriginalDepartureDate time.Time
	Arrival               *Arrival
	Confirmation          *Confirmation
	Departures            []Departure
	Cancellations         []Cancellation
	Extensions            []Extension
}

// HistoryEntry pairs a snapshot with the timestamp at which it became the
// booking's current state.
type HistoryEntry struct {
	Snapshot   Snapshot
	OccurredAt time.Time
}

// History reconstructs the full chronological history of the booking from
// its event records: the ordered sequence of snapshots from creation to
// present, oldest first. It is a pure derivation, deterministic and
// idempotent, and always terminates at the provisional snapshot.
func (b *Booking) History() []HistoryEntry {
	current := b.snapshot()
	entries := []HistoryEntry{{Snapshot: current, OccurredAt: occurredAt(current, b.createdAt)}}

	for {
		prev, ok := predecessor(current)
		if !ok {
			break
		}
		entries = append(entries, HistoryEntry{Snapshot: prev, OccurredAt: occurredAt(prev, b.createdAt)})
		current = prev
	}

	// The unfold walks backwards; callers receive oldest-first order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

// snapshot captures the aggregate's present state as a Snapshot. The closed
// status collapses to departed: the two share history behaviour and the
// split depends on a reference date history does not carry.
func (b *Booking) snapshot() Snapshot {
	var arrival *Arrival
	if b.arrival != nil {
		a := *b.arrival
		arrival = &a
	}
	var confirmation *Confirmation
	if b.confirmation != nil {
		c := *b.confirmation
		confirmation = &c
	}
	return Snapshot{
		Status:                b.statusFromEvents(),
		ArrivalDate:           b.arrivalDate,
		DepartureDate:         b.departureDate,
		OriginalArrivalDate:   b.originalArrivalDate,
		OriginalDepartureDate: b.originalDepartureDate,
		Arrival:               arrival,
		Confirmation:          confirmation,
		Departures:            append([]Departure(nil), b.departures...),
		Cancellations:         append([]Cancellation(nil), b.cancellations...),
		Extensions:            append([]Extension(nil), b.extensions...),
	}
}

// predecessor computes the snapshot immediately preceding s by undoing the
// most recent event for its status. It reports false once s is the initial
// provisional snapshot.
func predecessor(s Snapshot) (Snapshot, bool) {
	switch s.Status {
	case StatusDeparted:
		return departedPredecessor(s), true
	case StatusArrived:
		return arrivedPredecessor(s), true
	case StatusCancelled:
		return cancelledPredecessor(s), true
	case StatusConfirmed:
		p := s
		p.Status = StatusProvisional
		p.Confirmation = nil
		return p, true
	default:
		return Snapshot{}, false
	}
}

// departedPredecessor undoes the latest departure: either reinstating the
// previous departure correction, or reverting to arrived with the departure
// date the extensions (or arrival) had established.
func departedPredecessor(s Snapshot) Snapshot {
	p := s
	if len(s.Departures) > 1 {
		p.Departures = s.Departures[:len(s.Departures)-1]
		p.DepartureDate = p.Departures[len(p.Departures)-1].DepartureDate
		return p
	}
	p.Departures = nil
	p.Status = StatusArrived
	switch {
	case len(s.Extensions) > 0:
		p.DepartureDate = s.Extensions[len(s.Extensions)-1].NewDepartureDate
	case s.Arrival != nil:
		p.DepartureDate = s.Arrival.ExpectedDepartureDate
	default:
		// Imported records may lack an arrival.
		p.DepartureDate = s.OriginalDepartureDate
	}
	return p
}

// arrivedPredecessor undoes the latest extension, or with none left reverts
// to confirmed with the original arrival and departure dates.
func arrivedPredecessor(s Snapshot) Snapshot {
	p := s
	switch n := len(s.Extensions); {
	case n > 1:
		p.Extensions = s.Extensions[:n-1]
		p.DepartureDate = p.Extensions[n-2].NewDepartureDate
	case n == 1:
		p.Extensions = nil
		if s.Arrival != nil {
			p.DepartureDate = s.Arrival.ExpectedDepartureDate
		} else {
			p.DepartureDate = s.OriginalDepartureDate
		}
	default:
		// Imported records may lack a confirmation; they revert straight
		// to provisional.
		if s.Confirmation != nil {
			p.Status = StatusConfirmed
		} else {
			p.Status = StatusProvisional
		}
		p.Arrival = nil
		p.ArrivalDate = s.OriginalArrivalDate
		p.DepartureDate = s.OriginalDepartureDate
	}
	return p
}

// cancelledPredecessor undoes the latest cancellation correction, or with
// only one cancellation reverts to confirmed or provisional.
func cancelledPredecessor(s Snapshot) Snapshot {
	p := s
	if len(s.Cancellations) > 1 {
		p.Cancellations = s.Cancellations[:len(s.Cancellations)-1]
		return p
	}
	p.Cancellations = nil
	if s.Confirmation != nil {
		p.Status = StatusConfirmed
	} else {
		p.Status = StatusProvisional
	}
	return p
}

// occurredAt returns the creation time of whichever event made the snapshot
// current; for the initial provisional snapshot it is the booking's own
// creation time.
func occurredAt(s Snapshot, bookingCreatedAt time.Time) time.Time {
	switch s.Status {
	case StatusDeparted:
		return s.Departures[len(s.Departures)-1].CreatedAt
	case StatusArrived:
		if n := len(s.Extensions); n > 0 {
			return s.Extensions[n-1].CreatedAt
		}
		if s.Arrival != nil {
			return s.Arrival.CreatedAt
		}
		return bookingCreatedAt
	case StatusCancelled:
		return s.Cancellations[len(s.Cancellations)-1].CreatedAt
	case StatusConfirmed:
		return s.Confirmation.CreatedAt
	default:
		return bookingCreatedAt
	}
}
