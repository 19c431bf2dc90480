package booking_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenpath/service-placement/internal/domain/booking"
)

func statuses(entries []booking.HistoryEntry) []booking.Status {
	out := make([]booking.Status, len(entries))
	for i, e := range entries {
		out[i] = e.Snapshot.Status
	}
	return out
}

func TestHistory_ProvisionalOnly(t *testing.T) {
	bk := newProvisional(t)
	entries := bk.History()

	require.Len(t, entries, 1)
	assert.Equal(t, booking.StatusProvisional, entries[0].Snapshot.Status)
	assert.Equal(t, bk.CreatedAt(), entries[0].OccurredAt)
}

func TestHistory_FullLifecycle(t *testing.T) {
	bk := newProvisional(t)
	require.NoError(t, bk.Confirm(""))
	require.NoError(t, bk.MarkArrived(arrival, departure, ""))
	extended := departure.AddDate(0, 0, 14)
	require.NoError(t, bk.Extend(extended, ""))
	require.NoError(t, bk.MarkDeparted(extended, "reason-a", "", ""))

	entries := bk.History()

	assert.Equal(t, []booking.Status{
		booking.StatusProvisional,
		booking.StatusConfirmed,
		booking.StatusArrived,
		booking.StatusArrived,
		booking.StatusDeparted,
	}, statuses(entries))

	// The oldest arrived state shows the pre-extension date; the extension
	// state shows the new one.
	assert.Equal(t, departure, entries[2].Snapshot.DepartureDate)
	assert.Equal(t, extended, entries[3].Snapshot.DepartureDate)
	assert.Equal(t, extended, entries[4].Snapshot.DepartureDate)

	// Timestamps never go backwards.
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].OccurredAt.Before(entries[i-1].OccurredAt),
			"entry %d occurred before entry %d", i, i-1)
	}
}

func TestHistory_ClosedCollapsesToDeparted(t *testing.T) {
	bk := newProvisional(t)
	require.NoError(t, bk.Confirm(""))
	require.NoError(t, bk.MarkArrived(arrival, departure, ""))
	require.NoError(t, bk.MarkDeparted(departure, "reason-a", "", ""))

	// Well past the turnaround window the booking reads as closed, but its
	// history still ends in a departed snapshot.
	require.Equal(t, booking.StatusClosed, bk.Status(departure.AddDate(0, 1, 0)))

	entries := bk.History()
	assert.Equal(t, booking.StatusDeparted, entries[len(entries)-1].Snapshot.Status)
}

func TestHistory_DepartureCorrections(t *testing.T) {
	bk := newProvisional(t)
	require.NoError(t, bk.Confirm(""))
	require.NoError(t, bk.MarkArrived(arrival, departure, ""))
	require.NoError(t, bk.MarkDeparted(departure, "reason-a", "", ""))
	corrected := departure.AddDate(0, 0, -2)
	require.NoError(t, bk.CorrectDeparture(corrected, "reason-b", "", ""))

	entries := bk.History()

	assert.Equal(t, []booking.Status{
		booking.StatusProvisional,
		booking.StatusConfirmed,
		booking.StatusArrived,
		booking.StatusDeparted,
		booking.StatusDeparted,
	}, statuses(entries))
	assert.Equal(t, departure, entries[3].Snapshot.DepartureDate)
	assert.Equal(t, corrected, entries[4].Snapshot.DepartureDate)
}

func TestHistory_CancellationCorrections(t *testing.T) {
	bk := newProvisional(t)
	require.NoError(t, bk.Confirm(""))
	require.NoError(t, bk.Cancel(arrival, "reason-a", ""))
	require.NoError(t, bk.CorrectCancellation(arrival, "reason-b", ""))

	entries := bk.History()

	assert.Equal(t, []booking.Status{
		booking.StatusProvisional,
		booking.StatusConfirmed,
		booking.StatusCancelled,
		booking.StatusCancelled,
	}, statuses(entries))
}

func TestHistory_CancelledWithoutConfirmation(t *testing.T) {
	bk := newProvisional(t)
	require.NoError(t, bk.Cancel(arrival, "reason-a", ""))

	entries := bk.History()

	assert.Equal(t, []booking.Status{
		booking.StatusProvisional,
		booking.StatusCancelled,
	}, statuses(entries))
}

func TestHistory_Idempotent(t *testing.T) {
	bk := newProvisional(t)
	require.NoError(t, bk.Confirm(""))
	require.NoError(t, bk.MarkArrived(arrival, departure, ""))
	require.NoError(t, bk.Extend(departure.AddDate(0, 0, 7), ""))

	first := bk.History()
	second := bk.History()

	assert.Equal(t, first, second)
	assert.Len(t, bk.Extensions(), 1, "deriving history never mutates the aggregate")
	assert.Equal(t, booking.StatusArrived, bk.Status(arrival))
}

func TestHistory_ArrivedWithoutConfirmationRevertsToProvisional(t *testing.T) {
	// Imported records can carry an arrival but no confirmation.
	created := date(2026, time.January, 1)
	arr := &booking.Arrival{ID: uuid.New(), ArrivalDate: arrival, ExpectedDepartureDate: departure, CreatedAt: created.AddDate(0, 0, 1)}

	bk := booking.ReconstructBooking(
		uuid.New(), "PL-TEST02", uuid.New(), uuid.New(), "X320741",
		arrival, departure,
		arr, nil, nil, nil, nil, nil,
		"", 1, created, created,
	)

	entries := bk.History()
	assert.Equal(t, []booking.Status{
		booking.StatusProvisional,
		booking.StatusArrived,
	}, statuses(entries))
}

func TestHistory_DepartedWithoutArrival(t *testing.T) {
	// Imported records can carry a departure with no arrival on file.
	created := date(2026, time.January, 1)
	dep := []booking.Departure{{
		ID:            uuid.New(),
		DepartureDate: departure,
		ReasonID:      "reason-a",
		CreatedAt:     created.AddDate(0, 0, 20),
	}}

	bk := booking.ReconstructBooking(
		uuid.New(), "PL-TEST03", uuid.New(), uuid.New(), "X320741",
		arrival, departure,
		nil, nil, dep, nil, nil, nil,
		"", 1, created, created,
	)

	entries := bk.History()
	assert.Equal(t, []booking.Status{
		booking.StatusProvisional,
		booking.StatusArrived,
		booking.StatusDeparted,
	}, statuses(entries))
	assert.Equal(t, departure, entries[1].Snapshot.DepartureDate)
	assert.Equal(t, created, entries[1].OccurredAt, "no arrival record to date the entry")
}
