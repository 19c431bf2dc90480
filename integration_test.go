//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenpath/service-placement/internal/application"
	"github.com/havenpath/service-placement/internal/events"
)

// TestReferralBookingRequested_CreatesProvisionalBooking verifies that when a
// ReferralBookingRequestedEvent is published to referral.events, the placement
// service picks it up, stores a provisional booking, and announces it on
// booking.events.
func TestReferralBookingRequested_CreatesProvisionalBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupPlacementStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	referralID := uuid.New()
	bedspaceID := uuid.New()
	premisesID := uuid.New()
	crn := "X641209"
	arrival := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	departure := time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC)

	evt := events.ReferralBookingRequestedEvent{
		ReferralID:    referralID,
		BedspaceID:    bedspaceID,
		PremisesID:    premisesID,
		CRN:           crn,
		ArrivalDate:   arrival,
		DepartureDate: departure,
		OccurredAt:    time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, events.TopicReferralEvents,
		"service-referral", events.ReferralBookingRequested, referralID.String(), evt)

	// Assert: a provisional booking appears for the CRN.
	model := waitForBookingWithCRN(t, infra.DB, crn, "provisional", 15*time.Second)
	assert.Equal(t, bedspaceID, model.BedspaceID)
	assert.Equal(t, premisesID, model.PremisesID)
	assert.True(t, arrival.Equal(model.ArrivalDate), "arrival date should round-trip")

	// Assert: BookingProvisionalEvent on booking.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingProvisional, 15*time.Second)

	var provisional events.BookingProvisionalEvent
	require.NoError(t, ce.ParseData(&provisional))
	assert.Equal(t, model.ID, provisional.BookingID)
	assert.Equal(t, crn, provisional.CRN)
	assert.NotEmpty(t, provisional.Reference)
}

// TestBookingLifecycle_PersistsThroughPostgres drives a booking from creation
// to departure against the real database, checking optimistic locking and the
// stored status projection along the way.
func TestBookingLifecycle_PersistsThroughPostgres(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupPlacementStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	ctx := context.Background()

	// Dates are taken relative to today so the departed projection cannot
	// tip into closed while the test runs.
	now := time.Now().UTC().Truncate(24 * time.Hour)
	arrival := now.AddDate(0, 0, -10)
	departure := now.AddDate(0, 0, 30)

	created, err := stack.Bookings.CreateBooking(ctx, application.CreateBookingRequest{
		BedspaceID:    uuid.New(),
		PremisesID:    uuid.New(),
		CRN:           "X888001",
		ArrivalDate:   arrival,
		DepartureDate: departure,
	})
	require.NoError(t, err)

	_, err = stack.Bookings.ConfirmBooking(ctx, created.ID, "")
	require.NoError(t, err)

	_, err = stack.Bookings.RecordArrival(ctx, created.ID, application.ArrivalRequest{
		ArrivalDate:           arrival,
		ExpectedDepartureDate: departure,
	})
	require.NoError(t, err)

	result, err := stack.Bookings.RecordDeparture(ctx, created.ID, application.DepartureRequest{
		DepartureDate: departure,
		ReasonID:      "planned-move-on",
	})
	require.NoError(t, err)
	assert.Equal(t, "departed", result.Status)
	assert.Equal(t, int64(4), result.Version)

	// Reload through the repository to confirm the events round-trip.
	history, err := stack.Bookings.GetBookingHistory(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "provisional", history[0].Status)
	assert.Equal(t, "departed", history[3].Status)
}
