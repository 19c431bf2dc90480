package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics.
const (
	TopicBookingEvents  = "booking.events"
	TopicBedspaceEvents = "bedspace.events"
	TopicReferralEvents = "referral.events"
)

// Event types on booking.events.
const (
	BookingProvisional = "booking.provisional"
	BookingConfirmed   = "booking.confirmed"
	BookingArrived     = "booking.arrived"
	BookingDeparted    = "booking.departed"
	BookingExtended    = "booking.extended"
	BookingCancelled   = "booking.cancelled"
)

// Event types on bedspace.events.
const (
	BedspaceArchived   = "bedspace.archived"
	BedspaceUnarchived = "bedspace.unarchived"
)

// Event types on referral.events (consumed).
const (
	ReferralBookingRequested = "referral.booking_requested"
)

// BookingProvisionalEvent is published when a provisional booking is created.
type BookingProvisionalEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	Reference     string    `json:"reference"`
	BedspaceID    uuid.UUID `json:"bedspace_id"`
	PremisesID    uuid.UUID `json:"premises_id"`
	CRN           string    `json:"crn"`
	ArrivalDate   time.Time `json:"arrival_date"`
	DepartureDate time.Time `json:"departure_date"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingConfirmedEvent is published when a booking is confirmed.
type BookingConfirmedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reference  string    `json:"reference"`
	CRN        string    `json:"crn"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingArrivedEvent is published when a person moves in.
type BookingArrivedEvent struct {
	BookingID             uuid.UUID `json:"booking_id"`
	Reference             string    `json:"reference"`
	CRN                   string    `json:"crn"`
	ArrivalDate           time.Time `json:"arrival_date"`
	ExpectedDepartureDate time.Time `json:"expected_departure_date"`
	OccurredAt            time.Time `json:"occurred_at"`
}

// BookingDepartedEvent is published when a departure is recorded or corrected.
type BookingDepartedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	Reference     string    `json:"reference"`
	CRN           string    `json:"crn"`
	DepartureDate time.Time `json:"departure_date"`
	ReasonID      string    `json:"reason_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingExtendedEvent is published when a booking is extended or shortened.
type BookingExtendedEvent struct {
	BookingID             uuid.UUID `json:"booking_id"`
	Reference             string    `json:"reference"`
	CRN                   string    `json:"crn"`
	PreviousDepartureDate time.Time `json:"previous_departure_date"`
	NewDepartureDate      time.Time `json:"new_departure_date"`
	Kind                  string    `json:"kind"`
	OccurredAt            time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reference  string    `json:"reference"`
	CRN        string    `json:"crn"`
	ReasonID   string    `json:"reason_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BedspaceArchivedEvent is published when a bedspace archive takes effect or
// is scheduled.
type BedspaceArchivedEvent struct {
	BedspaceID       uuid.UUID `json:"bedspace_id"`
	PremisesID       uuid.UUID `json:"premises_id"`
	Reference        string    `json:"reference"`
	EndDate          time.Time `json:"end_date"`
	PremisesArchived bool      `json:"premises_archived"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// BedspaceUnarchivedEvent is published when a bedspace comes back online or
// an unarchive is scheduled.
type BedspaceUnarchivedEvent struct {
	BedspaceID     uuid.UUID `json:"bedspace_id"`
	PremisesID     uuid.UUID `json:"premises_id"`
	Reference      string    `json:"reference"`
	RestartDate    time.Time `json:"restart_date"`
	PremisesOnline bool      `json:"premises_online"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ReferralBookingRequestedEvent is consumed from the referral service; an
// accepted referral requests a provisional booking in the chosen bedspace.
type ReferralBookingRequestedEvent struct {
	ReferralID    uuid.UUID `json:"referral_id"`
	BedspaceID    uuid.UUID `json:"bedspace_id"`
	PremisesID    uuid.UUID `json:"premises_id"`
	CRN           string    `json:"crn"`
	ArrivalDate   time.Time `json:"arrival_date"`
	DepartureDate time.Time `json:"departure_date"`
	OccurredAt    time.Time `json:"occurred_at"`
}
