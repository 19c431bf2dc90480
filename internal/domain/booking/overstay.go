package booking

import (
	"time"

	"github.com/havenpath/service-placement/internal/dates"
)

// MaxStayNights is the maximum permitted stay from the arrival date.
// Departures and extensions beyond it require explicit authorisation.
const MaxStayNights = 84

// OverstayPolicy decides when a proposed departure date needs explicit
// authorisation. AuthorisationRequired comes from configuration: with it
// disabled, overstays pass through ungated.
type OverstayPolicy struct {
	AuthorisationRequired bool
}

// OverstayAssessment is the result of checking a proposed departure date
// against the maximum stay.
type OverstayAssessment struct {
	RequiresAuthorisation bool `json:"requires_authorisation"`
	NightsOverLimit       int  `json:"nights_over_limit"`
}

// OverstayAuthorisation records the explicit decision made in the overstay
// step before a gated departure or extension proceeds.
type OverstayAuthorisation struct {
	Authorised bool   `json:"is_authorised"`
	Reason     string `json:"reason,omitempty"`
}

// Assess checks a proposed departure or extension date against the maximum
// stay. The night count is a calendar-day difference, so a stay of exactly
// MaxStayNights is never gated, including across daylight-saving changes.
func (p OverstayPolicy) Assess(arrivalDate, proposedDepartureDate time.Time) OverstayAssessment {
	nights := dates.NightsBetween(arrivalDate, proposedDepartureDate)
	if !p.AuthorisationRequired || nights <= MaxStayNights {
		return OverstayAssessment{}
	}
	return OverstayAssessment{
		RequiresAuthorisation: true,
		NightsOverLimit:       nights - MaxStayNights,
	}
}

// TurnaroundRow is one displayable turnaround window.
type TurnaroundRow struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// TurnaroundRows returns the turnaround windows worth displaying for the
// booking: none for a cancelled booking, an absent record, or a zero-day
// turnaround; otherwise exactly one start/end pair. An empty result is a
// policy outcome, not an error.
func (b *Booking) TurnaroundRows() []TurnaroundRow {
	if b.statusFromEvents() == StatusCancelled {
		return nil
	}
	t := b.LatestTurnaround()
	if t == nil || t.WorkingDays <= 0 {
		return nil
	}
	return []TurnaroundRow{{
		StartDate: b.TurnaroundStartDate(),
		EndDate:   b.TurnaroundEffectiveEndDate(),
	}}
}
