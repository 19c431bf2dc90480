package booking

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Arrival records a person moving into the bedspace. At most one is active
// per booking; the expected departure date captured here is the baseline the
// departure and extension history is reconstructed against.
type Arrival struct {
	ID                    uuid.UUID `json:"id"`
	ArrivalDate           time.Time `json:"arrival_date"`
	ExpectedDepartureDate time.Time `json:"expected_departure_date"`
	Notes                 string    `json:"notes,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

// Confirmation records the booking being confirmed. At most one per booking.
type Confirmation struct {
	ID        uuid.UUID `json:"id"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Departure records the person leaving the bedspace. Successive records are
// corrections; the latest one's date is the booking's current departure date.
type Departure struct {
	ID             uuid.UUID `json:"id"`
	DepartureDate  time.Time `json:"departure_date"`
	ReasonID       string    `json:"reason_id,omitempty"`
	MoveOnCategory string    `json:"move_on_category,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Cancellation records the booking being cancelled before arrival.
// Successive records are corrections to the cancellation details.
type Cancellation struct {
	ID        uuid.UUID `json:"id"`
	Date      time.Time `json:"date"`
	ReasonID  string    `json:"reason_id,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Extension records a departure date change while the person is resident,
// keeping the previous date so history can be rewound.
type Extension struct {
	ID                    uuid.UUID `json:"id"`
	PreviousDepartureDate time.Time `json:"previous_departure_date"`
	NewDepartureDate      time.Time `json:"new_departure_date"`
	Notes                 string    `json:"notes,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

// ExtensionKind classifies an extension by the direction of the date change.
type ExtensionKind string

const (
	ExtensionShortened ExtensionKind = "shortened"
	ExtensionExtended  ExtensionKind = "extended"
)

// Kind reports whether the extension shortened or extended the stay.
func (e Extension) Kind() ExtensionKind {
	if e.NewDepartureDate.Before(e.PreviousDepartureDate) {
		return ExtensionShortened
	}
	return ExtensionExtended
}

// Turnaround records the working-day gap reserved between this booking's
// departure and the bedspace's next availability.
type Turnaround struct {
	ID          uuid.UUID `json:"id"`
	WorkingDays int       `json:"working_days"`
	CreatedAt   time.Time `json:"created_at"`
}

// The creation timestamp, not array position, is the ordering key for
// reconstructing history, so every event collection is kept sorted ascending.

func sortDepartures(ds []Departure) {
	sort.SliceStable(ds, func(i, j int) bool { return ds[i].CreatedAt.Before(ds[j].CreatedAt) })
}

func sortCancellations(cs []Cancellation) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].CreatedAt.Before(cs[j].CreatedAt) })
}

func sortExtensions(es []Extension) {
	sort.SliceStable(es, func(i, j int) bool { return es[i].CreatedAt.Before(es[j].CreatedAt) })
}

func sortTurnarounds(ts []Turnaround) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].CreatedAt.Before(ts[j].CreatedAt) })
}
