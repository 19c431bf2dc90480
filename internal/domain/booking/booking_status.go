package booking

import "fmt"

// Status represents the current state of a booking in its lifecycle.
type Status string

const (
	StatusProvisional Status = "provisional"
	StatusConfirmed   Status = "confirmed"
	StatusArrived     Status = "arrived"
	StatusDeparted    Status = "departed"
	StatusClosed      Status = "closed"
	StatusCancelled   Status = "cancelled"
)

// validTransitions defines the state machine for booking status transitions.
// Status only ever moves forward, except cancellation, which is reachable
// from provisional or confirmed.
var validTransitions = map[Status][]Status{
	StatusProvisional: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:   {StatusArrived, StatusCancelled},
	StatusArrived:     {StatusDeparted},
	StatusDeparted:    {StatusClosed},
	StatusClosed:      {},
	StatusCancelled:   {},
}

// IsValid returns true if the status is a recognized booking status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// CanBeCancelled returns true if the booking can be cancelled from this status.
func (s Status) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// HasDeparted returns true for the departed and closed statuses, which share
// their available actions and history behaviour.
func (s Status) HasDeparted() bool {
	return s == StatusDeparted || s == StatusClosed
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
