package bedspace

import "fmt"

// Status represents the availability state of a bedspace.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusOnline   Status = "online"
	StatusArchived Status = "archived"
)

// validTransitions defines the bedspace state machine. Forward flow is
// upcoming → online → archived; scheduling an unarchive moves an archived
// bedspace back to upcoming, and cancelling a scheduled action reverts to
// the prior state.
var validTransitions = map[Status][]Status{
	StatusUpcoming: {StatusOnline, StatusArchived},
	StatusOnline:   {StatusArchived},
	StatusArchived: {StatusUpcoming, StatusOnline},
}

// IsValid returns true if the status is a recognized bedspace status.
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

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid bedspace status: %s", s)
	}
	return status, nil
}
