package booking

import (
	"fmt"

	"github.com/google/uuid"
)

// ActionStyle is the semantic weight of an action when rendered.
type ActionStyle string

const (
	ActionPrimary   ActionStyle = "primary"
	ActionSecondary ActionStyle = "secondary"
)

// Action describes one operation currently available on a booking. Rendering
// is the caller's concern; the engine only decides which actions exist.
type Action struct {
	Text       string      `json:"text"`
	Style      ActionStyle `json:"style"`
	TargetPath string      `json:"target_path"`
}

// AvailableActions returns the actions applicable to a booking in the given
// status, in display order. An empty result means no actions are available,
// which is a valid state, not an error.
func AvailableActions(status Status, bookingID uuid.UUID) []Action {
	path := func(suffix string) string {
		return fmt.Sprintf("/bookings/%s/%s", bookingID, suffix)
	}

	var actions []Action
	switch status {
	case StatusProvisional:
		actions = []Action{
			{Text: "Confirm booking", Style: ActionPrimary, TargetPath: path("confirm")},
			{Text: "Cancel booking", Style: ActionSecondary, TargetPath: path("cancel")},
		}
	case StatusConfirmed:
		actions = []Action{
			{Text: "Mark as active", Style: ActionPrimary, TargetPath: path("arrival")},
			{Text: "Cancel booking", Style: ActionSecondary, TargetPath: path("cancel")},
		}
	case StatusArrived:
		actions = []Action{
			{Text: "Mark as departed", Style: ActionPrimary, TargetPath: path("departure")},
			{Text: "Extend or shorten booking", Style: ActionSecondary, TargetPath: path("extension")},
			{Text: "Change arrival date", Style: ActionSecondary, TargetPath: path("arrival/edit")},
		}
	case StatusDeparted, StatusClosed:
		actions = []Action{
			{Text: "Update departure details", Style: ActionSecondary, TargetPath: path("departure/edit")},
		}
	case StatusCancelled:
		actions = []Action{
			{Text: "Update cancelled booking", Style: ActionSecondary, TargetPath: path("cancel/edit")},
		}
	}

	// Every status except cancelled can change the turnaround period.
	if status != StatusCancelled {
		actions = append(actions, Action{
			Text:       "Change turnaround time",
			Style:      ActionSecondary,
			TargetPath: path("turnaround"),
		})
	}

	return actions
}
