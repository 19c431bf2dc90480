package booking_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenpath/service-placement/internal/domain/booking"
)

func actionTexts(actions []booking.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Text
	}
	return out
}

func TestAvailableActions_PerStatus(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		status booking.Status
		texts  []string
	}{
		{booking.StatusProvisional, []string{"Confirm booking", "Cancel booking", "Change turnaround time"}},
		{booking.StatusConfirmed, []string{"Mark as active", "Cancel booking", "Change turnaround time"}},
		{booking.StatusArrived, []string{"Mark as departed", "Extend or shorten booking", "Change arrival date", "Change turnaround time"}},
		{booking.StatusDeparted, []string{"Update departure details", "Change turnaround time"}},
		{booking.StatusClosed, []string{"Update departure details", "Change turnaround time"}},
		{booking.StatusCancelled, []string{"Update cancelled booking"}},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			actions := booking.AvailableActions(tc.status, id)
			assert.Equal(t, tc.texts, actionTexts(actions))
		})
	}
}

func TestAvailableActions_PrimaryAndPaths(t *testing.T) {
	id := uuid.New()

	actions := booking.AvailableActions(booking.StatusProvisional, id)
	require.NotEmpty(t, actions)
	assert.Equal(t, booking.ActionPrimary, actions[0].Style)
	assert.Equal(t, fmt.Sprintf("/bookings/%s/confirm", id), actions[0].TargetPath)

	actions = booking.AvailableActions(booking.StatusArrived, id)
	assert.Equal(t, fmt.Sprintf("/bookings/%s/departure", id), actions[0].TargetPath)
	assert.Equal(t, fmt.Sprintf("/bookings/%s/arrival/edit", id), actions[2].TargetPath)
}

func TestAvailableActions_TurnaroundExceptCancelled(t *testing.T) {
	id := uuid.New()
	all := []booking.Status{
		booking.StatusProvisional, booking.StatusConfirmed, booking.StatusArrived,
		booking.StatusDeparted, booking.StatusClosed, booking.StatusCancelled,
	}

	for _, status := range all {
		actions := booking.AvailableActions(status, id)
		hasTurnaround := false
		for _, a := range actions {
			if a.Text == "Change turnaround time" {
				hasTurnaround = true
			}
		}
		assert.Equal(t, status != booking.StatusCancelled, hasTurnaround, "status %s", status)
	}
}
