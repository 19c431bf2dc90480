package booking

import (
	"strings"
)

// ConflictEntityType identifies what kind of record a backend date conflict
// was raised against.
type ConflictEntityType string

const (
	ConflictEntityBooking         ConflictEntityType = "booking"
	ConflictEntityLostBed         ConflictEntityType = "lost-bed"
	ConflictEntityBedspaceEndDate ConflictEntityType = "bedspace-end-date"
)

// ConflictDescriptor is the structured form of a backend conflict error
// detail string, used to build entity-specific user messaging.
type ConflictDescriptor struct {
	ConflictingEntityID   *string            `json:"conflicting_entity_id"`
	ConflictingEntityType ConflictEntityType `json:"conflicting_entity_type"`
}

// ParseConflict classifies a backend conflict detail string.
//
// A detail mentioning the bedspace's archive date ("... archived from
// <date>") has no conflicting entity. Otherwise the last whitespace-delimited
// token is taken as the conflicting entity's id, and the entity is a lost
// bed when the detail names one, else a booking.
func ParseConflict(detail string) ConflictDescriptor {
	if strings.Contains(detail, "archived from") {
		return ConflictDescriptor{ConflictingEntityType: ConflictEntityBedspaceEndDate}
	}

	var id *string
	if fields := strings.Fields(detail); len(fields) > 0 {
		last := fields[len(fields)-1]
		id = &last
	}

	entityType := ConflictEntityBooking
	if strings.Contains(detail, "Lost Bed") {
		entityType = ConflictEntityLostBed
	}

	return ConflictDescriptor{
		ConflictingEntityID:   id,
		ConflictingEntityType: entityType,
	}
}

// Message builds the user-facing conflict message. dateRange indicates the
// failed check covered an arrival-to-departure range rather than a single
// date, which pluralises the wording.
func (d ConflictDescriptor) Message(dateRange bool) string {
	switch d.ConflictingEntityType {
	case ConflictEntityBedspaceEndDate:
		if dateRange {
			return "These dates conflict with the bedspace's archive date"
		}
		return "This date conflicts with the bedspace's archive date"
	case ConflictEntityLostBed:
		if dateRange {
			return "These dates conflict with an existing void"
		}
		return "This date conflicts with an existing void"
	default:
		if dateRange {
			return "These dates conflict with an existing booking"
		}
		return "This date conflicts with an existing booking"
	}
}
