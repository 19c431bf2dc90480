package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenpath/service-placement/internal/domain"
	bookingDomain "github.com/havenpath/service-placement/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table. The event
// collections are stored as jsonb; status is stored redundantly for query
// convenience but is always recomputed from the domain aggregate on write.
type BookingModel struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Reference             string          `gorm:"uniqueIndex;not null;size:20"`
	BedspaceID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	PremisesID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	CRN                   string          `gorm:"index;not null;size:20"`
	Status                string          `gorm:"not null;size:20;index"`
	OriginalArrivalDate   time.Time       `gorm:"not null"`
	OriginalDepartureDate time.Time       `gorm:"not null"`
	ArrivalDate           time.Time       `gorm:"not null"`
	DepartureDate         time.Time       `gorm:"not null;index"`
	Arrival               json.RawMessage `gorm:"type:jsonb"`
	Confirmation          json.RawMessage `gorm:"type:jsonb"`
	Departures            json.RawMessage `gorm:"type:jsonb;not null;default:'[]'"`
	Cancellations         json.RawMessage `gorm:"type:jsonb;not null;default:'[]'"`
	Extensions            json.RawMessage `gorm:"type:jsonb;not null;default:'[]'"`
	Turnarounds           json.RawMessage `gorm:"type:jsonb;not null;default:'[]'"`
	Notes                 string          `gorm:"size:1000"`
	Version               int64           `gorm:"not null;default:1"`
	CreatedAt             time.Time       `gorm:"not null"`
	UpdatedAt             time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByReference retrieves a booking by its booking reference.
func (r *GormBookingRepository) FindByReference(ctx context.Context, reference string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", reference)
		}
		return nil, fmt.Errorf("failed to find booking by reference: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByBedspaceID retrieves bookings for a bedspace with pagination.
func (r *GormBookingRepository) FindByBedspaceID(ctx context.Context, bedspaceID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaginated(ctx, "bedspace_id = ?", bedspaceID, page, limit)
}

// FindByCRN retrieves bookings for a person with pagination.
func (r *GormBookingRepository) FindByCRN(ctx context.Context, crn string, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaginated(ctx, "crn = ?", crn, page, limit)
}

// ListAll retrieves all bookings with pagination.
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

func (r *GormBookingRepository) findPaginated(ctx context.Context, query string, arg interface{}, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where(query, arg).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where(query, arg).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by stored status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, b *bookingDomain.Booking) error {
	model, err := toBookingModel(b)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, b *bookingDomain.Booking) error {
	model, err := toBookingModel(b)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// Optimistic locking: only update if the version matches (current
	// version - 1 since IncrementVersion was called).
	expectedVersion := b.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":         model.Status,
			"arrival_date":   model.ArrivalDate,
			"departure_date": model.DepartureDate,
			"arrival":        model.Arrival,
			"confirmation":   model.Confirmation,
			"departures":     model.Departures,
			"cancellations":  model.Cancellations,
			"extensions":     model.Extensions,
			"turnarounds":    model.Turnarounds,
			"notes":          model.Notes,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewVersionConflictError("booking was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func toBookingModel(b *bookingDomain.Booking) (*BookingModel, error) {
	var arrivalJSON json.RawMessage
	if b.Arrival() != nil {
		data, err := json.Marshal(b.Arrival())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal arrival: %w", err)
		}
		arrivalJSON = data
	}

	var confirmationJSON json.RawMessage
	if b.Confirmation() != nil {
		data, err := json.Marshal(b.Confirmation())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal confirmation: %w", err)
		}
		confirmationJSON = data
	}

	departuresJSON, err := json.Marshal(b.Departures())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal departures: %w", err)
	}
	cancellationsJSON, err := json.Marshal(b.Cancellations())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cancellations: %w", err)
	}
	extensionsJSON, err := json.Marshal(b.Extensions())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extensions: %w", err)
	}
	turnaroundsJSON, err := json.Marshal(b.Turnarounds())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal turnarounds: %w", err)
	}

	return &BookingModel{
		ID:                    b.ID(),
		Reference:             b.Reference(),
		BedspaceID:            b.BedspaceID(),
		PremisesID:            b.PremisesID(),
		CRN:                   b.CRN(),
		Status:                string(b.Status(time.Now().UTC())),
		OriginalArrivalDate:   b.OriginalArrivalDate(),
		OriginalDepartureDate: b.OriginalDepartureDate(),
		ArrivalDate:           b.ArrivalDate(),
		DepartureDate:         b.DepartureDate(),
		Arrival:               arrivalJSON,
		Confirmation:          confirmationJSON,
		Departures:            departuresJSON,
		Cancellations:         cancellationsJSON,
		Extensions:            extensionsJSON,
		Turnarounds:           turnaroundsJSON,
		Notes:                 b.Notes(),
		Version:               b.Version(),
		CreatedAt:             b.CreatedAt(),
		UpdatedAt:             b.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var arrival *bookingDomain.Arrival
	if len(m.Arrival) > 0 {
		var a bookingDomain.Arrival
		if err := json.Unmarshal(m.Arrival, &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal arrival: %w", err)
		}
		arrival = &a
	}

	var confirmation *bookingDomain.Confirmation
	if len(m.Confirmation) > 0 {
		var c bookingDomain.Confirmation
		if err := json.Unmarshal(m.Confirmation, &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal confirmation: %w", err)
		}
		confirmation = &c
	}

	var departures []bookingDomain.Departure
	if len(m.Departures) > 0 {
		if err := json.Unmarshal(m.Departures, &departures); err != nil {
			return nil, fmt.Errorf("failed to unmarshal departures: %w", err)
		}
	}

	var cancellations []bookingDomain.Cancellation
	if len(m.Cancellations) > 0 {
		if err := json.Unmarshal(m.Cancellations, &cancellations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cancellations: %w", err)
		}
	}

	var extensions []bookingDomain.Extension
	if len(m.Extensions) > 0 {
		if err := json.Unmarshal(m.Extensions, &extensions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extensions: %w", err)
		}
	}

	var turnarounds []bookingDomain.Turnaround
	if len(m.Turnarounds) > 0 {
		if err := json.Unmarshal(m.Turnarounds, &turnarounds); err != nil {
			return nil, fmt.Errorf("failed to unmarshal turnarounds: %w", err)
		}
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.Reference,
		m.BedspaceID,
		m.PremisesID,
		m.CRN,
		m.OriginalArrivalDate,
		m.OriginalDepartureDate,
		arrival,
		confirmation,
		departures,
		cancellations,
		extensions,
		turnarounds,
		m.Notes,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		b, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = b
	}
	return bookings, total, nil
}
