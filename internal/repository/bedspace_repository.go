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
	bedspaceDomain "github.com/havenpath/service-placement/internal/domain/bedspace"
)

// BedspaceModel is the GORM model for the bedspaces table.
type BedspaceModel struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PremisesID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	Reference             string          `gorm:"not null;size:100"`
	Characteristics       json.RawMessage `gorm:"type:jsonb;not null;default:'[]'"`
	Notes                 string          `gorm:"size:1000"`
	Status                string          `gorm:"not null;size:20;index"`
	StartDate             *time.Time      `gorm:""`
	EndDate               *time.Time      `gorm:""`
	ScheduleUnarchiveDate *time.Time      `gorm:""`
	ArchiveHistory        json.RawMessage `gorm:"type:jsonb;not null;default:'[]'"`
	Version               int64           `gorm:"not null;default:1"`
	CreatedAt             time.Time       `gorm:"not null"`
	UpdatedAt             time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BedspaceModel) TableName() string {
	return "bedspaces"
}

// VoidModel is the GORM model for the voids table. A void (lost bed) takes a
// bedspace out of use for a date range and blocks archiving until it ends.
type VoidModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BedspaceID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	Reference   string     `gorm:"not null;size:100"`
	StartDate   time.Time  `gorm:"not null"`
	EndDate     time.Time  `gorm:"not null;index"`
	ReasonID    uuid.UUID  `gorm:"type:uuid;not null"`
	Notes       string     `gorm:"size:1000"`
	CancelledAt *time.Time `gorm:""`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (VoidModel) TableName() string {
	return "voids"
}

// GormBedspaceRepository is the GORM-based implementation of bedspace.Repository.
type GormBedspaceRepository struct {
	db *gorm.DB
}

// NewGormBedspaceRepository creates a new GormBedspaceRepository.
func NewGormBedspaceRepository(db *gorm.DB) *GormBedspaceRepository {
	return &GormBedspaceRepository{db: db}
}

// FindByID retrieves a bedspace by its unique identifier.
func (r *GormBedspaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*bedspaceDomain.Bedspace, error) {
	var model BedspaceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Bedspace", id.String())
		}
		return nil, fmt.Errorf("failed to find bedspace by ID: %w", err)
	}
	return toDomainBedspace(&model)
}

// FindByPremisesID retrieves all bedspaces belonging to a premises.
func (r *GormBedspaceRepository) FindByPremisesID(ctx context.Context, premisesID uuid.UUID) ([]*bedspaceDomain.Bedspace, error) {
	var models []BedspaceModel
	if err := r.db.WithContext(ctx).
		Where("premises_id = ?", premisesID).
		Order("reference ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bedspaces for premises: %w", err)
	}

	bedspaces := make([]*bedspaceDomain.Bedspace, len(models))
	for i, m := range models {
		b, err := toDomainBedspace(&m)
		if err != nil {
			return nil, err
		}
		bedspaces[i] = b
	}
	return bedspaces, nil
}

// TotalsForPremises counts a premises' bedspaces grouped by status.
func (r *GormBedspaceRepository) TotalsForPremises(ctx context.Context, premisesID uuid.UUID) (bedspaceDomain.PremisesTotals, error) {
	type statusCount struct {
		Status string
		Count  int
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BedspaceModel{}).
		Select("status, count(*) as count").
		Where("premises_id = ?", premisesID).
		Group("status").
		Find(&results).Error; err != nil {
		return bedspaceDomain.PremisesTotals{}, fmt.Errorf("failed to count bedspaces by status: %w", err)
	}

	var totals bedspaceDomain.PremisesTotals
	for _, sc := range results {
		switch bedspaceDomain.Status(sc.Status) {
		case bedspaceDomain.StatusOnline:
			totals.Online = sc.Count
		case bedspaceDomain.StatusArchived:
			totals.Archived = sc.Count
		case bedspaceDomain.StatusUpcoming:
			totals.Upcoming = sc.Count
		}
	}
	return totals, nil
}

// FindBlocker returns the latest-ending booking or void still active on or
// after the given date, or nil if the archive date is unobstructed.
func (r *GormBedspaceRepository) FindBlocker(ctx context.Context, bedspaceID uuid.UUID, onOrAfter time.Time) (*bedspaceDomain.Blocker, error) {
	var booking BookingModel
	bookingErr := r.db.WithContext(ctx).
		Where("bedspace_id = ? AND status NOT IN ? AND departure_date >= ?",
			bedspaceID, []string{"cancelled"}, onOrAfter).
		Order("departure_date DESC").
		First(&booking).Error
	if bookingErr != nil && !errors.Is(bookingErr, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to query blocking bookings: %w", bookingErr)
	}

	var void VoidModel
	voidErr := r.db.WithContext(ctx).
		Where("bedspace_id = ? AND cancelled_at IS NULL AND end_date >= ?", bedspaceID, onOrAfter).
		Order("end_date DESC").
		First(&void).Error
	if voidErr != nil && !errors.Is(voidErr, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to query blocking voids: %w", voidErr)
	}

	hasBooking := bookingErr == nil
	hasVoid := voidErr == nil
	switch {
	case hasBooking && (!hasVoid || booking.DepartureDate.After(void.EndDate)):
		return &bedspaceDomain.Blocker{
			Type:            bedspaceDomain.BlockerBooking,
			Date:            booking.DepartureDate,
			EntityID:        booking.ID,
			EntityReference: booking.Reference,
		}, nil
	case hasVoid:
		return &bedspaceDomain.Blocker{
			Type:            bedspaceDomain.BlockerVoid,
			Date:            void.EndDate,
			EntityID:        void.ID,
			EntityReference: void.Reference,
		}, nil
	default:
		return nil, nil
	}
}

// Save persists a new bedspace.
func (r *GormBedspaceRepository) Save(ctx context.Context, b *bedspaceDomain.Bedspace) error {
	model, err := toBedspaceModel(b)
	if err != nil {
		return fmt.Errorf("failed to convert bedspace to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save bedspace: %w", err)
	}
	return nil
}

// Update persists changes to an existing bedspace with optimistic locking.
func (r *GormBedspaceRepository) Update(ctx context.Context, b *bedspaceDomain.Bedspace) error {
	model, err := toBedspaceModel(b)
	if err != nil {
		return fmt.Errorf("failed to convert bedspace to model: %w", err)
	}

	expectedVersion := b.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BedspaceModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"characteristics":         model.Characteristics,
			"notes":                   model.Notes,
			"status":                  model.Status,
			"start_date":              model.StartDate,
			"end_date":                model.EndDate,
			"schedule_unarchive_date": model.ScheduleUnarchiveDate,
			"archive_history":         model.ArchiveHistory,
			"version":                 model.Version,
			"updated_at":              model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update bedspace: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewVersionConflictError("bedspace was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func toBedspaceModel(b *bedspaceDomain.Bedspace) (*BedspaceModel, error) {
	characteristics := b.Characteristics()
	if characteristics == nil {
		characteristics = []string{}
	}
	characteristicsJSON, err := json.Marshal(characteristics)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal characteristics: %w", err)
	}

	history := b.ArchiveHistory()
	if history == nil {
		history = []bedspaceDomain.StatusChange{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal archive history: %w", err)
	}

	return &BedspaceModel{
		ID:                    b.ID(),
		PremisesID:            b.PremisesID(),
		Reference:             b.Reference(),
		Characteristics:       characteristicsJSON,
		Notes:                 b.Notes(),
		Status:                string(b.Status()),
		StartDate:             b.StartDate(),
		EndDate:               b.EndDate(),
		ScheduleUnarchiveDate: b.ScheduleUnarchiveDate(),
		ArchiveHistory:        historyJSON,
		Version:               b.Version(),
		CreatedAt:             b.CreatedAt(),
		UpdatedAt:             b.UpdatedAt(),
	}, nil
}

func toDomainBedspace(m *BedspaceModel) (*bedspaceDomain.Bedspace, error) {
	var characteristics []string
	if len(m.Characteristics) > 0 {
		if err := json.Unmarshal(m.Characteristics, &characteristics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal characteristics: %w", err)
		}
	}

	var history []bedspaceDomain.StatusChange
	if len(m.ArchiveHistory) > 0 {
		if err := json.Unmarshal(m.ArchiveHistory, &history); err != nil {
			return nil, fmt.Errorf("failed to unmarshal archive history: %w", err)
		}
	}

	status, err := bedspaceDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bedspaceDomain.ReconstructBedspace(
		m.ID,
		m.PremisesID,
		m.Reference,
		characteristics,
		m.Notes,
		status,
		m.StartDate,
		m.EndDate,
		m.ScheduleUnarchiveDate,
		history,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
