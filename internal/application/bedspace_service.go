package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/havenpath/service-placement/internal/dates"
	"github.com/havenpath/service-placement/internal/domain"
	bedspaceDomain "github.com/havenpath/service-placement/internal/domain/bedspace"
	"github.com/havenpath/service-placement/internal/events"
)

// CreateBedspaceRequest holds the data needed to create a new bedspace.
type CreateBedspaceRequest struct {
	PremisesID      uuid.UUID `json:"premises_id" binding:"required"`
	Reference       string    `json:"reference" binding:"required"`
	Characteristics []string  `json:"characteristics"`
	Notes           string    `json:"notes"`
	StartDate       time.Time `json:"start_date" binding:"required"`
}

// ArchiveRequest holds the date a bedspace goes (or will go) out of use.
type ArchiveRequest struct {
	EndDate time.Time `json:"end_date" binding:"required"`
}

// UnarchiveRequest holds the date an archived bedspace comes back online.
type UnarchiveRequest struct {
	RestartDate time.Time `json:"restart_date" binding:"required"`
}

// BedspaceDTO is the response representation of a bedspace.
type BedspaceDTO struct {
	ID                    uuid.UUID                     `json:"id"`
	PremisesID            uuid.UUID                     `json:"premises_id"`
	Reference             string                        `json:"reference"`
	Characteristics       []string                      `json:"characteristics"`
	Notes                 string                        `json:"notes,omitempty"`
	Status                string                        `json:"status"`
	StartDate             *time.Time                    `json:"start_date,omitempty"`
	EndDate               *time.Time                    `json:"end_date,omitempty"`
	ScheduleUnarchiveDate *time.Time                    `json:"schedule_unarchive_date,omitempty"`
	ArchiveHistory        []bedspaceDomain.StatusChange `json:"archive_history,omitempty"`
	Version               int64                         `json:"version"`
	CreatedAt             time.Time                     `json:"created_at"`
	UpdatedAt             time.Time                     `json:"updated_at"`
}

// PremisesSummaryDTO is a premises' bedspace totals plus derived flags.
type PremisesSummaryDTO struct {
	PremisesID    uuid.UUID `json:"premises_id"`
	Online        int       `json:"online"`
	Archived      int       `json:"archived"`
	Upcoming      int       `json:"upcoming"`
	FullyArchived bool      `json:"fully_archived"`
	FullyOnline   bool      `json:"fully_online"`
}

// BedspaceService is the application service orchestrating bedspace use cases.
type BedspaceService struct {
	repo     bedspaceDomain.Repository
	producer EventPublisher
	logger   *zap.Logger
}

// NewBedspaceService creates a new BedspaceService.
func NewBedspaceService(
	repo bedspaceDomain.Repository,
	producer EventPublisher,
	logger *zap.Logger,
) *BedspaceService {
	return &BedspaceService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateBedspace creates a new bedspace within a premises.
func (s *BedspaceService) CreateBedspace(ctx context.Context, req CreateBedspaceRequest) (*BedspaceDTO, error) {
	bs, err := bedspaceDomain.NewBedspace(
		req.PremisesID,
		req.Reference,
		req.Characteristics,
		req.Notes,
		req.StartDate,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bs); err != nil {
		return nil, fmt.Errorf("failed to save bedspace: %w", err)
	}

	result := toBedspaceDTO(bs)
	return &result, nil
}

// GetBedspace retrieves a single bedspace, applying any scheduled archive or
// unarchive whose date has arrived.
func (s *BedspaceService) GetBedspace(ctx context.Context, bedspaceID uuid.UUID) (*BedspaceDTO, error) {
	bs, err := s.findCurrent(ctx, bedspaceID)
	if err != nil {
		return nil, err
	}
	result := toBedspaceDTO(bs)
	return &result, nil
}

// GetPremisesBedspaces retrieves all bedspaces belonging to a premises.
func (s *BedspaceService) GetPremisesBedspaces(ctx context.Context, premisesID uuid.UUID) ([]BedspaceDTO, error) {
	bedspaces, err := s.repo.FindByPremisesID(ctx, premisesID)
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC()
	dtos := make([]BedspaceDTO, len(bedspaces))
	for i, bs := range bedspaces {
		s.applyScheduled(ctx, bs, today)
		dtos[i] = toBedspaceDTO(bs)
	}
	return dtos, nil
}

// GetPremisesSummary returns a premises' bedspace totals.
func (s *BedspaceService) GetPremisesSummary(ctx context.Context, premisesID uuid.UUID) (*PremisesSummaryDTO, error) {
	totals, err := s.repo.TotalsForPremises(ctx, premisesID)
	if err != nil {
		return nil, err
	}
	return &PremisesSummaryDTO{
		PremisesID:    premisesID,
		Online:        totals.Online,
		Archived:      totals.Archived,
		Upcoming:      totals.Upcoming,
		FullyArchived: totals.FullyArchived(),
		FullyOnline:   totals.FullyOnline(),
	}, nil
}

// CheckArchiveBlocked reports the booking or void blocking an archive on the
// given date, or nil if the date is clear.
func (s *BedspaceService) CheckArchiveBlocked(ctx context.Context, bedspaceID uuid.UUID, endDate time.Time) (*bedspaceDomain.Blocker, error) {
	if _, err := s.repo.FindByID(ctx, bedspaceID); err != nil {
		return nil, err
	}
	return s.repo.FindBlocker(ctx, bedspaceID, dates.Truncate(endDate))
}

// ArchiveBedspace takes a bedspace out of use on the given date. A future
// date schedules the archive; the bedspace stays online until it arrives.
// An active booking or void extending past the date blocks the archive.
func (s *BedspaceService) ArchiveBedspace(ctx context.Context, bedspaceID uuid.UUID, req ArchiveRequest) (*BedspaceDTO, error) {
	bs, err := s.repo.FindByID(ctx, bedspaceID)
	if err != nil {
		return nil, err
	}

	blocker, err := s.repo.FindBlocker(ctx, bedspaceID, dates.Truncate(req.EndDate))
	if err != nil {
		return nil, fmt.Errorf("failed to check archive dependencies: %w", err)
	}
	if blocker != nil {
		return nil, domain.NewBlockedError(
			dates.FormatUI(blocker.Date),
			blocker.EntityID.String(),
			blocker.EntityReference,
		)
	}

	today := time.Now().UTC()
	if err := bs.Archive(req.EndDate, today); err != nil {
		return nil, err
	}

	bs.IncrementVersion()
	if err := s.repo.Update(ctx, bs); err != nil {
		return nil, err
	}

	// Totals are refetched after the update so the cascade flag reflects
	// the committed state, not a stale pre-mutation count.
	totals, err := s.repo.TotalsForPremises(ctx, bs.PremisesID())
	if err != nil {
		return nil, fmt.Errorf("failed to refetch premises totals: %w", err)
	}

	evt := events.BedspaceArchivedEvent{
		BedspaceID:       bs.ID(),
		PremisesID:       bs.PremisesID(),
		Reference:        bs.Reference(),
		EndDate:          *bs.EndDate(),
		PremisesArchived: totals.FullyArchived(),
		OccurredAt:       time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBedspaceEvents, events.BedspaceArchived, bs.ID().String(), evt)

	result := toBedspaceDTO(bs)
	return &result, nil
}

// CancelScheduledArchive clears a pending archive date.
func (s *BedspaceService) CancelScheduledArchive(ctx context.Context, bedspaceID uuid.UUID) (*BedspaceDTO, error) {
	bs, err := s.repo.FindByID(ctx, bedspaceID)
	if err != nil {
		return nil, err
	}

	if err := bs.CancelScheduledArchive(time.Now().UTC()); err != nil {
		return nil, err
	}

	bs.IncrementVersion()
	if err := s.repo.Update(ctx, bs); err != nil {
		return nil, err
	}

	result := toBedspaceDTO(bs)
	return &result, nil
}

// UnarchiveBedspace brings an archived bedspace back online on the given
// date. A future date schedules the unarchive.
func (s *BedspaceService) UnarchiveBedspace(ctx context.Context, bedspaceID uuid.UUID, req UnarchiveRequest) (*BedspaceDTO, error) {
	bs, err := s.repo.FindByID(ctx, bedspaceID)
	if err != nil {
		return nil, err
	}

	if err := bs.Unarchive(req.RestartDate, time.Now().UTC()); err != nil {
		return nil, err
	}

	bs.IncrementVersion()
	if err := s.repo.Update(ctx, bs); err != nil {
		return nil, err
	}

	totals, err := s.repo.TotalsForPremises(ctx, bs.PremisesID())
	if err != nil {
		return nil, fmt.Errorf("failed to refetch premises totals: %w", err)
	}

	evt := events.BedspaceUnarchivedEvent{
		BedspaceID:     bs.ID(),
		PremisesID:     bs.PremisesID(),
		Reference:      bs.Reference(),
		RestartDate:    dates.Truncate(req.RestartDate),
		PremisesOnline: totals.FullyOnline(),
		OccurredAt:     time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBedspaceEvents, events.BedspaceUnarchived, bs.ID().String(), evt)

	result := toBedspaceDTO(bs)
	return &result, nil
}

// CancelScheduledUnarchive reverts a scheduled unarchive.
func (s *BedspaceService) CancelScheduledUnarchive(ctx context.Context, bedspaceID uuid.UUID) (*BedspaceDTO, error) {
	bs, err := s.repo.FindByID(ctx, bedspaceID)
	if err != nil {
		return nil, err
	}

	if err := bs.CancelScheduledUnarchive(); err != nil {
		return nil, err
	}

	bs.IncrementVersion()
	if err := s.repo.Update(ctx, bs); err != nil {
		return nil, err
	}

	result := toBedspaceDTO(bs)
	return &result, nil
}

// UpdateBedspace replaces a bedspace's characteristics and notes.
func (s *BedspaceService) UpdateBedspace(ctx context.Context, bedspaceID uuid.UUID, characteristics []string, notes string) (*BedspaceDTO, error) {
	bs, err := s.repo.FindByID(ctx, bedspaceID)
	if err != nil {
		return nil, err
	}

	bs.UpdateDetails(characteristics, notes)
	bs.IncrementVersion()
	if err := s.repo.Update(ctx, bs); err != nil {
		return nil, err
	}

	result := toBedspaceDTO(bs)
	return &result, nil
}

// --- Helpers ---

// findCurrent loads a bedspace and applies any due scheduled change before
// returning it. Scheduled archives and unarchives take effect lazily on the
// first read on or after their date.
func (s *BedspaceService) findCurrent(ctx context.Context, bedspaceID uuid.UUID) (*bedspaceDomain.Bedspace, error) {
	bs, err := s.repo.FindByID(ctx, bedspaceID)
	if err != nil {
		return nil, err
	}
	s.applyScheduled(ctx, bs, time.Now().UTC())
	return bs, nil
}

// applyScheduled persists a due scheduled change. A failed write is logged
// and the in-memory state kept; the next read tries again.
func (s *BedspaceService) applyScheduled(ctx context.Context, bs *bedspaceDomain.Bedspace, today time.Time) {
	if !bs.ActivateScheduled(today) {
		return
	}
	bs.IncrementVersion()
	if err := s.repo.Update(ctx, bs); err != nil {
		s.logger.Error("failed to persist scheduled bedspace change",
			zap.String("bedspace_id", bs.ID().String()),
			zap.Error(err),
		)
	}
}

func toBedspaceDTO(bs *bedspaceDomain.Bedspace) BedspaceDTO {
	return BedspaceDTO{
		ID:                    bs.ID(),
		PremisesID:            bs.PremisesID(),
		Reference:             bs.Reference(),
		Characteristics:       bs.Characteristics(),
		Notes:                 bs.Notes(),
		Status:                string(bs.Status()),
		StartDate:             bs.StartDate(),
		EndDate:               bs.EndDate(),
		ScheduleUnarchiveDate: bs.ScheduleUnarchiveDate(),
		ArchiveHistory:        bs.ArchiveHistory(),
		Version:               bs.Version(),
		CreatedAt:             bs.CreatedAt(),
		UpdatedAt:             bs.UpdatedAt(),
	}
}

func (s *BedspaceService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	cloudEvent, err := events.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
