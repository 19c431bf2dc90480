package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/havenpath/service-placement/internal/domain"
	bookingDomain "github.com/havenpath/service-placement/internal/domain/booking"
	"github.com/havenpath/service-placement/internal/events"
)

const eventSource = "service-placement"

// EventPublisher is the slice of the kafka producer the services use.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event events.CloudEvent) error
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	BedspaceID    uuid.UUID `json:"bedspace_id" binding:"required"`
	PremisesID    uuid.UUID `json:"premises_id" binding:"required"`
	CRN           string    `json:"crn" binding:"required"`
	ArrivalDate   time.Time `json:"arrival_date" binding:"required"`
	DepartureDate time.Time `json:"departure_date" binding:"required"`
	Notes         string    `json:"notes"`
}

// ArrivalRequest holds the data recorded when a person moves in.
type ArrivalRequest struct {
	ArrivalDate           time.Time `json:"arrival_date" binding:"required"`
	ExpectedDepartureDate time.Time `json:"expected_departure_date" binding:"required"`
	Notes                 string    `json:"notes"`
}

// DepartureRequest holds the data recorded when a person moves out.
type DepartureRequest struct {
	DepartureDate  time.Time                            `json:"departure_date" binding:"required"`
	ReasonID       string                               `json:"reason_id" binding:"required"`
	MoveOnCategory string                               `json:"move_on_category"`
	Notes          string                               `json:"notes"`
	Overstay       *bookingDomain.OverstayAuthorisation `json:"overstay,omitempty"`
}

// ExtensionRequest holds the data for changing an expected departure date.
type ExtensionRequest struct {
	NewDepartureDate time.Time                            `json:"new_departure_date" binding:"required"`
	Notes            string                               `json:"notes"`
	Overstay         *bookingDomain.OverstayAuthorisation `json:"overstay,omitempty"`
}

// CancellationRequest holds the data recorded when a booking is cancelled.
type CancellationRequest struct {
	Date     time.Time `json:"date" binding:"required"`
	ReasonID string    `json:"reason_id" binding:"required"`
	Notes    string    `json:"notes"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                    uuid.UUID                    `json:"id"`
	Reference             string                       `json:"reference"`
	BedspaceID            uuid.UUID                    `json:"bedspace_id"`
	PremisesID            uuid.UUID                    `json:"premises_id"`
	CRN                   string                       `json:"crn"`
	Status                string                       `json:"status"`
	ArrivalDate           time.Time                    `json:"arrival_date"`
	DepartureDate         time.Time                    `json:"departure_date"`
	OriginalArrivalDate   time.Time                    `json:"original_arrival_date"`
	OriginalDepartureDate time.Time                    `json:"original_departure_date"`
	Arrival               *bookingDomain.Arrival       `json:"arrival,omitempty"`
	Confirmation          *bookingDomain.Confirmation  `json:"confirmation,omitempty"`
	Departures            []bookingDomain.Departure    `json:"departures,omitempty"`
	Cancellations         []bookingDomain.Cancellation `json:"cancellations,omitempty"`
	Extensions            []bookingDomain.Extension    `json:"extensions,omitempty"`
	Turnarounds           []bookingDomain.Turnaround   `json:"turnarounds,omitempty"`
	Notes                 string                       `json:"notes,omitempty"`
	Version               int64                        `json:"version"`
	CreatedAt             time.Time                    `json:"created_at"`
	UpdatedAt             time.Time                    `json:"updated_at"`
}

// HistoryEntryDTO is one state the booking passed through, oldest first.
type HistoryEntryDTO struct {
	Status        string    `json:"status"`
	ArrivalDate   time.Time `json:"arrival_date"`
	DepartureDate time.Time `json:"departure_date"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingStatsDTO holds booking counts for the dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo     bookingDomain.Repository
	overstay bookingDomain.OverstayPolicy
	producer EventPublisher
	logger   *zap.Logger

	// now supplies the reference date for status projection; tests pin it.
	now func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.Repository,
	overstay bookingDomain.OverstayPolicy,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:     repo,
		overstay: overstay,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateBooking creates a new provisional booking.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	bk, err := bookingDomain.NewBooking(
		req.BedspaceID,
		req.PremisesID,
		req.CRN,
		req.ArrivalDate,
		req.DepartureDate,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	evt := events.BookingProvisionalEvent{
		BookingID:     bk.ID(),
		Reference:     bk.Reference(),
		BedspaceID:    bk.BedspaceID(),
		PremisesID:    bk.PremisesID(),
		CRN:           bk.CRN(),
		ArrivalDate:   bk.ArrivalDate(),
		DepartureDate: bk.DepartureDate(),
		OccurredAt:    s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingProvisional, bk.ID().String(), evt)

	result := toBookingDTO(bk, s.now())
	return &result, nil
}

// CreateProvisionalBooking creates a provisional booking from an accepted
// referral. It satisfies events.ProvisionalBookingCreator.
func (s *BookingService) CreateProvisionalBooking(ctx context.Context, bedspaceID, premisesID uuid.UUID, crn string, arrivalDate, departureDate time.Time) error {
	_, err := s.CreateBooking(ctx, CreateBookingRequest{
		BedspaceID:    bedspaceID,
		PremisesID:    premisesID,
		CRN:           crn,
		ArrivalDate:   arrivalDate,
		DepartureDate: departureDate,
	})
	return err
}

// ConfirmBooking transitions a provisional booking to confirmed.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID uuid.UUID, notes string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Confirm(notes); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingConfirmedEvent{
		BookingID:  bk.ID(),
		Reference:  bk.Reference(),
		CRN:        bk.CRN(),
		OccurredAt: s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingConfirmed, bk.ID().String(), evt)

	result := toBookingDTO(bk, s.now())
	return &result, nil
}

// RecordArrival marks a confirmed booking as arrived.
func (s *BookingService) RecordArrival(ctx context.Context, bookingID uuid.UUID, req ArrivalRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.MarkArrived(req.ArrivalDate, req.ExpectedDepartureDate, req.Notes); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingArrivedEvent{
		BookingID:             bk.ID(),
		Reference:             bk.Reference(),
		CRN:                   bk.CRN(),
		ArrivalDate:           bk.ArrivalDate(),
		ExpectedDepartureDate: bk.DepartureDate(),
		OccurredAt:            s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingArrived, bk.ID().String(), evt)

	result := toBookingDTO(bk, s.now())
	return &result, nil
}

// ChangeArrivalDate corrects the arrival date of an arrived booking.
func (s *BookingService) ChangeArrivalDate(ctx context.Context, bookingID uuid.UUID, arrivalDate time.Time) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.ChangeArrivalDate(arrivalDate); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	result := toBookingDTO(bk, s.now())
	return &result, nil
}

// RecordDeparture marks an arrived booking as departed.
func (s *BookingService) RecordDeparture(ctx context.Context, bookingID uuid.UUID, req DepartureRequest) (*BookingDTO, error) {
	return s.recordDeparture(ctx, bookingID, req, false)
}

// CorrectDeparture records corrected departure details against a departed
// booking.
func (s *BookingService) CorrectDeparture(ctx context.Context, bookingID uuid.UUID, req DepartureRequest) (*BookingDTO, error) {
	return s.recordDeparture(ctx, bookingID, req, true)
}

func (s *BookingService) recordDeparture(ctx context.Context, bookingID uuid.UUID, req DepartureRequest, correction bool) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkOverstay(bk.ArrivalDate(), req.DepartureDate, req.Overstay); err != nil {
		return nil, err
	}

	if correction {
		err = bk.CorrectDeparture(req.DepartureDate, req.ReasonID, req.MoveOnCategory, req.Notes)
	} else {
		err = bk.MarkDeparted(req.DepartureDate, req.ReasonID, req.MoveOnCategory, req.Notes)
	}
	if err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingDepartedEvent{
		BookingID:     bk.ID(),
		Reference:     bk.Reference(),
		CRN:           bk.CRN(),
		DepartureDate: bk.DepartureDate(),
		ReasonID:      req.ReasonID,
		OccurredAt:    s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingDeparted, bk.ID().String(), evt)

	result := toBookingDTO(bk, s.now())
	return &result, nil
}

// ExtendBooking changes the expected departure date of an arrived booking.
func (s *BookingService) ExtendBooking(ctx context.Context, bookingID uuid.UUID, req ExtensionRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkOverstay(bk.ArrivalDate(), req.NewDepartureDate, req.Overstay); err != nil {
		return nil, err
	}

	if err := bk.Extend(req.NewDepartureDate, req.Notes); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	exts := bk.Extensions()
	ext := exts[len(exts)-1]
	evt := events.BookingExtendedEvent{
		BookingID:             bk.ID(),
		Reference:             bk.Reference(),
		CRN:                   bk.CRN(),
		PreviousDepartureDate: ext.PreviousDepartureDate,
		NewDepartureDate:      ext.NewDepartureDate,
		Kind:                  string(ext.Kind()),
		OccurredAt:            s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingExtended, bk.ID().String(), evt)

	result := toBookingDTO(bk, s.now())
	return &result, nil
}

// CancelBooking cancels a provisional or confirmed booking.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID, req CancellationRequest) (*BookingDTO, error) {
	return s.recordCancellation(ctx, bookingID, req, false)
}

// CorrectCancellation records corrected cancellation details against an
// already cancelled booking.
func (s *BookingService) CorrectCancellation(ctx context.Context, bookingID uuid.UUID, req CancellationRequest) (*BookingDTO, error) {
	return s.recordCancellation(ctx, bookingID, req, true)
}

func (s *BookingService) recordCancellation(ctx context.Context, bookingID uuid.UUID, req CancellationRequest, correction bool) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if correction {
		err = bk.CorrectCancellation(req.Date, req.ReasonID, req.Notes)
	} else {
		err = bk.Cancel(req.Date, req.ReasonID, req.Notes)
	}
	if err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingCancelledEvent{
		BookingID:  bk.ID(),
		Reference:  bk.Reference(),
		CRN:        bk.CRN(),
		ReasonID:   req.ReasonID,
		OccurredAt: s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCancelled, bk.ID().String(), evt)

	result := toBookingDTO(bk, s.now())
	return &result, nil
}

// ChangeTurnaround records a new turnaround period for the booking.
func (s *BookingService) ChangeTurnaround(ctx context.Context, bookingID uuid.UUID, workingDays int) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.ChangeTurnaround(workingDays); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	result := toBookingDTO(bk, s.now())
	return &result, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk, s.now())
	return &result, nil
}

// GetBookingByReference retrieves a single booking by its reference.
func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*BookingDTO, error) {
	bk, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk, s.now())
	return &result, nil
}

// GetBookingHistory reconstructs the booking's state history, oldest first.
func (s *BookingService) GetBookingHistory(ctx context.Context, bookingID uuid.UUID) ([]HistoryEntryDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	entries := bk.History()
	dtos := make([]HistoryEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = HistoryEntryDTO{
			Status:        string(e.Snapshot.Status),
			ArrivalDate:   e.Snapshot.ArrivalDate,
			DepartureDate: e.Snapshot.DepartureDate,
			OccurredAt:    e.OccurredAt,
		}
	}
	return dtos, nil
}

// GetBookingActions returns the operations available for the booking's
// current status.
func (s *BookingService) GetBookingActions(ctx context.Context, bookingID uuid.UUID) ([]bookingDomain.Action, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return bookingDomain.AvailableActions(bk.Status(s.now()), bk.ID()), nil
}

// GetTurnarounds returns the booking's displayable turnaround windows.
func (s *BookingService) GetTurnarounds(ctx context.Context, bookingID uuid.UUID) ([]bookingDomain.TurnaroundRow, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return bk.TurnaroundRows(), nil
}

// AssessOverstay checks a proposed departure date against the maximum stay
// without mutating the booking.
func (s *BookingService) AssessOverstay(ctx context.Context, bookingID uuid.UUID, proposedDeparture time.Time) (*bookingDomain.OverstayAssessment, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	assessment := s.overstay.Assess(bk.ArrivalDate(), proposedDeparture)
	return &assessment, nil
}

// GetBedspaceBookings retrieves paginated bookings for a bedspace.
func (s *BookingService) GetBedspaceBookings(ctx context.Context, bedspaceID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByBedspaceID(ctx, bedspaceID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings, s.now()), total, page, limit)
	return &result, nil
}

// GetPersonBookings retrieves paginated bookings for a CRN.
func (s *BookingService) GetPersonBookings(ctx context.Context, crn string, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByCRN(ctx, crn, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings, s.now()), total, page, limit)
	return &result, nil
}

// ListAllBookings returns a paginated list of all bookings.
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings, s.now()), total, page, limit)
	return &result, nil
}

// GetBookingStats returns aggregate booking counts.
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

// checkOverstay gates a proposed departure date behind explicit
// authorisation when the stay would exceed the maximum.
func (s *BookingService) checkOverstay(arrivalDate, proposedDeparture time.Time, auth *bookingDomain.OverstayAuthorisation) error {
	assessment := s.overstay.Assess(arrivalDate, proposedDeparture)
	if !assessment.RequiresAuthorisation {
		return nil
	}
	if auth == nil || !auth.Authorised {
		return domain.NewFieldValidationError("departureDate", domain.CodeOverstayNotAuthorised,
			fmt.Sprintf("the proposed date is %d nights over the maximum stay and has not been authorised", assessment.NightsOverLimit))
	}
	return nil
}

func toBookingDTO(bk *bookingDomain.Booking, asOf time.Time) BookingDTO {
	return BookingDTO{
		ID:                    bk.ID(),
		Reference:             bk.Reference(),
		BedspaceID:            bk.BedspaceID(),
		PremisesID:            bk.PremisesID(),
		CRN:                   bk.CRN(),
		Status:                string(bk.Status(asOf)),
		ArrivalDate:           bk.ArrivalDate(),
		DepartureDate:         bk.DepartureDate(),
		OriginalArrivalDate:   bk.OriginalArrivalDate(),
		OriginalDepartureDate: bk.OriginalDepartureDate(),
		Arrival:               bk.Arrival(),
		Confirmation:          bk.Confirmation(),
		Departures:            bk.Departures(),
		Cancellations:         bk.Cancellations(),
		Extensions:            bk.Extensions(),
		Turnarounds:           bk.Turnarounds(),
		Notes:                 bk.Notes(),
		Version:               bk.Version(),
		CreatedAt:             bk.CreatedAt(),
		UpdatedAt:             bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking, asOf time.Time) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk, asOf)
	}
	return dtos
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
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
