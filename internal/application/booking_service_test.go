package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/havenpath/service-placement/internal/domain"
	bookingDomain "github.com/havenpath/service-placement/internal/domain/booking"
	"github.com/havenpath/service-placement/internal/events"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fakeBookingRepo is an in-memory booking.Repository.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByReference(_ context.Context, reference string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.Reference() == reference {
			return bk, nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", reference)
}

func (r *fakeBookingRepo) FindByBedspaceID(_ context.Context, bedspaceID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.BedspaceID() == bedspaceID {
			out = append(out, bk)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindByCRN(_ context.Context, crn string, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.CRN() == crn {
			out = append(out, bk)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*bookingDomain.Booking, 0, len(r.bookings))
	for _, bk := range r.bookings {
		out = append(out, bk)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	now := time.Now().UTC()
	for _, bk := range r.bookings {
		counts[string(bk.Status(now))]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID()]; !ok {
		return domain.NewNotFoundError("Booking", b.ID().String())
	}
	r.bookings[b.ID()] = b
	return nil
}

// fakePublisher records published events instead of writing to kafka.
type fakePublisher struct {
	mu     sync.Mutex
	events []events.CloudEvent
	topics []string
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, _ string, event events.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	p.topics = append(p.topics, topic)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func newBookingService(repo *fakeBookingRepo, pub *fakePublisher, authRequired bool) *BookingService {
	svc := NewBookingService(
		repo,
		bookingDomain.OverstayPolicy{AuthorisationRequired: authRequired},
		pub,
		zap.NewNop(),
	)
	// Pin the clock so status projections over the fixed test dates never
	// drift with the wall clock.
	svc.now = func() time.Time { return date(2026, time.February, 1) }
	return svc
}

func createTestBooking(t *testing.T, svc *BookingService) *BookingDTO {
	t.Helper()
	dto, err := svc.CreateBooking(context.Background(), CreateBookingRequest{
		BedspaceID:    uuid.New(),
		PremisesID:    uuid.New(),
		CRN:           "X320741",
		ArrivalDate:   date(2026, time.January, 8),
		DepartureDate: date(2026, time.April, 2),
	})
	require.NoError(t, err)
	return dto
}

func arriveTestBooking(t *testing.T, svc *BookingService, id uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.ConfirmBooking(ctx, id, "")
	require.NoError(t, err)
	_, err = svc.RecordArrival(ctx, id, ArrivalRequest{
		ArrivalDate:           date(2026, time.January, 8),
		ExpectedDepartureDate: date(2026, time.April, 2),
	})
	require.NoError(t, err)
}

func TestCreateBooking_PublishesProvisionalEvent(t *testing.T) {
	repo := newFakeBookingRepo()
	pub := &fakePublisher{}
	svc := newBookingService(repo, pub, true)

	dto := createTestBooking(t, svc)

	assert.Equal(t, string(bookingDomain.StatusProvisional), dto.Status)
	assert.Equal(t, []string{events.BookingProvisional}, pub.types())
	assert.Equal(t, []string{events.TopicBookingEvents}, pub.topics)

	stored, err := repo.FindByID(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.Reference, stored.Reference())
}

func TestCreateBooking_PublishFailureDoesNotFail(t *testing.T) {
	repo := newFakeBookingRepo()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newBookingService(repo, pub, true)

	dto := createTestBooking(t, svc)

	_, err := repo.FindByID(context.Background(), dto.ID)
	assert.NoError(t, err, "the booking is saved even when publishing fails")
}

func TestLifecycleFlow(t *testing.T) {
	repo := newFakeBookingRepo()
	pub := &fakePublisher{}
	svc := newBookingService(repo, pub, true)
	ctx := context.Background()

	dto := createTestBooking(t, svc)
	arriveTestBooking(t, svc, dto.ID)

	result, err := svc.RecordDeparture(ctx, dto.ID, DepartureRequest{
		DepartureDate: date(2026, time.April, 2),
		ReasonID:      "reason-a",
	})
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusDeparted), result.Status)

	assert.Equal(t, []string{
		events.BookingProvisional,
		events.BookingConfirmed,
		events.BookingArrived,
		events.BookingDeparted,
	}, pub.types())
}

func TestBookingStatus_ClosesAfterTurnaround(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newBookingService(repo, &fakePublisher{}, true)
	ctx := context.Background()

	dto := createTestBooking(t, svc)
	arriveTestBooking(t, svc, dto.ID)
	_, err := svc.RecordDeparture(ctx, dto.ID, DepartureRequest{
		DepartureDate: date(2026, time.March, 5),
		ReasonID:      "reason-a",
	})
	require.NoError(t, err)

	got, err := svc.GetBooking(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusDeparted), got.Status)

	// With no turnaround the window ends on the departure date; any later
	// reference date projects closed.
	svc.now = func() time.Time { return date(2026, time.March, 6) }
	got, err = svc.GetBooking(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusClosed), got.Status)
}

func TestRecordDeparture_OverstayGate(t *testing.T) {
	repo := newFakeBookingRepo()
	pub := &fakePublisher{}
	svc := newBookingService(repo, pub, true)
	ctx := context.Background()

	dto := createTestBooking(t, svc)
	arriveTestBooking(t, svc, dto.ID)

	over := date(2026, time.April, 3) // 85 nights

	// Without authorisation the departure is refused.
	_, err := svc.RecordDeparture(ctx, dto.ID, DepartureRequest{DepartureDate: over, ReasonID: "reason-a"})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, domain.CodeOverstayNotAuthorised, ve.Code)

	// Declined authorisation is still a refusal.
	_, err = svc.RecordDeparture(ctx, dto.ID, DepartureRequest{
		DepartureDate: over,
		ReasonID:      "reason-a",
		Overstay:      &bookingDomain.OverstayAuthorisation{Authorised: false},
	})
	require.True(t, errors.As(err, &ve))

	result, err := svc.RecordDeparture(ctx, dto.ID, DepartureRequest{
		DepartureDate: over,
		ReasonID:      "reason-a",
		Overstay:      &bookingDomain.OverstayAuthorisation{Authorised: true, Reason: "move-on delayed"},
	})
	require.NoError(t, err)
	assert.Equal(t, over, result.DepartureDate)
}

func TestRecordDeparture_AtLimitNeedsNoAuthorisation(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newBookingService(repo, &fakePublisher{}, true)

	dto := createTestBooking(t, svc)
	arriveTestBooking(t, svc, dto.ID)

	// Exactly 84 nights.
	_, err := svc.RecordDeparture(context.Background(), dto.ID, DepartureRequest{
		DepartureDate: date(2026, time.April, 2),
		ReasonID:      "reason-a",
	})
	assert.NoError(t, err)
}

func TestExtendBooking_OverstayGate(t *testing.T) {
	repo := newFakeBookingRepo()
	pub := &fakePublisher{}
	svc := newBookingService(repo, pub, true)
	ctx := context.Background()

	dto := createTestBooking(t, svc)
	arriveTestBooking(t, svc, dto.ID)

	_, err := svc.ExtendBooking(ctx, dto.ID, ExtensionRequest{NewDepartureDate: date(2026, time.May, 1)})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, domain.CodeOverstayNotAuthorised, ve.Code)

	result, err := svc.ExtendBooking(ctx, dto.ID, ExtensionRequest{
		NewDepartureDate: date(2026, time.May, 1),
		Overstay:         &bookingDomain.OverstayAuthorisation{Authorised: true},
	})
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.May, 1), result.DepartureDate)

	last := pub.types()[len(pub.types())-1]
	assert.Equal(t, events.BookingExtended, last)
}

func TestExtendBooking_GateDisabledByConfig(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newBookingService(repo, &fakePublisher{}, false)

	dto := createTestBooking(t, svc)
	arriveTestBooking(t, svc, dto.ID)

	_, err := svc.ExtendBooking(context.Background(), dto.ID, ExtensionRequest{
		NewDepartureDate: date(2026, time.December, 1),
	})
	assert.NoError(t, err)
}

func TestCancelBooking(t *testing.T) {
	repo := newFakeBookingRepo()
	pub := &fakePublisher{}
	svc := newBookingService(repo, pub, true)
	ctx := context.Background()

	dto := createTestBooking(t, svc)

	result, err := svc.CancelBooking(ctx, dto.ID, CancellationRequest{
		Date:     date(2026, time.January, 8),
		ReasonID: "no-longer-needed",
	})
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusCancelled), result.Status)

	// Correction keeps the status and appends a record.
	result, err = svc.CorrectCancellation(ctx, dto.ID, CancellationRequest{
		Date:     date(2026, time.January, 9),
		ReasonID: "duplicate",
	})
	require.NoError(t, err)
	assert.Len(t, result.Cancellations, 2)
}

func TestCreateProvisionalBooking(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newBookingService(repo, &fakePublisher{}, true)

	// The referral consumer depends on this method.
	var _ events.ProvisionalBookingCreator = svc

	err := svc.CreateProvisionalBooking(context.Background(),
		uuid.New(), uuid.New(), "X104835",
		date(2026, time.July, 1), date(2026, time.August, 1))
	require.NoError(t, err)

	bookings, total, err := repo.FindByCRN(context.Background(), "X104835", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, bookingDomain.StatusProvisional, bookings[0].Status(time.Now().UTC()))
}

func TestGetBookingHistoryAndActions(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newBookingService(repo, &fakePublisher{}, true)
	ctx := context.Background()

	dto := createTestBooking(t, svc)
	arriveTestBooking(t, svc, dto.ID)

	history, err := svc.GetBookingHistory(ctx, dto.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, string(bookingDomain.StatusProvisional), history[0].Status)
	assert.Equal(t, string(bookingDomain.StatusArrived), history[2].Status)

	actions, err := svc.GetBookingActions(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mark as departed", actions[0].Text)
}

func TestGetBookingStats(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newBookingService(repo, &fakePublisher{}, true)
	ctx := context.Background()

	first := createTestBooking(t, svc)
	createTestBooking(t, svc)
	_, err := svc.ConfirmBooking(ctx, first.ID, "")
	require.NoError(t, err)

	stats, err := svc.GetBookingStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.ByStatus[string(bookingDomain.StatusProvisional)])
	assert.Equal(t, int64(1), stats.ByStatus[string(bookingDomain.StatusConfirmed)])
}

func TestGetBooking_NotFound(t *testing.T) {
	svc := newBookingService(newFakeBookingRepo(), &fakePublisher{}, true)

	_, err := svc.GetBooking(context.Background(), uuid.New())
	assert.True(t, domain.IsNotFound(err))
}
