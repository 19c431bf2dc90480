package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ProvisionalBookingCreator is the slice of the booking service the
// referral consumer needs: creating a provisional booking from an accepted
// referral.
type ProvisionalBookingCreator interface {
	CreateProvisionalBooking(ctx context.Context, bedspaceID, premisesID uuid.UUID, crn string, arrivalDate, departureDate time.Time) error
}

// ReferralEventConsumer listens to referral events and creates provisional
// bookings for accepted referrals.
type ReferralEventConsumer struct {
	reader  *kafkago.Reader
	service ProvisionalBookingCreator
	logger  *zap.Logger
}

// NewReferralEventConsumer creates a new ReferralEventConsumer.
func NewReferralEventConsumer(
	brokers []string,
	groupID string,
	service ProvisionalBookingCreator,
	logger *zap.Logger,
) *ReferralEventConsumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    TopicReferralEvents,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &ReferralEventConsumer{
		reader:  reader,
		service: service,
		logger:  logger,
	}
}

// Start begins consuming referral events. This blocks until the context is
// cancelled.
func (c *ReferralEventConsumer) Start(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return context.Canceled
			}
			c.logger.Error("failed to read referral event", zap.Error(err))
			continue
		}
		if err := c.handleMessage(ctx, msg); err != nil {
			c.logger.Error("failed to handle referral event", zap.Error(err))
		}
	}
}

// Close closes the underlying Kafka reader.
func (c *ReferralEventConsumer) Close() error {
	return c.reader.Close()
}

func (c *ReferralEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from referral topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages.
	}

	switch cloudEvent.Type {
	case ReferralBookingRequested:
		return c.handleBookingRequested(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled referral event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *ReferralEventConsumer) handleBookingRequested(ctx context.Context, cloudEvent CloudEvent) error {
	var evt ReferralBookingRequestedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse ReferralBookingRequestedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data.
	}

	c.logger.Info("processing referral booking request",
		zap.String("referral_id", evt.ReferralID.String()),
		zap.String("bedspace_id", evt.BedspaceID.String()),
	)

	err := c.service.CreateProvisionalBooking(ctx, evt.BedspaceID, evt.PremisesID, evt.CRN, evt.ArrivalDate, evt.DepartureDate)
	if err != nil {
		c.logger.Error("failed to create provisional booking from referral",
			zap.String("referral_id", evt.ReferralID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("provisional booking created from referral",
		zap.String("referral_id", evt.ReferralID.String()),
	)
	return nil
}
