// Package subscribers consumes auction events. Every event refreshes the
// Redis read model and relays the latest auction state to WebSocket watchers.
package subscribers

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/pkg/broadcast"
	"github.com/ghuser/auctionhouse/pkg/events"
	"github.com/ghuser/auctionhouse/pkg/logger"
	"github.com/ghuser/auctionhouse/pkg/telemetry"
	"github.com/ghuser/auctionhouse/services/auction/application/handlers"
	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
	domainevents "github.com/ghuser/auctionhouse/services/auction/domain/events"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
	"github.com/ghuser/auctionhouse/services/auction/infrastructure/messaging"
)

// Bus is the subscribing half of events.EventBus.
type Bus interface {
	Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error)
}

// AuctionReader is the slice of AuctionService the handlers need.
type AuctionReader interface {
	Load(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	RefreshCache(ctx context.Context, id uuid.UUID) error
}

// Register subscribes to every auction topic. Subscriber errors are logged
// until ctx is cancelled or the bus closes.
func Register(ctx context.Context, bus Bus, svc AuctionReader, relay broadcast.Relay, log logger.Logger) error {
	for _, topic := range domainevents.AllTopics {
		errCh, err := bus.Subscribe(ctx, topic, NewHandler(topic, svc, relay, log))
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}

		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string) {
			for err := range errCh {
				log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
				telemetry.CaptureError(err, map[string]string{"topic": topic})
			}
		}(topic)
	}

	log.Info("event subscribers registered", "topics", domainevents.AllTopics)
	return nil
}

// NewHandler returns the handler for one topic. Handlers are idempotent:
// the bus retries failures and may redeliver. The relayed frame always
// carries the current state so out-of-order delivery converges.
func NewHandler(topic string, svc AuctionReader, relay broadcast.Relay, log logger.Logger) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		env, err := messaging.DecodeEnvelope(msg)
		if err != nil {
			return events.Permanent(fmt.Errorf("decode %s event: %w", topic, err))
		}

		// Cache refresh is best-effort; log but do not fail the handler.
		if err := svc.RefreshCache(ctx, env.AuctionID); err != nil {
			log.WarnContext(ctx, "auction cache refresh failed",
				"topic", topic, "auction_id", env.AuctionID, "error", err)
		}

		if relay == nil {
			return nil
		}
		a, err := svc.Load(ctx, env.AuctionID)
		if errors.Is(err, auctiondomain.ErrAuctionNotFound) {
			log.DebugContext(ctx, "auction gone before relay", "auction_id", env.AuctionID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("load auction %s: %w", env.AuctionID, err)
		}

		payload, err := handlers.MarshalUpdate(topic, a)
		if err != nil {
			return fmt.Errorf("marshal update: %w", err)
		}
		if err := relay.Publish(ctx, env.AuctionID.String(), payload); err != nil {
			return fmt.Errorf("relay update: %w", err)
		}

		log.DebugContext(ctx, "auction update relayed",
			"topic", topic,
			"auction_id", env.AuctionID,
			"auction_version", a.Version,
		)
		return nil
	}
}
