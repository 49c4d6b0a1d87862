// Package messaging converts auction domain events to and from Watermill messages.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/auctionhouse/services/auction/domain/events"
)

// Metadata keys set on every auction message.
const (
	MetadataEventID        = "event_id"
	MetadataEventVersion   = "event_version"
	MetadataAuctionID      = "auction_id"
	MetadataAuctionVersion = "auction_version"
)

// NewMessage marshals ev into a message carrying the envelope as metadata.
// Trace context from ctx is injected so publishers that bypass
// EventBus.Publish (tx publishers) still propagate it.
func NewMessage(ctx context.Context, ev events.Event) (*message.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", ev.Topic(), err)
	}
	h := ev.Header()
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataEventID, h.EventID.String())
	msg.Metadata.Set(MetadataEventVersion, strconv.Itoa(h.Version))
	msg.Metadata.Set(MetadataAuctionID, h.AuctionID.String())
	msg.Metadata.Set(MetadataAuctionVersion, strconv.FormatInt(h.AuctionVersion, 10))

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}
	return msg, nil
}

// PublishAll publishes each event on its own topic.
func PublishAll(ctx context.Context, pub message.Publisher, evs []events.Event) error {
	for _, ev := range evs {
		msg, err := NewMessage(ctx, ev)
		if err != nil {
			return err
		}
		if err := pub.Publish(ev.Topic(), msg); err != nil { //nolint:contextcheck
			return fmt.Errorf("publish %s: %w", ev.Topic(), err)
		}
	}
	return nil
}

// DecodeEnvelope reads the shared envelope from any auction message payload.
func DecodeEnvelope(msg *message.Message) (events.Envelope, error) {
	var env events.Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		return events.Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
