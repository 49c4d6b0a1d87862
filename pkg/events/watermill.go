// Package events is the Watermill-based event bus auction events travel on.
//
// The durable bus stores messages in PostgreSQL tables through watermill-sql
// and, in forwarder mode, routes them through an outbox topic so a message
// published inside a business transaction is delivered only if it commits.
// NewInMemoryEventBus swaps in a GoChannel for single-process deployments.
//
// All SQL subscribers of one service share the consumer group
// "<service>-consumer", so each message is handled by one instance.
//
// Handlers should be idempotent. A failing handler is retried with
// exponential backoff (1s, 2s, 4s) and then Nacked for redelivery. Wrap
// the error with Permanent to skip both: the message is Acked and the
// error reported, since redelivering a payload that cannot be processed
// only blocks the topic.
//
// The OTel trace context rides in message metadata, so a subscriber span
// continues the publisher's trace.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/auctionhouse/pkg/config"
	"github.com/ghuser/auctionhouse/pkg/logger"
)

const (
	maxRetries       = 3
	retryBaseDelay   = time.Second
	shutdownTimeout  = 30 * time.Second
	errChanSize      = 100
	memoryBufferSize = 256

	forwarderTopic = "_forwarder_queue"
	forwarderGroup = "forwarder-consumer"
)

// ErrNoTransactions is returned by NewTxPublisher on a bus without a SQL transport.
var ErrNoTransactions = errors.New("events: bus has no SQL transport")

type permanentError struct{ err error }

func (e *permanentError) Error() string { return "permanent: " + e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Handler processes one message. ctx carries the publisher's trace.
type Handler func(context.Context, *message.Message) error

// EventBus publishes and subscribes to auction topics.
type EventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	db         *sql.DB // nil for the in-memory bus
	wlog       watermill.LoggerAdapter
	log        logger.Logger

	useForwarder bool
	fwd          *forwarder.Forwarder

	wg sync.WaitGroup
}

// NewEventBus opens cfg.DatabaseURL and publishes straight to the topic
// tables. Schema tables are created on first use.
func NewEventBus(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newSQLBus(cfg, log, false)
}

// NewEventBusWithForwarder is NewEventBus with publishes routed through the
// durable forwarder queue. Call StartForwarder to begin delivery.
func NewEventBusWithForwarder(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newSQLBus(cfg, log, true)
}

func newSQLBus(cfg *config.Config, log logger.Logger, useForwarder bool) (*EventBus, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}
	bus := &EventBus{
		db:           db,
		wlog:         &slogAdapter{log: log},
		log:          log,
		useForwarder: useForwarder,
	}

	pub, err := bus.sqlPublisher()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	bus.publisher = bus.wrapForwarder(pub)

	sub, err := bus.sqlSubscriber(cfg.ServiceName+"-consumer", cfg.EventPollInterval)
	if err != nil {
		_ = pub.Close()
		_ = db.Close()
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}
	bus.subscriber = sub

	return bus, nil
}

// NewInMemoryEventBus returns a GoChannel bus. Every subscriber sees every
// message and nothing survives a restart. NewTxPublisher is unavailable.
func NewInMemoryEventBus(log logger.Logger) *EventBus {
	wlog := &slogAdapter{log: log}
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: memoryBufferSize}, wlog)
	return &EventBus{
		publisher:  ch,
		subscriber: ch,
		wlog:       wlog,
		log:        log,
	}
}

func (q *EventBus) sqlPublisher() (*watermillsql.Publisher, error) {
	return watermillsql.NewPublisher(q.db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: true,
	}, q.wlog)
}

func (q *EventBus) sqlSubscriber(group string, poll time.Duration) (*watermillsql.Subscriber, error) {
	return watermillsql.NewSubscriber(q.db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
		PollInterval:     poll,
	}, q.wlog)
}

// wrapForwarder envelopes messages for the forwarder queue in forwarder mode.
func (q *EventBus) wrapForwarder(pub message.Publisher) message.Publisher {
	if !q.useForwarder {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
}

// Transactional reports whether NewTxPublisher is supported.
func (q *EventBus) Transactional() bool {
	return q.db != nil
}

// StartForwarder runs the daemon that moves messages from the forwarder queue
// to their target topics, and returns once it is running. It may be called
// once, on a bus from NewEventBusWithForwarder.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	switch {
	case !q.useForwarder:
		return errors.New("events: StartForwarder called on non-forwarder EventBus")
	case q.fwd != nil:
		return errors.New("events: forwarder already started")
	}

	queue, err := q.sqlSubscriber(forwarderGroup, 0)
	if err != nil {
		return fmt.Errorf("events: new forwarder subscriber: %w", err)
	}
	target, err := q.sqlPublisher()
	if err != nil {
		_ = queue.Close()
		return fmt.Errorf("events: new forwarder target publisher: %w", err)
	}
	fwd, err := forwarder.NewForwarder(queue, target, q.wlog, forwarder.Config{ForwarderTopic: forwarderTopic})
	if err != nil {
		_ = target.Close()
		_ = queue.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.log.InfoContext(ctx, "events: forwarder started")
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped with error", "error", err)
			return
		}
		q.log.InfoContext(ctx, "events: forwarder stopped")
	}()

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: context cancelled waiting for forwarder: %w", ctx.Err())
	}
}

// NewTxPublisher returns a Publisher that writes inside tx, so the auction
// row and its events commit or roll back together. Tables already exist
// once the bus is up, so schema initialization is off.
func (q *EventBus) NewTxPublisher(tx *sql.Tx) (message.Publisher, error) {
	if q.db == nil {
		return nil, ErrNoTransactions
	}
	pub, err := watermillsql.NewPublisher(tx, watermillsql.PublisherConfig{
		SchemaAdapter: watermillsql.DefaultPostgreSQLSchema{},
	}, q.wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new tx publisher: %w", err)
	}
	return q.wrapForwarder(pub), nil
}

// Publish sends msgs to topic with the trace context of ctx in their metadata.
func (q *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, msg := range msgs {
		for k, v := range carrier {
			msg.Metadata.Set(k, v)
		}
	}
	if err := q.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe runs handler for every message on topic until ctx is cancelled
// or the bus closes. Errors that outlive the retries arrive on the returned
// channel, which callers must drain:
//
//	errCh, err := bus.Subscribe(ctx, topic, handler)
//	go func() { for err := range errCh { log.ErrorContext(ctx, "subscriber error", "error", err) } }()
//
// Close waits for in-flight handlers.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error) {
	msgs, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errChanSize)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errCh)
		for msg := range msgs {
			q.handle(ctx, topic, msg, handler, errCh)
		}
	}()
	return errCh, nil
}

func (q *EventBus) handle(ctx context.Context, topic string, msg *message.Message, handler Handler, errCh chan<- error) {
	msgCtx := otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(msg.Metadata))
	log := q.log.With("topic", topic, "message_id", msg.UUID)

	err := retryWithBackoff(msgCtx, msg, handler, maxRetries, retryBaseDelay, log)
	switch {
	case err == nil:
		msg.Ack()
		return
	case IsPermanent(err):
		msg.Ack()
	default:
		msg.Nack()
	}

	select {
	case errCh <- err:
	default:
		log.ErrorContext(msgCtx, "events: error channel full, dropping error", "error", err)
	}
}

// retryWithBackoff calls handler up to maxRetries times, doubling the delay
// between attempts. A Permanent error ends the loop at once.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler Handler,
	maxRetries int,
	baseDelay time.Duration,
	log logger.Logger,
) error {
	delay := baseDelay
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if IsPermanent(err) {
			return fmt.Errorf("events: handler rejected message: %w", err)
		}
		if attempt == maxRetries {
			break
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"attempt", attempt,
			"max_retries", maxRetries,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("events: handler failed after %d retries: %w", maxRetries, err)
}

// Ping checks the database behind the SQL transport. The in-memory bus is
// always healthy.
func (q *EventBus) Ping(ctx context.Context) error {
	if q.db == nil {
		return nil
	}
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber and forwarder, waits up to 30s for in-flight
// handlers, then closes the publisher and database.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		q.log.Error("events: timed out waiting for in-flight handlers to complete")
	}

	if err := q.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	if q.db == nil {
		return nil
	}
	return q.db.Close()
}

// slogAdapter bridges logger.Logger to watermill.LoggerAdapter.
type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}

// Trace is Watermill's per-message chatter; it maps to debug.
func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
