package broadcast

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/auctionhouse/pkg/logger"
)

// Channel naming on the wire. The room id is appended.
const (
	RedisChannelPrefix = "auction_updates:"
	NATSSubjectPrefix  = "auction.updates."
)

// DeliverFunc hands a relayed payload to the local Hub.
type DeliverFunc func(room string, payload []byte)

// Relay carries room payloads between processes.
type Relay interface {
	// Publish sends payload to every process consuming room.
	Publish(ctx context.Context, room string, payload []byte) error
	// Consume delivers payloads from other processes until ctx is cancelled.
	Consume(ctx context.Context, deliver DeliverFunc) error
	Ping(ctx context.Context) error
	Close() error
}

// LocalRelay delivers in-process. Use it when the producer and the Hub share a process.
type LocalRelay struct {
	mu      sync.RWMutex
	deliver DeliverFunc
}

// NewLocalRelay returns a relay that calls the consuming DeliverFunc directly.
func NewLocalRelay() *LocalRelay {
	return &LocalRelay{}
}

func (r *LocalRelay) Publish(_ context.Context, room string, payload []byte) error {
	r.mu.RLock()
	deliver := r.deliver
	r.mu.RUnlock()
	if deliver != nil {
		deliver(room, payload)
	}
	return nil
}

func (r *LocalRelay) Consume(ctx context.Context, deliver DeliverFunc) error {
	r.mu.Lock()
	r.deliver = deliver
	r.mu.Unlock()

	<-ctx.Done()

	r.mu.Lock()
	r.deliver = nil
	r.mu.Unlock()
	return nil
}

func (r *LocalRelay) Ping(context.Context) error { return nil }
func (r *LocalRelay) Close() error               { return nil }

// RedisRelay uses Redis Pub/Sub channels "auction_updates:{room}".
type RedisRelay struct {
	client *redis.Client
	log    logger.Logger
}

// NewRedisRelay returns a relay over the given client.
func NewRedisRelay(client *redis.Client, log logger.Logger) *RedisRelay {
	return &RedisRelay{client: client, log: log}
}

func (r *RedisRelay) Publish(ctx context.Context, room string, payload []byte) error {
	if err := r.client.Publish(ctx, RedisChannelPrefix+room, payload).Err(); err != nil {
		return fmt.Errorf("broadcast: redis publish: %w", err)
	}
	return nil
}

func (r *RedisRelay) Consume(ctx context.Context, deliver DeliverFunc) error {
	pubsub := r.client.PSubscribe(ctx, RedisChannelPrefix+"*")
	defer pubsub.Close() //nolint:errcheck

	// Wait for the subscription to be confirmed before reporting readiness.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("broadcast: redis subscribe: %w", err)
	}
	r.log.InfoContext(ctx, "broadcast: consuming redis channel", "pattern", RedisChannelPrefix+"*")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			room, ok := strings.CutPrefix(msg.Channel, RedisChannelPrefix)
			if !ok || room == "" {
				continue
			}
			deliver(room, []byte(msg.Payload))
		}
	}
}

func (r *RedisRelay) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close is a no-op; the Redis client is owned by the caller.
func (r *RedisRelay) Close() error { return nil }

// NATSRelay uses core NATS subjects "auction.updates.{room}".
type NATSRelay struct {
	conn *nats.Conn
	log  logger.Logger
}

// NewNATSRelay connects to url.
func NewNATSRelay(url string, name string, log logger.Logger) (*NATSRelay, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("broadcast: nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("broadcast: nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("broadcast: nats connect: %w", err)
	}
	return &NATSRelay{conn: conn, log: log}, nil
}

func (r *NATSRelay) Publish(_ context.Context, room string, payload []byte) error {
	if err := r.conn.Publish(NATSSubjectPrefix+room, payload); err != nil {
		return fmt.Errorf("broadcast: nats publish: %w", err)
	}
	return nil
}

func (r *NATSRelay) Consume(ctx context.Context, deliver DeliverFunc) error {
	sub, err := r.conn.Subscribe(NATSSubjectPrefix+"*", func(msg *nats.Msg) {
		room := strings.TrimPrefix(msg.Subject, NATSSubjectPrefix)
		if room == "" {
			return
		}
		deliver(room, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("broadcast: nats subscribe: %w", err)
	}
	defer sub.Unsubscribe() //nolint:errcheck
	r.log.InfoContext(ctx, "broadcast: consuming nats subject", "subject", NATSSubjectPrefix+"*")

	<-ctx.Done()
	return nil
}

func (r *NATSRelay) Ping(context.Context) error {
	if !r.conn.IsConnected() {
		return fmt.Errorf("broadcast: nats status %s", r.conn.Status())
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (r *NATSRelay) Close() error {
	if err := r.conn.Drain(); err != nil {
		return fmt.Errorf("broadcast: nats drain: %w", err)
	}
	return nil
}
