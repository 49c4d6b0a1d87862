package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// AuctionCacheTTL is the time-to-live for cached auctions.
	AuctionCacheTTL = 24 * time.Hour

	auctionCacheKeyPrefix = "auction"
)

// setIfNewer replaces the hash only when the incoming version is greater than
// the stored one, so an event processed late never overwrites a newer snapshot.
var setIfNewer = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'version')
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
redis.call('EXPIRE', KEYS[1], ARGV[2])
return 1
`)

// CachedBid is one entry of the cached bid history.
type CachedBid struct {
	ID       uuid.UUID `json:"id"`
	BidderID string    `json:"bidder_id"`
	Amount   string    `json:"amount"`
	Time     time.Time `json:"time"`
}

// CachedAuction is the denormalized read model stored in Redis as a hash.
// Money fields are decimal strings; empty optional prices mean unset.
type CachedAuction struct {
	ID                uuid.UUID
	ProductID         uuid.UUID
	SellerID          string
	Status            string
	StartTime         time.Time
	EndTime           time.Time
	StartingPrice     string
	CurrentPrice      string
	MinBidIncrement   string
	ReservePrice      string
	BuyNowPrice       string
	WinnerID          string
	AutoExtendMinutes int
	IsExtended        bool
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Bids              []CachedBid
}

// AuctionCache provides version-guarded read/write operations for auction entries.
// Key format: "auction:{auctionID}"
type AuctionCache struct {
	client *RedisClient
}

// NewAuctionCache creates a new AuctionCache backed by the given RedisClient.
func NewAuctionCache(r *RedisClient) *AuctionCache {
	return &AuctionCache{client: r}
}

// Get retrieves a cached auction.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *AuctionCache) Get(ctx context.Context, id uuid.UUID) (*CachedAuction, error) {
	vals, err := c.client.Client().HGetAll(ctx, auctionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil // key not found
	}
	return fromHash(vals)
}

// Set stores the snapshot unless the cache already holds the same or a newer version.
// It reports whether the entry was written.
func (c *AuctionCache) Set(ctx context.Context, a *CachedAuction) (bool, error) {
	fields, err := toHash(a)
	if err != nil {
		return false, err
	}
	args := make([]any, 0, len(fields)+2)
	args = append(args, a.Version, int(AuctionCacheTTL.Seconds()))
	args = append(args, fields...)

	written, err := setIfNewer.Run(ctx, c.client.Client(), []string{auctionKey(a.ID)}, args...).Int()
	if err != nil {
		return false, fmt.Errorf("cache set: %w", err)
	}
	return written == 1, nil
}

// Delete removes a cached auction.
func (c *AuctionCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Client().Del(ctx, auctionKey(id)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// auctionKey builds the Redis key: "auction:{auctionID}"
func auctionKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", auctionCacheKeyPrefix, id)
}

func toHash(a *CachedAuction) ([]any, error) {
	bids, err := json.Marshal(a.Bids)
	if err != nil {
		return nil, fmt.Errorf("cache marshal bids: %w", err)
	}
	return []any{
		"id", a.ID.String(),
		"product_id", a.ProductID.String(),
		"seller_id", a.SellerID,
		"status", a.Status,
		"start_time", a.StartTime.UTC().Format(time.RFC3339Nano),
		"end_time", a.EndTime.UTC().Format(time.RFC3339Nano),
		"starting_price", a.StartingPrice,
		"current_price", a.CurrentPrice,
		"min_bid_increment", a.MinBidIncrement,
		"reserve_price", a.ReservePrice,
		"buy_now_price", a.BuyNowPrice,
		"winner_id", a.WinnerID,
		"auto_extend_minutes", strconv.Itoa(a.AutoExtendMinutes),
		"is_extended", strconv.FormatBool(a.IsExtended),
		"version", strconv.FormatInt(a.Version, 10),
		"created_at", a.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at", a.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"bids", string(bids),
	}, nil
}

func fromHash(vals map[string]string) (*CachedAuction, error) {
	out := &CachedAuction{
		SellerID:        vals["seller_id"],
		Status:          vals["status"],
		StartingPrice:   vals["starting_price"],
		CurrentPrice:    vals["current_price"],
		MinBidIncrement: vals["min_bid_increment"],
		ReservePrice:    vals["reserve_price"],
		BuyNowPrice:     vals["buy_now_price"],
		WinnerID:        vals["winner_id"],
	}

	var err error
	if out.ID, err = uuid.Parse(vals["id"]); err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	if out.ProductID, err = uuid.Parse(vals["product_id"]); err != nil {
		return nil, fmt.Errorf("cache parse product_id: %w", err)
	}
	for field, dst := range map[string]*time.Time{
		"start_time": &out.StartTime,
		"end_time":   &out.EndTime,
		"created_at": &out.CreatedAt,
		"updated_at": &out.UpdatedAt,
	} {
		if *dst, err = time.Parse(time.RFC3339Nano, vals[field]); err != nil {
			return nil, fmt.Errorf("cache parse %s: %w", field, err)
		}
	}
	if out.AutoExtendMinutes, err = strconv.Atoi(vals["auto_extend_minutes"]); err != nil {
		return nil, fmt.Errorf("cache parse auto_extend_minutes: %w", err)
	}
	if out.IsExtended, err = strconv.ParseBool(vals["is_extended"]); err != nil {
		return nil, fmt.Errorf("cache parse is_extended: %w", err)
	}
	if out.Version, err = strconv.ParseInt(vals["version"], 10, 64); err != nil {
		return nil, fmt.Errorf("cache parse version: %w", err)
	}
	if err := json.Unmarshal([]byte(vals["bids"]), &out.Bids); err != nil {
		return nil, fmt.Errorf("cache parse bids: %w", err)
	}
	return out, nil
}
