package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Integration test: skipped unless REDIS_URL is set.
func TestRedisStore_RoundTripAndSlidingTTL(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	store := NewSessionStore(client, SessionConfig{
		AuthKey:       []byte("test-auth-key-must-be-32-bytes!!"),
		EncryptionKey: []byte("test-enc-key-must-be-32-bytes!!!"),
		MaxAge:        time.Minute,
	})

	req := httptest.NewRequest(http.MethodPost, "/login", http.NoBody)
	sess, err := store.New(req, sessionName)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	sess.Values[sessionUserIDKey] = "bidder-1"
	w := httptest.NewRecorder()
	if err := store.Save(req, w, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	key := sessionKeyPrefix + sess.ID
	t.Cleanup(func() { _ = client.Del(context.Background(), key).Err() })

	// Shorten the TTL so the slide on read is observable.
	if err := client.Expire(context.Background(), key, 5*time.Second).Err(); err != nil {
		t.Fatalf("expire: %v", err)
	}

	next := httptest.NewRequest(http.MethodGet, "/api/auctions", http.NoBody)
	for _, c := range w.Result().Cookies() {
		next.AddCookie(c)
	}
	loaded, err := store.New(next, sessionName)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.IsNew || loaded.Values[sessionUserIDKey] != "bidder-1" {
		t.Fatalf("expected stored session, got new=%v values=%v", loaded.IsNew, loaded.Values)
	}
	ttl, err := client.TTL(context.Background(), key).Result()
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 5*time.Second {
		t.Errorf("ttl %v was not slid forward", ttl)
	}
}
