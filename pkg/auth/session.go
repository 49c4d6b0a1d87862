// Package auth provides authentication and session management utilities.
//
// Session keys should be 32 or 64 bytes for HMAC authentication,
// and 16, 24, or 32 bytes for AES encryption. Production deployments
// must use cryptographically random keys generated with:
//
//	openssl rand -base64 32
package auth

import (
	"bytes"
	"context"
	"encoding/base32"
	"encoding/gob"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/auctionhouse/pkg/config"
)

const (
	sessionKeyPrefix = "auctionhouse:session:"
	defaultMaxAge    = 7 * 24 * time.Hour
)

// SessionConfig holds the cookie keys and lifetime shared by both stores.
type SessionConfig struct {
	AuthKey       []byte
	EncryptionKey []byte
	MaxAge        time.Duration
	// Secure restricts the cookie to HTTPS.
	Secure bool
}

// SessionConfigFrom reads session settings from cfg. Cookies are Secure in
// production only so localhost development works over plain HTTP.
func SessionConfigFrom(cfg *config.Config) SessionConfig {
	return SessionConfig{
		AuthKey:       []byte(cfg.SessionAuthKey),
		EncryptionKey: []byte(cfg.SessionEncryptionKey),
		MaxAge:        cfg.SessionMaxAge,
		Secure:        cfg.Environment == config.EnvProduction,
	}
}

func (c SessionConfig) cookieOptions() *sessions.Options {
	maxAge := c.MaxAge
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	return &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// RedisStore is a sessions.Store that keeps session values in Redis; only an
// encrypted session ID travels in the cookie.
//
// Keys are "auctionhouse:session:<id>" with a TTL of MaxAge. Reading a session
// slides its TTL forward, so a bidder active in a long auction stays signed in.
// Values are gob-encoded; register custom types via gob.Register before use.
type RedisStore struct {
	client  *redis.Client
	codecs  []securecookie.Codec
	options *sessions.Options
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client *redis.Client, cfg SessionConfig) *RedisStore {
	return &RedisStore{
		client:  client,
		codecs:  securecookie.CodecsFromPairs(cfg.AuthKey, cfg.EncryptionKey),
		options: cfg.cookieOptions(),
	}
}

// NewCookieSessionStore returns a cookie-only store with the same cookie
// options as the Redis store. Used when no Redis is configured.
func NewCookieSessionStore(cfg SessionConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore(cfg.AuthKey, cfg.EncryptionKey)
	store.Options = cfg.cookieOptions()
	store.MaxAge(store.Options.MaxAge)
	return store
}

// Get returns the request-cached session for name.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie. A missing, tampered or
// expired cookie yields a fresh session and no error.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return session, nil
	}

	session.ID = id
	if err := s.load(r.Context(), session); err != nil {
		return session, nil
	}
	session.IsNew = false
	return session, nil
}

// Save persists the session and writes the encrypted ID cookie.
// MaxAge < 0 deletes both.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			_ = s.client.Del(r.Context(), sessionKeyPrefix+session.ID).Err()
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = strings.TrimRight(
			base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
			"=",
		)
	}

	if err := s.save(r.Context(), session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *RedisStore) ttl(session *sessions.Session) time.Duration {
	return time.Duration(session.Options.MaxAge) * time.Second
}

func (s *RedisStore) save(ctx context.Context, session *sessions.Session) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(session.Values); err != nil {
		return fmt.Errorf("encode session values: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, buf.Bytes(), s.ttl(session)).Err(); err != nil {
		return fmt.Errorf("set session in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, session *sessions.Session) error {
	data, err := s.client.GetEx(ctx, sessionKeyPrefix+session.ID, s.ttl(session)).Bytes()
	if err != nil {
		return fmt.Errorf("get session from redis: %w", err)
	}
	return gob.NewDecoder(bytes.NewBuffer(data)).Decode(&session.Values)
}
