package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/auctionhouse/pkg/app"
	"github.com/ghuser/auctionhouse/pkg/auth"
	"github.com/ghuser/auctionhouse/pkg/config"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	"github.com/ghuser/auctionhouse/pkg/logger"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
	"github.com/ghuser/auctionhouse/services/auction/domain/repositories"
	"github.com/ghuser/auctionhouse/services/auction/infrastructure/persistence/memory"
)

var productID = uuid.MustParse("0b7f5b0e-5d0c-4b8e-9a51-7c3c2a1d9e11")

type routesFixture struct {
	router http.Handler
	store  sessions.Store
}

func newRoutesFixture(t *testing.T, bidsPerMinute int) *routesFixture {
	t.Helper()
	log := logger.New(&config.Config{LogLevel: "error"})
	store := auth.NewCookieSessionStore(auth.SessionConfig{
		AuthKey:       []byte("test-auth-key-must-be-32-bytes!!"),
		EncryptionKey: []byte("test-enc-key-must-be-32-bytes!!!"),
		MaxAge:        time.Hour,
	})
	a := &app.Application{
		Config:       &config.Config{},
		Logger:       log,
		SessionStore: store,
	}
	repo := memory.NewAuctionRepository(nil, log)
	catalog := memory.NewCatalog(repositories.ProductRef{ID: productID, SellerID: "seller-1", Title: "Camera"})
	svcs := &appsvcs.Services{Auction: appsvcs.NewAuctionService(repo, catalog, log), Repo: repo}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		AuctionRoutes(r, a, svcs, httpx.NewKeyedThrottle(bidsPerMinute))
	})
	return &routesFixture{router: r, store: store}
}

// sessionCookies returns cookies carrying a session for userID.
func (f *routesFixture) sessionCookies(t *testing.T, userID string) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	session, err := f.store.New(r, "auctionhouse_session")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	session.Values["user_id"] = userID
	if err := session.Save(r, w); err != nil {
		t.Fatalf("save session: %v", err)
	}
	return w.Result().Cookies()
}

func (f *routesFixture) do(t *testing.T, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestAuctionRoutes_ReadsArePublic(t *testing.T) {
	f := newRoutesFixture(t, 10)
	for _, path := range []string{"/api/auctions", "/api/auctions/" + uuid.NewString()} {
		t.Run(path, func(t *testing.T) {
			w := f.do(t, http.MethodGet, path, "", nil)
			if w.Code == http.StatusUnauthorized {
				t.Fatalf("GET %s required auth", path)
			}
		})
	}
}

func TestAuctionRoutes_MutationsRequireSession(t *testing.T) {
	f := newRoutesFixture(t, 10)
	id := uuid.NewString()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/auctions"},
		{http.MethodPost, "/api/auctions/" + id + "/bids"},
		{http.MethodPost, "/api/auctions/" + id + "/end"},
		{http.MethodPost, "/api/auctions/" + id + "/cancel"},
		{http.MethodDelete, "/api/auctions/" + id},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if w := f.do(t, tt.method, tt.path, "{}", nil); w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestAuctionRoutes_CreateAndBidWithSession(t *testing.T) {
	f := newRoutesFixture(t, 1)
	sellerCookies := f.sessionCookies(t, "seller-1")
	bidderCookies := f.sessionCookies(t, "bidder-1")

	w := f.do(t, http.MethodPost, "/api/auctions", `{"product_id":"`+productID.String()+`","starting_price":"10"}`, sellerCookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	bidPath := "/api/auctions/" + created.ID + "/bids"
	if w := f.do(t, http.MethodPost, bidPath, `{"amount":"20"}`, bidderCookies); w.Code != http.StatusCreated {
		t.Fatalf("bid: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = f.do(t, http.MethodPost, bidPath, `{"amount":"30"}`, bidderCookies)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second bid in the same minute: expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 without Retry-After")
	}
}
