package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/auctionhouse/pkg/app"
	"github.com/ghuser/auctionhouse/pkg/auth"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	"github.com/ghuser/auctionhouse/services/auction/application/handlers"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
)

// AuctionRoutes registers auction endpoints on the provided chi router.
// svcs must be the process-wide container so memory-mode data is shared with
// the embedded worker. throttle limits bids per authenticated user.
func AuctionRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services, throttle *httpx.KeyedThrottle) {
	requireAuth := auth.RequireAuth(a.SessionStore, a.Logger)

	r.Route("/auctions", func(r chi.Router) {
		// WebSocket streams outlive the handler deadline.
		r.Get("/{id}/watch", handlers.NewWatchAuctionHandler(svcs, a.Hub, a.Logger).Execute)

		r.Group(func(r chi.Router) {
			r.Use(httpx.Timeout())

			r.Get("/", handlers.NewListAuctionsHandler(svcs).Execute)
			r.Get("/{id}", handlers.NewGetAuctionHandler(svcs).Execute)
			r.Get("/{id}/bids", handlers.NewListBidsHandler(svcs).Execute)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)

				r.Post("/", handlers.NewPostAuctionHandler(svcs).Execute)
				r.With(throttle.Middleware(bidderKey)).
					Post("/{id}/bids", handlers.NewPostBidHandler(svcs).Execute)
				r.Post("/{id}/end", handlers.NewPostEndHandler(svcs).Execute)
				r.Post("/{id}/cancel", handlers.NewPostCancelHandler(svcs).Execute)
				r.Delete("/{id}", handlers.NewDeleteAuctionHandler(svcs).Execute)
			})
		})
	})
}

func bidderKey(r *http.Request) string {
	userID, _ := auth.UserIDFromCtx(r.Context())
	return userID
}
