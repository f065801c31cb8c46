// Package httpapi is the REST binding of the engine. Caller identity comes
// from the X-User-ID header set by the upstream auth gateway.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oggyb/vibeu-engine/internal/app"
	"github.com/oggyb/vibeu-engine/internal/service/discovery"
	"github.com/oggyb/vibeu-engine/internal/service/social"
)

// Handler serves the /v1 API.
type Handler struct {
	appCtx    *app.AppContext
	discovery *discovery.Service
	social    *social.Service
}

// NewRouter builds the chi router with middleware, health and metrics.
func NewRouter(appCtx *app.AppContext, disc *discovery.Service, soc *social.Service) http.Handler {
	h := &Handler{appCtx: appCtx, discovery: disc, social: soc}
	t := newThrottle(appCtx.Config.Engine.InboundRPS, appCtx.Config.Engine.InboundBurst)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(appCtx.Logger))

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(requireCaller, t.middleware)

		r.Get("/discover", h.feed)
		r.Get("/discover/trending", h.trending)
		r.Get("/discover/spotlight", h.spotlight)
		r.Get("/users/{id}", h.profile)

		r.Post("/likes", h.like)
		r.Get("/likes/received", h.receivedLikes)

		r.Post("/requests", h.sendRequest)
		r.Get("/requests/received", h.receivedRequests)
		r.Get("/requests/sent", h.sentRequests)
		r.Post("/requests/{id}/accept", h.acceptRequest)
		r.Put("/requests/{id}/accept", h.acceptRequest)
		r.Post("/requests/{id}/reject", h.rejectRequest)
		r.Post("/requests/{id}/cancel", h.cancelRequest)

		r.Get("/friends", h.friends)
		r.Delete("/friends/{friendshipID}", h.removeFriendship)
		r.Delete("/friends/users/{userID}", h.removeFriendshipByUser)

		r.Post("/favorites", h.addFavorite)
		r.Get("/favorites", h.favorites)
		r.Delete("/favorites/{favoriteID}", h.removeFavorite)

		r.Post("/skips", h.skip)
		r.Post("/reports", h.report)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"db": "ok"}
	status := http.StatusOK

	if sqlDB, err := h.appCtx.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["db"] = "down"
		status = http.StatusServiceUnavailable
	}
	if h.appCtx.RedisCache != nil {
		checks["redis"] = "ok"
		if err := h.appCtx.RedisCache.Ping(ctx); err != nil {
			checks["redis"] = "down"
			status = http.StatusServiceUnavailable
		}
	}
	if status != http.StatusOK {
		h.appCtx.Logger.Warn("health check failed", slog.Any("checks", checks))
	}
	writeJSON(w, status, checks)
}
