package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/oggyb/vibeu-engine/internal/logger"
)

// CallerHeader carries the authenticated user id set by the upstream gateway.
const CallerHeader = "X-User-ID"

type callerKey struct{}

// CallerFrom returns the caller id stored by the caller middleware.
func CallerFrom(ctx context.Context) string {
	id, _ := ctx.Value(callerKey{}).(string)
	return id
}

// requestLogger puts a child logger tagged with the request id on the context
// and logs one line per request.
func requestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := base.With("request_id", chimiddleware.GetReqID(r.Context()))
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logger.IntoContext(r.Context(), log)))

			log.Info("http_request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				logger.Since(start),
			)
		})
	}
}

// requireCaller rejects requests without a caller id.
func requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(CallerHeader))
		if id == "" || len(id) > 36 {
			writeJSON(w, http.StatusUnauthorized, APIError{
				Code:    "UNAUTHENTICATED",
				Message: "missing " + CallerHeader + " header",
			})
			return
		}
		ctx := context.WithValue(r.Context(), callerKey{}, id)
		ctx = logger.IntoContext(ctx, logger.FromContext(ctx, nil).With("caller", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// throttle is a per-caller token bucket guarding the API against bursts.
// It is independent of the daily business quotas.
type throttle struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	idle    time.Duration
	buckets map[string]*bucket
	sweep   time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newThrottle(rps float64, burst int) *throttle {
	if burst < 1 {
		burst = 1
	}
	return &throttle{
		rps:     rate.Limit(rps),
		burst:   burst,
		idle:    10 * time.Minute,
		buckets: make(map[string]*bucket),
	}
}

func (t *throttle) allow(caller string) bool {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Sub(t.sweep) > t.idle {
		for k, b := range t.buckets {
			if now.Sub(b.seen) > t.idle {
				delete(t.buckets, k)
			}
		}
		t.sweep = now
	}

	b, ok := t.buckets[caller]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(t.rps, t.burst)}
		t.buckets[caller] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

func (t *throttle) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t.rps > 0 && !t.allow(CallerFrom(r.Context())) {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, APIError{
				Code:    "TOO_MANY_REQUESTS",
				Message: "slow down",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
