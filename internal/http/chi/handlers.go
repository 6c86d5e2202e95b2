package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/wusul-core/auth"
	"github.com/marcelsud/wusul-core/webhook"
	"github.com/rs/zerolog"
)

const requestTimeout = 30 * time.Second

/* Services groups what the HTTP layer calls into
 * Metrics may be nil, in which case /metrics is not mounted
 */
type Services struct {
	Authenticator *auth.Authenticator
	Subscriptions webhook.SubscriptionUseCase
	Dispatcher    webhook.UseCase
	Attempts      webhook.AttemptReader
	Metrics       http.Handler
}

// Handlers sets up the API routes
func Handlers(ctx context.Context, logger zerolog.Logger, s Services) *chi.Mux {
	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		// Grouped so route params are resolved before authentication runs
		r.Group(func(r chi.Router) {
			r.Use(Authenticate(s.Authenticator))

			r.Method(http.MethodGet, "/webhooks", getWebhooks(s.Subscriptions))
			r.Method(http.MethodPost, "/webhooks", postWebhook(s.Subscriptions))
			r.Method(http.MethodDelete, "/webhooks/{id}", deleteWebhook(s.Subscriptions))

			r.Method(http.MethodPost, "/events", postEvent(s.Dispatcher))

			r.Group(func(r chi.Router) {
				r.Use(RequireTier(auth.Enterprise))
				r.Method(http.MethodGet, "/console/deliveries/{id}", getDelivery(s.Attempts))
			})
		})
	})

	return r
}
