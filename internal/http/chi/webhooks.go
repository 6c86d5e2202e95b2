package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/wusul-core/auth"
	"github.com/marcelsud/wusul-core/webhook"
	"github.com/marcelsud/wusul-core/webhook/cloudevent"
)

/* HTTP layer DTOs for the webhook API
 * Separate from domain entities to avoid leaking internal structure
 */

type subscriptionRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret,omitempty"`
}

// subscriptionResponse omits the secret except right after registration
type subscriptionResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"`
	Secret    string    `json:"secret,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type eventRequest struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type eventResponse struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
}

type deliveryResponse struct {
	ID             string                `json:"id"`
	SubscriptionID string                `json:"subscription_id"`
	EventType      string                `json:"event_type"`
	URL            string                `json:"url"`
	State          string                `json:"state"`
	Attempts       int                   `json:"attempts"`
	ResponseStatus int                   `json:"response_status,omitempty"`
	ResponseBody   string                `json:"response_body,omitempty"`
	Payload        cloudevent.CloudEvent `json:"payload"`
	CreatedAt      time.Time             `json:"created_at"`
	LastAttemptAt  *time.Time            `json:"last_attempt_at,omitempty"`
	DeliveredAt    *time.Time            `json:"delivered_at,omitempty"`
	FailedAt       *time.Time            `json:"failed_at,omitempty"`
	AbandonedAt    *time.Time            `json:"abandoned_at,omitempty"`
	NextAttemptAt  *time.Time            `json:"next_attempt_at,omitempty"`
}

func toSubscriptionResponse(s webhook.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:        s.ID,
		URL:       s.URL,
		Events:    s.Events,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
	}
}

func toDeliveryResponse(a webhook.DeliveryAttempt) deliveryResponse {
	return deliveryResponse{
		ID:             a.ID,
		SubscriptionID: a.SubscriptionID,
		EventType:      a.EventType,
		URL:            a.URL,
		State:          a.State.String(),
		Attempts:       a.Attempts,
		ResponseStatus: a.ResponseStatus,
		ResponseBody:   a.ResponseBody,
		Payload:        a.Payload,
		CreatedAt:      a.CreatedAt,
		LastAttemptAt:  optionalTime(a.LastAttemptAt),
		DeliveredAt:    optionalTime(a.DeliveredAt),
		FailedAt:       optionalTime(a.FailedAt),
		AbandonedAt:    optionalTime(a.AbandonedAt),
		NextAttemptAt:  optionalTime(a.NextAttemptAt),
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// getWebhooks handles GET /v1/webhooks
func getWebhooks(service webhook.SubscriptionUseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.IdentityFrom(r.Context())

		subs, err := service.List(r.Context(), identity.AccountID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list webhooks")
			return
		}

		responses := make([]subscriptionResponse, 0, len(subs))
		for _, s := range subs {
			responses = append(responses, toSubscriptionResponse(s))
		}
		writeJSON(w, http.StatusOK, responses)
	})
}

// postWebhook handles POST /v1/webhooks
func postWebhook(service webhook.SubscriptionUseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.IdentityFrom(r.Context())

		var req subscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be a JSON object")
			return
		}

		sub, err := service.Register(r.Context(), identity.AccountID, req.URL, req.Events, req.Secret)
		if errors.Is(err, webhook.ErrInvalidSubscription) {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		if errors.Is(err, webhook.ErrReadOnly) {
			writeError(w, http.StatusConflict, "READ_ONLY", "Webhooks are managed by configuration")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register webhook")
			return
		}

		// The secret is returned once, on creation
		resp := toSubscriptionResponse(sub)
		resp.Secret = sub.Secret
		writeJSON(w, http.StatusCreated, resp)
	})
}

// deleteWebhook handles DELETE /v1/webhooks/{id}
func deleteWebhook(service webhook.SubscriptionUseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.IdentityFrom(r.Context())
		id := chi.URLParam(r, "id")

		err := service.Unregister(r.Context(), identity.AccountID, id)
		if errors.Is(err, webhook.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Webhook not found")
			return
		}
		if errors.Is(err, webhook.ErrReadOnly) {
			writeError(w, http.StatusConflict, "READ_ONLY", "Webhooks are managed by configuration")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete webhook")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	})
}

// postEvent handles POST /v1/events and returns once the event is queued
func postEvent(dispatcher webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.IdentityFrom(r.Context())

		var req eventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be a JSON object")
			return
		}
		if err := cloudevent.ValidateType(req.Type); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		if len(req.Data) == 0 || string(req.Data) == "null" {
			req.Data = json.RawMessage(`{}`)
		}

		event, err := dispatcher.Publish(r.Context(), identity.AccountID, req.Type, req.Data)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to publish event")
			return
		}
		writeJSON(w, http.StatusAccepted, eventResponse{EventID: event.ID, Type: event.Type})
	})
}

// getDelivery handles GET /v1/console/deliveries/{id}
func getDelivery(attempts webhook.AttemptReader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.IdentityFrom(r.Context())

		attempt, err := attempts.GetAttempt(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, webhook.ErrNotFound) || (err == nil && attempt.AccountID != identity.AccountID) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Delivery not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load delivery")
			return
		}
		writeJSON(w, http.StatusOK, toDeliveryResponse(attempt))
	})
}
