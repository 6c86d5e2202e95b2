package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marcelsud/wusul-core/auth"
	authmocks "github.com/marcelsud/wusul-core/auth/mocks"
	"github.com/marcelsud/wusul-core/signature"
	"github.com/marcelsud/wusul-core/webhook"
	"github.com/marcelsud/wusul-core/webhook/cloudevent"
	"github.com/marcelsud/wusul-core/webhook/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	accountID    = "acct_123"
	sharedSecret = "s3cr3t"
)

const unauthorizedBody = `{"success":false,"error":{"code":"UNAUTHORIZED","message":"Unauthorized"}}`

type testAPI struct {
	handler       http.Handler
	subscriptions *mocks.SubscriptionUseCase
	dispatcher    *mocks.UseCase
	attempts      *mocks.AttemptRepository
}

func newTestAPI(t *testing.T, tier auth.Tier) *testAPI {
	t.Helper()

	creds := authmocks.NewCredentialReader(t)
	creds.On("FindByAccountID", mock.Anything, accountID).Return(auth.Credential{
		ID:           "cred-1",
		AccountID:    accountID,
		SharedSecret: sharedSecret,
		Tier:         tier,
		IsActive:     true,
	}, nil).Maybe()
	creds.On("FindByAccountID", mock.Anything, mock.Anything).Return(auth.Credential{}, auth.ErrNotFound).Maybe()

	api := &testAPI{
		subscriptions: mocks.NewSubscriptionUseCase(t),
		dispatcher:    mocks.NewUseCase(t),
		attempts:      mocks.NewAttemptRepository(t),
	}
	api.handler = Handlers(context.Background(), zerolog.Nop(), Services{
		Authenticator: auth.NewAuthenticator(creds, zerolog.Nop()),
		Subscriptions: api.subscriptions,
		Dispatcher:    api.dispatcher,
		Attempts:      api.attempts,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("webhook_queue_length 0\n"))
		}),
	})
	return api
}

func (a *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

// signedRead builds a GET request carrying sig_payload
func signedRead(t *testing.T, target string) *http.Request {
	t.Helper()
	headers, encoded, err := signature.GetAuthHeaders(accountID, sharedSecret, map[string]string{"path": target})
	require.NoError(t, err)
	u, err := signature.WithSigPayload(target, encoded)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, u, nil)
	req.Header = headers
	return req
}

// signedWrite builds a mutating request signing body as sent
func signedWrite(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	encoded, err := signature.EncodeRaw([]byte(body))
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(signature.AccountIDHeader, accountID)
	req.Header.Set(signature.SignatureHeader, signature.Sign(sharedSecret, encoded))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// signedEmpty builds a body-less mutating request signing {"id": resourceID}
func signedEmpty(t *testing.T, method, target, resourceID string) *http.Request {
	t.Helper()
	headers, err := signature.AuthHeaders(accountID, sharedSecret, map[string]string{"id": resourceID})
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, nil)
	req.Header = headers
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t, auth.Basic)

	w := api.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

	w = api.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "webhook_queue_length")
}

func TestAuthenticate(t *testing.T) {
	t.Run("error - missing headers", func(t *testing.T) {
		api := newTestAPI(t, auth.Basic)

		w := api.do(httptest.NewRequest(http.MethodGet, "/v1/webhooks", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, unauthorizedBody, w.Body.String())
	})

	t.Run("error - unknown account looks like a bad signature", func(t *testing.T) {
		api := newTestAPI(t, auth.Basic)
		req := signedRead(t, "/v1/webhooks")
		req.Header.Set(signature.AccountIDHeader, "acct_unknown")

		w := api.do(req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, unauthorizedBody, w.Body.String())
	})

	t.Run("error - read without sig_payload", func(t *testing.T) {
		api := newTestAPI(t, auth.Basic)
		req := signedRead(t, "/v1/webhooks")
		req.URL.RawQuery = ""

		w := api.do(req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("error - tampered body", func(t *testing.T) {
		api := newTestAPI(t, auth.Basic)
		signed := signedWrite(t, http.MethodPost, "/v1/events", `{"type":"ag.access_pass.issued","data":{"id":"pass_1"}}`)
		req := httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(`{"type":"ag.access_pass.issued","data":{"id":"pass_2"}}`))
		req.Header = signed.Header

		w := api.do(req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotContains(t, w.Body.String(), sharedSecret)
	})

	t.Run("error - body-less request signs the route id", func(t *testing.T) {
		api := newTestAPI(t, auth.Basic)

		w := api.do(signedEmpty(t, http.MethodDelete, "/v1/webhooks/sub-1", "0"))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetWebhooks(t *testing.T) {
	api := newTestAPI(t, auth.Basic)
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	api.subscriptions.On("List", mock.Anything, accountID).Return([]webhook.Subscription{
		{
			ID:        "sub-1",
			AccountID: accountID,
			URL:       "https://example.com/hooks",
			Secret:    "whsec_hidden",
			Events:    []string{"ag.access_pass.*"},
			IsActive:  true,
			CreatedAt: created,
		},
	}, nil)

	w := api.do(signedRead(t, "/v1/webhooks"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "whsec_hidden")

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "sub-1", data[0].(map[string]any)["id"])
}

func TestPostWebhook(t *testing.T) {
	t.Run("success - returns the secret once", func(t *testing.T) {
		api := newTestAPI(t, auth.Basic)
		api.subscriptions.On("Register", mock.Anything, accountID, "https://example.com/hooks", []string{"ag.access_pass.issued"}, "").
			Return(webhook.Subscription{
				ID:        "sub-1",
				AccountID: accountID,
				URL:       "https://example.com/hooks",
				Secret:    "generated",
				Events:    []string{"ag.access_pass.issued"},
				IsActive:  true,
			}, nil)

		w := api.do(signedWrite(t, http.MethodPost, "/v1/webhooks", `{"url": "https://example.com/hooks", "events": ["ag.access_pass.issued"]}`))

		require.Equal(t, http.StatusCreated, w.Code)
		data := decode(t, w)["data"].(map[string]any)
		assert.Equal(t, "generated", data["secret"])
	})

	t.Run("error - validation", func(t *testing.T) {
		api := newTestAPI(t, auth.Basic)
		api.subscriptions.On("Register", mock.Anything, accountID, "ftp://example.com", []string{"Issued"}, "").
			Return(webhook.Subscription{}, fmt.Errorf("validating subscription: %w: %w", webhook.ErrInvalidSubscription, errors.New("bad url")))

		w := api.do(signedWrite(t, http.MethodPost, "/v1/webhooks", `{"url":"ftp://example.com","events":["Issued"]}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["error"].(map[string]any)["code"])
	})

	t.Run("error - malformed body", func(t *testing.T) {
		api := newTestAPI(t, auth.Basic)

		w := api.do(signedWrite(t, http.MethodPost, "/v1/webhooks", `[1,2]`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteWebhook(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		api := newTestAPI(t, auth.Basic)
		api.subscriptions.On("Unregister", mock.Anything, accountID, "sub-1").Return(nil)

		w := api.do(signedEmpty(t, http.MethodDelete, "/v1/webhooks/sub-1", "sub-1"))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("error - not found", func(t *testing.T) {
		api := newTestAPI(t, auth.Basic)
		api.subscriptions.On("Unregister", mock.Anything, accountID, "sub-9").
			Return(fmt.Errorf("unregistering subscription: %w", webhook.ErrNotFound))

		w := api.do(signedEmpty(t, http.MethodDelete, "/v1/webhooks/sub-9", "sub-9"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPostEvent(t *testing.T) {
	t.Run("success - queued", func(t *testing.T) {
		api := newTestAPI(t, auth.Basic)
		api.dispatcher.On("Publish", mock.Anything, accountID, "ag.access_pass.issued", json.RawMessage(`{"id":"pass_1"}`)).
			Return(cloudevent.CloudEvent{ID: "evt-1", Type: "ag.access_pass.issued"}, nil)

		w := api.do(signedWrite(t, http.MethodPost, "/v1/events", `{"type":"ag.access_pass.issued","data":{"id":"pass_1"}}`))

		require.Equal(t, http.StatusAccepted, w.Code)
		data := decode(t, w)["data"].(map[string]any)
		assert.Equal(t, "evt-1", data["event_id"])
	})

	t.Run("error - invalid type", func(t *testing.T) {
		api := newTestAPI(t, auth.Basic)

		w := api.do(signedWrite(t, http.MethodPost, "/v1/events", `{"type":"AccessPassIssued"}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("error - queue failure", func(t *testing.T) {
		api := newTestAPI(t, auth.Basic)
		api.dispatcher.On("Publish", mock.Anything, accountID, "ag.card_template.created", json.RawMessage(`{}`)).
			Return(cloudevent.CloudEvent{}, errors.New("redis down"))

		w := api.do(signedWrite(t, http.MethodPost, "/v1/events", `{"type":"ag.card_template.created"}`))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "redis down")
	})
}

func TestGetDelivery(t *testing.T) {
	event, err := cloudevent.New("https://api.wusul.io", "ag.access_pass.issued", map[string]string{"id": "pass_1"})
	require.NoError(t, err)
	attempt := webhook.NewDeliveryAttempt("del-1", webhook.Subscription{ID: "sub-1", AccountID: accountID, URL: "https://example.com/hooks"}, event, time.Now().UTC())

	t.Run("success - enterprise", func(t *testing.T) {
		api := newTestAPI(t, auth.Enterprise)
		api.attempts.On("GetAttempt", mock.Anything, "del-1").Return(attempt, nil)

		w := api.do(signedRead(t, "/v1/console/deliveries/del-1"))

		require.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w)["data"].(map[string]any)
		assert.Equal(t, "pending", data["state"])
		assert.Equal(t, "sub-1", data["subscription_id"])
	})

	t.Run("error - tier too low", func(t *testing.T) {
		api := newTestAPI(t, auth.Professional)

		w := api.do(signedRead(t, "/v1/console/deliveries/del-1"))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("error - other account", func(t *testing.T) {
		api := newTestAPI(t, auth.Enterprise)
		foreign := attempt
		foreign.AccountID = "acct_other"
		api.attempts.On("GetAttempt", mock.Anything, "del-1").Return(foreign, nil)

		w := api.do(signedRead(t, "/v1/console/deliveries/del-1"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("error - not found", func(t *testing.T) {
		api := newTestAPI(t, auth.Enterprise)
		api.attempts.On("GetAttempt", mock.Anything, "del-2").Return(webhook.DeliveryAttempt{}, webhook.ErrNotFound)

		w := api.do(signedRead(t, "/v1/console/deliveries/del-2"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPostWebhook_ReadOnlyStore(t *testing.T) {
	api := newTestAPI(t, auth.Basic)
	api.subscriptions.On("Register", mock.Anything, accountID, "https://example.com/hooks", []string{"ag.access_pass.issued"}, "").
		Return(webhook.Subscription{}, fmt.Errorf("registering subscription: %w", webhook.ErrReadOnly))

	w := api.do(signedWrite(t, http.MethodPost, "/v1/webhooks", `{"url":"https://example.com/hooks","events":["ag.access_pass.issued"]}`))

	assert.Equal(t, http.StatusConflict, w.Code)
}
