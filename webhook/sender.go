package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/marcelsud/wusul-core/webhook/cloudevent"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultUserAgent   = "Wusul-Webhooks/1.0"
	DefaultSendTimeout = 30 * time.Second
)

// HTTPSender POSTs structured-mode CloudEvents to subscriber endpoints
type HTTPSender struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPSender creates a sender whose transport is traced with OpenTelemetry
func NewHTTPSender(userAgent string, timeout time.Duration) *HTTPSender {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &HTTPSender{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		UserAgent: userAgent,
	}
}

/* Send delivers event to url with the subscription secret as bearer token
 * Returns the response status and at most MaxResponseBody bytes of the body.
 * A transport error is returned with status 0.
 */
func (s *HTTPSender) Send(ctx context.Context, url, secret string, event cloudevent.CloudEvent) (int, string, error) {
	body, err := event.Bytes()
	if err != nil {
		return 0, "", fmt.Errorf("encoding event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", cloudevent.ContentType)
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Authorization", "Bearer "+secret)

	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBody))
	if err != nil {
		return resp.StatusCode, "", nil
	}
	return resp.StatusCode, string(respBody), nil
}
