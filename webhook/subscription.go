package webhook

import (
	"fmt"
	"net/url"
	"time"

	"github.com/marcelsud/wusul-core/webhook/cloudevent"
)

/* Subscription is a registered delivery target for one account
 * Uses value semantics as it represents data, not behavior
 */
type Subscription struct {
	ID        string
	AccountID string
	URL       string
	Secret    string // bearer token presented to the subscriber, never logged
	Events    []string
	IsActive  bool
	CreatedAt time.Time
}

// Listens reports whether the subscription wants eventType
func (s Subscription) Listens(eventType string) bool {
	return s.IsActive && cloudevent.Matches(eventType, s.Events)
}

// Validate checks the subscription before it is stored
func (s Subscription) Validate() error {
	if s.AccountID == "" {
		return fmt.Errorf("account_id cannot be empty")
	}
	if s.URL == "" {
		return fmt.Errorf("url cannot be empty")
	}
	u, err := url.Parse(s.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("url must be an absolute http(s) url: %s", s.URL)
	}
	if s.Secret == "" {
		return fmt.Errorf("secret cannot be empty")
	}
	if len(s.Events) == 0 {
		return fmt.Errorf("events cannot be empty")
	}
	for _, e := range s.Events {
		if err := cloudevent.ValidateFilter(e); err != nil {
			return fmt.Errorf("invalid event %q: %w", e, err)
		}
	}
	return nil
}
