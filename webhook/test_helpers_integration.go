//go:build integration

package webhook

import (
	"fmt"
	"testing"
	"time"

	"github.com/marcelsud/wusul-core/webhook/cloudevent"
	"github.com/stretchr/testify/require"
)

// GenerateID generates a unique delivery attempt ID for testing
func GenerateID(t *testing.T, index int) string {
	t.Helper()
	return fmt.Sprintf("test-delivery-%d-%d", index, time.Now().UnixNano())
}

// NewTestAttempt builds a pending attempt for an ag.access_pass.issued event
func NewTestAttempt(t *testing.T, index int) DeliveryAttempt {
	t.Helper()
	event, err := cloudevent.New(DefaultSource, AccessPassIssued, map[string]string{"id": fmt.Sprintf("pass_%d", index)})
	require.NoError(t, err)

	sub := Subscription{
		ID:        fmt.Sprintf("sub-%d", index),
		AccountID: "acct_test",
		URL:       "https://example.com/hooks",
		IsActive:  true,
	}
	return NewDeliveryAttempt(GenerateID(t, index), sub, event, time.Now().UTC().Truncate(time.Second))
}
