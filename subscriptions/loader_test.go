package subscriptions_test

import (
	"context"
	"os"
	"testing"

	"github.com/marcelsud/wusul-core/subscriptions"
	"github.com/marcelsud/wusul-core/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "subscriptions-*.yaml")
	require.NoError(t, err)

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())

	return tmpFile.Name()
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("success - valid subscriptions file", func(t *testing.T) {
		t.Setenv("ACME_WEBHOOK_SECRET", "whsec_from_env")
		path := writeFile(t, `
subscriptions:
  - id: "sub-passes"
    account_id: "acct_123"
    url: "https://acme.example.com/hooks"
    secret_env: "ACME_WEBHOOK_SECRET"
    events: ["ag.access_pass.*"]
  - id: "sub-templates"
    account_id: "acct_123"
    url: "https://acme.example.com/templates"
    secret: "whsec_inline"
    events: ["ag.card_template.published"]
  - id: "sub-paused"
    account_id: "acct_123"
    url: "https://acme.example.com/paused"
    secret: "whsec_paused"
    events: ["ag.access_pass.issued"]
    active: false
`)

		loader := subscriptions.NewLoader()
		require.NoError(t, loader.Load(path))

		all := loader.List()
		require.Len(t, all, 3)
		assert.Equal(t, "sub-passes", all[0].ID)

		sub, err := loader.GetSubscription(ctx, "sub-passes")
		require.NoError(t, err)
		assert.Equal(t, "whsec_from_env", sub.Secret)
		assert.True(t, sub.IsActive)

		paused, err := loader.GetSubscription(ctx, "sub-paused")
		require.NoError(t, err)
		assert.False(t, paused.IsActive)

		active, err := loader.FindActive(ctx, "acct_123", webhook.AccessPassIssued)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "sub-passes", active[0].ID)

		none, err := loader.FindActive(ctx, "acct_other", webhook.AccessPassIssued)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("success - reload replaces subscriptions", func(t *testing.T) {
		loader := subscriptions.NewLoader()
		require.NoError(t, loader.Load(writeFile(t, `
subscriptions:
  - id: "a"
    account_id: "acct_1"
    url: "https://a.example.com"
    secret: "s"
    events: ["ag.access_pass.issued"]
`)))
		require.NoError(t, loader.Load(writeFile(t, "subscriptions: []\n")))

		assert.Empty(t, loader.List())
		_, err := loader.GetSubscription(ctx, "a")
		assert.ErrorIs(t, err, webhook.ErrNotFound)
	})

	t.Run("error - file not found", func(t *testing.T) {
		err := subscriptions.NewLoader().Load("nonexistent.yaml")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading subscriptions file")
	})

	t.Run("error - invalid YAML", func(t *testing.T) {
		err := subscriptions.NewLoader().Load(writeFile(t, `invalid yaml content: [[[`))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing subscriptions YAML")
	})

	invalid := map[string]string{
		"missing id": `
subscriptions:
  - account_id: "acct_1"
    url: "https://a.example.com"
    secret: "s"
    events: ["ag.access_pass.issued"]
`,
		"bad event type": `
subscriptions:
  - id: "a"
    account_id: "acct_1"
    url: "https://a.example.com"
    secret: "s"
    events: ["AccessPassIssued"]
`,
		"missing secret env": `
subscriptions:
  - id: "a"
    account_id: "acct_1"
    url: "https://a.example.com"
    secret_env: "WUSUL_TEST_UNSET_SECRET"
    events: ["ag.access_pass.issued"]
`,
		"both secret and secret env": `
subscriptions:
  - id: "a"
    account_id: "acct_1"
    url: "https://a.example.com"
    secret: "s"
    secret_env: "HOME"
    events: ["ag.access_pass.issued"]
`,
		"duplicate id": `
subscriptions:
  - id: "a"
    account_id: "acct_1"
    url: "https://a.example.com"
    secret: "s"
    events: ["ag.access_pass.issued"]
  - id: "a"
    account_id: "acct_1"
    url: "https://b.example.com"
    secret: "s"
    events: ["ag.access_pass.issued"]
`,
		"relative url": `
subscriptions:
  - id: "a"
    account_id: "acct_1"
    url: "/hooks"
    secret: "s"
    events: ["ag.access_pass.issued"]
`,
	}
	for name, content := range invalid {
		t.Run("error - "+name, func(t *testing.T) {
			loader := subscriptions.NewLoader()
			assert.Error(t, loader.Load(writeFile(t, content)))
			assert.Empty(t, loader.List())
		})
	}
}

func TestLoader_ReadOnly(t *testing.T) {
	ctx := context.Background()
	loader := subscriptions.NewLoader()
	require.NoError(t, loader.Load(writeFile(t, `
subscriptions:
  - id: "a"
    account_id: "acct_1"
    url: "https://a.example.com"
    secret: "s"
    events: ["ag.access_pass.issued"]
  - id: "b"
    account_id: "acct_2"
    url: "https://b.example.com"
    secret: "s"
    events: ["ag.access_pass.issued"]
`)))

	owned, err := loader.ListByAccount(ctx, "acct_1")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "a", owned[0].ID)

	assert.ErrorIs(t, loader.Register(ctx, webhook.Subscription{ID: "c"}), webhook.ErrReadOnly)
	assert.ErrorIs(t, loader.Unregister(ctx, "acct_1", "a"), webhook.ErrReadOnly)
	assert.Len(t, loader.List(), 2)
}
