package main

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/marcelsud/wusul-core/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	t.Run("success - mutating request matches the reference vector", func(t *testing.T) {
		headers, sigPayload, err := sign("acct_123", "s3cr3t", http.MethodPost, `{"id": "42"}`, "")
		require.NoError(t, err)

		assert.Empty(t, sigPayload)
		assert.Equal(t, "acct_123", headers.Get(signature.AccountIDHeader))
		assert.Equal(t, "ffe8b85b5333b4576e1bdbac72176a3a12a8e7fb44ce3fd6642d72a9697669ab", headers.Get(signature.SignatureHeader))
	})

	t.Run("success - body-less request signs the default payload", func(t *testing.T) {
		headers, _, err := sign("acct_123", "test_secret", http.MethodDelete, "", "")
		require.NoError(t, err)

		assert.Equal(t, "4b773ad252c6891113571613157c69705a8a5808516a2744fb89c3176e4e2c80", headers.Get(signature.SignatureHeader))
	})

	t.Run("success - read returns sig_payload", func(t *testing.T) {
		headers, sigPayload, err := sign("acct_123", "s3cr3t", http.MethodGet, "", "42")
		require.NoError(t, err)

		assert.Equal(t, "eyJpZCI6IjQyIn0=", sigPayload)
		assert.Equal(t, signature.Sign("s3cr3t", sigPayload), headers.Get(signature.SignatureHeader))
	})

	t.Run("error - invalid payload", func(t *testing.T) {
		_, _, err := sign("acct_123", "s3cr3t", http.MethodPost, `{"id":`, "")
		require.Error(t, err)
	})
}

func TestRootCmd(t *testing.T) {
	t.Run("success - prints headers without the secret", func(t *testing.T) {
		t.Setenv(secretEnv, "s3cr3t")

		var out bytes.Buffer
		cmd := rootCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--account", "acct_123", "--payload", `{"id": "42"}`})

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "X-ACCT-ID: acct_123")
		assert.Contains(t, out.String(), "X-PAYLOAD-SIG: ffe8b85b5333b4576e1bdbac72176a3a12a8e7fb44ce3fd6642d72a9697669ab")
		assert.NotContains(t, out.String(), "s3cr3t")
	})

	t.Run("success - read appends sig_payload to the url", func(t *testing.T) {
		t.Setenv(secretEnv, "s3cr3t")

		var out bytes.Buffer
		cmd := rootCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"-a", "acct_123", "-m", "get", "--id", "42", "--url", "https://api.wusul.io/v1/webhooks"})

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "sig_payload: eyJpZCI6IjQyIn0=")
		assert.Contains(t, out.String(), "URL: https://api.wusul.io/v1/webhooks?sig_payload=")
	})

	t.Run("error - secret missing", func(t *testing.T) {
		t.Setenv(secretEnv, "")

		cmd := rootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--account", "acct_123"})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), secretEnv)
	})
}
