package main

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/marcelsud/wusul-core/auth"
	"github.com/marcelsud/wusul-core/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCredential(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	a, err := newCredential(auth.Enterprise, now)
	require.NoError(t, err)
	b, err := newCredential(auth.Enterprise, now)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a.AccountID, "acct_"))
	assert.Len(t, a.SharedSecret, signature.MinSecretBytes*2)
	assert.Equal(t, auth.Enterprise, a.Tier)
	assert.True(t, a.IsActive)
	assert.Equal(t, now, a.CreatedAt)

	assert.NotEqual(t, a.AccountID, b.AccountID)
	assert.NotEqual(t, a.SharedSecret, b.SharedSecret)
	assert.NotContains(t, a.String(), a.SharedSecret)
}

func TestRun_Validation(t *testing.T) {
	t.Run("error - missing secret file", func(t *testing.T) {
		assert.Error(t, run(io.Discard, "BASIC", ""))
	})

	t.Run("error - unknown tier", func(t *testing.T) {
		assert.Error(t, run(io.Discard, "GOLD", t.TempDir()+"/secret"))
	})
}

func TestRootCmd(t *testing.T) {
	t.Run("error - unknown tier flag value", func(t *testing.T) {
		cmd := rootCmd()
		cmd.SetOut(io.Discard)
		cmd.SetArgs([]string{"--tier", "GOLD", "--secret-file", t.TempDir() + "/secret"})

		err := cmd.Execute()
		require.Error(t, err)
	})

	t.Run("error - secret file flag missing", func(t *testing.T) {
		cmd := rootCmd()
		cmd.SetOut(io.Discard)
		cmd.SetArgs([]string{"-t", "ENTERPRISE"})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--secret-file")
	})

	t.Run("error - positional arguments are rejected", func(t *testing.T) {
		cmd := rootCmd()
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"ENTERPRISE"})

		assert.Error(t, cmd.Execute())
	})
}
