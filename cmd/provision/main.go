package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/wusul-core/auth"
	"github.com/marcelsud/wusul-core/auth/postgres"
	"github.com/marcelsud/wusul-core/config"
	"github.com/marcelsud/wusul-core/signature"
	"github.com/spf13/cobra"
)

/*
provision - creates an API account credential in PostgreSQL

The generated shared secret is written to --secret-file (mode 0600) and never
printed, so it does not end up in terminal scrollback or CI logs.

Usage:
  go run ./cmd/provision --tier ENTERPRISE --secret-file ./acct.secret

Requires DATABASE_URL (environment or .env).
*/

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "provision",
		Short:         "Create an API account credential",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, _ := cmd.Flags().GetString("tier")
			secretFile, _ := cmd.Flags().GetString("secret-file")
			return run(cmd.OutOrStdout(), tier, secretFile)
		},
	}

	cmd.Flags().StringP("tier", "t", string(auth.Basic), "account tier: BASIC, PROFESSIONAL or ENTERPRISE")
	cmd.Flags().StringP("secret-file", "o", "", "path the shared secret is written to")

	return cmd
}

func run(out io.Writer, tierName, secretFile string) error {
	if secretFile == "" {
		return errors.New("--secret-file is required")
	}
	tier := auth.Tier(tierName)
	if err := tier.Validate(); err != nil {
		return err
	}

	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx := context.Background()
	maxOpen, maxIdle, maxLife := cfg.GetPostgresPool()
	repo, err := postgres.NewRepositoryWithPoolConfig(cfg.DatabaseURL, maxOpen, maxIdle, maxLife)
	if err != nil {
		return err
	}
	defer repo.Close(ctx)

	if err := repo.CreateTable(ctx); err != nil {
		return err
	}

	cred, err := newCredential(tier, time.Now().UTC())
	if err != nil {
		return err
	}

	// Write the secret first so a failed insert never leaves an account nobody can use
	if err := os.WriteFile(secretFile, []byte(cred.SharedSecret+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing secret file: %w", err)
	}

	if err := repo.Insert(ctx, cred); err != nil {
		os.Remove(secretFile)
		return err
	}

	fmt.Fprintln(out, "✅ Account created")
	fmt.Fprintf(out, "   Account ID:  %s\n", cred.AccountID)
	fmt.Fprintf(out, "   Tier:        %s\n", cred.Tier)
	fmt.Fprintf(out, "   Secret file: %s\n", secretFile)
	return nil
}

func newCredential(tier auth.Tier, now time.Time) (auth.Credential, error) {
	secret, err := signature.GenerateSecret(signature.MinSecretBytes)
	if err != nil {
		return auth.Credential{}, err
	}

	return auth.Credential{
		ID:           uuid.NewString(),
		AccountID:    "acct_" + uuid.NewString(),
		SharedSecret: secret,
		Tier:         tier,
		IsActive:     true,
		CreatedAt:    now,
	}, nil
}
