//go:build !integration

package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/marcelsud/wusul-core/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var selectCredential = regexp.QuoteMeta(`SELECT id, account_id, shared_secret, tier, is_active, created_at
		FROM accounts
		WHERE account_id = $1`)

func TestRepository_FindByAccountID_Unit(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := &Repository{DB: db}

		rows := sqlmock.NewRows([]string{"id", "account_id", "shared_secret", "tier", "is_active", "created_at"}).
			AddRow("cred-1", "acct_123", "s3cr3t", "ENTERPRISE", true, created)
		mock.ExpectQuery(selectCredential).WithArgs("acct_123").WillReturnRows(rows)

		c, err := repo.FindByAccountID(ctx, "acct_123")

		require.NoError(t, err)
		assert.Equal(t, "cred-1", c.ID)
		assert.Equal(t, "s3cr3t", c.SharedSecret)
		assert.Equal(t, auth.Enterprise, c.Tier)
		assert.True(t, c.IsActive)
		assert.Equal(t, created, c.CreatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := &Repository{DB: db}

		mock.ExpectQuery(selectCredential).WithArgs("acct_missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err = repo.FindByAccountID(ctx, "acct_missing")

		assert.ErrorIs(t, err, auth.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - query failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := &Repository{DB: db}

		mock.ExpectQuery(selectCredential).WithArgs("acct_123").WillReturnError(errors.New("boom"))

		_, err = repo.FindByAccountID(ctx, "acct_123")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "selecting credential")
		assert.NotErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestRepository_Insert_Unit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := &Repository{DB: db}
	created := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO accounts (id, account_id, shared_secret, tier, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`)).
		WithArgs("cred-1", "acct_123", "s3cr3t", "BASIC", true, created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Insert(context.Background(), auth.Credential{
		ID:           "cred-1",
		AccountID:    "acct_123",
		SharedSecret: "s3cr3t",
		Tier:         auth.Basic,
		IsActive:     true,
		CreatedAt:    created,
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Deactivate_Unit(t *testing.T) {
	query := regexp.QuoteMeta("UPDATE accounts SET is_active = FALSE WHERE account_id = $1")

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := &Repository{DB: db}

		mock.ExpectExec(query).WithArgs("acct_123").WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Deactivate(context.Background(), "acct_123"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := &Repository{DB: db}

		mock.ExpectExec(query).WithArgs("acct_missing").WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.Deactivate(context.Background(), "acct_missing")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestRepository_CreateTable_Unit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := &Repository{DB: db}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS accounts").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.CreateTable(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
