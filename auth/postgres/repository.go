package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/marcelsud/wusul-core/auth"
)

/* PostgreSQL implementation of auth.CredentialReader
 * Credentials are provisioned out of band (cmd/provision) and read-only here.
 */

type Repository struct {
	DB *sql.DB
}

// NewRepository creates a repository with the default pool (25, 5, 5 min)
func NewRepository(connectionString string) (*Repository, error) {
	return NewRepositoryWithPoolConfig(connectionString, 25, 5, 5)
}

// NewRepositoryWithPoolConfig creates a repository with a custom pool
func NewRepositoryWithPoolConfig(connectionString string, maxOpenConns, maxIdleConns, maxLifeMinutes int) (*Repository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
	if maxLifeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(maxLifeMinutes) * time.Minute)
	}

	return &Repository{
		DB: db,
	}, nil
}

// FindByAccountID returns the credential for a public account id
func (r *Repository) FindByAccountID(ctx context.Context, accountID string) (auth.Credential, error) {
	query := `SELECT id, account_id, shared_secret, tier, is_active, created_at
		FROM accounts
		WHERE account_id = $1`

	var (
		c    auth.Credential
		tier string
	)
	err := r.DB.QueryRowContext(ctx, query, accountID).Scan(
		&c.ID,
		&c.AccountID,
		&c.SharedSecret,
		&tier,
		&c.IsActive,
		&c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Credential{}, auth.ErrNotFound
	}
	if err != nil {
		return auth.Credential{}, fmt.Errorf("selecting credential: %w", err)
	}
	c.Tier = auth.NewTier(tier)

	return c, nil
}

// Insert stores a newly provisioned credential
func (r *Repository) Insert(ctx context.Context, c auth.Credential) error {
	query := `INSERT INTO accounts (id, account_id, shared_secret, tier, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.DB.ExecContext(ctx, query, c.ID, c.AccountID, c.SharedSecret, string(c.Tier), c.IsActive, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting credential: %w", err)
	}

	return nil
}

// Deactivate flips is_active off; the row is kept for audit
func (r *Repository) Deactivate(ctx context.Context, accountID string) error {
	result, err := r.DB.ExecContext(ctx, "UPDATE accounts SET is_active = FALSE WHERE account_id = $1", accountID)
	if err != nil {
		return fmt.Errorf("deactivating credential: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return auth.ErrNotFound
	}

	return nil
}

// Close closes the database connection
func (r *Repository) Close(ctx context.Context) error {
	if r.DB != nil {
		return r.DB.Close()
	}
	return nil
}

// CreateTable creates the accounts table
func (r *Repository) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL UNIQUE,
			shared_secret TEXT NOT NULL,
			tier TEXT NOT NULL DEFAULT 'BASIC',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	_, err := r.DB.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	return nil
}
