// Package services contains the server-side business logic. This file
// implements AccountService: registration, credential verification, token
// issuance, and account lifecycle management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ebalodis/shellvault/internal/common"
	"github.com/ebalodis/shellvault/internal/dbx"
	"github.com/ebalodis/shellvault/internal/server/auth"
	"github.com/ebalodis/shellvault/internal/server/config"
	"github.com/ebalodis/shellvault/internal/server/models"
	"github.com/ebalodis/shellvault/internal/server/repositories/repomanager"
)

// AccountService provides account-related operations:
//   - Register: create accounts
//   - Authenticate: verify credentials and mint an access token
//   - VerifyToken: resolve a token back to its account id
//   - lifecycle: activate, deactivate, change password, update profile, delete
type AccountService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

// NewAccountService constructs an AccountService using repositories and
// server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates a new account with a freshly hashed password. A duplicate
// email yields common.ErrAlreadyExists; the pre-check inside the transaction
// is advisory and the store's unique constraint is the real guarantee.
func (s *AccountService) Register(ctx context.Context, email, password string, fullName *string) (*models.Account, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	var account *models.Account
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		if _, err := repo.GetByEmail(ctx, email); err == nil {
			return common.ErrAlreadyExists
		} else if !errors.Is(err, common.ErrNotFound) {
			return err
		}

		account, err = repo.Create(ctx, email, hash, fullName)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}
	return account, nil
}

// Authenticate verifies the email/password pair and returns a signed access
// token. An unknown email or a wrong password both yield
// common.ErrInvalidCredentials; a deactivated account yields
// common.ErrAccountInactive so the transport can report it distinctly.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("error searching account: %w", err)
	}

	if !auth.VerifyPassword(password, account.PasswordHash) {
		return "", common.ErrInvalidCredentials
	}

	if !account.IsActive {
		return "", common.ErrAccountInactive
	}

	return auth.GenerateToken(account.ID, s.jwtSecret, s.tokenValidityDuration)
}

// VerifyToken resolves token to the account id it was issued for.
func (s *AccountService) VerifyToken(token string) (string, error) {
	return auth.GetAccountIDFromToken(token, s.jwtSecret)
}

// GetByID returns the account or common.ErrNotFound.
func (s *AccountService) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).GetByID(ctx, id)
}

// GetByEmail returns the account, or nil without error when no account has
// that email.
func (s *AccountService) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// Activate re-enables authentication for the account.
func (s *AccountService) Activate(ctx context.Context, id string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).SetActive(ctx, id, true)
}

// Deactivate disables authentication for the account. Specimens attributed
// to it are untouched.
func (s *AccountService) Deactivate(ctx context.Context, id string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).SetActive(ctx, id, false)
}

// ChangePassword replaces the stored hash with a hash of newPassword.
func (s *AccountService) ChangePassword(ctx context.Context, id, newPassword string) (*models.Account, error) {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return s.repomanager.Accounts(s.db).UpdatePasswordHash(ctx, id, hash)
}

// UpdateFullName updates the profile name; nil clears it.
func (s *AccountService) UpdateFullName(ctx context.Context, id string, fullName *string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).UpdateFullName(ctx, id, fullName)
}

// Delete permanently removes the account. Owned specimens keep existing with
// their attribution cleared by the store.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	return s.repomanager.Accounts(s.db).Delete(ctx, id)
}
