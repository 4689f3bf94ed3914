package accounts

import (
	"context"

	"github.com/ebalodis/shellvault/internal/server/models"
)

// Repository persists accounts. Email uniqueness is enforced by the store;
// violations surface as common.ErrAlreadyExists. Lookups and updates on an
// absent id return common.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, email, passwordHash string, fullName *string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	SetActive(ctx context.Context, id string, active bool) (*models.Account, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) (*models.Account, error)
	UpdateFullName(ctx context.Context, id string, fullName *string) (*models.Account, error)
	Delete(ctx context.Context, id string) error
}
