package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ebalodis/shellvault/internal/common"
	"github.com/ebalodis/shellvault/internal/dbx"
	"github.com/ebalodis/shellvault/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const accountColumns = `id, email, password_hash, full_name, is_active, created_at, updated_at`

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

// PostgresRepository implements Repository over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, email, passwordHash string, fullName *string) (*models.Account, error) {
	query := `INSERT INTO accounts (email, password_hash, full_name)
		 VALUES ($1, $2, $3)
		 RETURNING ` + accountColumns

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, email, passwordHash, fullName))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrAlreadyExists
		}
		return nil, err
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) (*models.Account, error) {
	query := `UPDATE accounts SET is_active = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + accountColumns
	return scanAccount(r.db.QueryRowContext(ctx, query, id, active))
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) (*models.Account, error) {
	query := `UPDATE accounts SET password_hash = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + accountColumns
	return scanAccount(r.db.QueryRowContext(ctx, query, id, passwordHash))
}

func (r *PostgresRepository) UpdateFullName(ctx context.Context, id string, fullName *string) (*models.Account, error) {
	query := `UPDATE accounts SET full_name = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + accountColumns
	return scanAccount(r.db.QueryRowContext(ctx, query, id, fullName))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
