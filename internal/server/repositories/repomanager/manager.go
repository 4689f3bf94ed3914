package repomanager

import (
	"context"
	"database/sql"

	"github.com/ebalodis/shellvault/internal/dbx"
	"github.com/ebalodis/shellvault/internal/server/repositories/accounts"
	"github.com/ebalodis/shellvault/internal/server/repositories/specimens"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// the same repository code against *sql.DB or inside a transaction.
type RepositoryManager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	Specimens(db dbx.DBTX) specimens.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
