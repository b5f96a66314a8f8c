package repomanager

import (
	"context"
	"database/sql"

	"github.com/kinganjia/backend/internal/dbx"
	"github.com/kinganjia/backend/internal/server/repositories/claims"
	"github.com/kinganjia/backend/internal/server/repositories/images"
	"github.com/kinganjia/backend/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so one set of
// repositories can share a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Claims(db dbx.DBTX) claims.Repository
	Images(db dbx.DBTX) images.Repository
}
