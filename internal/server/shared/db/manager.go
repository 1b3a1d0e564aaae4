// Package db wires repository constructors to a shared connection pool and
// runs database migrations.
package db

import (
	"context"
	"database/sql"

	"github.com/dsmirnovs/clipvault/internal/server/users"
	"github.com/dsmirnovs/clipvault/internal/server/videos"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Videos() videos.Repository
	Close() error
}
