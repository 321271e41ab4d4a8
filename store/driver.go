package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver. It contains all methods that
// store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate creates or upgrades the schema. It is idempotent and runs at
	// every boot.
	Migrate(ctx context.Context) error

	UpsertUserToken(ctx context.Context, upsert *UserToken) (*UserToken, error)
	GetUserToken(ctx context.Context, email string) (*UserToken, error)
	DeleteUserToken(ctx context.Context, email string) error

	CreateExecutionLog(ctx context.Context, create *ExecutionLogEntry) (*ExecutionLogEntry, error)
	ListExecutionLogs(ctx context.Context, find *FindExecutionLog) ([]*ExecutionLogEntry, error)
}
