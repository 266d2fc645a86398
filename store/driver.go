package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// SystemSetting model related methods.
	UpsertSystemSetting(ctx context.Context, upsert *SystemSetting) (*SystemSetting, error)
	ListSystemSettings(ctx context.Context, find *FindSystemSetting) ([]*SystemSetting, error)

	// Member model related methods.
	CreateMember(ctx context.Context, create *Member) (*Member, error)
	ListMembers(ctx context.Context, find *FindMember) ([]*Member, error)
	// UpdateMember returns ErrNotFound when no row matches update.ID.
	UpdateMember(ctx context.Context, update *UpdateMember) (*Member, error)
	// DeleteMember returns ErrNotFound when no row matches delete.ID.
	DeleteMember(ctx context.Context, delete *DeleteMember) error

	// History model related methods.

	// CreateHistories inserts every row in one transaction: either all rows
	// are stored or none are.
	CreateHistories(ctx context.Context, creates []*History) ([]*History, error)
	// ListHistories returns rows newest first (created_ts DESC, id DESC).
	ListHistories(ctx context.Context, find *FindHistory) ([]*History, error)
}
