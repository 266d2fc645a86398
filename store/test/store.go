package test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hrygo/personalboard/internal/profile"
	"github.com/hrygo/personalboard/internal/version"
	"github.com/hrygo/personalboard/store"
	"github.com/hrygo/personalboard/store/db"
)

// NewTestingStore returns a migrated store backed by the driver named in
// DRIVER (sqlite by default). The store is closed when the test ends.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	p := getTestingProfile(t)
	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	s := store.New(dbDriver, p)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func getTestingProfile(t *testing.T) *profile.Profile {
	dir := t.TempDir()
	mode := "prod"
	driver := getDriverFromEnv()

	p := &profile.Profile{
		Mode:    mode,
		Data:    dir,
		Driver:  driver,
		Version: version.GetCurrentVersion(mode),
	}
	switch driver {
	case "postgres":
		p.DSN = GetPostgresDSN(t)
	default:
		p.DSN = filepath.Join(dir, "personalboard_test.db")
	}
	return p
}

func getDriverFromEnv() string {
	driver := os.Getenv("DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	return driver
}
