package store

import (
	"context"

	"github.com/pkg/errors"
)

const (
	// SystemSettingSchemaVersionName is the setting that tracks the applied schema version.
	SystemSettingSchemaVersionName = "SCHEMA_VERSION"
)

type SystemSetting struct {
	Name        string
	Value       string
	Description string
}

type FindSystemSetting struct {
	Name string
}

func (s *Store) UpsertSystemSetting(ctx context.Context, upsert *SystemSetting) (*SystemSetting, error) {
	return s.driver.UpsertSystemSetting(ctx, upsert)
}

func (s *Store) ListSystemSettings(ctx context.Context, find *FindSystemSetting) ([]*SystemSetting, error) {
	return s.driver.ListSystemSettings(ctx, find)
}

// GetSchemaVersion returns the schema version recorded in the database, or "" if none.
func (s *Store) GetSchemaVersion(ctx context.Context) (string, error) {
	list, err := s.ListSystemSettings(ctx, &FindSystemSetting{Name: SystemSettingSchemaVersionName})
	if err != nil {
		return "", errors.Wrap(err, "failed to list system settings")
	}
	if len(list) == 0 {
		return "", nil
	}
	return list[0].Value, nil
}
