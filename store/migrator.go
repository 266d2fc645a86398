package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/personalboard/internal/version"
)

// Migration layout:
//
//	migration/{driver}/LATEST.sql               full schema for fresh databases
//	migration/{driver}/{minor}/NN__desc.sql     upgrade to schema version {minor}.{NN+1}
//
// The applied schema version is kept in system_setting under SCHEMA_VERSION.
// Fresh databases get LATEST.sql and are stamped with the current schema
// version, so upgrade scripts only ever run against older databases.

//go:embed migration
var migrationFS embed.FS

//go:embed seed
var seedFS embed.FS

const (
	// LatestSchemaFileName is the full schema applied to empty databases.
	LatestSchemaFileName = "LATEST.sql"
	// scriptNameSeparator splits "NN__description.sql".
	scriptNameSeparator = "__"

	modeDemo = "demo"
)

// migrationScript is one upgrade file and the schema version it produces.
type migrationScript struct {
	path    string
	version string
}

// Migrate brings the database schema up to the version of this binary.
// In demo mode it also seeds sample members.
func (s *Store) Migrate(ctx context.Context) error {
	target, err := s.GetCurrentSchemaVersion()
	if err != nil {
		return errors.Wrap(err, "failed to resolve target schema version")
	}

	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		err = s.upgrade(ctx, target)
	} else {
		err = s.install(ctx, target)
	}
	if err != nil {
		return err
	}

	if s.profile.Mode == modeDemo {
		if err := s.seed(ctx); err != nil {
			return errors.Wrap(err, "failed to seed")
		}
	}
	return nil
}

// install creates the full schema on an empty database.
func (s *Store) install(ctx context.Context, target string) error {
	script := s.migrationDir() + LatestSchemaFileName
	raw, err := migrationFS.ReadFile(script)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", script)
	}

	slog.Info("initializing database", slog.String("file", script), slog.String("schemaVersion", target))
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, string(raw)); err != nil {
			return errors.Wrapf(err, "failed to execute %s", script)
		}
		return s.stampSchemaVersion(ctx, tx, target)
	})
}

// upgrade applies every script whose version lies in (applied, target].
func (s *Store) upgrade(ctx context.Context, target string) error {
	applied, err := s.GetSchemaVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get database schema version")
	}
	if applied != "" && version.IsVersionGreaterThan(applied, target) {
		return errors.Errorf("cannot downgrade schema version from %s to %s", applied, target)
	}
	if applied == target {
		return nil
	}

	scripts, err := s.listScripts("*")
	if err != nil {
		return err
	}
	from := applied
	if from == "" {
		from = "0.0.0"
	}
	pending := make([]migrationScript, 0, len(scripts))
	for _, script := range scripts {
		if version.IsVersionGreaterThan(script.version, from) && version.IsVersionGreaterOrEqualThan(target, script.version) {
			pending = append(pending, script)
		}
	}

	slog.Info("upgrading schema",
		slog.String("from", from),
		slog.String("to", target),
		slog.Int("scripts", len(pending)))
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, script := range pending {
			raw, err := migrationFS.ReadFile(script.path)
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", script.path)
			}
			if _, err := tx.ExecContext(ctx, string(raw)); err != nil {
				return errors.Wrapf(err, "failed to execute %s", script.path)
			}
			slog.Debug("applied migration", slog.String("file", script.path), slog.String("version", script.version))
		}
		return s.stampSchemaVersion(ctx, tx, target)
	})
}

// seed loads the demo personas. Seed files must be idempotent since demo
// instances run them on every start.
func (s *Store) seed(ctx context.Context) error {
	dir := fmt.Sprintf("seed/%s/", s.profile.Driver)
	files, err := fs.Glob(seedFS, dir+"*.sql")
	if err != nil {
		return errors.Wrap(err, "failed to list seed files")
	}
	if len(files) == 0 {
		slog.Warn("no seed files for driver", slog.String("driver", s.profile.Driver))
		return nil
	}
	sort.Strings(files)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, file := range files {
			raw, err := seedFS.ReadFile(file)
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", file)
			}
			if _, err := tx.ExecContext(ctx, string(raw)); err != nil {
				return errors.Wrapf(err, "failed to execute %s", file)
			}
		}
		return nil
	})
}

// GetCurrentSchemaVersion is the schema version this binary expects: the
// version of the newest upgrade script of its minor release, or {minor}.0
// when that release has none.
func (s *Store) GetCurrentSchemaVersion() (string, error) {
	minor := version.GetMinorVersion(version.GetCurrentVersion(s.profile.Mode))
	scripts, err := s.listScripts(minor)
	if err != nil {
		return "", err
	}
	if len(scripts) == 0 {
		return minor + ".0", nil
	}
	return scripts[len(scripts)-1].version, nil
}

// listScripts returns the upgrade scripts under the minor directories
// matching minorPattern, ordered by the version they produce.
func (s *Store) listScripts(minorPattern string) ([]migrationScript, error) {
	paths, err := fs.Glob(migrationFS, s.migrationDir()+minorPattern+"/*.sql")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list migration files")
	}

	scripts := make([]migrationScript, 0, len(paths))
	for _, p := range paths {
		v, err := scriptVersion(p)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, migrationScript{path: p, version: v})
	}
	sort.SliceStable(scripts, func(i, j int) bool {
		return version.IsVersionGreaterThan(scripts[j].version, scripts[i].version)
	})
	return scripts, nil
}

// scriptVersion maps migration/sqlite/0.2/00__x.sql to "0.2.1".
func scriptVersion(p string) (string, error) {
	minor := path.Base(path.Dir(p))
	name := path.Base(p)
	rawPatch, _, ok := strings.Cut(name, scriptNameSeparator)
	if !ok {
		return "", errors.Errorf("migration file %s is not named NN%sdescription.sql", p, scriptNameSeparator)
	}
	patch, err := strconv.Atoi(rawPatch)
	if err != nil {
		return "", errors.Wrapf(err, "migration file %s must start with a number", p)
	}
	return fmt.Sprintf("%s.%d", minor, patch+1), nil
}

func (s *Store) migrationDir() string {
	return fmt.Sprintf("migration/%s/", s.profile.Driver)
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.driver.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

// stampSchemaVersion records the schema version inside the migration transaction.
func (s *Store) stampSchemaVersion(ctx context.Context, tx *sql.Tx, schemaVersion string) error {
	arg := "?"
	if s.profile.Driver == "postgres" {
		arg = "$1"
	}
	stmt := `INSERT INTO system_setting (name, value, description) VALUES ('` + SystemSettingSchemaVersionName + `', ` + arg + `, 'applied schema version')
		ON CONFLICT(name) DO UPDATE SET value = EXCLUDED.value`
	if _, err := tx.ExecContext(ctx, stmt, schemaVersion); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}
	return nil
}
