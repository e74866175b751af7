package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where new migrations are written during development.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Embedded returns the migrations compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(fmt.Sprintf("migrate: embedded migrations: %v", err))
	}
	return sub
}

// Source picks the embedded migrations when dir is empty, otherwise the
// migrations found on disk in dir.
func Source(dir string) fs.FS {
	if dir == "" {
		return Embedded()
	}
	return os.DirFS(dir)
}

// Status describes one migration known to the runner.
type Status struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

// Runner applies goose migrations from fsys to a postgres database.
type Runner struct {
	provider *goose.Provider
}

// NewRunner builds a runner over fsys.
func NewRunner(db *sql.DB, fsys fs.FS) (*Runner, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if fsys == nil {
		return nil, errors.New("migration source is required")
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Runner{provider: provider}, nil
}

// Up applies every pending migration and returns how many ran.
func (r *Runner) Up(ctx context.Context) (int, error) {
	results, err := r.provider.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("goose up: %w", err)
	}
	return len(results), nil
}

// Down rolls back the most recent migration.
func (r *Runner) Down(ctx context.Context) error {
	if _, err := r.provider.Down(ctx); err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

// Version reports the highest applied migration.
func (r *Runner) Version(ctx context.Context) (int64, error) {
	version, err := r.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("get db version: %w", err)
	}
	return version, nil
}

// Status lists every migration with its applied state.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	rows, err := r.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose status: %w", err)
	}
	out := make([]Status, 0, len(rows))
	for _, row := range rows {
		status := Status{
			Applied:   row.State == goose.StateApplied,
			AppliedAt: row.AppliedAt,
		}
		if row.Source != nil {
			status.Version = row.Source.Version
			status.Path = row.Source.Path
		}
		out = append(out, status)
	}
	return out, nil
}

// MigrateTo moves the schema up or down until target is the current version.
func (r *Runner) MigrateTo(ctx context.Context, targetVersion string) error {
	target, err := ParseVersion(targetVersion)
	if err != nil {
		return err
	}
	current, err := r.Version(ctx)
	if err != nil {
		return err
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if _, err := r.provider.UpTo(ctx, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if _, err := r.provider.DownTo(ctx, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}

// ParseVersion parses a YYYYMMDDHHMMSS migration version.
func ParseVersion(value string) (int64, error) {
	if value == "" {
		return 0, errors.New("target version is required")
	}
	if !versionRe.MatchString(value) {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", value)
	}
	version, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", value, err)
	}
	return version, nil
}
