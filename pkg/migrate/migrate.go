package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where new migrations are written; at runtime the same files are
// read from the copy embedded in the binary.
const DefaultDir = "pkg/migrate/migrations"

// Outcome describes one migration touched (or inspected) by a command.
type Outcome struct {
	Version  int64
	File     string
	State    string
	Duration time.Duration
}

func (o Outcome) String() string {
	if o.Duration > 0 {
		return fmt.Sprintf("%-8s %d %s (%s)", o.State, o.Version, o.File, o.Duration.Round(time.Millisecond))
	}
	return fmt.Sprintf("%-8s %d %s", o.State, o.Version, o.File)
}

func newProvider(db *sql.DB, dir string) (*goose.Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	fsys, err := Source(dir)
	if err != nil {
		return nil, err
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, nil
}

// Run executes up, down or status against db.
func Run(ctx context.Context, db *sql.DB, dir, command string) ([]Outcome, error) {
	provider, err := newProvider(db, dir)
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return fromResults(results), fmt.Errorf("goose up: %w", err)
		}
		return fromResults(results), nil
	case "down":
		result, err := provider.Down(ctx)
		if err != nil {
			return nil, fmt.Errorf("goose down: %w", err)
		}
		return fromResults([]*goose.MigrationResult{result}), nil
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("goose status: %w", err)
		}
		out := make([]Outcome, 0, len(statuses))
		for _, st := range statuses {
			if st == nil || st.Source == nil {
				continue
			}
			out = append(out, Outcome{Version: st.Source.Version, File: st.Source.Path, State: string(st.State)})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported migration command %q", command)
	}
}

// MigrateToVersion moves the schema up or down until target is the current version.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir, targetVersion string) ([]Outcome, error) {
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	provider, err := newProvider(db, dir)
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("get db version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case current == target:
		return nil, nil
	case current < target:
		results, err = provider.UpTo(ctx, target)
	default:
		results, err = provider.DownTo(ctx, target)
	}
	if err != nil {
		return fromResults(results), fmt.Errorf("migrate %d -> %d: %w", current, target, err)
	}
	return fromResults(results), nil
}

func fromResults(results []*goose.MigrationResult) []Outcome {
	out := make([]Outcome, 0, len(results))
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		out = append(out, Outcome{
			Version:  r.Source.Version,
			File:     r.Source.Path,
			State:    r.Direction,
			Duration: r.Duration,
		})
	}
	return out
}
