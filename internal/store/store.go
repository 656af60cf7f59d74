// Package store persists locality records and ranking reports. Two
// backends implement the same interface: an embedded SQLite database
// for single-machine use and PostgreSQL for shared deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/kerala-atlas/locality-cli/internal/model"
)

// Store defines the persistence interface for the ranking pipeline.
// Lookup methods return (nil, nil) when nothing matches.
type Store interface {
	// Localities
	SaveLocalities(ctx context.Context, recs []model.LocalityRecord) error
	ListLocalities(ctx context.Context) ([]model.LocalityRecord, error)
	GetLocality(ctx context.Context, name string) (*model.LocalityRecord, error)

	// Reports
	SaveReport(ctx context.Context, preset string, report *model.Report) (string, error)
	LatestReport(ctx context.Context, preset string) (*model.Report, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, driver, databaseURL string) (Store, error) {
	switch driver {
	case "sqlite":
		st, err := NewSQLite(databaseURL)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := NewPostgres(ctx, databaseURL, nil)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
