package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/kerala-atlas/locality-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS localities (
	name       TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT '',
	record     TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS reports (
	id         TEXT PRIMARY KEY,
	preset     TEXT NOT NULL,
	report     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_localities_status ON localities(status);
CREATE INDEX IF NOT EXISTS idx_reports_preset ON reports(preset, created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveLocalities(ctx context.Context, recs []model.LocalityRecord) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, rec := range recs {
		recordJSON, err := json.Marshal(rec)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal locality %s", rec.Name)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO localities (name, status, record, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET status = excluded.status, record = excluded.record, updated_at = excluded.updated_at`,
			rec.Name, string(rec.Status), string(recordJSON), now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert locality %s", rec.Name)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit localities")
}

func (s *SQLiteStore) ListLocalities(ctx context.Context) ([]model.LocalityRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM localities ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list localities")
	}
	defer rows.Close()

	var recs []model.LocalityRecord
	for rows.Next() {
		rec, err := scanLocality(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list localities iterate")
}

func (s *SQLiteStore) GetLocality(ctx context.Context, name string) (*model.LocalityRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT record FROM localities WHERE name = ?`,
		name,
	)
	rec, err := scanLocality(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func (s *SQLiteStore) SaveReport(ctx context.Context, preset string, report *model.Report) (string, error) {
	id := uuid.New().String()

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal report")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, preset, report, created_at) VALUES (?, ?, ?, ?)`,
		id, preset, string(reportJSON), time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert report")
	}
	return id, nil
}

func (s *SQLiteStore) LatestReport(ctx context.Context, preset string) (*model.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT report FROM reports WHERE preset = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		preset,
	)

	var reportJSON string
	err := row.Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get latest report")
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal report")
	}
	return &report, nil
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanLocality(row scannable) (*model.LocalityRecord, error) {
	var recordJSON string
	err := row.Scan(&recordJSON)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan locality")
	}

	var rec model.LocalityRecord
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal locality")
	}
	return &rec, nil
}
