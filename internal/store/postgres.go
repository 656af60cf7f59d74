package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/kerala-atlas/locality-cli/internal/db"
	"github.com/kerala-atlas/locality-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"get_locality":      `SELECT record FROM localities WHERE name = $1`,
	"list_localities":   `SELECT record FROM localities ORDER BY name`,
	"insert_report":     `INSERT INTO reports (id, preset, report, created_at) VALUES ($1, $2, $3, $4)`,
	"get_latest_report": `SELECT report FROM reports WHERE preset = $1 ORDER BY created_at DESC, id DESC LIMIT 1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for use by subsystems
// that need direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS localities (
	name       TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT '',
	record     JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reports (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	preset     TEXT NOT NULL,
	report     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_localities_status ON localities(status);
CREATE INDEX IF NOT EXISTS idx_reports_preset ON reports(preset, created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveLocalities(ctx context.Context, recs []model.LocalityRecord) error {
	if len(recs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		recordJSON, err := json.Marshal(rec)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal locality %s", rec.Name)
		}
		rows = append(rows, []any{rec.Name, string(rec.Status), recordJSON, now})
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "localities",
		Columns:      []string{"name", "status", "record", "updated_at"},
		ConflictKeys: []string{"name"},
	}, rows)
	return eris.Wrap(err, "postgres: save localities")
}

func (s *PostgresStore) ListLocalities(ctx context.Context) ([]model.LocalityRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT record FROM localities ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list localities")
	}
	defer rows.Close()

	var recs []model.LocalityRecord
	for rows.Next() {
		var recordJSON []byte
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan locality")
		}
		var rec model.LocalityRecord
		if err := json.Unmarshal(recordJSON, &rec); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal locality")
		}
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: list localities iterate")
}

func (s *PostgresStore) GetLocality(ctx context.Context, name string) (*model.LocalityRecord, error) {
	var recordJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT record FROM localities WHERE name = $1`,
		name,
	).Scan(&recordJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get locality %s", name)
	}

	var rec model.LocalityRecord
	if err := json.Unmarshal(recordJSON, &rec); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal locality")
	}
	return &rec, nil
}

func (s *PostgresStore) SaveReport(ctx context.Context, preset string, report *model.Report) (string, error) {
	id := uuid.New().String()

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal report")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO reports (id, preset, report, created_at) VALUES ($1, $2, $3, $4)`,
		id, preset, reportJSON, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert report")
	}
	return id, nil
}

func (s *PostgresStore) LatestReport(ctx context.Context, preset string) (*model.Report, error) {
	var reportJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT report FROM reports WHERE preset = $1 ORDER BY created_at DESC, id DESC LIMIT 1`,
		preset,
	).Scan(&reportJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get latest report")
	}

	var report model.Report
	if err := json.Unmarshal(reportJSON, &report); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal report")
	}
	return &report, nil
}
