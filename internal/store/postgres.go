package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool, for deployments sharing a
// central prospect database across machines.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS profile_cache (
	url        TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	scraped_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS processed_leads (
	url      TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	added_at TIMESTAMPTZ NOT NULL,
	source   TEXT NOT NULL,
	list_id  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS replies (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	profile_url TEXT NOT NULL,
	campaign_id TEXT,
	message     TEXT,
	received_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_replies_profile_url ON replies(profile_url);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetCachedProfiles(ctx context.Context, urls []string) (map[string]model.Profile, error) {
	out := make(map[string]model.Profile, len(urls))
	if len(urls) == 0 {
		return out, nil
	}

	keys := make([]string, 0, len(urls))
	for _, u := range urls {
		keys = append(keys, model.NormalizeProfileURL(u))
	}

	rows, err := s.pool.Query(ctx,
		`SELECT url, payload FROM profile_cache WHERE url = ANY($1)`,
		keys,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cached profiles")
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		var payload []byte
		if err := rows.Scan(&url, &payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan cached profile")
		}
		var p model.Profile
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal cached profile")
		}
		out[url] = p
	}
	return out, eris.Wrap(rows.Err(), "postgres: get cached profiles iterate")
}

func (s *PostgresStore) PutProfiles(ctx context.Context, profiles []model.Profile) error {
	for _, p := range profiles {
		key := model.NormalizeProfileURL(p.URL)
		if key == "" {
			continue
		}
		p.URL = key
		payload, err := json.Marshal(p)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal profile")
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO profile_cache (url, payload, scraped_at) VALUES ($1, $2, now())
			 ON CONFLICT (url) DO UPDATE SET payload = $2, scraped_at = now()`,
			key, payload,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: put profile %s", key)
		}
	}
	return nil
}

func (s *PostgresStore) GetProcessed(ctx context.Context) (map[string]model.ProcessedLead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT url, name, added_at, source, list_id FROM processed_leads`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get processed")
	}
	defer rows.Close()

	ledger := map[string]model.ProcessedLead{}
	for rows.Next() {
		var url string
		var entry model.ProcessedLead
		if err := rows.Scan(&url, &entry.Name, &entry.AddedAt, &entry.Source, &entry.ListID); err != nil {
			return nil, eris.Wrap(err, "postgres: scan processed lead")
		}
		ledger[url] = entry
	}
	return ledger, eris.Wrap(rows.Err(), "postgres: get processed iterate")
}

func (s *PostgresStore) GetProcessedLead(ctx context.Context, url string) (*model.ProcessedLead, error) {
	var entry model.ProcessedLead
	err := s.pool.QueryRow(ctx,
		`SELECT name, added_at, source, list_id FROM processed_leads WHERE url = $1`,
		model.NormalizeProfileURL(url),
	).Scan(&entry.Name, &entry.AddedAt, &entry.Source, &entry.ListID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get processed lead")
	}
	return &entry, nil
}

func (s *PostgresStore) RecordProcessed(ctx context.Context, entries map[string]model.ProcessedLead) error {
	for url, entry := range entries {
		key := model.NormalizeProfileURL(url)
		_, err := s.pool.Exec(ctx,
			`INSERT INTO processed_leads (url, name, added_at, source, list_id) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (url) DO UPDATE SET
			   name = $2, added_at = $3, source = $4, list_id = $5`,
			key, entry.Name, entry.AddedAt, entry.Source, entry.ListID,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: record processed %s", key)
		}
	}
	return nil
}

func (s *PostgresStore) RecordReply(ctx context.Context, reply model.ReplyEvent) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO replies (id, profile_url, campaign_id, message, received_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), model.NormalizeProfileURL(reply.ProfileURL),
		reply.CampaignID, reply.Message, reply.ReceivedAt,
	)
	return eris.Wrap(err, "postgres: record reply")
}
