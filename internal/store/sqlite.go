package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/outreach-cli/internal/model"
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
CREATE TABLE IF NOT EXISTS profile_cache (
	url        TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	scraped_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS processed_leads (
	url      TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	added_at DATETIME NOT NULL,
	source   TEXT NOT NULL,
	list_id  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS replies (
	id          TEXT PRIMARY KEY,
	profile_url TEXT NOT NULL,
	campaign_id TEXT,
	message     TEXT,
	received_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_replies_profile_url ON replies(profile_url);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetCachedProfiles(ctx context.Context, urls []string) (map[string]model.Profile, error) {
	out := make(map[string]model.Profile, len(urls))
	if len(urls) == 0 {
		return out, nil
	}

	keys := make([]any, 0, len(urls))
	placeholders := make([]string, 0, len(urls))
	for _, u := range urls {
		keys = append(keys, model.NormalizeProfileURL(u))
		placeholders = append(placeholders, "?")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT url, payload FROM profile_cache WHERE url IN (`+strings.Join(placeholders, ",")+`)`,
		keys...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached profiles")
	}
	defer rows.Close()

	for rows.Next() {
		var url, payload string
		if err := rows.Scan(&url, &payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan cached profile")
		}
		var p model.Profile
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal cached profile")
		}
		out[url] = p
	}
	return out, eris.Wrap(rows.Err(), "sqlite: get cached profiles iterate")
}

func (s *SQLiteStore) PutProfiles(ctx context.Context, profiles []model.Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	for _, p := range profiles {
		key := model.NormalizeProfileURL(p.URL)
		if key == "" {
			continue
		}
		p.URL = key
		payload, err := json.Marshal(p)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal profile")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO profile_cache (url, payload, scraped_at) VALUES (?, ?, datetime('now'))
			 ON CONFLICT (url) DO UPDATE SET payload = excluded.payload, scraped_at = excluded.scraped_at`,
			key, string(payload),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: put profile %s", key)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit profiles")
}

func (s *SQLiteStore) GetProcessed(ctx context.Context) (map[string]model.ProcessedLead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, name, added_at, source, list_id FROM processed_leads`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get processed")
	}
	defer rows.Close()

	ledger := map[string]model.ProcessedLead{}
	for rows.Next() {
		var url string
		var entry model.ProcessedLead
		if err := rows.Scan(&url, &entry.Name, &entry.AddedAt, &entry.Source, &entry.ListID); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan processed lead")
		}
		ledger[url] = entry
	}
	return ledger, eris.Wrap(rows.Err(), "sqlite: get processed iterate")
}

func (s *SQLiteStore) GetProcessedLead(ctx context.Context, url string) (*model.ProcessedLead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, added_at, source, list_id FROM processed_leads WHERE url = ?`,
		model.NormalizeProfileURL(url),
	)

	var entry model.ProcessedLead
	err := row.Scan(&entry.Name, &entry.AddedAt, &entry.Source, &entry.ListID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get processed lead")
	}
	return &entry, nil
}

func (s *SQLiteStore) RecordProcessed(ctx context.Context, entries map[string]model.ProcessedLead) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	for url, entry := range entries {
		key := model.NormalizeProfileURL(url)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO processed_leads (url, name, added_at, source, list_id) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (url) DO UPDATE SET
			   name = excluded.name, added_at = excluded.added_at,
			   source = excluded.source, list_id = excluded.list_id`,
			key, entry.Name, entry.AddedAt, entry.Source, entry.ListID,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: record processed %s", key)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit processed")
}

func (s *SQLiteStore) RecordReply(ctx context.Context, reply model.ReplyEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO replies (id, profile_url, campaign_id, message, received_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), model.NormalizeProfileURL(reply.ProfileURL),
		reply.CampaignID, reply.Message, reply.ReceivedAt,
	)
	return eris.Wrap(err, "sqlite: record reply")
}
