package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// File names inside the data directory.
const (
	profileCacheFile   = "profile_cache.json"
	processedLeadsFile = "processed_leads.json"
	repliesFile        = "replies.json"
)

// JSONStore implements Store with whole-file JSON documents in a data
// directory. Each write re-reads, merges, and atomically rewrites the file
// (temp file + rename); there are no guarantees beyond that.
type JSONStore struct {
	dir string
	mu  sync.Mutex
}

// NewJSON creates a JSONStore rooted at dir.
func NewJSON(dir string) *JSONStore {
	return &JSONStore{dir: dir}
}

func (s *JSONStore) Migrate(_ context.Context) error {
	return eris.Wrap(os.MkdirAll(s.dir, 0o755), "jsonstore: create data dir")
}

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) GetCachedProfiles(_ context.Context, urls []string) (map[string]model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache := map[string]model.Profile{}
	if err := s.readFile(profileCacheFile, &cache); err != nil {
		return nil, err
	}

	out := make(map[string]model.Profile, len(urls))
	for _, u := range urls {
		key := model.NormalizeProfileURL(u)
		if p, ok := cache[key]; ok {
			out[key] = p
		}
	}
	return out, nil
}

func (s *JSONStore) PutProfiles(_ context.Context, profiles []model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache := map[string]model.Profile{}
	if err := s.readFile(profileCacheFile, &cache); err != nil {
		return err
	}
	for _, p := range profiles {
		key := model.NormalizeProfileURL(p.URL)
		if key == "" {
			continue
		}
		p.URL = key
		cache[key] = p
	}
	return s.writeFile(profileCacheFile, cache)
}

func (s *JSONStore) GetProcessed(_ context.Context) (map[string]model.ProcessedLead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := map[string]model.ProcessedLead{}
	if err := s.readFile(processedLeadsFile, &ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

func (s *JSONStore) GetProcessedLead(ctx context.Context, url string) (*model.ProcessedLead, error) {
	ledger, err := s.GetProcessed(ctx)
	if err != nil {
		return nil, err
	}
	if entry, ok := ledger[model.NormalizeProfileURL(url)]; ok {
		return &entry, nil
	}
	return nil, nil
}

func (s *JSONStore) RecordProcessed(_ context.Context, entries map[string]model.ProcessedLead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := map[string]model.ProcessedLead{}
	if err := s.readFile(processedLeadsFile, &ledger); err != nil {
		return err
	}
	// Last write wins per identifier.
	for url, entry := range entries {
		ledger[model.NormalizeProfileURL(url)] = entry
	}
	return s.writeFile(processedLeadsFile, ledger)
}

func (s *JSONStore) RecordReply(_ context.Context, reply model.ReplyEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var replies []model.ReplyEvent
	if err := s.readFile(repliesFile, &replies); err != nil {
		return err
	}
	reply.ProfileURL = model.NormalizeProfileURL(reply.ProfileURL)
	replies = append(replies, reply)
	return s.writeFile(repliesFile, replies)
}

// readFile unmarshals name into out; a missing file leaves out untouched.
func (s *JSONStore) readFile(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return eris.Wrapf(err, "jsonstore: read %s", name)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrapf(err, "jsonstore: unmarshal %s", name)
	}
	return nil
}

// writeFile marshals v and atomically replaces name via temp file + rename.
func (s *JSONStore) writeFile(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "jsonstore: marshal %s", name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return eris.Wrap(err, "jsonstore: create data dir")
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "jsonstore: create temp for %s", name)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "jsonstore: write temp for %s", name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "jsonstore: close temp for %s", name)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "jsonstore: rename %s", name)
	}
	return nil
}
