package store

import (
	"context"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Store defines the persistence interface for the outreach pipeline: the
// profile cache, the processed-leads ledger, and inbound reply events. All
// keys are normalized profile URLs (model.NormalizeProfileURL); callers
// normalize before lookup and implementations normalize again on write.
type Store interface {
	// Profile cache
	GetCachedProfiles(ctx context.Context, urls []string) (map[string]model.Profile, error)
	PutProfiles(ctx context.Context, profiles []model.Profile) error

	// Processed-leads ledger
	GetProcessed(ctx context.Context) (map[string]model.ProcessedLead, error)
	GetProcessedLead(ctx context.Context, url string) (*model.ProcessedLead, error)
	RecordProcessed(ctx context.Context, entries map[string]model.ProcessedLead) error

	// Replies
	RecordReply(ctx context.Context, reply model.ReplyEvent) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
