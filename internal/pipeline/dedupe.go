package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
)

// FilterUnprocessed partitions identifiers into never-seen and
// already-processed, consulting the persistent ledger. Runs before the
// profile scrape so duplicates are never paid for twice.
func (p *Pipeline) FilterUnprocessed(ctx context.Context, urls []string) (unprocessed []string, duplicates int, err error) {
	processed, err := p.store.GetProcessed(ctx)
	if err != nil {
		return nil, 0, eris.Wrap(err, "pipeline: load processed ledger")
	}

	for _, u := range urls {
		normalized := model.NormalizeProfileURL(u)
		if _, seen := processed[normalized]; seen {
			duplicates++
			continue
		}
		unprocessed = append(unprocessed, normalized)
	}

	if duplicates > 0 {
		zap.L().Info("pipeline: duplicates suppressed",
			zap.Int("duplicates", duplicates),
			zap.Int("remaining", len(unprocessed)),
		)
	}
	return unprocessed, duplicates, nil
}

// RecordProcessed writes uploaded leads into the ledger. Called only after a
// successful upload; last write wins per identifier.
func (p *Pipeline) RecordProcessed(ctx context.Context, leads []model.Lead, source string, listID int) error {
	records := make(map[string]model.ProcessedLead, len(leads))
	now := time.Now().UTC()
	for _, lead := range leads {
		records[lead.Profile.URL] = model.ProcessedLead{
			Name:    lead.Profile.FullName,
			AddedAt: now,
			Source:  source,
			ListID:  strconv.Itoa(listID),
		}
	}
	if err := p.store.RecordProcessed(ctx, records); err != nil {
		return eris.Wrap(err, "pipeline: record processed leads")
	}
	return nil
}
