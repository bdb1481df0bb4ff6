package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/spyder"
)

// Ensure LoggingEntryService implements spyder.EntryService.
var _ spyder.EntryService = (*LoggingEntryService)(nil)

// LoggingEntryService wraps an EntryService with debug logging.
type LoggingEntryService struct {
	next   spyder.EntryService
	logger *slog.Logger
}

// NewLoggingEntryService creates a new LoggingEntryService.
func NewLoggingEntryService(next spyder.EntryService, logger *slog.Logger) *LoggingEntryService {
	return &LoggingEntryService{next: next, logger: logger}
}

// UpsertEntry logs the write and delegates to the wrapped service.
func (s *LoggingEntryService) UpsertEntry(ctx context.Context, entry *spyder.Entry) (inserted bool, err error) {
	defer func(begin time.Time) {
		s.logger.Log(ctx, levelFor(err), "upsert entry",
			"id", entry.ID,
			"source", entry.Source,
			"chunk", entry.ChunkIndex,
			"inserted", inserted,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UpsertEntry(ctx, entry)
}

// Search logs the query and delegates to the wrapped service.
func (s *LoggingEntryService) Search(ctx context.Context, vector []float32, k int) (results []spyder.SearchResult, err error) {
	defer func(begin time.Time) {
		s.logger.Log(ctx, levelFor(err), "search",
			"k", k,
			"results", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, vector, k)
}

// CountEntries delegates to the wrapped service.
func (s *LoggingEntryService) CountEntries(ctx context.Context) (int, error) {
	return s.next.CountEntries(ctx)
}
