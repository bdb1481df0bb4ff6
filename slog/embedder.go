package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/spyder"
)

// Ensure LoggingEmbedder implements spyder.Embedder.
var _ spyder.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with debug logging.
type LoggingEmbedder struct {
	next   spyder.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next spyder.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Model delegates to the wrapped embedder.
func (e *LoggingEmbedder) Model() string {
	return e.next.Model()
}

// Load logs the model check and delegates to the wrapped embedder.
func (e *LoggingEmbedder) Load(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelError
		}
		e.logger.Log(ctx, level, "load embedding model",
			"model", e.next.Model(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Load(ctx)
}

// Embed logs the batch size and delegates to the wrapped embedder.
func (e *LoggingEmbedder) Embed(ctx context.Context, texts []string) (vectors [][]float32, err error) {
	defer func(begin time.Time) {
		dims := 0
		if len(vectors) > 0 {
			dims = len(vectors[0])
		}
		e.logger.Log(ctx, levelFor(err), "embed",
			"model", e.next.Model(),
			"texts", len(texts),
			"dimensions", dims,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, texts)
}
