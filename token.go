package spyder

import "context"

// TokenCounter counts model tokens in text. Used for ingestion statistics.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
