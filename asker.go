package spyder

import "context"

// Asker answers questions using a language model and retrieved entries.
type Asker interface {
	// Ask answers question using results as context.
	// Returns EINVALID if the question is empty and EMODEL if the model
	// cannot be reached.
	Ask(ctx context.Context, question string, results []SearchResult) (string, error)
}
