package spyder

import "context"

// LoadResult is the text recovered from a file.
type LoadResult struct {
	Title       string
	ContentType string
	Text        string
}

// Loader turns raw file bytes into document text.
type Loader interface {
	// Load decodes data. The name (file path or URL) selects the format by
	// extension; contentType is consulted when the name has none.
	// Returns EUNREADABLE if the data cannot be decoded.
	Load(ctx context.Context, name, contentType string, data []byte) (*LoadResult, error)

	// Supports reports whether files with the given name can be loaded.
	Supports(name string) bool
}
