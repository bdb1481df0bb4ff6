package spyder

// ExtractResult holds the main content of an HTML page.
type ExtractResult struct {
	// Title is the page title taken from metadata.
	Title string

	// ContentHTML is the main content with navigation, footers and other
	// boilerplate removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages.
type Extractor interface {
	// Extract processes raw HTML fetched from url and returns its main content.
	Extract(html, url string) (*ExtractResult, error)
}

// Converter converts clean HTML (e.g., from an Extractor) to Markdown.
type Converter interface {
	Convert(html string) (string, error)
}
