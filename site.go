package spyder

// Page is a fetched crawl page handed to a SiteParser.
type Page struct {
	URL  string
	HTML string
}

// Row is one record of a page's document table.
type Row struct {
	Title string   // document title used when the download has none
	URL   string   // absolute URL of the document to download
	Cells []string // raw cell text, left to right
}

// SiteParser holds the site-specific logic of the web worker: which links
// of a page lead to further pages and which table lists the documents.
// One implementation exists per kind of site; the crawler.site setting
// selects it.
type SiteParser interface {
	// Name returns the parser's identifier (e.g., "table", "sitemap").
	Name() string

	// ExtractLinks returns absolute URLs of further pages to crawl.
	ExtractLinks(page *Page) ([]string, error)

	// ExtractTable returns the documents listed by the page.
	// A page without a document table returns no rows.
	ExtractTable(page *Page) ([]Row, error)
}

// SiteParserRegistry manages site parsers by name.
type SiteParserRegistry interface {
	// Get returns the parser registered under name.
	// Returns ECONFIG if no parser is registered under name.
	Get(name string) (SiteParser, error)

	// Register adds a parser under its name.
	Register(parser SiteParser)

	// List returns all registered parser names in sorted order.
	List() []string
}

// IndexPageParser is implemented by site parsers that recognize pages which
// only lead to further pages, such as sitemap indexes. The web worker never
// ingests an index page as a document.
type IndexPageParser interface {
	IsIndex(page *Page) bool
}
