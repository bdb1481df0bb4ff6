// Package trafilatura extracts the main content of HTML pages, dropping
// navigation and other page chrome before the text is embedded.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/spyder"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements spyder.Extractor at compile time.
var _ spyder.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML fetched from pageURL and returns the main
// content. pageURL may be empty for local files.
// Returns EINVALID for empty input and EUNREADABLE if extraction fails.
func (e *Extractor) Extract(rawHTML, pageURL string) (*spyder.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, spyder.Errorf(spyder.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, spyder.WrapError(spyder.EUNREADABLE, err, "extract main content")
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, spyder.WrapError(spyder.EUNREADABLE, err, "render main content")
		}
	}

	return &spyder.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
