package goquery

import "github.com/fwojciec/spyder"

var _ spyder.SiteParser = (*LinkParser)(nil)

// LinkParser treats every page as a document and follows all of its
// same-host links.
type LinkParser struct{}

// NewLinkParser creates a new LinkParser.
func NewLinkParser() *LinkParser {
	return &LinkParser{}
}

// Name returns "links".
func (p *LinkParser) Name() string {
	return "links"
}

// ExtractLinks returns the distinct same-host links of the page in
// document order.
func (p *LinkParser) ExtractLinks(page *spyder.Page) ([]string, error) {
	doc, base, err := parsePage(page)
	if err != nil {
		return nil, err
	}
	return extractLinks(doc.Selection, base, nil), nil
}

// ExtractTable returns no rows.
func (p *LinkParser) ExtractTable(*spyder.Page) ([]spyder.Row, error) {
	return nil, nil
}
