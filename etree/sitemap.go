// Package etree implements XML-based site parsing with the etree library.
package etree

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/spyder"
)

var (
	_ spyder.SiteParser      = (*SitemapParser)(nil)
	_ spyder.IndexPageParser = (*SitemapParser)(nil)
)

// SitemapParser reads XML sitemaps. A <urlset> lists the documents to
// download; a <sitemapindex> links further sitemaps.
type SitemapParser struct{}

// NewSitemapParser creates a new SitemapParser.
func NewSitemapParser() *SitemapParser {
	return &SitemapParser{}
}

// Name returns "sitemap".
func (p *SitemapParser) Name() string {
	return "sitemap"
}

// ExtractLinks returns the sitemap URLs of a sitemap index.
// A urlset has no links.
func (p *SitemapParser) ExtractLinks(page *spyder.Page) ([]string, error) {
	root, err := parseSitemap(page)
	if err != nil {
		return nil, err
	}
	if root.Tag != "sitemapindex" {
		return nil, nil
	}

	var links []string
	for _, sitemap := range root.SelectElements("sitemap") {
		if loc := elementText(sitemap, "loc"); loc != "" {
			links = append(links, loc)
		}
	}
	return links, nil
}

// ExtractTable returns one row per <url> entry of a urlset. The row cells
// are the location and the last modification date.
func (p *SitemapParser) ExtractTable(page *spyder.Page) ([]spyder.Row, error) {
	root, err := parseSitemap(page)
	if err != nil {
		return nil, err
	}
	if root.Tag != "urlset" {
		return nil, nil
	}

	var rows []spyder.Row
	for _, urlEl := range root.SelectElements("url") {
		loc := elementText(urlEl, "loc")
		if loc == "" {
			continue
		}
		rows = append(rows, spyder.Row{
			URL:   loc,
			Cells: []string{loc, elementText(urlEl, "lastmod")},
		})
	}
	return rows, nil
}

// IsIndex reports whether the page is a sitemap index.
func (p *SitemapParser) IsIndex(page *spyder.Page) bool {
	root, err := parseSitemap(page)
	return err == nil && root.Tag == "sitemapindex"
}

func parseSitemap(page *spyder.Page) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(page.HTML); err != nil {
		return nil, spyder.WrapError(spyder.EINVALID, err, "parsing sitemap XML %s", page.URL)
	}

	root := doc.Root()
	if root == nil {
		return nil, spyder.Errorf(spyder.EINVALID, "empty sitemap XML %s", page.URL)
	}
	return root, nil
}

func elementText(parent *etree.Element, tag string) string {
	el := parent.SelectElement(tag)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}
