package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/spyder"
)

// DefaultTableSelector selects the document table of report pages.
const DefaultTableSelector = "table#rpt"

var _ spyder.SiteParser = (*TableParser)(nil)

// TableParser reads document listings laid out as an HTML table.
// The first column holds a label such as a number and the second column
// links the document. A row's title is the first word of the first
// column's header followed by the label, e.g. "Act 12/2023".
type TableParser struct {
	selector string
}

// NewTableParser creates a TableParser for the table matched by selector.
// An empty selector uses DefaultTableSelector.
func NewTableParser(selector string) *TableParser {
	if selector == "" {
		selector = DefaultTableSelector
	}
	return &TableParser{selector: selector}
}

// Name returns "table".
func (p *TableParser) Name() string {
	return "table"
}

// ExtractLinks returns the page's same-host links outside the document
// table, such as pagination.
func (p *TableParser) ExtractLinks(page *spyder.Page) ([]string, error) {
	doc, base, err := parsePage(page)
	if err != nil {
		return nil, err
	}

	exclude := make(map[string]bool)
	for _, row := range p.rows(doc.Find(p.selector).First(), base) {
		exclude[row.URL] = true
	}
	return extractLinks(doc.Selection, base, exclude), nil
}

// ExtractTable returns one row per table row whose second column links a
// document. A page without the table returns no rows.
func (p *TableParser) ExtractTable(page *spyder.Page) ([]spyder.Row, error) {
	doc, base, err := parsePage(page)
	if err != nil {
		return nil, err
	}
	return p.rows(doc.Find(p.selector).First(), base), nil
}

func (p *TableParser) rows(table *goquery.Selection, base *url.URL) []spyder.Row {
	if table.Length() == 0 {
		return nil
	}

	prefix := ""
	if fields := strings.Fields(cellText(table.Find("th").First())); len(fields) > 0 {
		prefix = fields[0]
	}

	var rows []spyder.Row
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.ChildrenFiltered("td")
		if tds.Length() < 2 {
			return
		}

		href, ok := tds.Eq(1).Find("a[href]").First().Attr("href")
		if !ok || isNonHTTPLink(href) {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		resolved.Fragment = ""

		cells := make([]string, tds.Length())
		tds.Each(func(i int, td *goquery.Selection) {
			cells[i] = cellText(td)
		})

		title := cells[0]
		if prefix != "" && title != "" {
			title = prefix + " " + title
		}
		if title == "" {
			title = cells[1]
		}

		rows = append(rows, spyder.Row{
			Title: title,
			URL:   resolved.String(),
			Cells: cells,
		})
	})
	return rows
}
