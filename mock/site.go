package mock

import "github.com/fwojciec/spyder"

var _ spyder.SiteParser = (*SiteParser)(nil)

// SiteParser is a mock implementation of spyder.SiteParser.
type SiteParser struct {
	NameFn         func() string
	ExtractLinksFn func(page *spyder.Page) ([]string, error)
	ExtractTableFn func(page *spyder.Page) ([]spyder.Row, error)
}

func (p *SiteParser) Name() string {
	return p.NameFn()
}

func (p *SiteParser) ExtractLinks(page *spyder.Page) ([]string, error) {
	return p.ExtractLinksFn(page)
}

func (p *SiteParser) ExtractTable(page *spyder.Page) ([]spyder.Row, error) {
	return p.ExtractTableFn(page)
}
