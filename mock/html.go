package mock

import "github.com/fwojciec/spyder"

var _ spyder.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of spyder.Extractor.
type Extractor struct {
	ExtractFn func(html, url string) (*spyder.ExtractResult, error)
}

func (e *Extractor) Extract(html, url string) (*spyder.ExtractResult, error) {
	return e.ExtractFn(html, url)
}

var _ spyder.Converter = (*Converter)(nil)

// Converter is a mock implementation of spyder.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
