package loader

import (
	"bytes"
	"context"
	"strings"

	"github.com/fwojciec/spyder"
	"github.com/ledongthuc/pdf"
)

// decodePDF extracts the plain text of every page. Pages are separated by
// blank lines.
func decodePDF(ctx context.Context, _ string, data []byte, _ string) (res *spyder.LoadResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = spyder.Errorf(spyder.EUNREADABLE, "malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, spyder.WrapError(spyder.EUNREADABLE, err, "open pdf")
	}

	fonts := make(map[string]*pdf.Font)
	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}
		text, err := p.GetPlainText(fonts)
		if err != nil {
			return nil, spyder.WrapError(spyder.EUNREADABLE, err, "read pdf page %d", i)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 && r.NumPage() > 0 {
		return nil, spyder.Errorf(spyder.EUNREADABLE, "pdf has no text layer (%d pages)", r.NumPage())
	}
	return &spyder.LoadResult{Text: strings.Join(pages, "\n\n")}, nil
}
