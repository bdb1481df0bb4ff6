package loader

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/spyder"
)

// htmlDecoder reduces pages to their main content and converts it to
// Markdown.
type htmlDecoder struct {
	extractor spyder.Extractor
	converter spyder.Converter
}

func (h *htmlDecoder) decode(_ context.Context, name string, data []byte, contentType string) (*spyder.LoadResult, error) {
	raw, err := decodeText(data, contentType)
	if err != nil {
		return nil, err
	}
	return h.convert(raw, pageURL(name))
}

// convert extracts the main content of raw, falling back to the whole page
// when extraction finds nothing.
func (h *htmlDecoder) convert(raw, pageURL string) (*spyder.LoadResult, error) {
	if strings.TrimSpace(raw) == "" {
		return &spyder.LoadResult{}, nil
	}

	extracted, err := h.extractor.Extract(raw, pageURL)
	if err != nil {
		return nil, err
	}
	content := extracted.ContentHTML
	if strings.TrimSpace(content) == "" {
		content = raw
	}

	text, err := h.converter.Convert(content)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(extracted.Title)
	if title == "" {
		title = spyder.TitleFromContent(text)
	}
	return &spyder.LoadResult{Title: title, Text: text}, nil
}

// pageURL returns name if it is an http(s) URL.
func pageURL(name string) string {
	if u, err := url.Parse(name); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return name
	}
	return ""
}
