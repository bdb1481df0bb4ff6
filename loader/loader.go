// Package loader decodes downloaded and local files into plain text.
// The file extension picks the format; names without a known extension
// fall back to the Content-Type and finally to content sniffing.
package loader

import (
	"context"
	"mime"
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/fwojciec/spyder"
	"github.com/gabriel-vasile/mimetype"
)

// Ensure Loader implements spyder.Loader at compile time.
var _ spyder.Loader = (*Loader)(nil)

// Content types of the supported formats.
const (
	TypeText     = "text/plain"
	TypeMarkdown = "text/markdown"
	TypeCSV      = "text/csv"
	TypeHTML     = "text/html"
	TypePDF      = "application/pdf"
	TypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypePPTX     = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	TypeEML      = "message/rfc822"
)

// decodeFunc decodes data of one format. charsetHint is the Content-Type
// the data was served with, if any.
type decodeFunc func(ctx context.Context, name string, data []byte, charsetHint string) (*spyder.LoadResult, error)

type format struct {
	contentType string
	decode      decodeFunc
}

// Loader decodes files by format.
type Loader struct {
	formats map[string]format // by extension
	types   map[string]string // content type to extension
}

// New creates a Loader for all supported formats. HTML pages are reduced
// to their main content by extractor and converted to Markdown by converter.
func New(extractor spyder.Extractor, converter spyder.Converter) *Loader {
	h := &htmlDecoder{extractor: extractor, converter: converter}

	l := &Loader{
		formats: make(map[string]format),
		types:   make(map[string]string),
	}
	l.register(TypeText, decodePlain, ".txt")
	l.register(TypeMarkdown, decodeMarkdown, ".md", ".markdown")
	l.register(TypeCSV, decodeCSV, ".csv")
	l.register(TypeHTML, h.decode, ".html", ".htm")
	l.register(TypePDF, decodePDF, ".pdf")
	l.register(TypeDOCX, decodeDOCX, ".docx")
	l.register(TypePPTX, decodePPTX, ".pptx")
	l.register(TypeEML, (&emailDecoder{html: h}).decode, ".eml")
	l.types["application/xhtml+xml"] = ".html"
	return l
}

func (l *Loader) register(contentType string, decode decodeFunc, exts ...string) {
	for _, ext := range exts {
		l.formats[ext] = format{contentType: contentType, decode: decode}
	}
	l.types[contentType] = exts[0]
}

// Extensions returns the supported file extensions in sorted order.
func (l *Loader) Extensions() []string {
	exts := make([]string, 0, len(l.formats))
	for ext := range l.formats {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Supports reports whether the extension of name is supported.
func (l *Loader) Supports(name string) bool {
	_, ok := l.formats[extension(name)]
	return ok
}

// Load decodes data. Returns EUNREADABLE if the format is not supported or
// the data cannot be decoded.
func (l *Loader) Load(ctx context.Context, name, contentType string, data []byte) (*spyder.LoadResult, error) {
	f, ok := l.resolve(name, contentType, data)
	if !ok {
		return nil, spyder.Errorf(spyder.EUNREADABLE, "unsupported file type: %s", name)
	}

	res, err := f.decode(ctx, name, data, contentType)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if spyder.ErrorCode(err) == spyder.EUNREADABLE {
			return nil, err
		}
		return nil, spyder.WrapError(spyder.EUNREADABLE, err, "decode %s", name)
	}
	res.ContentType = f.contentType
	res.Text = strings.TrimSpace(res.Text)
	if res.Text == "" {
		return nil, spyder.Errorf(spyder.EUNREADABLE, "no text in %s", name)
	}
	return res, nil
}

// resolve picks the format by extension, then declared content type, then
// sniffed content type.
func (l *Loader) resolve(name, contentType string, data []byte) (format, bool) {
	if f, ok := l.formats[extension(name)]; ok {
		return f, true
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if f, ok := l.byType(mt); ok {
			return f, true
		}
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if f, ok := l.formats[m.Extension()]; ok {
			return f, true
		}
	}
	return format{}, false
}

func (l *Loader) byType(mediaType string) (format, bool) {
	if ext, ok := l.types[mediaType]; ok {
		return l.formats[ext], true
	}
	if m := mimetype.Lookup(mediaType); m != nil {
		f, ok := l.formats[m.Extension()]
		return f, ok
	}
	return format{}, false
}

// extension returns the lower-cased extension of a file path or of the
// path of an http(s) URL.
func extension(name string) string {
	if u, err := url.Parse(name); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return strings.ToLower(path.Ext(u.Path))
	}
	return strings.ToLower(path.Ext(strings.ReplaceAll(name, "\\", "/")))
}
