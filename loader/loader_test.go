package loader_test

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/fwojciec/spyder"
	"github.com/fwojciec/spyder/loader"
	"github.com/fwojciec/spyder/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// newLoader returns a Loader whose HTML pipeline keeps <main> and strips tags.
func newLoader() *loader.Loader {
	extractor := &mock.Extractor{
		ExtractFn: func(html, _ string) (*spyder.ExtractResult, error) {
			res := &spyder.ExtractResult{}
			if i := strings.Index(html, "<title>"); i >= 0 {
				j := strings.Index(html, "</title>")
				res.Title = html[i+len("<title>") : j]
			}
			if i := strings.Index(html, "<main>"); i >= 0 {
				j := strings.Index(html, "</main>")
				res.ContentHTML = html[i+len("<main>") : j]
			}
			return res, nil
		},
	}
	converter := &mock.Converter{
		ConvertFn: func(html string) (string, error) {
			var b strings.Builder
			inTag := false
			for _, r := range html {
				switch {
				case r == '<':
					inTag = true
				case r == '>':
					inTag = false
				case !inTag:
					b.WriteRune(r)
				}
			}
			return b.String(), nil
		},
	}
	return loader.New(extractor, converter)
}

func load(t *testing.T, name, contentType string, data []byte) *spyder.LoadResult {
	t.Helper()
	res, err := newLoader().Load(context.Background(), name, contentType, data)
	require.NoError(t, err)
	return res
}

func TestLoader_Supports(t *testing.T) {
	t.Parallel()

	l := newLoader()

	for _, name := range []string{"a.txt", "B.MD", "c.csv", "d.html", "e.htm", "f.pdf", "g.docx", "h.pptx", "i.eml", "https://example.com/files/act.pdf?v=2"} {
		assert.True(t, l.Supports(name), name)
	}
	for _, name := range []string{"a.png", "b", "c.exe", "https://example.com/page"} {
		assert.False(t, l.Supports(name), name)
	}
}

func TestLoader_Extensions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{".csv", ".docx", ".eml", ".htm", ".html", ".markdown", ".md", ".pdf", ".pptx", ".txt"}, newLoader().Extensions())
}

func TestLoader_Load_text(t *testing.T) {
	t.Parallel()

	t.Run("loads plain text", func(t *testing.T) {
		t.Parallel()

		res := load(t, "notes.txt", "", []byte("line one\r\nline two\n"))

		assert.Equal(t, "line one\nline two", res.Text)
		assert.Equal(t, loader.TypeText, res.ContentType)
		assert.Empty(t, res.Title)
	})

	t.Run("strips the UTF-8 byte order mark", func(t *testing.T) {
		t.Parallel()

		res := load(t, "notes.txt", "", append([]byte{0xEF, 0xBB, 0xBF}, "zażółć"...))

		assert.Equal(t, "zażółć", res.Text)
	})

	t.Run("transcodes legacy charsets", func(t *testing.T) {
		t.Parallel()

		data, err := charmap.Windows1250.NewEncoder().Bytes([]byte("Łódź"))
		require.NoError(t, err)

		res := load(t, "city.txt", "text/plain; charset=windows-1250", data)

		assert.Equal(t, "Łódź", res.Text)
	})

	t.Run("takes the markdown title from the first heading", func(t *testing.T) {
		t.Parallel()

		res := load(t, "guide.md", "", []byte("intro\n\n# Permit guide\n\nBody"))

		assert.Equal(t, "Permit guide", res.Title)
		assert.Equal(t, loader.TypeMarkdown, res.ContentType)
	})

	t.Run("rejects files without text", func(t *testing.T) {
		t.Parallel()

		_, err := newLoader().Load(context.Background(), "empty.txt", "", []byte(" \n "))

		assert.Equal(t, spyder.EUNREADABLE, spyder.ErrorCode(err))
	})
}

func TestLoader_Load_csv(t *testing.T) {
	t.Parallel()

	t.Run("renders records as header value lines", func(t *testing.T) {
		t.Parallel()

		data := "name,fee\nPermit,120\n\"Licence, annual\",300\n"

		res := load(t, "fees.csv", "", []byte(data))

		assert.Equal(t, "name: Permit\nfee: 120\n\nname: Licence, annual\nfee: 300", res.Text)
		assert.Equal(t, loader.TypeCSV, res.ContentType)
	})

	t.Run("tolerates ragged rows", func(t *testing.T) {
		t.Parallel()

		res := load(t, "fees.csv", "", []byte("a,b\n1\n2,3,4\n"))

		assert.Equal(t, "a: 1\n\na: 2\nb: 3\n: 4", res.Text)
	})
}

func TestLoader_Load_html(t *testing.T) {
	t.Parallel()

	t.Run("keeps the main content", func(t *testing.T) {
		t.Parallel()

		page := "<html><head><title>Notice</title></head><body><nav>Menu</nav><main><p>Office closed on Friday.</p></main></body></html>"

		res := load(t, "https://example.com/notice.html", "", []byte(page))

		assert.Equal(t, "Notice", res.Title)
		assert.Equal(t, "Office closed on Friday.", res.Text)
		assert.Equal(t, loader.TypeHTML, res.ContentType)
	})

	t.Run("uses the whole page when extraction finds nothing", func(t *testing.T) {
		t.Parallel()

		res := load(t, "page.htm", "", []byte("<p>Just a paragraph.</p>"))

		assert.Equal(t, "Just a paragraph.", res.Text)
	})

	t.Run("passes the page URL to the extractor", func(t *testing.T) {
		t.Parallel()

		var gotURL string
		l := loader.New(
			&mock.Extractor{ExtractFn: func(_, url string) (*spyder.ExtractResult, error) {
				gotURL = url
				return &spyder.ExtractResult{ContentHTML: "x"}, nil
			}},
			&mock.Converter{ConvertFn: func(html string) (string, error) { return html, nil }},
		)

		_, err := l.Load(context.Background(), "https://example.com/a.html", "", []byte("<p>x</p>"))
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/a.html", gotURL)

		_, err = l.Load(context.Background(), "/data/a.html", "", []byte("<p>x</p>"))
		require.NoError(t, err)
		assert.Empty(t, gotURL)
	})
}

func TestLoader_Load_typeResolution(t *testing.T) {
	t.Parallel()

	t.Run("uses the content type when the name has no extension", func(t *testing.T) {
		t.Parallel()

		res := load(t, "https://example.com/notice", "text/html; charset=utf-8", []byte("<main>Closed</main>"))

		assert.Equal(t, loader.TypeHTML, res.ContentType)
		assert.Equal(t, "Closed", res.Text)
	})

	t.Run("uses the content type for unknown extensions", func(t *testing.T) {
		t.Parallel()

		res := load(t, "https://example.com/get.php?id=7", "text/plain", []byte("plain body"))

		assert.Equal(t, loader.TypeText, res.ContentType)
	})

	t.Run("sniffs the content when nothing else matches", func(t *testing.T) {
		t.Parallel()

		page := []byte("<!DOCTYPE html><html><body><main>Sniffed page</main></body></html>")

		res := load(t, "https://example.com/download", "application/octet-stream", page)

		assert.Equal(t, loader.TypeHTML, res.ContentType)
		assert.Equal(t, "Sniffed page", res.Text)
	})

	t.Run("rejects unsupported files", func(t *testing.T) {
		t.Parallel()

		png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
		_, err := newLoader().Load(context.Background(), "image.png", "image/png", png)

		assert.Equal(t, spyder.EUNREADABLE, spyder.ErrorCode(err))
	})
}

func TestLoader_Load_office(t *testing.T) {
	t.Parallel()

	t.Run("extracts docx paragraphs and title", func(t *testing.T) {
		t.Parallel()

		res := load(t, "act.docx", "", buildDOCX(t, "Act 12/2023", "First paragraph", "Second paragraph"))

		assert.Equal(t, "Act 12/2023", res.Title)
		assert.Equal(t, "First paragraph\nSecond paragraph", res.Text)
		assert.Equal(t, loader.TypeDOCX, res.ContentType)
	})

	t.Run("extracts pptx slides in slide order", func(t *testing.T) {
		t.Parallel()

		res := load(t, "deck.pptx", "", buildPPTX(t, "Agenda", "Budget", "Q&A", "Summary"))

		assert.Equal(t, "Agenda\n\nBudget\n\nQ&A\n\nSummary", res.Text)
		assert.Equal(t, loader.TypePPTX, res.ContentType)
	})

	t.Run("rejects corrupt archives", func(t *testing.T) {
		t.Parallel()

		_, err := newLoader().Load(context.Background(), "act.docx", "", []byte("not a zip"))

		assert.Equal(t, spyder.EUNREADABLE, spyder.ErrorCode(err))
	})
}

func TestLoader_Load_pdf(t *testing.T) {
	t.Parallel()

	t.Run("extracts page text", func(t *testing.T) {
		t.Parallel()

		res := load(t, "act.pdf", "", buildPDF("Hello PDF"))

		assert.Contains(t, res.Text, "Hello PDF")
		assert.Equal(t, loader.TypePDF, res.ContentType)
	})

	t.Run("rejects corrupt files", func(t *testing.T) {
		t.Parallel()

		_, err := newLoader().Load(context.Background(), "act.pdf", "", []byte("%PDF-1.4 garbage"))

		assert.Equal(t, spyder.EUNREADABLE, spyder.ErrorCode(err))
	})
}

func TestLoader_Load_email(t *testing.T) {
	t.Parallel()

	t.Run("reads headers and the plain body", func(t *testing.T) {
		t.Parallel()

		msg := "From: Clerk <clerk@example.com>\r\n" +
			"To: residents@example.com\r\n" +
			"Subject: =?UTF-8?Q?Zebranie_mieszka=C5=84c=C3=B3w?=\r\n" +
			"Date: Mon, 6 May 2024 10:00:00 +0200\r\n" +
			"Content-Type: text/plain; charset=utf-8\r\n" +
			"Content-Transfer-Encoding: quoted-printable\r\n" +
			"\r\n" +
			"The meeting starts at 18:00 in the town hall.=\r\n" +
			" Please be on time.\r\n"

		res := load(t, "meeting.eml", "", []byte(msg))

		assert.Equal(t, "Zebranie mieszkańców", res.Title)
		assert.Contains(t, res.Text, "Subject: Zebranie mieszkańców")
		assert.Contains(t, res.Text, "From: Clerk <clerk@example.com>")
		assert.Contains(t, res.Text, "The meeting starts at 18:00 in the town hall. Please be on time.")
		assert.Equal(t, loader.TypeEML, res.ContentType)
	})

	t.Run("prefers the plain part and skips attachments", func(t *testing.T) {
		t.Parallel()

		msg := "Subject: Minutes\r\n" +
			"Content-Type: multipart/mixed; boundary=outer\r\n" +
			"\r\n" +
			"--outer\r\n" +
			"Content-Type: multipart/alternative; boundary=inner\r\n" +
			"\r\n" +
			"--inner\r\n" +
			"Content-Type: text/html\r\n" +
			"\r\n" +
			"<main>HTML minutes</main>\r\n" +
			"--inner\r\n" +
			"Content-Type: text/plain\r\n" +
			"Content-Transfer-Encoding: base64\r\n" +
			"\r\n" +
			"UGxhaW4gbWludXRlcw==\r\n" +
			"--inner--\r\n" +
			"--outer\r\n" +
			"Content-Type: text/plain\r\n" +
			"Content-Disposition: attachment; filename=secret.txt\r\n" +
			"\r\n" +
			"attached text\r\n" +
			"--outer--\r\n"

		res := load(t, "minutes.eml", "", []byte(msg))

		assert.Contains(t, res.Text, "Plain minutes")
		assert.NotContains(t, res.Text, "HTML minutes")
		assert.NotContains(t, res.Text, "attached text")
	})

	t.Run("falls back to the html part", func(t *testing.T) {
		t.Parallel()

		msg := "Subject: Notice\r\n" +
			"Content-Type: text/html\r\n" +
			"\r\n" +
			"<main><p>Road closed.</p></main>\r\n"

		res := load(t, "notice.eml", "", []byte(msg))

		assert.Contains(t, res.Text, "Road closed.")
	})
}

func buildDOCX(t *testing.T, title string, paras ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, p := range paras {
		fmt.Fprintf(&body, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body.String() + `</w:body></w:document>`,
	}
	if title != "" {
		files["docProps/core.xml"] = `<?xml version="1.0" encoding="UTF-8"?>` +
			`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
			`<dc:title>` + title + `</dc:title></cp:coreProperties>`
	}
	return buildZip(t, []string{"[Content_Types].xml", "word/document.xml", "docProps/core.xml"}, files)
}

func buildPPTX(t *testing.T, slides ...string) []byte {
	t.Helper()

	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/></Types>`,
	}
	// Written in reverse so that archive order differs from slide order;
	// slide10 also sorts before slide2 lexically.
	order := []string{"[Content_Types].xml"}
	for i := len(slides) - 1; i >= 0; i-- {
		name := fmt.Sprintf("ppt/slides/slide%d.xml", i+1)
		if i == len(slides)-1 && len(slides) > 1 {
			name = "ppt/slides/slide10.xml"
		}
		text := strings.ReplaceAll(slides[i], "&", "&amp;")
		files[name] = `<?xml version="1.0" encoding="UTF-8"?>` +
			`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">` +
			`<p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
		order = append(order, name)
	}
	return buildZip(t, order, files)
}

func buildZip(t *testing.T, order []string, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		content, ok := files[name]
		if !ok {
			continue
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// buildPDF writes a single page PDF showing text in Helvetica.
func buildPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
