package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/fwojciec/spyder"
	"golang.org/x/net/html/charset"
)

// emailDecoder reads RFC 5322 messages. The text/plain body is preferred;
// an HTML-only message goes through the HTML pipeline. Attachments are
// ignored.
type emailDecoder struct {
	html *htmlDecoder
}

var headerDecoder = &mime.WordDecoder{CharsetReader: charset.NewReaderLabel}

func (d *emailDecoder) decode(ctx context.Context, _ string, data []byte, _ string) (*spyder.LoadResult, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return nil, spyder.WrapError(spyder.EUNREADABLE, err, "read message")
	}

	subject := decodeHeader(msg.Header.Get("Subject"))

	var b strings.Builder
	for _, key := range []string{"Subject", "From", "To", "Date"} {
		if v := decodeHeader(msg.Header.Get(key)); v != "" {
			b.WriteString(key + ": " + v + "\n")
		}
	}

	var plain, html string
	if err := walkPart(messageHeader(msg.Header), msg.Body, &plain, &html); err != nil {
		return nil, spyder.WrapError(spyder.EUNREADABLE, err, "read message body")
	}

	body := plain
	if strings.TrimSpace(body) == "" && html != "" {
		res, err := d.html.convert(html, "")
		if err != nil {
			return nil, err
		}
		body = res.Text
	}
	if body != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(body))
	}
	return &spyder.LoadResult{Title: subject, Text: b.String()}, nil
}

// partHeader is the subset of MIME part headers the decoder reads.
type partHeader interface {
	Get(key string) string
}

type messageHeader mail.Header

func (h messageHeader) Get(key string) string {
	return mail.Header(h).Get(key)
}

// walkPart collects the first text/plain and text/html bodies of a part
// tree.
func walkPart(h partHeader, r io.Reader, plain, html *string) error {
	mediaType, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		mediaType, params = "text/plain", map[string]string{}
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(r, params["boundary"])
		for {
			p, err := mr.NextRawPart()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := walkPart(p.Header, p, plain, html); err != nil {
				return err
			}
		}
	}

	disposition, _, _ := mime.ParseMediaType(h.Get("Content-Disposition"))
	if disposition == "attachment" {
		return nil
	}
	if mediaType != "text/plain" && mediaType != "text/html" {
		return nil
	}

	raw, err := io.ReadAll(transferDecoder(h.Get("Content-Transfer-Encoding"), r))
	if err != nil {
		return err
	}
	text, err := decodeText(raw, h.Get("Content-Type"))
	if err != nil {
		return err
	}

	switch {
	case mediaType == "text/plain" && *plain == "":
		*plain = text
	case mediaType == "text/html" && *html == "":
		*html = text
	}
	return nil
}

func transferDecoder(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	}
	return r
}

func decodeHeader(v string) string {
	decoded, err := headerDecoder.DecodeHeader(v)
	if err != nil {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(decoded)
}
