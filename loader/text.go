package loader

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/spyder"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText converts data to UTF-8 with normalized line endings. Invalid
// UTF-8 is transcoded from the charset named by contentType, declared in an
// HTML meta tag, or guessed from the content.
func decodeText(data []byte, contentType string) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		enc, name, _ := charset.DetermineEncoding(data, contentType)
		decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
		if err != nil {
			return "", spyder.WrapError(spyder.EUNREADABLE, err, "transcode from %s", name)
		}
		data = decoded
	}
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n"), nil
}

func decodePlain(_ context.Context, _ string, data []byte, contentType string) (*spyder.LoadResult, error) {
	text, err := decodeText(data, contentType)
	if err != nil {
		return nil, err
	}
	return &spyder.LoadResult{Text: text}, nil
}

func decodeMarkdown(_ context.Context, _ string, data []byte, contentType string) (*spyder.LoadResult, error) {
	text, err := decodeText(data, contentType)
	if err != nil {
		return nil, err
	}
	return &spyder.LoadResult{Title: spyder.TitleFromContent(text), Text: text}, nil
}
