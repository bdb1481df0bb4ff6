package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/fwojciec/spyder"
)

// decodeCSV renders each record as "header: value" lines. Records are
// separated by blank lines so every chunk carries its column names.
func decodeCSV(_ context.Context, _ string, data []byte, contentType string) (*spyder.LoadResult, error) {
	text, err := decodeText(data, contentType)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return &spyder.LoadResult{}, nil
	}
	if err != nil {
		return nil, spyder.WrapError(spyder.EUNREADABLE, err, "read csv header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var b strings.Builder
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, spyder.WrapError(spyder.EUNREADABLE, err, "read csv")
		}

		if b.Len() > 0 {
			b.WriteString("\n")
		}
		for i, value := range record {
			key := ""
			if i < len(header) {
				key = header[i]
			}
			b.WriteString(key)
			b.WriteString(": ")
			b.WriteString(strings.TrimSpace(value))
			b.WriteString("\n")
		}
	}
	return &spyder.LoadResult{Text: b.String()}, nil
}
