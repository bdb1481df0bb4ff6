package spyder

import (
	"fmt"
	"unicode/utf8"
)

// Chunk is a window of a document's text prepared for embedding.
// Offset and the window length are measured in characters (code points).
type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"documentId"`
	Index      int    `json:"index"`
	Offset     int    `json:"offset"`
	Content    string `json:"content"`
}

// Len returns the chunk length in characters.
func (c *Chunk) Len() int {
	return utf8.RuneCountInString(c.Content)
}

// Splitter cuts documents into fixed-size character windows.
// Consecutive windows share Overlap characters.
type Splitter struct {
	Size    int `yaml:"size" json:"size"`
	Overlap int `yaml:"overlap" json:"overlap"`
}

// Validate returns ECONFIG unless 0 <= Overlap < Size.
func (s Splitter) Validate() error {
	if s.Size <= 0 {
		return Errorf(ECONFIG, "textsplitter size must be positive, got %d", s.Size)
	}
	if s.Overlap < 0 {
		return Errorf(ECONFIG, "textsplitter overlap must not be negative, got %d", s.Overlap)
	}
	if s.Overlap >= s.Size {
		return Errorf(ECONFIG, "textsplitter overlap (%d) must be smaller than size (%d)", s.Overlap, s.Size)
	}
	return nil
}

// Fingerprint identifies the splitter settings. Entries produced under
// different settings never share identifiers.
func (s Splitter) Fingerprint() string {
	return fmt.Sprintf("size=%d,overlap=%d", s.Size, s.Overlap)
}

// Split returns the chunks of doc in order. Windows start every
// Size-Overlap characters; the last window may be shorter and no window
// starts past the one that reaches the end of the text. Chunk IDs are left
// empty; see EntryID.
func (s Splitter) Split(doc *Document) ([]*Chunk, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if doc.Content == "" {
		return nil, nil
	}

	// Byte offset of every rune, plus the end of the text.
	starts := make([]int, 0, len(doc.Content)+1)
	for i := range doc.Content {
		starts = append(starts, i)
	}
	n := len(starts)
	starts = append(starts, len(doc.Content))

	stride := s.Size - s.Overlap
	chunks := make([]*Chunk, 0, n/stride+1)
	for offset := 0; ; offset += stride {
		end := min(offset+s.Size, n)
		chunks = append(chunks, &Chunk{
			DocumentID: doc.ID,
			Index:      len(chunks),
			Offset:     offset,
			Content:    doc.Content[starts[offset]:starts[end]],
		})
		if end == n {
			break
		}
	}
	return chunks, nil
}
