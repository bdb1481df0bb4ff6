package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/spyder"
)

// decodeDOCX extracts the paragraphs of a Word document, tables included.
func decodeDOCX(_ context.Context, _ string, data []byte, _ string) (*spyder.LoadResult, error) {
	zr, err := openZip(data)
	if err != nil {
		return nil, err
	}

	doc, err := readXML(zr, "word/document.xml")
	if err != nil {
		return nil, err
	}
	return &spyder.LoadResult{
		Title: coreTitle(zr),
		Text:  strings.Join(paragraphs(doc.Root()), "\n"),
	}, nil
}

// decodePPTX extracts the text of every slide in slide order. Slides are
// separated by blank lines.
func decodePPTX(_ context.Context, _ string, data []byte, _ string) (*spyder.LoadResult, error) {
	zr, err := openZip(data)
	if err != nil {
		return nil, err
	}

	type slide struct {
		num  int
		name string
	}
	var slides []slide
	for _, f := range zr.File {
		rest, ok := strings.CutPrefix(f.Name, "ppt/slides/slide")
		if !ok {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(rest, ".xml"))
		if err != nil || !strings.HasSuffix(rest, ".xml") {
			continue
		}
		slides = append(slides, slide{num: num, name: f.Name})
	}
	slices.SortFunc(slides, func(a, b slide) int { return a.num - b.num })

	texts := make([]string, 0, len(slides))
	for _, s := range slides {
		doc, err := readXML(zr, s.name)
		if err != nil {
			return nil, err
		}
		if paras := paragraphs(doc.Root()); len(paras) > 0 {
			texts = append(texts, strings.Join(paras, "\n"))
		}
	}
	return &spyder.LoadResult{
		Title: coreTitle(zr),
		Text:  strings.Join(texts, "\n\n"),
	}, nil
}

func openZip(data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, spyder.WrapError(spyder.EUNREADABLE, err, "open office archive")
	}
	return zr, nil
}

func readXML(zr *zip.Reader, name string) (*etree.Document, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, spyder.WrapError(spyder.EUNREADABLE, err, "missing %s", name)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, spyder.WrapError(spyder.EUNREADABLE, err, "read %s", name)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, spyder.WrapError(spyder.EUNREADABLE, err, "parse %s", name)
	}
	if doc.Root() == nil {
		return nil, spyder.Errorf(spyder.EUNREADABLE, "empty %s", name)
	}
	return doc, nil
}

// coreTitle returns the title from the package properties, if any.
func coreTitle(zr *zip.Reader) string {
	doc, err := readXML(zr, "docProps/core.xml")
	if err != nil {
		return ""
	}
	if el := doc.FindElement("//title"); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

// paragraphs returns the non-empty text of every <p> element below root.
// Word (w:p) and DrawingML (a:p) paragraphs share the local name.
func paragraphs(root *etree.Element) []string {
	var out []string
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, c := range el.ChildElements() {
			if c.Tag == "p" {
				var b strings.Builder
				runText(c, &b)
				if t := strings.TrimSpace(b.String()); t != "" {
					out = append(out, t)
				}
				continue
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

func runText(el *etree.Element, b *strings.Builder) {
	for _, c := range el.ChildElements() {
		switch c.Tag {
		case "t":
			b.WriteString(c.Text())
		case "tab":
			b.WriteString("\t")
		case "br", "cr":
			b.WriteString("\n")
		default:
			runText(c, b)
		}
	}
}
