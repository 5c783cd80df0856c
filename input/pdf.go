package input

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LoadPDF extracts plain text from a local PDF file, page by page, in
// reading order. Grounded on the teacher's parser.PDFParser /
// extractPageTextOrdered (github.com/ledongthuc/pdf), simplified to a flat
// text concatenation since the extraction core has no notion of document
// sections the way the teacher's RAG ingestion pipeline does.
func LoadPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", errors.Join(ErrUnreadable, err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := extractPageTextOrdered(page)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n\n"), nil
}

// extractPageTextOrdered groups a page's text fragments into visual lines
// by Y proximity and emits them top to bottom, preserving content-stream
// order within a line. Ported from the teacher's parser.pdf.go, which
// found sorting fragments by X alone garbles text in PDFs using negative
// text matrices.
func extractPageTextOrdered(page pdf.Page) (string, error) {
	content := page.Content()
	if len(content.Text) == 0 {
		return page.GetPlainText(nil)
	}

	const lineTolerance = 3.0

	type visualLine struct {
		y   float64
		buf strings.Builder
	}

	var lines []*visualLine
	var cur *visualLine

	for _, t := range content.Text {
		if cur == nil || math.Abs(t.Y-cur.y) > lineTolerance {
			lines = append(lines, &visualLine{y: t.Y})
			cur = lines[len(lines)-1]
		}
		cur.buf.WriteString(t.S)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].y > lines[j].y
	})

	var parts []string
	for _, l := range lines {
		text := strings.TrimSpace(l.buf.String())
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}
