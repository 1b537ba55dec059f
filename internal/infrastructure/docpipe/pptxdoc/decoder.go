// Package pptxdoc decodes PowerPoint bytes into pages using the
// tabula pptx reader: one page per slide, with title, body text and
// speaker notes.
package pptxdoc

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tsawler/tabula/pptx"

	"github.com/insightlab/insight-reader/internal/core/domain"
)

// Decode parses the slide deck. The pptx reader works on files, so the
// bytes are staged through a temp file for the duration of the parse.
func Decode(ctx context.Context, data []byte) ([]domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "insight-*.pptx")
	if err != nil {
		return nil, fmt.Errorf("stage pptx: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("stage pptx: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("stage pptx: %w", err)
	}

	reader, err := pptx.Open(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}
	defer reader.Close()

	total := reader.SlideCount()
	pages := make([]domain.Page, 0, total)
	for i := 0; i < total; i++ {
		slide, err := reader.Slide(i)
		if err != nil {
			return nil, fmt.Errorf("read slide %d: %w", i+1, err)
		}
		pages = append(pages, domain.Page{
			Number: i + 1,
			Title:  strings.TrimSpace(slide.Title),
			Text:   strings.TrimSpace(slide.GetText()),
			Notes:  strings.TrimSpace(slide.Notes),
		})
	}
	return pages, nil
}
