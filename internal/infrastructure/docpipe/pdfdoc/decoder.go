// Package pdfdoc decodes PDF bytes into pages: per-page plain text via
// ledongthuc/pdf, optional PNG rasters via go-fitz.
package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/insightlab/insight-reader/internal/core/domain"
)

const rasterConcurrency = 4

// Decode extracts one page per PDF page. Text extraction failures on a
// single page are soft (the page keeps empty text); a document that
// cannot be opened at all is a decode error.
func Decode(ctx context.Context, data []byte, renderImages bool) (pages []domain.Page, err error) {
	// ledongthuc/pdf panics on some malformed inputs instead of
	// returning an error; corrupt bytes must surface as a decode error.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	pages = make([]domain.Page, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		text := ""
		if !page.V.IsNull() {
			if extracted, textErr := page.GetPlainText(nil); textErr == nil {
				text = strings.TrimSpace(extracted)
			}
		}
		pages[i-1] = domain.Page{
			Number: i,
			Text:   text,
		}
	}

	if renderImages {
		renderRasters(ctx, data, pages)
	}
	return pages, nil
}

// renderRasters fills in PNG images for each page. Raster failures are
// soft: a page without an image is still a valid page.
func renderRasters(ctx context.Context, data []byte, pages []domain.Page) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return
	}
	defer doc.Close()

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(rasterConcurrency)

	// The fitz document is not safe for concurrent use; rendering is
	// sequential and only the PNG encoding fans out.
	for i := range pages {
		if ctx.Err() != nil {
			break
		}
		img, err := doc.Image(i)
		if err != nil {
			continue
		}
		group.Go(func() error {
			var buf bytes.Buffer
			if err := png.Encode(&buf, img); err != nil {
				return nil
			}
			pages[i].ImagePNG = buf.Bytes()
			return nil
		})
	}
	_ = group.Wait()
}
