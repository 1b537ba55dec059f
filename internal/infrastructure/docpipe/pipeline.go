// Package docpipe converts raw artifact bytes into an ordered,
// 1-indexed page sequence, routing on the declared file extension.
package docpipe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/insightlab/insight-reader/internal/core/domain"
	"github.com/insightlab/insight-reader/internal/infrastructure/docpipe/pdfdoc"
	"github.com/insightlab/insight-reader/internal/infrastructure/docpipe/pptxdoc"
)

type Pipeline struct {
	logger       *slog.Logger
	renderImages bool
}

func New(logger *slog.Logger, renderImages bool) *Pipeline {
	return &Pipeline{
		logger:       logger,
		renderImages: renderImages,
	}
}

func (p *Pipeline) Ingest(ctx context.Context, data []byte, ext string) (*domain.Document, error) {
	var (
		pages []domain.Page
		err   error
	)

	switch strings.ToLower(ext) {
	case ".pdf":
		pages, err = pdfdoc.Decode(ctx, data, p.renderImages)
	case ".pptx", ".ppt":
		pages, err = pptxdoc.Decode(ctx, data)
	default:
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "ingest document", fmt.Errorf("extension %q", ext))
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrMalformedDocument, "decode document", err)
	}

	// Page numbers are assigned here, contiguous and position-matched,
	// regardless of what the decoder reported.
	for i := range pages {
		pages[i].Number = i + 1
	}

	p.logger.Info("document decoded", "file_type", ext, "total_pages", len(pages))

	return &domain.Document{
		Pages:      pages,
		TotalPages: len(pages),
	}, nil
}
