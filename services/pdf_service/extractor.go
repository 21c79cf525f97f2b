package pdf_service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/serisow/docqa/pipeline_type"
	"golang.org/x/sync/errgroup"
)

// Extractor turns uploaded PDF bytes into page-marked plain text and metadata.
type Extractor struct {
	backend Backend
	logger  *slog.Logger
}

func NewExtractor(backend Backend, logger *slog.Logger) (*Extractor, error) {
	if backend == nil {
		return nil, ErrLibraryUnavailable
	}
	return &Extractor{
		backend: backend,
		logger:  logger,
	}, nil
}

// Extract reads every page independently. A page that fails is logged and skipped;
// the call fails with NoText only when no page yields text. Metadata is best effort.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*pipeline_type.ExtractedDocument, error) {
	doc, err := e.backend.Open(data)
	if err != nil {
		e.logger.Error("Failed to open PDF",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return nil, &ExtractionError{Kind: OpenFailed, Err: err}
	}

	totalPages := doc.PageCount()
	e.logger.Debug("Starting PDF text extraction",
		slog.Int("total_pages", totalPages))

	var (
		blocks []string
		meta   map[string]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		blocks, err = e.extractPages(gctx, doc, totalPages)
		return err
	})
	g.Go(func() error {
		meta = e.extractMetadata(doc)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(blocks) == 0 {
		e.logger.Error("No text extracted from PDF",
			slog.Int("total_pages", totalPages))
		return nil, &ExtractionError{Kind: NoText}
	}

	text := strings.Join(blocks, "\n\n")
	metadata := buildMetadata(meta)
	metadata.TotalPages = totalPages
	metadata.PagesProcessed = len(blocks)
	metadata.TextLength = utf8.RuneCountInString(text)

	e.logger.Info("Successfully extracted text from PDF",
		slog.Int("total_pages", totalPages),
		slog.Int("pages_processed", metadata.PagesProcessed),
		slog.Int("total_text_length", metadata.TextLength))

	return &pipeline_type.ExtractedDocument{
		Text:     text,
		Metadata: metadata,
	}, nil
}

func (e *Extractor) extractPages(ctx context.Context, doc Document, totalPages int) ([]string, error) {
	var blocks []string
	for i := 0; i < totalPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := doc.PageText(i)
		if err != nil {
			e.logger.Warn("Failed to extract text from page",
				slog.Int("page_number", i+1),
				slog.String("error", err.Error()))
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			e.logger.Debug("Page has no text",
				slog.Int("page_number", i+1))
			continue
		}

		e.logger.Debug("Extracted text from page",
			slog.Int("page_number", i+1),
			slog.Int("text_length", len(text)))

		blocks = append(blocks, fmt.Sprintf("--- Page %d ---\n%s", i+1, text))
	}
	return blocks, nil
}

func (e *Extractor) extractMetadata(doc Document) map[string]string {
	meta, err := doc.Metadata()
	if err != nil {
		e.logger.Warn("Failed to extract PDF metadata",
			slog.String("error", err.Error()))
		return nil
	}
	return meta
}

// Validate is a cheap pre-check: the bytes open as a document and report a page count.
func (e *Extractor) Validate(data []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("PDF validation failed", slog.Any("panic", r))
			ok = false
		}
	}()

	doc, err := e.backend.Open(data)
	if err != nil {
		e.logger.Warn("PDF validation failed", slog.String("error", err.Error()))
		return false
	}
	pages := doc.PageCount()
	e.logger.Debug("PDF validated", slog.Int("total_pages", pages))
	return true
}

func buildMetadata(meta map[string]string) pipeline_type.DocumentMetadata {
	field := func(key string) *string {
		v, ok := meta[key]
		if !ok {
			return nil
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		return &v
	}
	return pipeline_type.DocumentMetadata{
		Title:            field(MetaTitle),
		Author:           field(MetaAuthor),
		Subject:          field(MetaSubject),
		Creator:          field(MetaCreator),
		Producer:         field(MetaProducer),
		CreationDate:     field(MetaCreationDate),
		ModificationDate: field(MetaModificationDate),
	}
}
