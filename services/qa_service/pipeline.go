package qa_service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/serisow/docqa/pipeline_type"
	"github.com/serisow/docqa/services/llm_service"
	"github.com/serisow/docqa/services/prompt_service"
)

const (
	MaxTextLength     = 50000
	MaxQuestionLength = 1000
	MinSummaryWords   = 10
	MaxSummaryWords   = 1000

	summarizeTemperature float32 = 0.3
	answerTemperature    float32 = 0.5
)

// Extractor is satisfied by *pdf_service.Extractor.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (*pipeline_type.ExtractedDocument, error)
}

// Generator is satisfied by *llm_service.Gateway.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts llm_service.GenerateOptions) (string, error)
}

// Source is either caller text or PDF bytes. Build it with TextSource or PDFSource.
type Source struct {
	kind pipeline_type.SourceType
	text string
	data []byte
}

func TextSource(text string) Source {
	return Source{kind: pipeline_type.SourceTypeText, text: text}
}

func PDFSource(data []byte) Source {
	return Source{kind: pipeline_type.SourceTypePDF, data: data}
}

func (s Source) Type() pipeline_type.SourceType {
	return s.kind
}

// Pipeline runs extract, render, generate and shape for one request. It holds no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	extractor Extractor
	generator Generator
	logger    *slog.Logger
}

func NewPipeline(extractor Extractor, generator Generator, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		generator: generator,
		logger:    logger,
	}
}

func (p *Pipeline) Summarize(ctx context.Context, source Source, style string, maxLengthWords *int) (*pipeline_type.SummarizeResponse, error) {
	if err := validateSource(source, "text"); err != nil {
		return nil, err
	}
	if err := ValidateMaxLength(maxLengthWords); err != nil {
		return nil, err
	}

	text, metadata, err := p.resolve(ctx, source)
	if err != nil {
		return nil, err
	}

	prompt := prompt_service.Render(prompt_service.SummaryParams{
		Text:           text,
		Style:          style,
		MaxLengthWords: maxLengthWords,
	})

	temperature := summarizeTemperature
	summary, err := p.generator.Generate(ctx, prompt, llm_service.GenerateOptions{Temperature: &temperature})
	if err != nil {
		return nil, err
	}

	originalLength := utf8.RuneCountInString(text)
	summaryLength := utf8.RuneCountInString(summary)

	p.logger.Info("Summary generated",
		slog.String("source_type", string(source.Type())),
		slog.String("style", prompt_service.NormalizeStyle(style)),
		slog.Int("original_length", originalLength),
		slog.Int("summary_length", summaryLength))

	return &pipeline_type.SummarizeResponse{
		Summary:          summary,
		OriginalLength:   originalLength,
		SummaryLength:    summaryLength,
		CompressionRatio: CompressionRatio(summaryLength, originalLength),
		SourceType:       source.Type(),
		PDFMetadata:      metadata,
	}, nil
}

func (p *Pipeline) Answer(ctx context.Context, question string, source Source, includeSources bool) (*pipeline_type.QueryResponse, error) {
	if err := ValidateQuestion(question); err != nil {
		return nil, err
	}
	if err := validateSource(source, "context"); err != nil {
		return nil, err
	}

	contextText, metadata, err := p.resolve(ctx, source)
	if err != nil {
		return nil, err
	}

	prompt := prompt_service.Render(prompt_service.AnswerParams{
		Question:       question,
		Context:        contextText,
		IncludeSources: includeSources,
	})

	temperature := answerTemperature
	answer, err := p.generator.Generate(ctx, prompt, llm_service.GenerateOptions{Temperature: &temperature})
	if err != nil {
		return nil, err
	}

	p.logger.Info("Answer generated",
		slog.String("source_type", string(source.Type())),
		slog.Int("question_length", utf8.RuneCountInString(question)),
		slog.Int("answer_length", utf8.RuneCountInString(answer)))

	resp := &pipeline_type.QueryResponse{
		Answer:      answer,
		SourceType:  source.Type(),
		PDFMetadata: metadata,
	}
	if includeSources {
		// Citations are never extracted; callers asking for them get an empty list.
		sources := []string{}
		resp.Sources = &sources
	}
	return resp, nil
}

// CompressionRatio is summaryLength/originalLength, or 0 when originalLength is 0.
func CompressionRatio(summaryLength, originalLength int) float64 {
	if originalLength == 0 {
		return 0
	}
	return float64(summaryLength) / float64(originalLength)
}

func (p *Pipeline) resolve(ctx context.Context, source Source) (string, *pipeline_type.DocumentMetadata, error) {
	if source.kind != pipeline_type.SourceTypePDF {
		return source.text, nil, nil
	}

	doc, err := p.extractor.Extract(ctx, source.data)
	if err != nil {
		return "", nil, err
	}
	metadata := doc.Metadata
	return doc.Text, &metadata, nil
}

// validateSource checks caller-supplied text. Extracted PDF text is not limited.
// ValidateQuestion checks a question before any document work is done.
func ValidateQuestion(question string) error {
	if strings.TrimSpace(question) == "" {
		return &ValidationError{Field: "question", Message: "must not be empty"}
	}
	if utf8.RuneCountInString(question) > MaxQuestionLength {
		return &ValidationError{
			Field:   "question",
			Message: fmt.Sprintf("must be at most %d characters", MaxQuestionLength),
		}
	}
	return nil
}

// ValidateMaxLength accepts nil (no limit) or a word count in range.
func ValidateMaxLength(maxLengthWords *int) error {
	if maxLengthWords != nil && (*maxLengthWords < MinSummaryWords || *maxLengthWords > MaxSummaryWords) {
		return &ValidationError{
			Field:   "max_length",
			Message: fmt.Sprintf("must be between %d and %d", MinSummaryWords, MaxSummaryWords),
		}
	}
	return nil
}

func validateSource(source Source, field string) error {
	switch source.kind {
	case pipeline_type.SourceTypeText:
		if strings.TrimSpace(source.text) == "" {
			return &ValidationError{Field: field, Message: "must not be empty"}
		}
		if utf8.RuneCountInString(source.text) > MaxTextLength {
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("must be at most %d characters", MaxTextLength),
			}
		}
	case pipeline_type.SourceTypePDF:
		if len(source.data) == 0 {
			return &ValidationError{Field: "file", Message: "must not be empty"}
		}
	default:
		return &ValidationError{Field: field, Message: "no source provided"}
	}
	return nil
}
