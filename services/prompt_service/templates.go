package prompt_service

import (
	"fmt"
	"strings"
)

const (
	StyleConcise      = "concise"
	StyleDetailed     = "detailed"
	StyleBulletPoints = "bullet_points"
)

// Request is one of SummaryParams or AnswerParams.
type Request interface {
	isPromptRequest()
}

type SummaryParams struct {
	Text           string
	Style          string
	MaxLengthWords *int
}

type AnswerParams struct {
	Question       string
	Context        string
	IncludeSources bool
}

func (SummaryParams) isPromptRequest() {}
func (AnswerParams) isPromptRequest()  {}

type summaryTemplate struct {
	adjective    string
	instructions []string
	lengthLine   string
	closing      string
}

var summaryTemplates = map[string]summaryTemplate{
	StyleConcise: {
		adjective: "concise, accurate",
		instructions: []string{
			"Focus on the main ideas and key points",
			"Maintain the original meaning and context",
			"Use clear, professional language",
			"Avoid unnecessary details or repetition",
		},
		lengthLine: "Keep the summary to approximately %d words or less",
		closing:    "Summary:",
	},
	StyleDetailed: {
		adjective: "comprehensive, detailed",
		instructions: []string{
			"Include all major points and important details",
			"Organize information logically",
			"Maintain the structure and flow of the original text",
			"Use clear, professional language",
			"Include relevant examples or data points mentioned",
		},
		lengthLine: "Keep the summary to approximately %d words or less",
		closing:    "Detailed Summary:",
	},
	StyleBulletPoints: {
		adjective: "bullet-point",
		instructions: []string{
			"Extract key points and present them as bullet points",
			"Use clear, concise language for each point",
			"Organize points logically (chronologically or by importance)",
			"Each bullet point should be self-contained and meaningful",
		},
		lengthLine: "Limit to approximately %d words total across all bullet points",
		closing:    "Bullet Point Summary:\n•",
	},
}

var answerInstructions = []string{
	"Base your answer strictly on the information provided in the context",
	"If the context doesn't contain enough information to answer the question, clearly state this",
	"Be precise and factual in your responses",
	"Use direct quotes from the context when appropriate",
	"If asked about something not covered in the context, explain that the information is not available",
}

// NormalizeStyle returns style when it names a known template and StyleConcise otherwise.
func NormalizeStyle(style string) string {
	if _, ok := summaryTemplates[style]; ok {
		return style
	}
	return StyleConcise
}

// Render builds the final prompt for req. It is pure and never fails.
func Render(req Request) string {
	switch r := req.(type) {
	case SummaryParams:
		return RenderSummary(r)
	case *SummaryParams:
		return RenderSummary(*r)
	case AnswerParams:
		return RenderAnswer(r)
	case *AnswerParams:
		return RenderAnswer(*r)
	default:
		return ""
	}
}

func RenderSummary(p SummaryParams) string {
	tmpl := summaryTemplates[NormalizeStyle(p.Style)]

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert text summarizer. Your task is to create a %s summary of the provided text.\n\n", tmpl.adjective)
	b.WriteString("Instructions:\n")
	writeList(&b, tmpl.instructions)
	if p.MaxLengthWords != nil {
		b.WriteString("- ")
		fmt.Fprintf(&b, tmpl.lengthLine, *p.MaxLengthWords)
		b.WriteString("\n")
	}
	b.WriteString("\nText to summarize:\n")
	b.WriteString(p.Text)
	b.WriteString("\n\n")
	b.WriteString(tmpl.closing)
	return b.String()
}

func RenderAnswer(p AnswerParams) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant specialized in answering questions based on provided context. ")
	b.WriteString("Your task is to analyze the given context and provide accurate, helpful answers to user questions.\n\n")
	b.WriteString("Instructions:\n")
	writeList(&b, answerInstructions)
	if p.IncludeSources {
		b.WriteString("- Include references to specific parts of the context that support your answer\n")
	}
	b.WriteString("\nContext:\n")
	b.WriteString(p.Context)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(p.Question)
	b.WriteString("\n\n")
	if p.IncludeSources {
		b.WriteString("Please provide your answer and include source references where applicable.\n\n")
	}
	b.WriteString("Answer:")
	return b.String()
}

func writeList(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}
