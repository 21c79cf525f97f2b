package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/serisow/docqa/pipeline_type"
	"github.com/serisow/docqa/services/llm_service"
	"github.com/serisow/docqa/services/pdf_service"
	"github.com/serisow/docqa/services/qa_service"
)

// QAService is satisfied by *qa_service.Pipeline.
type QAService interface {
	Summarize(ctx context.Context, source qa_service.Source, style string, maxLengthWords *int) (*pipeline_type.SummarizeResponse, error)
	Answer(ctx context.Context, question string, source qa_service.Source, includeSources bool) (*pipeline_type.QueryResponse, error)
}

// PDFValidator is satisfied by *pdf_service.Extractor.
type PDFValidator interface {
	Validate(data []byte) bool
}

type Config struct {
	AppName    string
	AppVersion string
	// Debug exposes underlying error details in 500 responses.
	Debug          bool
	MaxUploadBytes int64
}

type QAHandler struct {
	service   QAService
	validator PDFValidator
	config    Config
	logger    *slog.Logger
}

func NewQAHandler(service QAService, validator PDFValidator, config Config, logger *slog.Logger) *QAHandler {
	return &QAHandler{
		service:   service,
		validator: validator,
		config:    config,
		logger:    logger,
	}
}

func (h *QAHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pipeline_type.APIInfo{
		Name:    h.config.AppName,
		Version: h.config.AppVersion,
		Status:  "running",
		Endpoints: map[string]string{
			"summarize":     "/summarize",
			"summarize_pdf": "/summarize-pdf",
			"query":         "/query",
			"query_pdf":     "/query-pdf",
			"health":        "/health",
		},
	})
}

func (h *QAHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pipeline_type.HealthStatus{
		Status:  "healthy",
		Service: "ai-document-qa-system",
	})
}

func (h *QAHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req pipeline_type.SummarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Summarize(r.Context(), qa_service.TextSource(req.Text), req.Style, req.MaxLength)
	if err != nil {
		h.handleError(w, "Summarization failed", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *QAHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req pipeline_type.QueryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Answer(r.Context(), req.Question, qa_service.TextSource(req.Context), req.IncludeSources)
	if err != nil {
		h.handleError(w, "Query processing failed", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *QAHandler) SummarizePDF(w http.ResponseWriter, r *http.Request) {
	if !h.parseUploadForm(w, r) {
		return
	}

	maxLength, err := formInt(r, "max_length")
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "Invalid form field", err.Error(), CodeValidation)
		return
	}
	if err := qa_service.ValidateMaxLength(maxLength); err != nil {
		h.handleError(w, "PDF summarization failed", err)
		return
	}
	style := r.FormValue("style")
	if style == "" {
		style = "concise"
	}

	data, ok := h.readPDFFile(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Summarize(r.Context(), qa_service.PDFSource(data), style, maxLength)
	if err != nil {
		h.handleError(w, "PDF summarization failed", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *QAHandler) QueryPDF(w http.ResponseWriter, r *http.Request) {
	if !h.parseUploadForm(w, r) {
		return
	}

	question := r.FormValue("question")
	if err := qa_service.ValidateQuestion(question); err != nil {
		h.handleError(w, "PDF query processing failed", err)
		return
	}
	includeSources, err := formBool(r, "include_sources")
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "Invalid form field", err.Error(), CodeValidation)
		return
	}

	data, ok := h.readPDFFile(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Answer(r.Context(), question, qa_service.PDFSource(data), includeSources)
	if err != nil {
		h.handleError(w, "PDF query processing failed", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseUploadForm parses the size-bounded multipart form. Like readPDFFile it writes
// the error response itself and reports false when the request must stop.
func (h *QAHandler) parseUploadForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes+multipartOverhead)

	if err := r.ParseMultipartForm(h.config.MaxUploadBytes); err != nil {
		if isTooLarge(err) {
			writeJSONError(w, http.StatusBadRequest, "File too large",
				fmt.Sprintf("maximum upload size is %d bytes", h.config.MaxUploadBytes), CodeInvalidFile)
			return false
		}
		writeJSONError(w, http.StatusUnprocessableEntity, "Failed to parse multipart form", err.Error(), CodeValidation)
		return false
	}
	return true
}

// readPDFFile returns the bytes of the parsed form's "file" part once it passes the
// extension, size and Validate checks.
func (h *QAHandler) readPDFFile(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "Failed to get file from form", err.Error(), CodeValidation)
		return nil, false
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		h.logger.Warn("Rejected non-PDF upload", slog.String("filename", header.Filename))
		writeJSONError(w, http.StatusBadRequest, "Only PDF files are supported", "", CodeInvalidFile)
		return nil, false
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to read file", h.detail(err), CodeInternal)
		return nil, false
	}
	if int64(buf.Len()) > h.config.MaxUploadBytes {
		writeJSONError(w, http.StatusBadRequest, "File too large",
			fmt.Sprintf("maximum upload size is %d bytes", h.config.MaxUploadBytes), CodeInvalidFile)
		return nil, false
	}

	h.logger.Info("PDF upload received",
		slog.String("filename", header.Filename),
		slog.Int("size", buf.Len()))

	if !h.validator.Validate(buf.Bytes()) {
		writeJSONError(w, http.StatusBadRequest, "Invalid PDF file", "", CodeInvalidFile)
		return nil, false
	}

	return buf.Bytes(), true
}

// handleError translates pipeline errors into the HTTP error convention.
func (h *QAHandler) handleError(w http.ResponseWriter, message string, err error) {
	var (
		validationErr *qa_service.ValidationError
		extractionErr *pdf_service.ExtractionError
		generationErr *llm_service.GenerationError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSONError(w, http.StatusUnprocessableEntity, "Validation error", validationErr.Error(), CodeValidation)
	case errors.As(err, &extractionErr):
		h.logger.Error("PDF processing failed", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusBadRequest, "PDF processing failed", extractionErr.Error(), CodeExtractionFailed)
	case errors.As(err, &generationErr):
		h.logger.Error(message, slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, message, h.detail(err), CodeGenerationFailed)
	default:
		h.logger.Error(message, slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, message, h.detail(err), CodeInternal)
	}
}

func (h *QAHandler) detail(err error) string {
	if h.config.Debug {
		return err.Error()
	}
	return "An unexpected error occurred"
}

// multipartOverhead leaves room for boundaries and form fields around the file part.
const multipartOverhead = 1 << 20

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

// maxJSONBodyBytes bounds /summarize and /query bodies. It fits the 50000 character
// text limit even when every character is a \u-escaped surrogate pair.
const maxJSONBodyBytes = 1 << 20

// decodeJSON writes a 422 and reports false when the body is malformed or too large.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if isTooLarge(err) {
			writeJSONError(w, http.StatusUnprocessableEntity, "Request body too large",
				fmt.Sprintf("maximum request size is %d bytes", maxJSONBodyBytes), CodeValidation)
			return false
		}
		writeJSONError(w, http.StatusUnprocessableEntity, "Invalid request body",
			fmt.Sprintf("malformed JSON: %v", err), CodeValidation)
		return false
	}
	return true
}

func formInt(r *http.Request, key string) (*int, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &v, nil
}

func formBool(r *http.Request, key string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(r.FormValue(key))) {
	case "", "false", "0", "no", "off", "f", "n":
		return false, nil
	case "true", "1", "yes", "on", "t", "y":
		return true, nil
	default:
		return false, fmt.Errorf("%s must be a boolean", key)
	}
}
