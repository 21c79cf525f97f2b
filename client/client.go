package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/serisow/docqa/pipeline_type"
)

const DefaultTimeout = 60 * time.Second

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
	Code       string
	RawBody    string
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Sprintf("Validation error: %s", e.describe())
	case e.StatusCode >= http.StatusInternalServerError:
		return fmt.Sprintf("Server error: %s", e.describe())
	default:
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.describe())
	}
}

func (e *APIError) describe() string {
	switch {
	case e.Message != "" && e.Detail != "":
		return e.Message + ": " + e.Detail
	case e.Message != "":
		return e.Message
	default:
		return e.RawBody
	}
}

type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *Client) Health(ctx context.Context) (*pipeline_type.HealthStatus, error) {
	var out pipeline_type.HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Info(ctx context.Context) (*pipeline_type.APIInfo, error) {
	var out pipeline_type.APIInfo
	if err := c.doJSON(ctx, http.MethodGet, "/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SummarizeText(ctx context.Context, req pipeline_type.SummarizeRequest) (*pipeline_type.SummarizeResponse, error) {
	var out pipeline_type.SummarizeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/summarize", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) QueryDocument(ctx context.Context, req pipeline_type.QueryRequest) (*pipeline_type.QueryResponse, error) {
	var out pipeline_type.QueryResponse
	if err := c.doJSON(ctx, http.MethodPost, "/query", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SummarizePDF uploads a PDF. maxLength is omitted when nil; an empty style lets
// the server pick its default.
func (c *Client) SummarizePDF(ctx context.Context, filename string, data []byte, maxLength *int, style string) (*pipeline_type.SummarizeResponse, error) {
	fields := map[string]string{}
	if maxLength != nil {
		fields["max_length"] = strconv.Itoa(*maxLength)
	}
	if style != "" {
		fields["style"] = style
	}

	var out pipeline_type.SummarizeResponse
	if err := c.doMultipart(ctx, "/summarize-pdf", filename, data, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) QueryPDF(ctx context.Context, filename string, data []byte, question string, includeSources bool) (*pipeline_type.QueryResponse, error) {
	fields := map[string]string{
		"question":        question,
		"include_sources": strconv.FormatBool(includeSources),
	}

	var out pipeline_type.QueryResponse
	if err := c.doMultipart(ctx, "/query-pdf", filename, data, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error marshaling request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) doMultipart(ctx context.Context, path, filename string, data []byte, fields map[string]string, out interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, RawBody: string(body)}
		var errResp pipeline_type.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil {
			apiErr.Message = errResp.Error
			apiErr.Detail = errResp.Detail
			apiErr.Code = errResp.ErrorCode
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}
	return nil
}
