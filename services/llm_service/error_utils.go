package llm_service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GeminiError is the error envelope returned by the Gemini API.
type GeminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type GeminiHttpError struct {
	StatusCode int
	Message    string
	Status     string
	RawBody    string
}

func (e *GeminiHttpError) Error() string {
	return fmt.Sprintf("Gemini API error (HTTP %d): %s (Status: %s)", e.StatusCode, e.Message, e.Status)
}

// extractGeminiErrorDetails reads a non-2xx response into a *GeminiHttpError.
func extractGeminiErrorDetails(resp *http.Response) *GeminiHttpError {
	httpErr := &GeminiHttpError{
		StatusCode: resp.StatusCode,
		Message:    "Unknown error",
		Status:     "UNKNOWN",
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return httpErr
	}
	httpErr.RawBody = string(body)

	var geminiErr GeminiError
	if err := json.Unmarshal(body, &geminiErr); err == nil && geminiErr.Error.Message != "" {
		httpErr.Message = geminiErr.Error.Message
		if geminiErr.Error.Status != "" {
			httpErr.Status = geminiErr.Error.Status
		}
	}

	return httpErr
}
