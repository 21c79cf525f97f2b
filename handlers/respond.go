package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/serisow/docqa/pipeline_type"
)

const (
	CodeValidation       = "validation_error"
	CodeInvalidFile      = "invalid_file"
	CodeExtractionFailed = "extraction_failed"
	CodeGenerationFailed = "generation_failed"
	CodeInternal         = "internal_error"
)

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, statusCode int, message, detail, code string) {
	writeJSON(w, statusCode, pipeline_type.ErrorResponse{
		Error:     message,
		Detail:    detail,
		ErrorCode: code,
	})
}
