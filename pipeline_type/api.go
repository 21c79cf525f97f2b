package pipeline_type

// Request and response bodies of the HTTP API.

type SummarizeRequest struct {
	Text      string `json:"text"`
	MaxLength *int   `json:"max_length,omitempty"`
	Style     string `json:"style,omitempty"`
}

type QueryRequest struct {
	Question       string `json:"question"`
	Context        string `json:"context"`
	IncludeSources bool   `json:"include_sources,omitempty"`
}

type SummarizeResponse struct {
	Summary          string            `json:"summary"`
	OriginalLength   int               `json:"original_length"`
	SummaryLength    int               `json:"summary_length"`
	CompressionRatio float64           `json:"compression_ratio"`
	SourceType       SourceType        `json:"source_type"`
	PDFMetadata      *DocumentMetadata `json:"pdf_metadata,omitempty"`
}

// QueryResponse carries the answer to a question. Confidence is never computed and
// always serialises as null. Sources is an empty list when the caller asked for
// sources and is omitted otherwise.
type QueryResponse struct {
	Answer      string            `json:"answer"`
	Confidence  *float64          `json:"confidence"`
	Sources     *[]string         `json:"sources,omitempty"`
	SourceType  SourceType        `json:"source_type"`
	PDFMetadata *DocumentMetadata `json:"pdf_metadata,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

type APIInfo struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
