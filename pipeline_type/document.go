package pipeline_type

// DocumentMetadata describes an uploaded PDF. The descriptive fields are optional and
// stay nil when the document does not carry them or they could not be read.
type DocumentMetadata struct {
	Title            *string `json:"title"`
	Author           *string `json:"author"`
	Subject          *string `json:"subject"`
	Creator          *string `json:"creator"`
	Producer         *string `json:"producer"`
	CreationDate     *string `json:"creation_date"`
	ModificationDate *string `json:"modification_date"`
	TotalPages       int     `json:"total_pages"`
	PagesProcessed   int     `json:"pages_processed"`
	TextLength       int     `json:"text_length"`
}

// ExtractedDocument is the result of reading a PDF. It lives for a single request.
type ExtractedDocument struct {
	Text     string
	Metadata DocumentMetadata
}

type SourceType string

const (
	SourceTypeText SourceType = "text"
	SourceTypePDF  SourceType = "pdf"
)
