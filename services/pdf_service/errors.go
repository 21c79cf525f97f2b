package pdf_service

import (
	"errors"
	"fmt"
)

// ErrLibraryUnavailable is returned by NewExtractor when no parsing backend is bound.
// It is fatal at startup.
var ErrLibraryUnavailable = errors.New("no PDF parsing backend available")

type ExtractionKind int

const (
	// NoText means no page yielded non-empty text.
	NoText ExtractionKind = iota + 1
	// OpenFailed means the bytes could not be read as a document.
	OpenFailed
)

func (k ExtractionKind) String() string {
	switch k {
	case NoText:
		return "no_text"
	case OpenFailed:
		return "open_failed"
	default:
		return "unknown"
	}
}

type ExtractionError struct {
	Kind ExtractionKind
	Err  error
}

func (e *ExtractionError) Error() string {
	switch e.Kind {
	case NoText:
		return "no text could be extracted from the PDF"
	case OpenFailed:
		return fmt.Sprintf("failed to open PDF: %v", e.Err)
	default:
		return fmt.Sprintf("PDF extraction failed: %v", e.Err)
	}
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IsExtractionKind reports whether err is an *ExtractionError of the given kind.
func IsExtractionKind(err error, kind ExtractionKind) bool {
	var extErr *ExtractionError
	return errors.As(err, &extErr) && extErr.Kind == kind
}
