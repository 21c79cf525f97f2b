package qa_service

import "fmt"

// ValidationError reports caller input rejected before any work is done.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
