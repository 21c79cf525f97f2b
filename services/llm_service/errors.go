package llm_service

import (
	"errors"
	"fmt"
)

type GenerationKind int

const (
	// EmptyResponse means the model answered with no text after trimming.
	EmptyResponse GenerationKind = iota + 1
	// Failed covers transport and remote-side failures.
	Failed
)

func (k GenerationKind) String() string {
	switch k {
	case EmptyResponse:
		return "empty_response"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type GenerationError struct {
	Kind   GenerationKind
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	switch e.Kind {
	case EmptyResponse:
		return "empty response from model"
	default:
		return fmt.Sprintf("text generation failed: %s", e.Reason)
	}
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func IsGenerationKind(err error, kind GenerationKind) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr) && genErr.Kind == kind
}
