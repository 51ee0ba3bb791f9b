package books

import (
	"github.com/pkg/errors"
	"github.com/shelfmark/shelfmark/pkg/errcodes"
)

// Sentinels for the ways a book write can fail. Check them with errors.Is;
// the returned errors also render as the matching HTTP error.
var (
	ErrValidation          = errors.New("invalid book")
	ErrMetadataUnavailable = errors.New("book metadata unavailable")
	ErrMalformedMetadata   = errors.New("book metadata malformed")
	ErrConflict            = errors.New("book conflicts with an existing book")
)

// PipelineError pairs a sentinel with the HTTP error shown to clients and the
// underlying cause, if any.
type PipelineError struct {
	Kind  error
	HTTP  error
	Cause error
}

func (e *PipelineError) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Cause.Error()
}

func (e *PipelineError) Is(target error) bool {
	return target == e.Kind
}

func (e *PipelineError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.HTTP}
	}
	return []error{e.HTTP, e.Cause}
}

func validationError(msg string) error {
	return &PipelineError{Kind: ErrValidation, HTTP: errcodes.ValidationError(msg)}
}

func metadataUnavailableError(cause error) error {
	return &PipelineError{
		Kind:  ErrMetadataUnavailable,
		HTTP:  errcodes.MetadataUnavailable("The book's metadata could not be fetched."),
		Cause: cause,
	}
}

func malformedMetadataError(msg string) error {
	return &PipelineError{
		Kind: ErrMalformedMetadata,
		HTTP: errcodes.MalformedMetadata(msg),
	}
}

func conflictError(cause error) error {
	return &PipelineError{
		Kind:  ErrConflict,
		HTTP:  errcodes.Conflict("A book with this URL or slug already exists."),
		Cause: cause,
	}
}
