package analyze

import "errors"

var (
	// ErrNoModel indicates no analysis model is configured.
	ErrNoModel = errors.New("analysis model not configured")

	// ErrEmptyPayload indicates the model returned no content.
	ErrEmptyPayload = errors.New("empty analysis payload")

	// ErrInvalidPayload indicates the content is not a JSON object.
	ErrInvalidPayload = errors.New("invalid analysis payload")
)
