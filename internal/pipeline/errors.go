package pipeline

import "errors"

var (
	// ErrNothingTranscribed indicates that no chunk produced a result.
	// The returned Result is still complete and may be persisted.
	ErrNothingTranscribed = errors.New("no chunk was transcribed")

	// ErrIllegalTransition indicates a chunk state machine violation.
	ErrIllegalTransition = errors.New("illegal chunk state transition")
)
