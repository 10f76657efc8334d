package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrAPIKeyMissing indicates GROQ_API_KEY is not set.
	ErrAPIKeyMissing = errors.New("GROQ_API_KEY environment variable not set")

	// ErrNoInput indicates the root command ran without a video.
	ErrNoInput = errors.New("no input video given")

	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidNumber indicates a module or lesson number below 1.
	ErrInvalidNumber = errors.New("number must be at least 1")

	// ErrBatchFailed indicates that no video of a batch succeeded.
	ErrBatchFailed = errors.New("no video was processed successfully")
)
