package audio

import "errors"

// ErrInvalidWindow indicates a chunk window that is not a positive number of seconds.
var ErrInvalidWindow = errors.New("chunk window must be positive")

// ErrInvalidDuration indicates a media duration that is negative or not a number.
var ErrInvalidDuration = errors.New("invalid media duration")

// ErrProbeFailed indicates ffprobe could not report a duration.
var ErrProbeFailed = errors.New("media probe failed")

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")
