package lesson

import "errors"

var (
	// ErrDirNotFound indicates the videos directory does not exist.
	ErrDirNotFound = errors.New("videos directory not found")

	// ErrNoVideos indicates the directory holds no video files.
	ErrNoVideos = errors.New("no videos found")

	// ErrLedger indicates the processed-video ledger could not be reached.
	ErrLedger = errors.New("ledger unavailable")
)
