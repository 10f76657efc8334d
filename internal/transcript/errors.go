package transcript

import "errors"

// ErrOutOfOrder indicates stitched words or segments are not time-ordered.
var ErrOutOfOrder = errors.New("timestamps out of order")
