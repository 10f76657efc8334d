package report

import "errors"

// ErrBadPattern indicates a directory pattern that cannot be rendered.
var ErrBadPattern = errors.New("invalid directory pattern")
