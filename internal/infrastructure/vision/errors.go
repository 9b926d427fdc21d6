package vision

import "errors"

// ErrGoCVDisabled is returned by every adapter in builds without the gocv tag.
var ErrGoCVDisabled = errors.New("gocv build tag is not enabled")
