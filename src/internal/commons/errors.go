package commons

import "errors"

// ErrValidation marks a malformed request rejected before it reaches the domain.
var ErrValidation = errors.New("validation failed")
