package roster

import "errors"

var ErrProfileNotFound = errors.New("worker profile not found")
