package wages

import "errors"

var (
	ErrCapTypeNotFound = errors.New("cap type not found")
	ErrWorkerExists    = errors.New("worker already in roster")
)
