package jobs

import "errors"

var (
	ErrUnknownJob = errors.New("unknown job type")
	ErrQueueFull  = errors.New("job queue full")
	ErrRunMissing = errors.New("job run not found")
)
