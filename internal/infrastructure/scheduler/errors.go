package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when the cron expression cannot be parsed
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrAlreadyRunning is returned when Start is called twice
	ErrAlreadyRunning = errors.New("scheduler is already running")
)
