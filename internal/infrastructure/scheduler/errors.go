package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when a scheduled-only operation is
	// called on a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrInvalidConfig is returned when the cron expression cannot be parsed
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
