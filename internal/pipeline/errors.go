package pipeline

import "errors"

var (
	// ErrUnknownStrategy is returned when a selection names no registered strategy.
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrNoStrategies is returned when a pipeline has nothing to run.
	ErrNoStrategies = errors.New("no strategies to run")
)
