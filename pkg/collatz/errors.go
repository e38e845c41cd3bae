package collatz

import "errors"

var (
	// ErrInvalidConfiguration is returned for a bad range, floor, step bound
	// or partition count. Nothing has been computed when it is returned.
	ErrInvalidConfiguration = errors.New("collatz: invalid configuration")

	// ErrNonTerminatingTrajectory is returned when a trajectory does not drop
	// below the floor within the step bound, or would overflow int64.
	ErrNonTerminatingTrajectory = errors.New("collatz: non-terminating trajectory")

	// ErrInvariantViolation signals a record that breaks a structural rule,
	// such as a path that never reaches 1 or a vertebra that is not a power of two.
	ErrInvariantViolation = errors.New("collatz: invariant violation")
)
