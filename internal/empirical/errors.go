package empirical

import "errors"

var (
	ErrInvalidSelection = errors.New("empirical: select 1 or 2 variables")
	ErrUnknownColumn    = errors.New("empirical: column not in sample table")
	ErrNoSamples        = errors.New("empirical: not enough samples")
)
