package physics

import "errors"

var (
	// ErrDegenerateSeparation indicates two bodies too close for the force law to be evaluated.
	ErrDegenerateSeparation = errors.New("physics: degenerate separation between bodies")

	// ErrInvalidBody indicates body parameters rejected at construction.
	ErrInvalidBody = errors.New("physics: invalid body parameters")
)
