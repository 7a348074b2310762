package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBodies indicates a simulator constructed without bodies.
	ErrNoBodies = errors.New("sim: no bodies")

	// ErrInvalidConfig indicates a rejected simulator configuration.
	ErrInvalidConfig = errors.New("sim: invalid configuration")

	// ErrInvalidState indicates a body position or velocity became NaN or Inf.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")
)

// SimulationError wraps a failed step with the pair of bodies involved.
// J is -1 when the failure is not tied to a single partner.
type SimulationError struct {
	Step    int
	Time    float64
	I, J    int
	Names   [2]string
	Wrapped error
}

func (e *SimulationError) Error() string {
	if e.J < 0 {
		return fmt.Sprintf("step %d (t=%.0fs): body %d (%s): %v", e.Step, e.Time, e.I, e.Names[0], e.Wrapped)
	}
	return fmt.Sprintf("step %d (t=%.0fs): bodies %d (%s) and %d (%s): %v",
		e.Step, e.Time, e.I, e.Names[0], e.J, e.Names[1], e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.0fs): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error {
	return ErrInvalidState
}
