package nbody

import "errors"

var (
	// ErrParameterBounds indicates a generation or step parameter outside its valid range.
	ErrParameterBounds = errors.New("nbody: parameter out of valid bounds")

	// ErrZeroBaseline indicates an energy deviation requested against a zero baseline.
	ErrZeroBaseline = errors.New("nbody: energy deviation undefined for zero baseline")

	// ErrEmpty indicates an operation that needs at least one particle.
	ErrEmpty = errors.New("nbody: simulation holds no particles")
)
