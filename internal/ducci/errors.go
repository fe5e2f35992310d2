package ducci

import (
	"errors"
	"fmt"
	"math"
)

const maxComponent = math.MaxInt8

// Sentinel errors for a single search. Any of them aborts the search of the
// starting quadruple; no partial result is returned with them.
var (
	// ErrOverflow is returned when a difference does not fit in a component.
	ErrOverflow = errors.New("component overflow")

	// ErrDepthExceeded is returned when a branch gets deeper than
	// Explorer.MaxDepth.
	ErrDepthExceeded = errors.New("search depth exceeded")

	// ErrNodeLimit is returned when a search steps more states than
	// Explorer.MaxNodes.
	ErrNodeLimit = errors.New("search node limit exceeded")

	// ErrInvariant is returned when a recorded leaf is not terminal.
	ErrInvariant = errors.New("non-terminal leaf")
)

func overflowError(q Quadruple) error {
	return fmt.Errorf("%w: stepping %v", ErrOverflow, q)
}
