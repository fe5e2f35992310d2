package ducci

// Convergence names the terminal shape a state matched.
type Convergence uint8

const (
	ConvergenceNone Convergence = iota
	ConvergenceZero
	ConvergenceChecker
	ConvergenceLadder
)

func (c Convergence) String() string {
	switch c {
	case ConvergenceZero:
		return "zero"
	case ConvergenceChecker:
		return "checker"
	case ConvergenceLadder:
		return "ladder"
	}
	return "none"
}

// isZero matches (0,0,0,0).
func (q Quadruple) isZero() bool {
	return q == Quadruple{}
}

// isChecker matches (0,a,0,a) in this exact orientation.
func (q Quadruple) isChecker() bool {
	return q[0] == 0 && q[2] == 0 && q[1] == q[3]
}

// isLadder matches (0,a,2a,a) in this exact orientation.
func (q Quadruple) isLadder() bool {
	return q[0] == 0 && int(q[2]) == 2*int(q[1]) && q[3] == q[1]
}

// Classify reports which terminal shape q has, checking the checker and
// ladder shapes in every rotation. Zero takes precedence, then the first
// rotation that matches; checker is tested before ladder on each rotation.
func (q Quadruple) Classify() Convergence {
	if q.isZero() {
		return ConvergenceZero
	}

	for r := range q.Rotations() {
		if r.isChecker() {
			return ConvergenceChecker
		}
		if r.isLadder() {
			return ConvergenceLadder
		}
	}

	return ConvergenceNone
}

func (q Quadruple) IsTerminal() bool {
	return q.Classify() != ConvergenceNone
}
