// Package ducci searches the swap-branching Ducci map on four integers.
package ducci

import (
	"iter"
	"strconv"
)

// Quadruple is one state of the search. It is a plain value: every operation
// returns a new Quadruple and never modifies its receiver.
type Quadruple [4]int8

func (q Quadruple) String() string {
	result := make([]byte, 0, 16)
	result = append(result, '(')
	for i, v := range q {
		if i != 0 {
			result = append(result, ',')
		}
		result = strconv.AppendInt(result, int64(v), 10)
	}
	return string(append(result, ')'))
}

// Step returns the cyclic absolute differences (|a-b|, |b-c|, |c-d|, |d-a|).
// Every difference must fit in an int8; Explorer checks this with checkedStep.
func (q Quadruple) Step() Quadruple {
	return Quadruple{
		int8(absDiff(q[0], q[1])),
		int8(absDiff(q[1], q[2])),
		int8(absDiff(q[2], q[3])),
		int8(absDiff(q[3], q[0])),
	}
}

func (q Quadruple) checkedStep() (Quadruple, error) {
	for i := range q {
		if absDiff(q[i], q[(i+1)%4]) > maxComponent {
			return Quadruple{}, overflowError(q)
		}
	}
	return q.Step(), nil
}

func absDiff(a, b int8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

// Swaps returns the two branches of a non-terminal state: positions 0 and 1
// exchanged, then positions 1 and 2 exchanged.
func (q Quadruple) Swaps() [2]Quadruple {
	return [2]Quadruple{
		{q[1], q[0], q[2], q[3]},
		{q[0], q[2], q[1], q[3]},
	}
}

// rotate shifts every value one slot forward: (a,b,c,d) -> (d,a,b,c).
func (q Quadruple) rotate() Quadruple {
	return Quadruple{q[3], q[0], q[1], q[2]}
}

// Rotate applies rotate k times. Negative k rotates backwards.
func (q Quadruple) Rotate(k int) Quadruple {
	for range ((k % 4) + 4) % 4 {
		q = q.rotate()
	}
	return q
}

// Rotations yields q rotated by 0, 1, 2 and 3 slots.
func (q Quadruple) Rotations() iter.Seq[Quadruple] {
	return func(yield func(Quadruple) bool) {
		for range 4 {
			if !yield(q) {
				return
			}
			q = q.rotate()
		}
	}
}
