package ducci

import (
	"context"
	"fmt"
)

// PathResult is one terminal state reached from a starting quadruple together
// with the number of swap branches taken to reach it.
type PathResult struct {
	Terminal Quadruple
	Depth    int
}

// Stats describes the tree walked by one search.
type Stats struct {
	Nodes    int // states stepped, leaves included
	MaxDepth int
}

// Explorer walks the branch tree of a starting quadruple with an explicit
// stack. A zero limit disables that limit.
type Explorer struct {
	MaxDepth int
	MaxNodes int
}

const (
	DefaultMaxDepth = 1024
	DefaultMaxNodes = 1 << 26
)

var DefaultExplorer = Explorer{MaxDepth: DefaultMaxDepth, MaxNodes: DefaultMaxNodes}

// Explore runs DefaultExplorer on start.
func Explore(ctx context.Context, start Quadruple) ([]PathResult, error) {
	return DefaultExplorer.Explore(ctx, start)
}

// Explore returns every terminal state reachable from start.
//
// Each visited state is stepped once. A terminal result is recorded with the
// number of swap branches taken from start; otherwise both Swaps are visited,
// the first one's subtree completely before the second one's. The order is
// therefore the same as
//
//	paths(s) = [(next, 0)]                              if next is terminal
//	paths(s) = paths(swap0)+1 ++ paths(swap1)+1         otherwise
func (e Explorer) Explore(ctx context.Context, start Quadruple) ([]PathResult, error) {
	results, _, err := e.ExploreWithStats(ctx, start)
	return results, err
}

type frame struct {
	state Quadruple
	depth int
}

func (e Explorer) ExploreWithStats(ctx context.Context, start Quadruple) ([]PathResult, Stats, error) {
	var (
		results []PathResult
		stats   Stats
	)

	stack := []frame{{state: start}}
	for len(stack) > 0 {
		if stats.Nodes%4096 == 0 {
			select {
			case <-ctx.Done():
				return nil, stats, fmt.Errorf("exploring %v: %w", start, ctx.Err())
			default:
			}
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		stats.Nodes++
		if e.MaxNodes > 0 && stats.Nodes > e.MaxNodes {
			return nil, stats, fmt.Errorf("exploring %v: %w (%d)", start, ErrNodeLimit, e.MaxNodes)
		}
		stats.MaxDepth = max(stats.MaxDepth, f.depth)

		next, err := f.state.checkedStep()
		if err != nil {
			return nil, stats, fmt.Errorf("exploring %v: %w", start, err)
		}

		if next.IsTerminal() {
			results = append(results, PathResult{Terminal: next, Depth: f.depth})
			continue
		}

		if e.MaxDepth > 0 && f.depth+1 > e.MaxDepth {
			return nil, stats, fmt.Errorf("exploring %v: %w at %v (%d)", start, ErrDepthExceeded, next, e.MaxDepth)
		}

		// Popped last-in first-out, so the first swap goes on top.
		swaps := next.Swaps()
		stack = append(stack,
			frame{state: swaps[1], depth: f.depth + 1},
			frame{state: swaps[0], depth: f.depth + 1},
		)
	}

	if err := checkResults(results); err != nil {
		return nil, stats, fmt.Errorf("exploring %v: %w", start, err)
	}

	return results, stats, nil
}

func checkResults(results []PathResult) error {
	for _, r := range results {
		if r.Depth < 0 || !r.Terminal.IsTerminal() {
			return fmt.Errorf("%w: %v:%d", ErrInvariant, r.Terminal, r.Depth)
		}
	}
	return nil
}
