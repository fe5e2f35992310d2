package ducci

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// paths is the plain recursive form of the search, kept as a reference for
// the explicit-stack Explorer.
func paths(q Quadruple) []PathResult {
	next := q.Step()
	if next.IsTerminal() {
		return []PathResult{{Terminal: next, Depth: 0}}
	}

	var result []PathResult
	for _, s := range next.Swaps() {
		for _, r := range paths(s) {
			result = append(result, PathResult{Terminal: r.Terminal, Depth: r.Depth + 1})
		}
	}
	return result
}

func TestExplore(t *testing.T) {
	zero := Quadruple{}
	tests := []struct {
		name   string
		input  Quadruple
		expect []PathResult
	}{
		{"ZERO", Quadruple{0, 0, 0, 0}, []PathResult{{zero, 0}}},
		{"ONES", Quadruple{1, 1, 1, 1}, []PathResult{{zero, 0}}},
		{"LADDER", Quadruple{1, 1, 2, 0}, []PathResult{{Quadruple{0, 1, 2, 1}, 0}}},
		{"CHECKER_START", Quadruple{0, 1, 0, 1}, []PathResult{{zero, 1}, {zero, 1}}},
		// (1,0,0,0) -> (1,0,0,1), not terminal.
		//   swap A (0,1,0,1) -> (1,1,1,1) -> twice (1,1,1,1) -> (0,0,0,0)
		//   swap B (1,0,0,1) -> (1,0,1,0), checker
		{"SINGLE_ONE", Quadruple{1, 0, 0, 0}, []PathResult{{zero, 2}, {zero, 2}, {Quadruple{1, 0, 1, 0}, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Explore(context.Background(), tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.expect, got); diff != "" {
				t.Errorf("Explore(%v) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestExploreMatchesRecursion(t *testing.T) {
	forEach(5, func(q Quadruple) {
		got, err := Explore(context.Background(), q)
		require.NoError(t, err)
		if diff := cmp.Diff(paths(q), got); diff != "" {
			t.Fatalf("Explore(%v) mismatch (-recursive +explorer):\n%s", q, diff)
		}
	})
}

func TestExploreLeavesAreTerminal(t *testing.T) {
	forEach(6, func(q Quadruple) {
		got, err := Explore(context.Background(), q)
		require.NoError(t, err)
		require.NotEmpty(t, got)
		for _, r := range got {
			assert.True(t, r.Terminal.IsTerminal(), "leaf %v of %v", r.Terminal, q)
			assert.GreaterOrEqual(t, r.Depth, 0)
		}
	})
}

func TestExploreDepthShift(t *testing.T) {
	// For a non-terminal next state every depth is one more than the
	// depth the child search reports for the same leaf.
	forEach(4, func(q Quadruple) {
		next := q.Step()
		if next.IsTerminal() {
			return
		}
		got, err := Explore(context.Background(), q)
		require.NoError(t, err)

		var want []PathResult
		for _, s := range next.Swaps() {
			child, err := Explore(context.Background(), s)
			require.NoError(t, err)
			for _, r := range child {
				want = append(want, PathResult{Terminal: r.Terminal, Depth: r.Depth + 1})
			}
		}
		require.Empty(t, cmp.Diff(want, got), "start %v", q)
	})
}

func TestExploreIdempotent(t *testing.T) {
	q := Quadruple{7, 3, 11, 2}
	first, err := Explore(context.Background(), q)
	require.NoError(t, err)
	second, err := Explore(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(first, second))
}

func TestExploreStats(t *testing.T) {
	_, stats, err := Explorer{}.ExploreWithStats(context.Background(), Quadruple{1, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, Stats{Nodes: 5, MaxDepth: 2}, stats)
}

func TestExploreLimits(t *testing.T) {
	ctx := context.Background()
	start := Quadruple{1, 0, 0, 0}

	_, err := Explorer{MaxDepth: 1}.Explore(ctx, start)
	require.ErrorIs(t, err, ErrDepthExceeded)

	got, err := Explorer{MaxDepth: 2}.Explore(ctx, start)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = Explorer{MaxNodes: 4}.Explore(ctx, start)
	require.ErrorIs(t, err, ErrNodeLimit)
	assert.Nil(t, got, "no partial output on error")

	_, err = Explorer{MaxNodes: 5}.Explore(ctx, start)
	require.NoError(t, err)
}

func TestExploreOverflow(t *testing.T) {
	_, err := Explore(context.Background(), Quadruple{127, -128, 0, 0})
	require.ErrorIs(t, err, ErrOverflow)
}

func TestExploreCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Explore(ctx, Quadruple{1, 0, 0, 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
