package sat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess_BVEEliminatesPivotVariable(t *testing.T) {
	// p=1, a=2, b=3, c=4, d=5 (the scenario 6 instance from spec §8, with p
	// given the lowest ID so BVE, which processes variables in ID order,
	// reaches it before a/b/c/d would otherwise be trivially pure-literal
	// eliminated first). BCE is disabled so it doesn't remove clauses before
	// BVE gets a chance to resolve on p. After p, a and b occur only
	// positively in the resolvents (a∨c), (a∨d), (b∨c), (b∨d) and are
	// eliminated as pure literals; c and d are then left with no live clause,
	// so the stack holds p, a, b in that order.
	opts := DefaultOptions
	opts.BCE = false
	s := NewSolver(opts)
	for i := 0; i < 5; i++ {
		s.AddVariable()
	}
	addClauses(t, s, [][]int{{2, 1}, {3, 1}, {4, -1}, {5, -1}})

	ok := s.prep.Run()
	require.True(t, ok)

	assert.True(t, s.IsEliminated(0)) // variable p, 0-indexed as 0
	require.Len(t, s.prep.elimStack, 3)
	assert.Equal(t, 0, s.prep.elimStack[0].v)
}

func TestPreprocess_BCERemovesBlockedClause(t *testing.T) {
	// (x1 ∨ x2) is blocked on x1 if every other clause containing ¬x1
	// resolves to a tautology with it. This exercises the vacuous case: no
	// clause contains ¬x1 at all.
	s := newTestSolver(2)
	addClauses(t, s, [][]int{{1, 2}})

	ok := s.prep.Run()
	require.True(t, ok)

	// The sole clause is blocked on x1 (no clause contains ¬x1 to resolve
	// against) and is removed by BCE before BVE ever considers it.
	assert.Equal(t, 0, s.NumConstraints())
}

func TestPreprocess_SkipsVariableOverOccurrenceLimit(t *testing.T) {
	opts := DefaultOptions
	opts.BCE = false
	opts.ElimMaxOcc = 0
	s := NewSolver(opts)
	for i := 0; i < 3; i++ {
		s.AddVariable()
	}
	addClauses(t, s, [][]int{{1, 3}, {2, 3}})

	ok := s.prep.Run()
	require.True(t, ok)
	assert.False(t, s.IsEliminated(2))
	assert.Equal(t, 2, s.NumConstraints(), "both clauses survive untouched")
}
