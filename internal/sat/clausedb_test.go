package sat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClauseDB_ReduceKeepsGlueClauses(t *testing.T) {
	s := newTestSolver(6)
	opts := DefaultOptions
	opts.ReduceFraction = 0 // keep nothing except exemptions
	s.db = NewClauseDatabase(s.arena, opts)

	glue, ok, err := s.newClause([]Literal{lit(1), lit(2)}, true)
	require.NoError(t, err)
	require.True(t, ok)
	s.arena.SetLBD(glue, 2)
	s.arena.SetGlue(glue, true)
	s.learnts = append(s.learnts, glue)

	junk, ok, err := s.newClause([]Literal{lit(3), lit(4)}, true)
	require.NoError(t, err)
	require.True(t, ok)
	s.arena.SetLBD(junk, 10)
	s.learnts = append(s.learnts, junk)

	s.reduceLearnts()

	assert.Contains(t, s.learnts, glue)
	assert.NotContains(t, s.learnts, junk)
	assert.True(t, s.arena.IsDeleted(junk))
}

func TestClauseDB_ReduceKeepsProtectedClauses(t *testing.T) {
	s := newTestSolver(4)
	opts := DefaultOptions
	opts.ReduceFraction = 0
	s.db = NewClauseDatabase(s.arena, opts)

	ref, ok, err := s.newClause([]Literal{lit(1), lit(2)}, true)
	require.NoError(t, err)
	require.True(t, ok)
	s.arena.SetLBD(ref, 10)
	s.arena.SetProtected(ref, true) // currently serving as a trail reason
	s.learnts = append(s.learnts, ref)

	s.reduceLearnts()
	assert.Contains(t, s.learnts, ref)
}

func TestClauseDB_BumpActivityRescalesOnOverflow(t *testing.T) {
	s := newTestSolver(2)
	ref, ok, err := s.newClause([]Literal{lit(1), lit(2)}, true)
	require.NoError(t, err)
	require.True(t, ok)
	s.learnts = append(s.learnts, ref)

	s.arena.SetActivity(ref, clauseActivityRescale*2)
	s.bumpClauseActivity(ref)

	assert.Less(t, s.arena.Activity(ref), clauseActivityRescale)
}
