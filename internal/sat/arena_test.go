package sat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_AllocateAndLiterals(t *testing.T) {
	a := NewClauseArena()
	lits := []Literal{PositiveLiteral(0), NegativeLiteral(1), PositiveLiteral(2)}
	ref, err := a.Allocate(lits, false)
	require.NoError(t, err)

	assert.Equal(t, lits, a.Literals(ref))
	assert.Equal(t, 3, a.Size(ref))
	assert.False(t, a.IsLearnt(ref))
	assert.False(t, a.IsDeleted(ref))
}

func TestArena_ShrinkTruncatesLiterals(t *testing.T) {
	a := NewClauseArena()
	lits := []Literal{PositiveLiteral(0), NegativeLiteral(1), PositiveLiteral(2)}
	ref, err := a.Allocate(lits, false)
	require.NoError(t, err)

	a.Shrink(ref, 2)
	assert.Equal(t, 2, a.Size(ref))
	assert.Equal(t, lits[:2], a.Literals(ref))
}

func TestArena_CompactRelocatesLiveClausesOnly(t *testing.T) {
	a := NewClauseArena()
	refA, err := a.Allocate([]Literal{PositiveLiteral(0), PositiveLiteral(1)}, false)
	require.NoError(t, err)
	refB, err := a.Allocate([]Literal{PositiveLiteral(2), PositiveLiteral(3)}, false)
	require.NoError(t, err)

	a.MarkDeleted(refA)

	relocations := map[ClauseRef]ClauseRef{}
	a.Compact(func(old, newRef ClauseRef) {
		relocations[old] = newRef
	})

	_, wasRelocated := relocations[refA]
	assert.False(t, wasRelocated, "deleted clause should not be relocated")

	newRefB, ok := relocations[refB]
	require.True(t, ok, "live clause must be relocated")
	assert.Equal(t, []Literal{PositiveLiteral(2), PositiveLiteral(3)}, a.Literals(newRefB))
}

func TestArena_ActivityAndLBDRoundtrip(t *testing.T) {
	a := NewClauseArena()
	ref, err := a.Allocate([]Literal{PositiveLiteral(0), PositiveLiteral(1)}, true)
	require.NoError(t, err)

	a.SetActivity(ref, 3.5)
	a.SetLBD(ref, 2)
	a.SetGlue(ref, true)

	assert.Equal(t, 3.5, a.Activity(ref))
	assert.Equal(t, 2, a.LBD(ref))
	assert.True(t, a.IsGlue(ref))
}
