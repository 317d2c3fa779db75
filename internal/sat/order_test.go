package sat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarOrder_PicksHighestActivityUnassigned(t *testing.T) {
	s := newTestSolver(3)
	s.order.Bump(2)
	s.order.Bump(2)
	s.order.Bump(1)

	v, ok := s.order.Pick(s)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestVarOrder_PickSkipsAssignedVariables(t *testing.T) {
	s := newTestSolver(2)
	s.order.Bump(0)
	s.order.Bump(0)

	s.assume(PositiveLiteral(0)) // variable 0 now assigned, should be skipped

	v, ok := s.order.Pick(s)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestVarOrder_ReinsertRestoresPhase(t *testing.T) {
	vo := NewVarOrder(0.95, true, 0)
	vo.AddVar(0)
	vo.Reinsert(0, False)
	assert.False(t, vo.Phase(0))
}

func TestVarOrder_RemoveExcludesFromPick(t *testing.T) {
	s := newTestSolver(2)
	s.order.Remove(0)

	v, ok := s.order.Pick(s)
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = s.order.Pick(s)
	assert.False(t, ok)
}
