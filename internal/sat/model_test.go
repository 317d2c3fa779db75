package sat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildModel_ReconstructsFreeEliminatedVariable(t *testing.T) {
	s := newTestSolver(3)
	// Variable 2's witness clause is already satisfied by variable 0, so
	// reconstruction should be free to default it to true.
	s.vars[0].level = 0
	s.assigns[PositiveLiteral(0)] = True
	s.assigns[NegativeLiteral(0)] = False
	s.vars[1].level = 0
	s.assigns[PositiveLiteral(1)] = True
	s.assigns[NegativeLiteral(1)] = False

	s.vars[2].eliminated = true
	s.prep.elimStack = append(s.prep.elimStack, eliminationEntry{
		v:       2,
		witness: []Literal{PositiveLiteral(0), PositiveLiteral(2)},
	})

	model := s.buildModel()
	assert.True(t, model[2])
}

func TestBuildModel_ReconstructsFreeEliminatedVariableViaNegativeLiteral(t *testing.T) {
	s := newTestSolver(2)
	s.vars[0].level = 0
	s.assigns[PositiveLiteral(0)] = False
	s.assigns[NegativeLiteral(0)] = True

	s.vars[1].eliminated = true
	s.prep.elimStack = append(s.prep.elimStack, eliminationEntry{
		v:       1,
		witness: []Literal{NegativeLiteral(0), NegativeLiteral(1)},
	})

	model := s.buildModel()
	// x0 is false, so the witness's other literal (NegativeLiteral(0)) is
	// already true: x1 is free and defaults to true.
	assert.True(t, model[1])
}

func TestBuildModel_ReconstructsForcedPolarityWhenWitnessUnsatisfied(t *testing.T) {
	s := newTestSolver(2)
	s.vars[0].level = 0
	s.assigns[PositiveLiteral(0)] = True
	s.assigns[NegativeLiteral(0)] = False

	s.vars[1].eliminated = true
	s.prep.elimStack = append(s.prep.elimStack, eliminationEntry{
		v:       1,
		witness: []Literal{NegativeLiteral(0), NegativeLiteral(1)}, // needs x1=false to satisfy
	})

	model := s.buildModel()
	assert.False(t, model[1])
}
