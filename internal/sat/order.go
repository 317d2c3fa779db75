package sat

import (
	"math/rand"

	"github.com/rhartert/yagh"
)

// rescaleThreshold is the activity ceiling past which scores (and the
// shared increment) are rescaled down together, preserving relative order
// while avoiding floating point overflow.
const rescaleThreshold = 1e100

// stuckWindow/stuckLevelThreshold bound the "stuck at low decision levels"
// heuristic from spec §9's open question: if the last stuckWindow decisions
// all opened at a level below stuckLevelThreshold without the trail
// reaching a new maximum length, randomPhaseProb is raised. See DESIGN.md
// for why this trigger was chosen over a conflict-count-based one.
const (
	stuckWindow         = 50
	stuckLevelThreshold = 2
	randomPhaseStep     = 1.5
	randomPhaseMax       = 0.5
)

// VarOrder is the VSIDS-style decision heuristic: a binary max-heap of
// unassigned variables keyed by activity (lazy-delete: assigned variables
// are skipped on extraction, not proactively removed), plus phase saving
// and adaptive random-phase injection.
type VarOrder struct {
	heap *yagh.IntMap[float64]

	scores   []float64
	scoreInc float64
	decay    float64

	phases      []LBool
	phaseSaving bool

	randomPhaseProb float64
	baseRandomProb  float64
	rng             *rand.Rand

	stuckCount   int
	maxTrailSeen int
}

// NewVarOrder returns an empty VarOrder.
func NewVarOrder(decay float64, phaseSaving bool, randomPhaseProb float64) *VarOrder {
	return &VarOrder{
		heap:           yagh.New[float64](0),
		scoreInc:       1,
		decay:          decay,
		phaseSaving:    phaseSaving,
		randomPhaseProb: randomPhaseProb,
		baseRandomProb:  randomPhaseProb,
		rng:             rand.New(rand.NewSource(1)),
	}
}

// AddVar registers a newly declared variable with zero activity and an
// unset saved phase.
func (vo *VarOrder) AddVar(v int) {
	vo.scores = append(vo.scores, 0)
	vo.phases = append(vo.phases, Unknown)
	vo.heap.GrowBy(1)
	vo.heap.Put(v, -0.0)
}

// Remove takes v out of the candidate pool entirely, used when BVE
// eliminates it so it is never offered as a decision. yagh exposes no
// direct delete-by-key, so this drains the heap down to and including v,
// putting everything else back; it is only ever called during
// preprocessing, off the search hot path.
func (vo *VarOrder) Remove(v int) {
	if !vo.heap.Contains(v) {
		return
	}
	drained := make([]int, 0, 8)
	for {
		item, ok := vo.heap.Pop()
		if !ok {
			break
		}
		if item.Elem == v {
			break
		}
		drained = append(drained, item.Elem)
	}
	for _, e := range drained {
		vo.heap.Put(e, -vo.scores[e])
	}
}

// Reinsert adds variable v back to the heap, called on backtrack-induced
// unassignment. val is the value v held before being unassigned, used for
// phase saving.
func (vo *VarOrder) Reinsert(v int, val LBool) {
	if vo.phaseSaving && val != Unknown {
		vo.phases[v] = val
	}
	vo.heap.Put(v, -vo.scores[v])
}

// Decay shrinks the effective weight of past bumps relative to future ones
// by growing the shared increment, called once per conflict.
func (vo *VarOrder) Decay() {
	vo.scoreInc /= vo.decay
	if vo.scoreInc > rescaleThreshold {
		vo.rescale()
	}
}

// Bump increases v's activity and restores the heap invariant.
func (vo *VarOrder) Bump(v int) {
	vo.scores[v] += vo.scoreInc
	if vo.heap.Contains(v) {
		vo.heap.Put(v, -vo.scores[v])
	}
	if vo.scores[v] > rescaleThreshold {
		vo.rescale()
	}
}

func (vo *VarOrder) rescale() {
	vo.scoreInc *= 1e-100
	for v, sc := range vo.scores {
		vo.scores[v] = sc * 1e-100
		if vo.heap.Contains(v) {
			vo.heap.Put(v, -vo.scores[v])
		}
	}
}

// Pick extracts the highest-activity unassigned variable, skipping
// assigned or eliminated ones (lazy deletion). Returns ok == false if no
// unassigned variable remains.
func (vo *VarOrder) Pick(s *Solver) (v int, ok bool) {
	for {
		item, has := vo.heap.Pop()
		if !has {
			return 0, false
		}
		if s.VarValue(item.Elem) != Unknown || s.IsEliminated(item.Elem) {
			continue
		}
		return item.Elem, true
	}
}

// Phase returns the polarity to assign variable v when it is chosen as the
// next decision: its saved phase, or a uniformly random polarity with
// probability randomPhaseProb, or true by default if no phase was ever
// saved.
func (vo *VarOrder) Phase(v int) bool {
	if vo.rng.Float64() < vo.randomPhaseProb {
		return vo.rng.Intn(2) == 0
	}
	switch vo.phases[v] {
	case True:
		return true
	case False:
		return false
	default:
		return true
	}
}

// NoteDecision feeds the "stuck at low decision levels" detector with the
// level a new decision just opened at and the trail length right after
// that decision was enqueued. The raise is multiplicative, so a probability
// that starts at 0 (the default) stays at 0; only a nonzero initial
// probability is ever raised.
func (vo *VarOrder) NoteDecision(level, trailLen int) {
	if trailLen > vo.maxTrailSeen {
		vo.maxTrailSeen = trailLen
		vo.stuckCount = 0
		if vo.randomPhaseProb > vo.baseRandomProb {
			vo.randomPhaseProb /= randomPhaseStep
			if vo.randomPhaseProb < vo.baseRandomProb {
				vo.randomPhaseProb = vo.baseRandomProb
			}
		}
		return
	}
	if level >= stuckLevelThreshold {
		vo.stuckCount = 0
		return
	}
	vo.stuckCount++
	if vo.stuckCount >= stuckWindow {
		vo.stuckCount = 0
		vo.randomPhaseProb *= randomPhaseStep
		if vo.randomPhaseProb > randomPhaseMax {
			vo.randomPhaseProb = randomPhaseMax
		}
	}
}
