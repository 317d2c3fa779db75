package sat

// maxMinimizeDepth bounds the recursion of isRedundant, the safety-limit
// fallback spec §4.4/§7 calls for: past this depth a literal is kept rather
// than risking unbounded recursion on a pathological reason chain.
const maxMinimizeDepth = 64

// analyze performs 1-UIP conflict analysis starting from the falsified
// clause confl. It returns the learned clause (asserting literal at
// position 0) and the backjump level. Bumps variable activities for every
// literal it visits, per spec §4.4 step 2.
func (s *Solver) analyze(confl ClauseRef) ([]Literal, int) {
	nPaths := 0
	s.tmpLearnts = append(s.tmpLearnts[:0], -1) // placeholder for the asserting literal
	s.seenVar.Clear()

	nextTrailIdx := len(s.trail) - 1
	l := Literal(-1) // sentinel: "explain the conflict itself", not an assignment
	backtrackLevel := 0

	for {
		var reasonLits []Literal
		if l == -1 {
			reasonLits = s.explainConflict(confl, s.tmpReason)
		} else {
			reasonLits = s.explainAssign(confl, s.tmpReason)
		}
		s.tmpReason = reasonLits

		for _, q := range reasonLits {
			v := q.VarID()
			if s.seenVar.Contains(v) {
				continue
			}
			s.seenVar.Add(v)
			s.bumpVarActivity(v)

			lvl := s.levelOf(v)
			if lvl == 0 {
				continue // level-0 facts never need to appear in the learned clause
			}
			if lvl == s.decisionLevel() {
				nPaths++
				continue
			}
			s.tmpLearnts = append(s.tmpLearnts, q.Opposite())
			if lvl > backtrackLevel {
				backtrackLevel = lvl
			}
		}

		// Advance to the next seen literal on the trail.
		for {
			l = s.trail[nextTrailIdx]
			nextTrailIdx--
			if s.seenVar.Contains(l.VarID()) {
				break
			}
		}
		confl = s.reasonOf(l.VarID())

		nPaths--
		if nPaths <= 0 {
			break
		}
	}

	s.tmpLearnts[0] = l.Opposite()

	if s.opts.Minimize {
		s.tmpLearnts = s.minimize(s.tmpLearnts)
	}

	return s.tmpLearnts, backtrackLevel
}

// minimize removes literals from a freshly learned clause that are
// redundant: a non-asserting literal q is redundant if every literal in q's
// reason clause is itself either already in the learned clause or
// redundant. Position 0 (the asserting literal) is never removed.
func (s *Solver) minimize(learnt []Literal) []Literal {
	keep := learnt[:1]
	for _, l := range learnt[1:] {
		if !s.isRedundant(l, 0) {
			keep = append(keep, l)
		}
	}
	return keep
}

func (s *Solver) isRedundant(l Literal, depth int) bool {
	if depth > maxMinimizeDepth {
		return false
	}
	reason := s.reasonOf(l.VarID())
	if reason == NoRef {
		return false // decision literal: never redundant
	}

	for _, q := range s.arena.Literals(reason) {
		if q.Opposite() == l {
			continue // skip the literal the reason explains
		}
		v := q.VarID()
		if s.levelOf(v) == 0 {
			continue // level-0 facts are always implicitly present
		}
		if s.seenVar.Contains(v) {
			continue
		}
		if !s.isRedundant(q.Opposite(), depth+1) {
			return false
		}
	}
	return true
}

// computeLBD counts the number of distinct decision levels among literals,
// the quality estimate stored on every learnt clause (spec §4.4 step 4). It
// uses its own level-indexed timestamp buffer (decision levels, not
// variable IDs, so it cannot reuse seenVar's variable-sized capacity).
func (s *Solver) computeLBD(lits []Literal) int {
	s.lbdStamp++
	if s.lbdStamp == 0 { // overflow
		s.lbdStamp = 1
		for i := range s.lbdSeenAt {
			s.lbdSeenAt[i] = 0
		}
	}

	n := 0
	for _, l := range lits {
		lvl := s.levelOf(l.VarID())
		if lvl == 0 {
			continue
		}
		for lvl >= len(s.lbdSeenAt) {
			s.lbdSeenAt = append(s.lbdSeenAt, 0)
		}
		if s.lbdSeenAt[lvl] != s.lbdStamp {
			s.lbdSeenAt[lvl] = s.lbdStamp
			n++
		}
	}
	return n
}
