package sat

// newClause validates and, if needed, allocates a clause. It returns the new
// reference (NoRef if the clause collapsed to a root-level unit or to a
// trivially true clause), whether the clause is still consistent with the
// current (necessarily root-level, for non-learnt clauses) assignment, and
// an error only on arena exhaustion.
//
// For non-learnt clauses this also deduplicates literals and drops the
// clause entirely if it is a tautology (contains both v and ¬v) or already
// satisfied at the root level, per spec §6's input contract.
func (s *Solver) newClause(tmpLiterals []Literal, learnt bool) (ClauseRef, bool, error) {
	size := len(tmpLiterals)

	if !learnt {
		seen := map[Literal]struct{}{}
		for i := size - 1; i >= 0; i-- {
			if _, ok := seen[tmpLiterals[i].Opposite()]; ok {
				return NoRef, true, nil // tautology
			}
			if _, ok := seen[tmpLiterals[i]]; ok {
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
				continue
			}
			seen[tmpLiterals[i]] = struct{}{}

			switch s.LitValue(tmpLiterals[i]) {
			case True:
				return NoRef, true, nil // already satisfied
			case False:
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			}
		}
		tmpLiterals = tmpLiterals[:size]
	}

	switch size {
	case 0:
		return NoRef, false, nil // empty clause: UNSAT
	case 1:
		if learnt && s.drat != nil {
			s.drat.Add(tmpLiterals[:1])
		}
		return NoRef, s.enqueue(tmpLiterals[0], NoRef), nil
	default:
		if learnt {
			// Move the literal with the second-highest decision level into
			// position 1 so the two watched positions are immediately
			// correct for backjumping (spec §4.4's output contract). The
			// asserting literal is expected to already be at position 0 by
			// the caller (analyze.go).
			maxLevel := -1
			swapWith := 1
			for i := 1; i < len(tmpLiterals); i++ {
				if lvl := s.levelOf(tmpLiterals[i].VarID()); lvl > maxLevel {
					maxLevel = lvl
					swapWith = i
				}
			}
			tmpLiterals[1], tmpLiterals[swapWith] = tmpLiterals[swapWith], tmpLiterals[1]
		}

		ref, err := s.arena.Allocate(tmpLiterals, learnt)
		if err != nil {
			return NoRef, false, err
		}
		s.watch(ref)
		if s.drat != nil {
			s.drat.Add(s.arena.Literals(ref))
		}
		return ref, true, nil
	}
}

// simplifyClause drops literals falsified at the root level and reports
// whether the clause is already satisfied (in which case the caller should
// remove it entirely). Only meaningful at decision level 0.
func (s *Solver) simplifyClause(ref ClauseRef) bool {
	lits := s.arena.Literals(ref)
	k := 0
	for _, l := range lits {
		switch s.LitValue(l) {
		case True:
			return true
		case False:
			// discard
		default:
			lits[k] = l
			k++
		}
	}
	if k < len(lits) {
		s.arena.Shrink(ref, k)
	}
	return false
}

// explainConflict returns the negated literals of a falsified clause, used
// as the starting point of conflict analysis.
func (s *Solver) explainConflict(ref ClauseRef, out []Literal) []Literal {
	out = out[:0]
	for _, l := range s.arena.Literals(ref) {
		out = append(out, l.Opposite())
	}
	if s.arena.IsLearnt(ref) {
		s.bumpClauseActivity(ref)
	}
	return out
}

// explainAssign returns the negated antecedent literals (excluding the
// asserted one at position 0) of ref, used when ref is the reason for an
// assignment being walked during conflict analysis.
func (s *Solver) explainAssign(ref ClauseRef, out []Literal) []Literal {
	lits := s.arena.Literals(ref)
	out = out[:0]
	for _, l := range lits[1:] {
		out = append(out, l.Opposite())
	}
	if s.arena.IsLearnt(ref) {
		s.bumpClauseActivity(ref)
	}
	return out
}
