package sat

// eliminationEntry is one record of the elimination stack (spec §3): the
// variable BVE removed and a witness clause (a snapshot of its literals,
// since the original clause itself is deleted) used by Model Reconstruction.
type eliminationEntry struct {
	v       int
	witness []Literal
}

// Preprocessor runs Blocked Clause Elimination and Bounded Variable
// Elimination over the original clause set before search begins (spec
// §4.8). It maintains its own occurrence lists, populated incrementally as
// clauses are added and updated as clauses are deleted during elimination.
type Preprocessor struct {
	s    *Solver
	opts Options

	occ [][]ClauseRef // occ[literal] -> original clauses currently containing it

	elimStack []eliminationEntry
}

// NewPreprocessor returns a preprocessor bound to s.
func NewPreprocessor(s *Solver, opts Options) *Preprocessor {
	return &Preprocessor{s: s, opts: opts}
}

// AddVar grows the occurrence table for a newly declared variable.
func (p *Preprocessor) AddVar(v int) {
	p.occ = append(p.occ, nil, nil)
}

// OnClauseAdded registers ref's literals in the occurrence lists. Called by
// Solver.AddClause right after a non-unit original clause is installed.
func (p *Preprocessor) OnClauseAdded(ref ClauseRef) {
	for _, l := range p.s.arena.Literals(ref) {
		p.occ[l] = append(p.occ[l], ref)
	}
}

func (p *Preprocessor) removeOcc(ref ClauseRef, lits []Literal) {
	for _, l := range lits {
		list := p.occ[l]
		for i, r := range list {
			if r == ref {
				list[i] = list[len(list)-1]
				p.occ[l] = list[:len(list)-1]
				break
			}
		}
	}
}

// eliminate drops ref from every occurrence list it's on and marks it
// deleted in the arena/watches, without touching s.constraints directly
// (the caller compacts that list once, after all elimination is done).
func (p *Preprocessor) eliminate(ref ClauseRef) {
	lits := append([]Literal(nil), p.s.arena.Literals(ref)...)
	p.removeOcc(ref, lits)
	p.s.deleteClause(ref)
}

// Run executes BCE (if enabled) then BVE (if enabled) and reports whether
// the instance remains possibly satisfiable (false means preprocessing
// derived UNSAT directly, e.g. an empty resolvent).
func (p *Preprocessor) Run() bool {
	if p.opts.BCE {
		if !p.runBCE() {
			return false
		}
	}
	if p.opts.BVE {
		if !p.runBVE() {
			return false
		}
	}
	p.compactConstraints()
	return true
}

func (p *Preprocessor) compactConstraints() {
	kept := p.s.constraints[:0]
	for _, ref := range p.s.constraints {
		if !p.s.arena.IsDeleted(ref) {
			kept = append(kept, ref)
		}
	}
	p.s.constraints = kept
}

// runBCE removes every original clause blocked on some literal it contains.
func (p *Preprocessor) runBCE() bool {
	for _, ref := range append([]ClauseRef(nil), p.s.constraints...) {
		if p.s.arena.IsDeleted(ref) {
			continue
		}
		lits := p.s.arena.Literals(ref)
		for _, l := range lits {
			if p.isBlocked(ref, l) {
				p.eliminate(ref)
				break
			}
		}
	}
	return true
}

// isBlocked reports whether ref is blocked on literal l: every clause
// containing l's negation resolves with ref on variable_of(l) to a
// tautology.
func (p *Preprocessor) isBlocked(ref ClauseRef, l Literal) bool {
	others := p.occ[l.Opposite()]
	if len(others) == 0 {
		return true // vacuously blocked: nothing to resolve against
	}
	refLits := p.s.arena.Literals(ref)
	for _, d := range others {
		if d == ref || p.s.arena.IsDeleted(d) {
			continue
		}
		if !p.resolventIsTautology(refLits, l, p.s.arena.Literals(d)) {
			return false
		}
	}
	return true
}

// resolventIsTautology checks, without materializing the resolvent, whether
// resolving a clause containing l against one containing l.Opposite() on
// variable_of(l) yields a tautology (some variable appears both positively
// and negatively among the remaining literals).
func (p *Preprocessor) resolventIsTautology(aLits []Literal, l Literal, bLits []Literal) bool {
	for _, x := range aLits {
		if x == l || x == l.Opposite() {
			continue
		}
		for _, y := range bLits {
			if y == l || y == l.Opposite() {
				continue
			}
			if x == y.Opposite() {
				return true
			}
		}
	}
	return false
}

// runBVE eliminates variables whose resolvent count stays within the grow
// limit, processing variables in ID order. Eliminating one variable can
// shrink other variables' occurrence counts, but never grows them except
// via the freshly added resolvents of the SAME elimination; a single
// left-to-right pass is made rather than iterating to a fixpoint, which
// keeps preprocessing effort bounded.
func (p *Preprocessor) runBVE() bool {
	for v := 0; v < p.s.NumVariables(); v++ {
		if p.s.IsEliminated(v) {
			continue
		}
		if p.s.VarValue(v) != Unknown {
			continue
		}
		if ok := p.tryEliminate(v); !ok && p.s.unsat {
			return false
		}
	}
	return true
}

func (p *Preprocessor) tryEliminate(v int) bool {
	pos := PositiveLiteral(v)
	neg := NegativeLiteral(v)

	P := p.liveOcc(pos)
	N := p.liveOcc(neg)

	if len(P) > p.opts.ElimMaxOcc || len(N) > p.opts.ElimMaxOcc {
		return false
	}
	if len(P) == 0 && len(N) == 0 {
		return false
	}

	var resolvents [][]Literal
	for _, c := range P {
		for _, d := range N {
			res, tautology := p.resolve(c, pos, d, neg)
			if tautology {
				continue
			}
			resolvents = append(resolvents, res)
		}
	}

	if len(resolvents) > len(P)+len(N)+p.opts.ElimGrowLimit {
		return false
	}

	witness := p.pickWitness(P)
	if witness == nil {
		witness = p.pickWitness(N)
	}

	for _, c := range append([]ClauseRef(nil), P...) {
		p.eliminate(c)
	}
	for _, d := range append([]ClauseRef(nil), N...) {
		p.eliminate(d)
	}

	for _, res := range resolvents {
		if !p.installResolvent(res) {
			return false
		}
	}

	p.s.vars[v].eliminated = true
	p.s.numEliminated++
	p.s.order.Remove(v)
	if witness != nil {
		p.elimStack = append(p.elimStack, eliminationEntry{v: v, witness: witness})
	}
	return true
}

func (p *Preprocessor) liveOcc(l Literal) []ClauseRef {
	live := p.occ[l][:0]
	for _, ref := range p.occ[l] {
		if !p.s.arena.IsDeleted(ref) {
			live = append(live, ref)
		}
	}
	p.occ[l] = live
	return append([]ClauseRef(nil), live...)
}

func (p *Preprocessor) pickWitness(clauses []ClauseRef) []Literal {
	if len(clauses) == 0 {
		return nil
	}
	return append([]Literal(nil), p.s.arena.Literals(clauses[0])...)
}

// resolve computes the resolvent of the clause at cRef (containing cLit) and
// dRef (containing dLit, the opposite variable polarity), deduplicated, and
// reports whether it is a tautology.
func (p *Preprocessor) resolve(cRef ClauseRef, cLit Literal, dRef ClauseRef, dLit Literal) ([]Literal, bool) {
	seen := map[Literal]struct{}{}
	var out []Literal
	for _, x := range p.s.arena.Literals(cRef) {
		if x == cLit {
			continue
		}
		if _, ok := seen[x.Opposite()]; ok {
			return nil, true
		}
		if _, ok := seen[x]; !ok {
			seen[x] = struct{}{}
			out = append(out, x)
		}
	}
	for _, x := range p.s.arena.Literals(dRef) {
		if x == dLit {
			continue
		}
		if _, ok := seen[x.Opposite()]; ok {
			return nil, true
		}
		if _, ok := seen[x]; !ok {
			seen[x] = struct{}{}
			out = append(out, x)
		}
	}
	return out, false
}

// installResolvent adds a BVE resolvent as a new original clause, handling
// the empty (UNSAT) and unit (immediate root-level propagation) cases from
// spec §4.8 step 4.
func (p *Preprocessor) installResolvent(lits []Literal) bool {
	switch len(lits) {
	case 0:
		p.s.unsat = true
		return false
	case 1:
		if !p.s.enqueue(lits[0], NoRef) {
			p.s.unsat = true
			return false
		}
		return true
	default:
		ref, ok, err := p.s.newClause(lits, false)
		if err != nil || !ok {
			if err != nil {
				p.s.unsat = true
			}
			return err == nil
		}
		if ref != NoRef {
			p.s.constraints = append(p.s.constraints, ref)
			p.OnClauseAdded(ref)
		}
		return true
	}
}
