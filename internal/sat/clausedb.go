package sat

import "sort"

// clauseActivityRescale mirrors rescaleThreshold for clause activities.
const clauseActivityRescale = 1e100

// ClauseDatabase owns learnt-clause activity bookkeeping and the eviction
// policy (spec §4.7). It operates directly on the arena; the Solver still
// owns the authoritative list of live learnt refs (s.learnts) and is
// responsible for removing evicted ones from that list.
type ClauseDatabase struct {
	arena *ClauseArena

	activityInc float64
	decay       float64

	glueLBD        int
	reduceFraction float64
	reduceInterval int

	conflictsSinceReduce int64
}

// NewClauseDatabase returns a manager configured from opts.
func NewClauseDatabase(arena *ClauseArena, opts Options) *ClauseDatabase {
	return &ClauseDatabase{
		arena:          arena,
		activityInc:    1,
		decay:          opts.ClauseDecay,
		glueLBD:        opts.GlueLBD,
		reduceFraction: opts.ReduceFraction,
		reduceInterval: opts.ReduceInterval,
	}
}

func (s *Solver) bumpClauseActivity(ref ClauseRef) {
	db := s.db
	act := s.arena.Activity(ref) + db.activityInc
	s.arena.SetActivity(ref, act)
	if act > clauseActivityRescale {
		db.activityInc *= 1e-100
		for _, r := range s.learnts {
			s.arena.SetActivity(r, s.arena.Activity(r)*1e-100)
		}
	}
}

func (s *Solver) decayClauseActivity() {
	s.db.activityInc *= 1 / s.db.decay
}

// OnConflict advances the reduce-interval counter. Call once per conflict.
func (db *ClauseDatabase) OnConflict() {
	db.conflictsSinceReduce++
}

// ShouldReduce reports whether reduceInterval conflicts have elapsed since
// the last reduction and at least some learnt clauses exist to evict.
func (db *ClauseDatabase) ShouldReduce(numLearnts int) bool {
	return db.conflictsSinceReduce >= int64(db.reduceInterval) && numLearnts > 0
}

// reduceLearnts ranks learnt clauses by (LBD ascending, activity descending)
// and deletes the worst (1 - reduceFraction) share, exempting glue clauses
// (LBD <= glueLBD) and clauses currently protected (serving as a reason).
// Evicted clauses go through deleteClause (which drops their watches), and
// the surviving references are stored back into s.learnts.
func (s *Solver) reduceLearnts() {
	db := s.db
	db.conflictsSinceReduce = 0

	refs := s.learnts
	sort.Slice(refs, func(i, j int) bool {
		li, lj := s.arena.LBD(refs[i]), s.arena.LBD(refs[j])
		if li != lj {
			return li < lj
		}
		return s.arena.Activity(refs[i]) > s.arena.Activity(refs[j])
	})

	keepCount := int(float64(len(refs)) * db.reduceFraction)
	if keepCount < 0 {
		keepCount = 0
	}

	kept := make([]ClauseRef, 0, len(refs))
	for i, ref := range refs {
		if i < keepCount || s.arena.IsGlue(ref) || s.arena.IsProtected(ref) {
			kept = append(kept, ref)
			continue
		}
		s.deleteClause(ref)
		s.Stats.DeletedCount++
	}
	s.learnts = kept
}

// trySubsume implements on-the-fly forward subsumption: for small newly
// learned clauses, any existing learnt clause whose literal set is a
// superset of newRef's is deleted. Called right after newRef is installed.
func (s *Solver) trySubsume(newRef ClauseRef) {
	const subsumeMaxSize = 32
	newLits := s.arena.Literals(newRef)
	if len(newLits) > subsumeMaxSize {
		return
	}
	newSet := make(map[Literal]struct{}, len(newLits))
	for _, l := range newLits {
		newSet[l] = struct{}{}
	}

	kept := s.learnts[:0]
	for _, ref := range s.learnts {
		if ref == newRef {
			kept = append(kept, ref)
			continue
		}
		if s.subsumes(newSet, ref) {
			s.deleteClause(ref)
			continue
		}
		kept = append(kept, ref)
	}
	s.learnts = kept
}

// subsumes reports whether every literal in small is also a literal of the
// clause at ref (i.e. ref's literal set is a superset of small).
func (s *Solver) subsumes(small map[Literal]struct{}, ref ClauseRef) bool {
	lits := s.arena.Literals(ref)
	if len(lits) < len(small) {
		return false
	}
	present := make(map[Literal]struct{}, len(lits))
	for _, l := range lits {
		present[l] = struct{}{}
	}
	for l := range small {
		if _, ok := present[l]; !ok {
			return false
		}
	}
	return true
}
