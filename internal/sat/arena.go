package sat

import "fmt"

// ClauseRef is an opaque reference to a clause stored in a ClauseArena. The
// zero value is a valid reference (the first clause allocated, or the first
// live clause after Compact); no value is reserved inside the arena, so use
// NoRef for "no clause".
type ClauseRef int32

// NoRef is the reserved reference value meaning "no clause", used as the
// reason of decisions and root-level units and as Propagate's "no conflict"
// result.
const NoRef ClauseRef = -1

// maxArenaClauses bounds the arena's growth; Allocate returns an error past
// this point instead of growing without limit.
const maxArenaClauses = 1 << 28

// clauseRecord is the arena's storage unit for one clause. Clauses with
// fewer than two literals are never stored here: unit clauses are enqueued
// directly and the empty clause means UNSAT, both handled by the caller
// before an allocation would happen.
type clauseRecord struct {
	literals []Literal

	activity float64
	lbd      int32

	learnt    bool
	deleted   bool
	glue      bool
	protected bool // learnt clause currently serving as a reason; never evicted while true

	// prevPos caches the position in literals (>= 2) from which the last
	// search for a new watched literal resumed, so a long clause with many
	// literals doesn't get rescanned from literals[2] on every propagation.
	prevPos int
}

// ClauseArena is the packed, reference-counted-free storage for all clauses
// (original and learnt) known to a Solver. References remain valid until the
// next Compact call.
type ClauseArena struct {
	records []clauseRecord
	wasted  int // literals belonging to deleted-or-shrunk clauses, not yet reclaimed
	used    int // literals currently live, for Stats
}

// NewClauseArena returns an empty arena.
func NewClauseArena() *ClauseArena {
	return &ClauseArena{}
}

// Reserve preallocates capacity for at least n additional clauses.
func (a *ClauseArena) Reserve(n int) error {
	if len(a.records)+n > maxArenaClauses {
		return fmt.Errorf("sat: arena capacity exceeded (requested %d, cap %d)", len(a.records)+n, maxArenaClauses)
	}
	if cap(a.records)-len(a.records) >= n {
		return nil
	}
	grown := make([]clauseRecord, len(a.records), len(a.records)+n)
	copy(grown, a.records)
	a.records = grown
	return nil
}

// Allocate copies literals into the arena and returns a reference to the new
// clause. The caller must already have deduplicated, simplified, and
// confirmed len(literals) >= 2; see newClause in clauses.go for the entry
// point that enforces this.
func (a *ClauseArena) Allocate(literals []Literal, learnt bool) (ClauseRef, error) {
	if len(a.records) >= maxArenaClauses {
		return NoRef, fmt.Errorf("sat: arena capacity exceeded (%d clauses)", maxArenaClauses)
	}
	if len(a.records)*3/2 >= cap(a.records) {
		if err := a.Reserve(len(a.records)/2 + 4); err != nil {
			return NoRef, err
		}
	}

	lits := make([]Literal, len(literals))
	copy(lits, literals)

	ref := ClauseRef(len(a.records))
	a.records = append(a.records, clauseRecord{
		literals: lits,
		learnt:   learnt,
		prevPos:  2,
	})
	a.used += len(lits)
	return ref, nil
}

func (a *ClauseArena) rec(ref ClauseRef) *clauseRecord {
	return &a.records[ref]
}

// Literals returns a mutable view of the clause's current literals. The
// first two positions are the watched positions for any clause of size >= 2
// that is registered with the Watch Manager.
func (a *ClauseArena) Literals(ref ClauseRef) []Literal {
	return a.rec(ref).literals
}

// Size returns the clause's current literal count.
func (a *ClauseArena) Size(ref ClauseRef) int {
	return len(a.rec(ref).literals)
}

// IsLearnt reports whether the clause was produced by conflict analysis.
func (a *ClauseArena) IsLearnt(ref ClauseRef) bool {
	return a.rec(ref).learnt
}

// IsDeleted reports whether MarkDeleted has been called on this reference.
func (a *ClauseArena) IsDeleted(ref ClauseRef) bool {
	return a.rec(ref).deleted
}

// IsGlue reports whether the clause's LBD is at or below the glue threshold.
func (a *ClauseArena) IsGlue(ref ClauseRef) bool {
	return a.rec(ref).glue
}

// SetGlue marks (or unmarks) a learnt clause as glue, exempting it from
// Clause Database Manager eviction.
func (a *ClauseArena) SetGlue(ref ClauseRef, glue bool) {
	a.rec(ref).glue = glue
}

// IsProtected reports whether the clause is currently acting as a reason on
// the trail, and therefore must not be deleted.
func (a *ClauseArena) IsProtected(ref ClauseRef) bool {
	return a.rec(ref).protected
}

// SetProtected sets or clears the clause's protected flag.
func (a *ClauseArena) SetProtected(ref ClauseRef, protected bool) {
	a.rec(ref).protected = protected
}

// LBD returns the clause's Literal Block Distance.
func (a *ClauseArena) LBD(ref ClauseRef) int {
	return int(a.rec(ref).lbd)
}

// SetLBD stores the clause's Literal Block Distance.
func (a *ClauseArena) SetLBD(ref ClauseRef, lbd int) {
	a.rec(ref).lbd = int32(lbd)
}

// Activity returns the clause's activity score.
func (a *ClauseArena) Activity(ref ClauseRef) float64 {
	return a.rec(ref).activity
}

// SetActivity stores the clause's activity score.
func (a *ClauseArena) SetActivity(ref ClauseRef, act float64) {
	a.rec(ref).activity = act
}

// PrevPos returns the cached rescan position used by the Propagator.
func (a *ClauseArena) PrevPos(ref ClauseRef) int {
	p := a.rec(ref).prevPos
	if p < 2 || p >= len(a.rec(ref).literals) {
		return 2
	}
	return p
}

// SetPrevPos updates the cached rescan position.
func (a *ClauseArena) SetPrevPos(ref ClauseRef, pos int) {
	a.rec(ref).prevPos = pos
}

// Shrink truncates the clause's literal slice to newSize <= current size,
// used by simplifyClause to discard literals falsified at the root level. The
// discarded literals are recorded as wasted for later reclamation.
func (a *ClauseArena) Shrink(ref ClauseRef, newSize int) {
	r := a.rec(ref)
	if newSize >= len(r.literals) {
		return
	}
	a.wasted += len(r.literals) - newSize
	a.used -= len(r.literals) - newSize
	r.literals = r.literals[:newSize]
	if r.prevPos >= newSize {
		r.prevPos = 2
	}
}

// MarkDeleted marks the clause as deleted. Idempotent. The literals remain
// addressable until the next Compact so that callers mid-iteration do not
// observe a truncated slice.
func (a *ClauseArena) MarkDeleted(ref ClauseRef) {
	r := a.rec(ref)
	if r.deleted {
		return
	}
	r.deleted = true
	a.wasted += len(r.literals)
	a.used -= len(r.literals)
}

// WastedRatio returns wasted literals over live literals, the quantity
// Compact's trigger threshold is evaluated against.
func (a *ClauseArena) WastedRatio() float64 {
	if a.used == 0 {
		return 0
	}
	return float64(a.wasted) / float64(a.used)
}

// ShouldCompact reports whether wasted space has crossed the 25% threshold.
func (a *ClauseArena) ShouldCompact() bool {
	return a.WastedRatio() >= 0.25
}

// Compact relocates every live (non-deleted) clause to the front of the
// arena, invoking relocate exactly once per live clause with its old and new
// reference, in the order the clauses appear after compaction. Callers
// (Watch Manager, Solver's clause lists) must use relocate to rewrite every
// reference they hold; references not rewritten are dangling after Compact
// returns.
func (a *ClauseArena) Compact(relocate func(old, new ClauseRef)) {
	newRecords := make([]clauseRecord, 0, len(a.records))
	for i := range a.records {
		old := ClauseRef(i)
		r := &a.records[i]
		if r.deleted {
			continue
		}
		newRef := ClauseRef(len(newRecords))
		newRecords = append(newRecords, *r)
		if relocate != nil {
			relocate(old, newRef)
		}
	}
	a.records = newRecords
	a.wasted = 0
}
