package sat

// watchEntry is one entry in a literal's watch list: a reference to the
// clause being watched plus a blocker literal known (at some point) to be
// true, which lets the Propagator skip loading the clause from the arena
// when the blocker is still true. This is a pure performance hint: nothing
// depends on the blocker being fresh, only on the clause being revisited
// whenever the watched literal is actually falsified.
//
// Every clause of size >= 2, including binary clauses, is stored in the
// ClauseArena and watched this way; spec's design notes explicitly sanction
// this "all clauses in the arena" alternative to storing binary clauses only
// as watch-entry pairs, at the cost of one extra arena load per binary
// propagation, in exchange for a single, uniform Propagator code path.
type watchEntry struct {
	ref     ClauseRef
	blocker Literal
}

// WatchManager indexes, per literal, the clauses that must be revisited when
// that literal becomes true: the list for l holds the clauses watching ¬l,
// which has just become false (see Solver.watch and Propagate).
type WatchManager struct {
	lists [][]watchEntry // indexed by Literal
}

// NewWatchManager returns an empty manager.
func NewWatchManager() *WatchManager {
	return &WatchManager{}
}

// Grow extends the manager to cover newLitCount literals (two per
// variable), called whenever the Solver adds a variable.
func (w *WatchManager) Grow(newLitCount int) {
	for len(w.lists) < newLitCount {
		w.lists = append(w.lists, nil)
	}
}

// AddLong appends a watch entry for ref to L's list.
func (w *WatchManager) AddLong(l Literal, ref ClauseRef, blocker Literal) {
	w.lists[l] = append(w.lists[l], watchEntry{ref: ref, blocker: blocker})
}

// WatchList returns the backing list for literal l.
func (w *WatchManager) WatchList(l Literal) []watchEntry {
	return w.lists[l]
}

// SetWatchList replaces literal l's watch list, e.g. after an in-place
// filter has shrunk it.
func (w *WatchManager) SetWatchList(l Literal, list []watchEntry) {
	w.lists[l] = list
}

// RemoveForClause drops every watch entry referencing ref from both of its
// watched literals' lists.
func (w *WatchManager) RemoveForClause(ref ClauseRef, watchedA, watchedB Literal) {
	w.removeFromList(watchedA, ref)
	w.removeFromList(watchedB, ref)
}

func (w *WatchManager) removeFromList(l Literal, ref ClauseRef) {
	list := w.lists[l]
	j := 0
	for i := 0; i < len(list); i++ {
		if list[i].ref != ref {
			list[j] = list[i]
			j++
		}
	}
	w.lists[l] = list[:j]
}

// Rebuild rewrites every watch entry's reference after an arena Compact,
// using the relocation table built during that compaction. Entries whose
// clause was deleted (and therefore absent from relocations) are dropped.
func (w *WatchManager) Rebuild(relocations map[ClauseRef]ClauseRef) {
	for i, list := range w.lists {
		j := 0
		for k := 0; k < len(list); k++ {
			e := list[k]
			if newRef, ok := relocations[e.ref]; ok {
				e.ref = newRef
				list[j] = e
				j++
			}
		}
		w.lists[i] = list[:j]
	}
}
