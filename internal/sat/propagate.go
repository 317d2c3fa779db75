package sat

// Propagate drives the trail forward from propHead to the top of the trail,
// applying unit propagation via the two-watched-literal scheme. It returns
// NoRef once propHead == len(trail), or the reference of a falsified clause
// on conflict (the remaining propagation queue is dropped in that case, per
// spec §4.3).
//
// Watch-list convention (matching the teacher): a clause watching literal p
// is indexed under watches[p], and is revisited whenever p is assigned true
// — because the clause actually contains ¬p, which has just become false.
func (s *Solver) Propagate() ClauseRef {
	for s.propHead < len(s.trail) {
		l := s.trail[s.propHead] // literal that just became true
		s.propHead++

		list := s.watches.WatchList(l)
		s.tmpWatchers = append(s.tmpWatchers[:0], list...)
		keep := list[:0]
		falseLit := l.Opposite() // the clause literal that just became false

		conflict := NoRef
		for i := 0; i < len(s.tmpWatchers); i++ {
			w := s.tmpWatchers[i]

			if s.LitValue(w.blocker) == True {
				keep = append(keep, w)
				continue
			}

			lits := s.arena.Literals(w.ref)

			// Normalize so that lits[1] is the literal that just became
			// false; lits[0] is then the other watched literal.
			if lits[0] == falseLit {
				lits[0], lits[1] = lits[1], lits[0]
			}

			if lits[0] != w.blocker && s.LitValue(lits[0]) == True {
				keep = append(keep, watchEntry{ref: w.ref, blocker: lits[0]})
				continue
			}

			// Search for a new literal to watch, starting from the cached
			// rescan position so a long clause isn't rescanned from
			// lits[2] on every single propagation.
			found := false
			n := len(lits)
			if n > 2 {
				prev := s.arena.PrevPos(w.ref)
				span := n - 2
				for scan := 0; scan < span; scan++ {
					idx := 2 + (prev-2+scan)%span
					if s.LitValue(lits[idx]) != False {
						lits[1], lits[idx] = lits[idx], lits[1]
						s.arena.SetPrevPos(w.ref, idx)
						s.watches.AddLong(lits[1].Opposite(), w.ref, lits[0])
						found = true
						break
					}
				}
			}
			if found {
				continue
			}

			// No replacement: the clause is unit under lits[0] (enqueue
			// it) or falsified (conflict) if lits[0] is also false. Either
			// way this watch stays put.
			keep = append(keep, watchEntry{ref: w.ref, blocker: lits[0]})
			if s.LitValue(lits[0]) == False {
				keep = append(keep, s.tmpWatchers[i+1:]...)
				conflict = w.ref
				break
			}
			s.enqueue(lits[0], w.ref)
		}

		s.watches.SetWatchList(l, keep)

		if conflict != NoRef {
			s.propHead = len(s.trail)
			return conflict
		}
	}

	return NoRef
}
