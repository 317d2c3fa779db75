package sat

import "time"

// Solve runs the main CDCL loop (spec §4.9) to completion or until a
// resource limit is breached. assumptions are additional literals pushed as
// decisions before search proper begins; the result is UNSAT immediately if
// one is already falsified at level 0.
func (s *Solver) Solve(assumptions []Literal) Status {
	if s.unsat {
		return StatusUNSAT
	}

	s.startTime = time.Now()

	if s.decisionLevel() == 0 {
		if !s.preprocess() {
			return StatusUNSAT
		}
	}

	if !s.pushAssumptions(assumptions) {
		return StatusUNSAT
	}
	assumptionLevel := s.decisionLevel()

	for {
		s.Stats.Iterations++
		s.maybeSnapshot()

		confl := s.Propagate()
		s.Stats.Propagations++

		if confl == NoRef {
			if s.allAssigned() {
				model := s.buildModel()
				s.Models = append(s.Models, model)
				return StatusSAT
			}
			if status, done := s.checkLimits(); done {
				return status
			}
			s.decide()
			continue
		}

		if s.decisionLevel() == assumptionLevel {
			return StatusUNSAT
		}

		status, done := s.analyzeAndLearn(confl, assumptionLevel)
		if done {
			return status
		}
	}
}

func (s *Solver) preprocess() bool {
	if s.Propagate() != NoRef {
		s.unsat = true
		return false
	}
	s.simplifyDB()
	if !s.prep.Run() {
		s.unsat = true
		return false
	}
	if s.Propagate() != NoRef {
		s.unsat = true
		return false
	}
	s.simplifyDB()
	return !s.unsat
}

// pushAssumptions opens one decision level per assumption literal that is not
// already true, per the PUSH_ASSUMPTIONS state. Returns false immediately if
// one is already false.
func (s *Solver) pushAssumptions(assumptions []Literal) bool {
	for _, a := range assumptions {
		switch s.LitValue(a) {
		case False:
			return false
		case True:
			continue
		default:
			s.assume(a)
			if confl := s.Propagate(); confl != NoRef {
				return false
			}
		}
	}
	return true
}

func (s *Solver) allAssigned() bool {
	return s.NumAssigns() == s.NumVariables()-s.numEliminated
}

// decide implements the DECIDE state: pick a variable and phase, open a new
// decision level, enqueue.
func (s *Solver) decide() {
	v, ok := s.order.Pick(s)
	if !ok {
		return // nothing left to decide; next Propagate/allAssigned settles it
	}
	phase := s.order.Phase(v)
	var l Literal
	if phase {
		l = PositiveLiteral(v)
	} else {
		l = NegativeLiteral(v)
	}
	s.assume(l)
	s.Stats.Decisions++
	s.order.NoteDecision(s.decisionLevel(), len(s.trail))
}

// analyzeAndLearn implements ANALYZE + BACKTRACK_AND_LEARN. minLevel is the
// decision level reached after pushing the assumptions: backjumping is never allowed to cross below
// that level, since assumptions are not retractable within one Solve call.
func (s *Solver) analyzeAndLearn(confl ClauseRef, minLevel int) (Status, bool) {
	s.Stats.Conflicts++

	learnt, backLevel := s.analyze(confl)
	if backLevel < minLevel {
		backLevel = minLevel
	}

	lbd := s.computeLBD(learnt)

	s.cancelUntil(backLevel)

	ref, ok, err := s.newClause(learnt, true)
	if err != nil || !ok {
		s.unsat = true
		return StatusUNSAT, true
	}
	if ref != NoRef {
		s.arena.SetLBD(ref, lbd)
		s.arena.SetGlue(ref, lbd <= s.opts.GlueLBD)
		s.learnts = append(s.learnts, ref)
		s.Stats.LearntCount++
		s.bumpClauseActivity(ref)
		s.trySubsume(ref)
	}

	s.decayVarActivity()
	s.decayClauseActivity()

	s.restart.OnConflict(lbd)
	s.db.OnConflict()

	if s.restart.ShouldRestart(len(s.trail)) {
		s.cancelUntil(minLevel)
		s.restart.OnRestart()
		s.Stats.Restarts++
	}

	if s.db.ShouldReduce(len(s.learnts)) {
		s.reduceLearnts()
	}

	s.maybeCompact()

	if status, done := s.checkLimits(); done {
		return status, true
	}

	return StatusUnknown, false
}

// checkLimits reports whether a configured resource limit has been breached,
// in which case the Driver must return UNKNOWN immediately.
func (s *Solver) checkLimits() (Status, bool) {
	if !s.hasLimits {
		return StatusUnknown, false
	}
	if s.opts.MaxConflicts >= 0 && s.Stats.Conflicts >= s.opts.MaxConflicts {
		return StatusUnknown, true
	}
	if s.opts.MaxDecisions >= 0 && s.Stats.Decisions >= s.opts.MaxDecisions {
		return StatusUnknown, true
	}
	if s.opts.Timeout >= 0 && time.Since(s.startTime) >= s.opts.Timeout {
		return StatusUnknown, true
	}
	return StatusUnknown, false
}

// RequestSnapshot sets the flag an external signal handler uses to ask for a
// statistics snapshot at the next safe point (spec §5's cancellation model).
// Safe to call from a goroutine other than the one running Solve: the flag
// is an atomic.Bool, and Solve is the only reader, polling it at the top of
// the main loop rather than letting a second goroutine touch solver state.
func (s *Solver) RequestSnapshot() {
	s.snapshotRequested.Store(true)
}

// TakeSnapshotRequest reports and clears a pending snapshot request.
func (s *Solver) TakeSnapshotRequest() bool {
	return s.snapshotRequested.Swap(false)
}

// maybeSnapshot calls Options.OnSnapshot, if a request is pending and a
// callback is configured. Called only from Solve's own goroutine, at the top
// of the main loop, so Stats/trail/decisionLevel reads here never race with
// the rest of the loop body.
func (s *Solver) maybeSnapshot() {
	if !s.TakeSnapshotRequest() || s.opts.OnSnapshot == nil {
		return
	}
	s.opts.OnSnapshot(SnapshotInfo{
		Elapsed:      time.Since(s.startTime),
		Decisions:    s.Stats.Decisions,
		Propagations: s.Stats.Propagations,
		Conflicts:    s.Stats.Conflicts,
		Restarts:     s.Stats.Restarts,
		LearntCount:  s.Stats.LearntCount,
		Level:        s.decisionLevel(),
		TrailSize:    len(s.trail),
	})
}
