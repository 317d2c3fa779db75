package sat

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Status is the three-way outcome of a solving attempt.
type Status int8

const (
	StatusUnknown Status = iota
	StatusSAT
	StatusUNSAT
)

func (st Status) String() string {
	switch st {
	case StatusSAT:
		return "SATISFIABLE"
	case StatusUNSAT:
		return "UNSATISFIABLE"
	default:
		return "UNKNOWN"
	}
}

// RestartStrategy selects which Restart Controller policy is active.
type RestartStrategy int8

const (
	RestartHybrid RestartStrategy = iota
	RestartLuby
	RestartGlucose
	RestartNone
)

// Options configures a Solver. Zero value is not meaningful; use
// DefaultOptions as a base.
type Options struct {
	ClauseDecay   float64
	VariableDecay float64

	MaxConflicts int64
	MaxDecisions int64
	Timeout      time.Duration

	PhaseSaving     bool
	RandomPhaseProb float64 // initial probability; adaptively raised when nonzero, see order.go

	RestartStrategy     RestartStrategy
	LubyBase            int
	LubyInc             float64
	GlucoseFastAlpha    float64
	GlucoseSlowAlpha    float64
	GlucoseMinConflicts int64
	GlucoseK            float64
	RestartMinTrail     int // postponement threshold

	MaxLBD         int
	GlueLBD        int
	ReduceFraction float64
	ReduceInterval int
	Minimize       bool

	BCE           bool
	BVE           bool
	ElimMaxOcc    int
	ElimGrowLimit int

	// Proof, if non-nil, receives an Add/Delete record for every learned and
	// deleted clause. The core never opens files itself (spec §5); callers
	// that want a DRAT proof construct one (e.g. internal/drat.New) and set
	// this field before calling NewSolver.
	Proof DRATWriter

	// OnSnapshot, if non-nil, is called by Solve at the next safe point after
	// a SIGUSR1-style request (RequestSnapshot) arrives. The core never does
	// I/O itself; callers that want to print the snapshot (e.g. the CLI,
	// via zap) set this field before calling NewSolver. Solve calls it
	// synchronously from its own goroutine, so there is nothing for the
	// caller to synchronize.
	OnSnapshot func(SnapshotInfo)
}

// DRATWriter is the narrow proof-recording interface the Solver depends on.
// internal/drat.Writer implements it; the interface lives here, rather than
// importing internal/drat directly, since that package depends on Literal.
type DRATWriter interface {
	Add(lits []Literal) error
	Delete(lits []Literal) error
}

// SnapshotInfo is the progress snapshot the Driver hands to Options.OnSnapshot
// at the next safe point after a RequestSnapshot call (spec §5/§6).
type SnapshotInfo struct {
	Elapsed      time.Duration
	Decisions    int64
	Propagations int64
	Conflicts    int64
	Restarts     int64
	LearntCount  int64
	Level        int
	TrailSize    int
}

// DefaultOptions mirrors common CDCL solver defaults (Glucose/MiniSAT-
// family), extended with this repo's preprocessing and restart knobs.
var DefaultOptions = Options{
	ClauseDecay:         0.999,
	VariableDecay:       0.95,
	MaxConflicts:        -1,
	MaxDecisions:        -1,
	Timeout:             -1,
	PhaseSaving:         true,
	RandomPhaseProb:     0,
	RestartStrategy:     RestartHybrid,
	LubyBase:            100,
	LubyInc:             1.1,
	GlucoseFastAlpha:    0.8,
	GlucoseSlowAlpha:    0.9999,
	GlucoseMinConflicts: 100,
	GlucoseK:            0.8,
	RestartMinTrail:     0,
	MaxLBD:              -1,
	GlueLBD:             2,
	ReduceFraction:      0.5,
	ReduceInterval:      2000,
	Minimize:            true,
	BCE:                 true,
	BVE:                 true,
	ElimMaxOcc:          1000,
	ElimGrowLimit:       8,
}

// varState is the per-variable mutable record from spec §3.
type varState struct {
	level    int // -1 means unassigned; 0 is root
	reason   ClauseRef
	trailPos int
	phase    LBool // saved phase
	eliminated bool
}

// Solver is a single CDCL solver instance. All mutable state belongs to
// exactly one Solver; nothing here is safe for concurrent use (spec §5).
type Solver struct {
	arena   *ClauseArena
	watches *WatchManager

	constraints []ClauseRef // original (non-unit, non-eliminated-away) clauses
	learnts     []ClauseRef

	assigns []LBool // indexed by Literal
	vars    []varState

	trail    []Literal
	trailLim []int // level_start table: trailLim[d] = trail index where level d+1 begins
	propHead int

	order   *VarOrder
	restart *RestartController
	db      *ClauseDatabase
	prep    *Preprocessor
	drat    DRATWriter

	unsat bool

	opts      Options
	startTime time.Time
	hasLimits bool

	Stats Stats

	Models [][]bool

	seenVar *ResetSet

	lbdSeenAt []int32
	lbdStamp  int32

	tmpWatchers []watchEntry
	tmpLearnts  []Literal
	tmpReason   []Literal

	numEliminated int // variables removed from the trail's universe by BVE

	snapshotRequested atomic.Bool
}

// Stats holds search counters, exposed so a caller (e.g. the CLI binary's
// logger, or a SIGUSR1 handler) can report progress without the library
// itself doing any I/O.
type Stats struct {
	Conflicts    int64
	Decisions    int64
	Restarts     int64
	Propagations int64
	Iterations   int64
	LearntCount  int64
	DeletedCount int64
}

// NewSolver returns a solver configured with the given options.
func NewSolver(opts Options) *Solver {
	s := &Solver{
		arena:     NewClauseArena(),
		watches:   NewWatchManager(),
		opts:      opts,
		seenVar:   &ResetSet{},
		hasLimits: opts.MaxConflicts >= 0 || opts.MaxDecisions >= 0 || opts.Timeout >= 0,
	}
	s.order = NewVarOrder(opts.VariableDecay, opts.PhaseSaving, opts.RandomPhaseProb)
	s.restart = NewRestartController(opts)
	s.db = NewClauseDatabase(s.arena, opts)
	s.prep = NewPreprocessor(s, opts)
	s.drat = opts.Proof
	return s
}

// NewDefaultSolver returns a solver using DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

// NumVariables returns the number of variables declared so far, including
// ones since eliminated by preprocessing.
func (s *Solver) NumVariables() int {
	return len(s.vars)
}

// NumEliminated returns the number of variables removed by bounded variable
// elimination. Eliminated variables are pulled out of the decision heap
// (preprocess.go's order.Remove) and never appear on the trail, so they must
// be excluded when checking whether search has assigned everything it can.
func (s *Solver) NumEliminated() int {
	return s.numEliminated
}

// NumAssigns returns the number of literals currently on the trail.
func (s *Solver) NumAssigns() int {
	return len(s.trail)
}

// NumConstraints returns the number of original (non-learnt) clauses.
func (s *Solver) NumConstraints() int {
	return len(s.constraints)
}

// NumLearnts returns the number of learnt clauses currently retained.
func (s *Solver) NumLearnts() int {
	return len(s.learnts)
}

// PositiveLiteral returns the positive literal of variable v.
func (s *Solver) PositiveLiteral(v int) Literal { return PositiveLiteral(v) }

// NegativeLiteral returns the negative literal of variable v.
func (s *Solver) NegativeLiteral(v int) Literal { return NegativeLiteral(v) }

// VarValue returns the current truth value of variable x.
func (s *Solver) VarValue(x int) LBool {
	return s.assigns[PositiveLiteral(x)]
}

// LitValue returns the current truth value of literal l.
func (s *Solver) LitValue(l Literal) LBool {
	return s.assigns[l]
}

// IsEliminated reports whether BVE removed variable v from the search.
func (s *Solver) IsEliminated(v int) bool {
	return s.vars[v].eliminated
}

// AddVariable declares a new variable and returns its ID (0-based, matching
// the teacher; callers that want spec's 1-based IDs add 1 at the edges,
// e.g. in internal/dimacs).
func (s *Solver) AddVariable() int {
	v := len(s.vars)
	s.vars = append(s.vars, varState{level: -1, reason: NoRef, trailPos: -1})
	s.assigns = append(s.assigns, Unknown, Unknown)
	s.watches.Grow(len(s.assigns))
	s.seenVar.Expand()
	s.order.AddVar(v)
	s.prep.AddVar(v)
	return v
}

// AddClause adds an original clause. Must be called at decision level 0.
// Duplicate literals are removed, tautological clauses are silently
// dropped, and an empty resulting clause marks the instance UNSAT.
func (s *Solver) AddClause(literals []Literal) error {
	if s.decisionLevel() != 0 {
		return fmt.Errorf("sat: AddClause called at decision level %d, must be 0", s.decisionLevel())
	}
	ref, ok, err := s.newClause(literals, false)
	if err != nil {
		return err
	}
	if !ok {
		s.unsat = true
		return nil
	}
	if ref != NoRef {
		s.constraints = append(s.constraints, ref)
		s.prep.OnClauseAdded(ref)
	}
	return nil
}

// watch registers ref's two watched literals (lits[0], lits[1]) with the
// Watch Manager.
func (s *Solver) watch(ref ClauseRef) {
	lits := s.arena.Literals(ref)
	s.watches.AddLong(lits[0].Opposite(), ref, lits[1])
	s.watches.AddLong(lits[1].Opposite(), ref, lits[0])
}

// unwatch removes ref from both of its watched literals' lists.
func (s *Solver) unwatch(ref ClauseRef) {
	lits := s.arena.Literals(ref)
	s.watches.RemoveForClause(ref, lits[0].Opposite(), lits[1].Opposite())
}

// deleteClause marks ref deleted in the arena and removes its watches. The
// caller is responsible for removing ref from whichever of constraints/
// learnts holds it.
func (s *Solver) deleteClause(ref ClauseRef) {
	if s.drat != nil {
		s.drat.Delete(s.arena.Literals(ref))
	}
	s.unwatch(ref)
	s.arena.MarkDeleted(ref)
}

func (s *Solver) enqueue(l Literal, from ClauseRef) bool {
	switch s.LitValue(l) {
	case False:
		return false
	case True:
		return true
	default:
		v := l.VarID()
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		s.vars[v].level = s.decisionLevel()
		s.vars[v].reason = from
		s.vars[v].trailPos = len(s.trail)
		s.trail = append(s.trail, l)
		if from != NoRef {
			s.arena.SetProtected(from, true)
		}
		return true
	}
}

func (s *Solver) assume(l Literal) bool {
	s.trailLim = append(s.trailLim, len(s.trail))
	return s.enqueue(l, NoRef)
}

func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()

	if s.vars[v].reason != NoRef {
		s.arena.SetProtected(s.vars[v].reason, false)
	}

	s.order.Reinsert(v, s.VarValue(v))
	s.assigns[l] = Unknown
	s.assigns[l.Opposite()] = Unknown
	s.vars[v].reason = NoRef
	s.vars[v].level = -1
	s.vars[v].trailPos = -1

	s.trail = s.trail[:len(s.trail)-1]
}

func (s *Solver) cancel() {
	lim := s.trailLim[len(s.trailLim)-1]
	for len(s.trail) > lim {
		s.undoOne()
	}
	s.trailLim = s.trailLim[:len(s.trailLim)-1]
}

// cancelUntil backtracks to the given decision level, restoring the trail,
// propHead, and heap membership of every unassigned variable.
func (s *Solver) cancelUntil(level int) {
	for s.decisionLevel() > level {
		s.cancel()
	}
	if s.propHead > len(s.trail) {
		s.propHead = len(s.trail)
	}
}

func (s *Solver) bumpVarActivity(v int) {
	s.order.Bump(v)
}

func (s *Solver) decayVarActivity() {
	s.order.Decay()
}

func (s *Solver) levelOf(v int) int {
	return s.vars[v].level
}

func (s *Solver) reasonOf(v int) ClauseRef {
	return s.vars[v].reason
}

// simplifyDB simplifies and drops satisfied clauses from both the original
// and learnt clause lists according to the root-level assignment. Must only
// be called at decision level 0 with an empty propagation queue.
func (s *Solver) simplifyDB() {
	s.constraints = s.simplifyList(s.constraints)
	s.learnts = s.simplifyList(s.learnts)
}

func (s *Solver) simplifyList(refs []ClauseRef) []ClauseRef {
	j := 0
	for i := 0; i < len(refs); i++ {
		ref := refs[i]
		if s.simplifyClause(ref) {
			s.deleteClause(ref)
			continue
		}
		refs[j] = ref
		j++
	}
	return refs[:j]
}

// maybeCompact triggers an arena compaction when wasted space crosses the
// arena's threshold, rewriting the Watch Manager and the clause lists to
// the relocated references.
func (s *Solver) maybeCompact() {
	if !s.arena.ShouldCompact() {
		return
	}
	relocations := make(map[ClauseRef]ClauseRef, len(s.constraints)+len(s.learnts))
	s.arena.Compact(func(oldRef, newRef ClauseRef) {
		relocations[oldRef] = newRef
	})
	s.watches.Rebuild(relocations)
	for i, r := range s.constraints {
		s.constraints[i] = relocations[r]
	}
	for i, r := range s.learnts {
		s.learnts[i] = relocations[r]
	}
	// Reasons on the trail may reference relocated clauses.
	for v := range s.vars {
		if s.vars[v].reason != NoRef {
			if nr, ok := relocations[s.vars[v].reason]; ok {
				s.vars[v].reason = nr
			}
		}
	}
}
