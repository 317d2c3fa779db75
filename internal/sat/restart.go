package sat

// EMA is an exponential moving average, ported from the teacher's dead
// sat/avg.go into active use here as the Glucose fast/slow trackers.
type EMA struct {
	decay float64
	value float64
	init  float64 // bias-correction accumulator: decay^n after n updates
	n     int64
}

// NewEMA returns an EMA with the given decay (closer to 1 means slower to
// react). The first few updates are bias-corrected the standard way so the
// average doesn't start artificially low.
func NewEMA(decay float64) *EMA {
	return &EMA{decay: decay, init: 1}
}

// Add folds a new sample into the average.
func (e *EMA) Add(x float64) {
	e.n++
	e.value = e.decay*e.value + (1-e.decay)*x
	e.init *= e.decay
}

// Val returns the bias-corrected current average.
func (e *EMA) Val() float64 {
	if e.n == 0 {
		return 0
	}
	correction := 1 - e.init
	if correction <= 0 {
		return e.value
	}
	return e.value / correction
}

// luby returns the i-th term (0-indexed) of the Luby sequence: 1, 1, 2, 1,
// 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8, ... used to schedule restart lengths
// without a single dominant periodicity.
func luby(i int) int {
	// Find the finite sequence [1..size] containing i.
	size, seq := 1, 0
	for size < i+1 {
		seq++
		size = 2*size + 1
	}
	for size-1 != i {
		size = (size - 1) / 2
		seq--
		i = i % size
	}
	return 1 << uint(seq)
}

// RestartController decides when the Search Driver should tear down to
// decision level 0 and start a fresh round of decisions (spec §4.6). Three
// selectable strategies share one controller: Luby (geometric schedule by
// conflict count), Glucose (fast/slow LBD EMA comparison), and Hybrid
// (restart when either the Glucose or the Luby trigger fires, the default).
type RestartController struct {
	strategy RestartStrategy

	lubyBase              int
	lubyInc               float64
	lubyIdx               int
	conflictsSinceRestart int64
	nextLubyTarget        int64

	fast                *EMA
	slow                *EMA
	glucoseK            float64
	glucoseMinConflicts int64

	minTrail int
}

// NewRestartController returns a controller configured from opts.
func NewRestartController(opts Options) *RestartController {
	rc := &RestartController{
		strategy:            opts.RestartStrategy,
		lubyBase:            opts.LubyBase,
		lubyInc:             opts.LubyInc,
		fast:                NewEMA(opts.GlucoseFastAlpha),
		slow:                NewEMA(opts.GlucoseSlowAlpha),
		glucoseK:            opts.GlucoseK,
		glucoseMinConflicts: opts.GlucoseMinConflicts,
		minTrail:            opts.RestartMinTrail,
	}
	rc.nextLubyTarget = int64(float64(rc.lubyBase) * float64(luby(1)) * rc.lubyInc)
	return rc
}

// OnConflict records a conflict's LBD and advances the Luby counter.
func (rc *RestartController) OnConflict(lbd int) {
	rc.conflictsSinceRestart++
	rc.fast.Add(float64(lbd))
	rc.slow.Add(float64(lbd))
}

// ShouldRestart reports whether the Search Driver should restart now, given
// the current trail length (used for postponement: a trail shorter than
// minTrail is left alone even past the trigger, spec §4.6's postponement
// clause).
func (rc *RestartController) ShouldRestart(trailLen int) bool {
	if trailLen < rc.minTrail {
		return false
	}
	switch rc.strategy {
	case RestartNone:
		return false
	case RestartLuby:
		return rc.lubyDue()
	case RestartGlucose:
		return rc.glucoseDue()
	default: // RestartHybrid
		// Accept either trigger: Glucose normally decides it, but when LBD
		// stays flat glucoseDue rarely fires, so the geometric Luby schedule
		// is kept as a fallback that can still rescue a stalled search.
		return rc.lubyDue() || rc.glucoseDue()
	}
}

func (rc *RestartController) lubyDue() bool {
	return rc.conflictsSinceRestart >= rc.nextLubyTarget
}

func (rc *RestartController) glucoseDue() bool {
	if int64(rc.slow.n) < rc.glucoseMinConflicts {
		return false
	}
	return rc.fast.Val() > rc.glucoseK*rc.slow.Val()
}

// OnRestart resets the per-restart conflict counter and advances the Luby
// index, to be called right after the Search Driver backtracks to level 0.
func (rc *RestartController) OnRestart() {
	rc.conflictsSinceRestart = 0
	rc.lubyIdx++
	rc.nextLubyTarget = int64(float64(rc.lubyBase) * float64(luby(rc.lubyIdx+1)) * rc.lubyInc)
}
