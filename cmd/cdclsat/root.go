package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satkit/cdcl/internal/dimacs"
	"github.com/satkit/cdcl/internal/drat"
	"github.com/satkit/cdcl/internal/sat"
)

// flags mirrors the command-line surface from spec §6.
type flags struct {
	gzip bool

	conflicts int64
	decisions int64
	timeout   time.Duration

	varDecay    float64
	clauseDecay float64

	restartStrategy  string
	restartFirst     int
	restartInc       float64
	noRestarts       bool
	glucoseFastAlpha float64
	glucoseSlowAlpha float64
	glucoseMinConf   int64
	glucoseK         float64

	noPhaseSaving bool
	randomPhase   bool
	randomProb    float64

	maxLBD         int
	glueLBD        int
	reduceFraction float64
	reduceInterval int
	noMinimize     bool

	noBCE      bool
	elim       bool
	elimMaxOcc int
	elimGrow   int

	proofPath   string
	binaryProof bool
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "cdclsat <instance.cnf>",
		Short: "A from-scratch CDCL SAT solver",
		Long:  "cdclsat reads a DIMACS CNF instance and reports SAT/UNSAT with an optional model and DRAT proof.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(f, args[0])
		},
	}

	fs := cmd.Flags()
	fs.BoolVar(&f.gzip, "gzip", false, "instance file is gzip-compressed")

	fs.Int64Var(&f.conflicts, "conflicts", -1, "maximum number of conflicts (-1 for unlimited)")
	fs.Int64Var(&f.decisions, "decisions", -1, "maximum number of decisions (-1 for unlimited)")
	fs.DurationVar(&f.timeout, "time", -1, "wall-clock time budget (-1 for unlimited)")

	fs.Float64Var(&f.varDecay, "var-decay", sat.DefaultOptions.VariableDecay, "variable activity decay factor")
	fs.Float64Var(&f.clauseDecay, "clause-decay", sat.DefaultOptions.ClauseDecay, "clause activity decay factor")

	fs.StringVar(&f.restartStrategy, "restart", "hybrid", "restart strategy: hybrid, luby, glucose-ema, glucose-avg")
	fs.IntVar(&f.restartFirst, "restart-first", sat.DefaultOptions.LubyBase, "base Luby restart length")
	fs.Float64Var(&f.restartInc, "restart-inc", sat.DefaultOptions.LubyInc, "Luby restart length multiplier")
	fs.BoolVar(&f.noRestarts, "no-restarts", false, "disable restarts entirely")
	fs.Float64Var(&f.glucoseFastAlpha, "glucose-fast-alpha", sat.DefaultOptions.GlucoseFastAlpha, "Glucose fast EMA decay")
	fs.Float64Var(&f.glucoseSlowAlpha, "glucose-slow-alpha", sat.DefaultOptions.GlucoseSlowAlpha, "Glucose slow EMA decay")
	fs.Int64Var(&f.glucoseMinConf, "glucose-min-conflicts", sat.DefaultOptions.GlucoseMinConflicts, "conflicts before Glucose restart can trigger")
	fs.Float64Var(&f.glucoseK, "glucose-k", sat.DefaultOptions.GlucoseK, "Glucose fast/slow ratio threshold")

	fs.BoolVar(&f.noPhaseSaving, "no-phase-saving", false, "disable phase saving")
	fs.BoolVar(&f.randomPhase, "random-phase", false, "start with a nonzero random-phase probability")
	fs.Float64Var(&f.randomProb, "random-prob", 0.02, "initial random-phase probability when --random-phase is set")

	fs.IntVar(&f.maxLBD, "max-lbd", sat.DefaultOptions.MaxLBD, "reserved for future LBD-based clause filtering")
	fs.IntVar(&f.glueLBD, "glue-lbd", sat.DefaultOptions.GlueLBD, "LBD at or below which a learned clause is exempt from eviction")
	fs.Float64Var(&f.reduceFraction, "reduce-fraction", sat.DefaultOptions.ReduceFraction, "fraction of learned clauses kept on each reduction")
	fs.IntVar(&f.reduceInterval, "reduce-interval", sat.DefaultOptions.ReduceInterval, "conflicts between learned-clause database reductions")
	fs.BoolVar(&f.noMinimize, "no-minimize", false, "disable learned-clause minimization")

	fs.BoolVar(&f.noBCE, "no-bce", false, "disable blocked-clause elimination")
	fs.BoolVar(&f.elim, "elim", sat.DefaultOptions.BVE, "enable bounded variable elimination")
	fs.IntVar(&f.elimMaxOcc, "elim-max-occ", sat.DefaultOptions.ElimMaxOcc, "skip a variable for elimination past this occurrence count")
	fs.IntVar(&f.elimGrow, "elim-grow", sat.DefaultOptions.ElimGrowLimit, "maximum clause-count growth tolerated by elimination")

	fs.StringVar(&f.proofPath, "proof", "", "write a DRAT proof to this path")
	fs.BoolVar(&f.binaryProof, "binary-proof", false, "emit the proof in binary DRAT encoding")

	return cmd
}

func (f *flags) toOptions() sat.Options {
	opts := sat.DefaultOptions

	opts.MaxConflicts = f.conflicts
	opts.MaxDecisions = f.decisions
	opts.Timeout = f.timeout

	opts.VariableDecay = f.varDecay
	opts.ClauseDecay = f.clauseDecay

	switch f.restartStrategy {
	case "luby":
		opts.RestartStrategy = sat.RestartLuby
	case "glucose-ema", "glucose-avg":
		opts.RestartStrategy = sat.RestartGlucose
	default:
		opts.RestartStrategy = sat.RestartHybrid
	}
	if f.noRestarts {
		opts.RestartStrategy = sat.RestartNone
	}
	opts.LubyBase = f.restartFirst
	opts.LubyInc = f.restartInc
	opts.GlucoseFastAlpha = f.glucoseFastAlpha
	opts.GlucoseSlowAlpha = f.glucoseSlowAlpha
	opts.GlucoseMinConflicts = f.glucoseMinConf
	opts.GlucoseK = f.glucoseK

	opts.PhaseSaving = !f.noPhaseSaving
	if f.randomPhase {
		opts.RandomPhaseProb = f.randomProb
	}

	opts.MaxLBD = f.maxLBD
	opts.GlueLBD = f.glueLBD
	opts.ReduceFraction = f.reduceFraction
	opts.ReduceInterval = f.reduceInterval
	opts.Minimize = !f.noMinimize

	opts.BCE = !f.noBCE
	opts.BVE = f.elim
	opts.ElimMaxOcc = f.elimMaxOcc
	opts.ElimGrowLimit = f.elimGrow

	return opts
}

// exit codes from spec §6.
const (
	exitSAT     = 10
	exitUNSAT   = 20
	exitUnknown = 0
)

func runSolve(f *flags, instancePath string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("cdclsat: setting up logger: %w", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	opts := f.toOptions()

	var proof *drat.Writer
	if f.proofPath != "" {
		proof, err = drat.New(f.proofPath, f.binaryProof)
		if err != nil {
			sugar.Warnw("could not open proof file, continuing without a proof", "path", f.proofPath, "error", err)
		} else {
			opts.Proof = proof
		}
	}

	opts.OnSnapshot = func(info sat.SnapshotInfo) {
		sugar.Infow("progress snapshot",
			"elapsed", info.Elapsed.String(),
			"decisions", info.Decisions,
			"propagations", info.Propagations,
			"conflicts", info.Conflicts,
			"restarts", info.Restarts,
			"learnts", info.LearntCount,
			"level", info.Level,
			"trailSize", info.TrailSize,
		)
	}

	s := sat.NewSolver(opts)
	if err := dimacs.Load(instancePath, f.gzip, s); err != nil {
		return fmt.Errorf("cdclsat: %w", err)
	}

	sugar.Infow("loaded instance",
		"variables", s.NumVariables(),
		"clauses", s.NumConstraints(),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1)
	done := make(chan struct{})
	go watchSignals(s, sigCh, done)
	defer close(done)

	start := time.Now()
	status := s.Solve(nil)
	elapsed := time.Since(start)

	sugar.Infow("search complete",
		"status", status.String(),
		"elapsed", elapsed.String(),
		"conflicts", s.Stats.Conflicts,
		"decisions", s.Stats.Decisions,
		"restarts", s.Stats.Restarts,
		"learnts", s.Stats.LearntCount,
	)

	var model []bool
	if status == sat.StatusSAT && len(s.Models) > 0 {
		model = s.Models[len(s.Models)-1]
	}
	if err := dimacs.WriteSolution(os.Stdout, status, model); err != nil {
		return fmt.Errorf("cdclsat: writing solution: %w", err)
	}

	// os.Exit below skips deferred calls, so the proof is flushed here.
	if proof != nil {
		if err := proof.Close(); err != nil {
			sugar.Warnw("could not finish proof file", "path", f.proofPath, "error", err)
		}
	}

	switch status {
	case sat.StatusSAT:
		os.Exit(exitSAT)
	case sat.StatusUNSAT:
		os.Exit(exitUNSAT)
	default:
		os.Exit(exitUnknown)
	}
	return nil
}

// watchSignals implements the SIGUSR1 progress-snapshot contract (spec §6):
// it only flips a flag (RequestSnapshot, backed by an atomic.Bool) that the
// Driver polls at the top of its main loop. This goroutine never reads
// solver state itself — Solve is the sole owner of Stats/trail/decision
// level, and it runs the OnSnapshot callback (set up in runSolve) on its own
// goroutine once it observes the flag, so there is nothing here to race.
func watchSignals(s *sat.Solver, sigCh chan os.Signal, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-sigCh:
			s.RequestSnapshot()
		}
	}
}
