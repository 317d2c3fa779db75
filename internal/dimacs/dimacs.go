// Package dimacs reads DIMACS CNF instances into a solver and writes DIMACS
// solution output, the two external collaborators spec'd in place of a
// hand-rolled parser (the core never does file I/O itself, spec §5).
package dimacs

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/rhartert/dimacs"

	"github.com/satkit/cdcl/internal/sat"
)

// Formula is the subset of *sat.Solver the loader needs, kept as an
// interface so tests can load into a fake.
type Formula interface {
	AddVariable() int
	AddClause([]sat.Literal) error
}

func open(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			file.Close()
			return nil, err
		}
	}
	return rc, nil
}

// Load parses the DIMACS CNF file at filename and installs its variables and
// clauses into f, via github.com/rhartert/dimacs's callback-driven reader
// (handles comments, header tolerance, and literals spanning lines).
func Load(filename string, gzipped bool, f Formula) error {
	r, err := open(filename, gzipped)
	if err != nil {
		return fmt.Errorf("dimacs: opening %q: %w", filename, err)
	}
	defer r.Close()

	b := &builder{f: f}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return fmt.Errorf("dimacs: parsing %q: %w", filename, err)
	}
	if b.errs != nil {
		return fmt.Errorf("dimacs: %q: %w", filename, b.errs)
	}
	return nil
}

// builder adapts Formula to dimacs.Builder, converting DIMACS' 1-based
// signed-integer literals to this package's 0-based Literal encoding. Clause
// errors are collected rather than aborting the parse, so a malformed
// instance is reported with every offending line rather than just the
// first.
type builder struct {
	f    Formula
	errs *multierror.Error
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("unsupported problem type %q", problem)
	}
	for i := 0; i < nVars; i++ {
		b.f.AddVariable()
	}
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	clause := make([]sat.Literal, 0, len(tmpClause))
	for _, l := range tmpClause {
		switch {
		case l < 0:
			clause = append(clause, sat.NegativeLiteral(-l-1))
		case l > 0:
			clause = append(clause, sat.PositiveLiteral(l-1))
		default:
			b.errs = multierror.Append(b.errs, fmt.Errorf("literal out of range: 0"))
			return nil
		}
	}
	if err := b.f.AddClause(clause); err != nil {
		b.errs = multierror.Append(b.errs, err)
	}
	return nil
}

func (b *builder) Comment(_ string) error {
	return nil
}

// WriteSolution writes the DIMACS solution-output format (spec §6): a
// status line, then for SAT a single "v ..." line listing every variable as
// a signed 1-based literal, terminated by 0.
func WriteSolution(w io.Writer, status sat.Status, model []bool) error {
	bw := bufio.NewWriter(w)
	switch status {
	case sat.StatusSAT:
		if _, err := fmt.Fprintln(bw, "s SATISFIABLE"); err != nil {
			return err
		}
		if _, err := bw.WriteString("v"); err != nil {
			return err
		}
		for v, val := range model {
			id := v + 1
			if !val {
				id = -id
			}
			if _, err := fmt.Fprintf(bw, " %d", id); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(" 0\n"); err != nil {
			return err
		}
	case sat.StatusUNSAT:
		if _, err := fmt.Fprintln(bw, "s UNSATISFIABLE"); err != nil {
			return err
		}
	default:
		if _, err := fmt.Fprintln(bw, "s UNKNOWN"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
