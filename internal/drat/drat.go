// Package drat emits DRAT proofs of unsatisfiability (spec §6), the
// external-collaborator proof format: an "a"-record per learned clause and a
// "d"-record per deleted clause, replayable by an independent checker.
package drat

import (
	"bufio"
	"fmt"
	"os"

	"github.com/satkit/cdcl/internal/sat"
)

// Writer appends DRAT records to a file as the solver learns and deletes
// clauses. It is not on the correctness path (spec §5): writes are buffered
// and a failure to open the proof file is non-fatal to the caller, which may
// choose to run without a proof.
type Writer struct {
	f      *os.File
	w      *bufio.Writer
	binary bool
}

// New opens (truncating) the proof file at path. If binary is true, records
// are emitted in the binary DRAT encoding; otherwise ASCII.
func New(path string, binary bool) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("drat: creating %q: %w", path, err)
	}
	return &Writer{f: f, w: bufio.NewWriter(f), binary: binary}, nil
}

// Add emits an addition record for a newly learned clause.
func (w *Writer) Add(lits []sat.Literal) error {
	if w.binary {
		return w.writeBinary('a', lits)
	}
	return w.writeASCII("", lits)
}

// Delete emits a deletion record for a clause leaving the database.
func (w *Writer) Delete(lits []sat.Literal) error {
	if w.binary {
		return w.writeBinary('d', lits)
	}
	return w.writeASCII("d ", lits)
}

func (w *Writer) writeASCII(prefix string, lits []sat.Literal) error {
	if _, err := w.w.WriteString(prefix); err != nil {
		return err
	}
	for _, l := range lits {
		id := l.VarID() + 1
		if !l.IsPositive() {
			id = -id
		}
		if _, err := fmt.Fprintf(w.w, "%d ", id); err != nil {
			return err
		}
	}
	_, err := w.w.WriteString("0\n")
	return err
}

// writeBinary emits the binary DRAT encoding: a tag byte ('a' or 'd'),
// then each literal as (var+1)<<1 | sign varint-coded with a zero
// terminator, matching the format drat-trim accepts.
func (w *Writer) writeBinary(tag byte, lits []sat.Literal) error {
	if err := w.w.WriteByte(tag); err != nil {
		return err
	}
	for _, l := range lits {
		id := uint64(l.VarID()+1) << 1
		if !l.IsPositive() {
			id |= 1
		}
		if err := writeVarint(w.w, id); err != nil {
			return err
		}
	}
	return w.w.WriteByte(0)
}

func writeVarint(w *bufio.Writer, x uint64) error {
	for x >= 0x80 {
		if err := w.WriteByte(byte(x) | 0x80); err != nil {
			return err
		}
		x >>= 7
	}
	return w.WriteByte(byte(x))
}

// Close flushes buffered records and emits the closing empty-clause addition
// that marks a completed UNSAT proof, then closes the underlying file.
func (w *Writer) Close() error {
	if err := w.Add(nil); err != nil {
		w.f.Close()
		return err
	}
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
