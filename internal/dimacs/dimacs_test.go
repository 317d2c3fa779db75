package dimacs

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/satkit/cdcl/internal/sat"
)

type instance struct {
	Variables int
	Clauses   [][]sat.Literal
}

func (i *instance) AddVariable() int {
	i.Variables++
	return i.Variables - 1
}

func (i *instance) AddClause(tmpClause []sat.Literal) error {
	clause := make([]sat.Literal, len(tmpClause))
	copy(clause, tmpClause)
	i.Clauses = append(i.Clauses, clause)
	return nil
}

var want = instance{
	Variables: 3,
	Clauses: [][]sat.Literal{
		{0, 2, 4},
		{0, 2, 5},
		{0, 3, 4},
		{1, 2, 4},
		{1, 3, 4},
		{1, 2, 5},
		{0, 3, 5},
		{1, 3, 5},
	},
}

func TestLoad_cnf(t *testing.T) {
	got := instance{}
	gotErr := Load("testdata/test_instance.cnf", false, &got)

	if gotErr != nil {
		t.Errorf("Load(): want no error, got %s", gotErr)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load(): mismatch (+want, -got):\n%s", diff)
	}
}

func TestLoad_gzip(t *testing.T) {
	got := instance{}
	gotErr := Load("testdata/test_instance.cnf.gz", true, &got)

	if gotErr != nil {
		t.Errorf("Load(): want no error, got %s", gotErr)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load(): mismatch (+want, -got):\n%s", diff)
	}
}

func TestLoad_noFile(t *testing.T) {
	got := instance{}
	gotErr := Load("", false, &got)

	if gotErr == nil {
		t.Errorf("Load(): want error, got none")
	}
}

func TestLoad_gzip_notGzipFile(t *testing.T) {
	got := instance{}
	gotErr := Load("testdata/test_instance.cnf", true, &got)

	if gotErr == nil {
		t.Errorf("Load(): want error, got none")
	}
}

func TestWriteSolution_sat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSolution(&buf, sat.StatusSAT, []bool{true, false, true}); err != nil {
		t.Fatalf("WriteSolution(): %s", err)
	}
	want := "s SATISFIABLE\nv 1 -2 3 0\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteSolution(): got %q, want %q", got, want)
	}
}

func TestWriteSolution_unsat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSolution(&buf, sat.StatusUNSAT, nil); err != nil {
		t.Fatalf("WriteSolution(): %s", err)
	}
	if got, want := buf.String(), "s UNSATISFIABLE\n"; got != want {
		t.Errorf("WriteSolution(): got %q, want %q", got, want)
	}
}

func TestWriteSolution_unknown(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSolution(&buf, sat.StatusUnknown, nil); err != nil {
		t.Fatalf("WriteSolution(): %s", err)
	}
	if got, want := buf.String(), "s UNKNOWN\n"; got != want {
		t.Errorf("WriteSolution(): got %q, want %q", got, want)
	}
}
