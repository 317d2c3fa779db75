// Command cdclsat solves a DIMACS CNF instance with a from-scratch CDCL
// engine and reports SATISFIABLE/UNSATISFIABLE/UNKNOWN (spec §6).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
