package sat

// buildModel reads the current trail-derived assignment into a dense
// per-variable boolean slice, then extends it to eliminated variables via
// Model Reconstruction (spec §4.10): the elimination stack is replayed in
// reverse, each witness clause either already satisfied by another literal
// (in which case the eliminated variable is free, defaulted to true) or not
// (in which case the eliminated variable is set to satisfy its own literal).
func (s *Solver) buildModel() []bool {
	model := make([]bool, s.NumVariables())
	for v := 0; v < s.NumVariables(); v++ {
		switch s.VarValue(v) {
		case True:
			model[v] = true
		case False:
			model[v] = false
		default:
			model[v] = true // eliminated or otherwise unset; fixed below
		}
	}

	stack := s.prep.elimStack
	for i := len(stack) - 1; i >= 0; i-- {
		entry := stack[i]
		model[entry.v] = reconstructPolarity(model, entry)
	}
	return model
}

// reconstructPolarity implements the per-entry rule from spec §4.10.
func reconstructPolarity(model []bool, entry eliminationEntry) bool {
	for _, l := range entry.witness {
		if l.VarID() == entry.v {
			continue
		}
		if model[l.VarID()] == l.IsPositive() {
			return true // witness already satisfied elsewhere: v is free
		}
	}
	// No other literal of the witness is true: v must satisfy its own
	// occurrence in the witness clause.
	for _, l := range entry.witness {
		if l.VarID() == entry.v {
			return l.IsPositive()
		}
	}
	return true
}
