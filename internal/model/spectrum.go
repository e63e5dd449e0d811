package model

// ExecutionTrace maps statement ids to execution counts for a single test
// case run. A partial trace is still produced when the run faults midway.
type ExecutionTrace map[uint]int

// Hit reports whether the trace includes the statement at all.
func (t ExecutionTrace) Hit(id uint) bool {
	return t[id] > 0
}

// SpectrumEntry holds the per-statement pass/fail counters.
type SpectrumEntry struct {
	Failed int
	Passed int
}

// Spectrum aggregates per-statement execution counters across the suite.
// Failed(s) and Passed(s) count distinct failing/passing test cases whose
// trace includes s; TotalFailed and TotalPassed are suite-level constants.
type Spectrum struct {
	Entries     map[uint]SpectrumEntry
	TotalFailed int
	TotalPassed int
}

// Entry returns the counters for a statement, zero-valued when it was never
// executed by any test.
func (s Spectrum) Entry(id uint) SpectrumEntry {
	return s.Entries[id]
}

// Score is one ranked fault-localization result.
type Score struct {
	StatementID uint
	Line        int
	Value       float64
}

// Ranking is an ordered sequence of scores, highest suspiciousness first.
type Ranking []Score
