package model

// Verdict is the outcome of running one test case.
type Verdict int

const (
	// VerdictUnknown means the case has not been run yet.
	VerdictUnknown Verdict = iota
	// VerdictPass means the program result satisfied the assertion.
	VerdictPass
	// VerdictFail means the assertion did not hold, or the run crashed or
	// timed out. Runtime faults are never fatal to the engine.
	VerdictFail
)

// String returns a short label for the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "pass"
	case VerdictFail:
		return "fail"
	case VerdictUnknown:
		return "unknown"
	}

	return "unknown"
}

// TestCase is one input/assertion pair: calling Entry with Args must yield
// Expect. Verdict is filled in after a run against a concrete program.
type TestCase struct {
	Name    string  `yaml:"name"`
	Args    []int64 `yaml:"args"`
	Expect  int64   `yaml:"expect"`
	Verdict Verdict `yaml:"-"`
}

// Suite is a test suite for one entry function.
type Suite struct {
	Entry string     `yaml:"entry"`
	Tests []TestCase `yaml:"tests"`
}
