package model

// Phase is the orchestrator's state machine position.
type Phase int

const (
	// PhaseLocalizing covers instrumentation and spectrum collection.
	PhaseLocalizing Phase = iota
	// PhaseRanked means the suspiciousness ranking is available.
	PhaseRanked
	// PhaseGenerating means patches are being generated for a target.
	PhaseGenerating
	// PhaseValidating means a candidate patch is being validated.
	PhaseValidating
	// PhaseFound is terminal: a plausible patch was validated.
	PhaseFound
	// PhaseExhausted is terminal: the search space ran out.
	PhaseExhausted
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseLocalizing:
		return "localizing"
	case PhaseRanked:
		return "ranked"
	case PhaseGenerating:
		return "generating"
	case PhaseValidating:
		return "validating"
	case PhaseFound:
		return "found"
	case PhaseExhausted:
		return "exhausted"
	}

	return "unknown"
}

// Outcome is the final result of a repair run: either a plausible patch with
// the validation that proved it, or an exhausted search with enough detail to
// debug the non-repair.
type Outcome struct {
	Phase        Phase
	Ranking      Ranking
	Patch        *Patch
	Validation   *ValidationResult
	Plausible    []Patch
	TargetsTried int
	PatchesTried int
	// BestPassRate and BestPatch describe the closest miss seen when the
	// search exhausts without a plausible patch.
	BestPassRate float64
	BestPatch    *Patch
}

// Found reports whether the run ended with a plausible patch.
func (o Outcome) Found() bool {
	return o.Phase == PhaseFound
}
