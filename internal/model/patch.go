package model

import "fmt"

// Ingredient is an expression harvested from the program source, reusable
// across mutation attempts. Index records discovery order.
type Ingredient struct {
	Text  string
	File  Path
	Line  int
	Index int
}

// OperationKind is the tag of a mutation operation variant.
type OperationKind string

const (
	// OperationReplace substitutes an ingredient for the target expression.
	OperationReplace OperationKind = "replace"
	// OperationRemove deletes the target expression where removal stays
	// syntactically valid (a return result).
	OperationRemove OperationKind = "remove"
	// OperationAdd inserts an ingredient as a new statement after the target.
	OperationAdd OperationKind = "add"
)

// MutationOperation is one edit against a target statement. Replace and Add
// carry an ingredient; Remove does not.
type MutationOperation struct {
	Kind        OperationKind
	StatementID uint
	File        Path
	// Span is the byte range the edit applies to: the target expression for
	// Replace/Remove, the insertion point (zero-length) for Add.
	Span       Span
	Ingredient *Ingredient
}

// Describe renders a short human-readable summary of the operation.
func (op MutationOperation) Describe(original string) string {
	switch op.Kind {
	case OperationReplace:
		return fmt.Sprintf("replace %q with %q", original, op.Ingredient.Text)
	case OperationRemove:
		return fmt.Sprintf("remove %q", original)
	case OperationAdd:
		return fmt.Sprintf("insert %q after statement", op.Ingredient.Text)
	}

	return "unknown operation"
}

// Patch is an ordered sequence of mutation operations applied to a base
// program. A Patch is an inert description until the validator applies it to
// a copy of the base program.
type Patch struct {
	ID         uint
	Operations []MutationOperation
}

// PatchStatus classifies a validated patch.
type PatchStatus int

const (
	// PatchUntested means the patch has not been validated yet.
	PatchUntested PatchStatus = iota
	// PatchPlausible means every test case passed.
	PatchPlausible
	// PatchRejected means at least one test case failed.
	PatchRejected
	// PatchInapplicable means the patch could not be applied or the patched
	// source no longer parses. Distinct from a test failure.
	PatchInapplicable
)

// String returns a short label for the status.
func (s PatchStatus) String() string {
	switch s {
	case PatchPlausible:
		return "plausible"
	case PatchRejected:
		return "rejected"
	case PatchInapplicable:
		return "inapplicable"
	case PatchUntested:
		return "untested"
	}

	return "untested"
}

// ValidationResult is the per-test outcome of validating one patch.
type ValidationResult struct {
	PatchID  uint
	Status   PatchStatus
	Verdicts map[string]Verdict
	// PassRate is passing cases over total cases, used to report the best
	// partial patch when the search exhausts.
	PassRate float64
}

// Plausible reports whether every test case passed.
func (r ValidationResult) Plausible() bool {
	return r.Status == PatchPlausible
}
