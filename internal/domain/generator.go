package domain

import (
	"context"
	"log/slog"

	"mend.dev/pkg/mend/internal/domain/mutators"
	m "mend.dev/pkg/mend/internal/model"
)

// Generator enumerates candidate patches for a ranked target. Patches are
// lazy and finite: they stream through a channel in a deterministic order
// and each one is an inert description until the validator applies it.
type Generator interface {
	// ExpressionPatches yields one Replace patch per pool ingredient, in pool
	// order, followed by a single Remove patch when removal is legal for the
	// target. The identity replacement is included.
	ExpressionPatches(ctx context.Context, target m.Statement, pool []m.Ingredient) <-chan m.Patch

	// StatementPatches yields one Add patch per pool ingredient, inserting
	// the ingredient as a statement after the target.
	StatementPatches(ctx context.Context, target m.Statement, pool []m.Ingredient) <-chan m.Patch
}

type generator struct{}

// NewGenerator constructs the mutation generator.
func NewGenerator() Generator {
	return &generator{}
}

func (g *generator) ExpressionPatches(ctx context.Context, target m.Statement, pool []m.Ingredient) <-chan m.Patch {
	ch := make(chan m.Patch)

	go func() {
		defer close(ch)

		var id uint

		for _, ingredient := range pool {
			op, ok := mutators.BuildReplace(target, ingredient)
			if !ok {
				return
			}

			if !send(ctx, ch, m.Patch{ID: id, Operations: []m.MutationOperation{op}}) {
				return
			}

			id++
		}

		if op, ok := mutators.BuildRemove(target); ok {
			send(ctx, ch, m.Patch{ID: id, Operations: []m.MutationOperation{op}})
		}
	}()

	return ch
}

func (g *generator) StatementPatches(ctx context.Context, target m.Statement, pool []m.Ingredient) <-chan m.Patch {
	ch := make(chan m.Patch)

	go func() {
		defer close(ch)

		slog.Debug("generating statement insertions", "statement", target.ID, "pool", len(pool))

		for i, ingredient := range pool {
			op := mutators.BuildAdd(target, ingredient)

			if !send(ctx, ch, m.Patch{ID: uint(i), Operations: []m.MutationOperation{op}}) {
				return
			}
		}
	}()

	return ch
}

func send(ctx context.Context, ch chan<- m.Patch, patch m.Patch) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- patch:
		return true
	}
}
