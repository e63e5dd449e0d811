package domain

import (
	"math"
	"math/rand"
	"sort"

	m "mend.dev/pkg/mend/internal/model"
)

// Formula computes a suspiciousness score in [0,1] from the per-statement
// counters and the suite-level totals.
type Formula func(failed, passed, totalFailed, totalPassed int) float64

// Formula names accepted by NewRanker.
const (
	FormulaTarantula = "tarantula"
	FormulaOchiai    = "ochiai"
)

// Tie-break policy names accepted by NewRanker.
const (
	TieBreakLine   = "line"
	TieBreakRandom = "random"
)

// Tarantula computes failed/totalfailed normalized against the combined
// pass/fail ratios. Statements never executed score 0 by convention.
func Tarantula(failed, passed, totalFailed, totalPassed int) float64 {
	if failed == 0 && passed == 0 {
		return 0
	}

	failRatio := float64(failed) / float64(totalFailed)
	passRatio := float64(passed) / float64(totalPassed)

	if failRatio+passRatio == 0 {
		return 0
	}

	return failRatio / (failRatio + passRatio)
}

// Ochiai computes failed(s) / sqrt(totalfailed * (failed(s) + passed(s))).
// Statements never executed score 0 by convention.
func Ochiai(failed, passed, totalFailed, _ int) float64 {
	if failed == 0 && passed == 0 {
		return 0
	}

	return float64(failed) / math.Sqrt(float64(totalFailed)*float64(failed+passed))
}

// formulas is the pluggable strategy registry; adding a formula means adding
// an entry here, not a new type.
var formulas = map[string]Formula{
	FormulaTarantula: Tarantula,
	FormulaOchiai:    Ochiai,
}

// Ranker orders statements by suspiciousness, most suspicious first.
type Ranker interface {
	Rank(spectrum m.Spectrum, statements []m.Statement) m.Ranking
}

type ranker struct {
	formula  Formula
	tieBreak string
	seed     int64
}

// NewRanker constructs a Ranker for the named formula and tie-break policy.
// The random policy is seeded so rankings stay reproducible in tests.
func NewRanker(formula, tieBreak string, seed int64) (Ranker, error) {
	fn, ok := formulas[formula]
	if !ok {
		return nil, m.NewEngineFault("config", "unknown ranking formula %q", formula)
	}

	if tieBreak != TieBreakLine && tieBreak != TieBreakRandom {
		return nil, m.NewEngineFault("config", "unknown tie-break policy %q", tieBreak)
	}

	return &ranker{formula: fn, tieBreak: tieBreak, seed: seed}, nil
}

func (r *ranker) Rank(spectrum m.Spectrum, statements []m.Statement) m.Ranking {
	ranking := make(m.Ranking, 0, len(statements))

	for _, stmt := range statements {
		entry := spectrum.Entry(stmt.ID)
		ranking = append(ranking, m.Score{
			StatementID: stmt.ID,
			Line:        stmt.Line,
			Value:       r.formula(entry.Failed, entry.Passed, spectrum.TotalFailed, spectrum.TotalPassed),
		})
	}

	if r.tieBreak == TieBreakRandom {
		// Shuffle first so ties land in seeded-random order after the stable
		// sort by score.
		rng := rand.New(rand.NewSource(r.seed))
		rng.Shuffle(len(ranking), func(i, j int) {
			ranking[i], ranking[j] = ranking[j], ranking[i]
		})

		sort.SliceStable(ranking, func(i, j int) bool {
			return ranking[i].Value > ranking[j].Value
		})

		return ranking
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].Value != ranking[j].Value {
			return ranking[i].Value > ranking[j].Value
		}

		if ranking[i].Line != ranking[j].Line {
			return ranking[i].Line < ranking[j].Line
		}

		return ranking[i].StatementID < ranking[j].StatementID
	})

	return ranking
}
