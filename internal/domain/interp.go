package domain

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	m "mend.dev/pkg/mend/internal/model"
)

// DefaultTestTimeout bounds a single test case run.
const DefaultTestTimeout = 2 * time.Second

// DefaultStepLimit bounds the number of evaluation steps per run so patched
// programs with runaway loops fail fast even without a deadline.
const DefaultStepLimit = 1_000_000

const (
	ctxCheckInterval = 256
	maxCallDepth     = 500
	indexCacheLimit  = 128
)

// Instrumentor executes a program under a single test case, recording every
// statement visited and the run's pass/fail verdict. The program is never
// mutated; runtime faults yield a failing verdict with the partial trace
// kept. Only malformed input (unknown entry, arity mismatch) is an error.
type Instrumentor interface {
	Run(ctx context.Context, program *m.Program, entry string, test m.TestCase) (m.ExecutionTrace, m.Verdict, error)

	// Runs reports the total number of test executions started over the
	// instrumentor's lifetime.
	Runs() uint64
}

// InstrumentorOption configures an instrumentor.
type InstrumentorOption func(*instrumentor)

// WithTestTimeout sets the per-run deadline.
func WithTestTimeout(d time.Duration) InstrumentorOption {
	return func(in *instrumentor) {
		if d > 0 {
			in.timeout = d
		}
	}
}

// WithStepLimit sets the per-run evaluation step budget.
func WithStepLimit(limit int) InstrumentorOption {
	return func(in *instrumentor) {
		if limit > 0 {
			in.stepLimit = limit
		}
	}
}

type instrumentor struct {
	timeout   time.Duration
	stepLimit int
	runs      atomic.Uint64

	mu    sync.Mutex
	cache map[*m.Program]*programIndex
}

// NewInstrumentor constructs an Instrumentor with the provided options.
func NewInstrumentor(options ...InstrumentorOption) Instrumentor {
	in := &instrumentor{
		timeout:   DefaultTestTimeout,
		stepLimit: DefaultStepLimit,
		cache:     make(map[*m.Program]*programIndex),
	}

	for _, option := range options {
		option(in)
	}

	return in
}

func (in *instrumentor) Runs() uint64 {
	return in.runs.Load()
}

func (in *instrumentor) Run(ctx context.Context, program *m.Program, entry string, test m.TestCase) (m.ExecutionTrace, m.Verdict, error) {
	idx, err := in.indexFor(program)
	if err != nil {
		return nil, m.VerdictUnknown, err
	}

	fn, ok := idx.funcs[entry]
	if !ok {
		return nil, m.VerdictUnknown, m.NewEngineFault("suite", "entry function %q not found", entry)
	}

	if len(test.Args) != len(fn.params) {
		return nil, m.VerdictUnknown, m.NewEngineFault(
			"suite", "test %s: %d args for %s, want %d", test.Name, len(test.Args), entry, len(fn.params),
		)
	}

	in.runs.Add(1)

	runCtx, cancel := context.WithTimeout(ctx, in.timeout)
	defer cancel()

	ev := &evaluator{
		ctx:       runCtx,
		idx:       idx,
		trace:     make(m.ExecutionTrace),
		stepLimit: in.stepLimit,
	}

	result, err := ev.call(fn, test.Args)
	if err != nil {
		// Crashes and timeouts are failing verdicts, never engine errors.
		return ev.trace, m.VerdictFail, nil
	}

	if result.kind == kindInt && result.i == test.Expect {
		return ev.trace, m.VerdictPass, nil
	}

	return ev.trace, m.VerdictFail, nil
}

// indexFor memoizes parsed program snapshots so validating one patch against
// a whole suite parses its files once.
func (in *instrumentor) indexFor(program *m.Program) (*programIndex, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if idx, ok := in.cache[program]; ok {
		return idx, nil
	}

	idx, err := buildIndex(program.Files)
	if err != nil {
		return nil, err
	}

	if len(in.cache) >= indexCacheLimit {
		in.cache = make(map[*m.Program]*programIndex)
	}

	in.cache[program] = idx

	return idx, nil
}

type valueKind int

const (
	kindNone valueKind = iota
	kindInt
	kindBool
)

type value struct {
	kind valueKind
	i    int64
	b    bool
}

func intValue(i int64) value { return value{kind: kindInt, i: i} }
func boolValue(b bool) value { return value{kind: kindBool, b: b} }

// runtimeFault is a contained execution failure: division by zero, a type
// mismatch, an unknown identifier, or an exceeded step budget or deadline.
type runtimeFault struct {
	detail string
}

func (f *runtimeFault) Error() string {
	return "runtime fault: " + f.detail
}

func faultf(format string, args ...any) error {
	return &runtimeFault{detail: fmt.Sprintf(format, args...)}
}

type evaluator struct {
	ctx       context.Context
	idx       *programIndex
	trace     m.ExecutionTrace
	steps     int
	stepLimit int
	depth     int
}

func (ev *evaluator) step() error {
	ev.steps++
	if ev.steps > ev.stepLimit {
		return faultf("step budget of %d exceeded", ev.stepLimit)
	}

	if ev.steps%ctxCheckInterval == 0 {
		if err := ev.ctx.Err(); err != nil {
			return faultf("run cancelled: %v", err)
		}
	}

	return nil
}

func (ev *evaluator) call(fn *indexedFunc, args []int64) (value, error) {
	if ev.depth >= maxCallDepth {
		return value{}, faultf("call depth limit of %d exceeded in %s", maxCallDepth, fn.decl.Name.Name)
	}

	env := make(map[string]value, len(fn.params))
	for i, name := range fn.params {
		env[name] = intValue(args[i])
	}

	ev.depth++
	defer func() { ev.depth-- }()

	result, returned, err := ev.execBlock(env, fn.decl.Body.List)
	if err != nil {
		return value{}, err
	}

	if !returned {
		return value{}, nil
	}

	return result, nil
}

// execBlock executes statements in order, reporting whether a return was hit.
func (ev *evaluator) execBlock(env map[string]value, stmts []ast.Stmt) (value, bool, error) {
	for _, stmt := range stmts {
		result, returned, err := ev.exec(env, stmt)
		if err != nil || returned {
			return result, returned, err
		}
	}

	return value{}, false, nil
}

func (ev *evaluator) exec(env map[string]value, stmt ast.Stmt) (value, bool, error) {
	if err := ev.step(); err != nil {
		return value{}, false, err
	}

	switch s := stmt.(type) {
	case *ast.AssignStmt:
		ev.touch(stmt)

		result, err := ev.eval(env, s.Rhs[0])
		if err != nil {
			return value{}, false, err
		}

		env[s.Lhs[0].(*ast.Ident).Name] = result

		return value{}, false, nil

	case *ast.ReturnStmt:
		ev.touch(stmt)

		if len(s.Results) == 0 {
			return value{}, true, nil
		}

		result, err := ev.eval(env, s.Results[0])

		return result, err == nil, err

	case *ast.IfStmt:
		return ev.execIf(env, s)

	case *ast.ForStmt:
		return ev.execFor(env, s)

	case *ast.ExprStmt:
		ev.touch(stmt)

		_, err := ev.eval(env, s.X)

		return value{}, false, err

	case *ast.BlockStmt:
		return ev.execBlock(env, s.List)
	}

	return value{}, false, faultf("unsupported statement at runtime")
}

func (ev *evaluator) execIf(env map[string]value, s *ast.IfStmt) (value, bool, error) {
	ev.touch(s)

	cond, err := ev.evalCond(env, s.Cond)
	if err != nil {
		return value{}, false, err
	}

	if cond {
		return ev.execBlock(env, s.Body.List)
	}

	if s.Else != nil {
		return ev.exec(env, s.Else)
	}

	return value{}, false, nil
}

func (ev *evaluator) execFor(env map[string]value, s *ast.ForStmt) (value, bool, error) {
	for {
		ev.touch(s)

		if err := ev.step(); err != nil {
			return value{}, false, err
		}

		if s.Cond != nil {
			cond, err := ev.evalCond(env, s.Cond)
			if err != nil {
				return value{}, false, err
			}

			if !cond {
				return value{}, false, nil
			}
		}

		result, returned, err := ev.execBlock(env, s.Body.List)
		if err != nil || returned {
			return result, returned, err
		}
	}
}

func (ev *evaluator) evalCond(env map[string]value, expr ast.Expr) (bool, error) {
	cond, err := ev.eval(env, expr)
	if err != nil {
		return false, err
	}

	if cond.kind != kindBool {
		return false, faultf("condition is not a boolean")
	}

	return cond.b, nil
}

// touch bumps the execution count for the statement owning the given node.
// Loop and if conditions are counted once per evaluation.
func (ev *evaluator) touch(stmt ast.Stmt) {
	if id, ok := ev.idx.stmtID[stmt]; ok {
		ev.trace[id]++
	}
}

func (ev *evaluator) eval(env map[string]value, expr ast.Expr) (value, error) {
	if err := ev.step(); err != nil {
		return value{}, err
	}

	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind != token.INT {
			return value{}, faultf("unsupported literal %s", e.Value)
		}

		i, err := strconv.ParseInt(e.Value, 0, 64)
		if err != nil {
			return value{}, faultf("bad int literal %s", e.Value)
		}

		return intValue(i), nil

	case *ast.Ident:
		return ev.evalIdent(env, e)

	case *ast.ParenExpr:
		return ev.eval(env, e.X)

	case *ast.UnaryExpr:
		return ev.evalUnary(env, e)

	case *ast.BinaryExpr:
		return ev.evalBinary(env, e)

	case *ast.CallExpr:
		return ev.evalCall(env, e)
	}

	return value{}, faultf("unsupported expression")
}

func (ev *evaluator) evalIdent(env map[string]value, e *ast.Ident) (value, error) {
	switch e.Name {
	case "true":
		return boolValue(true), nil
	case "false":
		return boolValue(false), nil
	}

	result, ok := env[e.Name]
	if !ok {
		return value{}, faultf("undefined identifier %s", e.Name)
	}

	return result, nil
}

func (ev *evaluator) evalUnary(env map[string]value, e *ast.UnaryExpr) (value, error) {
	operand, err := ev.eval(env, e.X)
	if err != nil {
		return value{}, err
	}

	switch e.Op {
	case token.SUB:
		if operand.kind != kindInt {
			return value{}, faultf("unary minus on non-int")
		}

		return intValue(-operand.i), nil

	case token.NOT:
		if operand.kind != kindBool {
			return value{}, faultf("negation of non-boolean")
		}

		return boolValue(!operand.b), nil
	}

	return value{}, faultf("unsupported unary operator %s", e.Op)
}

func (ev *evaluator) evalBinary(env map[string]value, e *ast.BinaryExpr) (value, error) {
	if e.Op == token.LAND || e.Op == token.LOR {
		return ev.evalLogical(env, e)
	}

	left, err := ev.eval(env, e.X)
	if err != nil {
		return value{}, err
	}

	right, err := ev.eval(env, e.Y)
	if err != nil {
		return value{}, err
	}

	if e.Op == token.EQL || e.Op == token.NEQ {
		return ev.evalEquality(e.Op, left, right)
	}

	if left.kind != kindInt || right.kind != kindInt {
		return value{}, faultf("operator %s needs int operands", e.Op)
	}

	switch e.Op {
	case token.ADD:
		return intValue(left.i + right.i), nil
	case token.SUB:
		return intValue(left.i - right.i), nil
	case token.MUL:
		return intValue(left.i * right.i), nil
	case token.QUO:
		if right.i == 0 {
			return value{}, faultf("division by zero")
		}

		return intValue(left.i / right.i), nil
	case token.REM:
		if right.i == 0 {
			return value{}, faultf("division by zero")
		}

		return intValue(left.i % right.i), nil
	case token.LSS:
		return boolValue(left.i < right.i), nil
	case token.LEQ:
		return boolValue(left.i <= right.i), nil
	case token.GTR:
		return boolValue(left.i > right.i), nil
	case token.GEQ:
		return boolValue(left.i >= right.i), nil
	}

	return value{}, faultf("unsupported operator %s", e.Op)
}

func (ev *evaluator) evalEquality(op token.Token, left, right value) (value, error) {
	if left.kind != right.kind || left.kind == kindNone {
		return value{}, faultf("comparison of mismatched types")
	}

	var equal bool
	if left.kind == kindInt {
		equal = left.i == right.i
	} else {
		equal = left.b == right.b
	}

	if op == token.NEQ {
		equal = !equal
	}

	return boolValue(equal), nil
}

func (ev *evaluator) evalLogical(env map[string]value, e *ast.BinaryExpr) (value, error) {
	left, err := ev.evalCond(env, e.X)
	if err != nil {
		return value{}, err
	}

	// Short-circuit before touching the right operand.
	if e.Op == token.LAND && !left {
		return boolValue(false), nil
	}

	if e.Op == token.LOR && left {
		return boolValue(true), nil
	}

	right, err := ev.evalCond(env, e.Y)
	if err != nil {
		return value{}, err
	}

	return boolValue(right), nil
}

func (ev *evaluator) evalCall(env map[string]value, e *ast.CallExpr) (value, error) {
	ident, ok := e.Fun.(*ast.Ident)
	if !ok {
		return value{}, faultf("only direct function calls are supported")
	}

	fn, ok := ev.idx.funcs[ident.Name]
	if !ok {
		return value{}, faultf("undefined function %s", ident.Name)
	}

	if len(e.Args) != len(fn.params) {
		return value{}, faultf("%s called with %d args, want %d", ident.Name, len(e.Args), len(fn.params))
	}

	args := make([]int64, len(e.Args))

	for i, arg := range e.Args {
		result, err := ev.eval(env, arg)
		if err != nil {
			return value{}, err
		}

		if result.kind != kindInt {
			return value{}, faultf("argument %d of %s is not an int", i, ident.Name)
		}

		args[i] = result.i
	}

	return ev.call(fn, args)
}
