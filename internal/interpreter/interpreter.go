// Package interpreter is the tree-walking evaluator: it consumes an
// *ast.Arena plus a *resolver.Table and walks it against a chained
// runtime.Frame environment, honoring the loop-control and call-return
// semantics that make a function's free variables resolve against its
// definition site rather than its call site.
//
// What: Interpreter carries the session-lifetime global Frame and
// evaluates one parsed program against it per Run call.
// How: two mutually recursive walks — execStmt/execStmts over statements,
// eval over expressions — threaded with a small signal enum (none/break/
// continue/return) instead of Go panics, mirroring the "explicit
// result-returning recursion" alternative the spec explicitly sanctions
// in place of a per-call loop-state stack
// (original_source/src/lang/execution/interpreter.rs's LoopState is the
// other sanctioned shape; a signal threaded through return values gives
// the same semantics without a side stack to keep synchronized).
// Why: grounded byte-for-byte on interpreter.rs's eval_binary/eval_unary
// coercion tables and visit_stmt's halt propagation, ported into Go's
// (value, error) idiom in place of Rust's Result<RV, HaltReason>.
package interpreter

import (
	"fmt"

	"github.com/lykiadb/lykiadb/internal/ast"
	"github.com/lykiadb/lykiadb/internal/errs"
	"github.com/lykiadb/lykiadb/internal/lexer"
	"github.com/lykiadb/lykiadb/internal/parser"
	"github.com/lykiadb/lykiadb/internal/resolver"
	"github.com/lykiadb/lykiadb/internal/runtime"
)

// signal is the non-local control-flow outcome of executing one
// statement: a plain fall-through, or one of the three halts.
type signal int

const (
	sigNone signal = iota
	sigBreak
	sigContinue
	sigReturn
)

// Interpreter holds the session-lifetime global frame every Run call
// evaluates against, plus the io.print/test_utils.out destinations
// wired in at construction.
type Interpreter struct {
	global *runtime.Frame
	out    func(string)
	sink   *runtime.Sink
}

// New builds an interpreter with its standard library already installed
// in the global frame. out receives each io.print call's rendered
// argument line; sink, if non-nil, also gets a test_utils.out namespace
// registered (spec.md §5: a session may share a Sink with its test
// harness, nothing else).
func New(out func(string), sink *runtime.Sink) *Interpreter {
	it := &Interpreter{global: runtime.NewFrame(nil), out: out, sink: sink}
	it.registerStdlib()
	return it
}

// Global exposes the session's root frame, e.g. so a host can pre-seed
// bindings before the first Run.
func (it *Interpreter) Global() *runtime.Frame { return it.global }

// Parse scans and parses source, returning its arena and root id without
// resolving or evaluating it — backs a bare `Ast` request.
func Parse(source string) (*ast.Arena, ast.StmtId, error) {
	toks, err := lexer.Scan(source)
	if err != nil {
		return nil, 0, err
	}
	return parser.Parse(toks)
}

// Run scans, parses, resolves and evaluates source against this
// interpreter's global frame. A bare top-level `return expr;` ends the
// script early with expr's value; falling off the end of the program
// produces the value of the last top-level statement, or Undefined when
// that statement yields none (a declaration, a loop, an if whose branch
// was not taken, or an empty program). Break/Continue reaching the top
// level (no enclosing loop) is an interpret error.
func (it *Interpreter) Run(source string) (runtime.Value, error) {
	arena, root, err := Parse(source)
	if err != nil {
		return nil, err
	}
	resolved, err := resolver.Resolve(arena, root)
	if err != nil {
		return nil, err
	}
	sig, val, err := it.execStmt(it.global, root, arena, resolved)
	if err != nil {
		return nil, err
	}
	switch sig {
	case sigBreak:
		return nil, errs.NewOther("break outside loop")
	case sigContinue:
		return nil, errs.NewOther("continue outside loop")
	case sigReturn:
		return val, nil
	default:
		if val != nil {
			return val, nil
		}
		return runtime.VUndefined{}, nil
	}
}

func (it *Interpreter) execStmts(frame *runtime.Frame, ids []ast.StmtId, arena *ast.Arena, resolved *resolver.Table) (signal, runtime.Value, error) {
	var last runtime.Value
	for _, id := range ids {
		sig, v, err := it.execStmt(frame, id, arena, resolved)
		if err != nil {
			return sigNone, nil, err
		}
		if sig != sigNone {
			return sig, v, nil
		}
		last = v
	}
	return sigNone, last, nil
}

func (it *Interpreter) execStmt(frame *runtime.Frame, id ast.StmtId, arena *ast.Arena, resolved *resolver.Table) (signal, runtime.Value, error) {
	switch s := arena.Stmt(id).(type) {
	case *ast.Program:
		return it.execStmts(frame, s.Stmts, arena, resolved)

	case *ast.Expression:
		v, err := it.eval(frame, s.Expr, arena, resolved)
		if err != nil {
			return sigNone, nil, err
		}
		return sigNone, v, nil

	case *ast.Block:
		// A Block gets its own child frame; If/Loop dispatch straight to
		// their Then/Body/Else statement without one of their own, so only
		// a Block (or a function call) ever introduces a new scope.
		child := runtime.NewFrame(frame)
		return it.execStmts(child, s.Stmts, arena, resolved)

	case *ast.Declaration:
		v, err := it.eval(frame, s.Value, arena, resolved)
		if err != nil {
			return sigNone, nil, err
		}
		frame.Declare(s.Target, v)
		// Auto-bind: `var $f = fun name(){...}` also binds `name` itself in
		// this frame, so the function can call itself by its own literal
		// name without having to close over $f (spec.md §4.2/§8 scenario
		// 5). This is a Declaration-only special case, never general to
		// every function expression — see ast.Function's doc comment.
		if c, ok := v.(*runtime.VCallable); ok && c.Kind == runtime.CallableUser && c.User != nil && c.User.SelfName != "" {
			frame.Declare(c.User.SelfName, v)
		}
		return sigNone, nil, nil

	case *ast.If:
		condVal, err := it.eval(frame, s.Cond, arena, resolved)
		if err != nil {
			return sigNone, nil, err
		}
		if runtime.Truthy(condVal) {
			return it.execStmt(frame, s.Then, arena, resolved)
		}
		if s.Else != nil {
			return it.execStmt(frame, *s.Else, arena, resolved)
		}
		return sigNone, nil, nil

	case *ast.Loop:
		return it.execLoop(frame, s, arena, resolved)

	case *ast.Break:
		return sigBreak, nil, nil

	case *ast.Continue:
		return sigContinue, nil, nil

	case *ast.Return:
		if s.Value == nil {
			return sigReturn, runtime.VUndefined{}, nil
		}
		v, err := it.eval(frame, *s.Value, arena, resolved)
		if err != nil {
			return sigNone, nil, err
		}
		return sigReturn, v, nil
	}
	return sigNone, nil, errs.NewOther(fmt.Sprintf("unknown statement node %T", arena.Stmt(id)))
}

// execLoop runs Cond/Body/Post under the unified Loop form. A Break in
// Body or Post ends the loop with a plain fall-through; a Continue skips
// straight to Post (or, with no Post, straight back to re-testing Cond);
// a Return anywhere propagates out of the loop entirely.
func (it *Interpreter) execLoop(frame *runtime.Frame, s *ast.Loop, arena *ast.Arena, resolved *resolver.Table) (signal, runtime.Value, error) {
	for {
		if s.Cond != nil {
			condVal, err := it.eval(frame, *s.Cond, arena, resolved)
			if err != nil {
				return sigNone, nil, err
			}
			if !runtime.Truthy(condVal) {
				return sigNone, nil, nil
			}
		}

		sig, val, err := it.execStmt(frame, s.Body, arena, resolved)
		if err != nil {
			return sigNone, nil, err
		}
		switch sig {
		case sigBreak:
			return sigNone, nil, nil
		case sigReturn:
			return sigReturn, val, nil
		}

		if s.Post != nil {
			psig, pval, perr := it.execStmt(frame, *s.Post, arena, resolved)
			if perr != nil {
				return sigNone, nil, perr
			}
			switch psig {
			case sigBreak:
				return sigNone, nil, nil
			case sigReturn:
				return sigReturn, pval, nil
			}
		}
	}
}

func (it *Interpreter) eval(frame *runtime.Frame, id ast.ExprId, arena *ast.Arena, resolved *resolver.Table) (runtime.Value, error) {
	switch e := arena.Expr(id).(type) {
	case *ast.Literal:
		return literalValue(e.Value), nil

	case *ast.Grouping:
		return it.eval(frame, e.Inner, arena, resolved)

	case *ast.Unary:
		return it.evalUnary(frame, e, arena, resolved)

	case *ast.Binary:
		return it.evalBinary(frame, e, arena, resolved)

	case *ast.Logical:
		return it.evalLogical(frame, e, arena, resolved)

	case *ast.Variable:
		return it.evalVariable(frame, id, e, resolved)

	case *ast.Assignment:
		return it.evalAssignment(frame, id, e, arena, resolved)

	case *ast.Call:
		return it.evalCall(frame, e, arena, resolved)

	case *ast.Get:
		return it.evalGet(frame, e, arena, resolved)

	case *ast.Function:
		return it.evalFunction(frame, e, arena, resolved), nil

	case *ast.Select, *ast.Insert, *ast.Update, *ast.Delete:
		// Parsed fully (internal/parser/sql.go) but never run against any
		// table by the core interpreter — spec.md's Non-goals rule out
		// query execution, so evaluating one of these nodes is inert.
		return runtime.VUndefined{}, nil
	}
	return nil, errs.NewOther(fmt.Sprintf("unknown expression node %T", arena.Expr(id)))
}

func literalValue(v ast.LiteralValue) runtime.Value {
	switch v.Kind {
	case ast.LitStr:
		return runtime.VStr(v.Str)
	case ast.LitNum:
		return runtime.VNum(v.Num)
	case ast.LitBool:
		return runtime.VBool(v.Bool)
	case ast.LitNull:
		return runtime.VNull{}
	case ast.LitNaN:
		return runtime.VNaN{}
	default:
		// LitArray/LitObject: no source syntax produces these (array/object
		// values only ever arise from json.parse), so the parser never
		// emits them; kept here only so the switch is exhaustive.
		return runtime.VUndefined{}
	}
}

func (it *Interpreter) evalUnary(frame *runtime.Frame, e *ast.Unary, arena *ast.Arena, resolved *resolver.Table) (runtime.Value, error) {
	v, err := it.eval(frame, e.Operand, arena, resolved)
	if err != nil {
		return nil, err
	}
	if e.Op.Lexeme == "-" {
		switch t := v.(type) {
		case runtime.VNum:
			return runtime.VNum(-float64(t)), nil
		case runtime.VBool:
			if t {
				return runtime.VNum(-1), nil
			}
			return runtime.VNum(0), nil
		default:
			return runtime.VNaN{}, nil
		}
	}
	return runtime.VBool(!runtime.Truthy(v)), nil
}

func (it *Interpreter) evalLogical(frame *runtime.Frame, e *ast.Logical, arena *ast.Arena, resolved *resolver.Table) (runtime.Value, error) {
	left, err := it.eval(frame, e.Left, arena, resolved)
	if err != nil {
		return nil, err
	}
	leftTrue := runtime.Truthy(left)
	if e.Op.Lexeme == "or" && leftTrue {
		return runtime.VBool(true), nil
	}
	if e.Op.Lexeme == "and" && !leftTrue {
		return runtime.VBool(false), nil
	}
	right, err := it.eval(frame, e.Right, arena, resolved)
	if err != nil {
		return nil, err
	}
	return runtime.VBool(runtime.Truthy(right)), nil
}

func (it *Interpreter) evalVariable(frame *runtime.Frame, id ast.ExprId, e *ast.Variable, resolved *resolver.Table) (runtime.Value, error) {
	if depth, ok := resolved.DepthOf(id); ok {
		if v, ok := frame.GetAt(depth, e.Name); ok {
			return v, nil
		}
		return nil, errs.NewOther(fmt.Sprintf("undefined variable %q at %s", e.Name, e.Sp))
	}
	if v, ok := frame.GetGlobal(e.Name); ok {
		return v, nil
	}
	return nil, errs.NewOther(fmt.Sprintf("undefined variable %q at %s", e.Name, e.Sp))
}

func (it *Interpreter) evalAssignment(frame *runtime.Frame, id ast.ExprId, e *ast.Assignment, arena *ast.Arena, resolved *resolver.Table) (runtime.Value, error) {
	v, err := it.eval(frame, e.Value, arena, resolved)
	if err != nil {
		return nil, err
	}
	if depth, ok := resolved.DepthOf(id); ok {
		if frame.AssignAt(depth, e.Target, v) {
			return v, nil
		}
		return nil, errs.NewOther(fmt.Sprintf("undefined variable %q at %s", e.Target, e.Sp))
	}
	if frame.AssignGlobal(e.Target, v) {
		return v, nil
	}
	return nil, errs.NewOther(fmt.Sprintf("undefined variable %q at %s", e.Target, e.Sp))
}

func (it *Interpreter) evalCall(frame *runtime.Frame, e *ast.Call, arena *ast.Arena, resolved *resolver.Table) (runtime.Value, error) {
	calleeVal, err := it.eval(frame, e.Callee, arena, resolved)
	if err != nil {
		return nil, err
	}
	callable, ok := calleeVal.(*runtime.VCallable)
	if !ok {
		return nil, errs.NewNotCallable(e.Sp)
	}
	if callable.Arity != nil && *callable.Arity != len(e.Args) {
		return nil, errs.NewArityMismatch(e.Sp, *callable.Arity, len(e.Args))
	}
	args := make([]runtime.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := it.eval(frame, a, arena, resolved)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return it.invoke(callable, args)
}

// invoke dispatches an already arity-checked call to its backing
// implementation: a native Go stdlib function, a user closure (pushing a
// frame parented on the closure's *captured* environment, never the
// caller's), or a stateful sink append.
func (it *Interpreter) invoke(c *runtime.VCallable, args []runtime.Value) (runtime.Value, error) {
	switch c.Kind {
	case runtime.CallableNative:
		return c.Native(it, args)

	case runtime.CallableStateful:
		c.Sink.Append(args)
		return runtime.VUndefined{}, nil

	case runtime.CallableUser:
		uf := c.User
		callFrame := runtime.NewFrame(uf.Closure)
		for i, name := range uf.Params {
			callFrame.Declare(name, args[i])
		}
		sig, val, err := it.execStmts(callFrame, uf.Body, uf.Arena, uf.Resolved)
		if err != nil {
			return nil, err
		}
		switch sig {
		case sigReturn:
			return val, nil
		case sigBreak, sigContinue:
			return nil, errs.NewOther("break/continue cannot escape a function call")
		default:
			return runtime.VUndefined{}, nil
		}
	}
	return nil, errs.NewOther("uncallable callable kind")
}

func (it *Interpreter) evalGet(frame *runtime.Frame, e *ast.Get, arena *ast.Arena, resolved *resolver.Table) (runtime.Value, error) {
	objVal, err := it.eval(frame, e.Object, arena, resolved)
	if err != nil {
		return nil, err
	}
	obj, ok := objVal.(*runtime.VObject)
	if !ok {
		return nil, errs.NewOther(fmt.Sprintf("cannot read property %q of a non-object value at %s", e.Name, e.Sp))
	}
	if v, ok := obj.Get(e.Name); ok {
		return v, nil
	}
	return runtime.VUndefined{}, nil
}

func (it *Interpreter) evalFunction(frame *runtime.Frame, e *ast.Function, arena *ast.Arena, resolved *resolver.Table) runtime.Value {
	params := make([]string, len(e.Params))
	for i, p := range e.Params {
		params[i] = p.Lexeme
	}
	arity := len(params)
	name, selfName := "", ""
	if e.Name != nil {
		name, selfName = *e.Name, *e.Name
	}
	return &runtime.VCallable{
		Arity: &arity,
		Kind:  runtime.CallableUser,
		Name:  name,
		User: &runtime.UserFunction{
			Params:   params,
			Body:     e.Body,
			Arena:    arena,
			Resolved: resolved,
			Closure:  frame,
			SelfName: selfName,
		},
	}
}
