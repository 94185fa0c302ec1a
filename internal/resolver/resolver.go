// Package resolver implements the static pre-pass that, for every
// variable-reading or -assigning expression, records the scope depth at
// which its binding lives. The interpreter consults this side-table
// instead of doing name lookup at eval time, which is what makes a
// function capture the binding visible at its *definition* site rather
// than its call site even when a later local shadows the captured name.
//
// What: one Table (ExprId -> depth) built by a single walk of the arena.
// How: a stack of scopes, each a name -> defined-yet bool map, pushed on
// Block/Function entry and popped on exit — the classic lexical-scope
// resolver, grounded line-for-line on
// original_source/src/runtime/resolver.rs's Resolver.
// Why: resolving ahead of time turns "does this name shadow a later
// local" from a runtime question into a compile-time fact, which is the
// whole point of the exercise (spec.md §8's closure-capture scenario).
package resolver

import (
	"github.com/lykiadb/lykiadb/internal/ast"
	"github.com/lykiadb/lykiadb/internal/errs"
)

// Table maps an ExprId (always a Variable or Assignment) to the scope
// depth its binding resolves at. A missing key means "resolve against
// the global frame".
type Table struct {
	depths map[ast.ExprId]int
}

// DepthOf reports the recorded depth for id, if any.
func (t *Table) DepthOf(id ast.ExprId) (int, bool) {
	d, ok := t.depths[id]
	return d, ok
}

type scope map[string]bool

// resolver walks one arena, accumulating a Table. A scope is pushed at
// construction and never popped, resolving the spec's open question in
// favor of "global lookup is a missing-key condition, never a stack
// underflow": see SPEC_FULL.md §9.
type resolver struct {
	arena  *ast.Arena
	scopes []scope
	table  *Table
	err    error
}

// Resolve walks the program rooted at root and returns its variable
// resolution table, or the first "read in own initializer" error found.
func Resolve(arena *ast.Arena, root ast.StmtId) (*Table, error) {
	r := &resolver{
		arena:  arena,
		scopes: []scope{{}},
		table:  &Table{depths: make(map[ast.ExprId]int)},
	}
	r.resolveStmt(root)
	if r.err != nil {
		return nil, r.err
	}
	return r.table, nil
}

func (r *resolver) beginScope() { r.scopes = append(r.scopes, scope{}) }
func (r *resolver) endScope()   { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *resolver) declare(name string) {
	r.scopes[len(r.scopes)-1][name] = false
}

func (r *resolver) define(name string) {
	r.scopes[len(r.scopes)-1][name] = true
}

func (r *resolver) resolveLocal(id ast.ExprId, name string) {
	for depth := len(r.scopes) - 1; depth >= 0; depth-- {
		if _, ok := r.scopes[depth][name]; ok {
			if depth == 0 {
				// Found in the global scope: no entry, resolves against globals.
				return
			}
			r.table.depths[id] = len(r.scopes) - 1 - depth
			return
		}
	}
	// Not found in any scope: resolves against globals, no entry recorded.
}

func (r *resolver) resolveStmts(ids []ast.StmtId) {
	for _, id := range ids {
		if r.err != nil {
			return
		}
		r.resolveStmt(id)
	}
}

func (r *resolver) resolveStmt(id ast.StmtId) {
	if r.err != nil {
		return
	}
	switch s := r.arena.Stmt(id).(type) {
	case *ast.Program:
		r.resolveStmts(s.Stmts)
	case *ast.Expression:
		r.resolveExpr(s.Expr)
	case *ast.Block:
		r.beginScope()
		r.resolveStmts(s.Stmts)
		r.endScope()
	case *ast.Declaration:
		r.declare(s.Target)
		if fn, ok := r.unwrapFunction(s.Value); ok {
			r.resolveFunction(fn, true)
		} else {
			r.resolveExpr(s.Value)
		}
		r.define(s.Target)
	case *ast.If:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(*s.Else)
		}
	case *ast.Loop:
		if s.Cond != nil {
			r.resolveExpr(*s.Cond)
		}
		r.resolveStmt(s.Body)
		if s.Post != nil {
			r.resolveStmt(*s.Post)
		}
	case *ast.Break, *ast.Continue:
		// no scope work
	case *ast.Return:
		if s.Value != nil {
			r.resolveExpr(*s.Value)
		}
	}
}

// unwrapFunction sees through Grouping the way interpreter.eval does: a
// parenthesized function literal still evaluates to the same
// *runtime.VCallable a bare one would, so `var $f = (fun named() {});`
// must self-bind `named` exactly like `var $f = fun named() {};` does.
func (r *resolver) unwrapFunction(id ast.ExprId) (*ast.Function, bool) {
	switch e := r.arena.Expr(id).(type) {
	case *ast.Function:
		return e, true
	case *ast.Grouping:
		return r.unwrapFunction(e.Inner)
	default:
		return nil, false
	}
}

// resolveFunction resolves a function literal's parameter/body scope.
// bindSelf controls whether e.Name (if present) is declared/defined in
// the scope enclosing the function, which is only correct when id is a
// var declaration's direct initializer — interpreter.execStmt's
// *ast.Declaration case is the only place that self-name binding
// actually happens at runtime, so the resolver must only ever record a
// depth for it under that same condition.
func (r *resolver) resolveFunction(e *ast.Function, bindSelf bool) {
	if bindSelf && e.Name != nil {
		r.declare(*e.Name)
		r.define(*e.Name)
	}
	r.beginScope()
	for _, p := range e.Params {
		r.declare(p.Lexeme)
		r.define(p.Lexeme)
	}
	r.resolveStmts(e.Body)
	r.endScope()
}

func (r *resolver) resolveExpr(id ast.ExprId) {
	if r.err != nil {
		return
	}
	switch e := r.arena.Expr(id).(type) {
	case *ast.Literal:
		r.resolveLiteral(e.Value)
	case *ast.Grouping:
		r.resolveExpr(e.Inner)
	case *ast.Unary:
		r.resolveExpr(e.Operand)
	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if defined, declaredHere := r.scopes[len(r.scopes)-1][e.Name]; declaredHere && !defined {
				r.err = errs.NewReadInOwnInitializer(e.Name, e.Sp)
				return
			}
		}
		r.resolveLocal(id, e.Name)
	case *ast.Assignment:
		r.resolveExpr(e.Value)
		r.resolveLocal(id, e.Target)
	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}
	case *ast.Get:
		r.resolveExpr(e.Object)
	case *ast.Function:
		// A name on a bare function *expression* is never self-bound here —
		// only resolveStmt's *ast.Declaration case does that, and only when
		// this expression is a var declaration's direct initializer (see
		// ast.Function's doc comment).
		r.resolveFunction(e, false)
	case *ast.Select:
		r.resolveSelect(e.Query)
	case *ast.Insert:
		for _, v := range e.Query.Values {
			r.resolveExpr(v.Expr)
		}
	case *ast.Update:
		for _, set := range e.Query.Sets {
			r.resolveExpr(set.Value.Expr)
		}
		if e.Query.Where != nil {
			r.resolveExpr(e.Query.Where.Expr)
		}
	case *ast.Delete:
		if e.Query.Where != nil {
			r.resolveExpr(e.Query.Where.Expr)
		}
	}
}

func (r *resolver) resolveLiteral(v ast.LiteralValue) {
	switch v.Kind {
	case ast.LitArray:
		for _, id := range v.Array {
			r.resolveExpr(id)
		}
	case ast.LitObject:
		for _, f := range v.Object {
			r.resolveExpr(f.Value)
		}
	}
}

func (r *resolver) resolveSelect(q *ast.SqlSelect) {
	r.resolveSelectCore(q.Core)
	for _, term := range q.Compound {
		r.resolveSelectCore(term.Core)
	}
	for _, ord := range q.OrderBy {
		r.resolveExpr(ord.Expr.Expr)
	}
	if q.Limit != nil {
		r.resolveExpr(q.Limit.Expr)
	}
	if q.Offset != nil {
		r.resolveExpr(q.Offset.Expr)
	}
}

func (r *resolver) resolveSelectCore(core ast.SqlSelectCore) {
	for _, proj := range core.Projection {
		if !proj.Star && proj.TableStar == "" {
			r.resolveExpr(proj.Expr.Expr)
		}
	}
	if core.From != nil && core.From.Subquery != nil {
		r.resolveSelect(core.From.Subquery)
	}
	for _, j := range core.Joins {
		if j.Table.Subquery != nil {
			r.resolveSelect(j.Table.Subquery)
		}
		r.resolveExpr(j.On.Expr)
	}
	if core.Where != nil {
		r.resolveExpr(core.Where.Expr)
	}
	for _, g := range core.GroupBy {
		r.resolveExpr(g.Expr)
	}
	if core.Having != nil {
		r.resolveExpr(core.Having.Expr)
	}
}
