// Package ast defines the arena-resident AST: typed sum types for
// expressions and statements, indexed by opaque ExprId/StmtId rather than
// owned by pointer. This sidesteps the cyclic/self-referential shape a
// closure-capturing, block-scoped language naturally has.
//
// What: two append-only slices (one per node kind) plus the node types
// themselves.
// How: every Expr/Stmt variant is a small Go struct; the arena never
// mutates or removes an entry once appended, so an ExprId/StmtId handed
// out by the parser stays valid for the arena's whole lifetime.
// Why: mirrors the teacher repo's sum-type AST (internal/engine/parser.go
// type Expr interface{}), generalized with index-based child references
// so the resolver and interpreter can walk the tree without recursive
// ownership.
package ast

import "github.com/lykiadb/lykiadb/internal/token"

// ExprId indexes into an Arena's expression slice.
type ExprId int

// StmtId indexes into an Arena's statement slice.
type StmtId int

// Expr is the sum type of all expression nodes. Children are referenced
// by ExprId, never owned directly.
type Expr interface {
	exprNode()
	Span() token.Span
}

// Stmt is the sum type of all statement nodes.
type Stmt interface {
	stmtNode()
	Span() token.Span
}

// Arena owns every AST node produced by one parse. It is written only by
// the parser; the resolver and interpreter borrow nodes by id and never
// mutate the arena.
type Arena struct {
	exprs []Expr
	stmts []Stmt
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// AddExpr appends e and returns its id.
func (a *Arena) AddExpr(e Expr) ExprId {
	a.exprs = append(a.exprs, e)
	return ExprId(len(a.exprs) - 1)
}

// AddStmt appends s and returns its id.
func (a *Arena) AddStmt(s Stmt) StmtId {
	a.stmts = append(a.stmts, s)
	return StmtId(len(a.stmts) - 1)
}

// Expr retrieves the expression at id. Panics on an out-of-range id,
// which would indicate a cross-arena reference — a parser bug, never a
// condition a well-formed program can trigger.
func (a *Arena) Expr(id ExprId) Expr {
	return a.exprs[id]
}

// Stmt retrieves the statement at id.
func (a *Arena) Stmt(id StmtId) Stmt {
	return a.stmts[id]
}

// NumExprs reports how many expression nodes the arena holds.
func (a *Arena) NumExprs() int { return len(a.exprs) }

// NumStmts reports how many statement nodes the arena holds.
func (a *Arena) NumStmts() int { return len(a.stmts) }
