package ast

import "github.com/lykiadb/lykiadb/internal/token"

// LiteralKind tags a compile-time literal value embedded in source.
type LiteralKind int

const (
	LitStr LiteralKind = iota
	LitNum
	LitBool
	LitUndefined
	LitNull
	LitNaN
	LitArray
	LitObject
)

// ObjectField is one key/expression pair of an object literal, kept in
// source order (the data model requires Object to be an ordered mapping).
type ObjectField struct {
	Key   string
	Value ExprId
}

// LiteralValue is the parsed value of a Literal expression. Array/Object
// entries reference sibling expressions by id so nested literals compose
// through the same arena.
type LiteralValue struct {
	Kind   LiteralKind
	Str    string
	Num    float64
	Bool   bool
	Array  []ExprId
	Object []ObjectField
}

// Literal is a constant value appearing directly in source.
type Literal struct {
	Value LiteralValue
	Raw   string
	Sp    token.Span
}

func (e *Literal) exprNode()          {}
func (e *Literal) Span() token.Span   { return e.Sp }

// Grouping is a parenthesized sub-expression, kept distinct from its
// child so span reporting and AST-JSON round-tripping can tell `(a)` from
// `a` apart.
type Grouping struct {
	Inner ExprId
	Sp    token.Span
}

func (e *Grouping) exprNode()        {}
func (e *Grouping) Span() token.Span { return e.Sp }

// Unary is a prefix operator (`-`, `!`) applied to one operand.
type Unary struct {
	Op      token.Token
	Operand ExprId
	Sp      token.Span
}

func (e *Unary) exprNode()        {}
func (e *Unary) Span() token.Span { return e.Sp }

// Binary is a two-operand operator evaluated through the coercion table.
type Binary struct {
	Left  ExprId
	Op    token.Token
	Right ExprId
	Sp    token.Span
}

func (e *Binary) exprNode()        {}
func (e *Binary) Span() token.Span { return e.Sp }

// Logical is `and`/`or`, which short-circuit and never reach the binary
// coercion table.
type Logical struct {
	Left  ExprId
	Op    token.Token
	Right ExprId
	Sp    token.Span
}

func (e *Logical) exprNode()        {}
func (e *Logical) Span() token.Span { return e.Sp }

// Variable is a read of a `$name` binding.
type Variable struct {
	Name string
	Sp   token.Span
}

func (e *Variable) exprNode()        {}
func (e *Variable) Span() token.Span { return e.Sp }

// Assignment writes Value into the binding named Target. The parser only
// ever constructs one of these when the left-hand side was a bare
// Variable token (spec: "left side of `=` must be a Variable").
type Assignment struct {
	Target string
	Value  ExprId
	Sp     token.Span
}

func (e *Assignment) exprNode()        {}
func (e *Assignment) Span() token.Span { return e.Sp }

// Call applies Callee to Args, left to right.
type Call struct {
	Callee ExprId
	Args   []ExprId
	Sp     token.Span
}

func (e *Call) exprNode()        {}
func (e *Call) Span() token.Span { return e.Sp }

// Get reads a named property off an object-shaped value.
type Get struct {
	Object ExprId
	Name   string
	Sp     token.Span
}

func (e *Get) exprNode()        {}
func (e *Get) Span() token.Span { return e.Sp }

// Function is a (possibly anonymous) function literal. Name is non-nil
// only for the `fun name(...) {}` form; per the spec, a name on a
// function *expression* is not auto-bound in the surrounding scope by
// the parser — only the Declaration handling in internal/resolver and
// internal/interpreter does that, and only when this expression (possibly
// parenthesized) is the initializer of a `var` declaration.
type Function struct {
	Name   *string
	Params []token.Token
	Body   []StmtId
	Sp     token.Span
}

func (e *Function) exprNode()        {}
func (e *Function) Span() token.Span { return e.Sp }

// Select wraps an embedded SQL SELECT appearing where an expression is
// expected. SELECT is parsed fully but never executed against data by
// the core interpreter (spec Non-goals).
type Select struct {
	Query *SqlSelect
	Sp    token.Span
}

func (e *Select) exprNode()        {}
func (e *Select) Span() token.Span { return e.Sp }

// Insert wraps an embedded SQL INSERT.
type Insert struct {
	Query *SqlInsert
	Sp    token.Span
}

func (e *Insert) exprNode()        {}
func (e *Insert) Span() token.Span { return e.Sp }

// Update wraps an embedded SQL UPDATE.
type Update struct {
	Query *SqlUpdate
	Sp    token.Span
}

func (e *Update) exprNode()        {}
func (e *Update) Span() token.Span { return e.Sp }

// Delete wraps an embedded SQL DELETE.
type Delete struct {
	Query *SqlDelete
	Sp    token.Span
}

func (e *Delete) exprNode()        {}
func (e *Delete) Span() token.Span { return e.Sp }
