package ast

import "github.com/lykiadb/lykiadb/internal/token"

// Program is the root of every parse: the top-level statement sequence.
type Program struct {
	Stmts []StmtId
	Sp    token.Span
}

func (s *Program) stmtNode()        {}
func (s *Program) Span() token.Span { return s.Sp }

// Expression is a bare expression evaluated for its side effect, its
// value discarded.
type Expression struct {
	Expr ExprId
	Sp   token.Span
}

func (s *Expression) stmtNode()        {}
func (s *Expression) Span() token.Span { return s.Sp }

// Block introduces a new lexical scope over a statement sequence.
type Block struct {
	Stmts []StmtId
	Sp    token.Span
}

func (s *Block) stmtNode()        {}
func (s *Block) Span() token.Span { return s.Sp }

// Declaration binds Value under Target in the current frame, shadowing
// any outer binding of the same name.
type Declaration struct {
	Target string
	Value  ExprId
	Sp     token.Span
}

func (s *Declaration) stmtNode()        {}
func (s *Declaration) Span() token.Span { return s.Sp }

// If runs Then when Cond is truthy, else Else (if present).
type If struct {
	Cond ExprId
	Then StmtId
	Else *StmtId
	Sp   token.Span
}

func (s *If) stmtNode()        {}
func (s *If) Span() token.Span { return s.Sp }

// Loop is the single unified loop form backing `while`, `for` and
// `loop`: Cond is evaluated before each iteration (nil means "always
// true"), Body runs, then Post (if present) runs. `for` desugars its
// initializer into an enclosing Block and its post-expression into Post;
// `while` and `loop` simply leave Post nil.
type Loop struct {
	Cond *ExprId
	Body StmtId
	Post *StmtId
	Sp   token.Span
}

func (s *Loop) stmtNode()        {}
func (s *Loop) Span() token.Span { return s.Sp }

// Break transitions the innermost enclosing Loop to its Broken state.
type Break struct {
	Sp token.Span
}

func (s *Break) stmtNode()        {}
func (s *Break) Span() token.Span { return s.Sp }

// Continue transitions the innermost enclosing Loop to its Continue
// state, skipping straight to its Post step.
type Continue struct {
	Sp token.Span
}

func (s *Continue) stmtNode()        {}
func (s *Continue) Span() token.Span { return s.Sp }

// Return produces a Return halt, propagating up to the nearest enclosing
// function call.
type Return struct {
	Value *ExprId
	Sp    token.Span
}

func (s *Return) stmtNode()        {}
func (s *Return) Span() token.Span { return s.Sp }
