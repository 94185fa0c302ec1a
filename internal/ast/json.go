package ast

import (
	"encoding/json"
	"fmt"
)

// ToJSON renders the statement tree rooted at root as the AST-JSON schema
// from spec.md §6: every node is `{"type": "<Kind>", ...fields}`,
// statements tagged "Stmt::...", expressions "Expr::...". Used by the
// `Ast` request's response and the CLI's `.ast` command; this package
// has no reader that parses the JSON back into an arena.
func ToJSON(a *Arena, root StmtId) ([]byte, error) {
	return json.Marshal(stmtJSON(a, root))
}

func stmtJSON(a *Arena, id StmtId) map[string]any {
	switch s := a.Stmt(id).(type) {
	case *Program:
		return map[string]any{"type": "Stmt::Program", "stmts": stmtsJSON(a, s.Stmts)}
	case *Expression:
		return map[string]any{"type": "Stmt::Expression", "expr": exprJSON(a, s.Expr)}
	case *Block:
		return map[string]any{"type": "Stmt::Block", "stmts": stmtsJSON(a, s.Stmts)}
	case *Declaration:
		return map[string]any{"type": "Stmt::Declaration", "target": s.Target, "expr": exprJSON(a, s.Value)}
	case *If:
		out := map[string]any{"type": "Stmt::If", "condition": exprJSON(a, s.Cond), "then": stmtJSON(a, s.Then)}
		if s.Else != nil {
			out["else"] = stmtJSON(a, *s.Else)
		}
		return out
	case *Loop:
		out := map[string]any{"type": "Stmt::Loop", "body": stmtJSON(a, s.Body)}
		if s.Cond != nil {
			out["condition"] = exprJSON(a, *s.Cond)
		}
		if s.Post != nil {
			out["post"] = stmtJSON(a, *s.Post)
		}
		return out
	case *Break:
		return map[string]any{"type": "Stmt::Break"}
	case *Continue:
		return map[string]any{"type": "Stmt::Continue"}
	case *Return:
		out := map[string]any{"type": "Stmt::Return"}
		if s.Value != nil {
			out["expr"] = exprJSON(a, *s.Value)
		}
		return out
	default:
		return map[string]any{"type": "Stmt::Unknown"}
	}
}

func stmtsJSON(a *Arena, ids []StmtId) []map[string]any {
	out := make([]map[string]any, len(ids))
	for i, id := range ids {
		out[i] = stmtJSON(a, id)
	}
	return out
}

func exprJSON(a *Arena, id ExprId) map[string]any {
	switch e := a.Expr(id).(type) {
	case *Literal:
		return map[string]any{"type": "Expr::Literal", "value": literalValueTag(a, e.Value), "raw": e.Raw}
	case *Grouping:
		return map[string]any{"type": "Expr::Grouping", "expr": exprJSON(a, e.Inner)}
	case *Unary:
		return map[string]any{"type": "Expr::Unary", "op": e.Op.Lexeme, "expr": exprJSON(a, e.Operand)}
	case *Binary:
		return map[string]any{"type": "Expr::Binary", "op": e.Op.Lexeme, "left": exprJSON(a, e.Left), "right": exprJSON(a, e.Right)}
	case *Logical:
		return map[string]any{"type": "Expr::Logical", "op": e.Op.Lexeme, "left": exprJSON(a, e.Left), "right": exprJSON(a, e.Right)}
	case *Variable:
		return map[string]any{"type": "Expr::Variable", "name": e.Name}
	case *Assignment:
		return map[string]any{"type": "Expr::Assignment", "target": e.Target, "expr": exprJSON(a, e.Value)}
	case *Call:
		args := make([]map[string]any, len(e.Args))
		for i, arg := range e.Args {
			args[i] = exprJSON(a, arg)
		}
		return map[string]any{"type": "Expr::Call", "callee": exprJSON(a, e.Callee), "args": args}
	case *Get:
		return map[string]any{"type": "Expr::Get", "object": exprJSON(a, e.Object), "name": e.Name}
	case *Function:
		params := make([]string, len(e.Params))
		for i, p := range e.Params {
			params[i] = p.Lexeme
		}
		out := map[string]any{"type": "Expr::Function", "params": params, "body": stmtsJSON(a, e.Body)}
		if e.Name != nil {
			out["name"] = *e.Name
		}
		return out
	case *Select:
		return map[string]any{"type": "Expr::Select", "query": e.Query}
	case *Insert:
		return map[string]any{"type": "Expr::Insert", "query": e.Query}
	case *Update:
		return map[string]any{"type": "Expr::Update", "query": e.Query}
	case *Delete:
		return map[string]any{"type": "Expr::Delete", "query": e.Query}
	default:
		return map[string]any{"type": "Expr::Unknown"}
	}
}

// literalValueTag renders a Literal's value as "<Variant>(<value>)" per
// spec.md §6 ("Literals carry {value: "<Variant>(<value>)", raw}").
func literalValueTag(a *Arena, v LiteralValue) string {
	switch v.Kind {
	case LitStr:
		return fmt.Sprintf("Str(%s)", v.Str)
	case LitNum:
		return fmt.Sprintf("Num(%v)", v.Num)
	case LitBool:
		return fmt.Sprintf("Bool(%v)", v.Bool)
	case LitUndefined:
		return "Undefined"
	case LitNull:
		return "Null"
	case LitNaN:
		return "NaN"
	case LitArray:
		parts := make([]string, len(v.Array))
		for i, id := range v.Array {
			parts[i] = fmt.Sprint(exprJSON(a, id))
		}
		return fmt.Sprintf("Array(%v)", parts)
	case LitObject:
		parts := make([]string, len(v.Object))
		for i, f := range v.Object {
			parts[i] = fmt.Sprintf("%s: %v", f.Key, exprJSON(a, f.Value))
		}
		return fmt.Sprintf("Object(%v)", parts)
	default:
		return "Unknown"
	}
}
