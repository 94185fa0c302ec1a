package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lykiadb/lykiadb/internal/ast"
	"github.com/lykiadb/lykiadb/internal/lexer"
	"github.com/lykiadb/lykiadb/internal/parser"
)

func parseProgram(t *testing.T, src string) (*ast.Arena, *ast.Program) {
	t.Helper()
	toks, err := lexer.Scan(src)
	require.NoError(t, err)
	arena, root, err := parser.Parse(toks)
	require.NoError(t, err)
	prog, ok := arena.Stmt(root).(*ast.Program)
	require.True(t, ok)
	return arena, prog
}

func TestParseVarDeclarationWithAndWithoutInitializer(t *testing.T) {
	arena, prog := parseProgram(t, `var $x = 1; var $y;`)
	require.Len(t, prog.Stmts, 2)

	d0 := arena.Stmt(prog.Stmts[0]).(*ast.Declaration)
	assert.Equal(t, "x", d0.Target)
	lit := arena.Expr(d0.Value).(*ast.Literal)
	assert.Equal(t, ast.LitNum, lit.Value.Kind)
	assert.Equal(t, float64(1), lit.Value.Num)

	d1 := arena.Stmt(prog.Stmts[1]).(*ast.Declaration)
	assert.Equal(t, "y", d1.Target)
	lit1 := arena.Expr(d1.Value).(*ast.Literal)
	assert.Equal(t, ast.LitUndefined, lit1.Value.Kind)
}

func TestParseIfElseChain(t *testing.T) {
	arena, prog := parseProgram(t, `if ($x > 0) { $x = 1; } else if ($x < 0) { $x = -1; } else { $x = 0; }`)
	require.Len(t, prog.Stmts, 1)
	outer := arena.Stmt(prog.Stmts[0]).(*ast.If)
	require.NotNil(t, outer.Else)
	inner := arena.Stmt(*outer.Else).(*ast.If)
	require.NotNil(t, inner.Else)
}

func TestParseForDesugarsToBlockAndLoop(t *testing.T) {
	arena, prog := parseProgram(t, `for (var $i = 0; $i < 3; $i = $i + 1) { }`)
	require.Len(t, prog.Stmts, 1)
	block := arena.Stmt(prog.Stmts[0]).(*ast.Block)
	require.Len(t, block.Stmts, 2)
	_, isDecl := arena.Stmt(block.Stmts[0]).(*ast.Declaration)
	assert.True(t, isDecl)
	loop, isLoop := arena.Stmt(block.Stmts[1]).(*ast.Loop)
	require.True(t, isLoop)
	require.NotNil(t, loop.Cond)
	require.NotNil(t, loop.Post)
}

func TestParseFunctionLiteralWithName(t *testing.T) {
	arena, prog := parseProgram(t, `var $f = fun add($a, $b) { return $a + $b; };`)
	d := arena.Stmt(prog.Stmts[0]).(*ast.Declaration)
	fn := arena.Expr(d.Value).(*ast.Function)
	require.NotNil(t, fn.Name)
	assert.Equal(t, "add", *fn.Name)
	assert.Len(t, fn.Params, 2)
}

func TestParseCallAndGetChain(t *testing.T) {
	arena, prog := parseProgram(t, `$obj.method($x).field;`)
	stmt := arena.Stmt(prog.Stmts[0]).(*ast.Expression)
	get := arena.Expr(stmt.Expr).(*ast.Get)
	assert.Equal(t, "field", get.Name)
	call := arena.Expr(get.Object).(*ast.Call)
	require.Len(t, call.Args, 1)
	inner := arena.Expr(call.Callee).(*ast.Get)
	assert.Equal(t, "method", inner.Name)
}

func TestParseBinaryPrecedence(t *testing.T) {
	arena, prog := parseProgram(t, `1 + 2 * 3;`)
	stmt := arena.Stmt(prog.Stmts[0]).(*ast.Expression)
	bin := arena.Expr(stmt.Expr).(*ast.Binary)
	assert.Equal(t, "+", bin.Op.Lexeme)
	rhs := arena.Expr(bin.Right).(*ast.Binary)
	assert.Equal(t, "*", rhs.Op.Lexeme)
}

func TestParseAssignmentRequiresVariableTarget(t *testing.T) {
	_, err := lexer.Scan(`1 = 2;`)
	require.NoError(t, err)
	toks, _ := lexer.Scan(`1 = 2;`)
	_, _, err = parser.Parse(toks)
	require.Error(t, err)
}

func TestParseMissingSemicolonIsError(t *testing.T) {
	toks, err := lexer.Scan(`var $x = 1`)
	require.NoError(t, err)
	_, _, err = parser.Parse(toks)
	require.Error(t, err)
}

func TestParseSelectCompound(t *testing.T) {
	arena, prog := parseProgram(t, `select * from users union select * from admins;`)
	stmt := arena.Stmt(prog.Stmts[0]).(*ast.Expression)
	sel := arena.Expr(stmt.Expr).(*ast.Select)
	require.Len(t, sel.Query.Compound, 1)
	assert.Equal(t, ast.SqlUnion, sel.Query.Compound[0].Op)
}

func TestParseInsertStatement(t *testing.T) {
	arena, prog := parseProgram(t, `insert into users (id, name) values (1, "a");`)
	stmt := arena.Stmt(prog.Stmts[0]).(*ast.Expression)
	ins := arena.Expr(stmt.Expr).(*ast.Insert)
	assert.Equal(t, "users", ins.Query.Table)
	assert.Equal(t, []string{"id", "name"}, ins.Query.Columns)
}
