package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lykiadb/lykiadb/internal/ast"
	"github.com/lykiadb/lykiadb/internal/lexer"
	"github.com/lykiadb/lykiadb/internal/parser"
	"github.com/lykiadb/lykiadb/internal/resolver"
)

func parse(t *testing.T, src string) (*ast.Arena, ast.StmtId) {
	t.Helper()
	toks, err := lexer.Scan(src)
	require.NoError(t, err)
	arena, root, err := parser.Parse(toks)
	require.NoError(t, err)
	return arena, root
}

func TestResolveLocalShadowsGlobal(t *testing.T) {
	arena, root := parse(t, `var $x = 1; { var $x = 2; $x; }`)
	table, err := resolver.Resolve(arena, root)
	require.NoError(t, err)

	prog := arena.Stmt(root).(*ast.Program)
	block := arena.Stmt(prog.Stmts[1]).(*ast.Block)
	exprStmt := arena.Stmt(block.Stmts[1]).(*ast.Expression)
	readId := exprStmt.Expr

	depth, ok := table.DepthOf(readId)
	require.True(t, ok)
	assert.Equal(t, 0, depth)
}

func TestResolveOuterVariableThroughNestedBlocks(t *testing.T) {
	arena, root := parse(t, `var $x = 1; { { $x; } }`)
	table, err := resolver.Resolve(arena, root)
	require.NoError(t, err)

	prog := arena.Stmt(root).(*ast.Program)
	outer := arena.Stmt(prog.Stmts[1]).(*ast.Block)
	inner := arena.Stmt(outer.Stmts[0]).(*ast.Block)
	exprStmt := arena.Stmt(inner.Stmts[0]).(*ast.Expression)

	_, ok := table.DepthOf(exprStmt.Expr)
	assert.False(t, ok, "reference to a global should have no recorded depth")
}

func TestResolveReadInOwnInitializerIsError(t *testing.T) {
	arena, root := parse(t, `var $x = 1; { var $x = $x; }`)
	_, err := resolver.Resolve(arena, root)
	require.Error(t, err)
}

func TestResolveFunctionParamsScopedToBody(t *testing.T) {
	arena, root := parse(t, `var $f = fun ($a) { return $a; };`)
	table, err := resolver.Resolve(arena, root)
	require.NoError(t, err)

	prog := arena.Stmt(root).(*ast.Program)
	decl := arena.Stmt(prog.Stmts[0]).(*ast.Declaration)
	fn := arena.Expr(decl.Value).(*ast.Function)
	retStmt := arena.Stmt(fn.Body[0]).(*ast.Return)

	depth, ok := table.DepthOf(*retStmt.Value)
	require.True(t, ok)
	assert.Equal(t, 0, depth)
}

func TestResolveAssignmentTarget(t *testing.T) {
	arena, root := parse(t, `var $x = 1; { $x = 2; }`)
	table, err := resolver.Resolve(arena, root)
	require.NoError(t, err)

	prog := arena.Stmt(root).(*ast.Program)
	block := arena.Stmt(prog.Stmts[1]).(*ast.Block)
	exprStmt := arena.Stmt(block.Stmts[0]).(*ast.Expression)
	assign := arena.Expr(exprStmt.Expr).(*ast.Assignment)

	_, ok := table.DepthOf(exprStmt.Expr)
	assert.False(t, ok, "assignment to a global should have no recorded depth")
	assert.Equal(t, "x", assign.Target)
}
