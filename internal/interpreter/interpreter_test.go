package interpreter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lykiadb/lykiadb/internal/ast"
	"github.com/lykiadb/lykiadb/internal/interpreter"
	"github.com/lykiadb/lykiadb/internal/runtime"
)

// newHarness builds an interpreter with a Sink wired to test_utils.out,
// mirroring original_source/lykiadb-server's own `assert_out` test
// helper: run source, then assert on the flattened single-argument call
// list the script pushed through test_utils.out.
func newHarness() (*interpreter.Interpreter, *runtime.Sink) {
	sink := &runtime.Sink{}
	return interpreter.New(nil, sink), sink
}

func outValues(t *testing.T, sink *runtime.Sink) []runtime.Value {
	t.Helper()
	calls := sink.Snapshot()
	out := make([]runtime.Value, len(calls))
	for i, c := range calls {
		require.Len(t, c, 1, "test_utils.out call %d should carry exactly one argument", i)
		out[i] = c[0]
	}
	return out
}

// Scenario 1: if/else-if chain.
func TestIfElseIfChain(t *testing.T) {
	it, sink := newHarness()
	_, err := it.Run(`
		var $a = 30;
		if ($a > 50) { test_utils.out(">50"); }
		else if ($a > 20) { test_utils.out("50>$a>20"); }
		else { test_utils.out("<20"); }
	`)
	require.NoError(t, err)
	assert.Equal(t, []runtime.Value{runtime.VStr("50>$a>20")}, outValues(t, sink))
}

// Scenario 2: for loop with break/continue.
func TestForBreakContinue(t *testing.T) {
	it, sink := newHarness()
	_, err := it.Run(`
		for (var $i = 0; $i < 10; $i = $i + 1) {
			if ($i == 2) continue;
			if ($i == 8) break;
			test_utils.out($i);
		}
	`)
	require.NoError(t, err)
	want := []runtime.Value{
		runtime.VNum(0), runtime.VNum(1), runtime.VNum(3), runtime.VNum(4),
		runtime.VNum(5), runtime.VNum(6), runtime.VNum(7),
	}
	assert.Equal(t, want, outValues(t, sink))
}

// Scenario 3: nested loops, break only exits the innermost loop.
func TestNestedLoopsBreak(t *testing.T) {
	it, sink := newHarness()
	_, err := it.Run(`
		for (var $i = 0; $i < 10000000; $i = $i + 1) {
			if ($i > 17) break;
			if ($i < 15) continue;
			for (var $j = 0; $j < 10000000; $j = $j + 1) {
				test_utils.out($i + ":" + $j);
				if ($j > 2) break;
			}
		}
	`)
	require.NoError(t, err)
	want := make([]runtime.Value, 0, 12)
	for i := 15; i <= 17; i++ {
		for j := 0; j <= 3; j++ {
			want = append(want, runtime.VStr(itoa(i)+":"+itoa(j)))
		}
	}
	assert.Equal(t, want, outValues(t, sink))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

// Scenario 4: closure capture, the makeCounter pattern.
func TestClosureMakeCounter(t *testing.T) {
	it, sink := newHarness()
	_, err := it.Run(`
		var $makeCounter = fun () {
			var $i = 0;
			var $count = fun () {
				$i = $i + 1;
				return $i;
			};
			return $count;
		};
		var $counter = $makeCounter();
		test_utils.out($counter());
		test_utils.out($counter());
	`)
	require.NoError(t, err)
	assert.Equal(t, []runtime.Value{runtime.VNum(1), runtime.VNum(2)}, outValues(t, sink))
}

// Closure binds to the definition-site environment, not a later shadow.
func TestClosureCapturesDefinitionSite(t *testing.T) {
	it, sink := newHarness()
	_, err := it.Run(`
		var $a = "global";
		{
			var $show = fun () { test_utils.out($a); };
			$show();
			var $a = "block";
			$show();
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, []runtime.Value{runtime.VStr("global"), runtime.VStr("global")}, outValues(t, sink))
}

// Scenario 5: a named function literal in a `var` declaration's
// initializer also binds its own name in the surrounding scope.
func TestAnonymousNamedFunctionEscape(t *testing.T) {
	it, sink := newHarness()
	_, err := it.Run(`
		var $pr = fun a() { test_utils.out("hello"); };
		$pr();
		a();
	`)
	require.NoError(t, err)
	assert.Equal(t, []runtime.Value{runtime.VStr("hello"), runtime.VStr("hello")}, outValues(t, sink))
}

// A named function literal that is NOT a declaration's initializer does
// not leak its name into the surrounding scope.
func TestBareFunctionExpressionNameDoesNotEscape(t *testing.T) {
	it, _ := newHarness()
	_, err := it.Run(`(fun a() { return 1; })(); a();`)
	require.Error(t, err)
}

// A declaration's initializer function can still call itself by its own
// literal name, since that self-name is bound in the declaration's own
// scope, which is the scope enclosing the function body.
func TestDeclaredFunctionCanRecurseByOwnName(t *testing.T) {
	it, _ := newHarness()
	val, err := it.Run(`
		var $fact = fun fact($n) {
			if ($n <= 1) { return 1; }
			return $n * fact($n - 1);
		};
		return $fact(5);
	`)
	require.NoError(t, err)
	assert.Equal(t, runtime.VNum(120), val)
}

// A grouping around the initializer must not change whether the
// function's own name is bound, since interpreter.eval sees straight
// through Grouping to the same runtime.VCallable either way.
func TestParenthesizedDeclaredFunctionCanRecurseByOwnName(t *testing.T) {
	it, _ := newHarness()
	val, err := it.Run(`
		var $fact = (fun fact($n) {
			if ($n <= 1) { return 1; }
			return $n * fact($n - 1);
		});
		return $fact(5);
	`)
	require.NoError(t, err)
	assert.Equal(t, runtime.VNum(120), val)
}

// Scenario 6: SQL compound-select parse round-trip.
func TestSQLCompoundParse(t *testing.T) {
	arena, root, err := interpreter.Parse(`SELECT * FROM users UNION SELECT * FROM users EXCEPT SELECT * FROM users;`)
	require.NoError(t, err)

	prog, ok := arena.Stmt(root).(*ast.Program)
	require.True(t, ok)
	require.Len(t, prog.Stmts, 1)

	exprStmt, ok := arena.Stmt(prog.Stmts[0]).(*ast.Expression)
	require.True(t, ok)

	sel, ok := arena.Expr(exprStmt.Expr).(*ast.Select)
	require.True(t, ok)
	require.Len(t, sel.Query.Core.Projection, 1)
	require.Len(t, sel.Query.Compound, 2)
	assert.Equal(t, ast.SqlUnion, sel.Query.Compound[0].Op)
	assert.Equal(t, ast.SqlExcept, sel.Query.Compound[1].Op)
}

// Short-circuit: `and`/`or` must not evaluate the right operand once the
// left determines the result.
func TestLogicalShortCircuit(t *testing.T) {
	it, sink := newHarness()
	_, err := it.Run(`
		fun sideEffect() { test_utils.out("evaluated"); return true; };
		false and sideEffect();
		true or sideEffect();
	`)
	require.NoError(t, err)
	assert.Empty(t, outValues(t, sink))
}

func TestBinaryCoercionTable(t *testing.T) {
	it, _ := newHarness()

	cases := []struct {
		src  string
		want runtime.Value
	}{
		{`1 + 2;`, runtime.VNum(3)},
		{`"a" + "b";`, runtime.VStr("ab")},
		{`"x" + 1;`, runtime.VStr("x1")},
		{`1 + "x";`, runtime.VStr("1x")},
		{`true + 1;`, runtime.VNum(2)},
		{`1 + true;`, runtime.VNum(2)},
		{`true + false;`, runtime.VNum(1)},
		{`null == null;`, runtime.VBool(true)},
		{`null != null;`, runtime.VBool(false)},
		{`1 == null;`, runtime.VBool(false)},
		{`"a" < "b";`, runtime.VBool(true)},
		{`false < true;`, runtime.VBool(true)},
		{`true > false;`, runtime.VBool(true)},
	}
	for _, c := range cases {
		v, err := it.Run(c.src)
		require.NoError(t, err, c.src)
		assert.Equal(t, c.want, v, c.src)
	}
}

func TestTruthinessAndUnary(t *testing.T) {
	it, _ := newHarness()

	v, err := it.Run(`!0;`)
	require.NoError(t, err)
	assert.Equal(t, runtime.VBool(true), v)

	v, err = it.Run(`-true;`)
	require.NoError(t, err)
	assert.Equal(t, runtime.VNum(-1), v)

	v, err = it.Run(`-"x";`)
	require.NoError(t, err)
	assert.Equal(t, runtime.VNaN{}, v)
}

func TestArityMismatchAndNotCallable(t *testing.T) {
	it, _ := newHarness()

	_, err := it.Run(`(fun ($x) { return $x; })(1, 2);`)
	assert.Error(t, err)

	_, err = it.Run(`var $n = 1; $n();`)
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	it, _ := newHarness()
	v, err := it.Run(`json.parse(json.stringify(42));`)
	require.NoError(t, err)
	assert.Equal(t, runtime.VNum(42), v)

	v, err = it.Run(`json.parse(json.stringify("hi"));`)
	require.NoError(t, err)
	assert.Equal(t, runtime.VStr("hi"), v)
}

func TestBenchmarkFib(t *testing.T) {
	it, _ := newHarness()
	v, err := it.Run(`Benchmark.fib(10);`)
	require.NoError(t, err)
	assert.Equal(t, runtime.VNum(55), v)
}

func TestIoPrint(t *testing.T) {
	var got []string
	it := interpreter.New(func(line string) { got = append(got, line) }, nil)
	_, err := it.Run(`io.print("hello", 1, true);`)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello 1 true"}, got)
}

func TestTimeClock(t *testing.T) {
	it, _ := newHarness()
	v, err := it.Run(`time.clock();`)
	require.NoError(t, err)
	_, ok := v.(runtime.VNum)
	assert.True(t, ok)
}
