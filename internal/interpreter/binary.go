package interpreter

import (
	"github.com/lykiadb/lykiadb/internal/ast"
	"github.com/lykiadb/lykiadb/internal/resolver"
	"github.com/lykiadb/lykiadb/internal/runtime"
)

// evalBinary evaluates both operands then dispatches through the
// coercion table. Grounded byte-for-byte on
// original_source/src/lang/execution/interpreter.rs's eval_binary: every
// match arm there has a literal counterpart below, in the same order,
// falling through to the same three defaults (false for an unmatched
// comparison, NaN for unmatched arithmetic, Undefined otherwise).
func (it *Interpreter) evalBinary(frame *runtime.Frame, e *ast.Binary, arena *ast.Arena, resolved *resolver.Table) (runtime.Value, error) {
	left, err := it.eval(frame, e.Left, arena, resolved)
	if err != nil {
		return nil, err
	}
	right, err := it.eval(frame, e.Right, arena, resolved)
	if err != nil {
		return nil, err
	}
	return evalBinaryValues(left, e.Op.Lexeme, right), nil
}

// coerceOperands applies the two numeric/boolean promotion rules that
// run before dispatch: Num paired with Bool always promotes the Bool to
// Num (any operator); Bool paired with Bool promotes both to Num, but
// only for the four arithmetic operators (+, -, *, /) — their relational
// forms compare as booleans directly, per the table below.
func coerceOperands(left runtime.Value, op string, right runtime.Value) (runtime.Value, runtime.Value) {
	switch l := left.(type) {
	case runtime.VNum:
		if r, ok := right.(runtime.VBool); ok {
			return l, boolToNum(r)
		}
	case runtime.VBool:
		if r, ok := right.(runtime.VNum); ok {
			return boolToNum(l), r
		}
		if r, ok := right.(runtime.VBool); ok {
			switch op {
			case "+", "-", "*", "/":
				return boolToNum(l), boolToNum(r)
			}
		}
	}
	return left, right
}

func boolToNum(b runtime.VBool) runtime.VNum {
	if b {
		return 1
	}
	return 0
}

func isArith(op string) bool {
	switch op {
	case "+", "-", "*", "/":
		return true
	}
	return false
}

func isComparison(op string) bool {
	switch op {
	case "<", "<=", ">", ">=", "==", "!=":
		return true
	}
	return false
}

func evalBinaryValues(left runtime.Value, op string, right runtime.Value) runtime.Value {
	left, right = coerceOperands(left, op, right)

	if _, lNull := left.(runtime.VNull); lNull {
		if _, rNull := right.(runtime.VNull); rNull {
			switch op {
			case "==":
				return runtime.VBool(true)
			case "!=":
				return runtime.VBool(false)
			}
		}
	}

	if isArith(op) {
		if _, lNaN := left.(runtime.VNaN); lNaN {
			return runtime.VNaN{}
		}
		if _, rNaN := right.(runtime.VNaN); rNaN {
			return runtime.VNaN{}
		}
	}

	switch l := left.(type) {
	case runtime.VNum:
		if r, ok := right.(runtime.VNum); ok {
			switch op {
			case "+":
				return runtime.VNum(l + r)
			case "-":
				return runtime.VNum(l - r)
			case "*":
				return runtime.VNum(l * r)
			case "/":
				return runtime.VNum(l / r)
			case "<":
				return runtime.VBool(l < r)
			case "<=":
				return runtime.VBool(l <= r)
			case ">":
				return runtime.VBool(l > r)
			case ">=":
				return runtime.VBool(l >= r)
			case "!=":
				return runtime.VBool(l != r)
			case "==":
				return runtime.VBool(l == r)
			}
		}
		if r, ok := right.(runtime.VStr); ok && op == "+" {
			return runtime.VStr(runtime.CanonicalString(l) + string(r))
		}

	case runtime.VStr:
		switch r := right.(type) {
		case runtime.VStr:
			switch op {
			case "+":
				return runtime.VStr(string(l) + string(r))
			case "<":
				return runtime.VBool(l < r)
			case "<=":
				return runtime.VBool(l <= r)
			case ">":
				return runtime.VBool(l > r)
			case ">=":
				return runtime.VBool(l >= r)
			case "!=":
				return runtime.VBool(l != r)
			case "==":
				return runtime.VBool(l == r)
			}
		case runtime.VNum:
			if op == "+" {
				return runtime.VStr(string(l) + runtime.CanonicalString(r))
			}
		case runtime.VBool:
			if op == "+" {
				return runtime.VStr(string(l) + runtime.CanonicalString(r))
			}
		}

	case runtime.VBool:
		if r, ok := right.(runtime.VBool); ok {
			switch op {
			case "<":
				return runtime.VBool(!bool(l) && bool(r))
			case "<=":
				return runtime.VBool(!bool(l) || bool(r))
			case ">":
				return runtime.VBool(bool(l) && !bool(r))
			case ">=":
				return runtime.VBool(bool(l) || !bool(r))
			case "!=":
				return runtime.VBool(l != r)
			case "==":
				return runtime.VBool(l == r)
			}
		}
		if r, ok := right.(runtime.VStr); ok && op == "+" {
			return runtime.VStr(runtime.CanonicalString(l) + string(r))
		}
	}

	switch {
	case isComparison(op):
		return runtime.VBool(false)
	case isArith(op):
		return runtime.VNaN{}
	default:
		return runtime.VUndefined{}
	}
}
