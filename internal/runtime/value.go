// Package runtime holds the tree-walking interpreter's runtime value
// representation (RV) and the chained, closure-sharing environment model
// it evaluates against.
//
// What: a closed set of concrete Value types (VStr, VNum, VBool,
// VUndefined, VNull, VNaN, VArray, VObject, VCallable) plus Frame, the
// shared-mutable environment cell closures capture.
// How: Value is a marker interface over small concrete structs, mirroring
// the teacher repo's preference for named sum-type members
// (internal/engine/parser.go's Expr/Statement) over a single `any`-typed
// value. Frame wraps a map behind a pointer so every reference to the
// same frame observes the same mutations — Go's map-behind-a-pointer is
// already the "reference-counted shared cell" the spec's design notes
// call for, no extra wrapper needed.
// Why: NaN and Undefined must stay distinct from Num(NaN) and Null per
// the data model invariant the coercion tables depend on, which rules out
// collapsing everything onto `any`/`interface{}` plus Go's native NaN.
package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lykiadb/lykiadb/internal/ast"
	"github.com/lykiadb/lykiadb/internal/resolver"
)

// Value is the runtime value every expression evaluates to.
type Value interface {
	isValue()
}

// VStr is an immutable string value.
type VStr string

func (VStr) isValue() {}

// VNum is a 64-bit float value.
type VNum float64

func (VNum) isValue() {}

// VBool is a boolean value.
type VBool bool

func (VBool) isValue() {}

// VUndefined is the distinguished "no value" result (e.g. a function
// falling through without a return). Distinct from VNull and from
// VNum(NaN).
type VUndefined struct{}

func (VUndefined) isValue() {}

// VNull is the SQL/JSON-flavored null value.
type VNull struct{}

func (VNull) isValue() {}

// VNaN is the distinguished not-a-number value, kept apart from
// VNum(math.NaN()) so `(Num, _, Bool)` coercion and equality rules can
// special-case it by type rather than by inspecting a float.
type VNaN struct{}

func (VNaN) isValue() {}

// VArray is an ordered sequence of values.
type VArray struct {
	Items []Value
}

func (*VArray) isValue() {}

// KV is one key/value pair of an ordered VObject.
type KV struct {
	Key   string
	Value Value
}

// VObject is an ordered string-keyed mapping, preserving insertion order
// (a plain Go map cannot: the data model requires this be ordered).
type VObject struct {
	Fields []KV
}

func (*VObject) isValue() {}

// Get returns the value bound to key and whether it was present.
func (o *VObject) Get(key string) (Value, bool) {
	for _, f := range o.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Set inserts or overwrites key, preserving first-insertion order on
// overwrite.
func (o *VObject) Set(key string, v Value) {
	for i, f := range o.Fields {
		if f.Key == key {
			o.Fields[i].Value = v
			return
		}
	}
	o.Fields = append(o.Fields, KV{Key: key, Value: v})
}

// CallableKind distinguishes how a VCallable is invoked.
type CallableKind int

const (
	// CallableNative wraps a Go function implementing a stdlib built-in.
	CallableNative CallableKind = iota
	// CallableUser wraps a user-defined `fun` closure.
	CallableUser
	// CallableStateful wraps a sink-writing test built-in
	// (`test_utils.out`): every invocation appends to a shared buffer.
	CallableStateful
)

// VCallable is any invocable value: a stdlib built-in, a user closure, or
// a stateful test sink.
type VCallable struct {
	// Arity is nil for a variadic callable, else the exact required
	// argument count.
	Arity *int
	Kind  CallableKind
	Name  string

	// Native backs CallableNative: a Go function implementing a stdlib
	// built-in.
	Native NativeFunc

	// User backs CallableUser: the closure's captured frame plus the
	// function literal's own arena and resolver table, so the closure
	// stays evaluable after the script that defined it has finished
	// parsing (arenas are per-parse; a closure may outlive its arena's
	// request and be invoked again from a later one).
	User *UserFunction

	// Sink backs CallableStateful: every invocation appends its argument
	// list to Sink under Sink's own mutex.
	Sink *Sink
}

func (*VCallable) isValue() {}

// NativeFunc is a stdlib built-in's Go implementation. It receives the
// already-evaluated argument list and the calling interpreter cast to
// `any` (the interpreter package depends on runtime, not vice versa, so
// this package cannot name its type). The stdlib's implementations ignore
// it; io.print is a method value already bound to its interpreter.
type NativeFunc func(interp any, args []Value) (Value, error)

// UserFunction is everything a closure needs to be called again later,
// independent of whichever request is currently parsing: the statement
// ids live in Arena, variable reads/writes inside Body resolve through
// Resolved, and Closure is the environment frame visible at the
// function's *definition* site (not its call site — this is what makes
// closure capture work across shadowing, per spec.md §8's example).
type UserFunction struct {
	Params   []string
	Body     []ast.StmtId
	Arena    *ast.Arena
	Resolved *resolver.Table
	Closure  *Frame
	SelfName string
}

// Truthy implements the spec's truthiness table: Num is truthy unless
// NaN or zero-magnitude, Str is truthy unless empty, Bool passes
// through, Null/Undefined/NaN are always false, everything else
// (arrays, objects, callables) is true.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case VNum:
		f := float64(t)
		return !math.IsNaN(f) && math.Abs(f) > 0
	case VStr:
		return len(t) > 0
	case VBool:
		return bool(t)
	case VNull, VUndefined, VNaN:
		return false
	default:
		return true
	}
}

// CanonicalString renders v the way the "String + Num" / "Num + String"
// coercion rules and io.print need: the plain textual form of a value,
// with no surrounding quotes for strings.
func CanonicalString(v Value) string {
	switch t := v.(type) {
	case VStr:
		return string(t)
	case VNum:
		return formatNum(float64(t))
	case VBool:
		return strconv.FormatBool(bool(t))
	case VNull:
		return "null"
	case VUndefined:
		return "undefined"
	case VNaN:
		return "NaN"
	case *VArray:
		parts := make([]string, len(t.Items))
		for i, item := range t.Items {
			parts[i] = CanonicalString(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *VObject:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.Key + ": " + CanonicalString(f.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *VCallable:
		return fmt.Sprintf("<function %s>", t.Name)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatNum(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// TypeName reports the RV variant name ("Str", "Num", ... "Callable").
func TypeName(v Value) string {
	switch v.(type) {
	case VStr:
		return "Str"
	case VNum:
		return "Num"
	case VBool:
		return "Bool"
	case VUndefined:
		return "Undefined"
	case VNull:
		return "Null"
	case VNaN:
		return "NaN"
	case *VArray:
		return "Array"
	case *VObject:
		return "Object"
	case *VCallable:
		return "Callable"
	default:
		return "Unknown"
	}
}
