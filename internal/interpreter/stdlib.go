package interpreter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lykiadb/lykiadb/internal/errs"
	"github.com/lykiadb/lykiadb/internal/runtime"
)

// registerStdlib installs the namespaces original_source's
// lykiadb-server/src/engine/stdlib/mod.rs registers into its global
// frame: Benchmark, json, time, io, and — only when a Sink was supplied
// — test_utils. Each namespace is a VObject of VCallable entries with
// the arities mod.rs gives them.
func (it *Interpreter) registerStdlib() {
	arity := func(n int) *int { return &n }

	benchmark := &runtime.VObject{}
	benchmark.Set("fib", &runtime.VCallable{Arity: arity(1), Kind: runtime.CallableNative, Name: "Benchmark.fib", Native: nativeFib})
	it.global.DeclareGlobal("Benchmark", benchmark)

	jsonNS := &runtime.VObject{}
	jsonNS.Set("stringify", &runtime.VCallable{Arity: arity(1), Kind: runtime.CallableNative, Name: "json.stringify", Native: nativeJSONStringify})
	jsonNS.Set("parse", &runtime.VCallable{Arity: arity(1), Kind: runtime.CallableNative, Name: "json.parse", Native: nativeJSONParse})
	it.global.DeclareGlobal("json", jsonNS)

	timeNS := &runtime.VObject{}
	timeNS.Set("clock", &runtime.VCallable{Arity: arity(0), Kind: runtime.CallableNative, Name: "time.clock", Native: nativeClock})
	it.global.DeclareGlobal("time", timeNS)

	ioNS := &runtime.VObject{}
	ioNS.Set("print", &runtime.VCallable{Kind: runtime.CallableNative, Name: "io.print", Native: it.nativePrint})
	it.global.DeclareGlobal("io", ioNS)

	if it.sink != nil {
		testUtils := &runtime.VObject{}
		testUtils.Set("out", &runtime.VCallable{Kind: runtime.CallableStateful, Name: "test_utils.out", Sink: it.sink})
		it.global.DeclareGlobal("test_utils", testUtils)
	}
}

// nativeFib is Benchmark.fib(n): a naive recursive Fibonacci used as a
// CPU-bound workload for exercising the interpreter's call overhead.
// original_source's own fib.rs body was not present in the retrieved
// source tree to port literally, so this is a direct, idiomatic Go
// rendering of the same naive-recursive benchmark its name and (1)
// arity imply.
func nativeFib(_ any, args []runtime.Value) (runtime.Value, error) {
	n, ok := args[0].(runtime.VNum)
	if !ok {
		return nil, errs.NewOther("Benchmark.fib: expected a number argument")
	}
	var fib func(float64) float64
	fib = func(x float64) float64 {
		if x < 2 {
			return x
		}
		return fib(x-1) + fib(x-2)
	}
	return runtime.VNum(fib(float64(n))), nil
}

func nativeJSONStringify(_ any, args []runtime.Value) (runtime.Value, error) {
	out, err := json.Marshal(toJSONAny(args[0]))
	if err != nil {
		return nil, errs.NewOther(fmt.Sprintf("json.stringify: %v", err))
	}
	return runtime.VStr(out), nil
}

func nativeJSONParse(_ any, args []runtime.Value) (runtime.Value, error) {
	s, ok := args[0].(runtime.VStr)
	if !ok {
		return nil, errs.NewOther("json.parse: expected a string argument")
	}
	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return nil, errs.NewOther(fmt.Sprintf("json.parse: %v", err))
	}
	return fromJSONAny(decoded), nil
}

func nativeClock(_ any, _ []runtime.Value) (runtime.Value, error) {
	return runtime.VNum(float64(time.Now().UnixNano()) / 1e9), nil
}

// nativePrint is io.print(...): variadic, joins the canonical string
// form of every argument with a space and writes one line through the
// interpreter's out function; with a nil out the line is discarded.
func (it *Interpreter) nativePrint(_ any, args []runtime.Value) (runtime.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = runtime.CanonicalString(a)
	}
	if it.out != nil {
		it.out(strings.Join(parts, " "))
	}
	return runtime.VUndefined{}, nil
}

// toJSONAny renders a runtime.Value as the plain Go value
// encoding/json's Marshal expects, used by json.stringify.
func toJSONAny(v runtime.Value) any {
	switch t := v.(type) {
	case runtime.VStr:
		return string(t)
	case runtime.VNum:
		return float64(t)
	case runtime.VBool:
		return bool(t)
	case runtime.VNull, runtime.VUndefined, runtime.VNaN:
		return nil
	case *runtime.VArray:
		out := make([]any, len(t.Items))
		for i, item := range t.Items {
			out[i] = toJSONAny(item)
		}
		return out
	case *runtime.VObject:
		out := make(map[string]any, len(t.Fields))
		for _, f := range t.Fields {
			out[f.Key] = toJSONAny(f.Value)
		}
		return out
	case *runtime.VCallable:
		return nil
	default:
		return nil
	}
}

// fromJSONAny is toJSONAny's inverse, used by json.parse. Object key
// order follows encoding/json's decode order into map[string]any, which
// Go does not guarantee — acceptable here since the spec's ordering
// invariant governs values built by the language itself, not values
// round-tripped through an external JSON decoder.
func fromJSONAny(v any) runtime.Value {
	switch t := v.(type) {
	case nil:
		return runtime.VNull{}
	case string:
		return runtime.VStr(t)
	case float64:
		return runtime.VNum(t)
	case bool:
		return runtime.VBool(t)
	case []any:
		items := make([]runtime.Value, len(t))
		for i, item := range t {
			items[i] = fromJSONAny(item)
		}
		return &runtime.VArray{Items: items}
	case map[string]any:
		obj := &runtime.VObject{}
		for k, val := range t {
			obj.Set(k, fromJSONAny(val))
		}
		return obj
	default:
		return runtime.VUndefined{}
	}
}
