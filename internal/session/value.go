package session

import "github.com/lykiadb/lykiadb/internal/runtime"

// ValueJSON is the wire rendering of an RV, per SPEC_FULL.md §6: Null,
// Undefined and NaN are tagged rather than collapsed onto JSON `null`,
// because the data model requires them to stay distinct; Object carries
// an explicit ordered slice of key/value pairs rather than a JSON object
// built from a Go map, since Go map iteration order is not the insertion
// order the data model requires.
type ValueJSON struct {
	Type  string       `json:"type"`
	Str   *string      `json:"str,omitempty"`
	Num   *float64     `json:"num,omitempty"`
	Bool  *bool        `json:"bool,omitempty"`
	Items []*ValueJSON `json:"items,omitempty"`
	Props []PropJSON   `json:"props,omitempty"`
	Arity *int         `json:"arity,omitempty"`
	Name  string       `json:"name,omitempty"`
}

// PropJSON is one ordered key/value entry of an Object's wire form.
type PropJSON struct {
	Key   string     `json:"key"`
	Value *ValueJSON `json:"value"`
}

func toValueJSON(v runtime.Value) *ValueJSON {
	switch t := v.(type) {
	case runtime.VStr:
		s := string(t)
		return &ValueJSON{Type: "Str", Str: &s}
	case runtime.VNum:
		n := float64(t)
		return &ValueJSON{Type: "Num", Num: &n}
	case runtime.VBool:
		b := bool(t)
		return &ValueJSON{Type: "Bool", Bool: &b}
	case runtime.VNull:
		return &ValueJSON{Type: "Null"}
	case runtime.VUndefined:
		return &ValueJSON{Type: "Undefined"}
	case runtime.VNaN:
		return &ValueJSON{Type: "NaN"}
	case *runtime.VArray:
		items := make([]*ValueJSON, len(t.Items))
		for i, item := range t.Items {
			items[i] = toValueJSON(item)
		}
		return &ValueJSON{Type: "Array", Items: items}
	case *runtime.VObject:
		props := make([]PropJSON, len(t.Fields))
		for i, f := range t.Fields {
			props[i] = PropJSON{Key: f.Key, Value: toValueJSON(f.Value)}
		}
		return &ValueJSON{Type: "Object", Props: props}
	case *runtime.VCallable:
		vj := &ValueJSON{Type: "Callable", Name: t.Name}
		if t.Arity != nil {
			arity := *t.Arity
			vj.Arity = &arity
		}
		return vj
	default:
		return &ValueJSON{Type: "Undefined"}
	}
}
