// Package shape describes the structural type recovered from an
// hwscript value expression and infers it from a token stream.
package shape

import (
	"strconv"
	"strings"
)

type Kind int

const (
	KindAny Kind = iota
	KindString
	KindNumber
	KindBoolean
	KindFunction
	KindObject
	KindArray
	KindNull
	KindUndefined
	KindUnknown
)

var kindNames = map[Kind]string{
	KindAny:       "any",
	KindString:    "string",
	KindNumber:    "number",
	KindBoolean:   "boolean",
	KindFunction:  "function",
	KindObject:    "object",
	KindArray:     "array",
	KindNull:      "null",
	KindUndefined: "undefined",
	KindUnknown:   "unknown",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Literal is the closed set of shapes. The unexported method keeps
// implementations inside this package.
type Literal interface {
	Kind() Kind
	String() string
	literal()
}

// String is a string value. Length is the declared maximum length for
// catalogue variables, zero when unspecified.
type String struct {
	Length int
}

type Number struct{}

type Boolean struct{}

type Any struct{}

type Null struct{}

type Undefined struct{}

// Unknown carries a vendor type label that has no structural mapping.
type Unknown struct {
	Raw string
}

type Param struct {
	Name string
	Type Literal
}

type Function struct {
	Params []Param
}

type Array struct {
	Elements []Literal
}

// Object is an ordered property map. Use NewObject to construct one.
type Object struct {
	keys  []string
	props map[string]Literal
}

func NewObject() *Object {
	return &Object{props: make(map[string]Literal)}
}

func (String) Kind() Kind    { return KindString }
func (Number) Kind() Kind    { return KindNumber }
func (Boolean) Kind() Kind   { return KindBoolean }
func (Any) Kind() Kind       { return KindAny }
func (Null) Kind() Kind      { return KindNull }
func (Undefined) Kind() Kind { return KindUndefined }
func (Unknown) Kind() Kind   { return KindUnknown }
func (Function) Kind() Kind  { return KindFunction }
func (Array) Kind() Kind     { return KindArray }
func (*Object) Kind() Kind   { return KindObject }

func (String) literal()    {}
func (Number) literal()    {}
func (Boolean) literal()   {}
func (Any) literal()       {}
func (Null) literal()      {}
func (Undefined) literal() {}
func (Unknown) literal()   {}
func (Function) literal()  {}
func (Array) literal()     {}
func (*Object) literal()   {}

func (String) String() string    { return "string" }
func (Number) String() string    { return "number" }
func (Boolean) String() string   { return "boolean" }
func (Any) String() string       { return "any" }
func (Null) String() string      { return "null" }
func (Undefined) String() string { return "undefined" }

func (u Unknown) String() string {
	if u.Raw == "" {
		return "unknown"
	}
	return u.Raw
}

func (f Function) String() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return "function(" + strings.Join(names, ", ") + ")"
}

func (a Array) String() string {
	if len(a.Elements) == 0 {
		return "[]"
	}
	first := a.Elements[0].String()
	for _, el := range a.Elements[1:] {
		if el.String() != first {
			return "any[]"
		}
	}
	return first + "[]"
}

func (o *Object) String() string {
	if o.Len() == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{ ")
	for i, k := range o.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(o.props[k].String())
	}
	b.WriteString(" }")
	return b.String()
}

// Set adds or replaces a property, keeping first-insertion order.
func (o *Object) Set(name string, value Literal) {
	if value == nil {
		value = Any{}
	}
	if _, ok := o.props[name]; !ok {
		o.keys = append(o.keys, name)
	}
	o.props[name] = value
}

func (o *Object) Get(name string) (Literal, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.props[name]
	return v, ok
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns property names in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

type Property struct {
	Name  string
	Value Literal
}

// Properties returns name/value pairs in insertion order.
func (o *Object) Properties() []Property {
	if o == nil {
		return nil
	}
	out := make([]Property, len(o.keys))
	for i, k := range o.keys {
		out[i] = Property{Name: k, Value: o.props[k]}
	}
	return out
}

// Member walks a dotted path through nested Objects. Numeric segments
// index into Arrays.
func Member(l Literal, path []string) (Literal, bool) {
	cur := l
	for _, name := range path {
		switch v := cur.(type) {
		case *Object:
			next, ok := v.Get(name)
			if !ok {
				return nil, false
			}
			cur = next
		case Array:
			i, err := strconv.Atoi(name)
			if err != nil || i < 0 || i >= len(v.Elements) {
				return nil, false
			}
			cur = v.Elements[i]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

// SetPath assigns value at a dotted path below o, creating intermediate
// Objects. It reports false when an intermediate segment exists but is
// not an Object, or when the leaf already exists.
func SetPath(o *Object, path []string, value Literal) bool {
	if o == nil || len(path) == 0 {
		return false
	}
	cur := o
	for _, name := range path[:len(path)-1] {
		next, ok := cur.Get(name)
		if !ok {
			child := NewObject()
			cur.Set(name, child)
			cur = child
			continue
		}
		obj, isObj := next.(*Object)
		if !isObj {
			return false
		}
		cur = obj
	}
	leaf := path[len(path)-1]
	if _, exists := cur.Get(leaf); exists {
		return false
	}
	cur.Set(leaf, value)
	return true
}

// IsVague reports whether l carries no structural information.
func IsVague(l Literal) bool {
	if l == nil {
		return true
	}
	switch l.(type) {
	case Any, Undefined, Null:
		return true
	}
	return false
}
