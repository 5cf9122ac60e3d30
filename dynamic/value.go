// Package dynamic converts between untyped JSON-like values and SCALE
// encodings, driven entirely by the runtime's portable type registry.
// Nothing here knows any chain's concrete types.
package dynamic

import "math/big"

// Kind tags a Value.
type Kind uint8

const (
	KindBool Kind = iota
	KindUint
	KindInt
	KindString
	KindBytes
	KindComposite
	KindVariant
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindComposite:
		return "composite"
	case KindVariant:
		return "variant"
	}
	return "unknown"
}

// Value is the normalized intermediate form shared by the encode and
// decode directions. Numbers are held as big integers; their width and
// signedness are applied at encode time from the type definition.
// Values are produced fresh per request and never persisted.
type Value struct {
	Kind   Kind
	Bool   bool
	Number *big.Int
	Str    string
	Bytes  []byte
	// Name is the selected alternative for variants.
	Name string
	// Fields are the ordered members of composites and variants.
	Fields []Field
	// Named reports whether Fields carry declared names.
	Named bool
}

// Field is an ordered, optionally named member of a composite value.
type Field struct {
	Name  string
	Value Value
}

func NewBool(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

func NewUint(n *big.Int) Value {
	return Value{Kind: KindUint, Number: n}
}

func NewUint64(u uint64) Value {
	return Value{Kind: KindUint, Number: new(big.Int).SetUint64(u)}
}

func NewInt(n *big.Int) Value {
	return Value{Kind: KindInt, Number: n}
}

func NewInt64(i int64) Value {
	return Value{Kind: KindInt, Number: big.NewInt(i)}
}

func NewString(s string) Value {
	return Value{Kind: KindString, Str: s}
}

func NewBytes(bz []byte) Value {
	return Value{Kind: KindBytes, Bytes: bz}
}

func NewComposite(fields []Field, named bool) Value {
	return Value{Kind: KindComposite, Fields: fields, Named: named}
}

func NewVariant(name string, fields []Field, named bool) Value {
	return Value{Kind: KindVariant, Name: name, Fields: fields, Named: named}
}

// Unit is the empty composite, the normalized form of JSON null.
func Unit() Value {
	return Value{Kind: KindComposite}
}
