package dynamic

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	rosetta "github.com/cordialsys/rosetta-substrate"
	"github.com/cordialsys/rosetta-substrate/registry"
)

// maxDepth bounds recursion while walking the type graph. Chain
// metadata is acyclic in practice, but the registry format permits
// cycles, so every walk carries a depth limit.
const maxDepth = 64

// Distribute pairs caller-supplied arguments with a call's declared
// fields positionally and normalizes each pair. The first failure
// aborts the whole distribution; no partial result is returned.
func Distribute(args []any, fields []types.Si1Field, reg *registry.Registry) ([]Value, error) {
	if len(args) != len(fields) {
		return nil, rosetta.ParamsLengthNotMatchf("expected %d params, got %d", len(fields), len(args))
	}
	out := make([]Value, 0, len(fields))
	for i, field := range fields {
		v, err := Normalize(args[i], field.Type.Int64(), reg)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// NormalizeKey normalizes the parameters of a storage-map lookup. A
// tuple key consumes the whole parameter list positionally; any other
// key shape consumes only the first parameter and ignores the rest.
// The single-parameter form is a deliberate narrowing: the storage
// lookups this targets are keyed by one column.
func NormalizeKey(params []any, id int64, reg *registry.Registry) ([]Value, error) {
	ty, err := reg.Resolve(id)
	if err != nil {
		return nil, err
	}
	if ty.Def.IsTuple {
		if len(params) != len(ty.Def.Tuple) {
			return nil, rosetta.ParamsLengthNotMatchf("storage key expects %d params, got %d", len(ty.Def.Tuple), len(params))
		}
		values := make([]Value, 0, len(params))
		for i, slot := range ty.Def.Tuple {
			v, err := normalize(params[i], slot.Int64(), reg, 0)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil
	}
	if len(params) == 0 {
		return nil, rosetta.InvalidParamsf("storage key parameter required")
	}
	v, err := Normalize(params[0], id, reg)
	if err != nil {
		return nil, err
	}
	return []Value{v}, nil
}

// Normalize converts an untyped JSON-like value into the typed
// intermediate form dictated by the type definition registered for id.
func Normalize(input any, id int64, reg *registry.Registry) (Value, error) {
	return normalize(input, id, reg, 0)
}

func normalize(input any, id int64, reg *registry.Registry, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, rosetta.InvalidMetadataf("type graph exceeds depth %d at type %d", maxDepth, id)
	}
	ty, err := reg.Resolve(id)
	if err != nil {
		return Value{}, err
	}
	def := ty.Def
	switch {
	case def.IsVariant:
		return normalizeVariant(input, def.Variant.Variants, reg, depth)
	case def.IsComposite:
		return normalizeComposite(input, def.Composite.Fields, reg, depth)
	case def.IsTuple:
		return normalizeTuple(input, def.Tuple, reg, depth)
	case def.IsSequence:
		return normalizeSequence(input, def.Sequence.Type.Int64(), reg, depth)
	case def.IsArray:
		return normalizeArray(input, def.Array, reg, depth)
	case def.IsPrimitive:
		return normalizePrimitive(input, def.Primitive)
	case def.IsCompact:
		return normalizeCompact(input)
	default:
		return Value{}, rosetta.InvalidParamsf("cannot normalize against type %d: unsupported shape", id)
	}
}

// normalizeVariant accepts {"Name": value} objects, ["Name", value]
// pairs, or a bare "Name" string for field-less alternatives.
func normalizeVariant(input any, variants []types.Si1Variant, reg *registry.Registry, depth int) (Value, error) {
	var name string
	var inner any
	switch in := input.(type) {
	case map[string]any:
		if len(in) != 1 {
			return Value{}, rosetta.InvalidParamsf("variant object must have exactly one key, got %d", len(in))
		}
		for k, v := range in {
			name, inner = k, v
		}
	case []any:
		if len(in) != 2 {
			return Value{}, rosetta.InvalidParamsf("variant pair must be [name, value], got %d elements", len(in))
		}
		s, ok := in[0].(string)
		if !ok {
			return Value{}, rosetta.InvalidParamsf("variant name must be a string")
		}
		name, inner = s, in[1]
	case string:
		name = in
	default:
		return Value{}, rosetta.InvalidParamsf("cannot select a variant from %T", input)
	}
	for _, v := range variants {
		if string(v.Name) != name {
			continue
		}
		fields, named, err := normalizeFields(inner, v.Fields, reg, depth+1)
		if err != nil {
			return Value{}, err
		}
		return NewVariant(name, fields, named), nil
	}
	return Value{}, rosetta.InvalidParamsf("unknown variant %q", name)
}

func normalizeComposite(input any, declared []types.Si1Field, reg *registry.Registry, depth int) (Value, error) {
	fields, named, err := normalizeFields(input, declared, reg, depth+1)
	if err != nil {
		return Value{}, err
	}
	return NewComposite(fields, named), nil
}

// normalizeFields recurses into the declared fields of a composite or
// variant alternative. A single declared field consumes the input
// directly; multiple fields consume an array positionally or, when all
// fields are named, an object by name.
func normalizeFields(input any, declared []types.Si1Field, reg *registry.Registry, depth int) ([]Field, bool, error) {
	named := false
	for _, f := range declared {
		if f.HasName {
			named = true
		}
	}
	switch len(declared) {
	case 0:
		return nil, false, nil
	case 1:
		if obj, ok := input.(map[string]any); ok && declared[0].HasName {
			if v, ok := obj[string(declared[0].Name)]; ok && len(obj) == 1 {
				input = v
			}
		}
		// A single-element array wrapping a single declared field is
		// unwrapped, mirroring the take-the-first-element treatment of
		// parameter containers. The array stays put only when it could
		// itself be a value of the field type.
		if arr, ok := input.([]any); ok && len(arr) == 1 && unwrapSingle(arr, declared[0].Type.Int64(), reg) {
			input = arr[0]
		}
		v, err := normalize(input, declared[0].Type.Int64(), reg, depth)
		if err != nil {
			return nil, false, err
		}
		return []Field{{Name: string(declared[0].Name), Value: v}}, named, nil
	}

	out := make([]Field, 0, len(declared))
	switch in := input.(type) {
	case map[string]any:
		if !named {
			return nil, false, rosetta.InvalidParamsf("expected an array for unnamed fields, got an object")
		}
		for _, f := range declared {
			elem, ok := in[string(f.Name)]
			if !ok {
				return nil, false, rosetta.InvalidParamsf("missing field %q", f.Name)
			}
			v, err := normalize(elem, f.Type.Int64(), reg, depth)
			if err != nil {
				return nil, false, err
			}
			out = append(out, Field{Name: string(f.Name), Value: v})
		}
	case []any:
		if len(in) != len(declared) {
			return nil, false, rosetta.InvalidParamsf("expected %d field values, got %d", len(declared), len(in))
		}
		for i, f := range declared {
			v, err := normalize(in[i], f.Type.Int64(), reg, depth)
			if err != nil {
				return nil, false, err
			}
			out = append(out, Field{Name: string(f.Name), Value: v})
		}
	default:
		return nil, false, rosetta.InvalidParamsf("expected %d field values, got %T", len(declared), input)
	}
	return out, named, nil
}

func normalizeTuple(input any, slots types.Si1TypeDefTuple, reg *registry.Registry, depth int) (Value, error) {
	arr, ok := asArray(input)
	if !ok {
		return Value{}, rosetta.InvalidParamsf("expected an array for a %d-tuple, got %T", len(slots), input)
	}
	if len(arr) != len(slots) {
		return Value{}, rosetta.InvalidParamsf("expected %d tuple elements, got %d", len(slots), len(arr))
	}
	fields := make([]Field, 0, len(slots))
	for i, slot := range slots {
		v, err := normalize(arr[i], slot.Int64(), reg, depth+1)
		if err != nil {
			return Value{}, err
		}
		fields = append(fields, Field{Value: v})
	}
	return NewComposite(fields, false), nil
}

func normalizeSequence(input any, elem int64, reg *registry.Registry, depth int) (Value, error) {
	if s, ok := input.(string); ok {
		if bz, ok := hexBytes(s); ok {
			return NewBytes(bz), nil
		}
	}
	arr, ok := asArray(input)
	if !ok {
		return Value{}, rosetta.InvalidParamsf("expected an array or 0x hex string for a sequence, got %T", input)
	}
	fields := make([]Field, 0, len(arr))
	for _, e := range arr {
		v, err := normalize(e, elem, reg, depth+1)
		if err != nil {
			return Value{}, err
		}
		fields = append(fields, Field{Value: v})
	}
	return NewComposite(fields, false), nil
}

func normalizeArray(input any, def types.Si1TypeDefArray, reg *registry.Registry, depth int) (Value, error) {
	length := int(def.Len)
	if s, ok := input.(string); ok {
		if bz, ok := hexBytes(s); ok {
			if len(bz) != length {
				return Value{}, rosetta.InvalidParamsf("expected %d bytes, got %d", length, len(bz))
			}
			return NewBytes(bz), nil
		}
	}
	arr, ok := asArray(input)
	if !ok {
		return Value{}, rosetta.InvalidParamsf("expected an array or 0x hex string for [T; %d], got %T", length, input)
	}
	if len(arr) != length {
		return Value{}, rosetta.InvalidParamsf("expected %d array elements, got %d", length, len(arr))
	}
	fields := make([]Field, 0, length)
	for _, e := range arr {
		v, err := normalize(e, def.Type.Int64(), reg, depth+1)
		if err != nil {
			return Value{}, err
		}
		fields = append(fields, Field{Value: v})
	}
	return NewComposite(fields, false), nil
}

func normalizePrimitive(input any, prim types.Si1TypeDefPrimitive) (Value, error) {
	switch prim.Si0TypeDefPrimitive {
	case types.IsBool:
		b, ok := input.(bool)
		if !ok {
			return Value{}, rosetta.InvalidParamsf("expected a bool, got %T", input)
		}
		return NewBool(b), nil
	case types.IsStr:
		s, ok := input.(string)
		if !ok {
			return Value{}, rosetta.InvalidParamsf("expected a string, got %T", input)
		}
		return NewString(s), nil
	case types.IsChar:
		s, ok := input.(string)
		if !ok || len(s) == 0 {
			return Value{}, rosetta.InvalidParamsf("expected a one-character string, got %T", input)
		}
		runes := []rune(s)
		if len(runes) != 1 {
			return Value{}, rosetta.InvalidParamsf("expected a one-character string, got %d characters", len(runes))
		}
		return NewString(s), nil
	case types.IsI8, types.IsI16, types.IsI32, types.IsI64, types.IsI128, types.IsI256:
		n, err := toBigInt(input)
		if err != nil {
			return Value{}, err
		}
		return NewInt(n), nil
	default:
		// unsigned widths
		n, err := toBigInt(input)
		if err != nil {
			return Value{}, err
		}
		if n.Sign() < 0 {
			return Value{}, rosetta.InvalidParamsf("expected an unsigned integer, got %s", n)
		}
		return NewUint(n), nil
	}
}

func normalizeCompact(input any) (Value, error) {
	n, err := toBigInt(input)
	if err != nil {
		return Value{}, err
	}
	if n.Sign() < 0 {
		return Value{}, rosetta.InvalidParamsf("compact integers cannot be negative, got %s", n)
	}
	return NewUint(n), nil
}

// unwrapSingle reports whether a one-element array around a lone
// declared field should be unwrapped. The array is kept only when it
// could itself be a valid value of the field type: a 1-tuple, an array
// of length one, or a sequence whose elements could include the lone
// element. A string element over byte containers is unambiguous,
// since a u8 is never a string.
func unwrapSingle(arr []any, id int64, reg *registry.Registry) bool {
	ty, err := reg.Resolve(id)
	if err != nil {
		return false
	}
	def := ty.Def
	_, isString := arr[0].(string)
	switch {
	case def.IsTuple:
		return len(def.Tuple) != 1
	case def.IsArray:
		return def.Array.Len != 1 || (isString && isByteElem(def.Array.Type.Int64(), reg))
	case def.IsSequence:
		return isString && isByteElem(def.Sequence.Type.Int64(), reg)
	default:
		return true
	}
}

// toBigInt parses integers out of the forms a JSON params array can
// carry them in: json.Number, a decimal string (needed for values that
// exceed float64 precision), or a Go integer from programmatic callers.
func toBigInt(input any) (*big.Int, error) {
	switch in := input.(type) {
	case json.Number:
		n, ok := new(big.Int).SetString(in.String(), 10)
		if !ok {
			return nil, rosetta.InvalidParamsf("expected an integer, got %q", in.String())
		}
		return n, nil
	case string:
		n, ok := new(big.Int).SetString(in, 10)
		if !ok {
			return nil, rosetta.InvalidParamsf("expected an integer, got %q", in)
		}
		return n, nil
	case float64:
		n, acc := big.NewFloat(in).Int(nil)
		if acc != big.Exact {
			return nil, rosetta.InvalidParamsf("expected an integer, got %v", in)
		}
		return n, nil
	case int:
		return big.NewInt(int64(in)), nil
	case int64:
		return big.NewInt(in), nil
	case uint64:
		return new(big.Int).SetUint64(in), nil
	case *big.Int:
		return in, nil
	default:
		return nil, rosetta.InvalidParamsf("expected an integer, got %T", input)
	}
}

// hexBytes decodes 0x-prefixed strings to raw bytes.
func hexBytes(s string) ([]byte, bool) {
	if !strings.HasPrefix(s, "0x") {
		return nil, false
	}
	bz, err := codec.HexDecodeString(s)
	if err != nil {
		return nil, false
	}
	return bz, true
}

// asArray returns the elements of a JSON array, accepting both the
// decoded form and its string encoding.
func asArray(input any) ([]any, bool) {
	switch in := input.(type) {
	case []any:
		return in, true
	case string:
		if !strings.HasPrefix(strings.TrimSpace(in), "[") {
			return nil, false
		}
		dec := json.NewDecoder(strings.NewReader(in))
		dec.UseNumber()
		var arr []any
		if err := dec.Decode(&arr); err != nil {
			return nil, false
		}
		return arr, true
	default:
		return nil, false
	}
}
