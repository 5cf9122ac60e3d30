package dynamic

import (
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	rosetta "github.com/cordialsys/rosetta-substrate"
	"github.com/cordialsys/rosetta-substrate/registry"
)

// Decode reads the SCALE encoding of the type registered for id and
// returns its normalized form.
func Decode(dec *scale.Decoder, id int64, reg *registry.Registry) (Value, error) {
	return decode(dec, id, reg, 0)
}

func decode(dec *scale.Decoder, id int64, reg *registry.Registry, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, rosetta.InvalidMetadataf("type graph exceeds depth %d at type %d", maxDepth, id)
	}
	ty, err := reg.Resolve(id)
	if err != nil {
		return Value{}, err
	}
	def := ty.Def
	switch {
	case def.IsPrimitive:
		return decodePrimitive(dec, def.Primitive)
	case def.IsCompact:
		n, err := dec.DecodeUintCompact()
		if err != nil {
			return Value{}, rosetta.InvalidValueConversionf("compact: %v", err)
		}
		return NewUint(n), nil
	case def.IsComposite:
		fields, named, err := decodeFields(dec, def.Composite.Fields, reg, depth)
		if err != nil {
			return Value{}, err
		}
		return NewComposite(fields, named), nil
	case def.IsVariant:
		return decodeVariant(dec, def.Variant.Variants, reg, depth)
	case def.IsTuple:
		fields := make([]Field, 0, len(def.Tuple))
		for _, slot := range def.Tuple {
			v, err := decode(dec, slot.Int64(), reg, depth+1)
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, Field{Value: v})
		}
		return NewComposite(fields, false), nil
	case def.IsSequence:
		n, err := dec.DecodeUintCompact()
		if err != nil {
			return Value{}, rosetta.InvalidValueConversionf("sequence length: %v", err)
		}
		return decodeElems(dec, def.Sequence.Type.Int64(), int(n.Int64()), reg, depth)
	case def.IsArray:
		return decodeElems(dec, def.Array.Type.Int64(), int(def.Array.Len), reg, depth)
	case def.IsBitSequence:
		return decodeBitSequence(dec)
	default:
		return Value{}, rosetta.InvalidValueConversionf("cannot decode type %d: unsupported shape", id)
	}
}

func decodeFields(dec *scale.Decoder, declared []types.Si1Field, reg *registry.Registry, depth int) ([]Field, bool, error) {
	named := false
	for _, f := range declared {
		if f.HasName {
			named = true
		}
	}
	fields := make([]Field, 0, len(declared))
	for _, f := range declared {
		v, err := decode(dec, f.Type.Int64(), reg, depth+1)
		if err != nil {
			return nil, false, err
		}
		fields = append(fields, Field{Name: string(f.Name), Value: v})
	}
	return fields, named, nil
}

func decodeVariant(dec *scale.Decoder, variants []types.Si1Variant, reg *registry.Registry, depth int) (Value, error) {
	b, err := dec.ReadOneByte()
	if err != nil {
		return Value{}, rosetta.InvalidValueConversionf("variant index: %v", err)
	}
	for _, alt := range variants {
		if uint8(alt.Index) != b {
			continue
		}
		fields, named, err := decodeFields(dec, alt.Fields, reg, depth)
		if err != nil {
			return Value{}, err
		}
		return NewVariant(string(alt.Name), fields, named), nil
	}
	return Value{}, rosetta.InvalidValueConversionf("no variant with index %d", b)
}

// decodeElems reads n elements, collapsing u8 element types to raw bytes.
func decodeElems(dec *scale.Decoder, elem int64, n int, reg *registry.Registry, depth int) (Value, error) {
	if n < 0 {
		return Value{}, rosetta.InvalidValueConversionf("negative element count %d", n)
	}
	if isByteElem(elem, reg) {
		// a zero-length Read reports EOF, so an empty Vec<u8> must not
		// touch the decoder
		if n == 0 {
			return NewBytes(nil), nil
		}
		buf := make([]byte, n)
		if err := dec.Read(buf); err != nil {
			return Value{}, rosetta.InvalidValueConversionf("reading %d bytes: %v", n, err)
		}
		return NewBytes(buf), nil
	}
	fields := make([]Field, 0, n)
	for i := 0; i < n; i++ {
		v, err := decode(dec, elem, reg, depth+1)
		if err != nil {
			return Value{}, err
		}
		fields = append(fields, Field{Value: v})
	}
	return NewComposite(fields, false), nil
}

// decodeBitSequence assumes the common u8/Lsb0 bit vec layout: a
// compact bit count followed by the packed bytes.
func decodeBitSequence(dec *scale.Decoder) (Value, error) {
	bits, err := dec.DecodeUintCompact()
	if err != nil {
		return Value{}, rosetta.InvalidValueConversionf("bit count: %v", err)
	}
	n := int(bits.Int64())
	if n == 0 {
		return NewComposite(nil, false), nil
	}
	buf := make([]byte, (n+7)/8)
	if err := dec.Read(buf); err != nil {
		return Value{}, rosetta.InvalidValueConversionf("bit payload: %v", err)
	}
	fields := make([]Field, 0, n)
	for i := 0; i < n; i++ {
		set := buf[i/8]&(1<<(i%8)) != 0
		fields = append(fields, Field{Value: NewBool(set)})
	}
	return NewComposite(fields, false), nil
}

func decodePrimitive(dec *scale.Decoder, prim types.Si1TypeDefPrimitive) (Value, error) {
	fail := func(what string, err error) (Value, error) {
		return Value{}, rosetta.InvalidValueConversionf("%s: %v", what, err)
	}
	switch prim.Si0TypeDefPrimitive {
	case types.IsBool:
		var b bool
		if err := dec.Decode(&b); err != nil {
			return fail("bool", err)
		}
		return NewBool(b), nil
	case types.IsStr:
		var s string
		if err := dec.Decode(&s); err != nil {
			return fail("string", err)
		}
		return NewString(s), nil
	case types.IsChar:
		var c uint32
		if err := dec.Decode(&c); err != nil {
			return fail("char", err)
		}
		return NewString(string(rune(c))), nil
	case types.IsU8:
		var x uint8
		if err := dec.Decode(&x); err != nil {
			return fail("u8", err)
		}
		return NewUint64(uint64(x)), nil
	case types.IsU16:
		var x uint16
		if err := dec.Decode(&x); err != nil {
			return fail("u16", err)
		}
		return NewUint64(uint64(x)), nil
	case types.IsU32:
		var x uint32
		if err := dec.Decode(&x); err != nil {
			return fail("u32", err)
		}
		return NewUint64(uint64(x)), nil
	case types.IsU64:
		var x uint64
		if err := dec.Decode(&x); err != nil {
			return fail("u64", err)
		}
		return NewUint64(x), nil
	case types.IsU128:
		var x types.U128
		if err := dec.Decode(&x); err != nil {
			return fail("u128", err)
		}
		return NewUint(new(big.Int).Set(x.Int)), nil
	case types.IsU256:
		var x types.U256
		if err := dec.Decode(&x); err != nil {
			return fail("u256", err)
		}
		return NewUint(new(big.Int).Set(x.Int)), nil
	case types.IsI8:
		var x int8
		if err := dec.Decode(&x); err != nil {
			return fail("i8", err)
		}
		return NewInt64(int64(x)), nil
	case types.IsI16:
		var x int16
		if err := dec.Decode(&x); err != nil {
			return fail("i16", err)
		}
		return NewInt64(int64(x)), nil
	case types.IsI32:
		var x int32
		if err := dec.Decode(&x); err != nil {
			return fail("i32", err)
		}
		return NewInt64(int64(x)), nil
	case types.IsI64:
		var x int64
		if err := dec.Decode(&x); err != nil {
			return fail("i64", err)
		}
		return NewInt64(x), nil
	case types.IsI128:
		var x types.I128
		if err := dec.Decode(&x); err != nil {
			return fail("i128", err)
		}
		return NewInt(new(big.Int).Set(x.Int)), nil
	case types.IsI256:
		var x types.I256
		if err := dec.Decode(&x); err != nil {
			return fail("i256", err)
		}
		return NewInt(new(big.Int).Set(x.Int)), nil
	default:
		return Value{}, rosetta.InvalidValueConversionf("unsupported primitive kind")
	}
}
