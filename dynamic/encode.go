package dynamic

import (
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	rosetta "github.com/cordialsys/rosetta-substrate"
	"github.com/cordialsys/rosetta-substrate/registry"
)

// Encode writes the SCALE encoding of a normalized value, driven by
// the type definition registered for id.
func Encode(v Value, id int64, reg *registry.Registry, enc *scale.Encoder) error {
	return encode(v, id, reg, enc, 0)
}

func encode(v Value, id int64, reg *registry.Registry, enc *scale.Encoder, depth int) error {
	if depth > maxDepth {
		return rosetta.InvalidMetadataf("type graph exceeds depth %d at type %d", maxDepth, id)
	}
	ty, err := reg.Resolve(id)
	if err != nil {
		return err
	}
	def := ty.Def
	switch {
	case def.IsPrimitive:
		return encodePrimitive(v, def.Primitive, enc)
	case def.IsCompact:
		if v.Kind != KindUint {
			return rosetta.InvalidParamsf("compact field expects an unsigned integer, got %s", v.Kind)
		}
		return enc.EncodeUintCompact(*v.Number)
	case def.IsComposite:
		return encodeFields(v, def.Composite.Fields, reg, enc, depth)
	case def.IsVariant:
		return encodeVariant(v, def.Variant.Variants, reg, enc, depth)
	case def.IsTuple:
		return encodeTuple(v, def.Tuple, reg, enc, depth)
	case def.IsSequence:
		return encodeSequence(v, def.Sequence.Type.Int64(), reg, enc, depth)
	case def.IsArray:
		return encodeArray(v, def.Array, reg, enc, depth)
	default:
		return rosetta.InvalidParamsf("cannot encode against type %d: unsupported shape", id)
	}
}

// encodeFields encodes composite members positionally in declared
// order. A lone declared field is transparent to a bare value, so that
// one-level wrappers (AccountId32 and friends) encode as the inner
// value they carry.
func encodeFields(v Value, declared []types.Si1Field, reg *registry.Registry, enc *scale.Encoder, depth int) error {
	if len(declared) == 1 && v.Kind != KindComposite {
		return encode(v, declared[0].Type.Int64(), reg, enc, depth+1)
	}
	if v.Kind != KindComposite {
		return rosetta.InvalidParamsf("expected a composite of %d fields, got %s", len(declared), v.Kind)
	}
	if len(v.Fields) != len(declared) {
		return rosetta.InvalidParamsf("expected %d composite fields, got %d", len(declared), len(v.Fields))
	}
	for i, f := range declared {
		if err := encode(v.Fields[i].Value, f.Type.Int64(), reg, enc, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func encodeVariant(v Value, variants []types.Si1Variant, reg *registry.Registry, enc *scale.Encoder, depth int) error {
	if v.Kind != KindVariant {
		return rosetta.InvalidParamsf("expected a variant, got %s", v.Kind)
	}
	for _, alt := range variants {
		if string(alt.Name) != v.Name {
			continue
		}
		if err := enc.PushByte(byte(alt.Index)); err != nil {
			return err
		}
		inner := NewComposite(v.Fields, v.Named)
		return encodeFields(inner, alt.Fields, reg, enc, depth+1)
	}
	return rosetta.InvalidParamsf("unknown variant %q", v.Name)
}

func encodeTuple(v Value, slots types.Si1TypeDefTuple, reg *registry.Registry, enc *scale.Encoder, depth int) error {
	if len(slots) == 1 && v.Kind != KindComposite {
		return encode(v, slots[0].Int64(), reg, enc, depth+1)
	}
	if v.Kind != KindComposite || len(v.Fields) != len(slots) {
		return rosetta.InvalidParamsf("expected a %d-tuple, got %s", len(slots), v.Kind)
	}
	for i, slot := range slots {
		if err := encode(v.Fields[i].Value, slot.Int64(), reg, enc, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func encodeSequence(v Value, elem int64, reg *registry.Registry, enc *scale.Encoder, depth int) error {
	if v.Kind == KindBytes {
		if !isByteElem(elem, reg) {
			return rosetta.InvalidParamsf("raw bytes supplied for a sequence of non-u8 elements")
		}
		if err := enc.EncodeUintCompact(*big.NewInt(int64(len(v.Bytes)))); err != nil {
			return err
		}
		return enc.Write(v.Bytes)
	}
	if v.Kind != KindComposite {
		return rosetta.InvalidParamsf("expected a sequence, got %s", v.Kind)
	}
	if err := enc.EncodeUintCompact(*big.NewInt(int64(len(v.Fields)))); err != nil {
		return err
	}
	for _, f := range v.Fields {
		if err := encode(f.Value, elem, reg, enc, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func encodeArray(v Value, def types.Si1TypeDefArray, reg *registry.Registry, enc *scale.Encoder, depth int) error {
	length := int(def.Len)
	if v.Kind == KindBytes {
		if !isByteElem(def.Type.Int64(), reg) {
			return rosetta.InvalidParamsf("raw bytes supplied for an array of non-u8 elements")
		}
		if len(v.Bytes) != length {
			return rosetta.InvalidParamsf("expected %d bytes, got %d", length, len(v.Bytes))
		}
		return enc.Write(v.Bytes)
	}
	if v.Kind != KindComposite || len(v.Fields) != length {
		return rosetta.InvalidParamsf("expected %d array elements", length)
	}
	for _, f := range v.Fields {
		if err := encode(f.Value, def.Type.Int64(), reg, enc, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func encodePrimitive(v Value, prim types.Si1TypeDefPrimitive, enc *scale.Encoder) error {
	switch prim.Si0TypeDefPrimitive {
	case types.IsBool:
		if v.Kind != KindBool {
			return rosetta.InvalidParamsf("expected a bool, got %s", v.Kind)
		}
		return enc.Encode(v.Bool)
	case types.IsStr:
		if v.Kind != KindString {
			return rosetta.InvalidParamsf("expected a string, got %s", v.Kind)
		}
		return enc.Encode(v.Str)
	case types.IsChar:
		if v.Kind == KindString {
			runes := []rune(v.Str)
			if len(runes) != 1 {
				return rosetta.InvalidParamsf("expected a one-character string, got %d characters", len(runes))
			}
			return enc.Encode(uint32(runes[0]))
		}
		n, err := unsignedBits(v, 32)
		if err != nil {
			return err
		}
		return enc.Encode(uint32(n.Uint64()))
	case types.IsU8:
		n, err := unsignedBits(v, 8)
		if err != nil {
			return err
		}
		return enc.Encode(uint8(n.Uint64()))
	case types.IsU16:
		n, err := unsignedBits(v, 16)
		if err != nil {
			return err
		}
		return enc.Encode(uint16(n.Uint64()))
	case types.IsU32:
		n, err := unsignedBits(v, 32)
		if err != nil {
			return err
		}
		return enc.Encode(uint32(n.Uint64()))
	case types.IsU64:
		n, err := unsignedBits(v, 64)
		if err != nil {
			return err
		}
		return enc.Encode(n.Uint64())
	case types.IsU128:
		n, err := unsignedBits(v, 128)
		if err != nil {
			return err
		}
		return enc.Encode(types.NewU128(*n))
	case types.IsU256:
		n, err := unsignedBits(v, 256)
		if err != nil {
			return err
		}
		return enc.Encode(types.NewU256(*n))
	case types.IsI8:
		n, err := signedBits(v, 8)
		if err != nil {
			return err
		}
		return enc.Encode(int8(n.Int64()))
	case types.IsI16:
		n, err := signedBits(v, 16)
		if err != nil {
			return err
		}
		return enc.Encode(int16(n.Int64()))
	case types.IsI32:
		n, err := signedBits(v, 32)
		if err != nil {
			return err
		}
		return enc.Encode(int32(n.Int64()))
	case types.IsI64:
		n, err := signedBits(v, 64)
		if err != nil {
			return err
		}
		return enc.Encode(n.Int64())
	case types.IsI128:
		n, err := signedBits(v, 128)
		if err != nil {
			return err
		}
		return enc.Encode(types.NewI128(*n))
	case types.IsI256:
		n, err := signedBits(v, 256)
		if err != nil {
			return err
		}
		return enc.Encode(types.NewI256(*n))
	default:
		return rosetta.InvalidParamsf("unsupported primitive kind")
	}
}

func unsignedBits(v Value, bits int) (*big.Int, error) {
	if v.Kind != KindUint && v.Kind != KindInt {
		return nil, rosetta.InvalidParamsf("expected an unsigned integer, got %s", v.Kind)
	}
	if v.Number.Sign() < 0 || v.Number.BitLen() > bits {
		return nil, rosetta.InvalidParamsf("%s does not fit in u%d", v.Number, bits)
	}
	return v.Number, nil
}

func signedBits(v Value, bits int) (*big.Int, error) {
	if v.Kind != KindUint && v.Kind != KindInt {
		return nil, rosetta.InvalidParamsf("expected an integer, got %s", v.Kind)
	}
	// a two's complement value of n bits spans [-2^(n-1), 2^(n-1)-1]
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	upper := new(big.Int).Sub(limit, big.NewInt(1))
	lower := new(big.Int).Neg(limit)
	if v.Number.Cmp(lower) < 0 || v.Number.Cmp(upper) > 0 {
		return nil, rosetta.InvalidParamsf("%s does not fit in i%d", v.Number, bits)
	}
	return v.Number, nil
}

func isByteElem(id int64, reg *registry.Registry) bool {
	ty, err := reg.Resolve(id)
	if err != nil {
		return false
	}
	return ty.Def.IsPrimitive && ty.Def.Primitive.Si0TypeDefPrimitive == types.IsU8
}
