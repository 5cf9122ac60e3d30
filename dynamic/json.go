package dynamic

import (
	"encoding/json"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	rosetta "github.com/cordialsys/rosetta-substrate"
)

// ToJSON flattens a decoded value into the JSON-shaped form returned
// to callers: integers that fit 64 bits stay numbers, wider ones are
// stringified to avoid precision loss; bytes become 0x hex strings;
// all-named composites become objects, anything else an array; a
// variant becomes a single-key object, or a bare name string when the
// selected alternative carries no fields.
func ToJSON(v Value) (any, error) {
	switch v.Kind {
	case KindBool:
		return v.Bool, nil
	case KindUint:
		if v.Number == nil {
			return nil, rosetta.InvalidValueConversionf("unsigned value with no number")
		}
		if v.Number.IsUint64() {
			return json.Number(v.Number.String()), nil
		}
		return v.Number.String(), nil
	case KindInt:
		if v.Number == nil {
			return nil, rosetta.InvalidValueConversionf("signed value with no number")
		}
		if v.Number.IsInt64() {
			return json.Number(v.Number.String()), nil
		}
		return v.Number.String(), nil
	case KindString:
		return v.Str, nil
	case KindBytes:
		return codec.HexEncodeToString(v.Bytes), nil
	case KindComposite:
		if v.Named {
			obj := make(map[string]any, len(v.Fields))
			for _, f := range v.Fields {
				j, err := ToJSON(f.Value)
				if err != nil {
					return nil, err
				}
				obj[f.Name] = j
			}
			return obj, nil
		}
		arr := make([]any, 0, len(v.Fields))
		for _, f := range v.Fields {
			j, err := ToJSON(f.Value)
			if err != nil {
				return nil, err
			}
			arr = append(arr, j)
		}
		return arr, nil
	case KindVariant:
		if len(v.Fields) == 0 {
			return v.Name, nil
		}
		inner, err := ToJSON(NewComposite(v.Fields, v.Named))
		if err != nil {
			return nil, err
		}
		return map[string]any{v.Name: inner}, nil
	default:
		return nil, rosetta.InvalidValueConversionf("unsupported value kind %d", v.Kind)
	}
}
