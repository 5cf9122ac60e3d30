// Package payload assembles the final encoded request descriptors: the
// two-byte-indexed call data handed to extrinsic construction and the
// hashed storage keys handed to state queries. No validation happens
// here beyond what resolution and normalization already performed.
package payload

import (
	"bytes"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	rosetta "github.com/cordialsys/rosetta-substrate"
	"github.com/cordialsys/rosetta-substrate/dynamic"
	"github.com/cordialsys/rosetta-substrate/registry"
)

// BuildCall encodes pallet/call indices followed by the positionally
// encoded arguments. The result is the call data of an unsigned
// extrinsic body.
func BuildCall(reg *registry.Registry, pallet, call string, values []dynamic.Value) ([]byte, error) {
	callIndex, err := reg.CallIndex(pallet, call)
	if err != nil {
		return nil, err
	}
	fields, err := reg.CallFields(pallet, call)
	if err != nil {
		return nil, err
	}
	if len(values) != len(fields) {
		return nil, rosetta.CouldNotCreateCallDataf(
			"%s.%s declares %d fields, got %d values", pallet, call, len(fields), len(values))
	}

	var buf bytes.Buffer
	enc := scale.NewEncoder(&buf)
	if err := enc.PushByte(callIndex.SectionIndex); err != nil {
		return nil, rosetta.CouldNotCreateCallDataf("%v", err)
	}
	if err := enc.PushByte(callIndex.MethodIndex); err != nil {
		return nil, rosetta.CouldNotCreateCallDataf("%v", err)
	}
	for i, field := range fields {
		if err := dynamic.Encode(values[i], field.Type.Int64(), reg, enc); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// BuildStorageKey encodes each key value and hands off to the
// library's storage-key builder, which applies the entry's declared
// hashers. Single-field composite wrappers are unwrapped one level
// first: storage map keys are encoded as bare values, not as
// single-field structs.
func BuildStorageKey(reg *registry.Registry, pallet, entry string, values []dynamic.Value) (types.StorageKey, error) {
	se, err := reg.StorageEntry(pallet, entry)
	if err != nil {
		return nil, err
	}
	slots, err := reg.KeySlots(se)
	if err != nil {
		return nil, err
	}
	if len(values) != len(slots) {
		return nil, rosetta.ParamsLengthNotMatchf(
			"storage entry %s.%s is keyed by %d values, got %d", pallet, entry, len(slots), len(values))
	}

	args := make([][]byte, 0, len(values))
	for i, v := range values {
		var buf bytes.Buffer
		enc := scale.NewEncoder(&buf)
		if err := dynamic.Encode(unwrapComposite(v), slots[i], reg, enc); err != nil {
			return nil, err
		}
		args = append(args, buf.Bytes())
	}
	key, err := types.CreateStorageKey(reg.Meta(), se.Prefix, se.Name, args...)
	if err != nil {
		return nil, rosetta.CouldNotCreateCallDataf("storage key %s.%s: %v", pallet, entry, err)
	}
	return key, nil
}

func unwrapComposite(v dynamic.Value) dynamic.Value {
	if v.Kind == dynamic.KindComposite && len(v.Fields) == 1 {
		return v.Fields[0].Value
	}
	return v
}
