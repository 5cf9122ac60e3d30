// Package registry resolves numeric type ids, call schemas and storage
// entries against substrate runtime metadata. It holds a read-only view
// of the metadata owned by the connection and never mutates it.
package registry

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	rosetta "github.com/cordialsys/rosetta-substrate"
)

type Registry struct {
	meta *types.Metadata
}

// New wraps runtime metadata. Only metadata v14 carries the portable
// type registry this package walks; older versions are rejected.
func New(meta *types.Metadata) (*Registry, error) {
	if meta == nil || meta.Version != 14 {
		return nil, rosetta.InvalidMetadataf("metadata v14 with a portable type registry is required")
	}
	return &Registry{meta: meta}, nil
}

func (r *Registry) Meta() *types.Metadata {
	return r.meta
}

// Resolve returns the structural definition registered for a type id.
func (r *Registry) Resolve(id int64) (*types.Si1Type, error) {
	ty, ok := r.meta.AsMetadataV14.EfficientLookup[id]
	if !ok {
		return nil, rosetta.InvalidParamsf("type %d is not registered in the metadata", id)
	}
	return ty, nil
}

func (r *Registry) pallet(name string) (*types.PalletMetadataV14, error) {
	for i := range r.meta.AsMetadataV14.Pallets {
		p := &r.meta.AsMetadataV14.Pallets[i]
		if string(p.Name) == name {
			return p, nil
		}
	}
	return nil, rosetta.InvalidPalletNamef("no pallet %q in metadata", name)
}

// CallFields returns the declared parameter fields of a call, in
// declared order. A call type that is not a variant resolves to zero
// parameters rather than erroring; zero-argument calls rely on this.
func (r *Registry) CallFields(pallet, call string) ([]types.Si1Field, error) {
	p, err := r.pallet(pallet)
	if err != nil {
		return nil, err
	}
	if !p.HasCalls {
		return nil, rosetta.InvalidMetadataf("pallet %q has no call type registered", pallet)
	}
	ty, err := r.Resolve(p.Calls.Type.Int64())
	if err != nil {
		return nil, err
	}
	if !ty.Def.IsVariant {
		return nil, nil
	}
	for _, v := range ty.Def.Variant.Variants {
		if string(v.Name) == call {
			return v.Fields, nil
		}
	}
	return nil, rosetta.InvalidCallNamef("no call %q in pallet %q", call, pallet)
}

// CallIndex returns the pallet and call-variant indices used as the
// two-byte prefix of an encoded call.
func (r *Registry) CallIndex(pallet, call string) (types.CallIndex, error) {
	p, err := r.pallet(pallet)
	if err != nil {
		return types.CallIndex{}, err
	}
	if !p.HasCalls {
		return types.CallIndex{}, rosetta.InvalidMetadataf("pallet %q has no call type registered", pallet)
	}
	ty, err := r.Resolve(p.Calls.Type.Int64())
	if err != nil {
		return types.CallIndex{}, err
	}
	if !ty.Def.IsVariant {
		return types.CallIndex{SectionIndex: uint8(p.Index)}, nil
	}
	for _, v := range ty.Def.Variant.Variants {
		if string(v.Name) == call {
			return types.CallIndex{
				SectionIndex: uint8(p.Index),
				MethodIndex:  uint8(v.Index),
			}, nil
		}
	}
	return types.CallIndex{}, rosetta.InvalidCallNamef("no call %q in pallet %q", call, pallet)
}

// StorageEntry describes a pallet storage entry: the key type for map
// entries and the type the stored value decodes against.
type StorageEntry struct {
	// Prefix is the storage prefix, usually but not always the pallet name.
	Prefix string
	Name   string
	HasKey bool
	// KeyType is the type id of the whole key; a tuple for multi-key maps.
	KeyType   int64
	ValueType int64
}

func (r *Registry) StorageEntry(pallet, entry string) (StorageEntry, error) {
	p, err := r.pallet(pallet)
	if err != nil {
		return StorageEntry{}, err
	}
	if !p.HasStorage {
		return StorageEntry{}, rosetta.InvalidMetadataf("pallet %q has no storage registered", pallet)
	}
	for _, item := range p.Storage.Items {
		if string(item.Name) != entry {
			continue
		}
		se := StorageEntry{
			Prefix: string(p.Storage.Prefix),
			Name:   entry,
		}
		switch {
		case item.Type.IsPlainType:
			se.ValueType = item.Type.AsPlainType.Int64()
		case item.Type.IsMap:
			se.HasKey = true
			se.KeyType = item.Type.AsMap.Key.Int64()
			se.ValueType = item.Type.AsMap.Value.Int64()
		default:
			return StorageEntry{}, rosetta.InvalidMetadataf("storage entry %s.%s has an unsupported shape", pallet, entry)
		}
		return se, nil
	}
	return StorageEntry{}, rosetta.InvalidStorageNamef("no storage entry %q in pallet %q", entry, pallet)
}

// KeySlots returns the per-slot type ids for a map storage key: each
// tuple slot for tuple keys, otherwise the key type itself.
func (r *Registry) KeySlots(se StorageEntry) ([]int64, error) {
	if !se.HasKey {
		return nil, nil
	}
	ty, err := r.Resolve(se.KeyType)
	if err != nil {
		return nil, err
	}
	if ty.Def.IsTuple {
		slots := make([]int64, 0, len(ty.Def.Tuple))
		for _, slot := range ty.Def.Tuple {
			slots = append(slots, slot.Int64())
		}
		return slots, nil
	}
	return []int64{se.KeyType}, nil
}

// Constant returns the type id and raw SCALE bytes of a pallet constant.
func (r *Registry) Constant(pallet, name string) (int64, []byte, error) {
	p, err := r.pallet(pallet)
	if err != nil {
		return 0, nil, err
	}
	for _, c := range p.Constants {
		if string(c.Name) == name {
			return c.Type.Int64(), c.Value, nil
		}
	}
	return 0, nil, rosetta.InvalidParamsf("no constant %q in pallet %q", name, pallet)
}
