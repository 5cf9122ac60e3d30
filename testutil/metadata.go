// Package testutil provides a hand-built runtime metadata fixture and
// a mock JSON-RPC server for offline tests.
package testutil

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// Type ids of the fixture registry. Tests reference these instead of
// magic numbers.
const (
	TypeU8 = iota
	TypeU32
	TypeU64
	TypeU128
	TypeBool
	TypeHash32      // [u8; 32]
	TypeAccountID   // composite wrapping [u8; 32]
	TypeAddress     // variant { Id(AccountID), Raw(Vec<u8>) }
	TypeCompactU128 // Compact<u128>
	TypeBalancesCall
	TypeAccountInfo
	TypeAccountData
	TypeBytes // Vec<u8>
	TypeMultisigKey
	TypeStr
	TypeSystemCall
	TypeU32Seq // Vec<u32>
	TypeChar
)

func id(n int) types.Si1LookupTypeID {
	return types.NewSi1LookupTypeIDFromUInt(uint64(n))
}

func prim(p types.Si0TypeDefPrimitive) types.Si1Type {
	return types.Si1Type{
		Def: types.Si1TypeDef{
			IsPrimitive: true,
			Primitive:   types.Si1TypeDefPrimitive{Si0TypeDefPrimitive: p},
		},
	}
}

func named(name string, typeID int) types.Si1Field {
	return types.Si1Field{
		HasName: true,
		Name:    types.Text(name),
		Type:    id(typeID),
	}
}

func unnamed(typeID int) types.Si1Field {
	return types.Si1Field{Type: id(typeID)}
}

// Metadata builds a small but structurally faithful v14 metadata blob:
// System, Timestamp, Balances and Multisig pallets over a small type
// registry.
func Metadata() *types.Metadata {
	lookup := []types.PortableTypeV14{
		{ID: id(TypeU8), Type: prim(types.IsU8)},
		{ID: id(TypeU32), Type: prim(types.IsU32)},
		{ID: id(TypeU64), Type: prim(types.IsU64)},
		{ID: id(TypeU128), Type: prim(types.IsU128)},
		{ID: id(TypeBool), Type: prim(types.IsBool)},
		{ID: id(TypeHash32), Type: types.Si1Type{
			Def: types.Si1TypeDef{
				IsArray: true,
				Array:   types.Si1TypeDefArray{Len: 32, Type: id(TypeU8)},
			},
		}},
		{ID: id(TypeAccountID), Type: types.Si1Type{
			Path: types.Si1Path{"sp_core", "crypto", "AccountId32"},
			Def: types.Si1TypeDef{
				IsComposite: true,
				Composite:   types.Si1TypeDefComposite{Fields: []types.Si1Field{unnamed(TypeHash32)}},
			},
		}},
		{ID: id(TypeAddress), Type: types.Si1Type{
			Path: types.Si1Path{"sp_runtime", "multiaddress", "MultiAddress"},
			Def: types.Si1TypeDef{
				IsVariant: true,
				Variant: types.Si1TypeDefVariant{Variants: []types.Si1Variant{
					{Name: "Id", Fields: []types.Si1Field{unnamed(TypeAccountID)}, Index: 0},
					{Name: "Raw", Fields: []types.Si1Field{unnamed(TypeBytes)}, Index: 2},
				}},
			},
		}},
		{ID: id(TypeCompactU128), Type: types.Si1Type{
			Def: types.Si1TypeDef{
				IsCompact: true,
				Compact:   types.Si1TypeDefCompact{Type: id(TypeU128)},
			},
		}},
		{ID: id(TypeBalancesCall), Type: types.Si1Type{
			Path: types.Si1Path{"pallet_balances", "pallet", "Call"},
			Def: types.Si1TypeDef{
				IsVariant: true,
				Variant: types.Si1TypeDefVariant{Variants: []types.Si1Variant{
					{
						Name: "transfer_allow_death",
						Fields: []types.Si1Field{
							named("dest", TypeAddress),
							named("value", TypeCompactU128),
						},
						Index: 0,
					},
					{
						Name: "transfer_keep_alive",
						Fields: []types.Si1Field{
							named("dest", TypeAddress),
							named("value", TypeCompactU128),
						},
						Index: 3,
					},
					{Name: "force_unreserve_all", Index: 5},
				}},
			},
		}},
		{ID: id(TypeAccountInfo), Type: types.Si1Type{
			Path: types.Si1Path{"frame_system", "AccountInfo"},
			Def: types.Si1TypeDef{
				IsComposite: true,
				Composite: types.Si1TypeDefComposite{Fields: []types.Si1Field{
					named("nonce", TypeU32),
					named("consumers", TypeU32),
					named("providers", TypeU32),
					named("sufficients", TypeU32),
					named("data", TypeAccountData),
				}},
			},
		}},
		{ID: id(TypeAccountData), Type: types.Si1Type{
			Path: types.Si1Path{"pallet_balances", "types", "AccountData"},
			Def: types.Si1TypeDef{
				IsComposite: true,
				Composite: types.Si1TypeDefComposite{Fields: []types.Si1Field{
					named("free", TypeU128),
					named("reserved", TypeU128),
					named("frozen", TypeU128),
					named("flags", TypeU128),
				}},
			},
		}},
		{ID: id(TypeBytes), Type: types.Si1Type{
			Def: types.Si1TypeDef{
				IsSequence: true,
				Sequence:   types.Si1TypeDefSequence{Type: id(TypeU8)},
			},
		}},
		{ID: id(TypeMultisigKey), Type: types.Si1Type{
			Def: types.Si1TypeDef{
				IsTuple: true,
				Tuple:   types.Si1TypeDefTuple{id(TypeAccountID), id(TypeHash32)},
			},
		}},
		{ID: id(TypeStr), Type: prim(types.IsStr)},
		{ID: id(TypeSystemCall), Type: types.Si1Type{
			Path: types.Si1Path{"frame_system", "pallet", "Call"},
			Def: types.Si1TypeDef{
				IsVariant: true,
				Variant: types.Si1TypeDefVariant{Variants: []types.Si1Variant{
					{Name: "remark", Fields: []types.Si1Field{named("remark", TypeBytes)}, Index: 0},
				}},
			},
		}},
		{ID: id(TypeU32Seq), Type: types.Si1Type{
			Def: types.Si1TypeDef{
				IsSequence: true,
				Sequence:   types.Si1TypeDefSequence{Type: id(TypeU32)},
			},
		}},
		{ID: id(TypeChar), Type: prim(types.IsChar)},
	}

	efficient := make(map[int64]*types.Si1Type, len(lookup))
	for i := range lookup {
		efficient[lookup[i].ID.Int64()] = &lookup[i].Type
	}

	blake2Concat := types.StorageHasherV10{IsBlake2_128Concat: true}
	twox64Concat := types.StorageHasherV10{IsTwox64Concat: true}
	defaultModifier := types.StorageFunctionModifierV0{IsDefault: true}

	pallets := []types.PalletMetadataV14{
		{
			Name:       "System",
			Index:      0,
			HasStorage: true,
			Storage: types.StorageMetadataV14{
				Prefix: "System",
				Items: []types.StorageEntryMetadataV14{
					{
						Name:     "Account",
						Modifier: defaultModifier,
						Type: types.StorageEntryTypeV14{
							IsMap: true,
							AsMap: types.MapTypeV14{
								Hashers: []types.StorageHasherV10{blake2Concat},
								Key:     id(TypeAccountID),
								Value:   id(TypeAccountInfo),
							},
						},
					},
					{
						Name:     "Number",
						Modifier: defaultModifier,
						Type: types.StorageEntryTypeV14{
							IsPlainType: true,
							AsPlainType: id(TypeU32),
						},
					},
				},
			},
			HasCalls: true,
			Calls:    types.FunctionMetadataV14{Type: id(TypeSystemCall)},
			Constants: []types.ConstantMetadataV14{
				{Name: "BlockHashCount", Type: id(TypeU32), Value: []byte{0x00, 0x10, 0x00, 0x00}},
			},
		},
		{
			Name:       "Timestamp",
			Index:      3,
			HasStorage: true,
			Storage: types.StorageMetadataV14{
				Prefix: "Timestamp",
				Items: []types.StorageEntryMetadataV14{
					{
						Name:     "Now",
						Modifier: defaultModifier,
						Type: types.StorageEntryTypeV14{
							IsPlainType: true,
							AsPlainType: id(TypeU64),
						},
					},
				},
			},
		},
		{
			Name:     "Balances",
			Index:    4,
			HasCalls: true,
			Calls:    types.FunctionMetadataV14{Type: id(TypeBalancesCall)},
			Constants: []types.ConstantMetadataV14{
				// 10_000_000_000 as a little-endian u128
				{Name: "ExistentialDeposit", Type: id(TypeU128), Value: []byte{
					0x00, 0xe4, 0x0b, 0x54, 0x02, 0x00, 0x00, 0x00,
					0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				}},
			},
		},
		{
			Name:       "Multisig",
			Index:      7,
			HasStorage: true,
			Storage: types.StorageMetadataV14{
				Prefix: "Multisig",
				Items: []types.StorageEntryMetadataV14{
					{
						Name:     "Multisigs",
						Modifier: defaultModifier,
						Type: types.StorageEntryTypeV14{
							IsMap: true,
							AsMap: types.MapTypeV14{
								Hashers: []types.StorageHasherV10{twox64Concat, blake2Concat},
								Key:     id(TypeMultisigKey),
								Value:   id(TypeU128),
							},
						},
					},
				},
			},
		},
	}

	return &types.Metadata{
		MagicNumber: types.MagicNumber,
		Version:     14,
		AsMetadataV14: types.MetadataV14{
			Lookup:          types.PortableRegistryV14{Types: lookup},
			Pallets:         pallets,
			Extrinsic:       types.ExtrinsicV14{Version: 4},
			EfficientLookup: efficient,
		},
	}
}
