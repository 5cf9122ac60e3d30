package registry_test

import (
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	rosetta "github.com/cordialsys/rosetta-substrate"
	"github.com/cordialsys/rosetta-substrate/registry"
	"github.com/cordialsys/rosetta-substrate/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonV14(t *testing.T) {
	require := require.New(t)

	_, err := registry.New(nil)
	require.Equal(rosetta.InvalidMetadata, rosetta.KindOf(err))

	_, err = registry.New(&types.Metadata{Version: 13})
	require.Equal(rosetta.InvalidMetadata, rosetta.KindOf(err))
}

func TestResolve(t *testing.T) {
	require := require.New(t)
	reg, err := registry.New(testutil.Metadata())
	require.NoError(err)

	ty, err := reg.Resolve(testutil.TypeU128)
	require.NoError(err)
	require.True(ty.Def.IsPrimitive)
	require.Equal(types.Si0TypeDefPrimitive(types.IsU128), ty.Def.Primitive.Si0TypeDefPrimitive)

	// ids outside the registry fail instead of panicking
	_, err = reg.Resolve(9999)
	require.Equal(rosetta.InvalidParams, rosetta.KindOf(err))
}

func TestCallFields(t *testing.T) {
	require := require.New(t)
	reg, _ := registry.New(testutil.Metadata())

	fields, err := reg.CallFields("Balances", "transfer_allow_death")
	require.NoError(err)
	require.Len(fields, 2)
	require.Equal("dest", string(fields[0].Name))
	require.Equal("value", string(fields[1].Name))

	fields, err = reg.CallFields("Balances", "force_unreserve_all")
	require.NoError(err)
	require.Len(fields, 0)

	_, err = reg.CallFields("Lottery", "buy_ticket")
	require.Equal(rosetta.InvalidPalletName, rosetta.KindOf(err))

	_, err = reg.CallFields("Balances", "mint")
	require.Equal(rosetta.InvalidCallName, rosetta.KindOf(err))

	_, err = reg.CallFields("Timestamp", "set")
	require.Equal(rosetta.InvalidMetadata, rosetta.KindOf(err))
}

func TestCallIndex(t *testing.T) {
	require := require.New(t)
	reg, _ := registry.New(testutil.Metadata())

	idx, err := reg.CallIndex("Balances", "transfer_allow_death")
	require.NoError(err)
	require.Equal(types.CallIndex{SectionIndex: 4, MethodIndex: 0}, idx)

	idx, err = reg.CallIndex("Balances", "transfer_keep_alive")
	require.NoError(err)
	require.Equal(types.CallIndex{SectionIndex: 4, MethodIndex: 3}, idx)
}

func TestStorageEntry(t *testing.T) {
	require := require.New(t)
	reg, _ := registry.New(testutil.Metadata())

	se, err := reg.StorageEntry("System", "Account")
	require.NoError(err)
	require.Equal("System", se.Prefix)
	require.True(se.HasKey)
	require.EqualValues(testutil.TypeAccountID, se.KeyType)
	require.EqualValues(testutil.TypeAccountInfo, se.ValueType)

	se, err = reg.StorageEntry("System", "Number")
	require.NoError(err)
	require.False(se.HasKey)
	require.EqualValues(testutil.TypeU32, se.ValueType)

	_, err = reg.StorageEntry("System", "Digest")
	require.Equal(rosetta.InvalidStorageName, rosetta.KindOf(err))

	_, err = reg.StorageEntry("Balances", "Account")
	require.Equal(rosetta.InvalidMetadata, rosetta.KindOf(err))
}

func TestKeySlots(t *testing.T) {
	require := require.New(t)
	reg, _ := registry.New(testutil.Metadata())

	se, _ := reg.StorageEntry("Multisig", "Multisigs")
	slots, err := reg.KeySlots(se)
	require.NoError(err)
	require.Equal([]int64{testutil.TypeAccountID, testutil.TypeHash32}, slots)

	se, _ = reg.StorageEntry("System", "Account")
	slots, err = reg.KeySlots(se)
	require.NoError(err)
	require.Equal([]int64{testutil.TypeAccountID}, slots)

	se, _ = reg.StorageEntry("System", "Number")
	slots, err = reg.KeySlots(se)
	require.NoError(err)
	require.Nil(slots)
}

func TestConstant(t *testing.T) {
	require := require.New(t)
	reg, _ := registry.New(testutil.Metadata())

	typeID, raw, err := reg.Constant("System", "BlockHashCount")
	require.NoError(err)
	require.EqualValues(testutil.TypeU32, typeID)
	require.Equal([]byte{0x00, 0x10, 0x00, 0x00}, raw)

	_, _, err = reg.Constant("System", "Version")
	require.Equal(rosetta.InvalidParams, rosetta.KindOf(err))
}
