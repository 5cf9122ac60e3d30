package dynamic_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	rosetta "github.com/cordialsys/rosetta-substrate"
	"github.com/cordialsys/rosetta-substrate/dynamic"
	"github.com/cordialsys/rosetta-substrate/registry"
	"github.com/cordialsys/rosetta-substrate/testutil"
	"github.com/stretchr/testify/require"
)

const zeroAccountHex = "0x0000000000000000000000000000000000000000000000000000000000000000"

func newRegistry(t *testing.T) *registry.Registry {
	reg, err := registry.New(testutil.Metadata())
	require.NoError(t, err)
	return reg
}

// jsonParams mimics how request parameters arrive: decoded with
// UseNumber so large amounts keep full precision.
func jsonParams(t *testing.T, raw string) []any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var out []any
	require.NoError(t, dec.Decode(&out))
	return out
}

func TestDistributeTransfer(t *testing.T) {
	require := require.New(t)
	reg := newRegistry(t)

	fields, err := reg.CallFields("Balances", "transfer_allow_death")
	require.NoError(err)

	params := jsonParams(t, `[{"Id": ["`+zeroAccountHex+`"]}, "1000000000000"]`)
	values, err := dynamic.Distribute(params, fields, reg)
	require.NoError(err)
	require.Len(values, 2)

	require.Equal(dynamic.KindVariant, values[0].Kind)
	require.Equal("Id", values[0].Name)
	require.Equal(dynamic.KindUint, values[1].Kind)
	require.Equal("1000000000000", values[1].Number.String())
}

func TestDistributeArityMismatch(t *testing.T) {
	require := require.New(t)
	reg := newRegistry(t)

	fields, err := reg.CallFields("Balances", "transfer_allow_death")
	require.NoError(err)

	params := jsonParams(t, `["1000000000000"]`)
	_, err = dynamic.Distribute(params, fields, reg)
	require.Equal(rosetta.ParamsLengthNotMatch, rosetta.KindOf(err))

	// no-argument calls distribute an empty list without error
	fields, err = reg.CallFields("Balances", "force_unreserve_all")
	require.NoError(err)
	values, err := dynamic.Distribute(nil, fields, reg)
	require.NoError(err)
	require.Len(values, 0)
}

func TestNormalizeVariantForms(t *testing.T) {
	require := require.New(t)
	reg := newRegistry(t)

	// object form
	v, err := dynamic.Normalize(map[string]any{"Id": zeroAccountHex}, testutil.TypeAddress, reg)
	require.NoError(err)
	require.Equal("Id", v.Name)

	// [name, value] pair form
	v, err = dynamic.Normalize([]any{"Id", zeroAccountHex}, testutil.TypeAddress, reg)
	require.NoError(err)
	require.Equal("Id", v.Name)

	// bare name for field-less alternatives
	v, err = dynamic.Normalize("force_unreserve_all", testutil.TypeBalancesCall, reg)
	require.NoError(err)
	require.Equal(dynamic.KindVariant, v.Kind)
	require.Len(v.Fields, 0)

	_, err = dynamic.Normalize(map[string]any{"Bogus": 1}, testutil.TypeAddress, reg)
	require.Equal(rosetta.InvalidParams, rosetta.KindOf(err))

	_, err = dynamic.Normalize(42, testutil.TypeAddress, reg)
	require.Equal(rosetta.InvalidParams, rosetta.KindOf(err))
}

func TestNormalizeKeySingle(t *testing.T) {
	require := require.New(t)
	reg := newRegistry(t)

	// extra params beyond the first are ignored for non-tuple keys
	values, err := dynamic.NormalizeKey([]any{zeroAccountHex, "ignored"}, testutil.TypeAccountID, reg)
	require.NoError(err)
	require.Len(values, 1)

	_, err = dynamic.NormalizeKey(nil, testutil.TypeAccountID, reg)
	require.Equal(rosetta.InvalidParams, rosetta.KindOf(err))
}

func TestNormalizeKeyTuple(t *testing.T) {
	require := require.New(t)
	reg := newRegistry(t)

	values, err := dynamic.NormalizeKey([]any{zeroAccountHex, zeroAccountHex}, testutil.TypeMultisigKey, reg)
	require.NoError(err)
	require.Len(values, 2)

	_, err = dynamic.NormalizeKey([]any{zeroAccountHex}, testutil.TypeMultisigKey, reg)
	require.Equal(rosetta.ParamsLengthNotMatch, rosetta.KindOf(err))
}

func TestNormalizeSequenceForms(t *testing.T) {
	require := require.New(t)
	reg := newRegistry(t)

	v, err := dynamic.Normalize("0x0102", testutil.TypeBytes, reg)
	require.NoError(err)
	require.Equal(dynamic.KindBytes, v.Kind)
	require.Equal([]byte{1, 2}, v.Bytes)

	v, err = dynamic.Normalize(jsonParams(t, `[1, 2]`), testutil.TypeBytes, reg)
	require.NoError(err)
	require.Equal(dynamic.KindComposite, v.Kind)
	require.Len(v.Fields, 2)
}

func TestNormalizeArrayLength(t *testing.T) {
	require := require.New(t)
	reg := newRegistry(t)

	_, err := dynamic.Normalize("0x0102", testutil.TypeHash32, reg)
	require.Equal(rosetta.InvalidParams, rosetta.KindOf(err))

	v, err := dynamic.Normalize(zeroAccountHex, testutil.TypeHash32, reg)
	require.NoError(err)
	require.Equal(dynamic.KindBytes, v.Kind)
	require.Len(v.Bytes, 32)
}

func TestNormalizePrimitive(t *testing.T) {
	require := require.New(t)
	reg := newRegistry(t)

	// decimal strings are taken for integers beyond float64 precision
	v, err := dynamic.Normalize("340282366920938463463374607431768211455", testutil.TypeU128, reg)
	require.NoError(err)
	require.Equal(dynamic.KindUint, v.Kind)

	_, err = dynamic.Normalize(true, testutil.TypeU32, reg)
	require.Equal(rosetta.InvalidParams, rosetta.KindOf(err))

	_, err = dynamic.Normalize(json.Number("-5"), testutil.TypeU32, reg)
	require.Equal(rosetta.InvalidParams, rosetta.KindOf(err))

	_, err = dynamic.Normalize(json.Number("-5"), testutil.TypeCompactU128, reg)
	require.Equal(rosetta.InvalidParams, rosetta.KindOf(err))
}

// a value decoded from chain bytes and rendered to JSON must normalize
// and encode back to the bytes it came from
func TestNormalizeDecodedJSON(t *testing.T) {
	require := require.New(t)
	reg := newRegistry(t)

	rehydrate := func(raw []byte, id int64) []byte {
		v, err := dynamic.Decode(scale.NewDecoder(bytes.NewReader(raw)), id, reg)
		require.NoError(err)
		j, err := dynamic.ToJSON(v)
		require.NoError(err)

		norm, err := dynamic.Normalize(j, id, reg)
		require.NoError(err)
		var buf bytes.Buffer
		require.NoError(dynamic.Encode(norm, id, reg, scale.NewEncoder(&buf)))
		return buf.Bytes()
	}

	// AccountId32: a composite wrapping a byte array
	account := fromHex(t, "0x"+strings.Repeat("11", 32))
	require.Equal(account, rehydrate(account, testutil.TypeAccountID))

	// MultiAddress: the wrapper one level deeper, behind a variant
	addr := append([]byte{0x00}, account...)
	require.Equal(addr, rehydrate(addr, testutil.TypeAddress))
}

// a registry where type 0 is a composite whose only field is type 0
func cyclicMetadata() *types.Metadata {
	self := types.NewSi1LookupTypeIDFromUInt(0)
	lookup := []types.PortableTypeV14{{
		ID: self,
		Type: types.Si1Type{Def: types.Si1TypeDef{
			IsComposite: true,
			Composite: types.Si1TypeDefComposite{
				Fields: []types.Si1Field{{Type: self}},
			},
		}},
	}}
	return &types.Metadata{
		MagicNumber: types.MagicNumber,
		Version:     14,
		AsMetadataV14: types.MetadataV14{
			Lookup:          types.PortableRegistryV14{Types: lookup},
			EfficientLookup: map[int64]*types.Si1Type{0: &lookup[0].Type},
		},
	}
}

func TestNormalizeCyclicRegistry(t *testing.T) {
	require := require.New(t)
	reg, err := registry.New(cyclicMetadata())
	require.NoError(err)

	_, err = dynamic.Normalize(json.Number("1"), 0, reg)
	require.Equal(rosetta.InvalidMetadata, rosetta.KindOf(err))
}
