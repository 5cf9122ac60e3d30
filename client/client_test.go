package client_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	rosetta "github.com/cordialsys/rosetta-substrate"
	"github.com/cordialsys/rosetta-substrate/client"
	"github.com/cordialsys/rosetta-substrate/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

const zeroAccountHex = "0x0000000000000000000000000000000000000000000000000000000000000000"

// offline client over the fixture metadata, no RPC connection
func offlineClient(t *testing.T) *client.Client {
	cli, err := client.New(nil, testutil.Metadata())
	require.NoError(t, err)
	return cli
}

func mockedClient(t *testing.T, responses ...interface{}) (*client.Client, func()) {
	server, closeFn := testutil.MockJSONRPC(t, responses...)
	api, err := gsrpc.NewSubstrateAPI(server.URL)
	require.NoError(t, err)
	cli, err := client.New(api, testutil.Metadata())
	require.NoError(t, err)
	return cli, closeFn
}

func TestConnect(t *testing.T) {
	require := require.New(t)
	server, closeFn := testutil.MockJSONRPC(t)
	defer closeFn()

	// the dial and the metadata fetch both hit state_getMetadata
	cli, err := client.Connect(server.URL)
	require.NoError(err)

	ty, err := cli.Registry().Resolve(testutil.TypeAccountInfo)
	require.NoError(err)
	require.True(ty.Def.IsComposite)
}

func TestDecodeParams(t *testing.T) {
	require := require.New(t)

	params, err := client.DecodeParams([]byte(`[{"Id": "` + zeroAccountHex + `"}, "1000000000000"]`))
	require.NoError(err)
	require.Len(params, 2)

	params, err = client.DecodeParams(nil)
	require.NoError(err)
	require.Nil(params)

	_, err = client.DecodeParams([]byte(`{"not": "an array"}`))
	require.Equal(rosetta.InvalidParams, rosetta.KindOf(err))
}

func TestMakeCallData(t *testing.T) {
	require := require.New(t)
	cli := offlineClient(t)

	params, err := client.DecodeParams([]byte(`[{"Id": ["` + zeroAccountHex + `"]}, "1000000000000"]`))
	require.NoError(err)

	data, err := cli.MakeCallData("Balances", "transfer_allow_death", params)
	require.NoError(err)
	require.Equal(
		"0x0400"+"00"+strings.Repeat("00", 32)+"070010a5d4e8",
		codec.HexEncodeToString(data),
	)
}

func TestMakeCallPayload(t *testing.T) {
	require := require.New(t)
	cli := offlineClient(t)

	data, err := cli.MakeCallPayload("Balances", "transfer_allow_death",
		[]byte(`[{"Id": "`+zeroAccountHex+`"}, 1000000000000]`))
	require.NoError(err)
	require.Equal(
		"0x0400"+"00"+strings.Repeat("00", 32)+"070010a5d4e8",
		codec.HexEncodeToString(data),
	)
}

func TestMakeCallDataParamCount(t *testing.T) {
	require := require.New(t)
	cli := offlineClient(t)

	params, err := client.DecodeParams([]byte(`["1000000000000"]`))
	require.NoError(err)

	_, err = cli.MakeCallData("Balances", "transfer_allow_death", params)
	require.Equal(rosetta.ParamsLengthNotMatch, rosetta.KindOf(err))
}

func TestMakeCallDataUnknownNames(t *testing.T) {
	require := require.New(t)
	cli := offlineClient(t)

	_, err := cli.MakeCallData("Lottery", "buy_ticket", nil)
	require.Equal(rosetta.InvalidPalletName, rosetta.KindOf(err))

	_, err = cli.MakeCallData("Balances", "mint", nil)
	require.Equal(rosetta.InvalidCallName, rosetta.KindOf(err))
}

func TestMakeStorageQuery(t *testing.T) {
	require := require.New(t)
	cli := offlineClient(t)

	params, err := client.DecodeParams([]byte(`["` + zeroAccountHex + `"]`))
	require.NoError(err)

	query, err := cli.MakeStorageQuery("System", "Account", params)
	require.NoError(err)
	require.EqualValues(testutil.TypeAccountInfo, query.ValueType)
	require.Len(query.Key, 80)

	query, err = cli.MakeStorageQuery("System", "Number", nil)
	require.NoError(err)
	require.EqualValues(testutil.TypeU32, query.ValueType)

	_, err = cli.MakeStorageQuery("System", "Digest", nil)
	require.Equal(rosetta.InvalidStorageName, rosetta.KindOf(err))
}

func TestDecodeStorageValueEmpty(t *testing.T) {
	require := require.New(t)
	cli := offlineClient(t)

	// absent entries and the single-zero-byte sentinel both mean "no value"
	j, err := cli.DecodeStorageValue(nil, testutil.TypeAccountInfo)
	require.NoError(err)
	require.Nil(j)

	j, err = cli.DecodeStorageValue([]byte{0}, testutil.TypeAccountInfo)
	require.NoError(err)
	require.Nil(j)
}

func TestConstant(t *testing.T) {
	require := require.New(t)
	cli := offlineClient(t)

	v, err := cli.Constant("System", "BlockHashCount")
	require.NoError(err)
	require.Equal("4096", fmt.Sprintf("%v", v))

	v, err = cli.Constant("Balances", "ExistentialDeposit")
	require.NoError(err)
	require.Equal("10000000000", fmt.Sprintf("%v", v))
}

const accountInfoHex = "0x" +
	"07000000" + // nonce
	"00000000" + // consumers
	"01000000" + // providers
	"00000000" + // sufficients
	"0010a5d4e80000000000000000000000" + // free: 1000000000000
	"00000000000000000000000000000000" + // reserved
	"00000000000000000000000000000000" + // frozen
	"00000000000000000000000000000000" // flags

func TestQueryStorage(t *testing.T) {
	require := require.New(t)
	cli, closeFn := mockedClient(t, `"`+accountInfoHex+`"`)
	defer closeFn()

	params, err := client.DecodeParams([]byte(`["` + zeroAccountHex + `"]`))
	require.NoError(err)

	j, err := cli.QueryStorage(context.Background(), "System", "Account", params)
	require.NoError(err)
	obj, ok := j.(map[string]any)
	require.True(ok)
	require.Equal("7", fmt.Sprintf("%v", obj["nonce"]))
	data, ok := obj["data"].(map[string]any)
	require.True(ok)
	require.Equal("1000000000000", fmt.Sprintf("%v", data["free"]))
}

func TestBalance(t *testing.T) {
	require := require.New(t)
	cli, closeFn := mockedClient(t, `"`+accountInfoHex+`"`)
	defer closeFn()

	balance, err := cli.Balance(context.Background(), "1a1LcBX6hGPKg5aQ6DXZpAHCCzWjckhea4sz3P1PvL3oc4F")
	require.NoError(err)
	require.Equal("1000000000000", balance.String())
}

func TestNonce(t *testing.T) {
	require := require.New(t)
	cli, closeFn := mockedClient(t, `"`+accountInfoHex+`"`)
	defer closeFn()

	nonce, err := cli.Nonce(context.Background(), "1a1LcBX6hGPKg5aQ6DXZpAHCCzWjckhea4sz3P1PvL3oc4F")
	require.NoError(err)
	require.EqualValues(7, nonce)
}

func TestSubmit(t *testing.T) {
	require := require.New(t)
	cli, closeFn := mockedClient(t, `"0xdoesnotmatter"`)
	defer closeFn()

	signed := "0x280403000b63ce64c10c05"
	raw, err := codec.HexDecodeString(signed)
	require.NoError(err)
	expected := blake2b.Sum256(raw)

	hash, err := cli.Submit(context.Background(), signed)
	require.NoError(err)
	require.Equal(codec.HexEncodeToString(expected[:]), hash)
}

func TestSubmitRejected(t *testing.T) {
	require := require.New(t)
	cli, closeFn := mockedClient(t,
		fmt.Errorf(`{"code":1010,"message":"Invalid Transaction: bad proof"}`))
	defer closeFn()

	_, err := cli.Submit(context.Background(), "0x280403000b63ce64c10c05")
	require.Equal(rosetta.InvalidExtrinsic, rosetta.KindOf(err))
}

func TestSubmitNotHex(t *testing.T) {
	require := require.New(t)
	cli := offlineClient(t)

	_, err := cli.Submit(context.Background(), "zzzz")
	require.Equal(rosetta.InvalidExtrinsic, rosetta.KindOf(err))
}
