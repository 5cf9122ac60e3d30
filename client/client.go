// Package client drives a substrate node over JSON-RPC: it fetches and
// caches runtime metadata, builds call data and storage queries from
// JSON parameters, and converts raw storage bytes back to JSON.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	rosetta "github.com/cordialsys/rosetta-substrate"
	"github.com/cordialsys/rosetta-substrate/address"
	"github.com/cordialsys/rosetta-substrate/dynamic"
	"github.com/cordialsys/rosetta-substrate/payload"
	"github.com/cordialsys/rosetta-substrate/registry"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
)

// Client wraps a substrate RPC connection together with the resolved
// type registry of the connected runtime.
type Client struct {
	api *gsrpc.SubstrateAPI
	reg *registry.Registry
}

// Connect dials the node and fetches the latest runtime metadata. The
// registry is pinned at connect time; a runtime upgrade requires a
// reconnect.
func Connect(rpcURL string) (*Client, error) {
	api, err := gsrpc.NewSubstrateAPI(rpcURL)
	if err != nil {
		return nil, rosetta.InvalidMetadataf("connect to %s: %v", rpcURL, err)
	}
	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		return nil, rosetta.InvalidMetadataf("fetch metadata: %v", err)
	}
	reg, err := registry.New(meta)
	if err != nil {
		return nil, err
	}
	logrus.WithField("url", rpcURL).Debug("connected to substrate node")
	return &Client{api: api, reg: reg}, nil
}

// New builds a client around an existing connection and metadata.
// Pass a nil api for offline call/key construction.
func New(api *gsrpc.SubstrateAPI, meta *types.Metadata) (*Client, error) {
	reg, err := registry.New(meta)
	if err != nil {
		return nil, err
	}
	return &Client{api: api, reg: reg}, nil
}

func (c *Client) Registry() *registry.Registry {
	return c.reg
}

// DecodeParams parses a JSON array of call or key parameters. Numbers
// are kept as json.Number so amounts beyond 64 bits survive intact.
func DecodeParams(raw []byte) ([]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var params []any
	if err := dec.Decode(&params); err != nil {
		return nil, rosetta.InvalidParamsf("parameters must be a JSON array: %v", err)
	}
	return params, nil
}

// MakeCallData builds the SCALE call data for pallet.call from JSON
// parameters, matched positionally against the call's declared fields.
func (c *Client) MakeCallData(pallet, call string, params []any) ([]byte, error) {
	fields, err := c.reg.CallFields(pallet, call)
	if err != nil {
		return nil, err
	}
	values, err := dynamic.Distribute(params, fields, c.reg)
	if err != nil {
		return nil, err
	}
	data, err := payload.BuildCall(c.reg, pallet, call, values)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"pallet": pallet,
		"call":   call,
		"data":   codec.HexEncodeToString(data),
	}).Debug("built call data")
	return data, nil
}

// MakeCallPayload builds call data straight from a raw JSON parameter
// array.
func (c *Client) MakeCallPayload(pallet, call string, rawParams []byte) ([]byte, error) {
	params, err := DecodeParams(rawParams)
	if err != nil {
		return nil, err
	}
	return c.MakeCallData(pallet, call, params)
}

// RuntimeVersion fetches the connected chain's runtime version.
func (c *Client) RuntimeVersion() (*types.RuntimeVersion, error) {
	rv, err := c.api.RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return nil, rosetta.InvalidMetadataf("fetch runtime version: %v", err)
	}
	return rv, nil
}

// GenesisHash fetches the hash of block zero.
func (c *Client) GenesisHash() (types.Hash, error) {
	hash, err := c.api.RPC.Chain.GetBlockHash(0)
	if err != nil {
		return types.Hash{}, rosetta.InvalidMetadataf("fetch genesis hash: %v", err)
	}
	return hash, nil
}

// StorageQuery is a ready-to-send storage request: the hashed key and
// the type id its value decodes against.
type StorageQuery struct {
	Key       types.StorageKey
	ValueType int64
}

// MakeStorageQuery builds the storage key for pallet.entry. Plain
// entries take no parameters; map entries take one parameter per key
// slot, or the whole array for tuple-keyed maps.
func (c *Client) MakeStorageQuery(pallet, entry string, params []any) (StorageQuery, error) {
	se, err := c.reg.StorageEntry(pallet, entry)
	if err != nil {
		return StorageQuery{}, err
	}
	var values []dynamic.Value
	if se.HasKey {
		values, err = dynamic.NormalizeKey(params, se.KeyType, c.reg)
		if err != nil {
			return StorageQuery{}, err
		}
	}
	key, err := payload.BuildStorageKey(c.reg, pallet, entry, values)
	if err != nil {
		return StorageQuery{}, err
	}
	return StorageQuery{Key: key, ValueType: se.ValueType}, nil
}

// DecodeStorageValue converts raw storage bytes to a JSON-compatible
// value. Absent entries and the single-zero-byte sentinel some nodes
// return for empty values both decode to nil.
func (c *Client) DecodeStorageValue(raw []byte, valueType int64) (any, error) {
	if len(raw) == 0 || (len(raw) == 1 && raw[0] == 0) {
		return nil, nil
	}
	dec := scale.NewDecoder(bytes.NewReader(raw))
	v, err := dynamic.Decode(dec, valueType, c.reg)
	if err != nil {
		return nil, err
	}
	return dynamic.ToJSON(v)
}

// QueryStorage builds the key, fetches the raw value and decodes it.
func (c *Client) QueryStorage(ctx context.Context, pallet, entry string, params []any) (any, error) {
	query, err := c.MakeStorageQuery(pallet, entry, params)
	if err != nil {
		return nil, err
	}
	raw, err := c.api.RPC.State.GetStorageRawLatest(query.Key)
	if err != nil {
		return nil, rosetta.InvalidCallDataf("storage query %s.%s: %v", pallet, entry, err)
	}
	if raw == nil {
		return nil, nil
	}
	return c.DecodeStorageValue(*raw, query.ValueType)
}

// Constant decodes a pallet constant from the metadata. No RPC round
// trip is needed; constants travel inside the metadata blob.
func (c *Client) Constant(pallet, name string) (any, error) {
	typeID, raw, err := c.reg.Constant(pallet, name)
	if err != nil {
		return nil, err
	}
	return c.DecodeStorageValue(raw, typeID)
}

// accountInfo mirrors the leading fields of System.Account. Trailing
// fields beyond the free balance are ignored.
type accountInfo struct {
	Nonce       types.U32
	Consumers   types.U32
	Providers   types.U32
	Sufficients types.U32
	Free        types.U128
}

func (ai *accountInfo) Decode(decoder scale.Decoder) error {
	if err := decoder.Decode(&ai.Nonce); err != nil {
		return err
	}
	if err := decoder.Decode(&ai.Consumers); err != nil {
		return err
	}
	if err := decoder.Decode(&ai.Providers); err != nil {
		return err
	}
	if err := decoder.Decode(&ai.Sufficients); err != nil {
		return err
	}
	return decoder.Decode(&ai.Free)
}

func (c *Client) fetchAccountInfo(addr string) (accountInfo, bool, error) {
	account, err := address.Decode(addr)
	if err != nil {
		return accountInfo{}, false, err
	}
	key, err := types.CreateStorageKey(c.reg.Meta(), "System", "Account", account.ToBytes())
	if err != nil {
		return accountInfo{}, false, rosetta.InvalidCallDataf("account storage key: %v", err)
	}
	var info accountInfo
	ok, err := c.api.RPC.State.GetStorageLatest(key, &info)
	if err != nil {
		return accountInfo{}, false, rosetta.InvalidCallDataf("fetch account %s: %v", addr, err)
	}
	return info, ok, nil
}

// Balance returns the free balance of an SS58 address. Unknown
// accounts report zero.
func (c *Client) Balance(ctx context.Context, addr string) (rosetta.AmountBlockchain, error) {
	info, ok, err := c.fetchAccountInfo(addr)
	if err != nil {
		return rosetta.AmountBlockchain{}, err
	}
	if !ok {
		return rosetta.NewAmountBlockchainFromUint64(0), nil
	}
	return rosetta.NewAmountBlockchainFromBig(info.Free.Int), nil
}

// Nonce returns the next transaction nonce of an SS58 address.
func (c *Client) Nonce(ctx context.Context, addr string) (uint64, error) {
	info, ok, err := c.fetchAccountInfo(addr)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return uint64(info.Nonce), nil
}

// Timestamp returns the Timestamp.Now storage value in milliseconds.
func (c *Client) Timestamp(ctx context.Context) (uint64, error) {
	key, err := types.CreateStorageKey(c.reg.Meta(), "Timestamp", "Now")
	if err != nil {
		return 0, rosetta.InvalidCallDataf("timestamp storage key: %v", err)
	}
	var now types.U64
	_, err = c.api.RPC.State.GetStorageLatest(key, &now)
	if err != nil {
		return 0, rosetta.InvalidCallDataf("fetch timestamp: %v", err)
	}
	return uint64(now), nil
}

// Submit broadcasts a signed extrinsic given as hex and returns its
// blake2b-256 hash.
func (c *Client) Submit(ctx context.Context, signedHex string) (string, error) {
	raw, err := codec.HexDecodeString(signedHex)
	if err != nil {
		return "", rosetta.InvalidExtrinsicf("extrinsic is not valid hex: %v", err)
	}
	var res string
	err = c.api.Client.Call(&res, "author_submitExtrinsic", codec.HexEncodeToString(raw))
	if err != nil {
		return "", classifySubmitError(err)
	}
	hash := blake2b.Sum256(raw)
	return codec.HexEncodeToString(hash[:]), nil
}

func classifySubmitError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Invalid Transaction"),
		strings.Contains(msg, "Verification Error"),
		strings.Contains(msg, "bad proof"):
		return rosetta.InvalidExtrinsicf("%v", err)
	default:
		return rosetta.InvalidCallDataf("submit extrinsic: %v", err)
	}
}
