// Package address converts between SS58 account addresses and the raw
// 32-byte account ids the runtime stores and keys on.
package address

import (
	"github.com/btcsuite/btcutil/base58"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	rosetta "github.com/cordialsys/rosetta-substrate"
	"github.com/vedhavyas/go-subkey/v2"
)

// Encode converts a 32-byte public key to SS58 under the given network
// prefix. A 33-byte key has its leading identifier byte dropped.
func Encode(publicKey []byte, networkPrefix uint16) (string, error) {
	if len(publicKey) == 33 {
		publicKey = publicKey[1:]
	}
	if len(publicKey) != 32 {
		return "", rosetta.InvalidParamsf("expecting a 32 byte public key, got %d bytes", len(publicKey))
	}
	return subkey.SS58Encode(publicKey, networkPrefix), nil
}

// Decode extracts the 32-byte account id from an SS58 address. The
// checksum bytes are dropped without verification.
func Decode(addr string) (*types.AccountID, error) {
	decoded := base58.Decode(addr)
	if len(decoded) < 34 {
		return nil, rosetta.InvalidParamsf("address %s is too short", addr)
	}
	accountID, err := types.NewAccountID(last32DropChecksum(decoded))
	if err != nil {
		return nil, rosetta.InvalidParamsf("invalid address %s: %v", addr, err)
	}
	return accountID, nil
}

func last32DropChecksum(decoded []byte) []byte {
	// drop the 2 checksum bytes
	decoded = decoded[:len(decoded)-2]
	// take the last 32 bytes (ignores the 1-2 byte prefix)
	return decoded[len(decoded)-32:]
}
