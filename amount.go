package rosetta

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// AmountBlockchain is a big integer amount as the chain expects it,
// i.e. in the smallest indivisible unit (plancks for polkadot chains).
type AmountBlockchain big.Int

// AmountHumanReadable is a decimal amount as a human expects it.
type AmountHumanReadable decimal.Decimal

func NewAmountBlockchainFromUint64(u64 uint64) AmountBlockchain {
	bigInt := new(big.Int).SetUint64(u64)
	return AmountBlockchain(*bigInt)
}

func NewAmountBlockchainFromBig(b *big.Int) AmountBlockchain {
	if b == nil {
		return AmountBlockchain{}
	}
	return AmountBlockchain(*new(big.Int).Set(b))
}

func NewAmountBlockchainFromStr(str string) AmountBlockchain {
	bigInt, ok := new(big.Int).SetString(str, 10)
	if !ok {
		return AmountBlockchain{}
	}
	return AmountBlockchain(*bigInt)
}

func (amount AmountBlockchain) String() string {
	bigInt := big.Int(amount)
	return bigInt.String()
}

// Int converts an AmountBlockchain into *big.Int
func (amount AmountBlockchain) Int() *big.Int {
	bigInt := big.Int(amount)
	return &bigInt
}

// ToHuman shifts the amount left by the chain's decimals.
func (amount AmountBlockchain) ToHuman(decimals int32) AmountHumanReadable {
	dec := decimal.NewFromBigInt(amount.Int(), -decimals)
	return AmountHumanReadable(dec)
}

func (amount AmountHumanReadable) String() string {
	return decimal.Decimal(amount).String()
}

// ToBlockchain shifts the amount right by the chain's decimals.
func (amount AmountHumanReadable) ToBlockchain(decimals int32) AmountBlockchain {
	raw := decimal.Decimal(amount).Shift(decimals)
	return AmountBlockchain(*raw.BigInt())
}
