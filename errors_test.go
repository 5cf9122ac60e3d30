package rosetta_test

import (
	"fmt"
	"testing"

	rosetta "github.com/cordialsys/rosetta-substrate"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	require := require.New(t)

	err := rosetta.InvalidPalletNamef("no pallet %q", "Lottery")
	require.Equal(`InvalidPalletName: no pallet "Lottery"`, err.Error())
}

func TestKindOf(t *testing.T) {
	require := require.New(t)

	err := rosetta.ParamsLengthNotMatchf("expected %d params, got %d", 2, 1)
	require.Equal(rosetta.ParamsLengthNotMatch, rosetta.KindOf(err))

	// wrapped errors still report their kind
	wrapped := fmt.Errorf("building call: %w", err)
	require.Equal(rosetta.ParamsLengthNotMatch, rosetta.KindOf(wrapped))

	require.Equal(rosetta.Kind(""), rosetta.KindOf(fmt.Errorf("plain")))
	require.Equal(rosetta.Kind(""), rosetta.KindOf(nil))
}

func TestAmountConversions(t *testing.T) {
	require := require.New(t)

	amount := rosetta.NewAmountBlockchainFromStr("12340000000000")
	require.Equal("1234", amount.ToHuman(10).String())

	human := amount.ToHuman(10)
	require.Equal("12340000000000", human.ToBlockchain(10).String())
}
