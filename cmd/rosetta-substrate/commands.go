package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/cordialsys/rosetta-substrate/address"
	"github.com/cordialsys/rosetta-substrate/client"
	"github.com/spf13/cobra"
)

func connectFromCmd(cmd *cobra.Command) (*client.Client, error) {
	rpc, _ := cmd.Flags().GetString("rpc")
	if rpc == "" {
		return nil, fmt.Errorf("must pass --rpc")
	}
	return client.Connect(rpc)
}

func paramsFromCmd(cmd *cobra.Command) ([]any, error) {
	raw, _ := cmd.Flags().GetString("params")
	return client.DecodeParams([]byte(raw))
}

func printJSON(value any) error {
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func CmdEncodeCall() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode-call <pallet> <call>",
		Short: "Encode call data for a pallet call from JSON parameters",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := connectFromCmd(cmd)
			if err != nil {
				return err
			}
			raw, _ := cmd.Flags().GetString("params")
			data, err := cli.MakeCallPayload(args[0], args[1], []byte(raw))
			if err != nil {
				return err
			}
			fmt.Println(codec.HexEncodeToString(data))
			return nil
		},
	}
	cmd.Flags().String("params", "", "Call parameters as a JSON array")
	return cmd
}

func CmdEncodeAddress() *cobra.Command {
	var prefix uint16
	cmd := &cobra.Command{
		Use:   "encode-address <public-key-hex>",
		Short: "Convert a 32-byte public key to an SS58 address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pubkey, err := codec.HexDecodeString(args[0])
			if err != nil {
				return err
			}
			addr, err := address.Encode(pubkey, prefix)
			if err != nil {
				return err
			}
			fmt.Println(addr)
			return nil
		},
	}
	cmd.Flags().Uint16Var(&prefix, "prefix", 0, "SS58 network prefix (0 = polkadot)")
	return cmd
}

func CmdStorageKey() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage-key <pallet> <entry>",
		Short: "Build the hashed storage key for a storage entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := connectFromCmd(cmd)
			if err != nil {
				return err
			}
			params, err := paramsFromCmd(cmd)
			if err != nil {
				return err
			}
			query, err := cli.MakeStorageQuery(args[0], args[1], params)
			if err != nil {
				return err
			}
			fmt.Println(codec.HexEncodeToString(query.Key))
			return nil
		},
	}
	cmd.Flags().String("params", "", "Storage key parameters as a JSON array")
	return cmd
}

func CmdQuery() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <pallet> <entry>",
		Short: "Query a storage entry and decode the value to JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := connectFromCmd(cmd)
			if err != nil {
				return err
			}
			params, err := paramsFromCmd(cmd)
			if err != nil {
				return err
			}
			value, err := cli.QueryStorage(context.Background(), args[0], args[1], params)
			if err != nil {
				return err
			}
			return printJSON(value)
		},
	}
	cmd.Flags().String("params", "", "Storage key parameters as a JSON array")
	return cmd
}

func CmdConstant() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "constant <pallet> <name>",
		Short: "Decode a pallet constant from the runtime metadata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := connectFromCmd(cmd)
			if err != nil {
				return err
			}
			value, err := cli.Constant(args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(value)
		},
	}
	return cmd
}

func CmdBalance() *cobra.Command {
	var decimals int32
	cmd := &cobra.Command{
		Use:   "balance <address>",
		Short: "Check the free balance of an address. Reported as big integer unless --decimals is set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := connectFromCmd(cmd)
			if err != nil {
				return err
			}
			balance, err := cli.Balance(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("could not fetch balance for address %s: %v", args[0], err)
			}
			if decimals > 0 {
				fmt.Println(balance.ToHuman(decimals).String())
			} else {
				fmt.Println(balance.String())
			}
			return nil
		},
	}
	cmd.Flags().Int32Var(&decimals, "decimals", 0, "Report the balance as a decimal using this many chain decimals")
	return cmd
}

func CmdNonce() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nonce <address>",
		Short: "Fetch the next transaction nonce of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := connectFromCmd(cmd)
			if err != nil {
				return err
			}
			nonce, err := cli.Nonce(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(nonce)
			return nil
		},
	}
	return cmd
}

func CmdSubmit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <signed-extrinsic-hex>",
		Short: "Broadcast a signed extrinsic and print its hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := connectFromCmd(cmd)
			if err != nil {
				return err
			}
			hash, err := cli.Submit(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
	return cmd
}
