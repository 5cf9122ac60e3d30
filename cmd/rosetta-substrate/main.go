package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func CmdRoot() *cobra.Command {
	var verbosity int
	cmd := &cobra.Command{
		Use:          "rosetta-substrate",
		Short:        "Build calls and query storage on substrate chains using only runtime metadata",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logrus.SetLevel(logrus.InfoLevel + logrus.Level(verbosity))
		},
	}
	cmd.PersistentFlags().String("rpc", "", "RPC url of the substrate node")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Set verbosity (-v, -vv)")

	cmd.AddCommand(CmdEncodeAddress())
	cmd.AddCommand(CmdEncodeCall())
	cmd.AddCommand(CmdStorageKey())
	cmd.AddCommand(CmdQuery())
	cmd.AddCommand(CmdConstant())
	cmd.AddCommand(CmdBalance())
	cmd.AddCommand(CmdNonce())
	cmd.AddCommand(CmdSubmit())

	return cmd
}

func main() {
	rootCmd := CmdRoot()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
